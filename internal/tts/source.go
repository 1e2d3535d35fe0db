package tts

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrQueueFull    = errors.New("speech queue is full")
	ErrSourceClosed = errors.New("audio source is closed")
)

// DefaultQueueCap bounds how many pending requests one source holds.
const DefaultQueueCap = 10

// Source is a FIFO of pending speech requests feeding one playback loop.
// It is bound to the shared synthesizer pool at construction.
//
// A source closes itself the moment its queue drains, so the playback loop
// and a concurrent submitter can never disagree about whether it is still
// live: a submit racing the close gets ErrSourceClosed and the caller falls
// back to a fresh source.
type Source struct {
	synth    Synthesizer
	queueCap int

	mu       sync.Mutex
	queue    []Request
	closed   bool
	inflight context.CancelFunc
}

func NewSource(synth Synthesizer, queueCap int) *Source {
	if queueCap <= 0 {
		queueCap = DefaultQueueCap
	}
	return &Source{synth: synth, queueCap: queueCap}
}

// Submit enqueues a request. It never blocks waiting for playback.
func (s *Source) Submit(req Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSourceClosed
	}
	if len(s.queue) >= s.queueCap {
		return ErrQueueFull
	}
	s.queue = append(s.queue, req)
	return nil
}

// Next pops the oldest pending request. When the queue is empty the source
// closes atomically and reports ok=false; the playback loop exits on that.
func (s *Source) Next() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || len(s.queue) == 0 {
		s.closed = true
		return Request{}, false
	}
	req := s.queue[0]
	s.queue = s.queue[1:]
	return req, true
}

// Pending reports how many requests are queued, not counting in-flight audio.
func (s *Source) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Clear drops all pending requests and cancels in-flight audio. The source
// stays open: new submissions keep playing through the same loop.
func (s *Source) Clear() {
	s.mu.Lock()
	s.queue = nil
	cancel := s.inflight
	s.inflight = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Close permanently rejects further submissions, drops everything pending and
// cancels in-flight audio.
func (s *Source) Close() {
	s.mu.Lock()
	s.closed = true
	s.queue = nil
	cancel := s.inflight
	s.inflight = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Stream renders one request through the bound synthesizer. The returned
// context is canceled by Clear or Close so a move or disconnect drops the
// in-flight audio mid-frame. The caller must call EndStream when done with
// the request.
func (s *Source) Stream(parent context.Context, req Request) (context.Context, FrameReader, error) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return nil, nil, ErrSourceClosed
	}
	s.inflight = cancel
	s.mu.Unlock()

	frames, err := s.synth.Synthesize(ctx, req)
	if err != nil {
		s.EndStream()
		return nil, nil, err
	}
	return ctx, frames, nil
}

// EndStream releases the in-flight cancellation hook after one request has
// finished playing (or failed).
func (s *Source) EndStream() {
	s.mu.Lock()
	cancel := s.inflight
	s.inflight = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
