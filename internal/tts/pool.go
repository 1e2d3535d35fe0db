package tts

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Pool is the shared synthesis resource all guilds draw from: it front-ends a
// Synthesizer with a request rate limit and a cap on simultaneous renders.
type Pool struct {
	synth   Synthesizer
	limiter *rate.Limiter
	slots   chan struct{}
}

func NewPool(synth Synthesizer, perSecond float64, burst, maxConcurrent int) *Pool {
	if burst <= 0 {
		burst = 1
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Pool{
		synth:   synth,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		slots:   make(chan struct{}, maxConcurrent),
	}
}

func (p *Pool) Synthesize(ctx context.Context, req Request) (FrameReader, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	frames, err := p.synth.Synthesize(ctx, req)
	if err != nil {
		<-p.slots
		return nil, err
	}
	return &pooledReader{FrameReader: frames, release: func() { <-p.slots }}, nil
}

// pooledReader returns the concurrency slot when the frame stream is closed.
type pooledReader struct {
	FrameReader
	release func()
	once    sync.Once
}

func (r *pooledReader) Close() error {
	err := r.FrameReader.Close()
	r.once.Do(r.release)
	return err
}
