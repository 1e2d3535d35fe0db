package voice

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"blabber/internal/profile"
	"blabber/internal/tts"
)

type fakeConn struct {
	mu           sync.Mutex
	channelID    string
	moves        []string
	disconnected bool
	speakStarts  int
	send         chan []byte
	moveErr      error
}

func newFakeConn(channelID string) *fakeConn {
	return &fakeConn{channelID: channelID, send: make(chan []byte, 256)}
}

func (c *fakeConn) ChannelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelID
}

func (c *fakeConn) Move(channelID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.moveErr != nil {
		return c.moveErr
	}
	c.channelID = channelID
	c.moves = append(c.moves, channelID)
	return nil
}

func (c *fakeConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
	return nil
}

func (c *fakeConn) Speaking(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.speakStarts++
	}
	return nil
}

func (c *fakeConn) Send() chan<- []byte { return c.send }

func (c *fakeConn) speakCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speakStarts
}

func (c *fakeConn) wasDisconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

func (c *fakeConn) moveHistory() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.moves...)
}

type fakeBackend struct {
	mu      sync.Mutex
	joins   []string
	joinErr error
	last    *fakeConn
}

func (b *fakeBackend) Join(guildID, channelID string) (Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.joinErr != nil {
		return nil, b.joinErr
	}
	b.joins = append(b.joins, channelID)
	b.last = newFakeConn(channelID)
	return b.last, nil
}

func (b *fakeBackend) joinCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.joins)
}

func (b *fakeBackend) lastConn() *fakeConn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

type fakeChecks struct {
	denyDisconnect error
	denyPerms      error
}

func (c *fakeChecks) CanDisconnect(guildID, userID string) error { return c.denyDisconnect }

func (c *fakeChecks) HasRequiredPermissions(guildID, channelID string) error { return c.denyPerms }

type fakePre struct {
	mu       sync.Mutex
	channels map[string]string // userID -> voice channel
	validate error
}

func (p *fakePre) InvokerChannel(guildID, userID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.channels[userID]
	if !ok || ch == "" {
		return "", ErrInvokerNotInVoice
	}
	return ch, nil
}

func (p *fakePre) ValidateMessage(message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.validate
}

func (p *fakePre) setChannel(userID, channelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels[userID] = channelID
}

type fakeProfiles struct{}

func (fakeProfiles) Resolve(userID, channelID string) profile.Profile { return profile.Default }

// fakeSynth renders requests as a few tiny frames. A non-nil gate holds
// Synthesize until released, keeping a request in flight. With endless set,
// frames never run out and playback only stops when canceled.
type fakeSynth struct {
	mu       sync.Mutex
	requests []string
	frames   int
	gate     chan struct{}
	endless  bool
}

func (f *fakeSynth) Synthesize(ctx context.Context, req tts.Request) (tts.FrameReader, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req.Text)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	n := f.frames
	if n <= 0 {
		n = 2
	}
	return &fakeFrames{remaining: n, endless: f.endless}, nil
}

func (f *fakeSynth) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

type fakeFrames struct {
	remaining int
	endless   bool
}

func (f *fakeFrames) Next() ([]byte, error) {
	if f.endless {
		return []byte{0x01}, nil
	}
	if f.remaining <= 0 {
		return nil, io.EOF
	}
	f.remaining--
	return []byte{0x01}, nil
}

func (f *fakeFrames) Close() error { return nil }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
