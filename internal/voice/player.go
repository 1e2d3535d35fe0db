package voice

import (
	"context"
	"errors"
	"io"
	"time"

	"blabber/internal/tts"

	"github.com/rs/zerolog/log"
)

// frameInterval is the wall-clock duration of one opus frame.
const frameInterval = 20 * time.Millisecond

// player drains one source into one voice connection, FIFO by submission
// order. It exits when the source drains (the source closes itself at that
// point) or stop is closed.
type player struct {
	conn   Conn
	source *tts.Source
	stop   chan struct{}
	done   chan struct{}
}

func (p *player) run() {
	defer close(p.done)

	if err := p.conn.Speaking(true); err != nil {
		log.Warn().Err(err).Msg("Failed to set speaking state")
	}
	defer func() {
		if err := p.conn.Speaking(false); err != nil {
			log.Warn().Err(err).Msg("Failed to clear speaking state")
		}
	}()

	for {
		select {
		case <-p.stop:
			return
		default:
		}

		req, ok := p.source.Next()
		if !ok {
			return
		}

		if err := p.speak(req); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Speech playback failed")
		}
	}
}

// speak renders one request and paces its frames into the connection. The
// stream context is canceled by Source.Clear and Source.Close, which is how a
// move or disconnect drops in-flight audio.
func (p *player) speak(req tts.Request) error {
	ctx, frames, err := p.source.Stream(context.Background(), req)
	if err != nil {
		return err
	}
	defer p.source.EndStream()
	defer frames.Close()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		frame, err := frames.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		select {
		case <-p.stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		select {
		case p.conn.Send() <- frame:
		case <-p.stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
