package tts

import "context"

// FrameReader yields opus packets ready to hand to the voice transport,
// one 20ms frame per call. Next returns io.EOF when the speech is finished.
type FrameReader interface {
	Next() ([]byte, error)
	Close() error
}

// Synthesizer renders one speech request into a stream of opus frames.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (FrameReader, error)
}
