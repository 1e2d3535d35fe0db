package tts

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAISynthesizer renders speech through the OpenAI speech endpoint. It
// requests opus output so no codec work happens in-process; the response is
// only demuxed out of its Ogg container.
type OpenAISynthesizer struct {
	client *openai.Client
	model  openai.SpeechModel
}

func NewOpenAISynthesizer(token string) *OpenAISynthesizer {
	return &OpenAISynthesizer{
		client: openai.NewClient(token),
		model:  openai.TTSModel1,
	}
}

func (o *OpenAISynthesizer) Synthesize(ctx context.Context, req Request) (FrameReader, error) {
	res, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          o.model,
		Input:          req.Text,
		Voice:          openai.SpeechVoice(req.Profile.Voice),
		Speed:          req.Profile.Speed,
		ResponseFormat: openai.SpeechResponseFormatOpus,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	return NewOggOpusReader(res), nil
}
