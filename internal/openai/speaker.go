package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Speaker binds a Client to a fixed speech model and voice.
type Speaker struct {
	client *Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
}

func NewSpeaker(client *Client, model openai.SpeechModel, voice openai.SpeechVoice) *Speaker {
	if model == "" {
		model = DefaultSpeechModel
	}
	if voice == "" {
		voice = DefaultSpeechVoice
	}
	return &Speaker{client: client, model: model, voice: voice}
}

func (s *Speaker) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return s.client.Speak(ctx, s.model, s.voice, text)
}
