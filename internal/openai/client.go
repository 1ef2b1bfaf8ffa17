package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.AdaEmbeddingV2
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from ada-002
	DefaultEmbeddingDimensions = 1536
	// DefaultSpeechModel is the model used for speech synthesis
	DefaultSpeechModel = openai.TTSModel1
	// DefaultSpeechVoice is the voice used for speech synthesis
	DefaultSpeechVoice = openai.VoiceAlloy

	// maxEmbeddingAttempts bounds backoff retries for transient embedding failures
	maxEmbeddingAttempts = 3
	// embeddingRetryBase is the initial backoff delay, doubled per attempt
	embeddingRetryBase = 500 * time.Millisecond
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// API defines the subset of the OpenAI API the service depends on
type API interface {
	CreateEmbeddings(ctx context.Context, text string, model openai.EmbeddingModel) ([]float32, error)
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (io.ReadCloser, error)
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Client wraps the OpenAI API client
type Client struct {
	api        API
	model      openai.EmbeddingModel
	dimensions int
	sleep      func(time.Duration)
}

// SDKAdapter adapts the sashabaranov SDK client to the API interface
type SDKAdapter struct {
	client *openai.Client
}

func NewSDKAdapter(apiKey string) *SDKAdapter {
	return &SDKAdapter{client: openai.NewClient(apiKey)}
}

func (a *SDKAdapter) CreateEmbeddings(ctx context.Context, text string, model openai.EmbeddingModel) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

func (a *SDKAdapter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return a.client.CreateChatCompletion(ctx, req)
}

func (a *SDKAdapter) CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (io.ReadCloser, error) {
	return a.client.CreateSpeech(ctx, req)
}

func (a *SDKAdapter) CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	return a.client.CreateTranscription(ctx, req)
}

type Config struct {
	APIKey              string
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Client{
		api:        NewSDKAdapter(cfg.APIKey),
		model:      model,
		dimensions: dimensions,
		sleep:      time.Sleep,
	}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// GenerateEmbedding generates an embedding for the given text using the
// configured embedding model.
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return c.GenerateEmbeddingWithModel(ctx, text, c.model)
}

// GenerateEmbeddingWithModel generates an embedding for the given text.
// Rate-limit and server errors are retried with exponential backoff up to
// maxEmbeddingAttempts before surfacing.
func (c *Client) GenerateEmbeddingWithModel(ctx context.Context, text string, model openai.EmbeddingModel) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	var embedding []float32
	var err error
	delay := embeddingRetryBase
	for attempt := 1; attempt <= maxEmbeddingAttempts; attempt++ {
		embedding, err = c.api.CreateEmbeddings(ctx, text, model)
		if err == nil {
			break
		}
		if !isRetryable(err) || attempt == maxEmbeddingAttempts {
			return nil, fmt.Errorf("failed to create embedding: %w", err)
		}
		c.sleep(delay)
		delay *= 2
	}

	if len(embedding) != c.dimensions {
		return nil, ErrWrongDimensions
	}

	return embedding, nil
}

// isRetryable reports whether an OpenAI failure is transient: rate limit,
// quota pressure, or a server-side error.
func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	return false
}

// Complete runs a single-turn chat completion and returns the text content.
func (c *Client) Complete(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, model, systemPrompt, userPrompt, nil)
}

// CompleteJSON runs a single-turn chat completion with the response forced
// into a JSON object, for structured-output calls.
func (c *Client) CompleteJSON(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, model, systemPrompt, userPrompt, &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	})
}

func (c *Client) complete(ctx context.Context, model, systemPrompt, userPrompt string, format *openai.ChatCompletionResponseFormat) (string, error) {
	if userPrompt == "" {
		return "", ErrEmptyText
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:          model,
		Messages:       messages,
		ResponseFormat: format,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// Speak synthesizes text to MP3 audio bytes.
func (c *Client) Speak(ctx context.Context, model openai.SpeechModel, voice openai.SpeechVoice, text string) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if model == "" {
		model = DefaultSpeechModel
	}
	if voice == "" {
		voice = DefaultSpeechVoice
	}

	stream, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          model,
		Voice:          voice,
		Input:          text,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer stream.Close()

	audio, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech audio: %w", err)
	}
	return audio, nil
}

// Transcribe converts spoken audio to text.
func (c *Client) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("no audio data provided")
	}

	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return resp.Text, nil
}
