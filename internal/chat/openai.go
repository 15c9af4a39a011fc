package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JustZavala/onboard/internal/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client talks to the OpenAI chat, transcription and speech endpoints.
type Client struct {
	api             openai.Client
	model           string
	transcribeModel string
	speechModel     string
	voice           string
}

// ClientOption customizes the underlying SDK client.
type ClientOption = option.RequestOption

// NewClient builds a client from the chat config. It fails before any request
// is made when no API key is configured.
func NewClient(cfg config.ChatConfig, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	reqOpts := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return &Client{
		api:             openai.NewClient(reqOpts...),
		model:           orDefault(cfg.Model, config.DefaultChatModel),
		transcribeModel: orDefault(cfg.TranscribeModel, config.DefaultTranscribeModel),
		speechModel:     orDefault(cfg.SpeechModel, config.DefaultSpeechModel),
		voice:           orDefault(cfg.Voice, config.DefaultVoice),
	}, nil
}

// WithBaseURL points the client at another OpenAI-compatible endpoint.
func WithBaseURL(url string) ClientOption {
	return option.WithBaseURL(url)
}

// WithMaxRetries sets how often failed requests are retried.
func WithMaxRetries(n int) ClientOption {
	return option.WithMaxRetries(n)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Complete implements Completer with the chat completions endpoint.
func (c *Client) Complete(ctx context.Context, system string, history []Message) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	for _, m := range history {
		switch m.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		return "", describeAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices", c.model)
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe implements Transcriber with the transcription endpoint.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if filename == "" {
		filename = "audio.wav"
	}
	resp, err := c.api.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(c.transcribeModel),
		File:  openai.File(audio, filename, audioContentType(filename)),
	})
	if err != nil {
		return "", describeAPIError(err)
	}
	return resp.Text, nil
}

// Synthesize implements Synthesizer with the speech endpoint, returning mp3.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := c.api.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(c.speechModel),
		Voice:          openai.AudioSpeechNewParamsVoice(c.voice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, describeAPIError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading speech: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("speech response was empty")
	}
	return data, nil
}

func audioContentType(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(filename, ".ogg"):
		return "audio/ogg"
	case strings.HasSuffix(filename, ".webm"):
		return "audio/webm"
	default:
		return "audio/wav"
	}
}

// describeAPIError keeps the status code of API failures in the message.
func describeAPIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai: status %d: %w", apiErr.StatusCode, err)
	}
	return fmt.Errorf("openai: %w", err)
}
