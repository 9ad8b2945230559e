package engine

import (
	"bytes"
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"

	"github.com/go-go-golems/valet/pkg/prompt"
)

// OpenAIEngine talks to an OpenAI-compatible chat completion API. Audio
// attachments are transcribed first and appended to the user utterance, since
// the chat endpoint itself only takes text.
type OpenAIEngine struct {
	client *go_openai.Client
	model  string
}

func NewOpenAIEngine(apiKey, baseURL, model string) *OpenAIEngine {
	config := go_openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIEngine{
		client: go_openai.NewClientWithConfig(config),
		model:  model,
	}
}

var _ Engine = (*OpenAIEngine)(nil)

func (e *OpenAIEngine) Generate(ctx context.Context, bundle *prompt.Bundle) (string, error) {
	user := bundle.User
	if bundle.Attachment != nil {
		transcript, err := e.transcribe(ctx, bundle.Attachment)
		if err != nil {
			return "", wrapAPIError(err, "transcribe attachment")
		}
		if user == "" {
			user = transcript
		} else {
			user = user + "\n\n[transcribed audio]: " + transcript
		}
	}

	req := go_openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []go_openai.ChatCompletionMessage{
			{Role: go_openai.ChatMessageRoleSystem, Content: bundle.System},
			{Role: go_openai.ChatMessageRoleUser, Content: user},
		},
	}

	log.Debug().
		Str("model", e.model).
		Int("system_len", len(bundle.System)).
		Int("user_len", len(user)).
		Msg("openai: chat completion request")

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", wrapAPIError(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (e *OpenAIEngine) transcribe(ctx context.Context, att *prompt.Attachment) (string, error) {
	resp, err := e.client.CreateTranscription(ctx, go_openai.AudioRequest{
		Model:    go_openai.Whisper1,
		Reader:   bytes.NewReader(att.Data),
		FilePath: "attachment.wav",
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// wrapAPIError maps provider 429 responses onto ErrRateLimited so the retry
// policy can tell them apart from generic failures.
func wrapAPIError(err error, msg string) error {
	var apiErr *go_openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return errors.Wrapf(ErrRateLimited, "%s: %s", msg, apiErr.Message)
	}
	var reqErr *go_openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return errors.Wrap(ErrRateLimited, msg)
	}
	return errors.Wrap(err, msg)
}
