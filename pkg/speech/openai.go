package speech

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	go_openai "github.com/sashabaranov/go-openai"
)

// OpenAISynthesizer renders replies to mp3 files through the hosted speech
// endpoint.
type OpenAISynthesizer struct {
	client *go_openai.Client
	dir    string
	voice  go_openai.SpeechVoice
}

func NewOpenAISynthesizer(apiKey, baseURL, dir string) *OpenAISynthesizer {
	config := go_openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAISynthesizer{
		client: go_openai.NewClientWithConfig(config),
		dir:    dir,
		voice:  go_openai.VoiceNova,
	}
}

var _ Synthesizer = (*OpenAISynthesizer)(nil)

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	resp, err := s.client.CreateSpeech(ctx, go_openai.CreateSpeechRequest{
		Model: go_openai.TTSModel1,
		Input: text,
		Voice: s.voice,
	})
	if err != nil {
		return "", errors.Wrap(err, "create speech")
	}
	defer func() {
		_ = resp.Close()
	}()

	path := filepath.Join(s.dir, "reply-"+time.Now().Format("150405")+".mp3")
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create audio file")
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	if _, err := io.Copy(f, resp); err != nil {
		return "", errors.Wrap(err, "write audio file")
	}
	return path, nil
}
