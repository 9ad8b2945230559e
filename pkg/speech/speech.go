// Package speech is the text-to-speech collaborator. Synthesis is strictly a
// post-processing step: it runs after the reply text is fixed and its
// failures never affect the chat state.
package speech

import (
	"context"
	"strings"
)

// Synthesizer turns reply text into an audio file and returns its path.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// CleanForSpeech strips markdown emphasis markers that read badly aloud.
func CleanForSpeech(text string) string {
	return strings.ReplaceAll(text, "*", "")
}

// Null discards synthesis requests. Used when speech is disabled.
type Null struct{}

func (Null) Synthesize(context.Context, string) (string, error) {
	return "", nil
}

var _ Synthesizer = Null{}
