// Package engine abstracts the hosted model service. One user turn makes at
// most two sequential Generate calls: the initial pass and, for grounding
// actions, one more.
package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/go-go-golems/valet/pkg/prompt"
)

// ErrRateLimited marks provider rate-limit responses. It is the only failure
// worth retrying; everything else surfaces immediately.
var ErrRateLimited = errors.New("model service rate limited")

type Engine interface {
	Generate(ctx context.Context, bundle *prompt.Bundle) (string, error)
}

// GenerateFunc adapts a plain function to the Engine interface, mostly for
// tests.
type GenerateFunc func(ctx context.Context, bundle *prompt.Bundle) (string, error)

func (f GenerateFunc) Generate(ctx context.Context, bundle *prompt.Bundle) (string, error) {
	return f(ctx, bundle)
}
