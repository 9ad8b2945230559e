package actions

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Kind identifies one recognized command that can be extracted from model
// output. Kinds are compared case-insensitively after trimming.
type Kind string

const (
	KindUpdateMemory  Kind = "update_memory"
	KindUpdateTasks   Kind = "update_tasks"
	KindSchedule      Kind = "schedule"
	KindSearch        Kind = "search"
	KindSearchVideo   Kind = "search_video"
	KindSendEmail     Kind = "send_email"
	KindReadEmail     Kind = "read_email"
	KindSaveToStorage Kind = "save_to_storage"
	KindNone          Kind = "none"
)

// NormalizeKind trims and lowercases a raw discriminator value so that model
// output with unexpected casing or whitespace still resolves.
func NormalizeKind(s string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s)))
}

// Action is a validated, typed command extracted from a single model response.
// It is constructed once by the parser and consumed once by the dispatcher;
// it is never persisted.
type Action struct {
	Kind Kind
	// Parameters contains exactly the required keys of the matching schema,
	// all non-empty.
	Parameters map[string]string
	// Reply is the optional user-facing reply the model supplied alongside
	// the command ("reply_to_user").
	Reply string
}

func (a *Action) String() string {
	keys := make([]string, 0, len(a.Parameters))
	for k := range a.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, a.Parameters[k]))
	}
	return fmt.Sprintf("%s(%s)", a.Kind, strings.Join(parts, ", "))
}

// Handler executes one action with its validated parameters and returns a
// human-readable result string. Collaborator failures are returned as errors;
// the dispatcher translates them into a user-visible reply, so handlers never
// panic and never retry on their own.
type Handler func(ctx context.Context, params map[string]string) (string, error)
