package actions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/go-go-golems/valet/pkg/calendar"
	"github.com/go-go-golems/valet/pkg/mail"
	"github.com/go-go-golems/valet/pkg/search"
	"github.com/go-go-golems/valet/pkg/store"
)

// Deps are the collaborator capabilities the builtin handlers are allowed to
// touch. They are injected here once at startup; handlers never reach for
// ambient global state.
type Deps struct {
	Store         store.Store
	Calendar      calendar.Calendar
	Searcher      search.Searcher
	VideoSearcher search.Searcher
	Mailer        mail.Mailer
}

// NewDefaultRegistry builds the canonical action table. Each handler performs
// exactly one externally visible side effect and reports the outcome as a
// plain string or an error.
func NewDefaultRegistry(deps Deps) (*InMemoryRegistry, error) {
	r := NewInMemoryRegistry()

	entries := []struct {
		schema  Schema
		handler Handler
	}{
		{
			Schema{
				Kind:        KindUpdateMemory,
				Required:    []string{"new_memory"},
				Description: "Replace the long-term memory with an updated version when the user shares new facts.",
				Example:     map[string]string{"new_memory": "The user's name is Ada."},
			},
			updateDocumentHandler(deps.Store, store.KeyMemory, "new_memory", "Memory updated."),
		},
		{
			Schema{
				Kind:        KindUpdateTasks,
				Required:    []string{"new_tasks"},
				Description: "Replace the task list when plans change.",
				Example:     map[string]string{"new_tasks": "1. Buy groceries\n2. Call the bank"},
			},
			updateDocumentHandler(deps.Store, store.KeyTasks, "new_tasks", "Tasks updated."),
		},
		{
			Schema{
				Kind:        KindSchedule,
				Required:    []string{"summary", "time"},
				Description: "Create a calendar entry. Time must be ISO-8601; duration defaults to one hour.",
				Example:     map[string]string{"summary": "Dentist", "time": "2025-03-01T09:00:00"},
			},
			scheduleHandler(deps.Calendar),
		},
		{
			Schema{
				Kind:        KindSearch,
				Required:    []string{"query"},
				Description: "Run a web search when the answer needs current information.",
				Grounding:   true,
				Example:     map[string]string{"query": "weather in Berlin today"},
			},
			searchHandler(deps.Searcher),
		},
		{
			Schema{
				Kind:        KindSearchVideo,
				Required:    []string{"query"},
				Description: "Search for videos on a topic.",
				Grounding:   true,
				Example:     map[string]string{"query": "how to fix a bike puncture"},
			},
			searchHandler(deps.VideoSearcher),
		},
		{
			Schema{
				Kind:        KindSendEmail,
				Required:    []string{"to", "subject", "body"},
				Description: "Send an email on the user's behalf.",
				Example:     map[string]string{"to": "someone@example.com", "subject": "Hello", "body": "..."},
			},
			sendEmailHandler(deps.Mailer),
		},
		{
			Schema{
				Kind:        KindReadEmail,
				Required:    nil,
				Description: "List the user's unread email.",
				Example:     map[string]string{},
			},
			readEmailHandler(deps.Mailer),
		},
		{
			Schema{
				Kind:        KindSaveToStorage,
				Required:    []string{"filename", "content"},
				Description: "Save a note or document to storage under a filename.",
				Example:     map[string]string{"filename": "ideas.txt", "content": "..."},
			},
			saveToStorageHandler(deps.Store),
		},
		{
			Schema{
				Kind:        KindNone,
				Required:    nil,
				Description: "No action needed; reply_to_user carries the whole answer.",
				Example:     map[string]string{},
			},
			noneHandler(),
		},
	}

	for _, e := range entries {
		if err := r.Register(e.schema, e.handler); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func updateDocumentHandler(s store.Store, key, param, confirmation string) Handler {
	return func(ctx context.Context, params map[string]string) (string, error) {
		if s == nil {
			return "", errors.New("no document store configured")
		}
		if err := s.Put(ctx, key, params[param]); err != nil {
			return "", err
		}
		return confirmation, nil
	}
}

func saveToStorageHandler(s store.Store) Handler {
	return func(ctx context.Context, params map[string]string) (string, error) {
		if s == nil {
			return "", errors.New("no document store configured")
		}
		filename := params["filename"]
		if err := s.Put(ctx, filename, params["content"]); err != nil {
			return "", err
		}
		return fmt.Sprintf("Saved %s.", filename), nil
	}
}

// scheduleTimeLayouts are tried in order; models emit ISO-8601 with and
// without zone information.
var scheduleTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

func scheduleHandler(c calendar.Calendar) Handler {
	return func(ctx context.Context, params map[string]string) (string, error) {
		if c == nil {
			return "", errors.New("no calendar configured")
		}
		raw := strings.TrimSpace(params["time"])
		var start time.Time
		var err error
		for _, layout := range scheduleTimeLayouts {
			start, err = time.ParseInLocation(layout, raw, time.Local)
			if err == nil {
				break
			}
		}
		if err != nil {
			return "", errors.Errorf("could not parse time %q", raw)
		}
		if err := c.Create(ctx, params["summary"], start, calendar.DefaultDuration); err != nil {
			return "", err
		}
		return fmt.Sprintf("Scheduled %q for %s.", params["summary"], start.Format("Monday, Jan 2 at 15:04")), nil
	}
}

func searchHandler(s search.Searcher) Handler {
	return func(ctx context.Context, params map[string]string) (string, error) {
		if s == nil {
			return "", errors.New("no search backend configured")
		}
		results, err := s.Query(ctx, params["query"], 5)
		if err != nil {
			return "", err
		}
		return search.FormatResults(results), nil
	}
}

func sendEmailHandler(m mail.Mailer) Handler {
	return func(ctx context.Context, params map[string]string) (string, error) {
		if m == nil {
			return "", errors.New("no mail backend configured")
		}
		if err := m.Send(ctx, params["to"], params["subject"], params["body"]); err != nil {
			return "", err
		}
		return fmt.Sprintf("Email sent to %s.", params["to"]), nil
	}
}

func readEmailHandler(m mail.Mailer) Handler {
	return func(ctx context.Context, params map[string]string) (string, error) {
		if m == nil {
			return "", errors.New("no mail backend configured")
		}
		unread, err := m.ListUnread(ctx, 5)
		if err != nil {
			return "", err
		}
		if len(unread) == 0 {
			return "No unread mail.", nil
		}
		var sb strings.Builder
		for _, msg := range unread {
			fmt.Fprintf(&sb, "- from %s: %s (%s)\n", msg.Sender, msg.Subject, msg.Excerpt)
		}
		return strings.TrimRight(sb.String(), "\n"), nil
	}
}

func noneHandler() Handler {
	return func(context.Context, map[string]string) (string, error) {
		return "", nil
	}
}
