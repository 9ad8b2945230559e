package prompt

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/valet/pkg/calendar"
	"github.com/go-go-golems/valet/pkg/mail"
	"github.com/go-go-golems/valet/pkg/store"
)

// DefaultMemory is shown to the model before the user has told it anything.
const DefaultMemory = "User has not introduced themselves yet."

// FactBundle is an ephemeral read-only snapshot of collaborator state,
// fetched fresh before each prompt assembly and never cached.
type FactBundle struct {
	Memory   string
	Tasks    string
	Upcoming []calendar.Entry
	Unread   []mail.UnreadMessage
	// FileText is the extracted text of an uploaded file, when one
	// accompanies the turn.
	FileText string
}

// FactFetcher gathers the bundle from whatever collaborators are wired in.
// Nil collaborators simply contribute nothing; individual fetch failures are
// logged and leave their section empty, since a missing fact must not fail
// the turn.
type FactFetcher struct {
	Store         store.Store
	Calendar      calendar.Calendar
	Mailer        mail.Mailer
	CalendarLimit int
	UnreadLimit   int
}

func (f *FactFetcher) Fetch(ctx context.Context) FactBundle {
	bundle := FactBundle{Memory: DefaultMemory}

	if f.Store != nil {
		if memory, ok, err := f.Store.Get(ctx, store.KeyMemory); err != nil {
			log.Warn().Err(err).Msg("facts: failed to fetch memory")
		} else if ok && memory != "" {
			bundle.Memory = memory
		}
		if tasks, ok, err := f.Store.Get(ctx, store.KeyTasks); err != nil {
			log.Warn().Err(err).Msg("facts: failed to fetch tasks")
		} else if ok {
			bundle.Tasks = tasks
		}
	}

	if f.Calendar != nil {
		limit := f.CalendarLimit
		if limit == 0 {
			limit = 5
		}
		upcoming, err := f.Calendar.ListUpcoming(ctx, limit)
		if err != nil {
			log.Warn().Err(err).Msg("facts: failed to fetch calendar entries")
		} else {
			bundle.Upcoming = upcoming
		}
	}

	if f.Mailer != nil {
		limit := f.UnreadLimit
		if limit == 0 {
			limit = 5
		}
		unread, err := f.Mailer.ListUnread(ctx, limit)
		if err != nil {
			log.Debug().Err(err).Msg("facts: failed to fetch unread mail")
		} else {
			bundle.Unread = unread
		}
	}

	return bundle
}
