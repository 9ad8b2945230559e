package prompt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/valet/pkg/actions"
	"github.com/go-go-golems/valet/pkg/calendar"
	"github.com/go-go-golems/valet/pkg/conversation"
	"github.com/go-go-golems/valet/pkg/store"
)

func testRegistry(t *testing.T) actions.Registry {
	t.Helper()
	r := actions.NewInMemoryRegistry()
	noop := func(context.Context, map[string]string) (string, error) { return "", nil }
	require.NoError(t, r.Register(actions.Schema{
		Kind:        actions.KindSchedule,
		Required:    []string{"summary", "time"},
		Description: "Create a calendar entry.",
		Example:     map[string]string{"summary": "Dentist", "time": "2025-03-01T09:00:00"},
	}, noop))
	require.NoError(t, r.Register(actions.Schema{
		Kind:        actions.KindSearch,
		Required:    []string{"query"},
		Description: "Run a web search.",
		Grounding:   true,
		Example:     map[string]string{"query": "weather"},
	}, noop))
	return r
}

func TestBuildRendersEverySectionWithPlaceholders(t *testing.T) {
	b, err := NewBuilder(testRegistry(t))
	require.NoError(t, err)

	bundle, err := b.Build(nil, FactBundle{Memory: DefaultMemory}, "hello", nil)
	require.NoError(t, err)

	// Every section heading is present even when its content is empty.
	for _, section := range []string{
		"AVAILABLE ACTIONS:",
		"LONG TERM MEMORY:",
		"CURRENT TASKS:",
		"UPCOMING CALENDAR:",
		"UNREAD MAIL:",
		"UPLOADED FILE:",
		"RECENT CONVERSATION:",
	} {
		assert.Contains(t, bundle.System, section)
	}
	assert.Contains(t, bundle.System, "(none yet)")
	assert.Contains(t, bundle.System, DefaultMemory)
	assert.Equal(t, "hello", bundle.User)
}

func TestBuildRendersInstructionBlockFromRegistry(t *testing.T) {
	b, err := NewBuilder(testRegistry(t))
	require.NoError(t, err)

	bundle, err := b.Build(nil, FactBundle{}, "hi", nil)
	require.NoError(t, err)

	assert.Contains(t, bundle.System, "- schedule: Create a calendar entry.")
	assert.Contains(t, bundle.System, `{"action":"schedule"`)
	assert.Contains(t, bundle.System, "- search: Run a web search.")
	assert.Contains(t, bundle.System, `"reply_to_user"`)
}

func TestBuildRendersHistoryAsGiven(t *testing.T) {
	b, err := NewBuilder(testRegistry(t))
	require.NoError(t, err)

	// Windowing is the caller's job; Build renders whatever slice it gets.
	history := []*conversation.Message{
		conversation.NewMessage(conversation.RoleUser, "first question"),
		conversation.NewMessage(conversation.RoleAssistant, "first answer"),
	}
	bundle, err := b.Build(history, FactBundle{}, "hi", nil)
	require.NoError(t, err)

	assert.Contains(t, bundle.System, "[user]: first question")
	assert.Contains(t, bundle.System, "[assistant]: first answer")
}

func TestBuildRendersFacts(t *testing.T) {
	b, err := NewBuilder(testRegistry(t))
	require.NoError(t, err)

	facts := FactBundle{
		Memory: "User's name is Ada.",
		Tasks:  "1. Ship the release",
		Upcoming: []calendar.Entry{
			{Title: "Standup", Start: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
		},
	}
	bundle, err := b.Build(nil, facts, "hi", nil)
	require.NoError(t, err)

	assert.Contains(t, bundle.System, "User's name is Ada.")
	assert.Contains(t, bundle.System, "1. Ship the release")
	assert.Contains(t, bundle.System, "Standup")
}

func TestBuildGroundingEmbedsToolResult(t *testing.T) {
	b, err := NewBuilder(testRegistry(t))
	require.NoError(t, err)

	bundle, err := b.BuildGrounding("[1] Sunny, 21C\nhttps://example.com", "weather in berlin?")
	require.NoError(t, err)

	assert.Contains(t, bundle.System, "TOOL RESULT:")
	assert.Contains(t, bundle.System, "Sunny, 21C")
	assert.Equal(t, "weather in berlin?", bundle.User)
	// The grounded pass must not advertise actions again.
	assert.NotContains(t, bundle.System, "AVAILABLE ACTIONS")
}

func TestFactFetcherSnapshotsCollaborators(t *testing.T) {
	docs := store.NewMemoryStore()
	require.NoError(t, docs.Put(context.Background(), store.KeyMemory, "knows Go"))
	require.NoError(t, docs.Put(context.Background(), store.KeyTasks, "write tests"))

	cal := calendar.NewMemoryCalendar()
	require.NoError(t, cal.Create(context.Background(), "Review", time.Now().Add(time.Hour), 0))

	f := &FactFetcher{Store: docs, Calendar: cal}
	bundle := f.Fetch(context.Background())

	assert.Equal(t, "knows Go", bundle.Memory)
	assert.Equal(t, "write tests", bundle.Tasks)
	require.Len(t, bundle.Upcoming, 1)
	assert.Equal(t, "Review", bundle.Upcoming[0].Title)
}

func TestFactFetcherDefaultsWhenEmpty(t *testing.T) {
	f := &FactFetcher{Store: store.NewMemoryStore()}
	bundle := f.Fetch(context.Background())
	assert.Equal(t, DefaultMemory, bundle.Memory)
	assert.Empty(t, bundle.Tasks)
}

func TestBuildSectionOrderIsFixed(t *testing.T) {
	b, err := NewBuilder(testRegistry(t))
	require.NoError(t, err)

	bundle, err := b.Build(nil, FactBundle{}, "hi", nil)
	require.NoError(t, err)

	sections := []string{
		"SYSTEM:", "DATE:", "AVAILABLE ACTIONS:", "LONG TERM MEMORY:",
		"CURRENT TASKS:", "UPCOMING CALENDAR:", "UNREAD MAIL:",
		"UPLOADED FILE:", "RECENT CONVERSATION:",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(bundle.System, s)
		require.GreaterOrEqual(t, idx, 0, "missing section %s", s)
		assert.Greater(t, idx, last, "section %s out of order", s)
		last = idx
	}
}
