package parse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/valet/pkg/actions"
)

func testRegistry(t *testing.T) *actions.InMemoryRegistry {
	t.Helper()
	r := actions.NewInMemoryRegistry()
	noop := func(context.Context, map[string]string) (string, error) { return "", nil }

	require.NoError(t, r.Register(actions.Schema{
		Kind:     actions.KindSchedule,
		Required: []string{"summary", "time"},
	}, noop))
	require.NoError(t, r.Register(actions.Schema{
		Kind:      actions.KindSearch,
		Required:  []string{"query"},
		Grounding: true,
	}, noop))
	require.NoError(t, r.Register(actions.Schema{
		Kind:     actions.KindUpdateMemory,
		Required: []string{"new_memory"},
	}, noop))
	require.NoError(t, r.Register(actions.Schema{
		Kind: actions.KindNone,
	}, noop))
	return r
}

func TestParsePlainTextWithoutBraces(t *testing.T) {
	p := NewParser(testRegistry(t))
	act, ok := p.Parse("Sure, happy to help!")
	assert.False(t, ok)
	assert.Nil(t, act)
}

func TestParseScheduleWithTrailingCommentary(t *testing.T) {
	p := NewParser(testRegistry(t))
	act, ok := p.Parse(`Let's meet. {"action":"schedule","summary":"Standup","time":"2025-03-01T09:00:00"}`)
	require.True(t, ok)
	assert.Equal(t, actions.KindSchedule, act.Kind)
	assert.Equal(t, map[string]string{
		"summary": "Standup",
		"time":    "2025-03-01T09:00:00",
	}, act.Parameters)
}

func TestParseMissingRequiredParameter(t *testing.T) {
	p := NewParser(testRegistry(t))
	act, ok := p.Parse(`I think {"action":"update_memory"}`)
	assert.False(t, ok)
	assert.Nil(t, act)
}

func TestParseEmptyRequiredParameter(t *testing.T) {
	p := NewParser(testRegistry(t))
	_, ok := p.Parse(`{"action":"update_memory","new_memory":""}`)
	assert.False(t, ok)
}

func TestParseUnknownActionIsPlainText(t *testing.T) {
	p := NewParser(testRegistry(t))
	_, ok := p.Parse(`{"action":"launch_rocket","target":"moon"}`)
	assert.False(t, ok)
}

func TestParseMissingDiscriminator(t *testing.T) {
	p := NewParser(testRegistry(t))
	_, ok := p.Parse(`{"summary":"Standup","time":"2025-03-01T09:00:00"}`)
	assert.False(t, ok)
}

func TestParseMalformedJSON(t *testing.T) {
	p := NewParser(testRegistry(t))
	_, ok := p.Parse(`{"action":"schedule", oops`)
	assert.False(t, ok)
}

// Two unrelated brace groups: the first-{/last-} span covers both and fails
// to decode as one object. This is the documented weakness of the heuristic;
// the input falls back to plain text.
func TestParseMultipleBraceGroupsFallsBack(t *testing.T) {
	p := NewParser(testRegistry(t))
	_, ok := p.Parse(`note: {"x":1} {"action":"search","query":"weather"}`)
	assert.False(t, ok)
}

func TestParseFencedJSON(t *testing.T) {
	p := NewParser(testRegistry(t))
	act, ok := p.Parse("```json\n{\"action\":\"search\",\"query\":\"weather\"}\n```")
	require.True(t, ok)
	assert.Equal(t, actions.KindSearch, act.Kind)
	assert.Equal(t, "weather", act.Parameters["query"])
}

func TestParseNormalizesKindCasingAndWhitespace(t *testing.T) {
	p := NewParser(testRegistry(t))
	act, ok := p.Parse(`{"action":"  Search ","query":"weather"}`)
	require.True(t, ok)
	assert.Equal(t, actions.KindSearch, act.Kind)
}

func TestParseExtractsReplyToUser(t *testing.T) {
	p := NewParser(testRegistry(t))
	act, ok := p.Parse(`{"action":"none","reply_to_user":"All done."}`)
	require.True(t, ok)
	assert.Equal(t, actions.KindNone, act.Kind)
	assert.Equal(t, "All done.", act.Reply)
	assert.Empty(t, act.Parameters)
}

func TestParseIsIdempotent(t *testing.T) {
	p := NewParser(testRegistry(t))
	input := `{"action":"schedule","summary":"Standup","time":"2025-03-01T09:00:00","reply_to_user":"Booked!"}`
	first, ok := p.Parse(input)
	require.True(t, ok)
	second, ok := p.Parse(input)
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestExtractJSONSpan(t *testing.T) {
	span, ok := ExtractJSONSpan(`before {"a":1} after`)
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, span)

	_, ok = ExtractJSONSpan("no braces here")
	assert.False(t, ok)

	// Closing brace before the first opening one does not count.
	_, ok = ExtractJSONSpan("} only a stray close, then {")
	assert.False(t, ok)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "{\"a\":1}", StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "plain", StripFences("plain"))
}
