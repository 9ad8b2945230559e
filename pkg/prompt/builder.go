package prompt

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/pkg/errors"

	"github.com/go-go-golems/valet/pkg/actions"
	"github.com/go-go-golems/valet/pkg/conversation"
)

// DefaultPersona is the system role description used when none is configured.
const DefaultPersona = "You are Valet, a concise and reliable personal assistant."

// DefaultHistoryWindow bounds how many recent messages are rendered into the
// prompt. Observed sweet spot is between 8 and 15.
const DefaultHistoryWindow = 12

// systemTemplate renders every section in fixed order. Sections are never
// omitted: an empty one renders its "(none yet)" placeholder, since dropping
// a section destabilizes the model's adherence to the output format.
const systemTemplate = `SYSTEM: {{ .Persona }}
DATE: {{ .Date }}

AVAILABLE ACTIONS:
To invoke an action, output exactly one JSON object. Otherwise answer in plain text.
{{- range .Schemas }}
- {{ .Kind }}: {{ .Description }}
  {{ .ExampleJSON }}
{{- end }}

LONG TERM MEMORY:
{{ .Memory | default "(none yet)" }}

CURRENT TASKS:
{{ .Tasks | default "(none yet)" }}

UPCOMING CALENDAR:
{{ .Calendar | default "(none yet)" }}

UNREAD MAIL:
{{ .Unread | default "(none yet)" }}

UPLOADED FILE:
{{ .FileText | default "(none yet)" }}

RECENT CONVERSATION:
{{ .History | default "(none yet)" }}`

// groundingTemplate embeds a tool result for the second, grounded generation
// pass. Its output is final and is never parsed for actions again.
const groundingTemplate = `SYSTEM: {{ .Persona }}
DATE: {{ .Date }}

You already ran a tool for the user's request. Use ONLY the material below to
answer, citing sources where available. Answer in plain text, no JSON.

TOOL RESULT:
{{ .ToolResult | default "(empty result)" }}`

// Builder assembles prompt bundles. It is configured once and safe to share
// across turns.
type Builder struct {
	Persona       string
	HistoryWindow int

	schemas []actions.Schema
	system  *template.Template
	ground  *template.Template
}

func NewBuilder(registry actions.Registry, options ...BuilderOption) (*Builder, error) {
	system, err := template.New("system").Funcs(sprig.TxtFuncMap()).Parse(systemTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "parse system template")
	}
	ground, err := template.New("grounding").Funcs(sprig.TxtFuncMap()).Parse(groundingTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "parse grounding template")
	}

	ret := &Builder{
		Persona:       DefaultPersona,
		HistoryWindow: DefaultHistoryWindow,
		schemas:       registry.Schemas(),
		system:        system,
		ground:        ground,
	}
	for _, o := range options {
		o(ret)
	}
	return ret, nil
}

type BuilderOption func(*Builder)

func WithPersona(persona string) BuilderOption {
	return func(b *Builder) {
		if persona != "" {
			b.Persona = persona
		}
	}
}

func WithHistoryWindow(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.HistoryWindow = n
		}
	}
}

// Build assembles the first-pass prompt for a turn. The history slice is
// rendered as given; callers bound it to the recency window first, typically
// through the conversation manager's Window.
func (b *Builder) Build(history []*conversation.Message, facts FactBundle, user string, attachment *Attachment) (*Bundle, error) {
	data := map[string]interface{}{
		"Persona":  b.Persona,
		"Date":     time.Now().Format("Monday, 2006-01-02"),
		"Schemas":  schemaViews(b.schemas),
		"Memory":   facts.Memory,
		"Tasks":    facts.Tasks,
		"Calendar": renderCalendar(facts),
		"Unread":   renderUnread(facts),
		"FileText": facts.FileText,
		"History":  renderHistory(history),
	}

	var sb strings.Builder
	if err := b.system.Execute(&sb, data); err != nil {
		return nil, errors.Wrap(err, "render system prompt")
	}
	return &Bundle{System: sb.String(), User: user, Attachment: attachment}, nil
}

// BuildGrounding assembles the prompt for the single grounded follow-up pass,
// embedding the handler's result as context for the original question.
func (b *Builder) BuildGrounding(toolResult string, user string) (*Bundle, error) {
	data := map[string]interface{}{
		"Persona":    b.Persona,
		"Date":       time.Now().Format("Monday, 2006-01-02"),
		"ToolResult": toolResult,
	}

	var sb strings.Builder
	if err := b.ground.Execute(&sb, data); err != nil {
		return nil, errors.Wrap(err, "render grounding prompt")
	}
	return &Bundle{System: sb.String(), User: user}, nil
}

type schemaView struct {
	Kind        actions.Kind
	Description string
	ExampleJSON string
}

func schemaViews(schemas []actions.Schema) []schemaView {
	ret := make([]schemaView, 0, len(schemas))
	for _, s := range schemas {
		ret = append(ret, schemaView{
			Kind:        s.Kind,
			Description: s.Description,
			ExampleJSON: s.ExampleJSON(),
		})
	}
	return ret
}

func renderCalendar(facts FactBundle) string {
	var lines []string
	for _, e := range facts.Upcoming {
		lines = append(lines, fmt.Sprintf("- %s: %s", e.Start.Format(time.RFC3339), e.Title))
	}
	return strings.Join(lines, "\n")
}

func renderUnread(facts FactBundle) string {
	var lines []string
	for _, m := range facts.Unread {
		lines = append(lines, fmt.Sprintf("- from %s: %s (%s)", m.Sender, m.Subject, m.Excerpt))
	}
	return strings.Join(lines, "\n")
}

func renderHistory(history []*conversation.Message) string {
	var lines []string
	for _, m := range history {
		lines = append(lines, m.View())
	}
	return strings.Join(lines, "\n")
}
