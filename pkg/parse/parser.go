// Package parse turns raw model output into typed actions. Every failure
// mode (malformed JSON, unknown kind, missing parameter) falls back to
// treating the text as a plain reply; parsing never errors and never
// executes anything.
package parse

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/valet/pkg/actions"
)

// Parser extracts structured actions from free-form model output. It is a
// pure function of the input text and the registry's schema table: parsing
// the same text twice yields equal actions.
type Parser struct {
	registry actions.Registry
}

func NewParser(registry actions.Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse returns the action embedded in raw, or (nil, false) when raw is a
// plain conversational reply. Unknown kinds are not errors: conversational
// text containing braces must never be mistaken for a broken command.
func (p *Parser) Parse(raw string) (*actions.Action, bool) {
	candidate, ok := ExtractJSONSpan(StripFences(raw))
	if !ok {
		return nil, false
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		log.Debug().Err(err).Msg("parse: candidate span is not valid JSON, treating as plain text")
		return nil, false
	}

	rawKind, ok := doc[actions.DiscriminatorField].(string)
	if !ok {
		return nil, false
	}
	kind := actions.NormalizeKind(rawKind)

	schema, ok := p.registry.Resolve(kind)
	if !ok {
		log.Debug().Str("action", string(kind)).Msg("parse: unknown action kind, treating as plain text")
		return nil, false
	}

	if !schema.Validate(doc) {
		log.Debug().Str("action", string(kind)).Msg("parse: required parameters missing or empty, discarding action")
		return nil, false
	}

	params := make(map[string]string, len(schema.Required))
	for _, key := range schema.Required {
		// Validate guarantees these are non-empty strings.
		params[key], _ = doc[key].(string)
	}

	act := &actions.Action{
		Kind:       schema.Kind,
		Parameters: params,
	}
	if reply, ok := doc[actions.ReplyField].(string); ok {
		act.Reply = reply
	}
	return act, true
}
