package actions

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// ReplyField is the key the model uses to attach a user-facing reply to a
// command. It is optional for every kind and the only payload of "none".
const ReplyField = "reply_to_user"

// DiscriminatorField is the key whose value selects the schema.
const DiscriminatorField = "action"

// Schema is a static registry entry describing one action kind: its required
// parameters, the human description used in the prompt instruction block, and
// whether its result is grounding material for a second model pass rather
// than a final answer.
type Schema struct {
	Kind        Kind
	Required    []string
	Description string
	// Grounding marks actions whose handler output is raw source material
	// (web search results) that gets fed back to the model once more before
	// the user sees anything.
	Grounding bool
	// Example is rendered as a one-line JSON sample in the prompt so the
	// model can imitate the exact shape.
	Example map[string]string

	validator *gojsonschema.Schema
}

// compile builds the JSON schema enforcing that every required parameter is
// present and a non-empty string. Compiled once at registration, never at
// parse time.
func (s *Schema) compile() error {
	props := map[string]interface{}{}
	for _, p := range s.Required {
		props[p] = map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		}
	}
	doc := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(s.Required) > 0 {
		doc["required"] = s.Required
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrapf(err, "marshal schema for %s", s.Kind)
	}
	validator, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
	if err != nil {
		return errors.Wrapf(err, "compile schema for %s", s.Kind)
	}
	s.validator = validator
	return nil
}

// Validate checks a decoded JSON object against the schema. It returns false
// when any required parameter is missing, empty, or not a string.
func (s *Schema) Validate(doc map[string]interface{}) bool {
	if s.validator == nil {
		return false
	}
	result, err := s.validator.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return false
	}
	return result.Valid()
}

// ExampleJSON renders the example as a single-line JSON object, always
// including the discriminator and the reply field.
func (s *Schema) ExampleJSON() string {
	doc := map[string]string{DiscriminatorField: string(s.Kind)}
	for k, v := range s.Example {
		doc[k] = v
	}
	if _, ok := doc[ReplyField]; !ok {
		doc[ReplyField] = "..."
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	return string(b)
}
