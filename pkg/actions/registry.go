package actions

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Registry maps action kinds to their schema and handler. It is built once at
// startup and not mutated afterwards; the lock only guards against misuse.
type Registry interface {
	Register(schema Schema, handler Handler) error
	Resolve(kind Kind) (*Schema, bool)
	Handler(kind Kind) (Handler, bool)
	Schemas() []Schema
}

// InMemoryRegistry is the in-memory implementation of Registry.
type InMemoryRegistry struct {
	mu       sync.RWMutex
	schemas  map[Kind]*Schema
	handlers map[Kind]Handler
}

func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		schemas:  make(map[Kind]*Schema),
		handlers: make(map[Kind]Handler),
	}
}

var _ Registry = (*InMemoryRegistry)(nil)

// Register adds a schema and its handler. The schema's parameter validator is
// compiled here so that parsing never pays compilation cost.
func (r *InMemoryRegistry) Register(schema Schema, handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if schema.Kind == "" {
		return errors.New("action kind cannot be empty")
	}
	kind := NormalizeKind(string(schema.Kind))
	if _, exists := r.schemas[kind]; exists {
		return errors.Errorf("action %s already registered", kind)
	}
	schema.Kind = kind
	if err := schema.compile(); err != nil {
		return err
	}
	r.schemas[kind] = &schema
	r.handlers[kind] = handler
	return nil
}

// Resolve looks up the schema for a kind. Unknown kinds are not an error:
// the parser treats them as plain conversational text.
func (r *InMemoryRegistry) Resolve(kind Kind) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[NormalizeKind(string(kind))]
	if !ok {
		return nil, false
	}
	cp := *s
	return &cp, true
}

func (r *InMemoryRegistry) Handler(kind Kind) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[NormalizeKind(string(kind))]
	return h, ok
}

// Schemas returns all registered schemas sorted by kind, which keeps the
// prompt instruction block stable between turns.
func (r *InMemoryRegistry) Schemas() []Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ret := make([]Schema, 0, len(r.schemas))
	for _, s := range r.schemas {
		ret = append(ret, *s)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Kind < ret[j].Kind })
	return ret
}
