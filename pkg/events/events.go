// Package events carries the per-turn chat events published while a turn
// moves through the dispatch state machine. Consumers (logging, speech)
// subscribe through watermill; publishing is always best-effort.
package events

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type EventType string

const (
	EventTypeTurnStarted      EventType = "turn-started"
	EventTypeActionDispatched EventType = "action-dispatched"
	EventTypeGroundingStarted EventType = "grounding-started"
	EventTypeReplyReady       EventType = "reply-ready"
)

// TopicChat is the single topic all chat events are published on.
const TopicChat = "chat"

type Event struct {
	Type   EventType `json:"type"`
	TurnID uuid.UUID `json:"turn_id"`

	// UserInput is set on turn-started.
	UserInput string `json:"user_input,omitempty"`
	// Action and ActionError are set on action-dispatched.
	Action      string `json:"action,omitempty"`
	ActionError string `json:"action_error,omitempty"`
	// Reply is set on reply-ready; it is the final user-visible text.
	Reply string `json:"reply,omitempty"`
}

func NewEventFromJSON(b []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return Event{}, errors.Wrap(err, "decode chat event")
	}
	if e.Type == "" {
		return Event{}, errors.New("chat event has no type")
	}
	return e, nil
}
