package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Message is one exchange unit in a conversation. Messages are append-only:
// once added to a manager they are never edited or removed, and their
// insertion order bounds the recency window used for prompts.
type Message struct {
	ID      uuid.UUID `json:"id" yaml:"id"`
	Role    Role      `json:"role" yaml:"role"`
	Content string    `json:"content" yaml:"content"`
	// Audio optionally references a rendered audio file for this message.
	Audio string    `json:"audio,omitempty" yaml:"audio,omitempty"`
	Time  time.Time `json:"time" yaml:"time"`
}

type MessageOption func(*Message)

func WithTime(t time.Time) MessageOption {
	return func(m *Message) {
		m.Time = t
	}
}

func WithAudio(path string) MessageOption {
	return func(m *Message) {
		m.Audio = path
	}
}

func NewMessage(role Role, content string, options ...MessageOption) *Message {
	ret := &Message{
		ID:      uuid.New(),
		Role:    role,
		Content: content,
		Time:    time.Now(),
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

func (m *Message) View() string {
	return fmt.Sprintf("[%s]: %s", m.Role, strings.TrimRight(m.Content, "\n"))
}
