package conversation

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Manager owns the message history of one session. It is mutated only
// between turns, never mid-turn, so no locking is needed.
type Manager interface {
	AppendMessages(messages ...*Message)
	GetConversation() []*Message
	// Window returns the most recent n messages, used to bound the prompt
	// history.
	Window(n int) []*Message
}

type ManagerImpl struct {
	ConversationID uuid.UUID
	messages       []*Message
}

var _ Manager = (*ManagerImpl)(nil)

type ManagerOption func(*ManagerImpl)

func WithMessages(messages ...*Message) ManagerOption {
	return func(m *ManagerImpl) {
		m.AppendMessages(messages...)
	}
}

func WithConversationID(conversationID uuid.UUID) ManagerOption {
	return func(m *ManagerImpl) {
		m.ConversationID = conversationID
	}
}

func NewManager(options ...ManagerOption) *ManagerImpl {
	ret := &ManagerImpl{
		ConversationID: uuid.Nil,
	}
	for _, option := range options {
		option(ret)
	}

	if ret.ConversationID == uuid.Nil {
		ret.ConversationID = uuid.New()
	}

	return ret
}

func (c *ManagerImpl) AppendMessages(messages ...*Message) {
	log.Trace().
		Str("conversation_id", c.ConversationID.String()).
		Int("message_count", len(messages)).
		Int("history_len", len(c.messages)).
		Msg("appending messages")
	c.messages = append(c.messages, messages...)
}

func (c *ManagerImpl) GetConversation() []*Message {
	ret := make([]*Message, len(c.messages))
	copy(ret, c.messages)
	return ret
}

func (c *ManagerImpl) Window(n int) []*Message {
	if n <= 0 || n >= len(c.messages) {
		return c.GetConversation()
	}
	ret := make([]*Message, n)
	copy(ret, c.messages[len(c.messages)-n:])
	return ret
}
