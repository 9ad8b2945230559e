package mail

import (
	"context"
	"sync"
)

// MemoryMailer records sent mail and serves a canned inbox. Used in tests and
// when no SMTP relay is configured.
type MemoryMailer struct {
	mu    sync.Mutex
	Sent  []SentMessage
	Inbox []UnreadMessage
}

type SentMessage struct {
	To      string
	Subject string
	Body    string
}

func NewMemoryMailer() *MemoryMailer {
	return &MemoryMailer{}
}

var _ Mailer = (*MemoryMailer)(nil)

func (m *MemoryMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMessage{To: to, Subject: subject, Body: body})
	return nil
}

func (m *MemoryMailer) ListUnread(_ context.Context, limit int) ([]UnreadMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.Inbox
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	out := make([]UnreadMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}
