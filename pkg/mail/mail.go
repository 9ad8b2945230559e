// Package mail is the email collaborator: outgoing send plus a bounded
// unread listing for prompt context and the read_email action.
package mail

import "context"

type UnreadMessage struct {
	Sender  string
	Subject string
	Excerpt string
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
	ListUnread(ctx context.Context, limit int) ([]UnreadMessage, error)
}
