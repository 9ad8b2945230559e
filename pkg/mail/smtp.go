package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SMTPMailer sends through a plain SMTP relay. Reading mail requires a
// mailbox protocol this deployment does not have, so ListUnread reports that
// honestly instead of pretending an empty inbox.
type SMTPMailer struct {
	Addr string // host:port
	From string
	Auth smtp.Auth

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(addr, from string, auth smtp.Auth) *SMTPMailer {
	return &SMTPMailer{Addr: addr, From: from, Auth: auth, send: smtp.SendMail}
}

var _ Mailer = (*SMTPMailer)(nil)

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", m.From),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"",
		body,
	}, "\r\n")

	if err := m.send(m.Addr, m.Auth, m.From, []string{to}, []byte(msg)); err != nil {
		return errors.Wrapf(err, "send mail to %s", to)
	}
	log.Debug().Str("to", to).Str("subject", subject).Msg("mail: message sent")
	return nil
}

func (m *SMTPMailer) ListUnread(_ context.Context, _ int) ([]UnreadMessage, error) {
	return nil, errors.New("reading mail is not supported by the SMTP backend")
}
