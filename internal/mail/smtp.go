package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender delivers messages over plain SMTP. It is used by the worker
// process; servers enqueue through QueueNotifier instead.
type SMTPSender struct {
	addr string
	from string
}

// NewSMTPSender constructs an SMTPSender for the given host, port, and
// envelope sender.
func NewSMTPSender(host string, port int, from string) *SMTPSender {
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
	}
}

// Send delivers one message. Context cancellation is checked before dialing;
// net/smtp does not support mid-flight cancellation.
func (s *SMTPSender) Send(ctx context.Context, to, toName, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	if toName != "" {
		fmt.Fprintf(&msg, "To: %q <%s>\r\n", toName, to)
	} else {
		fmt.Fprintf(&msg, "To: %s\r\n", to)
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(s.addr, nil, s.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("mail: smtp send: %w", err)
	}
	return nil
}
