// Package mail dispatches account notification emails through the job queue.
package mail

import (
	"context"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/trylog/trylog/jobs"
)

// QueueNotifier enqueues outgoing mail so the HTTP request never blocks on
// SMTP. Delivery happens in the worker process.
type QueueNotifier struct {
	client *jobs.Client
	titler cases.Caser
}

// NewQueueNotifier constructs a QueueNotifier.
func NewQueueNotifier(client *jobs.Client) *QueueNotifier {
	return &QueueNotifier{
		client: client,
		titler: cases.Title(language.English),
	}
}

// Send enqueues a message for the recipient. The display name is title-cased
// for the mail header.
func (n *QueueNotifier) Send(ctx context.Context, displayName, address, subject, body string) error {
	payload := jobs.SendEmailPayload{
		To:      address,
		ToName:  n.titler.String(displayName),
		Subject: subject,
		Body:    body,
	}
	if _, err := n.client.EnqueueSendEmail(ctx, payload); err != nil {
		return fmt.Errorf("mail: enqueue: %w", err)
	}
	return nil
}
