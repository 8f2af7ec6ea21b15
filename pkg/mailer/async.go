package mailer

import (
	"context"

	"github.com/noah-isme/plano-treino/pkg/jobs"
)

// Notifier delivers a temporary password to a student.
type Notifier interface {
	SendTemporaryPassword(ctx context.Context, email, password string) error
}

type delivery struct {
	email    string
	password string
}

// AsyncNotifier hands deliveries to a background queue so recovery never
// waits on the mail provider. Failed sends are retried by the queue.
type AsyncNotifier struct {
	queue *jobs.Queue[delivery]
}

// NewAsyncNotifier wraps next. Start must be called before use.
func NewAsyncNotifier(next Notifier, cfg jobs.QueueConfig) *AsyncNotifier {
	handler := func(ctx context.Context, job jobs.Job[delivery]) error {
		return next.SendTemporaryPassword(ctx, job.Payload.email, job.Payload.password)
	}
	return &AsyncNotifier{queue: jobs.NewQueue("recovery-mail", handler, cfg)}
}

// Start launches the delivery workers.
func (n *AsyncNotifier) Start(ctx context.Context) {
	n.queue.Start(ctx)
}

// Close waits for queued deliveries until ctx ends, then stops the workers.
func (n *AsyncNotifier) Close(ctx context.Context) error {
	err := n.queue.Drain(ctx)
	n.queue.Stop()
	return err
}

// SendTemporaryPassword queues the delivery and returns immediately.
func (n *AsyncNotifier) SendTemporaryPassword(ctx context.Context, email, password string) error {
	_, err := n.queue.Enqueue(delivery{email: email, password: password})
	return err
}
