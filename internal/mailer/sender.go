// Package mailer queues outgoing e-mail and hands it to a Sender.
package mailer

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/LipeSan/worklog-web-app/internal/models"
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg models.MailMessage) error
}

// WriterSender prints messages instead of delivering them.
type WriterSender struct {
	w io.Writer
}

func NewWriterSender(w io.Writer) *WriterSender {
	return &WriterSender{w: w}
}

func (s *WriterSender) Send(_ context.Context, msg models.MailMessage) error {
	_, err := fmt.Fprintf(s.w, "To: %s\nSubject: %s\n\n%s\n\n", msg.Recipient, msg.Subject, msg.Body)
	return err
}

// DrainResult counts the outcome of one Drain call.
type DrainResult struct {
	Sent   int
	Failed int
}

// Drain sends up to batch pending messages, marking each sent or failed.
func (o *Outbox) Drain(ctx context.Context, sender Sender, batch int) (DrainResult, error) {
	var res DrainResult

	messages, err := o.Pending(ctx, batch)
	if err != nil {
		return res, err
	}

	var sent, failed []int64
	for _, msg := range messages {
		if err := sender.Send(ctx, msg); err != nil {
			o.logger.Warn("Failed to send mail",
				zap.Int64("id", msg.ID),
				zap.String("recipient", msg.Recipient),
				zap.Error(err),
			)
			failed = append(failed, msg.ID)
			continue
		}
		sent = append(sent, msg.ID)
	}

	if err := o.MarkSent(ctx, sent); err != nil {
		return res, err
	}
	if err := o.IncrementAttempts(ctx, failed); err != nil {
		return res, err
	}

	res.Sent, res.Failed = len(sent), len(failed)
	o.logger.Info("Outbox drained", zap.Int("sent", res.Sent), zap.Int("failed", res.Failed))
	return res, nil
}
