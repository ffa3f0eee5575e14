package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/pitcrewhq/pitcrew/pkg/logger"
	"github.com/pitcrewhq/pitcrew/pkg/mail"
	"github.com/pitcrewhq/pitcrew/pkg/metrics"
)

// Notifier delivers best-effort email notifications. Send reports success but
// never fails the calling operation: delivery problems are logged and counted,
// then discarded. A missing transport is a silent no-op.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody, plainBody string) bool
}

// MailNotifier adapts a mail.Mailer to the Notifier contract.
type MailNotifier struct {
	mailer mail.Mailer
	log    *zap.Logger
}

// NewMailNotifier wraps the supplied mailer. A nil mailer yields a notifier
// that drops every message.
func NewMailNotifier(mailer mail.Mailer) *MailNotifier {
	return &MailNotifier{
		mailer: mailer,
		log:    logger.WithModule("notifier"),
	}
}

// Send attempts delivery and reports the outcome.
func (n *MailNotifier) Send(ctx context.Context, to, subject, htmlBody, plainBody string) bool {
	if n.mailer == nil {
		metrics.NotificationDeliveries.WithLabelValues("disabled").Inc()
		return false
	}

	err := n.mailer.Send(ensureContext(ctx), mail.Message{
		To:       []string{to},
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: plainBody,
	})
	switch {
	case err == nil:
		metrics.NotificationDeliveries.WithLabelValues("sent").Inc()
		return true
	case errors.Is(err, mail.ErrSMTPDisabled):
		metrics.NotificationDeliveries.WithLabelValues("disabled").Inc()
		return false
	default:
		n.log.Warn("notification delivery failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		metrics.NotificationDeliveries.WithLabelValues("failed").Inc()
		return false
	}
}
