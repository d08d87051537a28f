// internal/pkg/notification/log_notifier.go
package notification

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogNotifier writes notifications to the application log. It is the
// development provider and the fallback when no delivery channel is
// configured.
type LogNotifier struct {
	logger *logrus.Logger
}

// NewLogNotifier creates a new log-backed notifier
func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyOrderConfirmation implements Notifier
func (n *LogNotifier) NotifyOrderConfirmation(ctx context.Context, msg OrderConfirmation) error {
	n.logger.WithFields(logrus.Fields{
		"notification": "order_confirmation",
		"order_number": msg.OrderNumber,
		"email":        msg.Email,
		"total_amount": msg.TotalAmount,
		"item_count":   msg.ItemCount,
		"has_claim":    msg.ClaimToken != "",
	}).Info("📧 Order confirmation")
	return nil
}
