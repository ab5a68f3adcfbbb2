package app

import (
	"context"
	"log/slog"

	"github.com/duetlabs/golang_services/internal/notification_pipeline/domain"
	"github.com/duetlabs/golang_services/internal/notification_pipeline/provider"
)

// Dispatcher fans a composed notification out to every delivery token of a
// recipient and prunes tokens the provider reports as permanently invalid.
// Delivery is best-effort: no dispatch outcome ever fails the triggering
// invocation.
type Dispatcher struct {
	pushProvider provider.PushProvider
	members      domain.MemberRepository
	logger       *slog.Logger
}

func NewDispatcher(pushProvider provider.PushProvider, members domain.MemberRepository, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		pushProvider: pushProvider,
		members:      members,
		logger:       logger.With("component", "dispatcher"),
	}
}

// Dispatch sends the notification to the given tokens and removes any token
// the provider marked not-registered. kind labels the metrics only.
func (d *Dispatcher) Dispatch(ctx context.Context, kind string, recipientUID string, tokens []string, notification provider.PushNotification) {
	if len(tokens) == 0 {
		return
	}

	report, err := d.pushProvider.SendMulticast(ctx, tokens, notification)
	if err != nil {
		// Total failure of the send call: log and swallow.
		d.logger.ErrorContext(ctx, "Push delivery call failed entirely",
			"error", err, "recipient_uid", recipientUID, "provider", d.pushProvider.GetName())
		notificationsDispatchedCounter.WithLabelValues(kind, "total_failure").Inc()
		return
	}

	outcome := "sent"
	if report.FailureCount > 0 {
		outcome = "partial"
	}
	notificationsDispatchedCounter.WithLabelValues(kind, outcome).Inc()

	d.logger.InfoContext(ctx, "Push notification dispatched",
		"recipient_uid", recipientUID, "kind", kind,
		"success_count", report.SuccessCount, "failure_count", report.FailureCount)

	invalid := report.InvalidTokens()
	if len(invalid) == 0 {
		return
	}

	d.logger.InfoContext(ctx, "Pruning unregistered delivery tokens",
		"recipient_uid", recipientUID, "count", len(invalid))
	if err := d.members.RemoveTokens(ctx, recipientUID, invalid); err != nil {
		// The tokens will be reported invalid again on the next send;
		// pruning failure is not a reason to fail the invocation.
		d.logger.ErrorContext(ctx, "Failed to prune unregistered tokens",
			"error", err, "recipient_uid", recipientUID)
		return
	}
	tokensPrunedCounter.Add(float64(len(invalid)))
}
