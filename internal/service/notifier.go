package service

import (
	"context"
	"log/slog"
)

// Notifier surfaces user-visible outcomes of mutations. Every mutation
// reports exactly once: success or failure, with text specific to the
// operation. The UI layer decides how to render them (toasts, banners).
type Notifier interface {
	Success(ctx context.Context, operation, message string)
	Failure(ctx context.Context, operation, message string)
}

type slogNotifier struct{}

// NewLogNotifier returns a Notifier that records notifications in the
// structured log. It stands in until a push channel to the UI exists.
func NewLogNotifier() Notifier { return slogNotifier{} }

func (slogNotifier) Success(_ context.Context, operation, message string) {
	slog.Info("notification", "outcome", "success", "operation", operation, "message", message)
}

func (slogNotifier) Failure(_ context.Context, operation, message string) {
	slog.Warn("notification", "outcome", "failure", "operation", operation, "message", message)
}
