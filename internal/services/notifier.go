package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/sihur-medellin/sihur/internal/models"
)

// Notifier delivers password reset links.
type Notifier interface {
	SendPasswordReset(ctx context.Context, user models.Usuario, link string) error
}

type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier returns a Notifier that writes the reset link to the log.
// No mail transport is configured, so operators relay the link by hand.
func NewLogNotifier(logger *zap.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) SendPasswordReset(_ context.Context, user models.Usuario, link string) error {
	n.logger.Info("password reset link generated",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("email", user.Email),
		zap.String("link", link),
	)
	return nil
}
