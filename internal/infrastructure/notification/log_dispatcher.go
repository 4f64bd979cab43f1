package notification

import (
	"context"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/infrastructure/config"
	"github.com/campusledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogDispatcher writes the rendered message to the log instead of sending it.
type LogDispatcher struct {
	renderer *Renderer
	logger   *zap.Logger
}

func NewLogDispatcher(renderer *Renderer, log *zap.Logger) *LogDispatcher {
	return &LogDispatcher{renderer: renderer, logger: log}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, n appfinance.Notification) error {
	body, err := d.renderer.Render(n.TemplateID, n.Variables)
	if err != nil {
		return err
	}
	logger.Using(ctx, d.logger).Info("notification (not sent)",
		zap.String("channel", n.Channel),
		zap.String("template", n.TemplateID),
		zap.String("recipient", maskPhone(n.Recipient)),
		zap.String("body", body),
	)
	return nil
}

// New returns the dispatcher selected by cfg, or nil when notifications are
// disabled.
func New(cfg config.NotificationConfig, log *zap.Logger) (appfinance.NotificationDispatcher, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	if cfg.Provider == "twilio" {
		return NewTwilioDispatcher(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.FromNumber, renderer, log), nil
	}
	return NewLogDispatcher(renderer, log), nil
}

// maskPhone keeps the last four digits.
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return "****" + phone[len(phone)-4:]
}

var _ appfinance.NotificationDispatcher = (*LogDispatcher)(nil)
