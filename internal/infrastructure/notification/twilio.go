package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/infrastructure/logger"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// messageCreator is the part of the Twilio REST client used here.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioDispatcher sends SMS through Twilio. Recipients in E.164 form with a
// "whatsapp:" prefix are sent from the WhatsApp sender.
type TwilioDispatcher struct {
	api      messageCreator
	from     string
	renderer *Renderer
	logger   *zap.Logger
}

func NewTwilioDispatcher(accountSID, authToken, from string, renderer *Renderer, log *zap.Logger) *TwilioDispatcher {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return newTwilioDispatcher(client.Api, from, renderer, log)
}

func newTwilioDispatcher(api messageCreator, from string, renderer *Renderer, log *zap.Logger) *TwilioDispatcher {
	return &TwilioDispatcher{api: api, from: from, renderer: renderer, logger: log}
}

func (d *TwilioDispatcher) Dispatch(ctx context.Context, n appfinance.Notification) error {
	if n.Channel != appfinance.ChannelSMS {
		return fmt.Errorf("twilio: unsupported channel %q", n.Channel)
	}
	if n.Recipient == "" {
		return errors.New("twilio: recipient is required")
	}
	body, err := d.renderer.Render(n.TemplateID, n.Variables)
	if err != nil {
		return err
	}

	from := d.from
	if strings.HasPrefix(n.Recipient, "whatsapp:") && !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:" + from
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.Recipient)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := d.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio: send %s: %w", n.TemplateID, err)
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	logger.Using(ctx, d.logger).Info("notification sent",
		zap.String("template", n.TemplateID),
		zap.String("recipient", maskPhone(n.Recipient)),
		zap.String("sid", sid),
	)
	return nil
}

var _ appfinance.NotificationDispatcher = (*TwilioDispatcher)(nil)
