package sms

import (
	"context"
	"fmt"

	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/ethanbaker/prospector/pkg/utils"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender delivers text messages through Twilio. It implements
// engine.SMSSender.
type Sender struct {
	client *twilio.RestClient
	from   string
}

var _ engine.SMSSender = (*Sender)(nil)

// NewSender creates a Twilio sender from config (TWILIO_ACCOUNT_SID,
// TWILIO_AUTH_TOKEN, TWILIO_PHONE_NUMBER). Returns nil when credentials are
// missing, which disables the SMS channel.
func NewSender(cfg *utils.Config) *Sender {
	sid := cfg.Get("TWILIO_ACCOUNT_SID")
	token := cfg.Get("TWILIO_AUTH_TOKEN")
	from := cfg.Get("TWILIO_PHONE_NUMBER")
	if sid == "" || token == "" || from == "" {
		return nil
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: sid,
		Password: token,
	})
	return &Sender{client: client, from: from}
}

// Send delivers a text message to the phone number
func (s *Sender) Send(ctx context.Context, to, text string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(text)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send sms to '%s': %w", to, err)
	}
	return nil
}
