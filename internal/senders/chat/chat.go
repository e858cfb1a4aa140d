package chat

import (
	"context"
	"fmt"

	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/ethanbaker/prospector/pkg/utils"
	"github.com/slack-go/slack"
)

// Sender delivers chat messages through Slack. Messages are posted to a
// configured channel with the recipient address prefixed, since prospects
// are not workspace members. Sender implements engine.ChatSender.
type Sender struct {
	client  *slack.Client
	channel string
}

var _ engine.ChatSender = (*Sender)(nil)

// NewSender creates a Slack sender from config (SLACK_BOT_TOKEN,
// SLACK_CHANNEL_ID). An unconfigured sender is still returned so callers can
// observe the not-ready state.
func NewSender(cfg *utils.Config) *Sender {
	token := cfg.Get("SLACK_BOT_TOKEN")
	channel := cfg.Get("SLACK_CHANNEL_ID")

	sender := &Sender{channel: channel}
	if token != "" {
		sender.client = slack.New(token)
	}
	return sender
}

// Ready reports whether the sender has a live client and a target channel
func (s *Sender) Ready() bool {
	return s.client != nil && s.channel != ""
}

// Send posts the message to the configured channel, failing fast when the
// sender is not ready
func (s *Sender) Send(ctx context.Context, to, text string) error {
	if !s.Ready() {
		return engine.ErrNotReady
	}

	_, _, err := s.client.PostMessageContext(ctx, s.channel,
		slack.MsgOptionText(fmt.Sprintf("To %s:\n%s", to, text), false),
	)
	if err != nil {
		return fmt.Errorf("failed to post chat message for '%s': %w", to, err)
	}
	return nil
}
