package engine

import (
	"context"
	"log"
)

// FanOut renders and dispatches the follow-up message across every channel
// enabled on the automation, called exactly once per acceptance transition.
// Each channel is attempted independently: one channel's failure never
// prevents another from being tried. Channels with a missing prerequisite
// (no template, no sender, no discovered contact data) are skipped, not
// treated as failures.
func (d *Dispatcher) FanOut(ctx context.Context, session Session, activity *Activity, automation *Automation) FanOutResult {
	vars := TargetVariables(activity.Target)
	result := make(FanOutResult, 0, len(AllChannels))

	for _, channel := range AllChannels {
		if !automation.Channels.Enabled(channel) {
			continue
		}

		outcome := ChannelOutcome{Channel: channel}
		template := pickTemplate(automation.Templates, channel)
		if template == nil {
			outcome.Skipped = true
			result = append(result, outcome)
			continue
		}

		switch channel {
		case ChannelNetwork:
			d.fanOutNetwork(ctx, session, activity, automation, template, vars, &outcome)
		case ChannelEmail:
			d.fanOutEmail(ctx, activity, template, vars, &outcome)
		case ChannelSMS:
			d.fanOutSMS(ctx, activity, template, vars, &outcome)
		case ChannelChat:
			d.fanOutChat(ctx, activity, template, vars, &outcome)
		}

		if outcome.Err != nil {
			log.Printf("[ENGINE]: Follow-up on channel '%s' failed for activity '%s': %v",
				channel, activity.ID, outcome.Err)
		}
		result = append(result, outcome)
	}

	return result
}

// fanOutNetwork sends the follow-up as a direct message through the session
// and marks the activity followed-up on success
func (d *Dispatcher) fanOutNetwork(ctx context.Context, session Session, activity *Activity, automation *Automation, template Template, vars Variables, outcome *ChannelOutcome) {
	message := template.Render("en", vars)
	if message == "" {
		outcome.Skipped = true
		return
	}

	callCtx, cancel := callContext(ctx, d.callTimeout)
	defer cancel()

	if err := session.SendDirectMessage(callCtx, activity.Target.ProfileURL, message); err != nil {
		outcome.Err = err
		return
	}
	outcome.Sent = true

	now := d.now()
	activity.FollowUpAt = &now
	if err := d.store.UpdateActivity(ctx, activity); err != nil {
		log.Printf("[ENGINE]: Failed to mark follow-up on activity '%s': %v", activity.ID, err)
	}

	automation.Stats.Messages++
	if err := d.store.SaveAutomation(ctx, automation); err != nil {
		log.Printf("[ENGINE]: Failed to update automation stats for '%s': %v", automation.ID, err)
	}
}

func (d *Dispatcher) fanOutEmail(ctx context.Context, activity *Activity, template Template, vars Variables, outcome *ChannelOutcome) {
	if d.senders.Email == nil || activity.Target.Email == "" {
		outcome.Skipped = true
		return
	}

	callCtx, cancel := callContext(ctx, d.callTimeout)
	defer cancel()

	if err := d.senders.Email.SendTemplated(callCtx, activity.Target.Email, template, vars, "en"); err != nil {
		outcome.Err = err
		return
	}
	outcome.Sent = true
}

func (d *Dispatcher) fanOutSMS(ctx context.Context, activity *Activity, template Template, vars Variables, outcome *ChannelOutcome) {
	if d.senders.SMS == nil || activity.Target.Phone == "" {
		outcome.Skipped = true
		return
	}

	message := template.Render("en", vars)
	if message == "" {
		outcome.Skipped = true
		return
	}

	callCtx, cancel := callContext(ctx, d.callTimeout)
	defer cancel()

	if err := d.senders.SMS.Send(callCtx, activity.Target.Phone, message); err != nil {
		outcome.Err = err
		return
	}
	outcome.Sent = true
}

func (d *Dispatcher) fanOutChat(ctx context.Context, activity *Activity, template Template, vars Variables, outcome *ChannelOutcome) {
	if d.senders.Chat == nil || !d.senders.Chat.Ready() || activity.Target.Phone == "" {
		outcome.Skipped = true
		return
	}

	message := template.Render("en", vars)
	if message == "" {
		outcome.Skipped = true
		return
	}

	callCtx, cancel := callContext(ctx, d.callTimeout)
	defer cancel()

	if err := d.senders.Chat.Send(callCtx, activity.Target.Phone, message); err != nil {
		outcome.Err = err
		return
	}
	outcome.Sent = true
}
