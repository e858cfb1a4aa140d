package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// DefaultPerTickCap is the safety ceiling on new connection requests per
// automation per tick, independent of the daily limit.
const DefaultPerTickCap = 10

// DefaultCallTimeout bounds each external session or channel call.
const DefaultCallTimeout = 45 * time.Second

// dailyWindow is the trailing period used to bound connection-request volume.
const dailyWindow = 24 * time.Hour

// Dispatcher issues new connection requests up to the remaining daily budget
// and transitions pending requests based on detected status. One Dispatch call
// handles one automation for one tick.
type Dispatcher struct {
	store       StoreInterface
	sessions    *SessionRegistry
	senders     Senders
	perTickCap  int
	callTimeout time.Duration
	now         func() time.Time
}

// DispatcherOptions contains configuration options for the Dispatcher
type DispatcherOptions struct {
	PerTickCap  int           // defaults to DefaultPerTickCap
	CallTimeout time.Duration // defaults to DefaultCallTimeout
	Now         func() time.Time
}

// NewDispatcher creates a dispatcher over the given ledger, session registry
// and channel senders
func NewDispatcher(store StoreInterface, sessions *SessionRegistry, senders Senders, opts *DispatcherOptions) *Dispatcher {
	d := &Dispatcher{
		store:       store,
		sessions:    sessions,
		senders:     senders,
		perTickCap:  DefaultPerTickCap,
		callTimeout: DefaultCallTimeout,
		now:         time.Now,
	}
	if opts != nil {
		if opts.PerTickCap > 0 {
			d.perTickCap = opts.PerTickCap
		}
		if opts.CallTimeout > 0 {
			d.callTimeout = opts.CallTimeout
		}
		if opts.Now != nil {
			d.now = opts.Now
		}
	}
	return d
}

// Dispatch runs one automation's pass: budget check, discovery, dedup, new
// request sends, then the acceptance sweep. New-request failures (session
// acquisition, discovery) do not prevent the sweep from running; persistence
// errors abort the step they occur in.
func (d *Dispatcher) Dispatch(ctx context.Context, automation *Automation) *AutomationReport {
	report := &AutomationReport{AutomationID: automation.ID}

	since := d.now().Add(-dailyWindow)
	sentInWindow, err := d.store.CountConnectionRequestsSince(ctx, automation.ID, since)
	if err != nil {
		report.Err = fmt.Errorf("failed to count daily window: %w", err)
		return report
	}

	remaining := automation.Limits.Daily - sentInWindow
	if remaining < 0 {
		remaining = 0
	}

	if remaining > 0 && automation.AccountID != nil {
		if err := d.sendNewRequests(ctx, automation, remaining, report); err != nil {
			// Could not log in or search; sweep still runs below.
			report.Err = err
			log.Printf("[ENGINE]: Sending skipped for automation '%s': %v", automation.ID, err)
		}
	}

	if err := d.sweepAcceptances(ctx, automation, report); err != nil {
		report.Err = err
	}

	return report
}

// sendNewRequests discovers prospects and issues connection requests until
// the tick budget is spent
func (d *Dispatcher) sendNewRequests(ctx context.Context, automation *Automation, remaining int, report *AutomationReport) error {
	account, err := d.store.GetAccount(ctx, *automation.AccountID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	session, release, err := d.acquire(ctx, account)
	if err != nil {
		return err
	}
	defer release()

	prospects, err := d.discover(ctx, session, automation.Criteria)
	if err != nil {
		return err
	}

	budget := remaining
	if d.perTickCap < budget {
		budget = d.perTickCap
	}

	sent := 0
	for _, prospect := range prospects {
		if sent >= budget {
			break
		}

		if prospect.ExternalID != "" {
			exists, err := d.store.HasActivityForTarget(ctx, automation.ID, prospect.ExternalID)
			if err != nil {
				return fmt.Errorf("failed to check for existing activity: %w", err)
			}
			if exists {
				report.Duplicates++
				continue
			}
		}

		callCtx, cancel := callContext(ctx, d.callTimeout)
		err = session.SendConnectionRequest(callCtx, prospect.ProfileURL, "")
		cancel()
		if err != nil {
			// No activity is recorded; the prospect is retried on a later
			// tick via re-discovery.
			report.SendFailures++
			continue
		}

		activity := &Activity{
			AutomationID: automation.ID,
			UserID:       automation.UserID,
			Type:         TypeConnectionRequest,
			Channel:      ChannelNetwork,
			Status:       ActivitySent,
			Target: Target{
				Name:       prospect.Name,
				ProfileURL: prospect.ProfileURL,
				Company:    prospect.Company,
				JobTitle:   prospect.JobTitle,
				ExternalID: prospect.ExternalID,
			},
		}
		if err := d.store.CreateActivity(ctx, activity); err != nil {
			return fmt.Errorf("failed to record sent activity: %w", err)
		}

		automation.Stats.Requests++
		if err := d.store.SaveAutomation(ctx, automation); err != nil {
			return fmt.Errorf("failed to update automation stats: %w", err)
		}

		sent++
		report.Sent++
	}

	return nil
}

// discover combines direct people search with people inferred as authors of
// matching content. The two sets are concatenated, content-derived entries
// last; dedup against already-contacted prospects happens in the caller.
func (d *Dispatcher) discover(ctx context.Context, session Session, criteria SearchCriteria) ([]Prospect, error) {
	callCtx, cancel := callContext(ctx, d.callTimeout)
	people, err := session.SearchPeople(callCtx, criteria)
	cancel()
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return nil, fmt.Errorf("people search: %w", err)
		}
		log.Printf("[ENGINE]: People search failed, treating as empty: %v", err)
		people = nil
	}

	callCtx, cancel = callContext(ctx, d.callTimeout)
	authors, err := session.SearchContent(callCtx, criteria)
	cancel()
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return nil, fmt.Errorf("content search: %w", err)
		}
		log.Printf("[ENGINE]: Content search failed, treating as empty: %v", err)
		authors = nil
	}

	prospects := make([]Prospect, 0, len(people)+len(authors))
	prospects = append(prospects, people...)
	for _, author := range authors {
		prospects = append(prospects, author.AsProspect())
	}
	return prospects, nil
}

// sweepAcceptances checks every still-sent connection request against the
// platform and handles accepted ones: persist the transition, enrich contact
// data, fan out follow-ups, notify the owner. Per-activity failures skip only
// that activity.
func (d *Dispatcher) sweepAcceptances(ctx context.Context, automation *Automation, report *AutomationReport) error {
	activities, err := d.store.ListSentConnectionRequests(ctx, automation.ID)
	if err != nil {
		return fmt.Errorf("failed to load pending activities: %w", err)
	}
	if len(activities) == 0 || automation.AccountID == nil {
		return nil
	}

	account, err := d.store.GetAccount(ctx, *automation.AccountID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	session, release, err := d.acquire(ctx, account)
	if err != nil {
		return err
	}
	defer release()

	for _, activity := range activities {
		callCtx, cancel := callContext(ctx, d.callTimeout)
		state, err := session.ConnectionStatus(callCtx, activity.Target.ProfileURL)
		cancel()
		if err != nil {
			report.CheckFailures++
			continue
		}
		if state != StateConnected {
			// pending / not_connected / unknown: re-checked on a later tick
			continue
		}

		activity.Status = ActivityAccepted
		if err := d.store.UpdateActivity(ctx, activity); err != nil {
			return fmt.Errorf("failed to persist acceptance: %w", err)
		}

		d.enrichTarget(ctx, session, activity)

		automation.Stats.Accepted++
		if err := d.store.SaveAutomation(ctx, automation); err != nil {
			return fmt.Errorf("failed to update automation stats: %w", err)
		}

		result := d.FanOut(ctx, session, activity, automation)
		for _, outcome := range result {
			if outcome.Sent {
				report.FollowUps++
			}
		}

		d.notifyAccepted(ctx, automation, activity)
		report.Accepted++
	}

	return nil
}

// enrichTarget fills in discovered email/phone on the target snapshot.
// Best-effort: failure never blocks the acceptance transition.
func (d *Dispatcher) enrichTarget(ctx context.Context, session Session, activity *Activity) {
	callCtx, cancel := callContext(ctx, d.callTimeout)
	defer cancel()

	info, err := session.FetchContactInfo(callCtx, activity.Target.ProfileURL)
	if err != nil {
		return
	}
	if info.Email == "" && info.Phone == "" {
		return
	}

	if info.Email != "" {
		activity.Target.Email = info.Email
	}
	if info.Phone != "" {
		activity.Target.Phone = info.Phone
	}
	if err := d.store.UpdateActivity(ctx, activity); err != nil {
		log.Printf("[ENGINE]: Failed to persist contact info for activity '%s': %v", activity.ID, err)
	}
}

// notifyAccepted emits a connection-accepted notification to the automation's
// owner. Best-effort: failure never rolls back the acceptance transition.
func (d *Dispatcher) notifyAccepted(ctx context.Context, automation *Automation, activity *Activity) {
	name := activity.Target.Name
	if name == "" {
		name = "A lead"
	}

	notification := &Notification{
		UserID:  automation.UserID,
		Type:    NotificationConnectionAccepted,
		Title:   "Connection accepted",
		Message: fmt.Sprintf("%s accepted your connection request", name),
		Data: map[string]any{
			"automation_id": automation.ID.String(),
			"activity_id":   activity.ID.String(),
			"target":        activity.Target,
		},
	}
	if err := d.store.CreateNotification(ctx, notification); err != nil {
		log.Printf("[ENGINE]: Failed to create notification for automation '%s': %v", automation.ID, err)
	}
}

// acquire fetches the account's session and touches its last-used timestamp
func (d *Dispatcher) acquire(ctx context.Context, account *Account) (Session, func(), error) {
	session, release, err := d.sessions.Acquire(ctx, account)
	if err != nil {
		return nil, nil, err
	}

	if err := d.store.TouchAccount(ctx, account.ID, d.now()); err != nil {
		log.Printf("[ENGINE]: Failed to touch account '%s': %v", account.ID, err)
	}
	return session, release, nil
}
