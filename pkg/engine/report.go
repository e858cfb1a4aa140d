package engine

import (
	"time"

	"github.com/google/uuid"
)

// Much of the dispatch flow deliberately keeps going past individual
// failures. These report types make that visible: every swallowed sub-step
// outcome is counted instead of disappearing into a log line.

// ChannelOutcome is the result of one channel's follow-up attempt
type ChannelOutcome struct {
	Channel Channel `json:"channel"`
	Sent    bool    `json:"sent"`
	Skipped bool    `json:"skipped"` // missing template, sender, or contact data
	Err     error   `json:"-"`
}

// FanOutResult collects the per-channel outcomes of one fan-out
type FanOutResult []ChannelOutcome

// Attempted reports whether any channel was actually dispatched to
func (r FanOutResult) Attempted() bool {
	for _, o := range r {
		if !o.Skipped {
			return true
		}
	}
	return false
}

// AutomationReport summarizes one automation's dispatch within a tick
type AutomationReport struct {
	AutomationID  uuid.UUID `json:"automation_id"`
	Sent          int       `json:"sent"`           // new connection requests issued
	Duplicates    int       `json:"duplicates"`     // prospects skipped by dedup
	SendFailures  int       `json:"send_failures"`  // send attempts skipped on error
	Accepted      int       `json:"accepted"`       // activities transitioned this tick
	FollowUps     int       `json:"follow_ups"`     // channel deliveries that succeeded
	CheckFailures int       `json:"check_failures"` // status checks skipped on error
	Err           error     `json:"-"`              // per-automation fatal error, if any
}

// TickReport summarizes one full scheduler pass
type TickReport struct {
	StartedAt   time.Time           `json:"started_at"`
	FinishedAt  time.Time           `json:"finished_at"`
	Automations []*AutomationReport `json:"automations"`
}

// TotalSent sums new connection requests across all automations in the tick
func (r *TickReport) TotalSent() int {
	total := 0
	for _, a := range r.Automations {
		total += a.Sent
	}
	return total
}

// Failures returns the reports that ended with a per-automation error
func (r *TickReport) Failures() []*AutomationReport {
	var failed []*AutomationReport
	for _, a := range r.Automations {
		if a.Err != nil {
			failed = append(failed, a)
		}
	}
	return failed
}
