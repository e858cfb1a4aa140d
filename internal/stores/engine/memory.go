package engine_store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/google/uuid"
)

// MemoryStore implements engine.StoreInterface in memory, for tests and
// local development
type MemoryStore struct {
	mu            sync.RWMutex
	automations   map[uuid.UUID]*engine.Automation
	accounts      map[uuid.UUID]*engine.Account
	activities    map[uuid.UUID]*engine.Activity
	notifications []*engine.Notification
	order         []uuid.UUID // activity insertion order
}

// NewMemoryStore creates a new empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		automations: make(map[uuid.UUID]*engine.Automation),
		accounts:    make(map[uuid.UUID]*engine.Account),
		activities:  make(map[uuid.UUID]*engine.Activity),
	}
}

// AddAutomation seeds an automation into the store
func (s *MemoryStore) AddAutomation(automation *engine.Automation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.automations[automation.ID] = cloneAutomation(automation)
}

// AddAccount seeds an account into the store
func (s *MemoryStore) AddAccount(account *engine.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *account
	s.accounts[account.ID] = &clone
}

// GetAutomation returns a copy of a stored automation, or nil
func (s *MemoryStore) GetAutomation(id uuid.UUID) *engine.Automation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if automation, ok := s.automations[id]; ok {
		return cloneAutomation(automation)
	}
	return nil
}

// Activities returns copies of all stored activities in insertion order
func (s *MemoryStore) Activities() []*engine.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activities := make([]*engine.Activity, 0, len(s.order))
	for _, id := range s.order {
		clone := *s.activities[id]
		activities = append(activities, &clone)
	}
	return activities
}

// Notifications returns copies of all stored notifications
func (s *MemoryStore) Notifications() []*engine.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notifications := make([]*engine.Notification, 0, len(s.notifications))
	for _, notification := range s.notifications {
		clone := *notification
		notifications = append(notifications, &clone)
	}
	return notifications
}

// ListActiveAutomations returns all automations with status=active
func (s *MemoryStore) ListActiveAutomations(ctx context.Context) ([]*engine.Automation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	automations := []*engine.Automation{}
	for _, automation := range s.automations {
		if automation.Status == engine.AutomationActive {
			automations = append(automations, cloneAutomation(automation))
		}
	}
	return automations, nil
}

// SaveAutomation persists status and counter changes
func (s *MemoryStore) SaveAutomation(ctx context.Context, automation *engine.Automation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.automations[automation.ID]
	if !ok {
		return fmt.Errorf("automation '%s' not found", automation.ID)
	}

	existing.Status = automation.Status
	existing.Stats = automation.Stats
	return nil
}

// GetAccount loads a source account by ID
func (s *MemoryStore) GetAccount(ctx context.Context, id uuid.UUID) (*engine.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account '%s' not found", id)
	}

	clone := *account
	return &clone, nil
}

// TouchAccount updates the account's last-used timestamp
func (s *MemoryStore) TouchAccount(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("account '%s' not found", id)
	}

	account.LastUsedAt = &usedAt
	return nil
}

// CountConnectionRequestsSince counts network connection requests with status
// in {sent, pending} created at or after the given time
func (s *MemoryStore) CountConnectionRequestsSince(ctx context.Context, automationID uuid.UUID, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, activity := range s.activities {
		if activity.AutomationID != automationID || activity.Type != engine.TypeConnectionRequest {
			continue
		}
		if activity.Channel != engine.ChannelNetwork {
			continue
		}
		if activity.Status != engine.ActivitySent && activity.Status != engine.ActivityPending {
			continue
		}
		if activity.CreatedAt.Before(since) {
			continue
		}
		count++
	}
	return count, nil
}

// HasActivityForTarget reports whether a non-failed connection request
// already exists for the given target external identifier
func (s *MemoryStore) HasActivityForTarget(ctx context.Context, automationID uuid.UUID, externalID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, activity := range s.activities {
		if activity.AutomationID != automationID || activity.Type != engine.TypeConnectionRequest {
			continue
		}
		if activity.Target.ExternalID == externalID && activity.Status != engine.ActivityFailed {
			return true, nil
		}
	}
	return false, nil
}

// CreateActivity appends a new activity to the ledger. A zero CreatedAt is
// stamped with the current time.
func (s *MemoryStore) CreateActivity(ctx context.Context, activity *engine.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}

	clone := *activity
	s.activities[activity.ID] = &clone
	s.order = append(s.order, activity.ID)
	return nil
}

// UpdateActivity persists a status transition or target enrichment
func (s *MemoryStore) UpdateActivity(ctx context.Context, activity *engine.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.activities[activity.ID]
	if !ok {
		return fmt.Errorf("activity '%s' not found", activity.ID)
	}

	existing.Status = activity.Status
	existing.Target = activity.Target
	existing.FollowUpAt = activity.FollowUpAt
	return nil
}

// ListSentConnectionRequests returns the automation's connection requests
// still in status=sent, oldest first
func (s *MemoryStore) ListSentConnectionRequests(ctx context.Context, automationID uuid.UUID) ([]*engine.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activities := []*engine.Activity{}
	for _, id := range s.order {
		activity := s.activities[id]
		if activity.AutomationID != automationID || activity.Type != engine.TypeConnectionRequest {
			continue
		}
		if activity.Status != engine.ActivitySent {
			continue
		}
		clone := *activity
		activities = append(activities, &clone)
	}
	return activities, nil
}

// CreateNotification records a side-channel event for the owning user
func (s *MemoryStore) CreateNotification(ctx context.Context, notification *engine.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}

	clone := *notification
	s.notifications = append(s.notifications, &clone)
	return nil
}

func cloneAutomation(automation *engine.Automation) *engine.Automation {
	clone := *automation

	clone.Channels = make(engine.ChannelSet, len(automation.Channels))
	for channel, enabled := range automation.Channels {
		clone.Channels[channel] = enabled
	}

	clone.Templates = append([]engine.Template(nil), automation.Templates...)
	clone.Criteria.Keywords = append([]string(nil), automation.Criteria.Keywords...)
	clone.Criteria.JobTitles = append([]string(nil), automation.Criteria.JobTitles...)
	return &clone
}
