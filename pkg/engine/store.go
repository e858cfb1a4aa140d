package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StoreInterface defines the persistence contract the orchestration core
// depends on: the activity ledger plus the automation/account/notification
// reads and writes it performs. Storage technology is the implementation's
// concern.
type StoreInterface interface {
	// ListActiveAutomations returns all automations with status=active,
	// templates loaded in order.
	ListActiveAutomations(ctx context.Context) ([]*Automation, error)

	// SaveAutomation persists status and counter updates made by the core.
	SaveAutomation(ctx context.Context, automation *Automation) error

	// GetAccount loads a source account by ID.
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)

	// TouchAccount updates the account's last-used timestamp.
	TouchAccount(ctx context.Context, id uuid.UUID, usedAt time.Time) error

	// CountConnectionRequestsSince counts network connection_request
	// activities with status in {sent, pending} created at or after the given
	// time. The pending status is included defensively: the dispatch path only
	// ever writes sent, but other write paths may not.
	CountConnectionRequestsSince(ctx context.Context, automationID uuid.UUID, since time.Time) (int, error)

	// HasActivityForTarget reports whether a non-failed connection_request
	// activity already exists for the given target external identifier.
	HasActivityForTarget(ctx context.Context, automationID uuid.UUID, externalID string) (bool, error)

	// CreateActivity appends a new activity to the ledger.
	CreateActivity(ctx context.Context, activity *Activity) error

	// UpdateActivity persists a status transition or target enrichment.
	UpdateActivity(ctx context.Context, activity *Activity) error

	// ListSentConnectionRequests returns this automation's connection_request
	// activities still in status=sent, for the acceptance sweep.
	ListSentConnectionRequests(ctx context.Context, automationID uuid.UUID) ([]*Activity, error)

	// CreateNotification records a side-channel event for the owning user.
	CreateNotification(ctx context.Context, notification *Notification) error
}
