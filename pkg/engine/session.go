package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is an authenticated, stateful handle to the external platform,
// scoped to one account. A session wraps a single interactive automation
// surface (one logical page of navigation state), so it must never be used
// from two dispatch paths at once.
type Session interface {
	AuthenticateWithCookies(ctx context.Context, bundle string) error
	AuthenticateWithCredentials(ctx context.Context, email, password string) error
	SearchPeople(ctx context.Context, criteria SearchCriteria) ([]Prospect, error)
	SearchContent(ctx context.Context, criteria SearchCriteria) ([]ContentAuthor, error)
	SendConnectionRequest(ctx context.Context, profileURL, note string) error
	SendDirectMessage(ctx context.Context, profileURL, text string) error
	ConnectionStatus(ctx context.Context, profileURL string) (ConnectionState, error)
	FetchContactInfo(ctx context.Context, profileURL string) (ContactInfo, error)
	Close() error
}

// SessionFactory constructs a fresh, unauthenticated session.
type SessionFactory func(ctx context.Context) (Session, error)

// Credentials are the process-wide fallback login credentials used when an
// account record carries no cookie bundle.
type Credentials struct {
	Email    string
	Password string
}

// Configured reports whether fallback credentials are set.
func (c Credentials) Configured() bool {
	return c.Email != "" && c.Password != ""
}

// SessionRegistry owns the per-account session cache. Exactly one live
// session exists per account for the registry's lifetime; access is
// serialized per account so two dispatch paths cannot corrupt a session's
// navigation state even if tick processing is later parallelized.
type SessionRegistry struct {
	factory  SessionFactory
	fallback Credentials

	mutex    sync.Mutex
	sessions map[uuid.UUID]*accountSession
}

type accountSession struct {
	mutex   sync.Mutex
	session Session
}

// NewSessionRegistry creates a registry that builds sessions with the given
// factory and falls back to the given credentials for accounts without a
// cookie bundle.
func NewSessionRegistry(factory SessionFactory, fallback Credentials) *SessionRegistry {
	return &SessionRegistry{
		factory:  factory,
		fallback: fallback,
		sessions: make(map[uuid.UUID]*accountSession),
	}
}

// Acquire returns an authenticated session for the account, lazily creating
// one on first use, and locks it to the caller. The returned release function
// must be called when the caller is done with the session.
//
// Authentication runs on every acquisition, even for a session that was
// already authenticated on a previous tick: re-auth is idempotent when the
// session is still live, and expired cookies surface as a clear failure
// instead of silently operating unauthenticated.
func (r *SessionRegistry) Acquire(ctx context.Context, account *Account) (Session, func(), error) {
	if account == nil {
		return nil, nil, fmt.Errorf("account cannot be nil")
	}

	slot := r.slotFor(account.ID)
	slot.mutex.Lock()

	if slot.session == nil {
		// The session outlives this call, so it must not be built on the
		// caller's context: a request-scoped ctx dies when the response is
		// written, which would kill the cached browser connection for every
		// later tick.
		session, err := r.factory(context.WithoutCancel(ctx))
		if err != nil {
			slot.mutex.Unlock()
			return nil, nil, fmt.Errorf("failed to create session for account '%s': %w", account.ID, err)
		}
		slot.session = session
	}

	if err := r.authenticate(ctx, slot.session, account); err != nil {
		slot.mutex.Unlock()
		return nil, nil, err
	}

	return slot.session, func() { slot.mutex.Unlock() }, nil
}

// slotFor returns the per-account slot, creating it on first use.
func (r *SessionRegistry) slotFor(accountID uuid.UUID) *accountSession {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	slot, exists := r.sessions[accountID]
	if !exists {
		slot = &accountSession{}
		r.sessions[accountID] = slot
	}
	return slot
}

// authenticate applies the auth policy: cookie bundle first, then fallback
// credentials, else ErrNoCredentials.
func (r *SessionRegistry) authenticate(ctx context.Context, session Session, account *Account) error {
	if account.SessionCookies != "" {
		if err := session.AuthenticateWithCookies(ctx, account.SessionCookies); err != nil {
			return fmt.Errorf("cookie authentication for account '%s': %w", account.ID, err)
		}
		return nil
	}

	if r.fallback.Configured() {
		if err := session.AuthenticateWithCredentials(ctx, r.fallback.Email, r.fallback.Password); err != nil {
			return fmt.Errorf("credential authentication for account '%s': %w", account.ID, err)
		}
		return nil
	}

	return fmt.Errorf("account '%s': %w", account.ID, ErrNoCredentials)
}

// Close tears down every live session. Called at orchestrator shutdown.
func (r *SessionRegistry) Close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for id, slot := range r.sessions {
		slot.mutex.Lock()
		if slot.session != nil {
			if err := slot.session.Close(); err != nil {
				log.Printf("[ENGINE]: Failed to close session for account '%s': %v", id, err)
			}
			slot.session = nil
		}
		slot.mutex.Unlock()
	}
	r.sessions = make(map[uuid.UUID]*accountSession)
}

// callTimeout bounds a single external call so a stuck call cannot stall the
// tick indefinitely.
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
