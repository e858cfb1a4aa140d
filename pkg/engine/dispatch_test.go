package engine_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	engine_store "github.com/ethanbaker/prospector/internal/stores/engine"
	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedSentActivity inserts a connection request into the ledger
func seedSentActivity(t *testing.T, store *engine_store.MemoryStore, automation *engine.Automation, externalID string, createdAt time.Time) *engine.Activity {
	t.Helper()

	activity := &engine.Activity{
		AutomationID: automation.ID,
		UserID:       automation.UserID,
		Type:         engine.TypeConnectionRequest,
		Channel:      engine.ChannelNetwork,
		Status:       engine.ActivitySent,
		Target: engine.Target{
			Name:       "Jane Doe",
			ProfileURL: "https://www.linkedin.com/in/" + externalID,
			ExternalID: externalID,
		},
		CreatedAt: createdAt,
	}
	require.NoError(t, store.CreateActivity(context.Background(), activity))
	return activity
}

func TestDispatchSendsNewRequests(t *testing.T) {
	store := engine_store.NewMemoryStore()
	session := newFakeSession()

	account := testAccount()
	store.AddAccount(account)
	automation := testAutomation(account.ID)
	store.AddAutomation(automation)

	session.prospects = []engine.Prospect{
		{Name: "Alice Smith", ProfileURL: "https://www.linkedin.com/in/alice", ExternalID: "alice"},
		{Name: "Bob Jones", ProfileURL: "https://www.linkedin.com/in/bob", ExternalID: "bob"},
	}

	dispatcher := engine.NewDispatcher(store, registryFor(session), engine.Senders{}, nil)
	report := dispatcher.Dispatch(context.Background(), automation)

	require.NoError(t, report.Err)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, []string{
		"https://www.linkedin.com/in/alice",
		"https://www.linkedin.com/in/bob",
	}, session.sentRequests)

	// The ledger holds one sent activity per prospect
	activities := store.Activities()
	require.Len(t, activities, 2)
	for _, activity := range activities {
		assert.Equal(t, engine.TypeConnectionRequest, activity.Type)
		assert.Equal(t, engine.ActivitySent, activity.Status)
		assert.Equal(t, engine.ChannelNetwork, activity.Channel)
	}

	// Stats were persisted
	saved := store.GetAutomation(automation.ID)
	assert.Equal(t, 2, saved.Stats.Requests)
}

func TestDispatchDailyLimit(t *testing.T) {
	t.Run("exhausted budget sends nothing", func(t *testing.T) {
		store := engine_store.NewMemoryStore()
		session := newFakeSession()

		account := testAccount()
		store.AddAccount(account)
		automation := testAutomation(account.ID)
		automation.Limits.Daily = 5
		store.AddAutomation(automation)

		// 5 requests within the trailing day exhaust the budget
		for i := 0; i < 5; i++ {
			seedSentActivity(t, store, automation, fmt.Sprintf("prior-%d", i), time.Now().Add(-time.Hour))
		}

		session.prospects = []engine.Prospect{
			{Name: "Alice Smith", ProfileURL: "https://www.linkedin.com/in/alice", ExternalID: "alice"},
		}

		dispatcher := engine.NewDispatcher(store, registryFor(session), engine.Senders{}, nil)
		report := dispatcher.Dispatch(context.Background(), automation)

		require.NoError(t, report.Err)
		assert.Equal(t, 0, report.Sent)
		assert.Empty(t, session.sentRequests)
		assert.Zero(t, session.searchCalls)
	})

	t.Run("old requests fall out of the window", func(t *testing.T) {
		store := engine_store.NewMemoryStore()
		session := newFakeSession()

		account := testAccount()
		store.AddAccount(account)
		automation := testAutomation(account.ID)
		automation.Limits.Daily = 5
		store.AddAutomation(automation)

		// Requests older than a day do not count against the budget
		for i := 0; i < 5; i++ {
			seedSentActivity(t, store, automation, fmt.Sprintf("old-%d", i), time.Now().Add(-25*time.Hour))
		}

		session.prospects = []engine.Prospect{
			{Name: "Alice Smith", ProfileURL: "https://www.linkedin.com/in/alice", ExternalID: "alice"},
		}

		dispatcher := engine.NewDispatcher(store, registryFor(session), engine.Senders{}, nil)
		report := dispatcher.Dispatch(context.Background(), automation)

		require.NoError(t, report.Err)
		assert.Equal(t, 1, report.Sent)
	})

	t.Run("sweep still runs when budget is exhausted", func(t *testing.T) {
		store := engine_store.NewMemoryStore()
		session := newFakeSession()

		account := testAccount()
		store.AddAccount(account)
		automation := testAutomation(account.ID)
		automation.Limits.Daily = 1
		store.AddAutomation(automation)

		seeded := seedSentActivity(t, store, automation, "carol", time.Now().Add(-time.Hour))
		session.statuses[seeded.Target.ProfileURL] = engine.StateConnected

		dispatcher := engine.NewDispatcher(store, registryFor(session), engine.Senders{}, nil)
		report := dispatcher.Dispatch(context.Background(), automation)

		require.NoError(t, report.Err)
		assert.Equal(t, 0, report.Sent)
		assert.Equal(t, 1, report.Accepted)
	})
}

func TestDispatchPerTickCap(t *testing.T) {
	store := engine_store.NewMemoryStore()
	session := newFakeSession()

	account := testAccount()
	store.AddAccount(account)
	automation := testAutomation(account.ID)
	automation.Limits.Daily = 50
	store.AddAutomation(automation)

	// More prospects than the per-tick cap allows
	for i := 0; i < 15; i++ {
		id := fmt.Sprintf("prospect-%d", i)
		session.prospects = append(session.prospects, engine.Prospect{
			Name:       "Prospect " + id,
			ProfileURL: "https://www.linkedin.com/in/" + id,
			ExternalID: id,
		})
	}

	dispatcher := engine.NewDispatcher(store, registryFor(session), engine.Senders{}, nil)
	report := dispatcher.Dispatch(context.Background(), automation)

	require.NoError(t, report.Err)
	assert.Equal(t, engine.DefaultPerTickCap, report.Sent)
	assert.Len(t, session.sentRequests, engine.DefaultPerTickCap)
}

func TestDispatchDeduplication(t *testing.T) {
	t.Run("already contacted target is skipped", func(t *testing.T) {
		store := engine_store.NewMemoryStore()
		session := newFakeSession()

		account := testAccount()
		store.AddAccount(account)
		automation := testAutomation(account.ID)
		store.AddAutomation(automation)

		seedSentActivity(t, store, automation, "abc123", time.Now().Add(-2*time.Hour))

		session.prospects = []engine.Prospect{
			{Name: "Seen Before", ProfileURL: "https://www.linkedin.com/in/abc123", ExternalID: "abc123"},
			{Name: "Brand New", ProfileURL: "https://www.linkedin.com/in/new", ExternalID: "new"},
		}

		dispatcher := engine.NewDispatcher(store, registryFor(session), engine.Senders{}, nil)
		report := dispatcher.Dispatch(context.Background(), automation)

		require.NoError(t, report.Err)
		assert.Equal(t, 1, report.Sent)
		assert.Equal(t, 1, report.Duplicates)
		assert.Equal(t, []string{"https://www.linkedin.com/in/new"}, session.sentRequests)
	})

	t.Run("empty external id skips dedup but stays eligible", func(t *testing.T) {
		store := engine_store.NewMemoryStore()
		session := newFakeSession()

		account := testAccount()
		store.AddAccount(account)
		automation := testAutomation(account.ID)
		store.AddAutomation(automation)

		session.prospects = []engine.Prospect{
			{Name: "No Handle", ProfileURL: "https://www.linkedin.com/in/ghost"},
		}

		dispatcher := engine.NewDispatcher(store, registryFor(session), engine.Senders{}, nil)
		report := dispatcher.Dispatch(context.Background(), automation)

		require.NoError(t, report.Err)
		assert.Equal(t, 1, report.Sent)
		assert.Equal(t, 0, report.Duplicates)
	})
}

func TestDispatchSendFailure(t *testing.T) {
	store := engine_store.NewMemoryStore()
	session := newFakeSession()

	account := testAccount()
	store.AddAccount(account)
	automation := testAutomation(account.ID)
	store.AddAutomation(automation)

	session.prospects = []engine.Prospect{
		{Name: "Alice Smith", ProfileURL: "https://www.linkedin.com/in/alice", ExternalID: "alice"},
	}
	session.sendErr = fmt.Errorf("invite button not found")

	dispatcher := engine.NewDispatcher(store, registryFor(session), engine.Senders{}, nil)
	report := dispatcher.Dispatch(context.Background(), automation)

	// A failed send records no activity, so the prospect stays eligible
	require.NoError(t, report.Err)
	assert.Equal(t, 0, report.Sent)
	assert.Equal(t, 1, report.SendFailures)
	assert.Empty(t, store.Activities())
	assert.Zero(t, store.GetAutomation(automation.ID).Stats.Requests)
}

func TestDispatchNoCredentials(t *testing.T) {
	store := engine_store.NewMemoryStore()
	session := newFakeSession()

	account := testAccount()
	account.SessionCookies = ""
	store.AddAccount(account)
	automation := testAutomation(account.ID)
	store.AddAutomation(automation)

	session.prospects = []engine.Prospect{
		{Name: "Alice Smith", ProfileURL: "https://www.linkedin.com/in/alice", ExternalID: "alice"},
	}

	// No cookie bundle and no fallback credentials
	dispatcher := engine.NewDispatcher(store, registryFor(session), engine.Senders{}, nil)
	report := dispatcher.Dispatch(context.Background(), automation)

	require.ErrorIs(t, report.Err, engine.ErrNoCredentials)
	assert.Empty(t, session.sentRequests)
}

func TestDispatchAcceptanceSweep(t *testing.T) {
	store := engine_store.NewMemoryStore()
	session := newFakeSession()

	account := testAccount()
	store.AddAccount(account)
	automation := testAutomation(account.ID)
	automation.Channels = engine.ChannelSet{engine.ChannelNetwork: true}
	automation.Templates = []engine.Template{&fakeTemplate{
		id:       "welcome",
		body:     "Thanks for connecting, {{firstName}}!",
		channels: map[engine.Channel]bool{engine.ChannelNetwork: true},
	}}
	store.AddAutomation(automation)

	accepted := seedSentActivity(t, store, automation, "jane", time.Now().Add(-3*time.Hour))
	pending := seedSentActivity(t, store, automation, "mark", time.Now().Add(-2*time.Hour))

	session.statuses[accepted.Target.ProfileURL] = engine.StateConnected
	session.statuses[pending.Target.ProfileURL] = engine.StatePending
	session.contacts[accepted.Target.ProfileURL] = engine.ContactInfo{
		Email: "jane@example.com",
		Phone: "+15550100",
	}

	dispatcher := engine.NewDispatcher(store, registryFor(session), engine.Senders{}, nil)
	report := dispatcher.Dispatch(context.Background(), automation)

	require.NoError(t, report.Err)
	assert.Equal(t, 1, report.Accepted)
	assert.Equal(t, 1, report.FollowUps)

	// The accepted activity transitioned and was enriched
	activities := store.Activities()
	require.Len(t, activities, 2)
	assert.Equal(t, engine.ActivityAccepted, activities[0].Status)
	assert.Equal(t, "jane@example.com", activities[0].Target.Email)
	assert.Equal(t, "+15550100", activities[0].Target.Phone)
	assert.NotNil(t, activities[0].FollowUpAt)

	// The pending one is untouched for a later tick
	assert.Equal(t, engine.ActivitySent, activities[1].Status)
	assert.Nil(t, activities[1].FollowUpAt)

	// The follow-up message was rendered with the target's first name
	require.Len(t, session.sentMessages, 1)
	assert.Equal(t, "Thanks for connecting, Jane!", session.sentMessages[0])

	// Stats and notification
	saved := store.GetAutomation(automation.ID)
	assert.Equal(t, 1, saved.Stats.Accepted)
	assert.Equal(t, 1, saved.Stats.Messages)

	notifications := store.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, engine.NotificationConnectionAccepted, notifications[0].Type)
	assert.Equal(t, automation.UserID, notifications[0].UserID)
	assert.Contains(t, notifications[0].Message, "Jane Doe")
}

func TestDispatchUnknownStateLeftPending(t *testing.T) {
	store := engine_store.NewMemoryStore()
	session := newFakeSession()

	account := testAccount()
	store.AddAccount(account)
	automation := testAutomation(account.ID)
	store.AddAutomation(automation)

	// ConnectionStatus returns unknown state for unseeded URLs; seed one
	// accepted and leave one unknown
	accepted := seedSentActivity(t, store, automation, "jane", time.Now().Add(-3*time.Hour))
	seedSentActivity(t, store, automation, "mystery", time.Now().Add(-2*time.Hour))
	session.statuses[accepted.Target.ProfileURL] = engine.StateConnected

	dispatcher := engine.NewDispatcher(store, registryFor(session), engine.Senders{}, nil)
	report := dispatcher.Dispatch(context.Background(), automation)

	require.NoError(t, report.Err)
	assert.Equal(t, 1, report.Accepted)
	assert.Equal(t, 0, report.CheckFailures)

	activities := store.Activities()
	assert.Equal(t, engine.ActivityAccepted, activities[0].Status)
	assert.Equal(t, engine.ActivitySent, activities[1].Status)
}

func TestDispatchTouchesAccount(t *testing.T) {
	store := engine_store.NewMemoryStore()
	session := newFakeSession()

	account := testAccount()
	store.AddAccount(account)
	automation := testAutomation(account.ID)
	store.AddAutomation(automation)

	session.prospects = []engine.Prospect{
		{Name: "Alice Smith", ProfileURL: "https://www.linkedin.com/in/alice", ExternalID: "alice"},
	}

	dispatcher := engine.NewDispatcher(store, registryFor(session), engine.Senders{}, nil)
	report := dispatcher.Dispatch(context.Background(), automation)
	require.NoError(t, report.Err)

	loaded, err := store.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	assert.NotNil(t, loaded.LastUsedAt)
}

func TestDispatchContentSearchSupplementsProspects(t *testing.T) {
	store := engine_store.NewMemoryStore()
	session := newFakeSession()

	account := testAccount()
	store.AddAccount(account)
	automation := testAutomation(account.ID)
	store.AddAutomation(automation)

	session.prospects = []engine.Prospect{
		{Name: "Direct Hit", ProfileURL: "https://www.linkedin.com/in/direct", ExternalID: "direct"},
	}
	session.authors = []engine.ContentAuthor{
		{Name: "Post Author", ProfileURL: "https://www.linkedin.com/in/author", ExternalID: "author"},
	}

	dispatcher := engine.NewDispatcher(store, registryFor(session), engine.Senders{}, nil)
	report := dispatcher.Dispatch(context.Background(), automation)

	require.NoError(t, report.Err)
	assert.Equal(t, 2, report.Sent)

	// People results come before content-derived prospects
	assert.Equal(t, []string{
		"https://www.linkedin.com/in/direct",
		"https://www.linkedin.com/in/author",
	}, session.sentRequests)
}
