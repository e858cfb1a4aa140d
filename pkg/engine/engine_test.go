package engine_test

import (
	"context"
	"strings"
	"sync"

	engine_store "github.com/ethanbaker/prospector/internal/stores/engine"
	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/ethanbaker/prospector/pkg/utils"
	"github.com/google/uuid"
)

/** Shared test fakes for the orchestration core */

// fakeSession is a scriptable in-memory session
type fakeSession struct {
	mu sync.Mutex

	prospects []engine.Prospect
	authors   []engine.ContentAuthor
	statuses  map[string]engine.ConnectionState
	contacts  map[string]engine.ContactInfo

	authErr    error
	searchErr  error
	sendErr    error
	messageErr error

	authCalls    int
	searchCalls  int
	sentRequests []string
	sentMessages []string
	closed       bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		statuses: map[string]engine.ConnectionState{},
		contacts: map[string]engine.ContactInfo{},
	}
}

func (s *fakeSession) AuthenticateWithCookies(ctx context.Context, bundle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authCalls++
	return s.authErr
}

func (s *fakeSession) AuthenticateWithCredentials(ctx context.Context, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authCalls++
	return s.authErr
}

func (s *fakeSession) SearchPeople(ctx context.Context, criteria engine.SearchCriteria) ([]engine.Prospect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchCalls++
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.prospects, nil
}

func (s *fakeSession) SearchContent(ctx context.Context, criteria engine.SearchCriteria) ([]engine.ContentAuthor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authors, nil
}

func (s *fakeSession) SendConnectionRequest(ctx context.Context, profileURL, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sentRequests = append(s.sentRequests, profileURL)
	return nil
}

func (s *fakeSession) SendDirectMessage(ctx context.Context, profileURL, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.messageErr != nil {
		return s.messageErr
	}
	s.sentMessages = append(s.sentMessages, text)
	return nil
}

func (s *fakeSession) ConnectionStatus(ctx context.Context, profileURL string) (engine.ConnectionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.statuses[profileURL]; ok {
		return state, nil
	}
	return engine.StateUnknown, nil
}

func (s *fakeSession) FetchContactInfo(ctx context.Context, profileURL string) (engine.ContactInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contacts[profileURL], nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// fakeTemplate renders a fixed body with {{firstName}}/{{fullName}} substitution
type fakeTemplate struct {
	id       string
	body     string
	subject  string
	channels map[engine.Channel]bool
}

func (t *fakeTemplate) TemplateID() string { return t.id }

func (t *fakeTemplate) Render(language string, vars engine.Variables) string {
	return substituteVars(t.body, vars)
}

func (t *fakeTemplate) RenderSubject(language string, vars engine.Variables) string {
	return substituteVars(t.subject, vars)
}

func (t *fakeTemplate) SupportsChannel(ch engine.Channel) bool {
	return t.channels[ch]
}

func substituteVars(text string, vars engine.Variables) string {
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// fakeEmailSender records templated sends
type fakeEmailSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *fakeEmailSender) SendTemplated(ctx context.Context, to string, template engine.Template, vars engine.Variables, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

// fakeSMSSender records plain text sends
type fakeSMSSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *fakeSMSSender) Send(ctx context.Context, to, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

// fakeChatSender records sends behind a ready gate
type fakeChatSender struct {
	mu    sync.Mutex
	ready bool
	sent  []string
}

func (s *fakeChatSender) Ready() bool { return s.ready }

func (s *fakeChatSender) Send(ctx context.Context, to, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return engine.ErrNotReady
	}
	s.sent = append(s.sent, to)
	return nil
}

/** Scenario helpers */

// testAccount is an account with a cookie bundle so cookie auth is used
func testAccount() *engine.Account {
	return &engine.Account{
		ID:             uuid.New(),
		Label:          "primary",
		SessionCookies: "li_at=token; JSESSIONID=abc",
		Active:         true,
	}
}

// testAutomation is an active automation bound to the given account
func testAutomation(accountID uuid.UUID) *engine.Automation {
	return &engine.Automation{
		ID:     uuid.New(),
		Name:   "SaaS founders",
		Status: engine.AutomationActive,
		Criteria: engine.SearchCriteria{
			Keywords: []string{"saas", "founder"},
		},
		Channels:  engine.ChannelSet{engine.ChannelNetwork: true},
		Limits:    engine.Limits{Daily: 50, Total: 1000},
		AccountID: &accountID,
		UserID:    uuid.New(),
	}
}

// registryFor returns a registry whose factory always hands out the session
func registryFor(session *fakeSession) *engine.SessionRegistry {
	return engine.NewSessionRegistry(func(ctx context.Context) (engine.Session, error) {
		return session, nil
	}, engine.Credentials{})
}

// newTestManager builds a manager over a memory store and fake session
func newTestManager(store *engine_store.MemoryStore, session *fakeSession, senders engine.Senders) *engine.Manager {
	cfg := utils.NewConfig(nil)
	manager, err := engine.NewManager(cfg, &engine.ManagerOptions{
		Store:    store,
		Sessions: registryFor(session),
		Senders:  senders,
	})
	if err != nil {
		panic(err)
	}
	return manager
}
