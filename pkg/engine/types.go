package engine

import (
	"time"

	"github.com/google/uuid"
)

/** Domain types for the outreach orchestration core */

// AutomationStatus represents the lifecycle state of an automation
type AutomationStatus string

const (
	AutomationDraft     AutomationStatus = "draft"
	AutomationActive    AutomationStatus = "active"
	AutomationPaused    AutomationStatus = "paused"
	AutomationCompleted AutomationStatus = "completed"
	AutomationFailed    AutomationStatus = "failed"
)

// ValidateAutomationStatus checks if the given automation status is valid
func ValidateAutomationStatus(s AutomationStatus) bool {
	switch s {
	case AutomationDraft, AutomationActive, AutomationPaused, AutomationCompleted, AutomationFailed:
		return true
	default:
		return false
	}
}

// ActivityType represents the kind of outreach attempt an activity records
type ActivityType string

const (
	TypeConnectionRequest ActivityType = "connection_request"
	TypeMessageSend       ActivityType = "message_send"
	TypeFollowUp          ActivityType = "follow_up"
	TypeCampaign          ActivityType = "campaign"
)

// ActivityStatus represents the lifecycle state of a single outreach attempt
type ActivityStatus string

const (
	ActivityPending   ActivityStatus = "pending"
	ActivitySent      ActivityStatus = "sent"
	ActivityAccepted  ActivityStatus = "accepted"
	ActivityResponded ActivityStatus = "responded"
	ActivityFailed    ActivityStatus = "failed"
)

// ValidateActivityStatus checks if the given activity status is valid
func ValidateActivityStatus(s ActivityStatus) bool {
	switch s {
	case ActivityPending, ActivitySent, ActivityAccepted, ActivityResponded, ActivityFailed:
		return true
	default:
		return false
	}
}

// Channel represents a message delivery channel
type Channel string

const (
	ChannelNetwork Channel = "network"
	ChannelEmail   Channel = "email"
	ChannelSMS     Channel = "sms"
	ChannelChat    Channel = "chat"
)

// AllChannels lists every channel in fan-out order
var AllChannels = []Channel{ChannelNetwork, ChannelEmail, ChannelSMS, ChannelChat}

// ChannelSet records which channels an automation has enabled
type ChannelSet map[Channel]bool

// Enabled reports whether the given channel is enabled in the set
func (cs ChannelSet) Enabled(ch Channel) bool {
	return cs != nil && cs[ch]
}

// ConnectionState is the platform-reported state of a connection request
type ConnectionState string

const (
	StateConnected    ConnectionState = "connected"
	StatePending      ConnectionState = "pending"
	StateNotConnected ConnectionState = "not_connected"
	StateUnknown      ConnectionState = "unknown"
)

// SearchCriteria holds the stored prospect search criteria of an automation
type SearchCriteria struct {
	Keywords         []string `json:"keywords"`
	Location         string   `json:"location"`
	Industry         string   `json:"industry"`
	CompanySize      string   `json:"company_size"`
	JobTitles        []string `json:"job_titles"`
	ConnectionDegree string   `json:"connection_degree"`
}

// Limits bounds how many connection requests an automation may issue
type Limits struct {
	Daily int `json:"daily"`
	Total int `json:"total"`
}

// Stats holds the cumulative counters of an automation
type Stats struct {
	Requests  int `json:"requests"`
	Messages  int `json:"messages"`
	Accepted  int `json:"accepted"`
	Responses int `json:"responses"`
}

// Automation is a configured outreach campaign
type Automation struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Status    AutomationStatus `json:"status"`
	Criteria  SearchCriteria   `json:"criteria"`
	Channels  ChannelSet       `json:"channels"`
	Limits    Limits           `json:"limits"`
	Stats     Stats            `json:"stats"`
	AccountID *uuid.UUID       `json:"account_id"` // nil when no source account is bound
	UserID    uuid.UUID        `json:"user_id"`
	Templates []Template       `json:"-"` // ordered, loaded by the store
}

// Account is a source-platform identity used to act on behalf of a user
type Account struct {
	ID             uuid.UUID  `json:"id"`
	Label          string     `json:"label"`
	LoginEmail     string     `json:"login_email"`
	SessionCookies string     `json:"-"` // raw "name=value; name2=value2" bundle
	Active         bool       `json:"active"`
	LastUsedAt     *time.Time `json:"last_used_at"`
}

// Target is the snapshot of the person an activity was sent to
type Target struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url"`
	Company    string `json:"company"`
	JobTitle   string `json:"job_title"`
	ExternalID string `json:"external_id"` // may be empty when unparseable
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

// Activity is the durable record of one outreach attempt against one prospect
type Activity struct {
	ID           uuid.UUID      `json:"id"`
	AutomationID uuid.UUID      `json:"automation_id"`
	UserID       uuid.UUID      `json:"user_id"`
	Type         ActivityType   `json:"type"`
	Channel      Channel        `json:"channel"`
	Status       ActivityStatus `json:"status"`
	Target       Target         `json:"target"`
	FollowUpAt   *time.Time     `json:"follow_up_at"` // set once a network follow-up went out
	CreatedAt    time.Time      `json:"created_at"`
}

// Notification types emitted by the core
const (
	NotificationConnectionAccepted = "connection_accepted"
	NotificationEngine             = "engine"
)

// Notification is a side-channel event record for the owning user
type Notification struct {
	ID      uuid.UUID      `json:"id"`
	UserID  uuid.UUID      `json:"user_id"`
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	Read    bool           `json:"read"`
}

// Prospect is a discovered candidate person, not yet an activity
type Prospect struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url"`
	JobTitle   string `json:"job_title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	ExternalID string `json:"external_id"`
}

// ContentAuthor is the author of a matching content/post search result
type ContentAuthor struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url"`
	ExternalID string `json:"external_id"`
	PostURL    string `json:"post_url"`
	Snippet    string `json:"snippet"`
}

// AsProspect converts a content author into a prospect entry
func (a ContentAuthor) AsProspect() Prospect {
	return Prospect{
		Name:       a.Name,
		ProfileURL: a.ProfileURL,
		ExternalID: a.ExternalID,
	}
}

// ContactInfo is the contact data discovered on a profile
type ContactInfo struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}
