package engine_store

import (
	"strings"
	"time"

	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AutomationModel represents the database model for outreach automations
type AutomationModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"column:deleted_at;index"`

	Name   string `json:"name" gorm:"column:name;not null;size:255"`
	Status string `json:"status" gorm:"column:status;not null;size:20;index;default:draft"`

	// Search criteria
	Keywords         []string `json:"keywords" gorm:"column:keywords;serializer:json"`
	Location         string   `json:"location" gorm:"column:location;size:255"`
	Industry         string   `json:"industry" gorm:"column:industry;size:255"`
	CompanySize      string   `json:"company_size" gorm:"column:company_size;size:20"`
	JobTitles        []string `json:"job_titles" gorm:"column:job_titles;serializer:json"`
	ConnectionDegree string   `json:"connection_degree" gorm:"column:connection_degree;size:10"`

	// Enabled channels
	ChannelNetwork bool `json:"channel_network" gorm:"column:channel_network;default:true"`
	ChannelEmail   bool `json:"channel_email" gorm:"column:channel_email;default:false"`
	ChannelSMS     bool `json:"channel_sms" gorm:"column:channel_sms;default:false"`
	ChannelChat    bool `json:"channel_chat" gorm:"column:channel_chat;default:false"`

	// Limits and counters
	DailyLimit    int `json:"daily_limit" gorm:"column:daily_limit;default:50"`
	TotalLimit    int `json:"total_limit" gorm:"column:total_limit;default:1000"`
	RequestsSent  int `json:"requests_sent" gorm:"column:requests_sent;default:0"`
	MessagesSent  int `json:"messages_sent" gorm:"column:messages_sent;default:0"`
	AcceptedCount int `json:"accepted_count" gorm:"column:accepted_count;default:0"`
	ResponseCount int `json:"response_count" gorm:"column:response_count;default:0"`

	AccountID *uuid.UUID `json:"account_id" gorm:"column:account_id;type:char(36);index"`
	UserID    uuid.UUID  `json:"user_id" gorm:"column:user_id;type:char(36);not null;index"`

	Templates []TemplateModel `json:"templates" gorm:"foreignKey:AutomationID;constraint:OnDelete:CASCADE"`
}

// TableName sets the table name for GORM
func (AutomationModel) TableName() string {
	return "automations"
}

// AccountModel represents the database model for source-platform accounts
type AccountModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"column:deleted_at;index"`

	Label          string     `json:"label" gorm:"column:label;not null;size:255"`
	LoginEmail     string     `json:"login_email" gorm:"column:login_email;size:255"`
	SessionCookies string     `json:"-" gorm:"column:session_cookies;type:text"`
	Active         bool       `json:"active" gorm:"column:active;default:true"`
	LastUsedAt     *time.Time `json:"last_used_at" gorm:"column:last_used_at"`
}

// TableName sets the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ActivityModel represents the database model for outreach activities
type ActivityModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at;index"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"column:deleted_at;index"`

	AutomationID uuid.UUID `json:"automation_id" gorm:"column:automation_id;type:char(36);not null;index"`
	UserID       uuid.UUID `json:"user_id" gorm:"column:user_id;type:char(36);not null;index"`
	Type         string    `json:"type" gorm:"column:type;not null;size:30"`
	Channel      string    `json:"channel" gorm:"column:channel;not null;size:20"`
	Status       string    `json:"status" gorm:"column:status;not null;size:20;index"`

	// Target snapshot
	TargetName       string `json:"target_name" gorm:"column:target_name;size:255"`
	TargetProfileURL string `json:"target_profile_url" gorm:"column:target_profile_url;size:500"`
	TargetCompany    string `json:"target_company" gorm:"column:target_company;size:255"`
	TargetJobTitle   string `json:"target_job_title" gorm:"column:target_job_title;size:255"`
	TargetExternalID string `json:"target_external_id" gorm:"column:target_external_id;size:255;index"`
	TargetEmail      string `json:"target_email" gorm:"column:target_email;size:255"`
	TargetPhone      string `json:"target_phone" gorm:"column:target_phone;size:50"`

	FollowUpAt *time.Time `json:"follow_up_at" gorm:"column:follow_up_at"`
}

// TableName sets the table name for GORM
func (ActivityModel) TableName() string {
	return "activities"
}

// NotificationModel represents the database model for user notifications
type NotificationModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"column:deleted_at;index"`

	UserID  uuid.UUID      `json:"user_id" gorm:"column:user_id;type:char(36);not null;index"`
	Type    string         `json:"type" gorm:"column:type;not null;size:30"`
	Title   string         `json:"title" gorm:"column:title;not null;size:255"`
	Message string         `json:"message" gorm:"column:message;not null;type:text"`
	Data    map[string]any `json:"data" gorm:"column:data;serializer:json"`
	Read    bool           `json:"read" gorm:"column:read;default:false"`
}

// TableName sets the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// TemplateModel represents the database model for message templates. It
// implements engine.Template so loaded automations can render directly.
type TemplateModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	AutomationID uuid.UUID `json:"automation_id" gorm:"column:automation_id;type:char(36);not null;index"`
	Position     int       `json:"position" gorm:"column:position;default:0"`
	Name         string    `json:"name" gorm:"column:name;size:255"`

	ChannelNetwork bool `json:"channel_network" gorm:"column:channel_network;default:false"`
	ChannelEmail   bool `json:"channel_email" gorm:"column:channel_email;default:false"`
	ChannelSMS     bool `json:"channel_sms" gorm:"column:channel_sms;default:false"`
	ChannelChat    bool `json:"channel_chat" gorm:"column:channel_chat;default:false"`

	// Per-language subject and body with {{variable}} substitution
	Subjects map[string]string `json:"subjects" gorm:"column:subjects;serializer:json"`
	Bodies   map[string]string `json:"bodies" gorm:"column:bodies;serializer:json"`
}

// TableName sets the table name for GORM
func (TemplateModel) TableName() string {
	return "templates"
}

// TemplateID returns the template's identity as a string
func (t *TemplateModel) TemplateID() string {
	return t.ID.String()
}

// Render substitutes variables into the template body for the language,
// falling back to English when the language has no body
func (t *TemplateModel) Render(language string, vars engine.Variables) string {
	return substitute(t.Bodies, language, vars)
}

// RenderSubject substitutes variables into the template subject
func (t *TemplateModel) RenderSubject(language string, vars engine.Variables) string {
	return substitute(t.Subjects, language, vars)
}

// SupportsChannel reports whether the template is enabled for the channel
func (t *TemplateModel) SupportsChannel(ch engine.Channel) bool {
	switch ch {
	case engine.ChannelNetwork:
		return t.ChannelNetwork
	case engine.ChannelEmail:
		return t.ChannelEmail
	case engine.ChannelSMS:
		return t.ChannelSMS
	case engine.ChannelChat:
		return t.ChannelChat
	default:
		return false
	}
}

func substitute(byLanguage map[string]string, language string, vars engine.Variables) string {
	text := byLanguage[language]
	if text == "" {
		text = byLanguage["en"]
	}
	if text == "" {
		return ""
	}

	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
