package engine_store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Store implements engine.StoreInterface on top of a MySQL database
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store from a MySQL DSN and migrates the schema
func NewStore(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewStoreFromDB(db)
}

// NewStoreFromDB creates a new store from an existing database handle
func NewStoreFromDB(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(
		&AutomationModel{},
		&AccountModel{},
		&ActivityModel{},
		&NotificationModel{},
		&TemplateModel{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// ListActiveAutomations returns all automations with status=active, with
// their templates preloaded in position order
func (s *Store) ListActiveAutomations(ctx context.Context) ([]*engine.Automation, error) {
	var models []AutomationModel
	err := s.db.WithContext(ctx).
		Preload("Templates", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("status = ?", string(engine.AutomationActive)).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active automations: %w", err)
	}

	automations := make([]*engine.Automation, 0, len(models))
	for i := range models {
		automations = append(automations, automationToDomain(&models[i]))
	}
	return automations, nil
}

// SaveAutomation persists status and counter changes made by the engine
func (s *Store) SaveAutomation(ctx context.Context, automation *engine.Automation) error {
	updates := map[string]any{
		"status":         string(automation.Status),
		"requests_sent":  automation.Stats.Requests,
		"messages_sent":  automation.Stats.Messages,
		"accepted_count": automation.Stats.Accepted,
		"response_count": automation.Stats.Responses,
	}

	result := s.db.WithContext(ctx).
		Model(&AutomationModel{}).
		Where("id = ?", automation.ID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to save automation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("automation '%s' not found", automation.ID)
	}
	return nil
}

// GetAccount loads a source account by ID
func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*engine.Account, error) {
	var model AccountModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("account '%s' not found", id)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return accountToDomain(&model), nil
}

// TouchAccount updates the account's last-used timestamp
func (s *Store) TouchAccount(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&AccountModel{}).
		Where("id = ?", id).
		Update("last_used_at", usedAt).Error
	if err != nil {
		return fmt.Errorf("failed to touch account: %w", err)
	}
	return nil
}

// CountConnectionRequestsSince counts network connection requests with status
// in {sent, pending} created at or after the given time
func (s *Store) CountConnectionRequestsSince(ctx context.Context, automationID uuid.UUID, since time.Time) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&ActivityModel{}).
		Where("automation_id = ?", automationID).
		Where("type = ?", string(engine.TypeConnectionRequest)).
		Where("channel = ?", string(engine.ChannelNetwork)).
		Where("status IN ?", []string{string(engine.ActivitySent), string(engine.ActivityPending)}).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count connection requests: %w", err)
	}
	return int(count), nil
}

// HasActivityForTarget reports whether a non-failed connection request
// already exists for the given target external identifier
func (s *Store) HasActivityForTarget(ctx context.Context, automationID uuid.UUID, externalID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&ActivityModel{}).
		Where("automation_id = ?", automationID).
		Where("type = ?", string(engine.TypeConnectionRequest)).
		Where("target_external_id = ?", externalID).
		Where("status <> ?", string(engine.ActivityFailed)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check for existing activity: %w", err)
	}
	return count > 0, nil
}

// CreateActivity appends a new activity to the ledger
func (s *Store) CreateActivity(ctx context.Context, activity *engine.Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}

	model := activityFromDomain(activity)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}

	activity.CreatedAt = model.CreatedAt
	return nil
}

// UpdateActivity persists a status transition or target enrichment
func (s *Store) UpdateActivity(ctx context.Context, activity *engine.Activity) error {
	updates := map[string]any{
		"status":             string(activity.Status),
		"target_name":        activity.Target.Name,
		"target_profile_url": activity.Target.ProfileURL,
		"target_company":     activity.Target.Company,
		"target_job_title":   activity.Target.JobTitle,
		"target_external_id": activity.Target.ExternalID,
		"target_email":       activity.Target.Email,
		"target_phone":       activity.Target.Phone,
		"follow_up_at":       activity.FollowUpAt,
	}

	result := s.db.WithContext(ctx).
		Model(&ActivityModel{}).
		Where("id = ?", activity.ID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update activity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("activity '%s' not found", activity.ID)
	}
	return nil
}

// ListSentConnectionRequests returns the automation's connection requests
// still in status=sent, oldest first
func (s *Store) ListSentConnectionRequests(ctx context.Context, automationID uuid.UUID) ([]*engine.Activity, error) {
	var models []ActivityModel
	err := s.db.WithContext(ctx).
		Where("automation_id = ?", automationID).
		Where("type = ?", string(engine.TypeConnectionRequest)).
		Where("status = ?", string(engine.ActivitySent)).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sent connection requests: %w", err)
	}

	activities := make([]*engine.Activity, 0, len(models))
	for i := range models {
		activities = append(activities, activityToDomain(&models[i]))
	}
	return activities, nil
}

// CreateNotification records a side-channel event for the owning user
func (s *Store) CreateNotification(ctx context.Context, notification *engine.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}

	model := &NotificationModel{
		ID:      notification.ID,
		UserID:  notification.UserID,
		Type:    notification.Type,
		Title:   notification.Title,
		Message: notification.Message,
		Data:    notification.Data,
		Read:    notification.Read,
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

/** Domain conversions */

func automationToDomain(model *AutomationModel) *engine.Automation {
	templates := make([]engine.Template, 0, len(model.Templates))
	for i := range model.Templates {
		templates = append(templates, &model.Templates[i])
	}

	return &engine.Automation{
		ID:     model.ID,
		Name:   model.Name,
		Status: engine.AutomationStatus(model.Status),
		Criteria: engine.SearchCriteria{
			Keywords:         model.Keywords,
			Location:         model.Location,
			Industry:         model.Industry,
			CompanySize:      model.CompanySize,
			JobTitles:        model.JobTitles,
			ConnectionDegree: model.ConnectionDegree,
		},
		Channels: engine.ChannelSet{
			engine.ChannelNetwork: model.ChannelNetwork,
			engine.ChannelEmail:   model.ChannelEmail,
			engine.ChannelSMS:     model.ChannelSMS,
			engine.ChannelChat:    model.ChannelChat,
		},
		Limits: engine.Limits{
			Daily: model.DailyLimit,
			Total: model.TotalLimit,
		},
		Stats: engine.Stats{
			Requests:  model.RequestsSent,
			Messages:  model.MessagesSent,
			Accepted:  model.AcceptedCount,
			Responses: model.ResponseCount,
		},
		AccountID: model.AccountID,
		UserID:    model.UserID,
		Templates: templates,
	}
}

func accountToDomain(model *AccountModel) *engine.Account {
	return &engine.Account{
		ID:             model.ID,
		Label:          model.Label,
		LoginEmail:     model.LoginEmail,
		SessionCookies: model.SessionCookies,
		Active:         model.Active,
		LastUsedAt:     model.LastUsedAt,
	}
}

func activityToDomain(model *ActivityModel) *engine.Activity {
	return &engine.Activity{
		ID:           model.ID,
		AutomationID: model.AutomationID,
		UserID:       model.UserID,
		Type:         engine.ActivityType(model.Type),
		Channel:      engine.Channel(model.Channel),
		Status:       engine.ActivityStatus(model.Status),
		Target: engine.Target{
			Name:       model.TargetName,
			ProfileURL: model.TargetProfileURL,
			Company:    model.TargetCompany,
			JobTitle:   model.TargetJobTitle,
			ExternalID: model.TargetExternalID,
			Email:      model.TargetEmail,
			Phone:      model.TargetPhone,
		},
		FollowUpAt: model.FollowUpAt,
		CreatedAt:  model.CreatedAt,
	}
}

func activityFromDomain(activity *engine.Activity) *ActivityModel {
	return &ActivityModel{
		ID:               activity.ID,
		CreatedAt:        activity.CreatedAt,
		AutomationID:     activity.AutomationID,
		UserID:           activity.UserID,
		Type:             string(activity.Type),
		Channel:          string(activity.Channel),
		Status:           string(activity.Status),
		TargetName:       activity.Target.Name,
		TargetProfileURL: activity.Target.ProfileURL,
		TargetCompany:    activity.Target.Company,
		TargetJobTitle:   activity.Target.JobTitle,
		TargetExternalID: activity.Target.ExternalID,
		TargetEmail:      activity.Target.Email,
		TargetPhone:      activity.Target.Phone,
		FollowUpAt:       activity.FollowUpAt,
	}
}
