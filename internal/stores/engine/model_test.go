package engine_store

import (
	"testing"

	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTemplateModelRender(t *testing.T) {
	template := &TemplateModel{
		ID: uuid.New(),
		Subjects: map[string]string{
			"en": "Hi {{firstName}}",
		},
		Bodies: map[string]string{
			"en": "Thanks for connecting, {{firstName}}! Great to meet you, {{fullName}}.",
			"de": "Danke für die Vernetzung, {{firstName}}!",
		},
	}

	vars := engine.Variables{"firstName": "Jane", "fullName": "Jane Doe"}

	t.Run("renders requested language", func(t *testing.T) {
		assert.Equal(t, "Danke für die Vernetzung, Jane!", template.Render("de", vars))
	})

	t.Run("falls back to english", func(t *testing.T) {
		assert.Equal(t, "Thanks for connecting, Jane! Great to meet you, Jane Doe.", template.Render("fr", vars))
	})

	t.Run("renders subject", func(t *testing.T) {
		assert.Equal(t, "Hi Jane", template.RenderSubject("en", vars))
	})

	t.Run("missing body renders empty", func(t *testing.T) {
		empty := &TemplateModel{ID: uuid.New()}
		assert.Empty(t, empty.Render("en", vars))
	})

	t.Run("unknown variables are left in place", func(t *testing.T) {
		assert.Equal(t, "Thanks for connecting, {{firstName}}! Great to meet you, {{fullName}}.",
			template.Render("en", engine.Variables{}))
	})
}

func TestTemplateModelSupportsChannel(t *testing.T) {
	template := &TemplateModel{
		ChannelNetwork: true,
		ChannelEmail:   true,
	}

	assert.True(t, template.SupportsChannel(engine.ChannelNetwork))
	assert.True(t, template.SupportsChannel(engine.ChannelEmail))
	assert.False(t, template.SupportsChannel(engine.ChannelSMS))
	assert.False(t, template.SupportsChannel(engine.ChannelChat))
	assert.False(t, template.SupportsChannel(engine.Channel("carrier-pigeon")))
}

func TestAutomationToDomain(t *testing.T) {
	accountID := uuid.New()
	model := &AutomationModel{
		ID:             uuid.New(),
		Name:           "SaaS founders",
		Status:         "active",
		Keywords:       []string{"saas", "founder"},
		JobTitles:      []string{"CEO"},
		Location:       "Berlin",
		ChannelNetwork: true,
		ChannelEmail:   true,
		DailyLimit:     25,
		TotalLimit:     500,
		RequestsSent:   12,
		AcceptedCount:  3,
		AccountID:      &accountID,
		UserID:         uuid.New(),
		Templates: []TemplateModel{
			{ID: uuid.New(), Position: 0},
			{ID: uuid.New(), Position: 1},
		},
	}

	automation := automationToDomain(model)

	assert.Equal(t, model.ID, automation.ID)
	assert.Equal(t, engine.AutomationActive, automation.Status)
	assert.Equal(t, []string{"saas", "founder"}, automation.Criteria.Keywords)
	assert.True(t, automation.Channels.Enabled(engine.ChannelNetwork))
	assert.True(t, automation.Channels.Enabled(engine.ChannelEmail))
	assert.False(t, automation.Channels.Enabled(engine.ChannelSMS))
	assert.Equal(t, 25, automation.Limits.Daily)
	assert.Equal(t, 500, automation.Limits.Total)
	assert.Equal(t, 12, automation.Stats.Requests)
	assert.Equal(t, 3, automation.Stats.Accepted)
	assert.Equal(t, &accountID, automation.AccountID)
	assert.Len(t, automation.Templates, 2)
}

func TestActivityConversionRoundTrip(t *testing.T) {
	activity := &engine.Activity{
		ID:           uuid.New(),
		AutomationID: uuid.New(),
		UserID:       uuid.New(),
		Type:         engine.TypeConnectionRequest,
		Channel:      engine.ChannelNetwork,
		Status:       engine.ActivitySent,
		Target: engine.Target{
			Name:       "Jane Doe",
			ProfileURL: "https://www.linkedin.com/in/jane",
			Company:    "Acme",
			JobTitle:   "CTO",
			ExternalID: "jane",
			Email:      "jane@example.com",
			Phone:      "+15550100",
		},
	}

	restored := activityToDomain(activityFromDomain(activity))
	assert.Equal(t, activity.ID, restored.ID)
	assert.Equal(t, activity.Type, restored.Type)
	assert.Equal(t, activity.Status, restored.Status)
	assert.Equal(t, activity.Target, restored.Target)
	assert.Nil(t, restored.FollowUpAt)
}
