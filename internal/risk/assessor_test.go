package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xaenox/aura/internal/models"
)

func classified(intent models.Intent) models.ClassificationResult {
	return models.ClassificationResult{Intent: intent, Confidence: 0.9, Entities: map[string]string{}}
}

func TestAssessBlockedKeywordsShortCircuit(t *testing.T) {
	a := NewAssessor(DefaultTables())
	for _, intent := range models.Intents {
		got := a.Assess(classified(intent), "Search for my PASSWORD and delete it urgently")
		assert.Equal(t, models.RiskBlocked, got.Level, intent)
		assert.Equal(t, `Detected sensitive keyword: "password"`, got.Reason)
		assert.Equal(t, []string{blockedWarning}, got.Warnings)
		assert.Equal(t, []string{blockedSuggestion}, got.Suggestions)
	}
}

func TestAssessBaseRisk(t *testing.T) {
	a := NewAssessor(DefaultTables())

	tests := []struct {
		intent models.Intent
		want   models.RiskLevel
	}{
		{models.IntentOpenWebApp, models.RiskLow},
		{models.IntentSearch, models.RiskLow},
		{models.IntentGreeting, models.RiskLow},
		{models.IntentSendMessage, models.RiskMedium},
		{models.IntentDraftEmail, models.RiskMedium},
		{models.Intent("TELEPORT"), models.RiskMedium},
	}
	for _, tt := range tests {
		got := a.Assess(classified(tt.intent), "do the thing")
		assert.Equal(t, tt.want, got.Level, tt.intent)
	}
}

func TestAssessEscalation(t *testing.T) {
	a := NewAssessor(DefaultTables())

	got := a.Assess(classified(models.IntentSearch), "search how to cancel my gym")
	assert.Equal(t, models.RiskMedium, got.Level)
	assert.Equal(t, []string{`Detected potentially risky keyword: "cancel"`}, got.Warnings)

	got = a.Assess(classified(models.IntentSearch), "transfer money to the bank")
	assert.Equal(t, models.RiskHigh, got.Level)
	assert.Len(t, got.Warnings, 3)

	got = a.Assess(classified(models.IntentSendMessage), "send payment reminder")
	assert.Equal(t, models.RiskHigh, got.Level)
	assert.Equal(t, "This is a high-risk action (SEND_MESSAGE). Please review carefully before confirming.", got.Reason)
}

func TestAssessCommunicationAlwaysNeedsConfirmation(t *testing.T) {
	tables := DefaultTables()
	tables.BaseRisk[models.IntentSendMessage] = models.RiskLow
	a := NewAssessor(tables)

	for _, intent := range []models.Intent{models.IntentSendMessage, models.IntentDraftEmail} {
		got := a.Assess(classified(intent), "send hello to mom")
		assert.True(t, RequiresConfirmation(got.Level), intent)
		assert.Contains(t, got.Warnings[len(got.Warnings)-1], "NOT send it automatically")
	}
}

func TestAssessorOwnsItsTables(t *testing.T) {
	tables := DefaultTables()
	a := NewAssessor(tables)
	tables.BlockedKeywords[0] = "harmless"
	tables.BaseRisk[models.IntentSearch] = models.RiskHigh

	assert.Equal(t, models.RiskBlocked, a.Assess(classified(models.IntentSearch), "my password").Level)
	assert.Equal(t, models.RiskLow, a.Assess(classified(models.IntentSearch), "cats").Level)
}

func TestAdvisories(t *testing.T) {
	a := NewAssessor(DefaultTables())

	got := a.Assess(classified(models.IntentOpenWebApp), "open youtube")
	assert.Equal(t, models.RiskLow, got.Level)
	assert.Empty(t, got.Warnings)
	assert.Equal(t, []string{"A new tab will be opened with the requested web app."}, got.Suggestions)
	assert.Equal(t, "This is a low-risk action (OPEN_WEB_APP). It will be executed directly.", got.Reason)
}

func TestLevelPredicates(t *testing.T) {
	assert.False(t, RequiresConfirmation(models.RiskLow))
	assert.True(t, RequiresConfirmation(models.RiskMedium))
	assert.True(t, RequiresConfirmation(models.RiskHigh))
	assert.False(t, RequiresConfirmation(models.RiskBlocked))
	assert.True(t, IsBlocked(models.RiskBlocked))
	assert.False(t, IsBlocked(models.RiskHigh))
}
