package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xaenox/aura/internal/models"
)

func TestKeywordClassifier(t *testing.T) {
	tests := []struct {
		name           string
		message        string
		wantIntent     models.Intent
		wantConfidence float64
		wantEntities   map[string]string
	}{
		{
			name:           "open web app",
			message:        "open youtube",
			wantIntent:     models.IntentOpenWebApp,
			wantConfidence: 0.3,
			wantEntities:   map[string]string{"platform": "youtube"},
		},
		{
			name:           "whatsapp message with phone",
			message:        "send whatsapp message to 9876543210 saying hello",
			wantIntent:     models.IntentSendMessage,
			wantConfidence: 0.9,
			wantEntities: map[string]string{
				"platform":  "whatsapp",
				"recipient": "919876543210",
				"content":   "saying hello",
			},
		},
		{
			name:           "text without platform defaults to whatsapp",
			message:        "send a text to 98765 43210 saying see you soon",
			wantIntent:     models.IntentSendMessage,
			wantConfidence: 0.6,
			wantEntities: map[string]string{
				"platform":  "whatsapp",
				"recipient": "919876543210",
				"content":   "saying see you soon",
			},
		},
		{
			name:           "email with address",
			message:        "email bob@example.com about the quarterly budget",
			wantIntent:     models.IntentDraftEmail,
			wantConfidence: 0.6,
			wantEntities: map[string]string{
				"platform":  "email",
				"recipient": "bob@example.com",
				"content":   "the quarterly budget",
			},
		},
		{
			name:           "tie resolved by declaration order",
			message:        "look at this",
			wantIntent:     models.IntentVisionAnalyze,
			wantConfidence: 0.3,
			wantEntities:   map[string]string{},
		},
		{
			name:           "bare platform becomes open web app",
			message:        "twitter",
			wantIntent:     models.IntentOpenWebApp,
			wantConfidence: 0.3,
			wantEntities:   map[string]string{"platform": "twitter"},
		},
		{
			name:           "short platform needs a whole word",
			message:        "open x",
			wantIntent:     models.IntentOpenWebApp,
			wantConfidence: 0.3,
			wantEntities:   map[string]string{"platform": "x"},
		},
		{
			name:           "nothing matches",
			message:        "blorp",
			wantIntent:     models.IntentUnknown,
			wantConfidence: 0,
			wantEntities:   map[string]string{},
		},
	}

	c := NewKeywordClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.message)
			assert.Equal(t, tt.wantIntent, got.Intent)
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantEntities, got.Entities)
		})
	}
}

func TestKeywordClassifierIsDeterministic(t *testing.T) {
	c := NewKeywordClassifier()
	msg := "send whatsapp message to +91 98765-43210 saying running late"
	first := c.Classify(msg)
	second := c.Classify(msg)
	assert.Equal(t, first, second)
	assert.Equal(t, "919876543210", first.Entity(models.EntityRecipient))
}

func TestKeywordClassifierConfidenceIsCapped(t *testing.T) {
	got := NewKeywordClassifier().Classify("play music song video, I want to listen and watch")
	assert.Equal(t, models.IntentPlayMedia, got.Intent)
	assert.Equal(t, 0.9, got.Confidence)
}

func TestDetectPlatform(t *testing.T) {
	assert.Equal(t, "whatsapp", DetectPlatform("open whatsapp and youtube"))
	assert.Equal(t, "gmail", DetectPlatform("check gmail"))
	assert.Equal(t, "", DetectPlatform("send a text"))
	assert.Equal(t, "x", DetectPlatform("post on x please"))
}

func TestPlatformURL(t *testing.T) {
	url, ok := PlatformURL(" YouTube ")
	assert.True(t, ok)
	assert.Equal(t, "https://www.youtube.com", url)

	_, ok = PlatformURL("myspace")
	assert.False(t, ok)
}
