package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/aura/internal/models"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "bare object", text: `{"a":1}`, want: `{"a":1}`, wantOK: true},
		{name: "surrounding prose", text: "Sure! Here you go:\n```json\n{\"a\":{\"b\":2}}\n```\nAnything else?", want: `{"a":{"b":2}}`, wantOK: true},
		{name: "braces inside strings", text: `{"content":"use } and { freely"} trailing {`, want: `{"content":"use } and { freely"}`, wantOK: true},
		{name: "escaped quote", text: `{"content":"say \"}\" now"}`, want: `{"content":"say \"}\" now"}`, wantOK: true},
		{name: "first object wins", text: `{"a":1} {"b":2}`, want: `{"a":1}`, wantOK: true},
		{name: "unbalanced prefix", text: `{ broken {"a":1}`, want: `{"a":1}`, wantOK: true},
		{name: "no object", text: "I cannot help with that.", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClassification(t *testing.T) {
	t.Run("complete payload", func(t *testing.T) {
		got, err := ParseClassification(`Result: {"intent":"send_message","confidence":0.92,"entities":{"platform":"whatsapp","recipient":9876543210,"content":"hello","extra":"dropped"}}`)
		require.NoError(t, err)
		assert.Equal(t, models.IntentSendMessage, got.Intent)
		assert.InDelta(t, 0.92, got.Confidence, 1e-9)
		assert.Equal(t, map[string]string{
			"platform":  "whatsapp",
			"recipient": "9876543210",
			"content":   "hello",
		}, got.Entities)
	})

	t.Run("missing fields default", func(t *testing.T) {
		got, err := ParseClassification(`{}`)
		require.NoError(t, err)
		assert.Equal(t, models.IntentUnknown, got.Intent)
		assert.Equal(t, 0.5, got.Confidence)
		assert.Empty(t, got.Entities)
	})

	t.Run("invalid fields default", func(t *testing.T) {
		got, err := ParseClassification(`{"intent":"LAUNCH_ROCKET","confidence":7,"entities":"none"}`)
		require.NoError(t, err)
		assert.Equal(t, models.IntentUnknown, got.Intent)
		assert.Equal(t, 0.5, got.Confidence)
		assert.NotNil(t, got.Entities)
		assert.Empty(t, got.Entities)
	})

	t.Run("string confidence", func(t *testing.T) {
		got, err := ParseClassification(`{"intent":"SEARCH","confidence":"0.8"}`)
		require.NoError(t, err)
		assert.Equal(t, models.IntentSearch, got.Intent)
		assert.InDelta(t, 0.8, got.Confidence, 1e-9)
	})

	t.Run("no json", func(t *testing.T) {
		got, err := ParseClassification("nothing here")
		assert.ErrorIs(t, err, ErrNoJSONObject)
		assert.Equal(t, models.Unclassified(), got)
	})

	t.Run("malformed json", func(t *testing.T) {
		got, err := ParseClassification(`{"intent": SEARCH}`)
		assert.Error(t, err)
		assert.Equal(t, models.IntentUnknown, got.Intent)
		assert.Zero(t, got.Confidence)
	})
}
