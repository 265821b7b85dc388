package models

import "strings"

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentOpenWebApp    Intent = "OPEN_WEB_APP"
	IntentSendMessage   Intent = "SEND_MESSAGE"
	IntentDraftEmail    Intent = "DRAFT_EMAIL"
	IntentSummarize     Intent = "SUMMARIZE"
	IntentPlayMedia     Intent = "PLAY_MEDIA"
	IntentSearch        Intent = "SEARCH"
	IntentAskQuestion   Intent = "ASK_QUESTION"
	IntentVisionAnalyze Intent = "VISION_ANALYZE"
	IntentGreeting      Intent = "GREETING"
	IntentUnknown       Intent = "UNKNOWN"
)

// Intents lists every intent in declaration order. Keyword scoring ties are
// broken by this order.
var Intents = []Intent{
	IntentOpenWebApp,
	IntentSendMessage,
	IntentDraftEmail,
	IntentSummarize,
	IntentPlayMedia,
	IntentSearch,
	IntentAskQuestion,
	IntentVisionAnalyze,
	IntentGreeting,
	IntentUnknown,
}

// ParseIntent maps free-form text onto the enumeration. Anything unrecognised
// is IntentUnknown.
func ParseIntent(s string) Intent {
	candidate := Intent(strings.ToUpper(strings.TrimSpace(s)))
	for _, intent := range Intents {
		if intent == candidate {
			return intent
		}
	}
	return IntentUnknown
}

// IsCommunication reports whether the intent sends content to somebody else.
func (i Intent) IsCommunication() bool {
	return i == IntentSendMessage || i == IntentDraftEmail
}

// Entity keys recognised in ClassificationResult.Entities.
const (
	EntityPlatform  = "platform"
	EntityRecipient = "recipient"
	EntityContent   = "content"
	EntityQuery     = "query"
	EntityMedia     = "media"
)

// EntityKeys lists the recognised entity keys.
var EntityKeys = []string{EntityPlatform, EntityRecipient, EntityContent, EntityQuery, EntityMedia}

// ClassificationResult is the structured reading of a user message.
type ClassificationResult struct {
	Intent     Intent            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Entities   map[string]string `json:"entities"`
}

// Unclassified is returned whenever classification fails.
func Unclassified() ClassificationResult {
	return ClassificationResult{Intent: IntentUnknown, Confidence: 0, Entities: map[string]string{}}
}

// Entity returns the named entity or "".
func (c ClassificationResult) Entity(key string) string {
	if c.Entities == nil {
		return ""
	}
	return c.Entities[key]
}

// RiskLevel is an ordered severity tag.
type RiskLevel string

const (
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
	RiskBlocked RiskLevel = "BLOCKED"
)

// Rank orders risk levels, LOW being 0.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskBlocked:
		return 3
	default:
		return -1
	}
}
