package classifier

import (
	"math"
	"regexp"
	"strings"

	"github.com/xaenox/aura/internal/models"
)

type intentKeywords struct {
	intent   models.Intent
	keywords []string
}

// intentTable is scored in declaration order; the first best score wins ties.
var intentTable = []intentKeywords{
	{models.IntentOpenWebApp, []string{"open", "launch", "start", "go to", "navigate", "show me"}},
	{models.IntentSendMessage, []string{"send", "message", "text", "tell", "whatsapp"}},
	{models.IntentDraftEmail, []string{"email", "mail", "compose", "draft", "write to"}},
	{models.IntentSummarize, []string{"summarize", "summary", "brief", "tldr", "shorten"}},
	{models.IntentPlayMedia, []string{"play", "listen", "watch", "music", "song", "video"}},
	{models.IntentSearch, []string{"search", "find", "look up", "google"}},
	{models.IntentAskQuestion, []string{"what", "who", "where", "when", "why", "how", "can you", "tell me"}},
	{models.IntentVisionAnalyze, []string{"look at", "see this", "analyze", "image", "picture", "photo", "what is this"}},
	{models.IntentGreeting, []string{"hi", "hello", "hey", "good morning", "good afternoon", "how are you", "sup"}},
	{models.IntentUnknown, nil},
}

var (
	emailPattern   = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern   = regexp.MustCompile(`(?:\+?\d{1,3}[\s-]?)?\(?\d{2,5}\)?[\s-]?\d{3,5}[\s-]?\d{3,5}`)
	phoneNoise     = regexp.MustCompile(`[\s\-()+]`)
	contentPattern = regexp.MustCompile(`(?i)(?:saying|message|text|that|about|subject|body)\s+(.+)$`)
	recipientLead  = regexp.MustCompile(`^[:\s\-]+`)
)

const (
	scorePerKeyword  = 0.3
	maxKeywordScore  = 0.9
	minPhoneDigits   = 10
	defaultMessenger = "whatsapp"
)

// KeywordClassifier is the deterministic fallback. It holds no state, so
// classifying the same message twice gives the same result.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify scores every intent by keyword hits and extracts entities with
// regular expressions.
func (c *KeywordClassifier) Classify(message string) models.ClassificationResult {
	lower := strings.ToLower(message)
	entities := map[string]string{}

	if platform := DetectPlatform(lower); platform != "" {
		entities[models.EntityPlatform] = platform
	}

	bestIntent := models.IntentUnknown
	bestScore := 0
	for _, entry := range intentTable {
		score := 0
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestIntent = entry.intent
		}
	}

	if entities[models.EntityPlatform] == "" &&
		(bestIntent == models.IntentSendMessage || strings.Contains(lower, "message")) {
		entities[models.EntityPlatform] = defaultMessenger
		bestIntent = models.IntentSendMessage
		bestScore = max(bestScore, 1)
	}

	if bestIntent.IsCommunication() || mentionsAny(lower, "message", "whatsapp", "email", "mail") {
		extractCommunication(message, lower, entities)
	}

	if entities[models.EntityPlatform] != "" && bestIntent == models.IntentUnknown {
		bestIntent = models.IntentOpenWebApp
		bestScore = 1
	}

	return models.ClassificationResult{
		Intent:     bestIntent,
		Confidence: math.Min(float64(bestScore)*scorePerKeyword, maxKeywordScore),
		Entities:   entities,
	}
}

// extractCommunication fills recipient and content for messaging intents.
func extractCommunication(message, lower string, entities map[string]string) {
	var rawRecipient string

	if email := emailPattern.FindString(lower); email != "" {
		entities[models.EntityRecipient] = email
		rawRecipient = email
	}

	if entities[models.EntityRecipient] == "" || strings.Contains(lower, "whatsapp") {
		for _, candidate := range phonePattern.FindAllString(lower, -1) {
			digits := phoneNoise.ReplaceAllString(candidate, "")
			if len(digits) >= minPhoneDigits {
				entities[models.EntityRecipient] = NormalizePhone(digits)
				rawRecipient = strings.TrimSpace(candidate)
				break
			}
		}
	}

	m := contentPattern.FindStringSubmatch(message)
	if m == nil {
		return
	}
	content := strings.TrimSpace(m[1])
	if rawRecipient != "" {
		content = stripRecipient(content, rawRecipient, entities[models.EntityRecipient])
	}
	if content != "" {
		entities[models.EntityContent] = content
	}
}

// stripRecipient removes a leading "to <recipient>" from captured content.
func stripRecipient(content string, recipients ...string) string {
	for _, r := range recipients {
		if r == "" {
			continue
		}
		rest := content
		if hasPrefixFold(rest, "to ") {
			rest = strings.TrimLeft(rest[3:], " ")
		}
		if hasPrefixFold(rest, r) {
			return strings.TrimSpace(recipientLead.ReplaceAllString(rest[len(r):], ""))
		}
	}
	return content
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func mentionsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
