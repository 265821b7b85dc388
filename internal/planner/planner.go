// Package planner turns a classified intent into a concrete client action.
package planner

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/xaenox/aura/internal/classifier"
	"github.com/xaenox/aura/internal/completion"
	"github.com/xaenox/aura/internal/models"
)

// Plan is the planned action, its trace steps and the user-facing message.
type Plan struct {
	Action  models.Action
	Steps   []models.ExecutionStep
	Message string
}

type options struct {
	memoryContext string
}

// Option tunes a single Plan call.
type Option func(*options)

// WithMemoryContext passes a summary of the user's memory to conversational
// replies.
func WithMemoryContext(summary string) Option {
	return func(o *options) { o.memoryContext = summary }
}

const (
	traceValueLimit = 100
	unknownMessage  = "I'm not sure how to help with that. Could you please rephrase your request? I can help with opening web apps, messaging, emails, playing media, searching, or answering questions."
)

var (
	mediaVerbs   = regexp.MustCompile(`(?i)play|listen to|watch`)
	searchVerbs  = regexp.MustCompile(`(?i)search|look up|find|google`)
	summarizeCue = regexp.MustCompile(`(?is)summarize[:\s]+(.+)`)
	subjectLine  = regexp.MustCompile(`(?i)^subject:\s*`)
)

// Planner dispatches on intent. Only conversational intents and email drafting
// call the completion service.
type Planner struct {
	completion completion.Service
	logger     *zap.Logger
}

func New(svc completion.Service, logger *zap.Logger) *Planner {
	return &Planner{completion: svc, logger: logger}
}

// Plan builds the action for c. Step numbers start at startStep.
func (p *Planner) Plan(ctx context.Context, c models.ClassificationResult, message string, startStep int, opts ...Option) Plan {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch c.Intent {
	case models.IntentOpenWebApp:
		return p.planOpenWebApp(c, startStep)
	case models.IntentSendMessage:
		return p.planSendMessage(c, startStep)
	case models.IntentDraftEmail:
		return p.planDraftEmail(ctx, c, startStep)
	case models.IntentPlayMedia:
		return p.planPlayMedia(c, message, startStep)
	case models.IntentSearch:
		return p.planSearch(c, message, startStep)
	case models.IntentAskQuestion:
		return p.planAskQuestion(ctx, message, o.memoryContext, startStep)
	case models.IntentSummarize:
		return p.planSummarize(ctx, message, startStep)
	case models.IntentVisionAnalyze:
		return p.planVisionAnalyze(startStep)
	case models.IntentGreeting:
		return p.planGreeting(ctx, message, o.memoryContext, startStep)
	default:
		return p.planUnknown(startStep)
	}
}

func (p *Planner) planOpenWebApp(c models.ClassificationResult, step int) Plan {
	platform := strings.ToLower(strings.TrimSpace(c.Entity(models.EntityPlatform)))
	if platform == "" {
		platform = "google"
	}
	url, ok := classifier.PlatformURL(platform)
	if !ok {
		url = defaultSearchHome
	}

	return Plan{
		Action: models.Action{
			Type:        models.ActionOpenURL,
			URL:         url,
			Platform:    platform,
			Description: "Open " + platform,
		},
		Steps:   []models.ExecutionStep{completed(step, "Action planned", "Open "+platform)},
		Message: fmt.Sprintf("Opening %s for you.", platform),
	}
}

func (p *Planner) planSendMessage(c models.ClassificationResult, step int) Plan {
	platform := strings.ToLower(strings.TrimSpace(c.Entity(models.EntityPlatform)))
	if platform == "" {
		platform = "whatsapp"
	}
	recipient := c.Entity(models.EntityRecipient)
	content := c.Entity(models.EntityContent)

	url, label, platform := p.composeURL(platform, recipient, content)

	steps := []models.ExecutionStep{completed(step, "Action planned", label)}
	if content != "" {
		steps = append(steps, completed(step+1, "Draft message", content))
	}

	description := "Open " + platformTitle(platform)
	message := fmt.Sprintf("Ready to open %s.", platformTitle(platform))
	if recipient != "" {
		description = "Message " + recipient
		message = fmt.Sprintf("Ready to message %s.", recipient)
	}

	return Plan{
		Action: models.Action{
			Type:        models.ActionOpenURL,
			URL:         url,
			Platform:    platform,
			Content:     content,
			Description: description,
		},
		Steps:   steps,
		Message: message,
	}
}

// composeURL deep-links WhatsApp when the recipient is a plausible phone
// number or when there is only draft text, whatever platform was named.
// Otherwise a known platform opens its home page. The returned platform is
// the one the URL actually targets.
func (p *Planner) composeURL(platform, recipient, content string) (string, string, string) {
	const label = "Open WhatsApp Web"
	if recipient != "" {
		if phone := classifier.NormalizePhone(recipient); len(phone) >= 10 {
			return WhatsAppSendURL(phone, content), label, "whatsapp"
		}
	} else if content != "" {
		return WhatsAppSendURL("", content), label, "whatsapp"
	}

	if platform != "whatsapp" {
		if url, ok := classifier.PlatformURL(platform); ok {
			return url, "Open " + platform, platform
		}
	}
	if recipient != "" {
		return whatsappHome + "/", label, "whatsapp"
	}
	return whatsappHome, label, "whatsapp"
}

func (p *Planner) planDraftEmail(ctx context.Context, c models.ClassificationResult, step int) Plan {
	recipient := c.Entity(models.EntityRecipient)
	content := c.Entity(models.EntityContent)

	body := content
	subject := ""
	if content != "" && !strings.Contains(strings.ToLower(content), "subject:") {
		draft := p.completion.GenerateDraft(ctx, "email", recipient, content)
		subject, body = splitSubject(draft)
	}

	steps := []models.ExecutionStep{completed(step, "Action planned", "Open Gmail Compose")}
	next := step + 1
	if recipient != "" {
		steps = append(steps, completed(next, "Recipient", recipient))
		next++
	}
	if body != "" {
		steps = append(steps, completed(next, "Draft content", truncate(body, traceValueLimit)))
	}

	description := "Compose email"
	message := "Opening Gmail compose. Please review the draft before sending."
	if recipient != "" {
		description = "Email to " + recipient
		message = fmt.Sprintf("Opening Gmail compose for %s. Please review the draft before sending.", recipient)
	}

	return Plan{
		Action: models.Action{
			Type:        models.ActionOpenURL,
			URL:         GmailComposeURL(recipient, subject, body),
			Platform:    "gmail",
			Content:     body,
			Description: description,
		},
		Steps:   steps,
		Message: message,
	}
}

// splitSubject separates a leading "Subject:" line from the draft body.
func splitSubject(draft string) (string, string) {
	first, rest, _ := strings.Cut(draft, "\n")
	if subjectLine.MatchString(first) {
		return strings.TrimSpace(subjectLine.ReplaceAllString(first, "")), strings.TrimSpace(rest)
	}
	return "", draft
}

func (p *Planner) planPlayMedia(c models.ClassificationResult, message string, step int) Plan {
	platform := strings.ToLower(strings.TrimSpace(c.Entity(models.EntityPlatform)))
	if platform == "" {
		platform = "youtube"
	}
	query := firstNonEmpty(c.Entity(models.EntityQuery), c.Entity(models.EntityMedia))
	if query == "" {
		query = classifier.StripActionWords(strings.TrimSpace(mediaVerbs.ReplaceAllString(message, "")))
	}

	return Plan{
		Action: models.Action{
			Type:        models.ActionOpenURL,
			URL:         SearchURL(query, platform),
			Platform:    platform,
			Description: fmt.Sprintf("Search %q on %s", query, platform),
		},
		Steps: []models.ExecutionStep{
			completed(step, "Action planned", "Search "+platform),
			completed(step+1, "Search query", query),
		},
		Message: fmt.Sprintf("Searching for %q on %s.", query, platform),
	}
}

func (p *Planner) planSearch(c models.ClassificationResult, message string, step int) Plan {
	query := c.Entity(models.EntityQuery)
	if query == "" {
		query = classifier.StripActionWords(strings.TrimSpace(searchVerbs.ReplaceAllString(message, "")))
	}

	return Plan{
		Action: models.Action{
			Type:        models.ActionOpenURL,
			URL:         SearchURL(query, "google"),
			Platform:    "google",
			Description: fmt.Sprintf("Search for %q", query),
		},
		Steps: []models.ExecutionStep{
			completed(step, "Action planned", "Google Search"),
			completed(step+1, "Search query", query),
		},
		Message: fmt.Sprintf("Searching for %q on Google.", query),
	}
}

func (p *Planner) planAskQuestion(ctx context.Context, message, memoryContext string, step int) Plan {
	reply := p.completion.GenerateResponse(ctx, message, memoryContext)
	return Plan{
		Action: models.Action{
			Type:        models.ActionDisplay,
			Content:     reply,
			Description: "Answer question",
		},
		Steps: []models.ExecutionStep{
			completed(step, "Action planned", "Generate response"),
			completed(step+1, "Response generated", "See below"),
		},
		Message: reply,
	}
}

func (p *Planner) planSummarize(ctx context.Context, message string, step int) Plan {
	content := message
	if m := summarizeCue.FindStringSubmatch(message); m != nil {
		content = strings.TrimSpace(m[1])
	}
	summary := p.completion.Summarize(ctx, content)

	return Plan{
		Action: models.Action{
			Type:        models.ActionDisplay,
			Content:     summary,
			Description: "Summarize content",
		},
		Steps: []models.ExecutionStep{
			completed(step, "Action planned", "Summarize content"),
			completed(step+1, "Summary generated", "See below"),
		},
		Message: summary,
	}
}

// planVisionAnalyze is a placeholder; the image itself is analysed by the
// pipeline once the request may execute.
func (p *Planner) planVisionAnalyze(step int) Plan {
	return Plan{
		Action: models.Action{
			Type:        models.ActionDisplay,
			Description: "Analyze image",
		},
		Steps:   []models.ExecutionStep{completed(step, "Action planned", "Analyze uploaded image")},
		Message: "Analyzing the image...",
	}
}

func (p *Planner) planGreeting(ctx context.Context, message, memoryContext string, step int) Plan {
	reply := p.completion.GenerateResponse(ctx, message, memoryContext)
	return Plan{
		Action: models.Action{
			Type:        models.ActionDisplay,
			Content:     reply,
			Description: "Greeting response",
		},
		Steps:   []models.ExecutionStep{completed(step, "Intent detected", "Greeting")},
		Message: reply,
	}
}

func (p *Planner) planUnknown(step int) Plan {
	return Plan{
		Action: models.Action{
			Type:        models.ActionNone,
			Description: "Unknown action",
		},
		Steps: []models.ExecutionStep{{
			Step:   step,
			Label:  "Action planned",
			Value:  "Unable to determine action",
			Status: models.StepWarning,
		}},
		Message: unknownMessage,
	}
}

func completed(step int, label, value string) models.ExecutionStep {
	return models.ExecutionStep{Step: step, Label: label, Value: value, Status: models.StepCompleted}
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func platformTitle(platform string) string {
	if platform == "whatsapp" {
		return "WhatsApp Web"
	}
	return platform
}
