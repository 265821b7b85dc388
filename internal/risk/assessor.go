// Package risk scores the action implied by a classified message.
package risk

import (
	"fmt"
	"strings"

	"github.com/xaenox/aura/internal/models"
)

// Assessment is the outcome of one risk pass.
type Assessment struct {
	Level       models.RiskLevel `json:"level"`
	Reason      string           `json:"reason"`
	Warnings    []string         `json:"warnings"`
	Suggestions []string         `json:"suggestions"`
}

// Tables are the read-only keyword lists and base risks an Assessor works from.
type Tables struct {
	BaseRisk        map[models.Intent]models.RiskLevel
	HighRiskWords   []string
	BlockedKeywords []string
}

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() Tables {
	return Tables{
		BaseRisk: map[models.Intent]models.RiskLevel{
			models.IntentOpenWebApp:    models.RiskLow,
			models.IntentSearch:        models.RiskLow,
			models.IntentAskQuestion:   models.RiskLow,
			models.IntentPlayMedia:     models.RiskLow,
			models.IntentSummarize:     models.RiskLow,
			models.IntentSendMessage:   models.RiskMedium,
			models.IntentDraftEmail:    models.RiskMedium,
			models.IntentVisionAnalyze: models.RiskLow,
			models.IntentGreeting:      models.RiskLow,
			models.IntentUnknown:       models.RiskLow,
		},
		HighRiskWords: []string{
			"delete", "remove", "cancel", "unsubscribe", "terminate",
			"payment", "transfer", "money", "bank", "credit card",
			"urgent", "immediately", "right now",
		},
		BlockedKeywords: []string{
			"password", "credential", "login", "signin", "sign in",
			"private key", "secret", "api key", "token", "access key",
			"ssn", "social security", "credit card number", "cvv",
			"hack", "crack", "bypass", "exploit",
		},
	}
}

const (
	blockedWarning    = "This request involves sensitive information that AURA cannot handle for security reasons."
	blockedSuggestion = "Please handle sensitive information directly through official channels."
)

// Assessor is a pure function of its tables; it does no I/O.
type Assessor struct {
	tables Tables
}

func NewAssessor(tables Tables) *Assessor {
	// private copy so callers cannot mutate the tables afterwards
	own := Tables{
		BaseRisk:        make(map[models.Intent]models.RiskLevel, len(tables.BaseRisk)),
		HighRiskWords:   append([]string(nil), tables.HighRiskWords...),
		BlockedKeywords: append([]string(nil), tables.BlockedKeywords...),
	}
	for k, v := range tables.BaseRisk {
		own.BaseRisk[k] = v
	}
	return &Assessor{tables: own}
}

// Assess scores the message. Blocked keywords short-circuit; every high-risk
// keyword raises the level by one tier, capped at HIGH.
func (a *Assessor) Assess(classification models.ClassificationResult, message string) Assessment {
	lower := strings.ToLower(message)

	for _, kw := range a.tables.BlockedKeywords {
		if strings.Contains(lower, kw) {
			return Assessment{
				Level:       models.RiskBlocked,
				Reason:      fmt.Sprintf("Detected sensitive keyword: %q", kw),
				Warnings:    []string{blockedWarning},
				Suggestions: []string{blockedSuggestion},
			}
		}
	}

	intent := classification.Intent
	level, ok := a.tables.BaseRisk[intent]
	if !ok {
		level = models.RiskMedium
	}
	// communication is never auto-executed, whatever the table says
	if intent.IsCommunication() && level.Rank() < models.RiskMedium.Rank() {
		level = models.RiskMedium
	}

	warnings := []string{}
	suggestions := []string{}

	for _, kw := range a.tables.HighRiskWords {
		if strings.Contains(lower, kw) {
			level = escalate(level)
			warnings = append(warnings, fmt.Sprintf("Detected potentially risky keyword: %q", kw))
		}
	}

	switch intent {
	case models.IntentSendMessage:
		warnings = append(warnings, "AURA will prepare the message but will NOT send it automatically.")
		suggestions = append(suggestions, "You will need to review and send the message yourself.")
	case models.IntentDraftEmail:
		warnings = append(warnings, "AURA will open Gmail with a draft but will NOT send it automatically.")
		suggestions = append(suggestions, "Please review the content before sending.")
	case models.IntentOpenWebApp:
		suggestions = append(suggestions, "A new tab will be opened with the requested web app.")
	case models.IntentPlayMedia:
		suggestions = append(suggestions, "Media will be searched and opened in a new tab.")
	}

	return Assessment{
		Level:       level,
		Reason:      reason(intent, level),
		Warnings:    warnings,
		Suggestions: suggestions,
	}
}

func escalate(level models.RiskLevel) models.RiskLevel {
	switch level {
	case models.RiskLow:
		return models.RiskMedium
	case models.RiskMedium:
		return models.RiskHigh
	default:
		return level
	}
}

func reason(intent models.Intent, level models.RiskLevel) string {
	switch level {
	case models.RiskLow:
		return fmt.Sprintf("This is a low-risk action (%s). It will be executed directly.", intent)
	case models.RiskMedium:
		return fmt.Sprintf("This action (%s) requires your confirmation before proceeding.", intent)
	case models.RiskHigh:
		return fmt.Sprintf("This is a high-risk action (%s). Please review carefully before confirming.", intent)
	case models.RiskBlocked:
		return "This action is blocked for security reasons."
	default:
		return "Risk level unknown."
	}
}

// RequiresConfirmation reports whether level needs explicit user approval.
func RequiresConfirmation(level models.RiskLevel) bool {
	return level == models.RiskMedium || level == models.RiskHigh
}

func IsBlocked(level models.RiskLevel) bool {
	return level == models.RiskBlocked
}
