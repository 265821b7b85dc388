// Package safety enforces the hard limits every request must respect before
// any action is planned.
package safety

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/xaenox/aura/internal/models"
	"github.com/xaenox/aura/internal/risk"
)

const (
	// MaxMessageLength is counted in characters.
	MaxMessageLength = 10000
	MaxImageBytes    = 5 * 1024 * 1024
)

// CheckResult is the gate's verdict. Blocked implies !Passed. Not passed and
// not blocked is a recoverable condition the user can fix.
type CheckResult struct {
	Passed   bool     `json:"passed"`
	Blocked  bool     `json:"blocked"`
	Reason   string   `json:"reason"`
	Warnings []string `json:"warnings"`
}

// SoftFailed reports a recoverable failure, such as a missing image.
func (r CheckResult) SoftFailed() bool {
	return !r.Passed && !r.Blocked
}

// Gate runs the ordered safety checks; the first failing check wins.
type Gate struct {
	maxMessageLength int
	maxImageBytes    int
}

func NewGate() *Gate {
	return &Gate{maxMessageLength: MaxMessageLength, maxImageBytes: MaxImageBytes}
}

// Check inspects the request against the already computed risk assessment.
func (g *Gate) Check(req models.Request, intent models.Intent, assessment risk.Assessment) CheckResult {
	if assessment.Level == models.RiskBlocked {
		return CheckResult{
			Passed:   false,
			Blocked:  true,
			Reason:   assessment.Reason,
			Warnings: append([]string(nil), assessment.Warnings...),
		}
	}

	if utf8.RuneCountInString(req.Message) > g.maxMessageLength {
		return CheckResult{
			Blocked:  true,
			Reason:   "Message exceeds maximum allowed length.",
			Warnings: []string{"Please shorten your message and try again."},
		}
	}

	if intent == models.IntentVisionAnalyze && req.ImageBase64 == "" {
		return CheckResult{
			Reason:   "Vision analysis requested but no image provided.",
			Warnings: []string{"Please upload an image to analyze."},
		}
	}

	if req.ImageBase64 != "" && decodedImageSize(req.ImageBase64) > g.maxImageBytes {
		return CheckResult{
			Blocked:  true,
			Reason:   "Image exceeds maximum allowed size (5MB).",
			Warnings: []string{"Please upload a smaller image."},
		}
	}

	warnings := []string{}
	if intent.IsCommunication() && !req.Confirmed {
		warnings = append(warnings, "AURA will NOT automatically send messages. You must confirm and send manually.")
	}
	warnings = append(warnings, validateEntities(intent, req.Message)...)

	return CheckResult{
		Passed:   true,
		Reason:   "Safety check passed.",
		Warnings: warnings,
	}
}

func validateEntities(intent models.Intent, message string) []string {
	lower := strings.ToLower(message)
	switch intent {
	case models.IntentSendMessage:
		if !strings.Contains(lower, "to ") {
			return []string{"No recipient specified. AURA will open the messaging app for you to select a contact."}
		}
	case models.IntentDraftEmail:
		if !strings.Contains(lower, "to ") && !strings.Contains(lower, "@") {
			return []string{"No recipient specified. AURA will open a blank compose window."}
		}
	}
	return nil
}

// decodedImageSize measures the payload without holding the decoded bytes.
// Data URL headers are skipped; padding and line-wrapping whitespace do not
// count as data.
func decodedImageSize(imageBase64 string) int {
	payload := imageBase64
	if strings.HasPrefix(payload, "data:") {
		if _, body, ok := strings.Cut(payload, ","); ok {
			payload = body
		}
	}

	n := 0
	for i := 0; i < len(payload); i++ {
		switch payload[i] {
		case '=', ' ', '\t', '\r', '\n', '\f', '\v':
		default:
			n++
		}
	}
	return base64.RawStdEncoding.DecodedLen(n)
}

// CanAutoExecute reports whether an action at level may run without asking.
func CanAutoExecute(level models.RiskLevel, confirmed bool) bool {
	if level == models.RiskBlocked {
		return false
	}
	return level == models.RiskLow || confirmed
}

// RequiresConfirmation combines the risk level with the communication rule so
// that message-sending intents need approval even if the risk tables are wrong.
func RequiresConfirmation(intent models.Intent, level models.RiskLevel) bool {
	return risk.RequiresConfirmation(level) || intent.IsCommunication()
}

// Step renders the verdict as a trace entry.
func Step(result CheckResult, stepNumber int) models.ExecutionStep {
	step := models.ExecutionStep{Step: stepNumber, Label: "Safety check"}
	switch {
	case result.Blocked:
		step.Value = "BLOCKED - " + result.Reason
		step.Status = models.StepBlocked
	case !result.Passed:
		step.Value = result.Reason
		step.Status = models.StepWarning
	case len(result.Warnings) > 0:
		step.Value = "Confirmation required"
		step.Status = models.StepWarning
	default:
		step.Value = "Passed"
		step.Status = models.StepCompleted
	}
	return step
}
