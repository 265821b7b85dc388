package pipeline

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/xaenox/aura/internal/models"
	"github.com/xaenox/aura/internal/planner"
	"github.com/xaenox/aura/internal/risk"
	"github.com/xaenox/aura/internal/safety"
	"github.com/xaenox/aura/internal/storage"
)

type outcome int

const (
	outcomeContinue outcome = iota
	outcomeBlocked
	outcomePendingConfirmation
	outcomeResponded
)

func (o outcome) String() string {
	switch o {
	case outcomeContinue:
		return "continue"
	case outcomeBlocked:
		return "blocked"
	case outcomePendingConfirmation:
		return "pending_confirmation"
	case outcomeResponded:
		return "responded"
	default:
		return "unknown"
	}
}

type stage struct {
	name string
	run  func(ctx context.Context, r *run) outcome
}

const descriptionLimit = 100

// run is the state of one request as it moves through the stages.
type run struct {
	req       models.Request
	requestID string
	logger    *zap.Logger

	nextStep int
	trace    []models.ExecutionStep

	classification       models.ClassificationResult
	assessment           risk.Assessment
	check                safety.CheckResult
	requiresConfirmation bool
	plan                 planner.Plan
	response             models.Response
}

func (r *run) step() int {
	n := r.nextStep
	r.nextStep++
	return n
}

func (r *run) respond(resp models.Response) {
	resp.Intent = r.classification.Intent
	resp.ExecutionTrace = r.trace
	r.response = resp
}

func (p *Pipeline) classify(ctx context.Context, r *run) outcome {
	r.classification = p.classifier.Classify(ctx, r.req.Message)
	r.trace = append(r.trace, models.ExecutionStep{
		Step:   r.step(),
		Label:  "Intent detected",
		Value:  string(r.classification.Intent),
		Status: models.StepCompleted,
	})
	return outcomeContinue
}

func (p *Pipeline) assessRisk(_ context.Context, r *run) outcome {
	r.assessment = p.assessor.Assess(r.classification, r.req.Message)
	r.trace = append(r.trace, models.ExecutionStep{
		Step:   r.step(),
		Label:  "Risk level",
		Value:  string(r.assessment.Level),
		Status: riskStatus(r.assessment.Level),
	})
	return outcomeContinue
}

func riskStatus(level models.RiskLevel) models.StepStatus {
	switch level {
	case models.RiskBlocked:
		return models.StepBlocked
	case models.RiskHigh:
		return models.StepWarning
	default:
		return models.StepCompleted
	}
}

func (p *Pipeline) checkSafety(_ context.Context, r *run) outcome {
	r.check = p.gate.Check(r.req, r.classification.Intent, r.assessment)
	r.trace = append(r.trace, safety.Step(r.check, r.step()))

	if !r.check.Blocked {
		return outcomeContinue
	}

	r.logger.Warn("Request blocked", zap.String("reason", r.check.Reason))
	r.respond(models.Response{
		Success:   false,
		Message:   r.check.Reason,
		RiskLevel: models.RiskBlocked,
		Error:     strings.Join(r.check.Warnings, " "),
	})
	return outcomeBlocked
}

// plan always runs, even when confirmation is pending, so the client can
// preview the action.
func (p *Pipeline) plan(ctx context.Context, r *run) outcome {
	r.requiresConfirmation = safety.RequiresConfirmation(r.classification.Intent, r.assessment.Level)

	var opts []planner.Option
	if !r.requiresConfirmation || r.req.Confirmed {
		if summary := p.memoryContext(ctx, r); summary != "" {
			opts = append(opts, planner.WithMemoryContext(summary))
		}
	}
	r.plan = p.planner.Plan(ctx, r.classification, r.req.Message, r.nextStep, opts...)
	return outcomeContinue
}

// memoryContext loads the user's memory digest for conversational replies.
// Failures are logged and yield no context.
func (p *Pipeline) memoryContext(ctx context.Context, r *run) string {
	if p.store == nil || r.req.UserID == "" {
		return ""
	}
	switch r.classification.Intent {
	case models.IntentAskQuestion, models.IntentGreeting:
	default:
		return ""
	}

	m, err := p.store.GetOrCreate(ctx, r.req.UserID)
	if err != nil {
		r.logger.Warn("Failed to load memory context", zap.Error(err))
		return ""
	}
	return storage.SummarizeForContext(m)
}

func (p *Pipeline) confirm(_ context.Context, r *run) outcome {
	if !r.requiresConfirmation || r.req.Confirmed {
		return outcomeContinue
	}

	for _, s := range r.plan.Steps {
		s.Status = models.StepPending
		r.trace = append(r.trace, s)
	}
	action := r.plan.Action
	r.respond(models.Response{
		Success:              true,
		Message:              r.assessment.Reason,
		RiskLevel:            r.assessment.Level,
		Action:               &action,
		RequiresConfirmation: true,
	})
	return outcomePendingConfirmation
}

func (p *Pipeline) execute(ctx context.Context, r *run) outcome {
	var (
		action  models.Action
		message string
	)

	switch {
	case r.check.SoftFailed():
		// recoverable input problem: answer with guidance instead of a result
		message = strings.TrimSpace(r.check.Reason + " " + strings.Join(r.check.Warnings, " "))
		action = r.plan.Action
		action.Content = message
		r.trace = append(r.trace, r.plan.Steps...)

	case r.classification.Intent == models.IntentVisionAnalyze && r.req.ImageBase64 != "":
		message = p.completion.AnalyzeImage(ctx, r.req.ImageBase64, r.req.Message)
		r.trace = append(r.trace,
			models.ExecutionStep{Step: r.step(), Label: "Action planned", Value: "Analyze image with vision model", Status: models.StepCompleted},
			models.ExecutionStep{Step: r.step(), Label: "Analysis complete", Value: "See response", Status: models.StepCompleted},
		)
		action = models.Action{Type: models.ActionDisplay, Content: message, Description: "Image analysis"}

	default:
		message = r.plan.Message
		action = r.plan.Action
		r.trace = append(r.trace, r.plan.Steps...)
	}

	r.respond(models.Response{
		Success:   true,
		Message:   message,
		RiskLevel: r.assessment.Level,
		Action:    &action,
	})
	return outcomeContinue
}

// remember records the executed action. It never changes the response.
func (p *Pipeline) remember(ctx context.Context, r *run) outcome {
	if p.store == nil || r.req.UserID == "" {
		return outcomeResponded
	}

	err := p.store.RecordAction(
		context.WithoutCancel(ctx),
		r.req.UserID,
		r.classification.Intent,
		truncate(r.req.Message, descriptionLimit),
		r.classification.Entity(models.EntityPlatform),
	)
	if err != nil {
		r.logger.Warn("Failed to record action", zap.Error(err))
	}
	return outcomeResponded
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
