// Package pipeline runs one chat message through classification, risk
// assessment, the safety gate and action planning, and assembles the response
// together with its execution trace.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/aura/internal/completion"
	"github.com/xaenox/aura/internal/models"
	"github.com/xaenox/aura/internal/planner"
	"github.com/xaenox/aura/internal/risk"
	"github.com/xaenox/aura/internal/safety"
	"github.com/xaenox/aura/internal/storage"
)

// InternalErrorMessage is the only text a client sees for unexpected failures.
const InternalErrorMessage = "An error occurred while processing your request."

var (
	ErrMessageRequired = errors.New("message is required")
	ErrInternal        = errors.New("internal pipeline failure")
)

// Classifier resolves the intent of a message. It never fails.
type Classifier interface {
	Classify(ctx context.Context, message string) models.ClassificationResult
}

// Components are the collaborators a Pipeline sequences. Store may be nil, in
// which case nothing is remembered.
type Components struct {
	Classifier Classifier
	Assessor   *risk.Assessor
	Gate       *safety.Gate
	Planner    *planner.Planner
	Completion completion.Service
	Store      storage.Storage
}

type Pipeline struct {
	classifier Classifier
	assessor   *risk.Assessor
	gate       *safety.Gate
	planner    *planner.Planner
	completion completion.Service
	store      storage.Storage
	logger     *zap.Logger
	stages     []stage
}

func New(c Components, logger *zap.Logger) *Pipeline {
	p := &Pipeline{
		classifier: c.Classifier,
		assessor:   c.Assessor,
		gate:       c.Gate,
		planner:    c.Planner,
		completion: c.Completion,
		store:      c.Store,
		logger:     logger,
	}
	p.stages = []stage{
		{name: "classify", run: p.classify},
		{name: "assess_risk", run: p.assessRisk},
		{name: "safety_check", run: p.checkSafety},
		{name: "plan", run: p.plan},
		{name: "confirm", run: p.confirm},
		{name: "execute", run: p.execute},
		{name: "remember", run: p.remember},
	}
	return p
}

// Process handles one request. Blocked and pending-confirmation outcomes are
// regular responses; an error is returned only for a missing message
// (ErrMessageRequired) or an unexpected internal failure (ErrInternal), in
// which case the response carries InternalErrorMessage.
func (p *Pipeline) Process(ctx context.Context, req models.Request) (resp models.Response, err error) {
	if req.Message == "" {
		return models.Response{Success: false, Error: "Message is required"}, ErrMessageRequired
	}

	r := &run{
		req:       req,
		requestID: uuid.NewString(),
		nextStep:  1,
		trace:     []models.ExecutionStep{},
	}
	r.logger = p.logger.With(zap.String("request_id", r.requestID))
	if req.UserID != "" {
		r.logger = r.logger.With(zap.String("user_id", req.UserID))
	}

	current := "received"
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Pipeline panicked",
				zap.String("stage", current),
				zap.String("panic", fmt.Sprint(rec)),
			)
			resp = models.Response{
				Success:        false,
				Message:        InternalErrorMessage,
				ExecutionTrace: []models.ExecutionStep{},
				Error:          InternalErrorMessage,
			}
			err = ErrInternal
		}
	}()

	result := outcomeContinue
	for _, s := range p.stages {
		current = s.name
		if result = s.run(ctx, r); result != outcomeContinue {
			break
		}
	}

	r.logger.Info("Request processed",
		zap.Stringer("outcome", result),
		zap.String("intent", string(r.classification.Intent)),
		zap.String("risk_level", string(r.assessment.Level)),
		zap.Int("steps", len(r.response.ExecutionTrace)),
	)
	return r.response, nil
}
