package classifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/xaenox/aura/internal/completion"
	"github.com/xaenox/aura/internal/models"
)

// DefaultMinConfidence is the AI confidence below which the keyword fallback
// is consulted.
const DefaultMinConfidence = 0.5

// Classifier turns a message into (intent, confidence, entities). It asks the
// completion service first and falls back to keyword scoring when the model
// is unsure.
type Classifier struct {
	completion    completion.Service
	fallback      *KeywordClassifier
	minConfidence float64
	logger        *zap.Logger
}

// New builds a Classifier. A negative minConfidence selects
// DefaultMinConfidence; zero turns the keyword fallback off.
func New(svc completion.Service, minConfidence float64, logger *zap.Logger) *Classifier {
	if minConfidence < 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Classifier{
		completion:    svc,
		fallback:      NewKeywordClassifier(),
		minConfidence: minConfidence,
		logger:        logger,
	}
}

// Classify never fails. A broken completion service yields an unclassified
// result, which the keyword fallback may then improve on.
func (c *Classifier) Classify(ctx context.Context, message string) models.ClassificationResult {
	result := c.completion.ClassifyIntent(ctx, message)

	if result.Confidence < c.minConfidence {
		keyword := c.fallback.Classify(message)
		if keyword.Confidence > result.Confidence {
			c.logger.Debug("Using keyword classification",
				zap.String("ai_intent", string(result.Intent)),
				zap.Float64("ai_confidence", result.Confidence),
				zap.String("keyword_intent", string(keyword.Intent)),
				zap.Float64("keyword_confidence", keyword.Confidence))
			result = keyword
		}
	}

	if result.Entities == nil {
		result.Entities = map[string]string{}
	}
	result.Entities = cleanEntities(result.Entities)
	return result
}
