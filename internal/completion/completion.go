package completion

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/xaenox/aura/internal/models"
)

// Service is the completion collaborator consumed by the pipeline. None of its
// methods fail: degraded behaviour is a static fallback text, or an
// unclassified result for ClassifyIntent.
type Service interface {
	ClassifyIntent(ctx context.Context, text string) models.ClassificationResult
	GenerateResponse(ctx context.Context, text, memoryContext string) string
	AnalyzeImage(ctx context.Context, imageBase64, text string) string
	Summarize(ctx context.Context, text string) string
	GenerateDraft(ctx context.Context, kind, recipient, context string) string
}

// Generator is a raw text/vision model backend.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt, imageBase64 string) (string, error)
}

// ErrEmptyCompletion is returned by generators when the model answered with no
// choices or no text.
var ErrEmptyCompletion = errors.New("completion returned no content")

const (
	fallbackGreeting = "Hello! I'm AURA. My AI brain is currently having a connectivity issue, but I'm still here to help you open apps or search for things!"
	fallbackReply    = "I apologize, but I encountered an error connecting to my AI model. I can still help you with basic commands like 'Open YouTube' or 'Search Google'!"
	fallbackVision   = "I couldn't analyze the image. Please make sure it's a valid image file and try again."
	fallbackSummary  = "I couldn't generate a summary. Please try again."
)

// Client applies AURA's prompts on top of a Generator and turns every backend
// failure into a fallback value.
type Client struct {
	gen    Generator
	logger *zap.Logger
}

var _ Service = (*Client)(nil)

func NewClient(gen Generator, logger *zap.Logger) *Client {
	return &Client{gen: gen, logger: logger}
}

// ClassifyIntent asks the model for a JSON classification and parses it
// leniently.
func (c *Client) ClassifyIntent(ctx context.Context, text string) models.ClassificationResult {
	raw, err := c.gen.Generate(ctx, classifyPrompt(text))
	if err != nil {
		c.logger.Error("Intent classification failed",
			zap.Error(err),
			zap.String("backend", c.gen.Name()))
		return models.Unclassified()
	}

	result, err := ParseClassification(raw)
	if err != nil {
		c.logger.Warn("Failed to parse classification response",
			zap.Error(err),
			zap.String("response", raw))
		return models.Unclassified()
	}
	return result
}

func (c *Client) GenerateResponse(ctx context.Context, text, memoryContext string) string {
	out, err := c.gen.Generate(ctx, replyPrompt(text, memoryContext))
	if err != nil {
		c.logger.Error("Response generation failed", zap.Error(err), zap.String("backend", c.gen.Name()))
		lower := strings.ToLower(text)
		if strings.Contains(lower, "hi") || strings.Contains(lower, "hello") {
			return fallbackGreeting
		}
		return fallbackReply
	}
	return out
}

func (c *Client) AnalyzeImage(ctx context.Context, imageBase64, text string) string {
	out, err := c.gen.GenerateWithImage(ctx, visionPrompt(text), imageBase64)
	if err != nil {
		c.logger.Error("Vision analysis failed", zap.Error(err), zap.String("backend", c.gen.Name()))
		return fallbackVision
	}
	return out
}

func (c *Client) Summarize(ctx context.Context, text string) string {
	out, err := c.gen.Generate(ctx, summarizePrompt(text))
	if err != nil {
		c.logger.Error("Summarization failed", zap.Error(err), zap.String("backend", c.gen.Name()))
		return fallbackSummary
	}
	return out
}

// GenerateDraft drafts an email (kind "email") or a chat message (any other kind).
func (c *Client) GenerateDraft(ctx context.Context, kind, recipient, context string) string {
	out, err := c.gen.Generate(ctx, draftPrompt(kind, recipient, context))
	if err != nil {
		c.logger.Error("Draft generation failed",
			zap.Error(err),
			zap.String("backend", c.gen.Name()),
			zap.String("kind", kind))
		return "Draft for " + recipient + ": " + context
	}
	return out
}
