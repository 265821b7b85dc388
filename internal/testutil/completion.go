// Package testutil holds fakes shared by package tests.
package testutil

import (
	"context"
	"sync"

	"github.com/xaenox/aura/internal/completion"
	"github.com/xaenox/aura/internal/models"
)

// StubCompletion is a scripted completion.Service. Zero value classifies
// everything as UNKNOWN with zero confidence and echoes canned texts.
type StubCompletion struct {
	Classification models.ClassificationResult
	Reply          string
	Vision         string
	Summary        string
	Draft          string

	mu             sync.Mutex
	ReplyCalls     []ReplyCall
	VisionCalls    []string
	SummarizeCalls []string
	DraftCalls     []DraftCall
}

type ReplyCall struct {
	Text    string
	Context string
}

type DraftCall struct {
	Kind      string
	Recipient string
	Context   string
}

var _ completion.Service = (*StubCompletion)(nil)

func (s *StubCompletion) ClassifyIntent(context.Context, string) models.ClassificationResult {
	if s.Classification.Intent == "" {
		return models.Unclassified()
	}
	out := s.Classification
	out.Entities = make(map[string]string, len(s.Classification.Entities))
	for k, v := range s.Classification.Entities {
		out.Entities[k] = v
	}
	return out
}

func (s *StubCompletion) GenerateResponse(_ context.Context, text, memoryContext string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ReplyCalls = append(s.ReplyCalls, ReplyCall{Text: text, Context: memoryContext})
	return s.Reply
}

func (s *StubCompletion) AnalyzeImage(_ context.Context, imageBase64, _ string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.VisionCalls = append(s.VisionCalls, imageBase64)
	return s.Vision
}

func (s *StubCompletion) Summarize(_ context.Context, text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SummarizeCalls = append(s.SummarizeCalls, text)
	return s.Summary
}

func (s *StubCompletion) GenerateDraft(_ context.Context, kind, recipient, ctx string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DraftCalls = append(s.DraftCalls, DraftCall{Kind: kind, Recipient: recipient, Context: ctx})
	return s.Draft
}
