package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/aura/internal/classifier"
	"github.com/xaenox/aura/internal/models"
	"github.com/xaenox/aura/internal/planner"
	"github.com/xaenox/aura/internal/risk"
	"github.com/xaenox/aura/internal/safety"
	"github.com/xaenox/aura/internal/storage"
	"github.com/xaenox/aura/internal/testutil"
)

func newPipeline(stub *testutil.StubCompletion, store storage.Storage) *Pipeline {
	logger := zap.NewNop()
	return New(Components{
		Classifier: classifier.New(stub, classifier.DefaultMinConfidence, logger),
		Assessor:   risk.NewAssessor(risk.DefaultTables()),
		Gate:       safety.NewGate(),
		Planner:    planner.New(stub, logger),
		Completion: stub,
		Store:      store,
	}, logger)
}

func newStore() storage.Storage {
	return storage.New(storage.NewMemoryStorage())
}

func assertTrace(t *testing.T, trace []models.ExecutionStep, statuses ...models.StepStatus) {
	t.Helper()
	require.Len(t, trace, len(statuses))
	for i, s := range trace {
		assert.Equal(t, i+1, s.Step, "step %d", i)
		assert.Equal(t, statuses[i], s.Status, "status of step %d (%s)", s.Step, s.Label)
	}
}

func TestProcessOpenWebApp(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	p := newPipeline(&testutil.StubCompletion{}, store)

	resp, err := p.Process(ctx, models.Request{Message: "open youtube", UserID: "u1"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, models.IntentOpenWebApp, resp.Intent)
	assert.Equal(t, models.RiskLow, resp.RiskLevel)
	assert.False(t, resp.RequiresConfirmation)
	require.NotNil(t, resp.Action)
	assert.Equal(t, "https://www.youtube.com", resp.Action.URL)
	assert.Equal(t, "Opening youtube for you.", resp.Message)
	assertTrace(t, resp.ExecutionTrace, models.StepCompleted, models.StepCompleted, models.StepCompleted, models.StepCompleted)
	assert.Equal(t, "Intent detected", resp.ExecutionTrace[0].Label)
	assert.Equal(t, "OPEN_WEB_APP", resp.ExecutionTrace[0].Value)
	assert.Equal(t, "Risk level", resp.ExecutionTrace[1].Label)
	assert.Equal(t, "Safety check", resp.ExecutionTrace[2].Label)

	m, err := store.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, m.RecentActions, 1)
	assert.Equal(t, "open youtube", m.RecentActions[0].Description)
	assert.Equal(t, []models.ActionCount{{Intent: models.IntentOpenWebApp, Platform: "youtube", Count: 1}}, m.FrequentActions)
}

func TestProcessMessageNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	p := newPipeline(&testutil.StubCompletion{}, store)

	resp, err := p.Process(ctx, models.Request{
		Message: "send whatsapp message to 9876543210 saying hello",
		UserID:  "u1",
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, models.IntentSendMessage, resp.Intent)
	assert.Equal(t, models.RiskMedium, resp.RiskLevel)
	assert.True(t, resp.RequiresConfirmation)
	assert.NotEmpty(t, resp.Message)
	require.NotNil(t, resp.Action)
	assert.Equal(t, "https://web.whatsapp.com/send?phone=919876543210&text=hello", resp.Action.URL)
	assert.Equal(t, "hello", resp.Action.Content)
	assertTrace(t, resp.ExecutionTrace,
		models.StepCompleted, models.StepCompleted, models.StepWarning,
		models.StepPending, models.StepPending)

	m, err := store.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, m.RecentActions)
}

func TestProcessConfirmedMessageOnOtherPlatform(t *testing.T) {
	stub := &testutil.StubCompletion{Classification: models.ClassificationResult{
		Intent:     models.IntentSendMessage,
		Confidence: 0.9,
		Entities:   map[string]string{"platform": "instagram", "recipient": "9876543210", "content": "yo"},
	}}
	p := newPipeline(stub, newStore())

	resp, err := p.Process(context.Background(), models.Request{
		Message:   "send message on instagram to 9876543210 saying yo",
		Confirmed: true,
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.False(t, resp.RequiresConfirmation)
	require.NotNil(t, resp.Action)
	assert.Equal(t, "https://web.whatsapp.com/send?phone=919876543210&text=yo", resp.Action.URL)
	assert.Equal(t, "whatsapp", resp.Action.Platform)
	assert.Equal(t, "Ready to message 9876543210.", resp.Message)
}

func TestProcessConfirmedMessage(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	p := newPipeline(&testutil.StubCompletion{}, store)

	resp, err := p.Process(ctx, models.Request{
		Message:   "send whatsapp message to 9876543210 saying hello",
		UserID:    "u1",
		Confirmed: true,
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.False(t, resp.RequiresConfirmation)
	assert.Equal(t, models.RiskMedium, resp.RiskLevel)
	assert.Equal(t, "Ready to message 919876543210.", resp.Message)
	assertTrace(t, resp.ExecutionTrace,
		models.StepCompleted, models.StepCompleted, models.StepCompleted,
		models.StepCompleted, models.StepCompleted)

	m, err := store.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, m.FrequentActions, 1)
	assert.Equal(t, "whatsapp", m.FrequentActions[0].Platform)
}

func TestProcessBlocked(t *testing.T) {
	store := newStore()
	p := newPipeline(&testutil.StubCompletion{}, store)

	resp, err := p.Process(context.Background(), models.Request{Message: "search for my password", UserID: "u1"})
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Equal(t, models.RiskBlocked, resp.RiskLevel)
	assert.False(t, resp.RequiresConfirmation)
	assert.Nil(t, resp.Action)
	assert.NotEmpty(t, resp.Error)
	assert.NotEmpty(t, resp.Message)
	assertTrace(t, resp.ExecutionTrace, models.StepCompleted, models.StepBlocked, models.StepBlocked)

	m, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, m.RecentActions)
}

func TestProcessOversizedMessageIsBlocked(t *testing.T) {
	p := newPipeline(&testutil.StubCompletion{}, nil)
	long := make([]byte, safety.MaxMessageLength+1)
	for i := range long {
		long[i] = 'a'
	}

	resp, err := p.Process(context.Background(), models.Request{Message: string(long)})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, models.RiskBlocked, resp.RiskLevel)
	assert.Equal(t, models.StepBlocked, resp.ExecutionTrace[2].Status)
}

func TestProcessVisionWithoutImage(t *testing.T) {
	stub := &testutil.StubCompletion{Classification: models.ClassificationResult{
		Intent:     models.IntentVisionAnalyze,
		Confidence: 0.9,
	}}
	store := newStore()
	p := newPipeline(stub, store)

	resp, err := p.Process(context.Background(), models.Request{Message: "look at this", UserID: "u1"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, models.IntentVisionAnalyze, resp.Intent)
	assert.False(t, resp.RequiresConfirmation)
	assert.Contains(t, resp.Message, "no image provided")
	assert.Contains(t, resp.Message, "Please upload an image")
	require.NotNil(t, resp.Action)
	assert.Equal(t, models.ActionDisplay, resp.Action.Type)
	assertTrace(t, resp.ExecutionTrace, models.StepCompleted, models.StepCompleted, models.StepWarning, models.StepCompleted)
	assert.Empty(t, stub.VisionCalls)

	m, err := store.GetOrCreate(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, m.RecentActions, 1)
	assert.Equal(t, models.IntentVisionAnalyze, m.RecentActions[0].Intent)
	assert.Equal(t, "look at this", m.RecentActions[0].Description)
}

func TestProcessVisionWithImage(t *testing.T) {
	stub := &testutil.StubCompletion{
		Classification: models.ClassificationResult{Intent: models.IntentVisionAnalyze, Confidence: 0.9},
		Vision:         "A cat on a sofa.",
	}
	p := newPipeline(stub, nil)

	resp, err := p.Process(context.Background(), models.Request{Message: "what is this?", ImageBase64: "aGVsbG8="})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "A cat on a sofa.", resp.Message)
	require.NotNil(t, resp.Action)
	assert.Equal(t, models.Action{Type: models.ActionDisplay, Content: "A cat on a sofa.", Description: "Image analysis"}, *resp.Action)
	assertTrace(t, resp.ExecutionTrace,
		models.StepCompleted, models.StepCompleted, models.StepCompleted,
		models.StepCompleted, models.StepCompleted)
	assert.Equal(t, "Analysis complete", resp.ExecutionTrace[4].Label)
	assert.Equal(t, []string{"aGVsbG8="}, stub.VisionCalls)
}

func TestProcessSummarizeStripsCue(t *testing.T) {
	stub := &testutil.StubCompletion{
		Classification: models.ClassificationResult{Intent: models.IntentSummarize, Confidence: 0.95},
		Summary:        "AURA helps.",
	}
	p := newPipeline(stub, nil)

	resp, err := p.Process(context.Background(), models.Request{Message: "summarize: AURA is a helpful assistant."})
	require.NoError(t, err)

	assert.Equal(t, "AURA helps.", resp.Message)
	assert.Equal(t, []string{"AURA is a helpful assistant."}, stub.SummarizeCalls)
}

func TestProcessQuestionUsesMemoryContext(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	require.NoError(t, store.UpdatePreference(ctx, "u1", "language", "french"))

	stub := &testutil.StubCompletion{
		Classification: models.ClassificationResult{Intent: models.IntentAskQuestion, Confidence: 0.9},
		Reply:          "Bonjour!",
	}
	p := newPipeline(stub, store)

	resp, err := p.Process(ctx, models.Request{Message: "what is the capital of france", UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, "Bonjour!", resp.Message)
	require.Len(t, stub.ReplyCalls, 1)
	assert.Contains(t, stub.ReplyCalls[0].Context, "- language: french")
}

func TestProcessHighRiskNeedsConfirmation(t *testing.T) {
	stub := &testutil.StubCompletion{Classification: models.ClassificationResult{
		Intent:     models.IntentOpenWebApp,
		Confidence: 0.9,
		Entities:   map[string]string{"platform": "google"},
	}}
	p := newPipeline(stub, nil)

	resp, err := p.Process(context.Background(), models.Request{Message: "urgent open my bank"})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, models.RiskHigh, resp.RiskLevel)
	assert.True(t, resp.RequiresConfirmation)
	assertTrace(t, resp.ExecutionTrace, models.StepCompleted, models.StepWarning, models.StepCompleted, models.StepPending)
}

func TestProcessRequiresMessage(t *testing.T) {
	p := newPipeline(&testutil.StubCompletion{}, nil)

	resp, err := p.Process(context.Background(), models.Request{})
	assert.ErrorIs(t, err, ErrMessageRequired)
	assert.False(t, resp.Success)
	assert.Empty(t, resp.ExecutionTrace)
}

type brokenStore struct{ storage.Storage }

func (brokenStore) RecordAction(context.Context, string, models.Intent, string, string) error {
	return errors.New("database is down")
}

func TestProcessSwallowsMemoryFailure(t *testing.T) {
	p := newPipeline(&testutil.StubCompletion{}, brokenStore{})

	resp, err := p.Process(context.Background(), models.Request{Message: "open youtube", UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "https://www.youtube.com", resp.Action.URL)
}

type panickingClassifier struct{}

func (panickingClassifier) Classify(context.Context, string) models.ClassificationResult {
	panic("classifier exploded")
}

func TestProcessRecoversFromPanic(t *testing.T) {
	stub := &testutil.StubCompletion{}
	p := New(Components{
		Classifier: panickingClassifier{},
		Assessor:   risk.NewAssessor(risk.DefaultTables()),
		Gate:       safety.NewGate(),
		Planner:    planner.New(stub, zap.NewNop()),
		Completion: stub,
	}, zap.NewNop())

	resp, err := p.Process(context.Background(), models.Request{Message: "open youtube"})
	assert.ErrorIs(t, err, ErrInternal)
	assert.False(t, resp.Success)
	assert.Equal(t, InternalErrorMessage, resp.Message)
	assert.NotContains(t, resp.Error, "exploded")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "héllo", truncate("héllo wörld", 5))
}
