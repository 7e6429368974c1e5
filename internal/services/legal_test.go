package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/legal-assistant-api/internal/completion"
	"github.com/BerylCAtieno/legal-assistant-api/internal/config"
	"github.com/BerylCAtieno/legal-assistant-api/internal/extractor"
	"github.com/BerylCAtieno/legal-assistant-api/internal/models"
	"github.com/BerylCAtieno/legal-assistant-api/internal/parser"
	"github.com/BerylCAtieno/legal-assistant-api/internal/prompts"
	"github.com/BerylCAtieno/legal-assistant-api/internal/storage"
	"github.com/BerylCAtieno/legal-assistant-api/internal/utils"
)

type fakeClient struct {
	reply string
	err   error
	block bool

	mu       sync.Mutex
	requests []completion.Request
}

func (f *fakeClient) Complete(ctx context.Context, req completion.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", errors.Join(completion.ErrServiceUnavailable, ctx.Err())
	}
	return f.reply, f.err
}

func (f *fakeClient) last(t *testing.T) completion.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

type fakeAudit struct {
	mu        sync.Mutex
	entries   []models.CompletionAudit
	err       error
	recentErr error
}

func (f *fakeAudit) Record(_ context.Context, e *models.CompletionAudit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *e)
	return f.err
}

func (f *fakeAudit) Recent(_ context.Context, limit int) ([]models.CompletionAudit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	if limit > len(f.entries) {
		limit = len(f.entries)
	}
	return f.entries[:limit], nil
}

type fakeClassifier struct {
	clauses []models.Clause
	called  bool
}

func (f *fakeClassifier) Classify(context.Context, string) []models.Clause {
	f.called = true
	return f.clauses
}

type harness struct {
	svc        LegalService
	client     *fakeClient
	audit      *fakeAudit
	classifier *fakeClassifier
	store      storage.Storage
	dir        string
}

func newHarness(t *testing.T, client *fakeClient, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := &config.Config{
		CompletionProvider: config.ProviderOpenAI,
		CompletionModel:    "gpt-test",
		CompletionTimeout:  time.Second,
		MaxDocumentChars:   4000,
	}
	if mutate != nil {
		mutate(cfg)
	}

	dir := t.TempDir()
	store, err := storage.NewDiskStorage(dir)
	require.NoError(t, err)

	logger := utils.NewLoggerTo(io.Discard, "error")
	audit := &fakeAudit{}
	cls := &fakeClassifier{}
	return &harness{
		svc:        NewService(client, extractor.New(store, logger), cls, audit, cfg, logger),
		client:     client,
		audit:      audit,
		classifier: cls,
		store:      store,
		dir:        dir,
	}
}

func (h *harness) stage(t *testing.T, name, content string) models.UploadedDocument {
	t.Helper()
	key := utils.GenerateID() + filepath.Ext(name)
	require.NoError(t, h.store.Upload(context.Background(), key, []byte(content), ""))
	return models.UploadedDocument{Path: key, DeclaredExtension: extractor.ExtensionOf(name), OriginalName: name}
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.StatusCode)
}

func TestChatReturnsTrimmedReply(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "  Consideration is something of value.\n"}, nil)

	resp, err := h.svc.Chat(context.Background(), &models.ChatRequest{Prompt: "What is consideration?"})
	require.NoError(t, err)
	assert.Equal(t, &models.ChatResponse{Text: "Consideration is something of value."}, resp)

	req := h.client.last(t)
	assert.Equal(t, "gpt-test", req.Model)
	assert.Equal(t, completion.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, "What is consideration?", req.Messages[1].Content)

	require.Len(t, h.audit.entries, 1)
	assert.Equal(t, models.CompletionOK, h.audit.entries[0].Status)
	assert.Equal(t, EndpointChat, h.audit.entries[0].Endpoint)
}

func TestChatAcceptsMessageField(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "ok"}, nil)

	_, err := h.svc.Chat(context.Background(), &models.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", h.client.last(t).Messages[1].Content)
}

func TestChatRequiresPrompt(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "ok"}, nil)

	_, err := h.svc.Chat(context.Background(), &models.ChatRequest{Prompt: "  "})
	requireStatus(t, err, http.StatusBadRequest)
	assert.Empty(t, h.client.requests)
}

func TestChatServiceFailureDegrades(t *testing.T) {
	h := newHarness(t, &fakeClient{err: completion.ErrServiceUnavailable}, nil)

	resp, err := h.svc.Chat(context.Background(), &models.ChatRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, completion.NoResponseText, resp.Text)
	assert.Equal(t, ServiceUnavailableMessage, resp.Error)

	require.Len(t, h.audit.entries, 1)
	assert.Equal(t, models.CompletionServiceFailure, h.audit.entries[0].Status)
}

func TestEmptyReplyIsAServiceFailure(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "   "}, nil)

	resp, err := h.svc.Chat(context.Background(), &models.ChatRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, completion.NoResponseText, resp.Text)
	assert.Contains(t, h.audit.entries[0].Error, string(completion.FailureNoChoices))
}

func TestCompletionTimeout(t *testing.T) {
	h := newHarness(t, &fakeClient{block: true}, func(c *config.Config) { c.CompletionTimeout = 20 * time.Millisecond })

	start := time.Now()
	resp, err := h.svc.Chat(context.Background(), &models.ChatRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, ServiceUnavailableMessage, resp.Error)
	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, h.audit.entries[0].Error, string(completion.FailureTimeout))
}

func TestPredictOutcome(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "Outcome: Plaintiff wins\nReasoning: strong evidence\nConfidence: 82%"}, nil)

	out, err := h.svc.PredictOutcome(context.Background(), &models.PredictOutcomeRequest{
		CaseType: "Contract", Jurisdiction: "Kenya", Summary: "Unpaid invoice.",
	})
	require.NoError(t, err)
	assert.Equal(t, &models.Outcome{Outcome: "Plaintiff wins", Reasoning: "strong evidence", Confidence: "82%"}, out)
	assert.Equal(t, 0.3, h.client.last(t).Temperature)
}

func TestPredictOutcomeParseMissIsAudited(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "It depends."}, nil)

	out, err := h.svc.PredictOutcome(context.Background(), &models.PredictOutcomeRequest{
		CaseType: "Contract", Jurisdiction: "Kenya", Summary: "Unpaid invoice.",
	})
	require.NoError(t, err)
	assert.Equal(t, parser.FallbackOutcome(), *out)

	require.Len(t, h.audit.entries, 1)
	assert.Equal(t, models.CompletionParseMiss, h.audit.entries[0].Status)
	assert.Equal(t, "Outcome, Reasoning, Confidence", h.audit.entries[0].MissingLabels)
}

func TestPredictOutcomeMissingFieldsWithoutExamplePolicy(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "Outcome: x"}, nil)

	_, err := h.svc.PredictOutcome(context.Background(), &models.PredictOutcomeRequest{})
	requireStatus(t, err, http.StatusBadRequest)
	assert.Empty(t, h.client.requests)
}

func TestPredictOutcomeUsesExampleInputWhenEnabled(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "Outcome: x"}, func(c *config.Config) { c.UseExampleInput = true })

	_, err := h.svc.PredictOutcome(context.Background(), &models.PredictOutcomeRequest{Jurisdiction: "Kenya"})
	require.NoError(t, err)

	user := h.client.last(t).Messages[1].Content
	assert.Contains(t, user, prompts.ExampleCaseType)
	assert.Contains(t, user, "Jurisdiction: Kenya")
	assert.Contains(t, user, prompts.ExampleCaseSummary)
}

func TestPredictOutcomeServiceFailure(t *testing.T) {
	h := newHarness(t, &fakeClient{err: errors.New("boom")}, nil)

	out, err := h.svc.PredictOutcome(context.Background(), &models.PredictOutcomeRequest{
		CaseType: "a", Jurisdiction: "b", Summary: "c",
	})
	require.NoError(t, err)
	assert.Equal(t, parser.NoOutcome, out.Outcome)
	assert.Equal(t, parser.NoReasoning, out.Reasoning)
	assert.Equal(t, parser.NoConfidence, out.Confidence)
	assert.Equal(t, ServiceUnavailableMessage, out.Error)
}

func TestGenerateTimeline(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "2020-01-15 - Contract signed\n2020-03-25 - Lockdown begins"}, nil)

	entries, err := h.svc.GenerateTimeline(context.Background(), &models.TimelineRequest{CaseFacts: "facts"})
	require.NoError(t, err)
	assert.Equal(t, []models.TimelineEntry{
		{Date: "2020-01-15", Event: "Contract signed"},
		{Date: "2020-03-25", Event: "Lockdown begins"},
	}, entries)
	assert.Contains(t, h.client.last(t).Messages[1].Content, "facts")
}

func TestGenerateTimelinePrefersPrompt(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "2020 - x"}, nil)

	_, err := h.svc.GenerateTimeline(context.Background(), &models.TimelineRequest{Prompt: "from prompt", CaseFacts: "from facts"})
	require.NoError(t, err)
	assert.Contains(t, h.client.last(t).Messages[1].Content, "from prompt")
}

func TestGenerateTimelineValidationAndExamples(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "2020 - x"}, nil)
	_, err := h.svc.GenerateTimeline(context.Background(), &models.TimelineRequest{})
	requireStatus(t, err, http.StatusBadRequest)

	h = newHarness(t, &fakeClient{reply: "2020 - x"}, func(c *config.Config) { c.UseExampleInput = true })
	_, err = h.svc.GenerateTimeline(context.Background(), &models.TimelineRequest{})
	require.NoError(t, err)
	assert.Contains(t, h.client.last(t).Messages[1].Content, prompts.ExampleCaseFacts)
}

func TestGenerateTimelineServiceFailure(t *testing.T) {
	h := newHarness(t, &fakeClient{err: completion.ErrServiceUnavailable}, nil)

	entries, err := h.svc.GenerateTimeline(context.Background(), &models.TimelineRequest{CaseFacts: "facts"})
	require.NoError(t, err)
	assert.Equal(t, []models.TimelineEntry{{Date: "Error", Event: TimelineFailedText}}, entries)
}

func TestGenerateArguments(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "Argument: Title A\nAnalysis: a1\nStrategy: s1\nArgument: Title B\nAnalysis: a2\nStrategy: s2"}, nil)

	blocks, err := h.svc.GenerateArguments(context.Background(), &models.ArgumentsRequest{CoreArgument: "No duty of care."})
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "Title A", blocks[0].Argument)
	assert.Equal(t, "s2", blocks[1].Response)
	assert.Contains(t, h.client.last(t).Messages[1].Content, "Argument type: General")
}

func TestGenerateArgumentsValidationAndFailure(t *testing.T) {
	h := newHarness(t, &fakeClient{err: completion.ErrServiceUnavailable}, nil)

	_, err := h.svc.GenerateArguments(context.Background(), &models.ArgumentsRequest{ArgumentType: "Defence"})
	requireStatus(t, err, http.StatusBadRequest)

	blocks, err := h.svc.GenerateArguments(context.Background(), &models.ArgumentsRequest{CoreArgument: "x"})
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, ArgumentsFailedText, blocks[0].Argument)
}

func TestAnalyzeDocument(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "Language: English\nSummary: A lease between two parties."}, nil)
	h.classifier.clauses = []models.Clause{{Text: "Rent is due monthly.", Label: "payment"}}
	doc := h.stage(t, "lease.txt", "This lease is made between A and B.\nRent is due monthly.")

	resp, err := h.svc.AnalyzeDocument(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, &models.DocumentAnalysis{
		Language:  "English",
		Summary:   "A lease between two parties.",
		MLClauses: []models.Clause{{Text: "Rent is due monthly.", Label: "payment"}},
	}, resp)
	assert.Contains(t, h.client.last(t).Messages[1].Content, "Rent is due monthly.")

	_, statErr := os.Stat(filepath.Join(h.dir, doc.Path))
	assert.True(t, os.IsNotExist(statErr))
}

func TestAnalyzeDocumentTruncatesPromptText(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "Summary: short"}, func(c *config.Config) { c.MaxDocumentChars = 10 })
	doc := h.stage(t, "long.txt", "0123456789ABCDEFGHIJ")

	_, err := h.svc.AnalyzeDocument(context.Background(), doc)
	require.NoError(t, err)

	user := h.client.last(t).Messages[1].Content
	assert.Contains(t, user, "0123456789...")
	assert.NotContains(t, user, "ABCDEFGHIJ")
}

func TestAnalyzeDocumentUnsupportedType(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "unused"}, nil)
	doc := h.stage(t, "scan.png", "binary")

	resp, err := h.svc.AnalyzeDocument(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, extractor.UnsupportedTypeText, resp.Summary)
	assert.Equal(t, "unsupported file type", resp.Error)
	assert.Empty(t, h.client.requests)
	assert.False(t, h.classifier.called)

	_, statErr := os.Stat(filepath.Join(h.dir, doc.Path))
	assert.True(t, os.IsNotExist(statErr))
}

func TestAnalyzeDocumentServiceFailureStillDeletesUpload(t *testing.T) {
	h := newHarness(t, &fakeClient{err: completion.ErrServiceUnavailable}, nil)
	doc := h.stage(t, "lease.txt", "Some lease text.")

	resp, err := h.svc.AnalyzeDocument(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, completion.NoResponseText, resp.Summary)
	assert.Equal(t, ServiceUnavailableMessage, resp.Error)

	_, statErr := os.Stat(filepath.Join(h.dir, doc.Path))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRecentCompletions(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "ok"}, nil)
	for i := 0; i < 3; i++ {
		_, err := h.svc.Chat(context.Background(), &models.ChatRequest{Prompt: "hi"})
		require.NoError(t, err)
	}

	entries, err := h.svc.RecentCompletions(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "gpt-test", entries[0].Model)
	assert.NotEmpty(t, entries[0].ID)
}

func TestRecentCompletionsDisabled(t *testing.T) {
	logger := utils.NewLoggerTo(io.Discard, "error")
	cfg := &config.Config{CompletionTimeout: time.Second}
	svc := NewService(&fakeClient{}, nil, nil, nil, cfg, logger)

	_, err := svc.RecentCompletions(context.Background(), 10)
	requireStatus(t, err, http.StatusNotFound)
}

func TestAuditFailureDoesNotAffectResponse(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "fine"}, nil)
	h.audit.err = errors.New("disk full")

	resp, err := h.svc.Chat(context.Background(), &models.ChatRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "fine", resp.Text)
}

func TestRecentCompletionsReadFailure(t *testing.T) {
	h := newHarness(t, &fakeClient{reply: "ok"}, nil)
	h.audit.recentErr = errors.New("database is locked")

	_, err := h.svc.RecentCompletions(context.Background(), 10)
	requireStatus(t, err, http.StatusServiceUnavailable)
}

func TestCompletionLogsCarryEndpoint(t *testing.T) {
	var buf bytes.Buffer
	logger := utils.NewLoggerTo(&buf, "info")
	cfg := &config.Config{CompletionModel: "gpt-test", CompletionTimeout: time.Second}
	svc := NewService(&fakeClient{reply: "Outcome: x"}, nil, nil, nil, cfg, logger)

	_, err := svc.PredictOutcome(context.Background(), &models.PredictOutcomeRequest{
		CaseType: "a", Jurisdiction: "b", Summary: "c",
	})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Model reply missing labels", entry["msg"])
	assert.Equal(t, EndpointPredict, entry["endpoint"])
	assert.Equal(t, "gpt-test", entry["model"])
}
