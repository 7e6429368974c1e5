package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/legal-assistant-api/internal/extractor"
	"github.com/BerylCAtieno/legal-assistant-api/internal/models"
	"github.com/BerylCAtieno/legal-assistant-api/internal/services"
	"github.com/BerylCAtieno/legal-assistant-api/internal/utils"
)

type fakeService struct {
	services.LegalService

	analyzed  []models.UploadedDocument
	chatErr   error
	lastLimit int
}

func (f *fakeService) Chat(context.Context, *models.ChatRequest) (*models.ChatResponse, error) {
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return &models.ChatResponse{Text: "ok"}, nil
}

func (f *fakeService) AnalyzeDocument(_ context.Context, doc models.UploadedDocument) (*models.DocumentAnalysis, error) {
	f.analyzed = append(f.analyzed, doc)
	return &models.DocumentAnalysis{Language: "English", Summary: "s"}, nil
}

func (f *fakeService) RecentCompletions(_ context.Context, limit int) ([]models.CompletionAudit, error) {
	f.lastLimit = limit
	return nil, nil
}

type fakeStore struct {
	uploadErr error
	uploaded  []string
	deleted   []string
}

func (f *fakeStore) Upload(_ context.Context, key string, _ []byte, _ string) error {
	f.uploaded = append(f.uploaded, key)
	return f.uploadErr
}

func (f *fakeStore) Download(context.Context, string) ([]byte, error) { return nil, nil }

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func newHandler(svc services.LegalService, store *fakeStore) *LegalHandler {
	return NewLegalHandler(svc, store, 1<<20, utils.NewLoggerTo(io.Discard, "error"))
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(DocumentField, filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestAnalyzeDocumentStagesUnderFreshKey(t *testing.T) {
	svc := &fakeService{}
	store := &fakeStore{}
	h := newHandler(svc, store)

	for i := 0; i < 2; i++ {
		body, ct := multipartBody(t, "Contract.DOCX", "data")
		req := httptest.NewRequest(http.MethodPost, "/api/analyze-document", body)
		req.Header.Set("Content-Type", ct)
		rr := httptest.NewRecorder()
		h.AnalyzeDocument(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	require.Len(t, svc.analyzed, 2)
	doc := svc.analyzed[0]
	assert.Equal(t, "docx", doc.DeclaredExtension)
	assert.Equal(t, "Contract.DOCX", doc.OriginalName)
	assert.True(t, strings.HasSuffix(doc.Path, ".docx"))
	assert.NotContains(t, doc.Path, "Contract")
	assert.NotEqual(t, svc.analyzed[0].Path, svc.analyzed[1].Path)
}

func TestAnalyzeDocumentStoreFailureDegrades(t *testing.T) {
	svc := &fakeService{}
	store := &fakeStore{uploadErr: errors.New("bucket unavailable")}
	h := newHandler(svc, store)

	body, ct := multipartBody(t, "lease.pdf", "%PDF-1.4")
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-document", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.AnalyzeDocument(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), extractor.FailedText)
	assert.Empty(t, svc.analyzed)
	assert.Equal(t, store.uploaded, store.deleted)
}

func TestRespondErrorMapsUnknownErrorsTo500(t *testing.T) {
	h := newHandler(&fakeService{chatErr: errors.New("boom")}, &fakeStore{})

	rr := httptest.NewRecorder()
	h.Chat(rr, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"prompt":"x"}`)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
}

func TestRespondErrorUsesAppErrorStatus(t *testing.T) {
	h := newHandler(&fakeService{chatErr: utils.NewBadRequestError("prompt or message is required")}, &fakeStore{})

	rr := httptest.NewRecorder()
	h.Chat(rr, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"prompt or message is required"}`, rr.Body.String())
}

func TestRecentCompletionsLimit(t *testing.T) {
	svc := &fakeService{}
	h := newHandler(svc, &fakeStore{})

	rr := httptest.NewRecorder()
	h.RecentCompletions(rr, httptest.NewRequest(http.MethodGet, "/api/audit/completions?limit=7", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 7, svc.lastLimit)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.RecentCompletions(rr, httptest.NewRequest(http.MethodGet, "/api/audit/completions?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
