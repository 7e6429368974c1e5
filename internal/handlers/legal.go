package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/BerylCAtieno/legal-assistant-api/internal/extractor"
	"github.com/BerylCAtieno/legal-assistant-api/internal/models"
	"github.com/BerylCAtieno/legal-assistant-api/internal/services"
	"github.com/BerylCAtieno/legal-assistant-api/internal/storage"
	"github.com/BerylCAtieno/legal-assistant-api/internal/utils"
)

const (
	// DocumentField is the multipart field carrying the uploaded file.
	DocumentField = "document"

	maxJSONBody = 1 << 20
	homeText    = "Legal assistant API is running."
)

type LegalHandler struct {
	service     services.LegalService
	store       storage.Storage
	maxFileSize int64
	logger      *utils.Logger
}

func NewLegalHandler(service services.LegalService, store storage.Storage, maxFileSize int64, logger *utils.Logger) *LegalHandler {
	return &LegalHandler{
		service:     service,
		store:       store,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

func (h *LegalHandler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, homeText)
}

func (h *LegalHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *LegalHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	resp, err := h.service.Chat(r.Context(), &req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *LegalHandler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	sizeErr := utils.NewBadRequestError(fmt.Sprintf("File size exceeds %dMB limit", h.maxFileSize>>20))

	if r.ContentLength > h.maxFileSize {
		h.respondError(w, sizeErr)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, sizeErr)
			return
		}
		h.respondError(w, utils.NewBadRequestError("Invalid form data"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(DocumentField)
	if err != nil {
		h.respondError(w, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		h.respondError(w, utils.NewBadRequestError("Failed to read file"))
		return
	}
	if int64(len(data)) > h.maxFileSize {
		h.respondError(w, sizeErr)
		return
	}
	if len(data) == 0 {
		h.respondError(w, utils.NewBadRequestError("Uploaded file is empty"))
		return
	}

	ext := extractor.ExtensionOf(header.Filename)
	key := utils.GenerateID()
	if ext != "" {
		key += "." + ext
	}

	h.logger.Info("Document upload",
		"filename", header.Filename,
		"extension", ext,
		"size", len(data),
		"key", key)

	if err := h.store.Upload(r.Context(), key, data, header.Header.Get("Content-Type")); err != nil {
		h.logger.Error("Failed to stage upload", "key", key, "error", err)
		if delErr := h.store.Delete(r.Context(), key); delErr != nil {
			h.logger.Warn("Failed to delete upload", "key", key, "error", delErr)
		}
		h.respondJSON(w, http.StatusOK, &models.DocumentAnalysis{
			Summary: extractor.FailedText,
			Error:   "failed to store the uploaded document",
		})
		return
	}

	resp, err := h.service.AnalyzeDocument(r.Context(), models.UploadedDocument{
		Path:              key,
		DeclaredExtension: ext,
		OriginalName:      header.Filename,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *LegalHandler) PredictOutcome(w http.ResponseWriter, r *http.Request) {
	var req models.PredictOutcomeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	resp, err := h.service.PredictOutcome(r.Context(), &req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *LegalHandler) GenerateTimeline(w http.ResponseWriter, r *http.Request) {
	var req models.TimelineRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	resp, err := h.service.GenerateTimeline(r.Context(), &req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *LegalHandler) GenerateArguments(w http.ResponseWriter, r *http.Request) {
	var req models.ArgumentsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	resp, err := h.service.GenerateArguments(r.Context(), &req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *LegalHandler) RecentCompletions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.respondError(w, utils.NewBadRequestError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := h.service.RecentCompletions(r.Context(), limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if entries == nil {
		entries = []models.CompletionAudit{}
	}
	h.respondJSON(w, http.StatusOK, entries)
}

// decodeJSON reads a JSON object body. An empty or malformed body is a 400.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return utils.NewBadRequestError("Request body is required")
		}
		return utils.NewBadRequestError("Invalid JSON body")
	}
	return nil
}

func (h *LegalHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *LegalHandler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request error", "status", status, "error", err)
	} else {
		h.logger.Warn("Request rejected", "status", status, "error", message)
	}

	h.respondJSON(w, status, map[string]string{"error": message})
}
