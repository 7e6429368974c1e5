// Package extractor turns staged uploads into plain text.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BerylCAtieno/legal-assistant-api/internal/models"
	"github.com/BerylCAtieno/legal-assistant-api/internal/storage"
	"github.com/BerylCAtieno/legal-assistant-api/internal/utils"
)

// Sentinel texts returned in place of document content.
const (
	UnsupportedTypeText = "Unsupported file type. Please upload a PDF, DOCX, or TXT file."
	NoTextText          = "No text detected in the document."
	FailedText          = "Failed to extract text from the document."
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNoText          = errors.New("no text could be extracted")
)

// ParseFunc converts raw file bytes into text.
type ParseFunc func(data []byte) (string, error)

type Extractor struct {
	store   storage.Storage
	parsers map[string]ParseFunc
	logger  *utils.Logger
}

func New(store storage.Storage, logger *utils.Logger) *Extractor {
	return NewWithParsers(store, logger, map[string]ParseFunc{
		"pdf":  ExtractPDF,
		"docx": ExtractDOCX,
		"txt":  ExtractTXT,
	})
}

// NewWithParsers builds an Extractor with a custom extension table.
func NewWithParsers(store storage.Storage, logger *utils.Logger, parsers map[string]ParseFunc) *Extractor {
	return &Extractor{store: store, parsers: parsers, logger: logger}
}

// Extract returns the document text. On failure it returns a sentinel text
// together with a non-nil error. The staged upload is deleted on every path.
func (e *Extractor) Extract(ctx context.Context, doc models.UploadedDocument) (text string, err error) {
	defer func() {
		// Cleanup must outlive a cancelled request.
		if delErr := e.store.Delete(context.WithoutCancel(ctx), doc.Path); delErr != nil {
			e.logger.Warn("Failed to delete upload", "path", doc.Path, "error", delErr)
		}
	}()

	ext := strings.ToLower(strings.TrimPrefix(doc.DeclaredExtension, "."))
	parse, ok := e.parsers[ext]
	if !ok {
		return UnsupportedTypeText, fmt.Errorf("%q: %w", ext, ErrUnsupportedType)
	}

	data, err := e.store.Download(ctx, doc.Path)
	if err != nil {
		return FailedText, fmt.Errorf("read upload: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = FailedText, fmt.Errorf("%s parser panicked: %v", ext, r)
		}
	}()

	text, err = parse(data)
	switch {
	case errors.Is(err, ErrNoText):
		return NoTextText, err
	case err != nil:
		return FailedText, fmt.Errorf("extract %s: %w", ext, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return NoTextText, ErrNoText
	}
	return text, nil
}

// ExtensionOf returns the lower-cased extension of a filename without the dot.
func ExtensionOf(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Truncate caps text at limit runes, appending "..." when it cuts.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
