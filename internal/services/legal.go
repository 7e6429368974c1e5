package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BerylCAtieno/legal-assistant-api/internal/classifier"
	"github.com/BerylCAtieno/legal-assistant-api/internal/completion"
	"github.com/BerylCAtieno/legal-assistant-api/internal/config"
	"github.com/BerylCAtieno/legal-assistant-api/internal/extractor"
	"github.com/BerylCAtieno/legal-assistant-api/internal/models"
	"github.com/BerylCAtieno/legal-assistant-api/internal/parser"
	"github.com/BerylCAtieno/legal-assistant-api/internal/prompts"
	"github.com/BerylCAtieno/legal-assistant-api/internal/repository"
	"github.com/BerylCAtieno/legal-assistant-api/internal/utils"
)

// Endpoint names used in logs and the audit log.
const (
	EndpointChat      = "chat"
	EndpointAnalyze   = "analyze-document"
	EndpointPredict   = "predict-outcome"
	EndpointTimeline  = "generate-timeline"
	EndpointArguments = "generate-arguments"
)

// User-facing texts for failed requests.
const (
	ServiceUnavailableMessage = "The AI service is currently unavailable. Please try again later."
	TimelineFailedText        = "Failed to generate timeline."
	ArgumentsFailedText       = "Failed to generate arguments."
	TimelineErrorDate         = "Error"
)

// LegalService runs the request pipeline: validate, extract, prompt,
// complete, parse. Completion and extraction failures degrade to fallback
// payloads; only invalid input is returned as an error.
type LegalService interface {
	Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
	AnalyzeDocument(ctx context.Context, doc models.UploadedDocument) (*models.DocumentAnalysis, error)
	PredictOutcome(ctx context.Context, req *models.PredictOutcomeRequest) (*models.Outcome, error)
	GenerateTimeline(ctx context.Context, req *models.TimelineRequest) ([]models.TimelineEntry, error)
	GenerateArguments(ctx context.Context, req *models.ArgumentsRequest) ([]models.ArgumentBlock, error)
	RecentCompletions(ctx context.Context, limit int) ([]models.CompletionAudit, error)
}

type legalService struct {
	client     completion.Client
	extractor  *extractor.Extractor
	classifier classifier.Classifier
	audit      repository.Repository
	logger     *utils.Logger

	model           string
	timeout         time.Duration
	maxDocChars     int
	useExampleInput bool
}

// NewService wires the pipeline. audit may be nil to disable the audit log.
func NewService(
	client completion.Client,
	ext *extractor.Extractor,
	cls classifier.Classifier,
	audit repository.Repository,
	cfg *config.Config,
	logger *utils.Logger,
) LegalService {
	if cls == nil {
		cls = classifier.Noop{}
	}
	return &legalService{
		client:          client,
		extractor:       ext,
		classifier:      cls,
		audit:           audit,
		logger:          logger,
		model:           cfg.Model(),
		timeout:         cfg.CompletionTimeout,
		maxDocChars:     cfg.MaxDocumentChars,
		useExampleInput: cfg.UseExampleInput,
	}
}

func (s *legalService) Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = strings.TrimSpace(req.Message)
	}
	if prompt == "" {
		return nil, utils.NewBadRequestError("prompt or message is required")
	}

	reply, done, err := s.complete(ctx, EndpointChat, prompts.Chat(prompt))
	if err != nil {
		return &models.ChatResponse{Text: completion.NoResponseText, Error: ServiceUnavailableMessage}, nil
	}
	done(nil)

	return &models.ChatResponse{Text: strings.TrimSpace(reply)}, nil
}

func (s *legalService) AnalyzeDocument(ctx context.Context, doc models.UploadedDocument) (*models.DocumentAnalysis, error) {
	text, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		s.logger.Warn("Document extraction failed",
			"filename", doc.OriginalName,
			"extension", doc.DeclaredExtension,
			"error", err)
		return &models.DocumentAnalysis{Summary: text, Error: extractionErrorMessage(err)}, nil
	}

	s.logger.Info("Document text extracted", "filename", doc.OriginalName, "text_length", len(text))

	clauses := s.classifier.Classify(ctx, text)

	reply, done, err := s.complete(ctx, EndpointAnalyze, prompts.Summarize(extractor.Truncate(text, s.maxDocChars)))
	if err != nil {
		return &models.DocumentAnalysis{
			Summary:   completion.NoResponseText,
			MLClauses: clauses,
			Error:     ServiceUnavailableMessage,
		}, nil
	}

	summary, missing := parser.ParseSummary(reply)
	done(missing)

	return &models.DocumentAnalysis{
		Language:  summary.Language,
		Summary:   summary.Summary,
		MLClauses: clauses,
	}, nil
}

func (s *legalService) PredictOutcome(ctx context.Context, req *models.PredictOutcomeRequest) (*models.Outcome, error) {
	caseType := prompts.Or(strings.TrimSpace(req.CaseType), prompts.ExampleCaseType, s.useExampleInput)
	jurisdiction := prompts.Or(strings.TrimSpace(req.Jurisdiction), prompts.ExampleJurisdiction, s.useExampleInput)
	summary := prompts.Or(strings.TrimSpace(req.Summary), prompts.ExampleCaseSummary, s.useExampleInput)

	if caseType == "" || jurisdiction == "" || summary == "" {
		return nil, utils.NewBadRequestError("caseType, jurisdiction and summary are required")
	}

	reply, done, err := s.complete(ctx, EndpointPredict, prompts.PredictOutcome(caseType, jurisdiction, summary))
	if err != nil {
		out := parser.FallbackOutcome()
		out.Error = ServiceUnavailableMessage
		return &out, nil
	}

	out, missing := parser.ParseOutcome(reply)
	done(missing)

	return &out, nil
}

func (s *legalService) GenerateTimeline(ctx context.Context, req *models.TimelineRequest) ([]models.TimelineEntry, error) {
	facts := strings.TrimSpace(req.Prompt)
	if facts == "" {
		facts = strings.TrimSpace(req.CaseFacts)
	}
	facts = prompts.Or(facts, prompts.ExampleCaseFacts, s.useExampleInput)
	if facts == "" {
		return nil, utils.NewBadRequestError("caseFacts or prompt is required")
	}

	reply, done, err := s.complete(ctx, EndpointTimeline, prompts.Timeline(facts))
	if err != nil {
		return []models.TimelineEntry{{Date: TimelineErrorDate, Event: TimelineFailedText}}, nil
	}

	entries, unparsed := parser.ParseTimeline(reply)
	done(unparsed)

	return entries, nil
}

func (s *legalService) GenerateArguments(ctx context.Context, req *models.ArgumentsRequest) ([]models.ArgumentBlock, error) {
	core := prompts.Or(strings.TrimSpace(req.CoreArgument), prompts.ExampleCoreArgument, s.useExampleInput)
	if core == "" {
		return nil, utils.NewBadRequestError("coreArgument is required")
	}
	argumentType := strings.TrimSpace(req.ArgumentType)
	if argumentType == "" {
		argumentType = prompts.Or("", prompts.ExampleArgumentType, s.useExampleInput)
	}
	if argumentType == "" {
		argumentType = "General"
	}

	reply, done, err := s.complete(ctx, EndpointArguments, prompts.Arguments(core, argumentType))
	if err != nil {
		return []models.ArgumentBlock{{
			Argument: ArgumentsFailedText,
			Analysis: parser.NoAnalysis,
			Strategy: parser.NoStrategy,
			Response: parser.NoStrategy,
		}}, nil
	}

	blocks, missing := parser.ParseArguments(reply)
	done(missing)

	return blocks, nil
}

func (s *legalService) RecentCompletions(ctx context.Context, limit int) ([]models.CompletionAudit, error) {
	if s.audit == nil {
		return nil, utils.NewNotFoundError("completion audit log is disabled")
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	entries, err := s.audit.Recent(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to read completion audit", "error", err)
		return nil, utils.NewServiceUnavailableError("Completion audit log is unavailable", err)
	}
	return entries, nil
}

func extractionErrorMessage(err error) string {
	switch {
	case errors.Is(err, extractor.ErrUnsupportedType):
		return "unsupported file type"
	case errors.Is(err, extractor.ErrNoText):
		return "no text could be extracted from the document"
	default:
		return "failed to extract text from the document"
	}
}
