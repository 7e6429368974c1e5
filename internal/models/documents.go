package models

import (
	"fmt"
	"time"
)

// UploadedDocument is a stored upload owned by a single request.
type UploadedDocument struct {
	Path              string
	DeclaredExtension string
	OriginalName      string
}

type ChatRequest struct {
	Prompt  string `json:"prompt"`
	Message string `json:"message"`
}

type ChatResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

type DocumentAnalysis struct {
	Language  string   `json:"language,omitempty"`
	Summary   string   `json:"summary"`
	MLClauses []Clause `json:"ml_clauses,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Summary is the parsed reply of the summarization prompt.
type Summary struct {
	Language string
	Summary  string
}

// Clause is one record produced by the external clause classifier.
type Clause struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence,omitempty"`
}

type PredictOutcomeRequest struct {
	CaseType     string `json:"caseType"`
	Jurisdiction string `json:"jurisdiction"`
	Summary      string `json:"summary"`
}

type Outcome struct {
	Outcome    string `json:"outcome"`
	Reasoning  string `json:"reasoning"`
	Confidence string `json:"confidence"`
	Error      string `json:"error,omitempty"`
}

// String renders the record in the label template the model is asked to follow.
func (o Outcome) String() string {
	return fmt.Sprintf("Outcome: %s\nReasoning: %s\nConfidence: %s", o.Outcome, o.Reasoning, o.Confidence)
}

type TimelineRequest struct {
	Prompt    string `json:"prompt"`
	CaseFacts string `json:"caseFacts"`
}

type TimelineEntry struct {
	Date  string `json:"date"`
	Event string `json:"event"`
}

type ArgumentsRequest struct {
	CoreArgument string `json:"coreArgument"`
	ArgumentType string `json:"argumentType"`
}

// ArgumentBlock mirrors Strategy into Response so clients of either field name work.
type ArgumentBlock struct {
	Argument string `json:"argument"`
	Analysis string `json:"analysis"`
	Strategy string `json:"strategy"`
	Response string `json:"response"`
}

// Completion statuses recorded in the audit log.
const (
	CompletionOK             = "ok"
	CompletionServiceFailure = "service_failure"
	CompletionParseMiss      = "parse_miss"
)

type CompletionAudit struct {
	ID            string    `json:"id" db:"id"`
	Endpoint      string    `json:"endpoint" db:"endpoint"`
	Model         string    `json:"model" db:"model"`
	Status        string    `json:"status" db:"status"`
	Error         string    `json:"error,omitempty" db:"error"`
	MissingLabels string    `json:"missing_labels,omitempty" db:"missing_labels"`
	LatencyMS     int64     `json:"latency_ms" db:"latency_ms"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
