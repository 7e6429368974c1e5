// Package classifier wraps the external clause-classification process.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BerylCAtieno/legal-assistant-api/internal/models"
	"github.com/BerylCAtieno/legal-assistant-api/internal/utils"
)

// Classifier labels the clauses of a document. Implementations fail closed:
// any problem yields an empty list, never an error.
type Classifier interface {
	Classify(ctx context.Context, text string) []models.Clause
}

// Noop is used when no classifier is configured.
type Noop struct{}

func (Noop) Classify(context.Context, string) []models.Clause { return nil }

// ProcessClassifier runs a command, writes the document text to its stdin and
// reads clauses as JSON from its stdout.
type ProcessClassifier struct {
	command []string
	timeout time.Duration
	logger  *utils.Logger
}

func NewProcessClassifier(command []string, timeout time.Duration, logger *utils.Logger) *ProcessClassifier {
	return &ProcessClassifier{command: command, timeout: timeout, logger: logger}
}

func (p *ProcessClassifier) Classify(ctx context.Context, text string) []models.Clause {
	if len(p.command) == 0 {
		return nil
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, p.command[0], p.command[1:]...)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children of a killed command may keep stdout open.
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		p.logger.Warn("Clause classifier failed",
			"command", p.command[0],
			"error", err,
			"stderr", truncate(stderr.String(), 500))
		return []models.Clause{}
	}

	clauses, err := decodeClauses(stdout.Bytes())
	if err != nil {
		p.logger.Warn("Clause classifier returned malformed output",
			"command", p.command[0],
			"error", err,
			"output", truncate(stdout.String(), 500))
		return []models.Clause{}
	}
	return clauses
}

// decodeClauses accepts a bare array or an object with a "clauses" array.
func decodeClauses(out []byte) ([]models.Clause, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("empty output")
	}

	var clauses []models.Clause
	if out[0] == '[' {
		if err := json.Unmarshal(out, &clauses); err != nil {
			return nil, err
		}
		return clauses, nil
	}

	var wrapped struct {
		Clauses *[]models.Clause `json:"clauses"`
	}
	if err := json.Unmarshal(out, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Clauses == nil {
		return nil, fmt.Errorf(`missing "clauses" field`)
	}
	return *wrapped.Clauses, nil
}

// truncate caps s at n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
