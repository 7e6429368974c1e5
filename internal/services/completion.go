package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BerylCAtieno/legal-assistant-api/internal/completion"
	"github.com/BerylCAtieno/legal-assistant-api/internal/models"
	"github.com/BerylCAtieno/legal-assistant-api/internal/prompts"
	"github.com/BerylCAtieno/legal-assistant-api/internal/utils"
)

// parsedFunc reports the labels the parser could not find in a reply.
type parsedFunc func(missing []string)

// complete performs one bounded completion call. Service failures are logged
// and audited here; on success the caller reports parse misses through the
// returned parsedFunc.
func (s *legalService) complete(ctx context.Context, endpoint string, p prompts.Prompt) (string, parsedFunc, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.client.Complete(callCtx, p.Request(s.model))
	if err == nil && strings.TrimSpace(reply) == "" {
		err = fmt.Errorf("%w: %w", completion.ErrServiceUnavailable, completion.ErrNoChoices)
	}
	latency := time.Since(start)
	log := s.logger.With("endpoint", endpoint, "model", s.model)

	if err != nil {
		class := completion.Classify(err)
		log.Error("Completion service failure",
			"class", class,
			"latency_ms", latency.Milliseconds(),
			"error", err)
		s.record(ctx, &models.CompletionAudit{
			Endpoint:  endpoint,
			Status:    models.CompletionServiceFailure,
			Error:     fmt.Sprintf("%s: %v", class, err),
			LatencyMS: latency.Milliseconds(),
		})
		return "", nil, err
	}

	done := func(missing []string) {
		entry := &models.CompletionAudit{
			Endpoint:  endpoint,
			Status:    models.CompletionOK,
			LatencyMS: latency.Milliseconds(),
		}
		if len(missing) > 0 {
			log.Warn("Model reply missing labels",
				"missing", missing,
				"reply_length", len(reply))
			entry.Status = models.CompletionParseMiss
			entry.MissingLabels = strings.Join(missing, ", ")
		} else {
			log.Info("Completion parsed", "latency_ms", latency.Milliseconds())
		}
		s.record(ctx, entry)
	}
	return reply, done, nil
}

// record writes an audit entry. Audit failures never affect the response.
func (s *legalService) record(ctx context.Context, entry *models.CompletionAudit) {
	if s.audit == nil {
		return
	}
	entry.ID = utils.GenerateID()
	entry.Model = s.model
	entry.CreatedAt = time.Now().UTC()

	if err := s.audit.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("Failed to record completion audit", "endpoint", entry.Endpoint, "error", err)
	}
}
