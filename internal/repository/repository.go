package repository

import (
	"context"
	"time"

	"github.com/BerylCAtieno/legal-assistant-api/internal/models"
	"github.com/jmoiron/sqlx"
)

// Repository is the completion audit log.
type Repository interface {
	Record(ctx context.Context, entry *models.CompletionAudit) error
	Recent(ctx context.Context, limit int) ([]models.CompletionAudit, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Record(ctx context.Context, entry *models.CompletionAudit) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO completion_audit (id, endpoint, model, status, error, missing_labels, latency_ms, created_at)
		VALUES (:id, :endpoint, :model, :status, :error, :missing_labels, :latency_ms, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, entry)
	return err
}

func (r *repository) Recent(ctx context.Context, limit int) ([]models.CompletionAudit, error) {
	query := `
		SELECT id, endpoint, model, status, error, missing_labels, latency_ms, created_at
		FROM completion_audit
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	entries := []models.CompletionAudit{}
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, err
	}

	return entries, nil
}
