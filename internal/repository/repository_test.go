package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/legal-assistant-api/internal/db"
	"github.com/BerylCAtieno/legal-assistant-api/internal/models"
)

func newTestRepository(t *testing.T) Repository {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "audit.db")
	database, err := db.Open(dbFile)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return NewRepository(database)
}

func TestRecordAndRecent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []*models.CompletionAudit{
		{ID: "1", Endpoint: "chat", Model: "gpt-test", Status: models.CompletionOK, LatencyMS: 120, CreatedAt: base},
		{ID: "2", Endpoint: "predict-outcome", Model: "gpt-test", Status: models.CompletionParseMiss, MissingLabels: "Confidence", LatencyMS: 340, CreatedAt: base.Add(time.Minute)},
		{ID: "3", Endpoint: "generate-timeline", Model: "gpt-test", Status: models.CompletionServiceFailure, Error: "status 503", LatencyMS: 15, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		require.NoError(t, repo.Record(ctx, e))
	}

	got, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, models.CompletionServiceFailure, got[0].Status)
	assert.Equal(t, "status 503", got[0].Error)
	assert.True(t, got[0].CreatedAt.Equal(base.Add(2*time.Minute)))

	assert.Equal(t, "2", got[1].ID)
	assert.Equal(t, "Confidence", got[1].MissingLabels)
	assert.Equal(t, int64(340), got[1].LatencyMS)
}

func TestRecordDefaultsTimestamp(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	entry := &models.CompletionAudit{ID: "x", Endpoint: "chat", Model: "m", Status: models.CompletionOK}
	require.NoError(t, repo.Record(ctx, entry))
	assert.False(t, entry.CreatedAt.IsZero())

	got, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestRecentEmpty(t *testing.T) {
	got, err := newTestRepository(t).Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
