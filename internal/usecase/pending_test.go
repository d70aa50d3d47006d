package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinResearch/internal/domain/models"
	"FinResearch/internal/service/cache"
)

func TestPendingReportsRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewPendingReports(cache.NewTTLCache(), time.Minute)
	report := models.ResearchReport{
		ID:          "8a1f8f5e-2b7c-4a39-9c39-6f2f1b0f4c11",
		CompanyName: "Acme Corp",
		Ticker:      "ACME",
		Timestamp:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Data:        models.ReportData{Analysis: "narrative"},
	}

	require.NoError(t, p.Put(ctx, "alice", report))

	got, err := p.Get(ctx, "alice", report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.ID)
	assert.Equal(t, "Acme Corp", got.CompanyName)
	assert.Equal(t, "narrative", got.Data.Analysis)
	assert.True(t, report.Timestamp.Equal(got.Timestamp))

	_, err = p.Get(ctx, "bob", report.ID)
	assert.ErrorIs(t, err, models.ErrReportNotFound)

	require.NoError(t, p.Drop(ctx, "alice", report.ID))
	_, err = p.Get(ctx, "alice", report.ID)
	assert.ErrorIs(t, err, models.ErrReportNotFound)
}
