package repository

import (
	"context"

	"FinResearch/internal/domain/models"
)

// ReportStore persists assembled reports per owner.
type ReportStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Save(ctx context.Context, owner string, report models.ResearchReport) error
	List(ctx context.Context, owner string, limit int) ([]models.ReportSummary, error)
	Get(ctx context.Context, owner, id string) (models.ResearchReport, error)
	Delete(ctx context.Context, owner, id string) error
	Close() error
}

// EventPublisher announces delivered reports.
type EventPublisher interface {
	PublishReport(ctx context.Context, evt models.ReportEvent) error
}

type Metrics interface {
	RecordResearch(outcome string)
	RecordBranch(outcome string)
	RecordMarket(outcome string)
	RecordSynthesis(outcome string)
	RecordStoreError(op string)
	RecordLatency(stage string, seconds float64)
}
