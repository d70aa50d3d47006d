package repository

import (
	"context"
	"errors"

	"FinResearch/internal/domain/models"
	domrepo "FinResearch/internal/domain/repository"
	pkgch "FinResearch/pkg/clickhouse"
	applogger "FinResearch/pkg/logger"
)

// ClickHouseReportStore keeps reports in a MergeTree table. It owns the client.
type ClickHouseReportStore struct {
	*SQLReportStore
	client *pkgch.Client
	l      *applogger.Logger
}

func NewClickHouseReportStore(client *pkgch.Client) *ClickHouseReportStore {
	return &ClickHouseReportStore{
		SQLReportStore: NewSQLReportStore(client.DB(), ClickHouseDialect),
		client:         client,
	}
}

// SetLogger injects a structured logger.
func (s *ClickHouseReportStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *ClickHouseReportStore) Init(ctx context.Context) error {
	if err := s.client.Health(ctx); err != nil {
		return err
	}
	return s.SQLReportStore.Init(ctx)
}

func (s *ClickHouseReportStore) Save(ctx context.Context, owner string, r models.ResearchReport) error {
	err := s.SQLReportStore.Save(ctx, owner, r)
	s.logErr("save", r.ID, err)
	return err
}

func (s *ClickHouseReportStore) List(ctx context.Context, owner string, limit int) ([]models.ReportSummary, error) {
	out, err := s.SQLReportStore.List(ctx, owner, limit)
	s.logErr("list", "", err)
	return out, err
}

func (s *ClickHouseReportStore) Get(ctx context.Context, owner, id string) (models.ResearchReport, error) {
	r, err := s.SQLReportStore.Get(ctx, owner, id)
	s.logErr("get", id, err)
	return r, err
}

func (s *ClickHouseReportStore) Delete(ctx context.Context, owner, id string) error {
	err := s.SQLReportStore.Delete(ctx, owner, id)
	s.logErr("delete", id, err)
	return err
}

func (s *ClickHouseReportStore) Close() error { return s.client.Close() }

func (s *ClickHouseReportStore) logErr(op, id string, err error) {
	if s.l == nil || err == nil || errors.Is(err, models.ErrReportNotFound) {
		return
	}
	s.l.Error("clickhouse "+op+" error",
		applogger.String("table", reportsTable),
		applogger.String("id", id),
		applogger.Error(err),
	)
}

var _ domrepo.ReportStore = (*ClickHouseReportStore)(nil)
