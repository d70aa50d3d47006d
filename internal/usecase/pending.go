package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FinResearch/internal/domain/models"
	"FinResearch/internal/service/cache"
)

// PendingReports holds computed reports whose save failed, so persistence can be retried
// without rerunning the pipeline.
type PendingReports struct {
	cache cache.BytesCache
	ttl   time.Duration
}

func NewPendingReports(c cache.BytesCache, ttl time.Duration) *PendingReports {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PendingReports{cache: c, ttl: ttl}
}

func pendingKey(owner, id string) string { return "pending:" + owner + ":" + id }

func (p *PendingReports) Put(ctx context.Context, owner string, r models.ResearchReport) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode pending report: %w", err)
	}
	return p.cache.SetBytes(ctx, pendingKey(owner, r.ID), b, p.ttl)
}

// Get returns the pending report or models.ErrReportNotFound.
func (p *PendingReports) Get(ctx context.Context, owner, id string) (models.ResearchReport, error) {
	b, ok, err := p.cache.GetBytes(ctx, pendingKey(owner, id))
	if err != nil {
		return models.ResearchReport{}, err
	}
	if !ok {
		return models.ResearchReport{}, models.ErrReportNotFound
	}
	var r models.ResearchReport
	if err := json.Unmarshal(b, &r); err != nil {
		return models.ResearchReport{}, fmt.Errorf("decode pending report: %w", err)
	}
	return r, nil
}

func (p *PendingReports) Drop(ctx context.Context, owner, id string) error {
	return p.cache.Delete(ctx, pendingKey(owner, id))
}
