package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"FinResearch/internal/domain/models"
	"FinResearch/internal/domain/repository"
	"FinResearch/internal/service/cache"
	"FinResearch/pkg/logger"
)

// CachedReportStore serves Get from a byte cache in front of another store.
// Cache failures are logged and fall through to the backing store.
//
// A Get that read the backing store before a Delete finished must not refill
// the cache afterwards; deletes bump gen and read fills are dropped when gen moved.
type CachedReportStore struct {
	next  repository.ReportStore
	cache cache.BytesCache
	ttl   time.Duration
	log   *logger.Logger

	mu  sync.RWMutex
	gen uint64
}

func NewCachedReportStore(next repository.ReportStore, c cache.BytesCache, ttl time.Duration, l *logger.Logger) *CachedReportStore {
	if l == nil {
		l = logger.Nop()
	}
	return &CachedReportStore{next: next, cache: c, ttl: ttl, log: l}
}

func reportKey(owner, id string) string { return "report:" + owner + ":" + id }

func (s *CachedReportStore) Init(ctx context.Context) error { return s.next.Init(ctx) }

func (s *CachedReportStore) Save(ctx context.Context, owner string, r models.ResearchReport) error {
	if err := s.next.Save(ctx, owner, r); err != nil {
		return err
	}
	s.put(ctx, owner, r)
	return nil
}

func (s *CachedReportStore) List(ctx context.Context, owner string, limit int) ([]models.ReportSummary, error) {
	return s.next.List(ctx, owner, limit)
}

func (s *CachedReportStore) Get(ctx context.Context, owner, id string) (models.ResearchReport, error) {
	b, ok, err := s.cache.GetBytes(ctx, reportKey(owner, id))
	if err != nil {
		s.log.Warn("report cache get", logger.String("id", id), logger.Error(err))
	}
	if ok {
		var r models.ResearchReport
		if err := json.Unmarshal(b, &r); err == nil {
			return r, nil
		}
	}
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	r, err := s.next.Get(ctx, owner, id)
	if err != nil {
		return models.ResearchReport{}, err
	}

	s.mu.RLock()
	if s.gen == gen {
		s.put(ctx, owner, r)
	}
	s.mu.RUnlock()
	return r, nil
}

// Delete removes the report from the backing store first, then from the cache.
func (s *CachedReportStore) Delete(ctx context.Context, owner, id string) error {
	err := s.next.Delete(ctx, owner, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if cerr := s.cache.Delete(ctx, reportKey(owner, id)); cerr != nil {
		s.log.Warn("report cache delete", logger.String("id", id), logger.Error(cerr))
	}
	return err
}

func (s *CachedReportStore) Close() error { return s.next.Close() }

func (s *CachedReportStore) put(ctx context.Context, owner string, r models.ResearchReport) {
	b, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := s.cache.SetBytes(ctx, reportKey(owner, r.ID), b, s.ttl); err != nil {
		s.log.Warn("report cache set", logger.String("id", r.ID), logger.Error(err))
	}
}

var _ repository.ReportStore = (*CachedReportStore)(nil)
