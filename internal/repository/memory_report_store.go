package repository

import (
	"context"
	"sort"
	"sync"

	"FinResearch/internal/domain/models"
	"FinResearch/internal/domain/repository"
)

type memEntry struct {
	owner  string
	seq    uint64
	report models.ResearchReport
}

// MemoryReportStore keeps reports in process memory. Reports are copied in and out.
type MemoryReportStore struct {
	mu      sync.RWMutex
	seq     uint64
	reports map[string]memEntry
}

func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{reports: make(map[string]memEntry)}
}

func (s *MemoryReportStore) Init(context.Context) error { return nil }

func (s *MemoryReportStore) Save(_ context.Context, owner string, r models.ResearchReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.reports[r.ID] = memEntry{owner: owner, seq: s.seq, report: r.Clone()}
	return nil
}

func (s *MemoryReportStore) List(_ context.Context, owner string, limit int) ([]models.ReportSummary, error) {
	s.mu.RLock()
	entries := make([]memEntry, 0, len(s.reports))
	for _, e := range s.reports {
		if e.owner == owner {
			entries = append(entries, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		ti, tj := entries[i].report.Timestamp, entries[j].report.Timestamp
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return entries[i].seq > entries[j].seq
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]models.ReportSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.report.Summary())
	}
	return out, nil
}

func (s *MemoryReportStore) Get(_ context.Context, owner, id string) (models.ResearchReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.reports[id]
	if !ok || e.owner != owner {
		return models.ResearchReport{}, models.ErrReportNotFound
	}
	return e.report.Clone(), nil
}

func (s *MemoryReportStore) Delete(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.reports[id]
	if !ok || e.owner != owner {
		return models.ErrReportNotFound
	}
	delete(s.reports, id)
	return nil
}

func (s *MemoryReportStore) Close() error { return nil }

var _ repository.ReportStore = (*MemoryReportStore)(nil)
