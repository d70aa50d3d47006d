package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"FinResearch/internal/domain/models"
	domrepo "FinResearch/internal/domain/repository"
	dsvc "FinResearch/internal/domain/service"
	"FinResearch/pkg/config"
	"FinResearch/pkg/logger"
)

const (
	maxCompanyName   = 200
	defaultListLimit = 10
	maxListLimit     = 100
)

// TickerPattern accepts exchange symbols such as AAPL, BRK.B or RDS-A.
var TickerPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{0,9}([.\-][A-Za-z0-9]{1,4})?$`)

// ValidTicker is the single ticker rule shared by every entry point. An empty
// ticker is valid.
func ValidTicker(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || TickerPattern.MatchString(t)
}

// ValidateRequest rejects malformed input before any external call is made.
func ValidateRequest(req models.ResearchRequest) error {
	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		return &models.ValidationError{Field: "company_name", Reason: "is required"}
	}
	if utf8.RuneCountInString(name) > maxCompanyName {
		return &models.ValidationError{Field: "company_name", Reason: fmt.Sprintf("must be at most %d characters", maxCompanyName)}
	}
	if !ValidTicker(req.Ticker) {
		return &models.ValidationError{Field: "ticker", Reason: "is not a valid symbol"}
	}
	return nil
}

// Publishers fans a delivered-report event out to every configured sink.
type Publishers []domrepo.EventPublisher

func (p Publishers) PublishReport(ctx context.Context, evt models.ReportEvent) error {
	var errs []error
	for _, pub := range p {
		if pub == nil {
			continue
		}
		if err := pub.PublishReport(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ResearchUseCase runs the research pipeline and manages stored reports.
type ResearchUseCase struct {
	planner     *BranchGenerator
	market      *MarketAdapter
	analyzer    *BranchAnalyzer
	synth       *Synthesizer
	assembler   *Assembler
	competitors *CompetitorFinder
	store       domrepo.ReportStore
	pending     *PendingReports
	events      domrepo.EventPublisher
	metrics     domrepo.Metrics
	log         *logger.Logger
}

func NewResearchUseCase(
	cfg config.ResearchConfig,
	ai dsvc.GenerativeAI,
	provider dsvc.MarketDataProvider,
	store domrepo.ReportStore,
	pending *PendingReports,
	events domrepo.EventPublisher,
	metrics domrepo.Metrics,
	l *logger.Logger,
) *ResearchUseCase {
	if l == nil {
		l = logger.Nop()
	}
	planner := NewBranchGenerator(cfg)
	market := NewMarketAdapter(provider, cfg.MarketTimeout, metrics, l)
	uc := &ResearchUseCase{
		planner: planner,
		market:  market,
		analyzer: NewBranchAnalyzer(ai, BranchAnalyzerConfig{
			Timeout:          cfg.BranchTimeout,
			Fallback:         cfg.BranchFallback,
			RequireGrounding: cfg.RequireGrounding,
		}, metrics, l),
		synth:     NewSynthesizer(ai, cfg.SynthesisTimeout, metrics, l),
		assembler: NewAssembler(nil),
		store:     store,
		pending:   pending,
		events:    events,
		metrics:   metrics,
		log:       l,
	}
	if cfg.Competitors.Enabled {
		uc.competitors = NewCompetitorFinder(ai, market, cfg.Competitors.Max, planner.Size()+1, cfg.Competitors.Timeout, l)
	}
	return uc
}

// Run executes one research request end to end without persisting it.
// Only input errors and caller cancellation are returned; every external
// failure degrades the report instead.
func (uc *ResearchUseCase) Run(ctx context.Context, req models.ResearchRequest) (models.ResearchReport, error) {
	if err := ValidateRequest(req); err != nil {
		uc.recordResearch("rejected")
		return models.ResearchReport{}, err
	}
	started := time.Now()
	log := uc.log.With(logger.String("company", strings.TrimSpace(req.CompanyName)), logger.String("ticker", req.Ticker))

	branches, err := uc.planner.Plan(req.CompanyName)
	if err != nil {
		uc.recordResearch("rejected")
		return models.ResearchReport{}, err
	}
	log.Debug("research planned", logger.Int("branches", len(branches)))

	snapCh := make(chan models.MarketSnapshot, 1)
	go func() { snapCh <- uc.market.Fetch(ctx, req.Ticker) }()
	findings := uc.analyzer.Analyze(ctx, branches)
	snap := <-snapCh

	if err := ctx.Err(); err != nil {
		uc.recordResearch("abandoned")
		return models.ResearchReport{}, fmt.Errorf("research abandoned: %w", err)
	}

	syn := uc.synth.Synthesize(ctx, strings.TrimSpace(req.CompanyName), snap, findings)

	var competitive *models.CompetitiveAnalysis
	if uc.competitors != nil && !snap.Synthetic {
		competitive = uc.competitors.Find(ctx, req.Ticker)
	}

	report := uc.assembler.Assemble(req, snap, findings, syn, competitive)
	if uc.metrics != nil {
		uc.metrics.RecordLatency("research", time.Since(started).Seconds())
	}
	if report.Degradation.Degraded() {
		uc.recordResearch("degraded")
	} else {
		uc.recordResearch("ok")
	}
	log.Info("research assembled",
		logger.String("id", report.ID),
		logger.Bool("degraded", report.Degradation.Degraded()),
		logger.Strings("fallback_branches", report.Degradation.FallbackBranches),
		logger.Duration("took", time.Since(started)),
	)
	return report, nil
}

// Create runs the pipeline, saves the report for owner and announces it.
// When saving fails the computed report is still returned together with a
// *models.StoreError, and kept aside for Persist.
func (uc *ResearchUseCase) Create(ctx context.Context, owner string, req models.ResearchRequest) (models.ResearchReport, error) {
	report, err := uc.Run(ctx, req)
	if err != nil {
		return models.ResearchReport{}, err
	}
	if err := uc.save(ctx, owner, report); err != nil {
		return report, err
	}
	uc.deliver(ctx, owner, report)
	return report, nil
}

// Persist retries saving a report whose earlier save failed.
func (uc *ResearchUseCase) Persist(ctx context.Context, owner, id string) (models.ResearchReport, error) {
	if uc.pending == nil {
		return models.ResearchReport{}, models.ErrReportNotFound
	}
	report, err := uc.pending.Get(ctx, owner, id)
	if err != nil {
		return models.ResearchReport{}, err
	}
	if err := uc.save(ctx, owner, report); err != nil {
		return report, err
	}
	if err := uc.pending.Drop(ctx, owner, id); err != nil {
		uc.log.Warn("drop pending report", logger.String("id", id), logger.Error(err))
	}
	uc.deliver(ctx, owner, report)
	return report, nil
}

func (uc *ResearchUseCase) save(ctx context.Context, owner string, report models.ResearchReport) error {
	err := uc.store.Save(ctx, owner, report)
	if err == nil {
		return nil
	}
	uc.recordStoreError("save")
	uc.log.Error("save report failed",
		logger.String("id", report.ID),
		logger.String("owner", owner),
		logger.Error(err),
	)
	if uc.pending == nil {
		return &models.StoreError{Op: "save", Err: err}
	}
	if perr := uc.pending.Put(ctx, owner, report); perr != nil {
		uc.log.Warn("keep pending report", logger.String("id", report.ID), logger.Error(perr))
		return &models.StoreError{Op: "save", Err: err}
	}
	return &models.StoreError{Op: "save", ReportID: report.ID, Err: err}
}

func (uc *ResearchUseCase) deliver(ctx context.Context, owner string, report models.ResearchReport) {
	uc.log.Info("research delivered", logger.String("id", report.ID), logger.String("owner", owner))
	if uc.events == nil {
		return
	}
	evt := models.ReportEvent{
		Event:     models.EventReportDelivered,
		ID:        report.ID,
		Owner:     owner,
		Company:   report.CompanyName,
		Ticker:    report.Ticker,
		Degraded:  report.Degradation.Degraded(),
		Timestamp: report.Timestamp,
	}
	if err := uc.events.PublishReport(ctx, evt); err != nil {
		uc.log.Warn("publish report event", logger.String("id", report.ID), logger.Error(err))
	}
}

// List returns the newest reports of owner first.
func (uc *ResearchUseCase) List(ctx context.Context, owner string, limit int) ([]models.ReportSummary, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	out, err := uc.store.List(ctx, owner, limit)
	if err != nil {
		uc.recordStoreError("list")
		return nil, &models.StoreError{Op: "list", Err: err}
	}
	return out, nil
}

func (uc *ResearchUseCase) Get(ctx context.Context, owner, id string) (models.ResearchReport, error) {
	r, err := uc.store.Get(ctx, owner, id)
	if errors.Is(err, models.ErrReportNotFound) {
		return models.ResearchReport{}, err
	}
	if err != nil {
		uc.recordStoreError("get")
		return models.ResearchReport{}, &models.StoreError{Op: "get", Err: err}
	}
	return r, nil
}

func (uc *ResearchUseCase) Delete(ctx context.Context, owner, id string) error {
	err := uc.store.Delete(ctx, owner, id)
	if errors.Is(err, models.ErrReportNotFound) {
		return err
	}
	if err != nil {
		uc.recordStoreError("delete")
		return &models.StoreError{Op: "delete", Err: err}
	}
	return nil
}

func (uc *ResearchUseCase) recordResearch(outcome string) {
	if uc.metrics != nil {
		uc.metrics.RecordResearch(outcome)
	}
}

func (uc *ResearchUseCase) recordStoreError(op string) {
	if uc.metrics != nil {
		uc.metrics.RecordStoreError(op)
	}
}
