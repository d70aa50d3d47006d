package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"FinResearch/internal/domain/models"
	"FinResearch/pkg/logger"
	pkgkafka "FinResearch/pkg/kafka"
)

const anonymousOwner = "anonymous"

// KafkaResearchHandler runs research jobs received from Kafka.
type KafkaResearchHandler struct {
	topic string
	uc    *ResearchUseCase
	log   *logger.Logger
}

func NewKafkaResearchHandler(topic string, uc *ResearchUseCase, l *logger.Logger) *KafkaResearchHandler {
	if l == nil {
		l = logger.Nop()
	}
	return &KafkaResearchHandler{topic: topic, uc: uc, log: l}
}

func (h *KafkaResearchHandler) Topic() string { return h.topic }

// Handle expects {"owner","company_name","ticker"}. Malformed jobs are dropped;
// a failed save is retried once from the pending copy before the job is dead-lettered.
// Only store failures are permanent.
func (h *KafkaResearchHandler) Handle(ctx context.Context, b []byte) error {
	var job models.ResearchJob
	if err := json.Unmarshal(b, &job); err != nil {
		h.log.Warn("discarding malformed research job", logger.Error(err))
		return nil
	}
	owner := strings.TrimSpace(job.Owner)
	if owner == "" {
		owner = anonymousOwner
	}

	report, err := h.uc.Create(ctx, owner, models.ResearchRequest{CompanyName: job.CompanyName, Ticker: job.Ticker})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrInvalidRequest):
		h.log.Warn("discarding invalid research job", logger.String("owner", owner), logger.Error(err))
		return nil
	}

	var se *models.StoreError
	if !errors.As(err, &se) {
		// cancellation and other transient failures go back to the consumer for retry
		return err
	}
	if se.ReportID != "" {
		if _, err = h.uc.Persist(ctx, owner, report.ID); err == nil {
			return nil
		}
		if !errors.As(err, &se) {
			return err
		}
	}
	return pkgkafka.Permanent(err)
}

var _ pkgkafka.MessageHandler = (*KafkaResearchHandler)(nil)
