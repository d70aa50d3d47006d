package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"FinResearch/internal/domain/models"
	"FinResearch/internal/repository"
	"FinResearch/internal/service/cache"
	pkgkafka "FinResearch/pkg/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaHandlerCreatesReport(t *testing.T) {
	store := repository.NewMemoryReportStore()
	uc := NewResearchUseCase(testResearchConfig(), researchAI(), acmeMarket(), store, nil, nil, nil, nil)
	h := NewKafkaResearchHandler("research.requests", uc, nil)

	assert.Equal(t, "research.requests", h.Topic())
	require.NoError(t, h.Handle(context.Background(), []byte(`{"owner":"alice","company_name":"Acme Corp","ticker":"ACME"}`)))

	rows, err := store.List(context.Background(), "alice", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme Corp", rows[0].CompanyName)
}

func TestKafkaHandlerDefaultsOwner(t *testing.T) {
	store := repository.NewMemoryReportStore()
	uc := NewResearchUseCase(testResearchConfig(), researchAI(), acmeMarket(), store, nil, nil, nil, nil)
	h := NewKafkaResearchHandler("t", uc, nil)

	require.NoError(t, h.Handle(context.Background(), []byte(`{"company_name":"Acme Corp"}`)))
	rows, err := store.List(context.Background(), "anonymous", 10)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestKafkaHandlerDropsBadJobs(t *testing.T) {
	ai := researchAI()
	uc := NewResearchUseCase(testResearchConfig(), ai, acmeMarket(), repository.NewMemoryReportStore(), nil, nil, nil, nil)
	h := NewKafkaResearchHandler("t", uc, nil)

	assert.NoError(t, h.Handle(context.Background(), []byte(`not json`)))
	assert.NoError(t, h.Handle(context.Background(), []byte(`{"company_name":""}`)))
	assert.Zero(t, ai.calls.Load())
}

func TestKafkaHandlerStoreFailureIsPermanent(t *testing.T) {
	store := &flakyStore{MemoryReportStore: repository.NewMemoryReportStore()}
	store.setFailing(true)
	pending := NewPendingReports(cache.NewTTLCache(), time.Hour)
	uc := NewResearchUseCase(testResearchConfig(), researchAI(), acmeMarket(), store, pending, nil, nil, nil)
	h := NewKafkaResearchHandler("t", uc, nil)

	err := h.Handle(context.Background(), []byte(`{"owner":"alice","company_name":"Acme Corp"}`))
	require.Error(t, err)
	var pe *pkgkafka.PermanentError
	assert.True(t, errors.As(err, &pe))
	assert.True(t, models.IsStoreError(err))
}

func TestKafkaHandlerCancellationIsRetryable(t *testing.T) {
	store := repository.NewMemoryReportStore()
	uc := NewResearchUseCase(testResearchConfig(), researchAI(), acmeMarket(), store, nil, nil, nil, nil)
	h := NewKafkaResearchHandler("t", uc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.Handle(ctx, []byte(`{"owner":"alice","company_name":"Acme Corp"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	var pe *pkgkafka.PermanentError
	assert.False(t, errors.As(err, &pe))
	assert.False(t, models.IsStoreError(err))

	rows, err := store.List(context.Background(), "alice", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
