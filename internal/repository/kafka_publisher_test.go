package repository

import (
	"context"
	"testing"

	"FinResearch/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	topic string
	key   []byte
	value interface{}
}

type fakeProducer struct{ msgs []capturedMessage }

func (p *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.msgs = append(p.msgs, capturedMessage{topic: topic, key: key, value: value})
	return nil
}

func TestKafkaReportPublisherKeysByOwner(t *testing.T) {
	p := &fakeProducer{}
	pub := NewKafkaReportPublisher(p, "research.reports")

	evt := models.ReportEvent{Event: models.EventReportDelivered, ID: "r1", Owner: "alice"}
	require.NoError(t, pub.PublishReport(context.Background(), evt))

	require.Len(t, p.msgs, 1)
	assert.Equal(t, "research.reports", p.msgs[0].topic)
	assert.Equal(t, []byte("alice"), p.msgs[0].key)
	assert.Equal(t, evt, p.msgs[0].value)
}
