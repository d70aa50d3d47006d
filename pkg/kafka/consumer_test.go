package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedHandler struct {
	calls int
	errs  []error
	panic bool
}

func (h *scriptedHandler) Topic() string { return "jobs" }

func (h *scriptedHandler) Handle(context.Context, []byte) error {
	h.calls++
	if h.panic {
		panic("boom")
	}
	if h.calls <= len(h.errs) {
		return h.errs[h.calls-1]
	}
	return nil
}

func newTestConsumer(t *testing.T) *Consumer {
	t.Helper()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(2, time.Millisecond, 2*time.Millisecond),
	)
	require.NoError(t, err)
	return c
}

func TestConsumerRequiresBrokers(t *testing.T) {
	_, err := NewConsumer()
	assert.Error(t, err)
}

func TestConsumerStartWithoutHandlers(t *testing.T) {
	assert.Error(t, newTestConsumer(t).Start())
}

func TestHandleRetriesTransientErrors(t *testing.T) {
	c := newTestConsumer(t)
	h := &scriptedHandler{errs: []error{errors.New("flaky"), errors.New("flaky")}}

	attempts, err := c.handle(h, kafka.Message{Topic: "jobs"})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestHandleGivesUpAfterRetryMax(t *testing.T) {
	c := newTestConsumer(t)
	fail := errors.New("down")
	h := &scriptedHandler{errs: []error{fail, fail, fail, fail}}

	attempts, err := c.handle(h, kafka.Message{Topic: "jobs"})
	assert.ErrorIs(t, err, fail)
	assert.Equal(t, 3, attempts)
}

func TestHandlePermanentSkipsRetries(t *testing.T) {
	c := newTestConsumer(t)
	h := &scriptedHandler{errs: []error{Permanent(errors.New("bad payload"))}}

	attempts, err := c.handle(h, kafka.Message{Topic: "jobs"})
	assert.True(t, isPermanent(err))
	assert.Equal(t, 1, attempts)
}

func TestHandlePanicIsPermanent(t *testing.T) {
	c := newTestConsumer(t)
	h := &scriptedHandler{panic: true}

	attempts, err := c.handle(h, kafka.Message{Topic: "jobs"})
	assert.True(t, isPermanent(err))
	assert.Equal(t, 1, attempts)
}

func TestRegisterHandlerFirstWins(t *testing.T) {
	c := newTestConsumer(t)
	first, second := &scriptedHandler{}, &scriptedHandler{}
	c.RegisterHandler(first)
	c.RegisterHandler(second)
	assert.Same(t, first, c.handlers["jobs"])
}

func TestPermanentNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}

func TestBackoffWithJitterBounds(t *testing.T) {
	for attempt := 1; attempt <= 10; attempt++ {
		d := backoffWithJitter(100*time.Millisecond, time.Second, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, time.Second)
	}
}

type blockingHandler struct{ started chan struct{} }

func (h *blockingHandler) Topic() string { return "jobs" }

func (h *blockingHandler) Handle(ctx context.Context, _ []byte) error {
	select {
	case h.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestStopCancelsHandlerWithoutDeadLettering(t *testing.T) {
	c := newTestConsumer(t)
	h := &blockingHandler{started: make(chan struct{}, 1)}

	done := make(chan error, 1)
	go func() {
		_, err := c.handle(h, kafka.Message{Topic: "jobs"})
		done <- err
	}()

	<-h.started
	require.NoError(t, c.Stop(context.Background()))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, isPermanent(err))
		assert.True(t, c.interrupted(err))
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not cancelled by Stop")
	}
}

func TestInterruptedOnlyWhileStopping(t *testing.T) {
	c := newTestConsumer(t)
	assert.False(t, c.interrupted(context.Canceled))

	require.NoError(t, c.Stop(context.Background()))
	assert.True(t, c.interrupted(context.Canceled))
	assert.False(t, c.interrupted(Permanent(errors.New("bad payload"))))
	assert.False(t, c.interrupted(nil))
}
