package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderHook struct {
	name   string
	events *[]string
	err    error
}

func (h orderHook) BeforeHandle(ctx context.Context, topic string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
	*h.events = append(*h.events, "before:"+h.name)
	return ctx, km, append(data, h.name...), h.err
}

func (h orderHook) AfterHandle(context.Context, string, kafka.Message, []byte, error) {
	*h.events = append(*h.events, "after:"+h.name)
}

func (h orderHook) OnError(context.Context, string, kafka.Message, []byte, error) {
	*h.events = append(*h.events, "error:"+h.name)
}

type panicHook struct{ NoopHook }

func (panicHook) BeforeHandle(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
	panic("hook bug")
}

func TestHookChainOrder(t *testing.T) {
	var events []string
	chain := NewHookChain(orderHook{name: "a", events: &events}, nil, orderHook{name: "b", events: &events})

	_, _, data, err := chain.BeforeHandle(context.Background(), "jobs", kafka.Message{}, []byte(">"))
	require.NoError(t, err)
	assert.Equal(t, ">ab", string(data))

	chain.AfterHandle(context.Background(), "jobs", kafka.Message{}, data, nil)
	assert.Equal(t, []string{"before:a", "before:b", "after:b", "after:a"}, events)
}

func TestHookChainStopsOnError(t *testing.T) {
	var events []string
	chain := NewHookChain(
		orderHook{name: "a", events: &events, err: errors.New("reject")},
		orderHook{name: "b", events: &events},
	)

	_, _, _, err := chain.BeforeHandle(context.Background(), "jobs", kafka.Message{}, nil)
	assert.Error(t, err)
	assert.Equal(t, []string{"before:a", "error:a", "error:b"}, events)
}

func TestHookChainRecoversPanics(t *testing.T) {
	chain := NewHookChain(panicHook{})
	_, _, _, err := chain.BeforeHandle(context.Background(), "jobs", kafka.Message{}, nil)
	assert.ErrorContains(t, err, "hook panic")
}

func TestLoggingHookTraceID(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: "trace_id", Value: []byte("t-1")}}}
	ctx, _, _, err := LoggingHook{}.BeforeHandle(context.Background(), "jobs", msg, nil)
	require.NoError(t, err)
	assert.Equal(t, "t-1", TraceID(ctx))
	assert.Empty(t, TraceID(context.Background()))
}
