package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const claudeMessage = `{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "claude-test",
  "content": [
    {"type": "thinking", "thinking": "hidden", "signature": "s"},
    {"type": "text", "text": "first "},
    {"type": "text", "text": "second"}
  ],
  "stop_reason": "end_turn",
  "usage": {"input_tokens": 3, "output_tokens": 4}
}`

func TestClaudeConcatenatesTextBlocks(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(claudeMessage))
	}))
	defer srv.Close()

	c := NewClaude("key", "claude-test", 256, option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	out, err := c.Complete(context.Background(), "q", true)
	require.NoError(t, err)
	assert.Equal(t, "/v1/messages", path)
	assert.Equal(t, "first second", out.Text)
	assert.False(t, out.Grounded)
}

func TestClaudeSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	}))
	defer srv.Close()

	c := NewClaude("key", "claude-test", 256, option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	_, err := c.Complete(context.Background(), "q", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claude messages")
}
