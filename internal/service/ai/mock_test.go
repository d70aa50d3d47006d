package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockAnswersEachPromptShape(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	out, err := m.Complete(ctx, "Research this.\nTopic: Risk factors\nReturn JSON.", true)
	require.NoError(t, err)
	assert.True(t, out.Grounded)
	assert.Contains(t, out.Text, `"findings"`)
	assert.Contains(t, out.Text, "Risk factors")

	out, err = m.Complete(ctx, `reply as {"full_report": "..."}`, false)
	require.NoError(t, err)
	assert.Contains(t, out.Text, "full_report")

	out, err = m.Complete(ctx, `list {"global_competitors": []}`, true)
	require.NoError(t, err)
	assert.Contains(t, out.Text, "national_competitors")
}

func TestMockHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMock().Complete(ctx, "x", false)
	assert.ErrorIs(t, err, context.Canceled)
}
