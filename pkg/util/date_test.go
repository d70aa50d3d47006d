package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestISOTimestamp(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 890_000_000, time.FixedZone("X", 2*3600))
	assert.Equal(t, "2025-03-04T03:06:07.890Z", ISOTimestamp(ts))
}

func TestToday(t *testing.T) {
	assert.Equal(t, "2025-01-31", Today(time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)))
}
