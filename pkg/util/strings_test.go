package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abc", 2))
	assert.Equal(t, "héllo", Truncate("héllo", 0))
}

func TestCollapseSpaces(t *testing.T) {
	in := "  a   b\t c \n\n\n d  \r\n"
	assert.Equal(t, "a b c\n\nd", CollapseSpaces(in))
}
