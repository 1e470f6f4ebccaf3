package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTotalIntervals(t *testing.T) {
	assert.Equal(t, 4, TotalIntervals(60, 15*time.Minute))
	assert.Equal(t, 1, TotalIntervals(15, 15*time.Minute))
	assert.Equal(t, 8, TotalIntervals(120, 15*time.Minute))

	// Durations that are not a multiple of the slice round down
	assert.Equal(t, 2, TotalIntervals(44, 15*time.Minute))
}

func TestTotalIntervals_Invalid(t *testing.T) {
	assert.Equal(t, 0, TotalIntervals(0, 15*time.Minute))
	assert.Equal(t, 0, TotalIntervals(-30, 15*time.Minute))
	assert.Equal(t, 0, TotalIntervals(60, 0))
}

func TestIsLastInterval(t *testing.T) {
	assert.False(t, IsLastInterval(3, 60, 15*time.Minute))
	assert.True(t, IsLastInterval(4, 60, 15*time.Minute))

	// Numbers past the end still count as last
	assert.True(t, IsLastInterval(5, 60, 15*time.Minute))

	// Zero-interval workblocks never have a last interval
	assert.False(t, IsLastInterval(1, 0, 15*time.Minute))
}

func TestNormalizeContent(t *testing.T) {
	assert.Equal(t, "writing code", NormalizeContent("  Writing Code  "))
	assert.Equal(t, "writing code", NormalizeContent("WRITING CODE"))
	assert.Equal(t, "", NormalizeContent("   "))
}
