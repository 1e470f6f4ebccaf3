package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quarterlog/quarterlog/internal/domain"
)

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "0:05", formatCountdown(5*time.Second))
	assert.Equal(t, "1:00", formatCountdown(time.Minute))
	assert.Equal(t, "10:30", formatCountdown(10*time.Minute+30*time.Second))
	assert.Equal(t, "0:00", formatCountdown(0))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10!", truncate("exactly10!", 10))
	assert.Equal(t, "long phra…", truncate("long phrase here", 10))
	assert.Equal(t, "x", truncate("xyz", 1))
}

func TestRenderTimeline_Empty(t *testing.T) {
	out := renderTimeline(nil)

	assert.Contains(t, out, "no intervals recorded")
}

func TestRenderTimeline_Entries(t *testing.T) {
	start := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	end := start.Add(15 * time.Minute)
	timeline := []domain.TimelineEntry{
		{Number: 1, StartTime: start, EndTime: &end, Content: "coding"},
		{Number: 2, StartTime: end, Content: ""},
		{Number: 3, StartTime: end.Add(15 * time.Minute), Cancelled: true},
	}

	out := renderTimeline(timeline)
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "09:00–09:15")
	assert.Contains(t, lines[0], "coding")
	assert.Contains(t, lines[1], "(pending)")
	assert.Contains(t, lines[1], "…")
	assert.Contains(t, lines[2], "(cancelled)")
}

func TestRenderTimeline_AwaySentinel(t *testing.T) {
	start := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	out := renderTimeline([]domain.TimelineEntry{
		{Number: 1, StartTime: start, Content: domain.AwayContent},
	})

	assert.Contains(t, out, domain.AwayContent)
}

func TestRenderActivityList(t *testing.T) {
	out := renderActivityList([]domain.ActivityEntry{
		{Content: "coding", TotalMinutes: 30, Percentage: 66.7},
		{Content: "email", TotalMinutes: 15, Percentage: 33.3},
	})

	assert.Contains(t, out, "coding")
	assert.Contains(t, out, "66.7%")
	assert.Contains(t, out, "30m")
	assert.Contains(t, out, "email")
}

func TestRenderFrequency(t *testing.T) {
	out := renderFrequency([]domain.PhraseCount{
		{Phrase: "standup", Count: 2},
	})

	assert.Contains(t, out, "standup")
	assert.Contains(t, out, "2×")
}
