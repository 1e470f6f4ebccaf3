package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/quarterlog/quarterlog/internal/domain"
)

// barPalette cycles through accent colors for activity bars
var barPalette = []Color{"99", "86", "214", "141", "46", "33"}

// renderTimeline renders one line per interval with its entry
func renderTimeline(timeline []domain.TimelineEntry) string {
	if len(timeline) == 0 {
		return mutedStyle.Render("no intervals recorded")
	}

	var b strings.Builder
	for i, entry := range timeline {
		if i > 0 {
			b.WriteString("\n")
		}

		window := fmt.Sprintf("%s–%s",
			entry.StartTime.Format("15:04"),
			endLabel(entry))

		content := entry.Content
		style := recordedStyle
		switch {
		case entry.Cancelled:
			content = "(cancelled)"
			style = cancelledStyle
		case content == domain.AwayContent:
			style = awayStyle
		case content == "":
			content = "(pending)"
			style = mutedStyle
		}

		b.WriteString(fmt.Sprintf("%s %s %s",
			labelStyle.Render(fmt.Sprintf("#%-2d", entry.Number)),
			mutedStyle.Render(window),
			style.Render(content)))
	}
	return b.String()
}

func endLabel(entry domain.TimelineEntry) string {
	if entry.EndTime == nil {
		return "…"
	}
	return entry.EndTime.Format("15:04")
}

// renderActivityChart draws a bar chart of minutes per activity
func renderActivityChart(activity []domain.ActivityEntry, width int) string {
	if len(activity) == 0 {
		return mutedStyle.Render("no activity recorded")
	}

	chartWidth := width
	if chartWidth < 20 {
		chartWidth = 20
	}
	if chartWidth > 60 {
		chartWidth = 60
	}

	chart := barchart.New(chartWidth, 10)

	var bars []barchart.BarData
	for i, entry := range activity {
		if i >= 6 {
			break // Top activities only, the list below has the rest
		}
		style := lipgloss.NewStyle().Foreground(barPalette[i%len(barPalette)])
		bars = append(bars, barchart.BarData{
			Label: truncate(entry.Content, 10),
			Values: []barchart.BarValue{{
				Name:  entry.Content,
				Value: float64(entry.TotalMinutes),
				Style: style,
			}},
		})
	}

	chart.PushAll(bars)
	chart.Draw()
	return chart.View()
}

// renderActivityList renders the full breakdown with percentages
func renderActivityList(activity []domain.ActivityEntry) string {
	var b strings.Builder
	for i, entry := range activity {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("%s %s %s",
			valueStyle.Render(fmt.Sprintf("%3dm", entry.TotalMinutes)),
			mutedStyle.Render(fmt.Sprintf("%5.1f%%", entry.Percentage)),
			entry.Content))
	}
	return b.String()
}

// renderFrequency renders phrase counts
func renderFrequency(frequency []domain.PhraseCount) string {
	var b strings.Builder
	for i, pc := range frequency {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("%s %s",
			valueStyle.Render(fmt.Sprintf("%2d×", pc.Count)),
			pc.Phrase))
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

// renderWorkblockSummary renders the full post-workblock summary
func renderWorkblockSummary(workblock *domain.Workblock, viz *domain.WorkblockVisualization, width int) string {
	status := string(workblock.Status)
	header := titleStyle.Render("Workblock summary") + " " +
		mutedStyle.Render(fmt.Sprintf("(%s, %d minutes)", status, workblock.DurationMinutes))

	sections := []string{
		header,
		"",
		subtitleStyle.Render("Timeline"),
		renderTimeline(viz.Timeline),
		"",
		subtitleStyle.Render("Activity"),
		renderActivityChart(viz.Activity, width),
		renderActivityList(viz.Activity),
	}

	if len(viz.PhraseFrequency) > 0 {
		sections = append(sections,
			"",
			subtitleStyle.Render("Frequency"),
			renderFrequency(viz.PhraseFrequency))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDayView renders the merged daily aggregate
func renderDayView(date string, aggregate *domain.DailyAggregate, width int) string {
	header := titleStyle.Render("Day view") + " " +
		mutedStyle.Render(fmt.Sprintf("(%s: %d workblocks, %d minutes)",
			date, aggregate.TotalWorkblocks, aggregate.TotalMinutes))

	timeline := make([]domain.TimelineEntry, len(aggregate.Timeline))
	for i, entry := range aggregate.Timeline {
		timeline[i] = entry.TimelineEntry
	}

	sections := []string{
		header,
		"",
		subtitleStyle.Render("Timeline"),
		renderTimeline(timeline),
		"",
		subtitleStyle.Render("Activity"),
		renderActivityChart(aggregate.Activity, width),
		renderActivityList(aggregate.Activity),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
