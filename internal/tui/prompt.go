package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// promptModel is the entry prompt overlay: a single-line input asking
// what the user worked on, with a countdown to auto-away.
type promptModel struct {
	input          textinput.Model
	intervalID     int64
	intervalNumber int
	deadline       time.Time
}

func newPromptModel(intervalID int64, intervalNumber int, deadline time.Time) promptModel {
	input := textinput.New()
	input.Placeholder = "What did you work on?"
	input.CharLimit = 200
	input.Width = 48
	input.Focus()

	return promptModel{
		input:          input,
		intervalID:     intervalID,
		intervalNumber: intervalNumber,
		deadline:       deadline,
	}
}

func (p promptModel) view(now time.Time) string {
	remaining := p.deadline.Sub(now)
	if remaining < 0 {
		remaining = 0
	}

	title := titleStyle.Render(fmt.Sprintf("Interval %d complete", p.intervalNumber))
	question := subtitleStyle.Render("What did you work on during the last interval?")
	countdown := mutedStyle.Render("auto-away in ") +
		countdownStyle.Render(formatCountdown(remaining))
	help := helpStyle.Render("enter submit • esc dismiss")

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		question,
		"",
		p.input.View(),
		"",
		countdown,
		help,
	)

	return promptBoxStyle.Render(content)
}

func formatCountdown(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
