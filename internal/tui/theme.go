package tui

import "github.com/charmbracelet/lipgloss"

// Color is an alias for lipgloss.Color for convenience
type Color = lipgloss.Color

const (
	colorPrimary   Color = "99"  // Purple - app name, titles
	colorSecondary Color = "86"  // Cyan - subtitles
	colorError     Color = "196" // Bright red
	colorHighlight Color = "255" // White - emphasis
	colorMuted     Color = "241" // Gray - secondary text
	colorSubtle    Color = "245" // Light gray - labels
	colorAway      Color = "3"   // Yellow - away entries
	colorRecorded  Color = "2"   // Green - recorded entries
	colorCancelled Color = "1"   // Red - cancelled marker
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	awayStyle = lipgloss.NewStyle().
			Foreground(colorAway)

	recordedStyle = lipgloss.NewStyle().
			Foreground(colorRecorded)

	cancelledStyle = lipgloss.NewStyle().
			Foreground(colorCancelled)

	countdownStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	promptBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)
