package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quarterlog/quarterlog/internal/tui"
	"github.com/quarterlog/quarterlog/logging"
)

// RunCmd starts the TUI application
type RunCmd struct{}

// Run executes the TUI
func (r *RunCmd) Run(cli *CLI) error {
	logging.Logger.Info("Starting quarterlog TUI")

	// Archive old days before showing anything
	if archived, err := cli.Container.Service.CheckAndResetDaily(context.Background()); err != nil {
		logging.Logger.Warn("Daily reset check failed", "error", err)
	} else if archived != "" {
		logging.Logger.Info("Archived previous day on startup", "date", archived)
	}

	model := tui.NewModel(cli.Container.Service, cli.Container.Settings.GraceWindow())
	program := tea.NewProgram(model, tea.WithAltScreen())

	cli.Container.UISink.Attach(program)
	defer cli.Container.UISink.Detach(program)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
