package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quarterlog/quarterlog/internal/tui"
	"github.com/quarterlog/quarterlog/logging"
)

// StartCmd starts a workblock and follows it in the terminal. The
// process must stay in the foreground: the interval timer lives in it.
type StartCmd struct {
	Minutes int `arg:"" optional:"" default:"60" help:"Workblock duration in minutes"`
}

// Run starts a workblock and hands off to the TUI to follow it
func (s *StartCmd) Run(cli *CLI) error {
	workblock, err := cli.Container.Service.Start(context.Background(), s.Minutes)
	if err != nil {
		return err
	}

	fmt.Printf("Workblock %d started (%d minutes)\n", workblock.ID, workblock.DurationMinutes)
	logging.Logger.Info("Workblock started from CLI",
		"workblock_id", workblock.ID,
		"minutes", s.Minutes)

	// Follow inline; the timer dies with the process, so the command
	// blocks until the workblock ends or the user quits.
	model := tui.NewModel(cli.Container.Service, cli.Container.Settings.GraceWindow())
	program := tea.NewProgram(model)

	cli.Container.UISink.Attach(program)
	defer cli.Container.UISink.Detach(program)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// StopCmd completes the active workblock early
type StopCmd struct{}

// Run executes the stop command
func (s *StopCmd) Run(cli *CLI) error {
	workblock, err := cli.Container.Service.Stop(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Workblock %d completed\n", workblock.ID)
	return nil
}

// CancelCmd cancels the active workblock
type CancelCmd struct{}

// Run executes the cancel command
func (c *CancelCmd) Run(cli *CLI) error {
	workblock, err := cli.Container.Service.Cancel(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Workblock %d cancelled\n", workblock.ID)
	return nil
}

// StatusCmd shows the active workblock and interval countdown
type StatusCmd struct{}

// Run executes the status command
func (s *StatusCmd) Run(cli *CLI) error {
	ctx := context.Background()

	active, err := cli.Container.Service.ActiveWorkblock(ctx)
	if err != nil {
		return err
	}
	if active == nil {
		fmt.Println("No active workblock")
		return nil
	}

	fmt.Printf("Workblock %d: active, %d minutes, started %s\n",
		active.ID, active.DurationMinutes, active.StartTime.Format("15:04"))

	current, err := cli.Container.Service.CurrentInterval(ctx, active.ID)
	if err != nil {
		return err
	}
	if current != nil {
		fmt.Printf("Current interval: #%d (started %s)\n",
			current.Number, current.StartTime.Format("15:04"))
	}

	snapshot := cli.Container.Service.TimerState()
	if !snapshot.Running {
		fmt.Println("Timer is not running in this process; use 'quarterlog run' to resume it")
	} else if remaining := cli.Container.Service.TimeRemaining(); remaining != nil {
		fmt.Printf("Next prompt in %d:%02d\n", *remaining/60, *remaining%60)
	}

	return nil
}

// SubmitCmd records an entry for an interval
type SubmitCmd struct {
	IntervalID int64  `arg:"" help:"Interval ID"`
	Content    string `arg:"" help:"What you worked on"`
}

// Run executes the submit command
func (s *SubmitCmd) Run(cli *CLI) error {
	result, err := cli.Container.Service.Submit(context.Background(), s.IntervalID, s.Content)
	if err != nil {
		return err
	}
	if result.IsLast {
		fmt.Printf("Final interval recorded; workblock %d completed\n", result.Interval.WorkblockID)
	} else {
		fmt.Printf("Interval %d recorded\n", result.Interval.Number)
	}
	return nil
}

// AwayCmd marks an interval as away immediately
type AwayCmd struct {
	IntervalID int64 `arg:"" help:"Interval ID"`
}

// Run executes the away command
func (a *AwayCmd) Run(cli *CLI) error {
	if err := cli.Container.Service.AutoAwayNow(context.Background(), a.IntervalID); err != nil {
		return err
	}
	fmt.Printf("Interval %d marked away\n", a.IntervalID)
	return nil
}
