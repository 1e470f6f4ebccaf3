package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/quarterlog/quarterlog/internal/domain"
	"github.com/quarterlog/quarterlog/internal/services"
	"github.com/quarterlog/quarterlog/logging"
)

type mode int

const (
	modeIdle mode = iota
	modeForm
	modeRunning
	modePrompt
	modeSummary
	modeDay
)

// Model is the root Bubble Tea model
type Model struct {
	service *services.WorkblockService
	grace   time.Duration
	keys    keyMap

	mode   mode
	width  int
	height int
	err    error

	form         *huh.Form
	formDuration int

	prompt promptModel
	now    time.Time

	summaryWorkblock *domain.Workblock
	summaryViz       *domain.WorkblockVisualization

	dayDate      string
	dayAggregate *domain.DailyAggregate
}

// NewModel creates the root model
func NewModel(service *services.WorkblockService, grace time.Duration) Model {
	return Model{
		service: service,
		grace:   grace,
		keys:    defaultKeyMap(),
		mode:    modeIdle,
		now:     time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.restoreCmd(), tickCmd())
}

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) restoreCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.service.Restore(context.Background())
		if errors.Is(err, domain.ErrTimerRunning) {
			// This process's timer already owns the workblock, e.g.
			// when the TUI follows a workblock it just started.
			err = nil
		}
		running := m.service.TimerState().Running
		return restoredMsg{snapshotRunning: running, err: err}
	}
}

func (m Model) startCmd(minutes int) tea.Cmd {
	return func() tea.Msg {
		workblock, err := m.service.Start(context.Background(), minutes)
		return workblockStartedMsg{workblock: workblock, err: err}
	}
}

func (m Model) stopCmd() tea.Cmd {
	return func() tea.Msg {
		workblock, err := m.service.Stop(context.Background())
		return workblockStoppedMsg{workblock: workblock, err: err}
	}
}

func (m Model) cancelCmd() tea.Cmd {
	return func() tea.Msg {
		workblock, err := m.service.Cancel(context.Background())
		return workblockStoppedMsg{workblock: workblock, err: err}
	}
}

func (m Model) submitCmd(intervalID int64, content string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.service.Submit(context.Background(), intervalID, content)
		if err != nil {
			return entrySubmittedMsg{err: err}
		}
		return entrySubmittedMsg{isLast: result.IsLast}
	}
}

func (m Model) showPromptCmd(intervalID int64) tea.Cmd {
	return func() tea.Msg {
		m.service.ShowPrompt(intervalID)
		return nil
	}
}

func (m Model) loadSummaryCmd(workblockID int64) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		workblock, err := m.service.Workblock(ctx, workblockID)
		if err != nil {
			return summaryLoadedMsg{err: err}
		}
		viz, err := m.service.WorkblockVisualization(ctx, workblockID)
		return summaryLoadedMsg{visualization: viz, workblock: workblock, err: err}
	}
}

func (m Model) loadDayCmd(date string) tea.Cmd {
	return func() tea.Msg {
		aggregate, err := m.service.DailyAggregate(context.Background(), date)
		return dayLoadedMsg{date: date, aggregate: aggregate, err: err}
	}
}

// Update

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()

	case restoredMsg:
		// A running timer always wins: show the countdown even if the
		// restore reported an error alongside it.
		if msg.snapshotRunning {
			m.mode = modeRunning
		}
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case workblockStartedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.mode = modeIdle
			return m, nil
		}
		m.err = nil
		m.mode = modeRunning
		return m, nil

	case workblockStoppedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		return m, m.loadSummaryCmd(msg.workblock.ID)

	case entrySubmittedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if !msg.isLast {
			m.mode = modeRunning
		}
		// On the last interval the WorkblockCompleteMsg drives the
		// transition to the summary.
		return m, nil

	case IntervalCompleteMsg:
		m.prompt = newPromptModel(msg.IntervalID, msg.IntervalNumber, m.now.Add(m.grace))
		m.mode = modePrompt
		return m, tea.Batch(m.showPromptCmd(msg.IntervalID), textinput.Blink)

	case PromptShowMsg:
		return m, nil

	case AutoAwayMsg:
		if m.mode == modePrompt && m.prompt.intervalID == msg.IntervalID {
			m.mode = modeRunning
		}
		return m, nil

	case PromptHideMsg:
		if m.mode == modePrompt {
			m.mode = modeRunning
		}
		return m, nil

	case WorkblockCompleteMsg:
		return m, m.loadSummaryCmd(msg.WorkblockID)

	case summaryLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.mode = modeIdle
			return m, nil
		}
		m.summaryWorkblock = msg.workblock
		m.summaryViz = msg.visualization
		m.mode = modeSummary
		return m, nil

	case dayLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.dayDate = msg.date
		m.dayAggregate = msg.aggregate
		m.mode = modeDay
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m.updateChildren(msg)
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modePrompt:
		switch msg.String() {
		case "enter":
			content := m.prompt.input.Value()
			return m, m.submitCmd(m.prompt.intervalID, content)
		case "esc":
			m.service.HidePrompt()
			m.mode = modeRunning
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.prompt.input, cmd = m.prompt.input.Update(msg)
		return m, cmd

	case modeForm:
		if msg.String() == "esc" || msg.String() == "ctrl+c" {
			m.mode = modeIdle
			return m, nil
		}
		return m.updateChildren(msg)

	case modeIdle, modeSummary, modeDay:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Start):
			m.startForm()
			return m, m.form.Init()
		case key.Matches(msg, m.keys.Day):
			today := time.Now().Format(domain.DateFormat)
			return m, m.loadDayCmd(today)
		case msg.String() == "esc":
			if m.mode != modeIdle {
				m.mode = modeIdle
			}
			return m, nil
		}
		return m, nil

	case modeRunning:
		switch {
		case key.Matches(msg, m.keys.Quit):
			// Timer keeps running in the store; quitting the UI does
			// not stop the workblock.
			return m, tea.Quit
		case key.Matches(msg, m.keys.Stop):
			return m, m.stopCmd()
		case key.Matches(msg, m.keys.Cancel):
			return m, m.cancelCmd()
		case key.Matches(msg, m.keys.Day):
			today := time.Now().Format(domain.DateFormat)
			return m, m.loadDayCmd(today)
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) startForm() {
	m.formDuration = 60
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Workblock duration").
				Description("How long do you want to work?").
				Options(
					huh.NewOption("30 minutes", 30),
					huh.NewOption("45 minutes", 45),
					huh.NewOption("1 hour", 60),
					huh.NewOption("1.5 hours", 90),
					huh.NewOption("2 hours", 120),
				).
				Value(&m.formDuration),
		),
	)
	m.mode = modeForm
}

func (m Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == modeForm && m.form != nil {
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
		if m.form.State == huh.StateCompleted {
			logging.Logger.Info("Duration selected", "minutes", m.formDuration)
			return m, m.startCmd(m.formDuration)
		}
		return m, cmd
	}

	if m.mode == modePrompt {
		var cmd tea.Cmd
		m.prompt.input, cmd = m.prompt.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View

func (m Model) View() string {
	var body string

	switch m.mode {
	case modeIdle:
		body = m.viewIdle()
	case modeForm:
		body = m.form.View()
	case modeRunning:
		body = m.viewRunning()
	case modePrompt:
		body = m.prompt.view(m.now)
	case modeSummary:
		body = renderWorkblockSummary(m.summaryWorkblock, m.summaryViz, m.width-4)
	case modeDay:
		body = renderDayView(m.dayDate, m.dayAggregate, m.width-4)
	}

	if m.err != nil {
		body = lipgloss.JoinVertical(lipgloss.Left,
			body,
			"",
			errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}

func (m Model) viewIdle() string {
	title := titleStyle.Render("quarterlog")
	sub := subtitleStyle.Render("slice your work, remember your day")
	help := helpStyle.Render("s start workblock • d day view • q quit")
	return lipgloss.JoinVertical(lipgloss.Left, title, sub, "", help)
}

func (m Model) viewRunning() string {
	snapshot := m.service.TimerState()

	title := titleStyle.Render("Workblock running")
	progress := fmt.Sprintf("interval %s of %s",
		valueStyle.Render(fmt.Sprintf("%d", snapshot.IntervalNumber)),
		valueStyle.Render(fmt.Sprintf("%d", snapshot.TotalIntervals)))

	countdown := mutedStyle.Render("next prompt in ")
	if remaining := m.service.TimeRemaining(); remaining != nil {
		countdown += countdownStyle.Render(formatCountdown(time.Duration(*remaining) * time.Second))
	} else {
		countdown += mutedStyle.Render("…")
	}

	help := helpStyle.Render("x stop early • c cancel • d day view • q quit (timer keeps running)")
	return lipgloss.JoinVertical(lipgloss.Left, title, "", progress, countdown, "", help)
}
