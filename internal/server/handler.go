package server

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/muesli/termenv"

	"github.com/quarterlog/quarterlog/internal/tui"
	"github.com/quarterlog/quarterlog/logging"
)

// termProfile is the color profile forced on SSH sessions
var termProfile = termenv.ANSI256

// sessionModel wraps tui.Model to detach from the event sink when the
// session ends
type sessionModel struct {
	tui.Model
	sessionID string
	startTime time.Time
	sink      *tui.Sink
	program   *tea.Program
}

func (s *sessionModel) Init() tea.Cmd {
	return s.Model.Init()
}

func (s *sessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.QuitMsg); ok {
		if s.program != nil {
			s.sink.Detach(s.program)
		}
		logging.Logger.Info("SSH session ended",
			"session_id", s.sessionID,
			"duration", time.Since(s.startTime).String())
	}

	updatedModel, cmd := s.Model.Update(msg)
	if m, ok := updatedModel.(tui.Model); ok {
		s.Model = m
	}
	return s, cmd
}

func (s *sessionModel) View() string {
	return s.Model.View()
}

// programHandler creates a Bubble Tea program for each SSH session,
// attached to the shared event sink
func (s *Server) programHandler(sess ssh.Session) *tea.Program {
	pty, _, _ := sess.Pty()
	sessionID := fmt.Sprintf("%s@%s", sess.User(), sess.RemoteAddr().String())

	logging.Logger.Info("New SSH session",
		"session_id", sessionID,
		"user", sess.User(),
		"remote_addr", sess.RemoteAddr().String(),
		"term", pty.Term,
		"window", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

	model := &sessionModel{
		Model:     tui.NewModel(s.service, s.grace),
		sessionID: sessionID,
		startTime: time.Now(),
		sink:      s.sink,
	}

	opts := append(
		bubbletea.MakeOptions(sess),
		tea.WithAltScreen(),
	)
	program := tea.NewProgram(model, opts...)

	model.program = program
	s.sink.Attach(program)

	return program
}
