package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Sink forwards timer events into running Bubble Tea programs. It is
// created before any program exists and programs attach themselves once
// started, so events fired in between are dropped rather than blocked.
type Sink struct {
	mu       sync.Mutex
	programs map[*tea.Program]struct{}
}

// NewSink creates a sink with no attached programs
func NewSink() *Sink {
	return &Sink{programs: make(map[*tea.Program]struct{})}
}

// Attach registers a program to receive events
func (s *Sink) Attach(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programs[p] = struct{}{}
}

// Detach unregisters a program
func (s *Sink) Detach(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.programs, p)
}

func (s *Sink) send(msg tea.Msg) {
	s.mu.Lock()
	programs := make([]*tea.Program, 0, len(s.programs))
	for p := range s.programs {
		programs = append(programs, p)
	}
	s.mu.Unlock()

	for _, p := range programs {
		p.Send(msg)
	}
}

func (s *Sink) IntervalComplete(workblockID, intervalID int64, number int) {
	s.send(IntervalCompleteMsg{
		WorkblockID:    workblockID,
		IntervalID:     intervalID,
		IntervalNumber: number,
	})
}

func (s *Sink) AutoAway(intervalID int64) {
	s.send(AutoAwayMsg{IntervalID: intervalID})
}

func (s *Sink) WorkblockComplete(workblockID int64) {
	s.send(WorkblockCompleteMsg{WorkblockID: workblockID})
}

func (s *Sink) PromptShow(intervalID int64) {
	s.send(PromptShowMsg{IntervalID: intervalID})
}

func (s *Sink) PromptHide() {
	s.send(PromptHideMsg{})
}
