package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// callbackMsg carries a request completion into Update.
type callbackMsg func()

type sender interface {
	Send(msg tea.Msg)
}

// Scheduler delivers request completions to the Bubble Tea update loop, so
// they run on the same goroutine as key handling and rendering. It
// implements online.Scheduler.
type Scheduler struct {
	mu      sync.Mutex
	program sender
	pending []func()
}

// NewScheduler returns a scheduler that buffers callbacks until Attach.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Attach connects the scheduler to a program. Callbacks scheduled earlier
// are delivered first, in order, once the program starts reading messages.
// Until they are all sent, new callbacks queue behind them.
func (s *Scheduler) Attach(p sender) {
	// Send blocks until the program runs; Attach is called before Run.
	go s.drain(p)
}

// drain sends buffered callbacks until the buffer is empty, then switches
// Schedule to sending directly.
func (s *Scheduler) drain(p sender) {
	for {
		s.mu.Lock()
		batch := s.pending
		s.pending = nil
		if len(batch) == 0 {
			s.program = p
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		for _, fn := range batch {
			p.Send(callbackMsg(fn))
		}
	}
}

// Schedule posts fn to the update loop. It blocks while the program is busy
// and returns immediately once the program has exited.
func (s *Scheduler) Schedule(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	p := s.program
	if p == nil {
		s.pending = append(s.pending, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	p.Send(callbackMsg(fn))
}
