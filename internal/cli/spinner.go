package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type (
	spinnerTickMsg struct{}
	spinnerDoneMsg struct{}
	spinnerLogMsg  string

	// spinnerPrintedMsg follows each log line once it is queued for output.
	spinnerPrintedMsg struct{}
)

// spinnerModel is the bubbletea model behind Spinner.
type spinnerModel struct {
	message string
	frame   int
	pending int // log lines not yet queued
	done    bool
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg { return spinnerTickMsg{} })
}

func (m spinnerModel) Init() tea.Cmd {
	return spinnerTick()
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTickMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		return m, spinnerTick()
	case spinnerDoneMsg:
		m.done = true
		if m.pending > 0 {
			return m, nil
		}
		return m, tea.Quit
	case spinnerLogMsg:
		m.pending++
		return m, tea.Sequence(
			tea.Println(string(msg)),
			func() tea.Msg { return spinnerPrintedMsg{} },
		)
	case spinnerPrintedMsg:
		m.pending--
		if m.done && m.pending == 0 {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	frame := spinnerFrames[m.frame%len(spinnerFrames)]
	return styleIconSpinner.Render(frame) + " " + StyleDim.Render(m.message)
}

// Spinner shows a progress indicator on w until stopped or until its
// context is cancelled. It is also an io.Writer: lines written while it runs
// are printed above the animation.
type Spinner struct {
	ctx     context.Context
	w       io.Writer
	program *tea.Program
	stopped chan struct{}

	mu      sync.Mutex
	started bool
	done    bool
}

func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	return &Spinner{
		ctx: ctx,
		w:   w,
		program: tea.NewProgram(spinnerModel{message: message},
			tea.WithContext(ctx),
			tea.WithOutput(w),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		stopped: make(chan struct{}),
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Start runs the animation in the background.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	go func() {
		defer close(s.stopped)
		_, _ = s.program.Run()
	}()
}

// Stop clears the spinner and waits for it to exit. Repeated calls are no-ops.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.started || s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.mu.Unlock()

	s.program.Send(spinnerDoneMsg{})
	<-s.stopped
}

// Write prints p above the spinner. Once the spinner has stopped it writes
// straight to the underlying writer.
func (s *Spinner) Write(p []byte) (int, error) {
	s.mu.Lock()
	running := s.started && !s.done && s.ctx.Err() == nil
	s.mu.Unlock()
	if !running {
		return s.w.Write(p)
	}
	s.program.Send(spinnerLogMsg(strings.TrimRight(string(p), "\n")))
	return len(p), nil
}

// startSpinner starts a spinner on w and routes log output through it so log
// lines never tear the animation.
func (c *CLI) startSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	s := newSpinner(ctx, w, message)
	s.Start()
	c.Logger.SetOutput(s)
	return s
}

// stopSpinner stops s and restores the logger's own output.
func (c *CLI) stopSpinner(s *Spinner) {
	s.Stop()
	c.Logger.SetOutput(c.logOut)
}
