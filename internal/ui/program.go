package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Printer writes UI components to a writer.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a Printer. A nil writer means os.Stdout.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.out }

// Println writes content with a newline.
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// PrintHeader prints a command header box.
func (p *Printer) PrintHeader(h *Header) {
	h.Width = p.width
	p.Println(h.Render())
}

// PrintResult prints a result box.
func (p *Printer) PrintResult(r *Result) {
	r.Width = p.width
	p.Println(r.Render())
}

// Work is a blocking task run behind a spinner.
type Work func(ctx context.Context) error

type workDoneMsg struct{ err error }

// SpinnerModel shows a spinner until its work finishes or the user quits.
type SpinnerModel struct {
	Label   string
	Spinner spinner.Model

	work   Work
	ctx    context.Context
	cancel context.CancelFunc
	err    error
	done   bool
}

// NewSpinnerModel creates a model that runs work under ctx.
func NewSpinnerModel(ctx context.Context, label string, work Work) SpinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	ctx, cancel := context.WithCancel(ctx)
	return SpinnerModel{
		Label:   label,
		Spinner: s,
		work:    work,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Init starts the spinner and the work.
func (m SpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, m.run)
}

func (m SpinnerModel) run() tea.Msg {
	return workDoneMsg{err: m.work(m.ctx)}
}

// Update implements tea.Model.
func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancel()
			m.err = context.Canceled
			m.done = true
			return m, tea.Quit
		}

	case workDoneMsg:
		m.cancel()
		m.err = msg.err
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m SpinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("  %s %s\n", m.Spinner.View(), m.Label)
}

// Err returns the work error once the model has finished.
func (m SpinnerModel) Err() error { return m.err }

// RunWithSpinner runs work while a spinner is shown on the printer's output.
func (p *Printer) RunWithSpinner(ctx context.Context, label string, work Work) error {
	model := NewSpinnerModel(ctx, label, work)
	final, err := tea.NewProgram(model, tea.WithOutput(p.out), tea.WithContext(ctx)).Run()
	if err != nil {
		model.cancel()
		return err
	}
	return final.(SpinnerModel).Err()
}
