package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bnema/cart-session-cli/internal/domain"
	"github.com/bnema/cart-session-cli/internal/ports"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const (
	labelFetching   = "Fetching cart..."
	labelAdding     = "Adding item..."
	labelUpdating   = "Updating item..."
	labelRemoving   = "Removing item..."
	labelRecovering = "Cart expired, creating a new one..."
	labelRetrying   = "Retrying..."
)

var (
	progressSpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	progressRecoverStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// progress shows what a cart action is doing while it runs. It listens to the session
// manager's events, so the label moves from fetching the cart to the mutation, and to the
// recovery when the cart turns out to be gone. On a terminal it draws a spinner; on any other
// writer every new label is printed on its own line.
type progress struct {
	mu         sync.Mutex
	running    bool
	program    *tea.Program
	plain      io.Writer
	label      string
	recovering bool
}

var _ ports.EventSink = (*progress)(nil)

func (p *progress) Dispatch(_ context.Context, event domain.Event) {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	label := p.labelFor(event)
	if label == "" || label == p.label {
		p.mu.Unlock()
		return
	}
	p.label = label
	program, plain, recovering := p.program, p.plain, p.recovering
	p.mu.Unlock()

	if program != nil {
		program.Send(progressLabelMsg{label: label, recovering: recovering})
		return
	}
	_, _ = fmt.Fprintln(plain, label)
}

// labelFor must be called with p.mu held.
func (p *progress) labelFor(event domain.Event) string {
	switch event.Kind {
	case domain.EventReset:
		p.recovering = true
		return labelRecovering
	case domain.EventRequest:
	default:
		return ""
	}

	switch event.Operation {
	case domain.OperationGetCart:
		if p.recovering {
			return ""
		}
		return labelFetching
	case domain.OperationAddItem, domain.OperationUpdateItem, domain.OperationRemoveItem:
		if p.recovering {
			return labelRetrying
		}
	}

	switch event.Operation {
	case domain.OperationAddItem:
		return labelAdding
	case domain.OperationUpdateItem:
		return labelUpdating
	case domain.OperationRemoveItem:
		return labelRemoving
	default:
		return ""
	}
}

// run calls work while the progress is shown on output and returns work's error.
func (p *progress) run(ctx context.Context, output io.Writer, label string, work func(context.Context) error) error {
	if !isTerminal(output) {
		p.begin(nil, output, label)
		defer p.end()

		if _, err := fmt.Fprintln(output, label); err != nil {
			return err
		}
		return work(ctx)
	}

	model := progressModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(progressSpinnerStyle)),
		label:   label,
		work: func() tea.Msg {
			return progressDoneMsg{err: work(ctx)}
		},
	}
	program := tea.NewProgram(model, tea.WithInput(nil), tea.WithOutput(output), tea.WithContext(ctx))

	p.begin(program, nil, label)
	defer p.end()

	final, err := program.Run()
	if err != nil {
		return err
	}
	done, ok := final.(progressModel)
	if !ok {
		return fmt.Errorf("progress ended with model %T", final)
	}
	return done.err
}

func (p *progress) begin(program *tea.Program, plain io.Writer, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.running = true
	p.program = program
	p.plain = plain
	p.label = label
	p.recovering = false
}

func (p *progress) end() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.running = false
	p.program = nil
	p.plain = nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

type progressLabelMsg struct {
	label      string
	recovering bool
}

type progressDoneMsg struct {
	err error
}

type progressModel struct {
	spinner    spinner.Model
	label      string
	recovering bool
	work       tea.Cmd
	err        error
	finished   bool
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work)
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressLabelMsg:
		m.label = msg.label
		m.recovering = msg.recovering
		return m, nil
	case progressDoneMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.finished {
		return ""
	}

	label := m.label
	if m.recovering {
		label = progressRecoverStyle.Render(label)
	}
	return m.spinner.View() + " " + label
}
