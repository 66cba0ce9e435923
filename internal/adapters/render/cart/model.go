package cart

import (
	"errors"
	"io"

	"github.com/bnema/cart-session-cli/internal/application"
	"github.com/bnema/cart-session-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

// model renders once and quits. The program never reads input or writes to a terminal.
type model struct {
	render func(styles) string
	styles styles
	output string
}

func newModel(render func(styles) string) model {
	return model{render: render, styles: newStyles()}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = m.render(m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

func Render(view application.CartView) (string, error) {
	return run(func(s styles) string {
		return renderCart(view, s)
	})
}

func RenderEvents(events []domain.Event) (string, error) {
	return run(func(s styles) string {
		return renderEvents(events, s)
	})
}

func RenderImages(images map[string]domain.MediaEntry) (string, error) {
	return run(func(s styles) string {
		return renderImages(images, s)
	})
}

func run(render func(styles) string) (string, error) {
	p := tea.NewProgram(
		newModel(render),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
