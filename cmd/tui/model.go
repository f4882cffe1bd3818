// Package tui is the interactive terminal form for generating icebreakers.
// It uses the Charm Bubble Tea framework.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/icebreaker/internal/icebreaker"
)

const (
	emptyNameMessage = "Error: Please enter a name."
	failurePrefix    = "An error occurred: "
)

// ViewState represents the current view state of the TUI
type ViewState int

const (
	// ViewForm is the name/company input form
	ViewForm ViewState = iota
	// ViewRunning is shown while the pipeline runs
	ViewRunning
	// ViewResult shows the generated message or the failure
	ViewResult
)

// Generator is the pipeline capability the form needs.
type Generator interface {
	GenerateDetailed(ctx context.Context, name, company string) (*icebreaker.Result, error)
}

// GenerationResult is delivered to Update when a pipeline run finishes.
type GenerationResult struct {
	Success bool
	Message string
	Summary string
}

// Model is the main TUI model following the Bubble Tea architecture
type Model struct {
	ctx       context.Context
	generator Generator

	state ViewState

	// inputs[0] is the full name, inputs[1] the optional company
	inputs     []textinput.Model
	focusIndex int

	spinner spinner.Model
	result  *GenerationResult

	width  int
	height int

	quitting bool
}

// keyMap defines the key bindings for the TUI
type keyMap struct {
	Submit key.Binding
	Back   key.Binding
	Tab    key.Binding
	Quit   key.Binding
	// QuitResult also accepts a bare q, which would be text input on the form
	QuitResult key.Binding
}

var keys = keyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "generate"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab", "shift+tab", "up", "down"),
		key.WithHelp("tab", "next field"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	QuitResult: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// NewModel creates the form model backed by generator.
func NewModel(ctx context.Context, generator Generator) Model {
	if ctx == nil {
		ctx = context.Background()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = progressStyle

	return Model{
		ctx:       ctx,
		generator: generator,
		state:     ViewForm,
		inputs:    createFormInputs(),
		spinner:   sp,
	}
}

func createFormInputs() []textinput.Model {
	inputs := make([]textinput.Model, 2)

	inputs[0] = textinput.New()
	inputs[0].Placeholder = "e.g. Jensen Huang"
	inputs[0].Focus()
	inputs[0].CharLimit = 128
	inputs[0].Width = 50
	inputs[0].Prompt = "👤 "
	inputs[0].PromptStyle = inputLabelStyle

	inputs[1] = textinput.New()
	inputs[1].Placeholder = "e.g. NVIDIA"
	inputs[1].CharLimit = 128
	inputs[1].Width = 50
	inputs[1].Prompt = "🏢 "
	inputs[1].PromptStyle = inputLabelStyle

	return inputs
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case ViewForm:
			return m.handleFormView(msg)
		case ViewResult:
			return m.handleResultView(msg)
		case ViewRunning:
			if key.Matches(msg, keys.Quit) {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

	case spinner.TickMsg:
		if m.state == ViewRunning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case GenerationResult:
		m.result = &msg
		m.state = ViewResult
		return m, nil
	}

	return m, nil
}

func (m Model) handleFormView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		m.focusIndex = (m.focusIndex + 1) % len(m.inputs)
		for i := range m.inputs {
			if i == m.focusIndex {
				m.inputs[i].Focus()
			} else {
				m.inputs[i].Blur()
			}
		}
		return m, nil

	case key.Matches(msg, keys.Submit):
		name := strings.TrimSpace(m.inputs[0].Value())
		if name == "" {
			m.state = ViewResult
			m.result = &GenerationResult{Message: emptyNameMessage}
			return m, nil
		}

		m.state = ViewRunning
		return m, tea.Batch(
			m.spinner.Tick,
			generateCmd(m.ctx, m.generator, name, strings.TrimSpace(m.inputs[1].Value())),
		)
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m Model) handleResultView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Submit):
		m.state = ViewForm
		m.result = nil
		return m, nil

	case key.Matches(msg, keys.QuitResult):
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// generateCmd runs the pipeline off the UI goroutine.
func generateCmd(ctx context.Context, gen Generator, name, company string) tea.Cmd {
	return func() tea.Msg {
		if gen == nil {
			return GenerationResult{Message: failurePrefix + "icebreaker generator is not configured"}
		}

		result, err := gen.GenerateDetailed(ctx, name, company)
		switch {
		case errors.Is(err, icebreaker.ErrEmptyName):
			return GenerationResult{Message: emptyNameMessage}
		case err != nil:
			return GenerationResult{Message: failurePrefix + err.Error()}
		}

		return GenerationResult{
			Success: true,
			Message: result.Message,
			Summary: result.Summary,
		}
	}
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return subtitleStyle.Render("Goodbye! 👋\n")
	}

	switch m.state {
	case ViewForm:
		return m.renderForm()
	case ViewRunning:
		return m.renderRunning()
	case ViewResult:
		return m.renderResult()
	default:
		return "Unknown state"
	}
}

func (m Model) renderForm() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("🤝 LinkedIn Icebreaker Bot") + "\n")
	sb.WriteString(subtitleStyle.Render("Generate personalized conversation starters.") + "\n\n")

	labels := []string{"Full Name", "Company (Optional)"}
	for i, input := range m.inputs {
		sb.WriteString(inputLabelStyle.Render(labels[i]) + "\n")
		sb.WriteString(input.View() + "\n\n")
	}

	sb.WriteString(helpStyle.Render("tab: next field • enter: generate • ctrl+c: quit"))

	return boxStyle.Render(sb.String())
}

func (m Model) renderRunning() string {
	return boxStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.spinner.View()+" Searching the web and drafting a message...",
			subtitleStyle.Render("Please wait..."),
		),
	)
}

func (m Model) renderResult() string {
	if m.result == nil {
		return "No result"
	}

	help := helpStyle.Render("enter/esc: back to form • q: quit")
	if !m.result.Success {
		return boxStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left,
				errorStyle.Render("❌ "+m.result.Message),
				"",
				help,
			),
		)
	}

	width := 70
	if m.width > 10 && m.width-10 < width {
		width = m.width - 10
	}

	parts := []string{
		successStyle.Render("✅ Extracted Role & Message"),
		"",
		messageStyle.Width(width).Render(m.result.Message),
	}
	if m.result.Summary != "" {
		parts = append(parts, "", subtitleStyle.Width(width).Render(m.result.Summary))
	}
	parts = append(parts, "", help)

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
