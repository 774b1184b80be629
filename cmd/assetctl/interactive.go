package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/asset-loader/loader"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	loadedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	transitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	unloadedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	ctx       context.Context
	reg       *loader.Registry
	lastErr   error
	rows      []loader.Status
	filter    textinput.Model
	selected  int
	filtering bool
}

// assetEventMsg is pumped into the program by the registry observer.
type assetEventMsg loader.Event

// opDoneMsg reports the outcome of a load/unload issued from the TUI.
type opDoneMsg struct {
	err error
	id  uint32
}

func newInteractiveModel(ctx context.Context, reg *loader.Registry) *interactiveModel {
	filter := textinput.New()
	filter.Placeholder = "name filter"
	filter.CharLimit = 64

	m := &interactiveModel{
		ctx:    ctx,
		reg:    reg,
		filter: filter,
	}
	m.refresh()
	return m
}

func (m *interactiveModel) refresh() {
	query := strings.ToLower(m.filter.Value())
	m.rows = m.rows[:0]
	for _, st := range m.reg.Snapshot() {
		if query != "" && !strings.Contains(strings.ToLower(st.Name), query) {
			continue
		}
		m.rows = append(m.rows, st)
	}
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case assetEventMsg:
		m.refresh()
		if msg.Err != nil {
			m.lastErr = msg.Err
		}
		return m, nil

	case opDoneMsg:
		m.refresh()
		m.lastErr = msg.err
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			switch msg.String() {
			case "enter", "esc":
				m.filtering = false
				m.filter.Blur()
			default:
				var cmd tea.Cmd
				m.filter, cmd = m.filter.Update(msg)
				m.refresh()
				return m, cmd
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.rows)-1 {
				m.selected++
			}
		case "/":
			m.filtering = true
			return m, m.filter.Focus()
		case "l", "enter":
			return m, m.loadSelected()
		case "u":
			return m, m.unloadSelected()
		case "r":
			m.refresh()
			m.lastErr = nil
		}
	}
	return m, nil
}

func (m *interactiveModel) loadSelected() tea.Cmd {
	if m.selected >= len(m.rows) {
		return nil
	}
	id := m.rows[m.selected].ID
	return func() tea.Msg {
		done := make(chan error, 1)
		if _, err := m.reg.LoadAsync(m.ctx, id, func(err error) { done <- err }); err != nil {
			return opDoneMsg{id: id, err: err}
		}
		return opDoneMsg{id: id, err: <-done}
	}
}

func (m *interactiveModel) unloadSelected() tea.Cmd {
	if m.selected >= len(m.rows) {
		return nil
	}
	id := m.rows[m.selected].ID
	return func() tea.Msg {
		done := make(chan error, 1)
		if err := m.reg.UnloadAsync(m.ctx, id, func(err error) { done <- err }); err != nil {
			return opDoneMsg{id: id, err: err}
		}
		return opDoneMsg{id: id, err: <-done}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("assetctl"))
	b.WriteString("\n\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString("  filter: ")
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "  %-6s %-20s %-10s %-5s %s\n", "ID", "NAME", "STATE", "REFS", "HELD")

	for i, row := range m.rows {
		line := fmt.Sprintf("  %-6d %-20s %-10s %-5d %v", row.ID, row.Name, row.State, row.Refs, row.Held)
		switch {
		case i == m.selected && !m.filtering:
			line = selectedStyle.Render(line)
		case row.State == loader.StateLoaded:
			line = loadedStyle.Render(line)
		case row.State == loader.StateUnloaded:
			line = unloadedStyle.Render(line)
		default:
			line = transitStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if m.lastErr != nil {
		b.WriteByte('\n')
		b.WriteString(errorStyle.Render("error: " + m.lastErr.Error()))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("↑/↓ select · l load · u unload · / filter · r refresh · q quit"))
	b.WriteByte('\n')

	return b.String()
}

// registryObserver forwards lifecycle events into the bubbletea program.
type registryObserver struct {
	program *tea.Program
}

func (o *registryObserver) OnAssetEvent(ev loader.Event) {
	o.program.Send(assetEventMsg(ev))
}

func runInteractive(ctx context.Context, reg *loader.Registry) error {
	model := newInteractiveModel(ctx, reg)
	program := tea.NewProgram(model, tea.WithAltScreen())

	obs := &registryObserver{program: program}
	reg.Observe(obs)
	defer reg.Unobserve(obs)

	_, err := program.Run()
	return err
}
