package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/a2y-d5l/launchpad/renderer"
)

// View renders the TUI.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	half := max(m.width/2-2, 10)
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Width(half).Render(m.renderPrograms()),
		paneStyle.Width(half).Render(m.renderQueues()),
	)

	var b strings.Builder
	b.WriteString(top)
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(paneStyle.Render(m.console.View()))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderPrograms() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Programs"))
	b.WriteString("\n")

	programs := m.lib.Programs()
	if len(programs) == 0 {
		b.WriteString(mutedStyle.Render("No programs in library"))
		return b.String()
	}
	for i, p := range programs {
		if i == m.input.Selection() {
			b.WriteString(selectedItemStyle.Render("> " + p.Name))
		} else {
			b.WriteString(normalItemStyle.Render("  " + p.Name))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderQueues() string {
	var b strings.Builder
	programs := m.lib.Programs()
	sel := m.input.Selection()
	if sel >= len(programs) {
		return titleStyle.Render("Queues")
	}
	p := programs[sel]

	b.WriteString(titleStyle.Render(p.Name))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(p.WorkingDirectory))
	b.WriteString("\n")
	for i, q := range p.CommandQueues {
		if i >= 9 {
			break
		}
		b.WriteString(queueNumberStyle.Render(fmt.Sprintf("%d", i+1)))
		b.WriteString(" ")
		b.WriteString(q.Name)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderStatus() string {
	if m.notice != "" {
		return errorStyle.Render(m.notice)
	}
	status := renderer.StatusOf(m.lib.TaskManager())
	if status == "idle" {
		return mutedStyle.Render(status)
	}
	return runningStyle.Render(status)
}
