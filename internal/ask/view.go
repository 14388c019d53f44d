// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Jared Redh. All rights reserved.

package ask

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF88"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#00FF88"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4444")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF88")).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)
)

// View renders the full-screen TUI.
func (m Model) View() tea.View {
	if m.width == 0 {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	var s string
	switch m.state {
	case stateLoading:
		s = titleStyle.Render("  SEMWEB") + "\n\n  Loading questions from " + m.addr + "..."
	case stateMethod:
		s = m.splitView(m.renderHistoryPanel, m.renderMethodPanel)
	case stateQuestion:
		s = m.splitView(m.renderQuestionsPanel, m.renderInputPanel)
	case stateWaiting:
		s = m.splitView(m.renderWaitingPanel, m.renderInputPanel)
	case stateResult:
		s = m.splitView(m.renderResultPanel, m.renderHistoryPanel)
	case stateError:
		s = m.viewError()
	}

	v := tea.NewView(s)
	v.AltScreen = true
	return v
}

func (m Model) viewError() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("  SEMWEB"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(errStyle.Render("  ERROR: " + m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("  [q/esc] quit"))
	return b.String()
}

// splitView stacks two bordered panels. Each renderer receives the inner
// width and the number of lines it may use.
func (m Model) splitView(
	topFn func(innerW, maxLines int) string,
	botFn func(innerW, maxLines int) string,
) string {
	borderH := 2
	topHeight := m.height*2/3 - borderH
	if topHeight < 4 {
		topHeight = 4
	}
	botHeight := m.height - (topHeight + borderH*2) - borderH
	if botHeight < 3 {
		botHeight = 3
	}

	innerW := m.width - 4
	if innerW < 20 {
		innerW = 20
	}

	topBox := panelStyle.Width(innerW).Render(topFn(innerW, topHeight))
	botBox := panelStyle.Width(innerW).Render(botFn(innerW, botHeight))
	return topBox + "\n" + botBox
}

// --- Panel renderers ---

func (m Model) method() string {
	return m.methods[m.methodIdx].Name
}

func (m Model) renderMethodPanel(_, _ int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Representation"))
	b.WriteString("\n\n")
	for i, meth := range m.methods {
		if i == m.methodIdx {
			b.WriteString(selectedStyle.Render(" ▸ " + meth.Name + " "))
		} else {
			b.WriteString("   " + meth.Name)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("[↑/↓ or k/j] navigate  [enter] select  [q] quit"))
	return b.String()
}

func (m Model) renderQuestionsPanel(innerW, maxLines int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Questions"))
	b.WriteString(dimStyle.Render("  " + m.method()))
	b.WriteString("\n")

	// Keep the selection visible.
	start := 0
	if visible := maxLines - 2; visible > 0 && m.questionIdx >= visible {
		start = m.questionIdx - visible + 1
	}
	for i := start; i < len(m.questions) && i-start < maxLines-1; i++ {
		line := truncate(m.questions[i].Question, innerW-4)
		if i == m.questionIdx && m.input == "" {
			b.WriteString(selectedStyle.Render(" ▸ " + line + " "))
		} else {
			b.WriteString("   " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderInputPanel(_, _ int) string {
	var b strings.Builder
	b.WriteString(promptStyle.Render("> "))
	b.WriteString(m.input)
	if m.state == stateQuestion {
		b.WriteString("█")
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("[type] free text  [↑/↓] pick  [enter] ask  [esc] back"))
	return b.String()
}

func (m Model) renderWaitingPanel(_, _ int) string {
	return titleStyle.Render(m.method()) + "\n\n  Asking: " + m.asked
}

func (m Model) renderResultPanel(innerW, maxLines int) string {
	var lines []string
	lines = append(lines, titleStyle.Render(m.method())+dimStyle.Render("  "+m.asked))

	switch {
	case m.askErr != nil:
		lines = append(lines, errStyle.Render("ERROR: "+m.askErr.Error()))
	case m.answer == nil || len(m.answer.Results) == 0:
		lines = append(lines, dimStyle.Render("No matching question."))
	default:
		a := m.answer
		lines = append(lines, fmt.Sprintf("server: %s  client: %s",
			valueStyle.Render(fmt.Sprintf("%.2f ms", a.ProcessingMS)),
			valueStyle.Render(fmt.Sprintf("%.2f ms", a.ClientMS))))
		for _, r := range a.Results {
			lines = append(lines, "", promptStyle.Render(r.Title))
			for _, l := range formatAnswer(r.Answer) {
				lines = append(lines, "  "+truncate(l, innerW-2))
			}
		}
	}

	if len(lines) > maxLines {
		more := len(lines) - maxLines + 1
		lines = append(lines[:maxLines-1], dimStyle.Render(fmt.Sprintf("... %d more lines", more)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHistoryPanel(_, maxLines int) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("History:"))
	b.WriteString("\n")
	if len(m.history) == 0 {
		b.WriteString(dimStyle.Render("  (nothing asked yet)"))
	}
	start := 0
	if n := maxLines - 2; n > 0 && len(m.history) > n {
		start = len(m.history) - n
	}
	for _, h := range m.history[start:] {
		b.WriteString(dimStyle.Render("  " + h))
		b.WriteString("\n")
	}
	if m.state == stateResult {
		b.WriteString(dimStyle.Render("[enter/esc] next question  [q] quit"))
	}
	return b.String()
}

// formatAnswer turns a decoded JSON answer into display lines.
func formatAnswer(v any) []string {
	switch a := v.(type) {
	case nil:
		return []string{"null"}
	case string:
		return strings.Split(a, "\n")
	case float64:
		if a == float64(int64(a)) {
			return []string{strconv.FormatInt(int64(a), 10)}
		}
		return []string{strconv.FormatFloat(a, 'f', -1, 64)}
	case []any:
		var out []string
		for _, e := range a {
			out = append(out, formatAnswer(e)...)
		}
		if out == nil {
			return []string{"(empty)"}
		}
		return out
	default:
		return []string{fmt.Sprint(a)}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
