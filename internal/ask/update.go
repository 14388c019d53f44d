// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Jared Redh. All rights reserved.

package ask

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
)

const maxHistory = 20

// Update is the bubbletea update function.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case questionsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.questions = msg.questions
		m.state = stateMethod
		return m, nil

	case answerMsg:
		return m.handleAnswer(msg)
	}

	return m, nil
}

// --- Key Handling ---

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Code == 'c' && k.Mod == tea.ModCtrl {
		return m, tea.Quit
	}

	switch m.state {
	case stateMethod:
		return m.handleMethodKey(k)
	case stateQuestion:
		return m.handleQuestionKey(k)
	case stateResult:
		switch k.Code {
		case tea.KeyEnter, tea.KeyEscape:
			m.state = stateQuestion
			m.input = ""
		case 'q':
			return m, tea.Quit
		}
	case stateError:
		if k.Code == 'q' || k.Code == tea.KeyEscape {
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m Model) handleMethodKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyUp, 'k':
		if m.methodIdx > 0 {
			m.methodIdx--
		}
	case tea.KeyDown, 'j':
		if m.methodIdx < len(m.methods)-1 {
			m.methodIdx++
		}
	case tea.KeyEnter:
		m.state = stateQuestion
		m.input = ""
	case 'q', tea.KeyEscape:
		return m, tea.Quit
	}
	return m, nil
}

// Arrow keys move through the canonical questions; anything typed becomes a
// free-text question that wins over the selection.
func (m Model) handleQuestionKey(k tea.Key) (tea.Model, tea.Cmd) {
	switch k.Code {
	case tea.KeyUp:
		if m.questionIdx > 0 {
			m.questionIdx--
		}
	case tea.KeyDown:
		if m.questionIdx < len(m.questions)-1 {
			m.questionIdx++
		}
	case tea.KeyEscape:
		m.state = stateMethod
		m.input = ""
	case tea.KeyEnter:
		q := strings.TrimSpace(m.input)
		if q == "" && len(m.questions) > 0 {
			q = m.questions[m.questionIdx].Question
		}
		if q == "" {
			return m, nil
		}
		m.state = stateWaiting
		m.asked = q
		return m, m.doAsk(q)
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			r := []rune(m.input)
			m.input = string(r[:len(r)-1])
		}
	default:
		if k.Text != "" {
			m.input += k.Text
		}
	}
	return m, nil
}

func (m Model) handleAnswer(msg answerMsg) (tea.Model, tea.Cmd) {
	m.state = stateResult
	m.answer, m.askErr = msg.answer, msg.err

	entry := fmt.Sprintf("%s: %s", msg.method, msg.question)
	if msg.err != nil {
		entry += " (error)"
	} else if msg.answer != nil {
		entry += fmt.Sprintf(" (%.2f ms)", msg.answer.ProcessingMS)
	}
	m.history = append(m.history, entry)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	return m, nil
}
