// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Jared Redh. All rights reserved.

// Package ask is an interactive terminal client for the answers API: pick a
// representation, pick or type a question, read the answers and timings.
package ask

import (
	tea "charm.land/bubbletea/v2"

	"github.com/jredh-dev/semweb/internal/bench"
)

type appState int

const (
	stateLoading  appState = iota // fetching the canonical questions
	stateMethod                   // choosing a representation
	stateQuestion                 // typing or picking a question
	stateWaiting                  // request in flight
	stateResult                   // showing the last answer
	stateError                    // fatal: the API is unreachable
)

// Model is the bubbletea model for the ask client.
type Model struct {
	state  appState
	width  int
	height int
	addr   string
	client AnswersClient

	methods   []bench.Method
	methodIdx int

	questions   []Question
	questionIdx int
	input       string

	asked  string
	answer *Answer
	// askErr is a failed request; it is shown in the result panel.
	askErr error
	err    error

	history []string
}

// New creates the model. addr is only displayed.
func New(addr string, client AnswersClient) Model {
	return Model{
		state:   stateLoading,
		addr:    addr,
		client:  client,
		methods: bench.Methods,
	}
}

// Init fetches the canonical questions.
func (m Model) Init() tea.Cmd {
	return m.doQuestions()
}

// --- Commands ---

func (m Model) doQuestions() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		qs, err := client.Questions()
		return questionsMsg{questions: qs, err: err}
	}
}

func (m Model) doAsk(question string) tea.Cmd {
	client := m.client
	method := m.methods[m.methodIdx]
	return func() tea.Msg {
		a, err := client.Ask(method.Slug, question)
		return answerMsg{method: method.Name, question: question, answer: a, err: err}
	}
}
