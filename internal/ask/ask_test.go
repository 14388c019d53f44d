// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Jared Redh. All rights reserved.

package ask_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jredh-dev/semweb/internal/ask"
)

// --- Mock AnswersClient ---

type mockClient struct {
	questions    []ask.Question
	questionsErr error
	answer       *ask.Answer
	askErr       error

	slug, asked string
}

func (c *mockClient) Questions() ([]ask.Question, error) { return c.questions, c.questionsErr }
func (c *mockClient) Ask(slug, q string) (*ask.Answer, error) {
	c.slug, c.asked = slug, q
	return c.answer, c.askErr
}

func newMock() *mockClient {
	return &mockClient{
		questions: []ask.Question{
			{ID: "Q1", Title: "Leader", Question: "Quelle équipe est en tête du classement ?"},
			{ID: "Q2", Title: "Matchs joués", Question: "Combien de matchs ont été joués cette saison ?"},
		},
		answer: &ask.Answer{
			Request:      "combien de matchs",
			Results:      []ask.Result{{Title: "Matchs joués", Answer: float64(380)}},
			ProcessingMS: 0.42,
		},
	}
}

// --- Test helpers ---

func mustModel(iface tea.Model) ask.Model {
	return iface.(ask.Model)
}

func sendKey(m ask.Model, char rune) (ask.Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyPressMsg{Code: char, Text: string(char)})
	return mustModel(next), cmd
}

func press(m ask.Model, code rune) (ask.Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyPressMsg{Code: code})
	return mustModel(next), cmd
}

func runCmd(m ask.Model, cmd tea.Cmd) (ask.Model, tea.Cmd) {
	if cmd == nil {
		return m, nil
	}
	next, nextCmd := m.Update(cmd())
	return mustModel(next), nextCmd
}

// loaded returns a sized model that has fetched its questions.
func loaded(t *testing.T, c ask.AnswersClient) ask.Model {
	t.Helper()
	m := ask.New("localhost:8000", c)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = mustModel(next)
	m, _ = runCmd(m, m.Init())
	return m
}

// --- Tests ---

func TestNew_InitialView(t *testing.T) {
	m := ask.New("localhost:8000", newMock())
	v := m.View()
	assert.True(t, v.AltScreen)
	assert.Equal(t, "loading...", v.Content)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Contains(t, mustModel(next).View().Content, "localhost:8000")
}

func TestInit_ShowsMethods(t *testing.T) {
	m := loaded(t, newMock())
	content := m.View().Content
	assert.Contains(t, content, "Web 1.0")
	assert.Contains(t, content, "Knowledge Graph")
}

func TestInit_Error(t *testing.T) {
	c := newMock()
	c.questionsErr = errors.New("connection refused")
	m := loaded(t, c)
	assert.Contains(t, m.View().Content, "ERROR: connection refused")

	_, cmd := sendKey(m, 'q')
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAsk_CanonicalQuestion(t *testing.T) {
	c := newMock()
	m := loaded(t, c)

	m, _ = press(m, tea.KeyDown) // RDFa
	m, _ = press(m, tea.KeyEnter)
	assert.Contains(t, m.View().Content, "Quelle équipe est en tête")

	m, _ = press(m, tea.KeyDown) // second question
	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Contains(t, m.View().Content, "Asking: Combien de matchs")

	m, _ = runCmd(m, cmd)
	assert.Equal(t, "rdfa", c.slug)
	assert.Equal(t, "Combien de matchs ont été joués cette saison ?", c.asked)

	content := m.View().Content
	assert.Contains(t, content, "380")
	assert.Contains(t, content, "0.42 ms")
	assert.Contains(t, content, "RDFa: Combien de matchs")
}

func TestAsk_FreeTextWinsOverSelection(t *testing.T) {
	c := newMock()
	m := loaded(t, c)
	m, _ = press(m, tea.KeyEnter) // Web 1.0

	for _, r := range "leaderx" {
		m, _ = sendKey(m, r)
	}
	m, _ = press(m, tea.KeyBackspace)
	m, cmd := press(m, tea.KeyEnter)
	_, _ = runCmd(m, cmd)

	assert.Equal(t, "v1", c.slug)
	assert.Equal(t, "leader", c.asked)
}

func TestAsk_ErrorIsShownNotFatal(t *testing.T) {
	c := newMock()
	c.askErr = errors.New("status 500: boom")
	m := loaded(t, c)
	m, _ = press(m, tea.KeyEnter)
	m, cmd := press(m, tea.KeyEnter)
	m, _ = runCmd(m, cmd)

	assert.Contains(t, m.View().Content, "ERROR: status 500: boom")

	// Back to the question prompt.
	m, cmd = press(m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Contains(t, m.View().Content, "[enter] ask")
}

func TestAsk_NoMatch(t *testing.T) {
	c := newMock()
	c.answer = &ask.Answer{Results: []ask.Result{}}
	m := loaded(t, c)
	m, _ = press(m, tea.KeyEnter)
	m, cmd := press(m, tea.KeyEnter)
	m, _ = runCmd(m, cmd)
	assert.Contains(t, m.View().Content, "No matching question.")
}

func TestAsk_ListAnswer(t *testing.T) {
	c := newMock()
	c.answer = &ask.Answer{Results: []ask.Result{{
		Title:  "Plus de 70 buts",
		Answer: []any{"Chelsea", "Liverpool"},
	}}}
	m := loaded(t, c)
	m, _ = press(m, tea.KeyEnter)
	m, cmd := press(m, tea.KeyEnter)
	m, _ = runCmd(m, cmd)

	content := m.View().Content
	assert.Contains(t, content, "  Chelsea")
	assert.Contains(t, content, "  Liverpool")
}

func TestEscape_BackToMethods(t *testing.T) {
	m := loaded(t, newMock())
	m, _ = press(m, tea.KeyEnter)
	m, _ = press(m, tea.KeyEscape)
	assert.Contains(t, m.View().Content, "Representation")
}

func TestCtrlC_Quits(t *testing.T) {
	m := loaded(t, newMock())
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

// --- HTTP client ---

func TestAnswersClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.EscapedPath() {
		case "/api/questions":
			w.Write([]byte(`[{"id":"Q1","title":"Leader","question":"Qui est premier ?"}]`)) //nolint:errcheck
		case "/api/v1/Qui%20est%20premier%20%3F":
			w.Write([]byte(`{"request_question":"qui est premier","datas":[{"title":"Leader","answer":"Chelsea"}],"processing_ms":0.3}`)) //nolint:errcheck
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"boom"}`)) //nolint:errcheck
		}
	}))
	defer srv.Close()

	c := ask.NewAnswersClient(srv.URL + "/")

	qs, err := c.Questions()
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "Q1", qs[0].ID)

	a, err := c.Ask("v1", "Qui est premier ?")
	require.NoError(t, err)
	assert.Equal(t, "qui est premier", a.Request)
	require.Len(t, a.Results, 1)
	assert.Equal(t, "Chelsea", a.Results[0].Answer)
	assert.Equal(t, 0.3, a.ProcessingMS)
	assert.Positive(t, a.ClientMS)

	_, err = c.Ask("rdfa", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500: boom")
}

func TestAnswersClient_ErrorContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/questions" {
			w.Write([]byte(`not json`)) //nolint:errcheck
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := ask.NewAnswersClient(srv.URL)

	_, err := c.Questions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "questions: decode")

	_, err = c.Ask("v2", "x")
	require.Error(t, err)
	assert.Equal(t, "ask v2: status 502", err.Error())
}
