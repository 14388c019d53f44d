// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 Jared Redh. All rights reserved.

package ask

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// AnswersClient is the interface for the answers REST API.
// Tests inject a mock.
type AnswersClient interface {
	Questions() ([]Question, error)
	Ask(slug, question string) (*Answer, error)
}

// --- Wire types (mirrors services/answers/internal/router) ---

type Question struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Question string `json:"question"`
}

type Result struct {
	Title  string `json:"title"`
	Answer any    `json:"answer"`
}

type Answer struct {
	Request      string   `json:"request_question"`
	Results      []Result `json:"datas"`
	ProcessingMS float64  `json:"processing_ms"`
	// ClientMS is measured locally around the round trip.
	ClientMS float64 `json:"-"`
}

// --- HTTP implementation ---

type httpAnswersClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAnswersClient(baseURL string) AnswersClient {
	return &httpAnswersClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *httpAnswersClient) Questions() ([]Question, error) {
	var qs []Question
	if err := c.get("/api/questions", &qs); err != nil {
		return nil, errors.Wrap(err, "questions")
	}
	return qs, nil
}

func (c *httpAnswersClient) Ask(slug, question string) (*Answer, error) {
	start := time.Now()
	var a Answer
	if err := c.get("/api/"+slug+"/"+url.PathEscape(question), &a); err != nil {
		return nil, errors.Wrapf(err, "ask %s", slug)
	}
	a.ClientMS = float64(time.Since(start)) / float64(time.Millisecond)
	return &a, nil
}

func (c *httpAnswersClient) get(path string, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return errors.Newf("status %d: %s", resp.StatusCode, e.Error)
		}
		return errors.Newf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode")
	}
	return nil
}
