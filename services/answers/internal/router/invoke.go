package router

import (
	"math"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jredh-dev/semweb/services/answers/internal/normalize"
)

// Result is one answered question.
type Result struct {
	Title  string `json:"title"`
	Answer any    `json:"answer"`
}

// Response is what a request produces: the normalized question, the answers
// in winning order, and the time spent routing and answering.
type Response struct {
	Request      string   `json:"request_question"`
	Results      []Result `json:"datas"`
	ProcessingMS float64  `json:"processing_ms"`
}

// Invoke calls each candidate's operation exactly once, in order.
//
// The first failing operation stops the batch. Its error is returned wrapped
// with the rule title and answers collected before it are dropped.
func Invoke(cands []Candidate) ([]Result, error) {
	results := make([]Result, 0, len(cands))
	for _, c := range cands {
		answer, err := c.Rule.Op()
		if err != nil {
			return nil, errors.Wrapf(err, "%s", c.Rule.Title)
		}
		results = append(results, Result{Title: c.Rule.Title, Answer: answer})
	}
	return results, nil
}

// Route normalizes raw, matches it against the table and invokes the
// winners. ProcessingMS covers the whole chain.
func (t *Table) Route(raw string) (Response, error) {
	start := time.Now()

	q := normalize.String(raw)
	results, err := Invoke(t.Match(q))
	if err != nil {
		return Response{Request: q}, err
	}

	return Response{
		Request:      q,
		Results:      results,
		ProcessingMS: roundMS(time.Since(start)),
	}, nil
}

func roundMS(d time.Duration) float64 {
	ms := float64(d) / float64(time.Millisecond)
	return math.Round(ms*100) / 100
}
