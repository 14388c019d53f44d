// Package bench measures how long each representation takes to answer the
// canonical questions over the HTTP API.
package bench

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jredh-dev/semweb/internal/logger"
)

// Method is one answer endpoint: /api/{Slug}/{question}.
type Method struct {
	Name string
	Slug string
}

// Methods are the three representations, in report order.
var Methods = []Method{
	{Name: "Web 1.0", Slug: "v1"},
	{Name: "RDFa", Slug: "rdfa"},
	{Name: "Knowledge Graph", Slug: "knowledge-graph"},
}

// Question is a labelled request text ("R1", "Quelle équipe ...").
type Question struct {
	Label string
	Text  string
}

// Sample is one successful request.
type Sample struct {
	Question string
	Method   string
	ServerMS float64
	ClientMS float64
}

// Runner sends every question to every method Iterations times.
type Runner struct {
	BaseURL    string
	Client     *http.Client
	Iterations int
	// QPS caps the request rate. Zero means unthrottled.
	QPS       float64
	Questions []Question
	Methods   []Method
	// Progress, when set, is called after each request.
	Progress func(done, total int)
}

// Report is the outcome of one run.
type Report struct {
	ID        uuid.UUID
	Started   time.Time
	Elapsed   time.Duration
	Questions []Question
	Methods   []Method
	Samples   []Sample
	Skipped   int
}

type answer struct {
	ProcessingMS float64 `json:"processing_ms"`
}

// Run executes the benchmark. Non-200 responses and transport errors are
// logged and skipped; only context cancellation stops the run.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.Iterations < 1 {
		return nil, errors.Newf("bench: iterations must be positive, got %d", r.Iterations)
	}
	base, err := url.Parse(strings.TrimSuffix(r.BaseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, errors.Newf("bench: invalid base url %q", r.BaseURL)
	}
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	methods := r.Methods
	if methods == nil {
		methods = Methods
	}
	limit := rate.Inf
	if r.QPS > 0 {
		limit = rate.Limit(r.QPS)
	}
	limiter := rate.NewLimiter(limit, 1)

	log := logger.Named("bench")
	rep := &Report{ID: uuid.New(), Started: time.Now(), Questions: r.Questions, Methods: methods}
	total := r.Iterations * len(methods) * len(r.Questions)
	done := 0

	for i := 0; i < r.Iterations; i++ {
		for _, m := range methods {
			for _, q := range r.Questions {
				if err := limiter.Wait(ctx); err != nil {
					return rep, errors.Wrap(err, "bench")
				}
				target := base.String() + "/api/" + m.Slug + "/" + url.PathEscape(q.Text)
				s, err := measure(ctx, client, target)
				done++
				if r.Progress != nil {
					r.Progress(done, total)
				}
				if err != nil {
					if ctx.Err() != nil {
						return rep, errors.Wrap(ctx.Err(), "bench")
					}
					rep.Skipped++
					log.Warnw("request skipped", "run", rep.ID, "method", m.Name, "question", q.Label, "error", err)
					continue
				}
				s.Question, s.Method = q.Label, m.Name
				rep.Samples = append(rep.Samples, s)
			}
		}
	}
	rep.Elapsed = time.Since(rep.Started)
	return rep, nil
}

func measure(ctx context.Context, client *http.Client, target string) (Sample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Sample{}, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return Sample{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	clientMS := float64(time.Since(start)) / float64(time.Millisecond)
	if err != nil {
		return Sample{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Sample{}, errors.Newf("status %d", resp.StatusCode)
	}
	var a answer
	if err := json.Unmarshal(body, &a); err != nil {
		return Sample{}, errors.Wrap(err, "decode response")
	}
	return Sample{ServerMS: a.ProcessingMS, ClientMS: clientMS}, nil
}
