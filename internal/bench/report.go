package bench

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
)

// Metrics reported for every question and method.
const (
	MetricServer = "server"
	MetricClient = "client"
)

// Row is the summary of one question, method and metric.
type Row struct {
	Question string
	Method   string
	Metric   string
	Stats    Stats
}

// Summary returns one row per question, method and metric, in report order.
func (r *Report) Summary() []Row {
	type key struct{ q, m string }
	server := make(map[key][]float64)
	client := make(map[key][]float64)
	for _, s := range r.Samples {
		k := key{s.Question, s.Method}
		server[k] = append(server[k], s.ServerMS)
		client[k] = append(client[k], s.ClientMS)
	}

	var rows []Row
	for _, q := range r.Questions {
		for _, m := range r.Methods {
			k := key{q.Label, m.Name}
			rows = append(rows,
				Row{Question: q.Label, Method: m.Name, Metric: MetricServer, Stats: Summarize(server[k])},
				Row{Question: q.Label, Method: m.Name, Metric: MetricClient, Stats: Summarize(client[k])},
			)
		}
	}
	return rows
}

var csvHeader = []string{"question", "method", "metric", "mean_ms", "median_ms", "stdev_ms", "min_ms", "max_ms"}

// WriteCSV writes the summary in long format with ';' separators.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, row := range r.Summary() {
		s := row.Stats
		if err := cw.Write([]string{
			row.Question, row.Method, row.Metric,
			ms(s.Mean), ms(s.Median), ms(s.Stdev), ms(s.Min), ms(s.Max),
		}); err != nil {
			return errors.Wrap(err, "write csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

func ms(v float64) string { return fmt.Sprintf("%.3f", v) }

// Table returns a question by method grid of "mean ± stdev" for metric,
// with a final AVG row holding the mean of each column's means.
func (r *Report) Table(metric string) pterm.TableData {
	cells := make(map[[2]string]Stats)
	for _, row := range r.Summary() {
		if row.Metric == metric {
			cells[[2]string{row.Question, row.Method}] = row.Stats
		}
	}

	header := []string{"Question"}
	for _, m := range r.Methods {
		header = append(header, m.Name)
	}
	data := pterm.TableData{header}

	sums := make([]float64, len(r.Methods))
	for _, q := range r.Questions {
		line := []string{q.Label}
		for i, m := range r.Methods {
			s := cells[[2]string{q.Label, m.Name}]
			sums[i] += s.Mean
			line = append(line, fmt.Sprintf("%.3f ± %.3f", s.Mean, s.Stdev))
		}
		data = append(data, line)
	}

	avg := []string{"AVG"}
	for _, sum := range sums {
		mean := 0.0
		if len(r.Questions) > 0 {
			mean = sum / float64(len(r.Questions))
		}
		avg = append(avg, fmt.Sprintf("%.3f", mean))
	}
	return append(data, avg)
}

// Render draws the server and client tables.
func (r *Report) Render() (string, error) {
	var out string
	for _, metric := range []string{MetricServer, MetricClient} {
		table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(r.Table(metric)).Srender()
		if err != nil {
			return "", errors.Wrap(err, "render table")
		}
		out += fmt.Sprintf("Latency (%s, ms)\n%s\n", metric, table)
	}
	return out, nil
}
