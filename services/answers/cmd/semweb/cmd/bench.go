package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jredh-dev/semweb/internal/bench"
	"github.com/jredh-dev/semweb/services/answers/internal/catalogue"
)

var (
	benchBaseURL    string
	benchIterations int
	benchQPS        float64
	benchCSV        string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure answer latency per question and representation",
	Long:  "Sends the ten canonical questions to every representation of a running answers service and reports server and client latency.",
	Args:  cobra.NoArgs,
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().StringVar(&benchBaseURL, "base-url", "", "Answers service URL (default: http://localhost:<port>)")
	benchCmd.Flags().IntVarP(&benchIterations, "iterations", "n", 10, "Requests per question and representation")
	benchCmd.Flags().Float64Var(&benchQPS, "qps", 0, "Maximum requests per second (0: unthrottled)")
	benchCmd.Flags().StringVar(&benchCSV, "csv", "", "Also write the summary to this CSV file")
}

// benchQuestions labels the catalogue questions R1..R10.
func benchQuestions() ([]bench.Question, error) {
	cat, err := catalogue.Load()
	if err != nil {
		return nil, err
	}
	qs := make([]bench.Question, len(cat.Entries))
	for i, e := range cat.Entries {
		qs[i] = bench.Question{Label: fmt.Sprintf("R%d", i+1), Text: e.Question}
	}
	return qs, nil
}

func baseURL(flag string) string {
	return orDefault(flag, "http://localhost:"+cfg.Port)
}

func runBench(cmd *cobra.Command, args []string) error {
	qs, err := benchQuestions()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	total := benchIterations * len(bench.Methods) * len(qs)
	bar, _ := pterm.DefaultProgressbar.WithTotal(total).WithTitle("bench").Start()
	r := &bench.Runner{
		BaseURL:    baseURL(benchBaseURL),
		Iterations: benchIterations,
		QPS:        benchQPS,
		Questions:  qs,
		Progress:   func(done, total int) { bar.Increment() },
	}
	rep, err := r.Run(ctx)
	_, _ = bar.Stop()
	if err != nil {
		return err
	}

	out, err := rep.Render()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	pterm.Info.Printfln("run %s: %d samples, %d skipped, %s", rep.ID, len(rep.Samples), rep.Skipped, rep.Elapsed.Round(time.Millisecond))

	if benchCSV != "" {
		f, err := os.Create(benchCSV)
		if err != nil {
			return errors.Wrap(err, "create csv")
		}
		defer f.Close()
		if err := rep.WriteCSV(f); err != nil {
			return err
		}
		pterm.Success.Printfln("summary written to %s", benchCSV)
	}
	return nil
}
