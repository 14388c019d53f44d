package cmd

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jredh-dev/semweb/services/answers/internal/backend/graph"
	"github.com/jredh-dev/semweb/services/answers/internal/backend/rdfa"
	"github.com/jredh-dev/semweb/services/answers/internal/backend/web1"
	"github.com/jredh-dev/semweb/services/answers/internal/season"
)

var (
	verifyCSV  string
	verifyWeb1 string
	verifyRDFa string
	verifyDB   string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every representation gives the reference answers",
	Long:  "Answers the ten questions from each representation and compares them with answers computed directly from the season CSV.",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyCSV, "csv", "", "Season CSV the sites were generated from (default: bundled season)")
	verifyCmd.Flags().StringVar(&verifyWeb1, "web1", "", "Web 1.0 directory (default: config web1_dir)")
	verifyCmd.Flags().StringVar(&verifyRDFa, "rdfa", "", "RDFa directory (default: config rdfa_dir)")
	verifyCmd.Flags().StringVar(&verifyDB, "db", "", "Knowledge graph database (default: config graph_db)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	fs, err := loadFixtures(verifyCSV)
	if err != nil {
		return err
	}
	want, err := season.Answers(season.NewMemory(fs))
	if err != nil {
		return err
	}

	st, err := openStore(orDefault(verifyDB, cfg.GraphDB))
	if err != nil {
		return err
	}
	defer st.Close()

	type target struct {
		name string
		open func() (season.Backend, error)
	}
	targets := []target{
		{"Web 1.0", func() (season.Backend, error) { return web1.Open(orDefault(verifyWeb1, cfg.Web1Dir)) }},
		{"RDFa", func() (season.Backend, error) { return rdfa.Open(orDefault(verifyRDFa, cfg.RDFaDir)) }},
		{"Knowledge Graph", func() (season.Backend, error) { return graph.New(st), nil }},
	}

	data := pterm.TableData{{"Method", "Status", "Detail"}}
	failed := 0
	for _, t := range targets {
		b, err := t.open()
		if err != nil {
			failed++
			data = append(data, []string{t.name, pterm.Red("unavailable"), err.Error()})
			continue
		}
		got, err := season.Answers(b)
		if err != nil {
			failed++
			data = append(data, []string{t.name, pterm.Red("error"), err.Error()})
			continue
		}
		if diff := season.Diff(want, got); len(diff) > 0 {
			failed++
			data = append(data, []string{t.name, pterm.Red("mismatch"), strings.Join(diff, ", ")})
			continue
		}
		data = append(data, []string{t.name, pterm.Green("ok"), ""})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render(); err != nil {
		return err
	}
	if failed > 0 {
		return errors.Newf("%d of %d representations disagree with the reference", failed, len(targets))
	}
	return nil
}
