package cmd

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jredh-dev/semweb/services/answers/internal/season"
	"github.com/jredh-dev/semweb/services/answers/internal/season/sample"
	"github.com/jredh-dev/semweb/services/answers/internal/site"
)

var (
	generateCSV  string
	generateWeb1 string
	generateRDFa string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the Web 1.0 and RDFa sites",
	Long:  "Renders both page sets from a season CSV (date,home,away,home_goals,away_goals). Without --csv the bundled 2008-2009 season is used.",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateCSV, "csv", "", "Season CSV (default: bundled season)")
	generateCmd.Flags().StringVar(&generateWeb1, "web1", "", "Web 1.0 output directory (default: config web1_dir)")
	generateCmd.Flags().StringVar(&generateRDFa, "rdfa", "", "RDFa output directory (default: config rdfa_dir)")
}

func loadFixtures(path string) ([]season.Fixture, error) {
	if path == "" {
		return sample.Fixtures(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open season csv")
	}
	defer f.Close()
	return season.ReadCSV(f)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	fs, err := loadFixtures(generateCSV)
	if err != nil {
		return err
	}
	g, err := site.New(fs)
	if err != nil {
		return err
	}

	for _, out := range []struct {
		flavor site.Flavor
		dir    string
	}{
		{site.Web1, orDefault(generateWeb1, cfg.Web1Dir)},
		{site.RDFa, orDefault(generateRDFa, cfg.RDFaDir)},
	} {
		n, err := g.Write(out.flavor, out.dir)
		if err != nil {
			return errors.Wrapf(err, "write %s", out.flavor)
		}
		pterm.Success.Printfln("%s: %d pages in %s", out.flavor, n, out.dir)
	}
	return nil
}
