package cmd

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jredh-dev/semweb/services/answers/internal/ical"
)

var (
	calendarCSV    string
	calendarTeam   string
	calendarOutput string
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Export the fixtures as an iCalendar feed",
	Args:  cobra.NoArgs,
	RunE:  runCalendar,
}

func init() {
	calendarCmd.Flags().StringVar(&calendarCSV, "csv", "", "Season CSV (default: bundled season)")
	calendarCmd.Flags().StringVar(&calendarTeam, "team", "", "Only this team's fixtures")
	calendarCmd.Flags().StringVarP(&calendarOutput, "output", "o", "", "Output file (default: stdout)")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	fs, err := loadFixtures(calendarCSV)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if calendarOutput != "" {
		f, err := os.Create(calendarOutput)
		if err != nil {
			return errors.Wrap(err, "create output")
		}
		defer f.Close()
		w = f
	}

	n, err := ical.Write(w, fs, ical.Options{Team: calendarTeam})
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Newf("no fixtures for team %q", calendarTeam)
	}
	if calendarOutput != "" {
		pterm.Success.Printfln("%d events written to %s", n, calendarOutput)
	}
	return nil
}
