package cmd

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jredh-dev/semweb/services/answers/internal/graph/sparql"
)

var (
	graphDB     string
	graphOutput string
	queryFile   string
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect the knowledge graph",
}

var graphExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump every triple as N-Triples",
	Args:  cobra.NoArgs,
	RunE:  runGraphExport,
}

var graphQueryCmd = &cobra.Command{
	Use:   "query [sparql]",
	Short: "Run a SPARQL SELECT query",
	Long:  "Runs the query given as argument, or read from --file (\"-\" for stdin), and prints the bindings as a table.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGraphQuery,
}

func init() {
	graphCmd.PersistentFlags().StringVar(&graphDB, "db", "", "Knowledge graph database (default: config graph_db)")
	graphExportCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "Output file (default: stdout)")
	graphQueryCmd.Flags().StringVarP(&queryFile, "file", "f", "", "Read the query from a file")

	graphCmd.AddCommand(graphExportCmd)
	graphCmd.AddCommand(graphQueryCmd)
}

func runGraphExport(cmd *cobra.Command, args []string) error {
	st, err := openStore(orDefault(graphDB, cfg.GraphDB))
	if err != nil {
		return err
	}
	defer st.Close()

	var w io.Writer = cmd.OutOrStdout()
	if graphOutput != "" {
		f, err := os.Create(graphOutput)
		if err != nil {
			return errors.Wrap(err, "create output")
		}
		defer f.Close()
		w = f
	}

	n, err := st.WriteNTriples(w)
	if err != nil {
		return err
	}
	if graphOutput != "" {
		pterm.Success.Printfln("%d triples written to %s", n, graphOutput)
	}
	return nil
}

func readQuery(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case queryFile == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), errors.Wrap(err, "read stdin")
	case queryFile != "":
		b, err := os.ReadFile(queryFile)
		return string(b), errors.Wrap(err, "read query file")
	}
	return "", errors.New("no query: pass it as argument or with --file")
}

func runGraphQuery(cmd *cobra.Command, args []string) error {
	src, err := readQuery(cmd, args)
	if err != nil {
		return err
	}
	q, err := sparql.Parse(src)
	if err != nil {
		return err
	}

	st, err := openStore(orDefault(graphDB, cfg.GraphDB))
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.Select(context.Background(), src)
	if err != nil {
		return err
	}

	cols := q.Columns()
	data := pterm.TableData{cols}
	for _, b := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = b.String(c)
		}
		data = append(data, line)
	}
	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render(); err != nil {
		return err
	}
	pterm.Info.Println(strconv.Itoa(len(rows)) + " rows")
	return nil
}
