package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jredh-dev/semweb/services/answers/internal/crawler"
	"github.com/jredh-dev/semweb/services/answers/internal/graph/store"
)

var (
	crawlDB        string
	crawlMaxPages  int
	crawlDelay     time.Duration
	crawlUserAgent string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [source]",
	Short: "Load JSON-LD from pages into the knowledge graph",
	Long:  "Source is a directory of HTML files or an http(s) URL whose same-host links are followed. Defaults to the configured RDFa directory.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCrawl,
}

func init() {
	crawlCmd.Flags().StringVar(&crawlDB, "db", "", "Knowledge graph database (default: config graph_db)")
	crawlCmd.Flags().IntVar(&crawlMaxPages, "max-pages", 0, "Stop after this many pages (0: no limit)")
	crawlCmd.Flags().DurationVar(&crawlDelay, "delay", 0, "Pause between HTTP requests")
	crawlCmd.Flags().StringVar(&crawlUserAgent, "user-agent", crawler.DefaultUserAgent, "User-Agent for HTTP requests")
}

// openStore opens the graph database, creating its directory.
func openStore(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create graph dir")
	}
	return store.Open(path)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	source := cfg.RDFaDir
	if len(args) == 1 {
		source = args[0]
	}

	st, err := openStore(orDefault(crawlDB, cfg.GraphDB))
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	spinner, _ := pterm.DefaultSpinner.Start("crawling " + source)
	c := crawler.New(st, crawler.Options{
		MaxPages:  crawlMaxPages,
		Delay:     crawlDelay,
		UserAgent: crawlUserAgent,
	})
	stats, err := c.Crawl(ctx, source)
	if err != nil {
		spinner.Fail(err.Error())
		return err
	}
	spinner.Success("crawled " + source)

	total, err := st.Len()
	if err != nil {
		return err
	}
	return pterm.DefaultTable.WithBoxed().WithData(pterm.TableData{
		{"pages seen", strconv.Itoa(stats.PagesSeen)},
		{"pages parsed", strconv.Itoa(stats.PagesParsed)},
		{"json-ld blocks", strconv.Itoa(stats.Blocks)},
		{"objects", strconv.Itoa(stats.Objects)},
		{"triples added", strconv.Itoa(stats.TriplesAdded)},
		{"errors", strconv.Itoa(stats.Errors)},
		{"graph size", strconv.Itoa(total)},
	}).Render()
}
