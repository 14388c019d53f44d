package cmd

import (
	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/jredh-dev/semweb/internal/ask"
)

var askBaseURL string

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Interactive client for the answers service",
	Args:  cobra.NoArgs,
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askBaseURL, "base-url", "", "Answers service URL (default: http://localhost:<port>)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	url := baseURL(askBaseURL)
	_, err := tea.NewProgram(ask.New(url, ask.NewAnswersClient(url))).Run()
	return err
}
