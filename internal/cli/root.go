// Package cli implements studyctl, the admin command line for a StudyWAI
// data store. It opens the same store the server uses, so the server and
// studyctl can run side by side when a shared lock (REDIS_URL) or the
// Postgres driver is configured.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"studywai-backend/internal/app"
	"studywai-backend/internal/config"
)

type options struct {
	loadConfig func() *config.Config
	jsonOutput bool
}

// NewRootCmd builds the command tree. loadConfig is called once per command
// invocation.
func NewRootCmd(loadConfig func() *config.Config) *cobra.Command {
	opts := &options{loadConfig: loadConfig}

	root := &cobra.Command{
		Use:   "studyctl",
		Short: "Manage StudyWAI flashcards, history and study stats",
		Long: `studyctl reads and writes the StudyWAI store configured by the same
environment variables as the server (STORE_DRIVER, DATA_DIR, DATABASE_URL, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of a table")

	root.AddCommand(newInitCmd(opts), newCardsCmd(opts), newHistoryCmd(opts), newStatsCmd(opts))
	return root
}

func Execute() {
	if err := NewRootCmd(config.Load).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *options) open(cmd *cobra.Command) (*app.App, error) {
	return app.New(cmd.Context(), o.loadConfig())
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncateCell(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
