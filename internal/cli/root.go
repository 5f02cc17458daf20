package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/kmbfeed/internal/config"
	"github.com/ppiankov/kmbfeed/internal/logging"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// ExitError asks main to exit with Code after output has been written.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

var (
	verbose   bool
	configDir string
	cfg       config.Config
	build     BuildInfo
)

func newRootCmd(info BuildInfo) *cobra.Command {
	build = info
	verbose = false
	configDir = ""

	root := &cobra.Command{
		Use:           "kmbfeed",
		Short:         "KMB bus data client and POI feed replayer",
		Long:          "Fetches KMB route lists, arrival estimates and the daily POI feed, replays the feed's SQL statements into tables and reports anomalies.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(verbose, cmd.ErrOrStderr())

			dir := workDir()
			var err error
			cfg, err = config.Load(dir)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			slog.Debug("config loaded", "path", dir, "language", cfg.Language, "cache", cfg.Cache.Enabled)
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")
	root.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory holding .kmbfeed.yml (default: working directory)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newRoutesCmd())
	root.AddCommand(newETACmd())
	root.AddCommand(newRouteCmd())
	root.AddCommand(newReplayCmd())
	root.AddCommand(newAuditCmd())
	root.AddCommand(newSyncCmd())
	root.AddCommand(newCacheCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "kmbfeed %s (commit %s, built %s)\n", build.Version, build.Commit, build.Date)
			return err
		},
	}
}

// Execute runs the root command. Errors other than ExitError are printed
// to stderr before being returned.
func Execute(info BuildInfo) error {
	err := newRootCmd(info).Execute()
	if err != nil {
		var ee *ExitError
		if !errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	return err
}
