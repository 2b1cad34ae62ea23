// sigweave is a search tool for industrial signal wiring and relay logic:
// it bulk-imports signal lists, box wiring tables, and logic documentation
// into a local SQLite database and answers lookup queries against it.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mtsignal/sigweave/internal/configfile"
	"github.com/mtsignal/sigweave/internal/logging"
	"github.com/mtsignal/sigweave/internal/storage"
	"github.com/mtsignal/sigweave/internal/storage/sqlite"
)

var (
	Version = "dev"
	Build   = "unknown"
)

var (
	homeFlag    string
	dbFlag      string
	verboseFlag bool
	seedFlag    bool

	cfg    *configfile.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sigweave",
	Short: "sigweave - signal wiring and logic search",
	Long:  `Imports industrial signal lists, box wiring tables, and relay logic documentation into a local database and searches them.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("sigweave version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir := homeFlag
		if dir == "" {
			var err error
			if dir, err = configfile.HomeDir(); err != nil {
				return err
			}
		}

		var err error
		cfg, err = configfile.LoadFrom(dir)
		if err != nil {
			return err
		}
		if dbFlag != "" {
			cfg.DBPath = dbFlag
		}

		logger = logging.New(logging.Options{
			LogDir:  cfg.LogDir,
			Level:   cfg.LogLevel,
			Verbose: verboseFlag,
		})
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "Data directory (default: $SIGWEAVE_HOME or ~/.sigweave)")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Database path (default: <home>/sigweave.db)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&seedFlag, "seed", false, "Seed sample data into an empty database")
	rootCmd.Flags().BoolP("version", "V", false, "Print version information")
}

// openStore opens the configured database, creating directories on first
// use. Callers own Close.
func openStore(ctx context.Context) storage.Storage {
	if err := cfg.EnsureDirs(); err != nil {
		fail("Error: %v", err)
	}
	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		fail("Error: failed to open database %s: %v", cfg.DBPath, err)
	}
	if seedFlag {
		if err := seedSampleData(ctx, store); err != nil {
			_ = store.Close()
			fail("Error: failed to seed sample data: %v", err)
		}
	}
	return store
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
