package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/luthersystems/skeem/lisp"
	"github.com/luthersystems/skeem/parser"
	"github.com/luthersystems/skeem/repl"
	"github.com/spf13/cobra"
)

var (
	gcThreshold int
	debugLog    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "skeem",
	Short: "A small garbage collected lisp",
	Long: `Skeem is a small lisp interpreter with a mark-sweep garbage collector.

When called without a subcommand skeem starts an interactive session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interp, err := newInterp()
		if err != nil {
			return err
		}
		return repl.RunRepl(interp)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.  This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newInterp() (*lisp.Interp, error) {
	config := []lisp.Config{
		lisp.WithReader(parser.NewReader()),
		lisp.WithGCThreshold(gcThreshold),
	}
	if debugLog {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		config = append(config, lisp.WithLogger(slog.New(handler)))
	}
	return lisp.NewInterp(config...)
}

func init() {
	rootCmd.PersistentFlags().IntVar(&gcThreshold, "gc-threshold", lisp.DefaultGCThreshold,
		"Smallest heap size in bytes that triggers a garbage collection")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false,
		"Log interpreter and collector activity to stderr")
}
