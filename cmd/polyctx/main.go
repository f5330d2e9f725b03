// Package main provides the polyctx command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/polyctx/internal/genome"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if args == nil {
		args = []string{}
	}
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

// usageError marks argument errors that should exit with ExitUsage.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// argsOrHelp accepts either no arguments, in which case the command prints
// its usage, or exactly n.
func argsOrHelp(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args) == n {
			return nil
		}
		return &usageError{msg: fmt.Sprintf("%s expects %d arguments, got %d", cmd.Name(), n, len(args))}
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "polyctx",
		Short: "Sequence-context mutation counting and polymorphism prediction",
		Long: `polyctx counts single-base mutations by their strand-collapsed flanking
sequence context, and turns a context probability model into per-position
polymorphism probabilities over genomic regions.`,
		Example: `  # Count trinucleotide contexts of a VCF against hg19
  polyctx count --reference-dir ~/ref/hg19 1 variants.vcf.gz

  # Per-position probabilities over target regions (private model columns)
  polyctx predict --reference-dir ~/ref/hg19 targets.bed model.tsv 1`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ~/.polyctx.yaml)")
	pf.String("reference-dir", "", "Directory holding per-chromosome reference files")
	pf.String("reference-pattern", genome.DefaultPattern, "File name pattern for a chromosome")
	pf.Int("line-width", genome.DefaultLineWidth, "Sequence characters per reference line")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("db", "", "DuckDB file to record results in (optional)")

	viper.BindPFlag("reference.dir", pf.Lookup("reference-dir"))
	viper.BindPFlag("reference.pattern", pf.Lookup("reference-pattern"))
	viper.BindPFlag("reference.line_width", pf.Lookup("line-width"))
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("db.path", pf.Lookup("db"))

	cmd.AddCommand(newCountCmd())
	cmd.AddCommand(newPredictCmd())
	cmd.AddCommand(newDownloadCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// referencePaths returns the configured reference file layout.
func referencePaths() genome.Paths {
	return genome.Paths{
		Dir:     viper.GetString("reference.dir"),
		Pattern: viper.GetString("reference.pattern"),
	}
}

// newLogger builds the console logger at the configured level.
func newLogger() (*zap.Logger, error) {
	return newConsoleLogger(viper.GetString("log.level"))
}
