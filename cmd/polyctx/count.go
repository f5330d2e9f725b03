package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/polyctx/internal/counter"
	"github.com/inodb/polyctx/internal/duckdb"
	"github.com/inodb/polyctx/internal/genome"
	"github.com/inodb/polyctx/internal/maf"
	"github.com/inodb/polyctx/internal/output"
	"github.com/inodb/polyctx/internal/vcf"
)

type countOptions struct {
	output      string
	inputFormat string
	inMemory    bool
}

func newCountCmd() *cobra.Command {
	var opts countOptions

	cmd := &cobra.Command{
		Use:   "count <flank> <variants>",
		Short: "Count mutations by strand-collapsed sequence context",
		Long: `Count single-base substitutions in a VCF or MAF file by the reference
sequence surrounding them, with <flank> bases on either side. Each context
and its reverse complement share one entry.

Records whose reference base equals the alternate, whose context holds an N,
whose alternate is not a single base, or whose window falls off the
chromosome are written to <variants>_counts.log and skipped.`,
		Example: `  polyctx count 1 variants.vcf
  polyctx count -o counts.tsv 2 data_mutations.txt
  zcat variants.vcf.gz | polyctx count 1 -`,
		Args: argsOrHelp(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			flank, err := strconv.Atoi(args[0])
			if err != nil {
				return &usageError{msg: fmt.Sprintf("invalid flank %q", args[0])}
			}
			return runCount(flank, args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: <variants>_counts.tsv, '-' for stdout)")
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "Input format: vcf, maf (auto-detected if not specified)")
	cmd.Flags().BoolVar(&opts.inMemory, "in-memory", false, "Load each chromosome into memory instead of seeking the reference file")

	return cmd
}

func runCount(flank int, inputPath string, opts countOptions) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	format := opts.inputFormat
	if format == "" {
		format = detectInputFormat(inputPath)
	}

	var parser vcf.VariantParser
	switch format {
	case "maf":
		parser, err = maf.NewParser(inputPath)
	case "vcf":
		parser, err = vcf.NewParser(inputPath)
	default:
		return &usageError{msg: fmt.Sprintf("unknown input format %q (use vcf or maf)", format)}
	}
	if err != nil {
		return err
	}
	defer parser.Close()

	var ref genome.Accessor
	if opts.inMemory {
		mem := genome.NewSequenceReference(referencePaths())
		mem.SetLogger(logger)
		ref = mem
	} else {
		ref = genome.NewFlatReference(referencePaths(), viper.GetInt("reference.line_width"))
	}

	c, err := counter.New(ref, flank)
	if err != nil {
		return err
	}

	logPath := anomalyLogPath(inputPath)
	anomalyLogger, closeLog, err := newAnomalyLogger(logPath)
	if err != nil {
		return err
	}
	defer closeLog()
	c.SetLogger(anomalyLogger)

	outPath := opts.output
	if outPath == "" {
		outPath = defaultCountOutput(inputPath)
	}

	logger.Info("counting contexts",
		zap.String("input", inputPath),
		zap.String("format", format),
		zap.Int("flank", flank),
		zap.String("reference", referencePaths().Dir),
		zap.String("anomaly_log", logPath))

	if err := c.CountAll(parser); err != nil {
		return err
	}

	out, err := createOutput(outPath)
	if err != nil {
		return err
	}
	defer out.Abort()

	w := output.NewCountWriter(out)
	if err := w.WriteTable(c.Table()); err != nil {
		return fmt.Errorf("writing counts: %w", err)
	}
	if err := out.Commit(); err != nil {
		return err
	}

	stats := c.Stats()
	if dbPath := viper.GetString("db.path"); dbPath != "" {
		if err := recordCounts(dbPath, inputPath, c); err != nil {
			return err
		}
		logger.Info("recorded counts", zap.String("db", dbPath))
	}

	output.WriteCountSummary(os.Stderr, stats.Processed, stats.Counted, stats.Anomalies)
	return nil
}

// recordCounts stores the counter's table as a new run.
func recordCounts(dbPath, inputPath string, c *counter.Counter) error {
	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	fp, err := inputFingerprint(inputPath)
	if err != nil {
		return err
	}
	run := duckdb.NewRun("count", c.Flank(), fp)
	if err := store.RecordRun(run); err != nil {
		return err
	}
	return store.WriteCounts(run.ID, c.Table())
}

// inputFingerprint identifies an input file for a run record. Standard input
// has no size or modification time.
func inputFingerprint(path string) (duckdb.FileFingerprint, error) {
	if path == "-" {
		return duckdb.FileFingerprint{Path: path}, nil
	}
	fp, err := duckdb.StatFile(path)
	if err != nil {
		return fp, fmt.Errorf("stat input: %w", err)
	}
	return fp, nil
}

// defaultCountOutput places the count table next to the input.
func defaultCountOutput(input string) string {
	if input == "-" {
		return "-"
	}
	return strings.TrimSuffix(input, ".gz") + "_counts.tsv"
}

// detectInputFormat detects the input file format based on extension or content.
func detectInputFormat(path string) string {
	lowerPath := strings.ToLower(path)
	lowerPath = strings.TrimSuffix(lowerPath, ".gz")

	if strings.HasSuffix(lowerPath, ".vcf") {
		return "vcf"
	}
	if strings.HasSuffix(lowerPath, ".maf") {
		return "maf"
	}

	// Check for cBioPortal MAF filenames
	baseName := filepath.Base(lowerPath)
	if baseName == "data_mutations.txt" || baseName == "data_mutations_extended.txt" {
		return "maf"
	}

	if path == "-" {
		return "vcf"
	}

	file, err := os.Open(path)
	if err != nil {
		return "vcf"
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil || n == 0 {
		return "vcf"
	}

	content := string(buf[:n])
	if strings.Contains(content, "Hugo_Symbol") && strings.Contains(content, "Chromosome") {
		return "maf"
	}
	return "vcf"
}
