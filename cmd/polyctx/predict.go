package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/polyctx/internal/duckdb"
	"github.com/inodb/polyctx/internal/genome"
	"github.com/inodb/polyctx/internal/model"
	"github.com/inodb/polyctx/internal/output"
	"github.com/inodb/polyctx/internal/predict"
	"github.com/inodb/polyctx/internal/region"
)

func newPredictCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "predict <regions> <model> <0|1>",
		Short: "Per-position polymorphism probabilities over regions",
		Long: `Scan every position of the regions file, look up the probability of its
sequence context in the model, and write one parameter per position.

Mode 0 uses the cosmopolitan model columns (1-3), mode 1 the private
columns (4-6). Positions whose context holds an N are skipped.`,
		Example: `  polyctx predict targets.bed model.tsv 0
  polyctx predict -o params.tsv targets.bed model.tsv 1`,
		Args: argsOrHelp(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			mode, err := model.ParseMode(args[2])
			if err != nil {
				return &usageError{msg: err.Error()}
			}
			return runPredict(args[0], args[1], mode, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runPredict(regionsPath, modelPath string, mode model.Mode, outputFile string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	prob, err := model.Load(modelPath, mode)
	if err != nil {
		return err
	}
	logger.Info("loaded model",
		zap.String("path", modelPath),
		zap.Stringer("mode", mode),
		zap.Int("flank", prob.Flank()),
		zap.Int("contexts", prob.Assigned()))

	regions, err := region.NewParser(regionsPath)
	if err != nil {
		return err
	}
	defer regions.Close()

	ref := genome.NewSequenceReference(referencePaths())
	ref.SetLogger(logger)

	p := predict.New(ref, prob)
	p.SetLogger(logger)

	out, err := createOutput(outputFile)
	if err != nil {
		return err
	}
	defer out.Abort()

	w := output.NewParamWriter(out)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	emit := func(param predict.Param) error {
		return w.Write(param.Chrom, param.Pos, param.Context, param.Prob)
	}

	var (
		store  *duckdb.Store
		run    duckdb.Run
		params *duckdb.ParamAppender
	)
	if dbPath := viper.GetString("db.path"); dbPath != "" {
		if store, err = duckdb.Open(dbPath); err != nil {
			return err
		}
		defer store.Close()

		fp, err := inputFingerprint(regionsPath)
		if err != nil {
			return err
		}
		run = duckdb.NewRun("predict-"+mode.String(), prob.Flank(), fp)
		if params, err = store.BeginParams(run.ID); err != nil {
			return err
		}

		writeRow := emit
		emit = func(param predict.Param) error {
			if err := writeRow(param); err != nil {
				return err
			}
			return params.Append(param)
		}
	}

	// discard drops parameters already streamed for a failed run.
	discard := func() {
		if store == nil {
			return
		}
		params.Close()
		if err := store.ClearRun(run.ID); err != nil {
			logger.Warn("could not discard partial run", zap.String("run", run.ID), zap.Error(err))
		}
	}

	if err := p.Scan(regions, emit); err != nil {
		discard()
		return err
	}
	if err := w.Flush(); err != nil {
		discard()
		return fmt.Errorf("writing params: %w", err)
	}

	if store != nil {
		if err := params.Close(); err != nil {
			store.ClearRun(run.ID)
			return err
		}
		if err := store.RecordRun(run); err != nil {
			store.ClearRun(run.ID)
			return err
		}
		logger.Info("recorded params", zap.String("db", viper.GetString("db.path")), zap.String("run", run.ID))
	}

	if err := out.Commit(); err != nil {
		if store != nil {
			store.ClearRun(run.ID)
		}
		return err
	}

	output.WriteParamSummary(os.Stderr, p.Len(), p.Skipped(), p.Sum())
	return nil
}
