package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/snowball/internal/domain/tuple"
	logpkg "github.com/kailas-cloud/snowball/internal/logger"
	"github.com/kailas-cloud/snowball/internal/metrics"
	extractionuc "github.com/kailas-cloud/snowball/internal/usecase/extraction"
)

var (
	extractFiles  runOverrides
	extractOutput string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Build candidate tuples from the corpus and print them as JSON lines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx, extractFiles)
		if err != nil {
			return err
		}
		defer a.close()

		svc := extractionuc.New(a.cfg.Extraction.Workers).
			WithMetrics(metrics.TuplesBuiltTotal, metrics.TuplesDuplicateTotal, metrics.PatternsTotal)
		ctx = logpkg.With(logpkg.ContextWithLogger(ctx, a.logger), zap.String("command", "extract"))
		tuples, err := svc.Extract(ctx, a.run.Config, a.run.Sentences)
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}

		return writeOutput(extractOutput, cmd.OutOrStdout(), tuples, a.logger)
	},
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&extractFiles.parameters, "parameters", "", "parameter file (overrides run.parameters)")
	f.StringVar(&extractFiles.seeds, "seeds", "", "positive seed file (overrides run.seeds)")
	f.StringVar(&extractFiles.negativeSeeds, "negative-seeds", "", "negative seed file (overrides run.negative_seeds)")
	f.StringVar(&extractFiles.sentences, "sentences", "", "annotated sentence file (overrides run.sentences)")
	f.StringVarP(&extractOutput, "output", "o", "", "write JSON lines to this file instead of stdout")
	rootCmd.AddCommand(extractCmd)
}

// createOutput opens the -o file; replaced in tests.
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(filepath.Clean(path))
}

func writeOutput(path string, stdout io.Writer, tuples []*tuple.Tuple, logger *zap.Logger) (err error) {
	out := stdout
	if path != "" {
		f, err := createOutput(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		out = f
	}

	if err := writeJSONLines(out, tuples); err != nil {
		return err
	}
	logger.Info("Wrote candidate tuples", zap.Int("count", len(tuples)), zap.String("output", outputName(path)))
	return nil
}

// writeJSONLines encodes one tuple per line.
func writeJSONLines(w io.Writer, tuples []*tuple.Tuple) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, t := range tuples {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("encode tuple: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func outputName(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
