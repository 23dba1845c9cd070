package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/recordkit/recstamp/internal/config"
	"github.com/recordkit/recstamp/internal/processor"
	"github.com/recordkit/recstamp/internal/record"
	"github.com/recordkit/recstamp/internal/storage"
	"github.com/recordkit/recstamp/internal/utils/logger"
	"github.com/recordkit/recstamp/internal/watcher"
	"go.uber.org/zap"
)

var (
	inputFormat string
	watchInput  bool
	noHistory   bool

	processCmd = &cobra.Command{
		Use:   "process [file]",
		Short: "Stamp records with a processing timestamp and status",
		Long: `Read records from a JSON or YAML file (or stdin with "-"), annotate each
one with processed_at and status fields, and print the stamped records to
standard output. Without an argument a built-in sample record is stamped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runProcess,
	}
)

func init() {
	processCmd.Flags().StringVarP(&inputFormat, "format", "f", "", "input format (json|yaml), default is by file extension")
	processCmd.Flags().BoolVarP(&watchInput, "watch", "w", false, "reprocess whenever the input file changes")
	processCmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record this run in the history")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	settings := config.Load()

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	if watchInput && (path == "" || path == "-") {
		return fmt.Errorf("--watch requires an input file")
	}

	// Override of the input format, when given.
	var override record.Format
	if inputFormat != "" {
		format, err := record.ParseFormat(inputFormat)
		if err != nil {
			return err
		}
		override = format
	}

	var store storage.RunStorage
	if settings.HistoryEnabled && !noHistory {
		bolt := storage.NewBoltDBStorage(&storage.BoltOptions{Path: settings.HistoryPath})
		if err := bolt.Open(); err != nil {
			logger.Warn("Run history unavailable", zap.Error(err))
		} else {
			store = bolt
			defer store.Close()
		}
	}

	// One processor for the whole invocation so the processed count
	// accumulates across watch iterations.
	proc := processor.New(nil)

	runOnce := func() error {
		return stampOnce(proc, store, path, override, settings.Output)
	}

	if err := runOnce(); err != nil {
		return err
	}

	if watchInput {
		w, err := watcher.NewWatcher(func(string) error { return runOnce() })
		if err != nil {
			return err
		}
		defer w.Close()

		if err := w.Watch(path); err != nil {
			return err
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("Stopping watch", zap.Int("total_records", proc.Count()))
	}

	return nil
}

// stampOnce loads records from the configured source, stamps them, writes
// the result to stdout and appends a run to the history store when one is
// available.
func stampOnce(proc *processor.Processor, store storage.RunStorage, path string, override, out record.Format) error {
	records, source, err := loadRecords(path, override)
	if err != nil {
		return err
	}

	started := time.Now()
	stamped := proc.Process(records)

	encoded, err := record.Encode(stamped, out)
	if err != nil {
		return err
	}
	if _, err := os.Stdout.Write(encoded); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	finished := time.Now()
	logger.Debug("Stamped records",
		zap.String("source", source),
		zap.Int("records", len(records)),
		zap.Duration("took", finished.Sub(started)),
		zap.Int("total", proc.Count()))

	color.New(color.FgGreen).Fprintf(os.Stderr, "✓ Stamped %d record(s) from %s\n", len(records), source)

	if store != nil {
		run := &storage.RunInfo{
			ID:         uuid.NewString(),
			Source:     source,
			Records:    len(records),
			Output:     out,
			StartedAt:  started,
			FinishedAt: finished,
		}
		if err := store.CreateRun(context.Background(), run); err != nil {
			logger.Warn("Failed to record run", zap.Error(err))
		}
	}

	return nil
}

// loadRecords resolves the input source: a file path, "-" for stdin, or
// empty for the built-in sample record.
func loadRecords(path string, override record.Format) ([]processor.Record, string, error) {
	switch path {
	case "":
		return record.Sample(), "sample", nil
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read stdin: %w", err)
		}
		format := override
		if format == "" {
			format = record.JSON
		}
		records, err := record.Decode(data, format)
		if err != nil {
			return nil, "", err
		}
		return records, "stdin", nil
	default:
		format := override
		if format == "" {
			format = record.FormatForPath(path)
		}
		records, err := record.DecodeFileAs(path, format)
		if err != nil {
			return nil, "", err
		}
		return records, path, nil
	}
}
