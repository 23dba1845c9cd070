package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/recordkit/recstamp/internal/config"
	"github.com/recordkit/recstamp/internal/storage"
)

var (
	runsLimit int

	runsCmd = &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded stamping runs",
		Long:  `List, show, and clear the local history of stamping runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runsListCmd.RunE(cmd, args)
		},
	}

	runsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := context.Background()
			runs, err := store.ListRuns(ctx, runsLimit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			// Table by default; honor -o only when given explicitly.
			out := ""
			if flag := cmd.Flag("output"); flag != nil && flag.Changed {
				out = viper.GetString("output")
			}

			switch out {
			case "yaml":
				enc := yaml.NewEncoder(os.Stdout)
				defer enc.Close()
				return enc.Encode(runs)
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			default:
				printRunsTable(runs)
				total, err := store.TotalRecords(ctx)
				if err != nil {
					return fmt.Errorf("failed to total records: %w", err)
				}
				color.New(color.FgYellow, color.Bold).Printf("%d run(s), %d record(s) stamped in total\n", len(runs), total)
				return nil
			}
		},
	}

	runsShowCmd = &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(context.Background(), args[0])
			if err != nil {
				if storage.IsNotFound(err) {
					return fmt.Errorf("no run with id %s", args[0])
				}
				return fmt.Errorf("failed to get run: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		},
	}

	runsClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove all recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.ClearRuns(context.Background()); err != nil {
				return fmt.Errorf("failed to clear runs: %w", err)
			}
			fmt.Println("Run history cleared")
			return nil
		},
	}
)

func init() {
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "l", 20, "maximum number of runs to list (0 for all)")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsClearCmd)
	rootCmd.AddCommand(runsCmd)
}

// openHistory opens the run history store configured in settings.
func openHistory() (storage.RunStorage, error) {
	settings := config.Load()
	store := storage.NewBoltDBStorage(&storage.BoltOptions{Path: settings.HistoryPath})
	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return store, nil
}

// printRunsTable renders runs as a fixed-width table.
func printRunsTable(runs []*storage.RunInfo) {
	header := color.New(color.FgCyan, color.Bold)
	header.Printf("%-36s  %-30s  %8s  %-6s  %s\n", "ID", "SOURCE", "RECORDS", "OUTPUT", "STAMPED AT")

	for _, run := range runs {
		fmt.Printf("%-36s  %-30s  %8d  %-6s  %s\n",
			run.ID,
			truncate(run.Source, 30),
			run.Records,
			run.Output,
			run.FinishedAt.Format(time.RFC3339))
	}
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
