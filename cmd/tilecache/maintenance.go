package main

import (
	"fmt"

	"github.com/avery/tilecache/internal/cache"
	"github.com/avery/tilecache/internal/logx"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune BYTES",
	Short: "Reclaim the oldest tiles unique to the default set until BYTES is freed (at most 128 tiles per run)",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrune,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the cache's data tables",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(resetCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	bytes, err := humanize.ParseBytes(args[0])
	if err != nil {
		return fmt.Errorf("invalid byte count %q: %w", args[0], err)
	}

	w := newWorker()
	task := cache.NewPruneCacheTask(int64(bytes))
	if err := cache.Do(w, task); err != nil {
		return fmt.Errorf("failed to prune cache: %w", err)
	}

	logx.Infof("prune pass complete (requested %s)", humanize.Bytes(bytes))
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	w := newWorker()
	task := cache.NewResetTask()
	if err := cache.Do(w, task); err != nil {
		return fmt.Errorf("failed to reset cache: %w", err)
	}

	logx.Infof("cache reset")
	return nil
}
