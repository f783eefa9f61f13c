package main

import (
	"fmt"

	"github.com/avery/tilecache/internal/cache"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show overall cache totals and the default set's unique footprint",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	w := newWorker()
	task := cache.NewFetchTileSetsTask()
	if err := cache.Do(w, task); err != nil {
		return fmt.Errorf("failed to gather stats: %w", err)
	}

	for _, set := range task.Sets {
		if !set.DefaultSet {
			continue
		}
		fmt.Printf("total tiles:    %d (%s)\n", set.SavedCount, humanize.Bytes(set.SavedSize))
		fmt.Printf("default unique: %d (%s)\n", set.TotalCount, humanize.Bytes(set.TotalSize))
		return nil
	}

	fmt.Println("no default tile set found")
	return nil
}
