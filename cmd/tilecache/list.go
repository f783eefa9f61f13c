package main

import (
	"fmt"
	"os"

	"github.com/avery/tilecache/internal/cache"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every tile set with its saved/total/unique tile stats",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	w := newWorker()

	task := cache.NewFetchTileSetsTask()
	if err := cache.Do(w, task); err != nil {
		return fmt.Errorf("failed to list tile sets: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Name", "Default", "Zoom", "Saved", "Total", "Unique"})

	for _, set := range task.Sets {
		t.AppendRow(table.Row{
			set.ID,
			set.Name,
			set.DefaultSet,
			fmt.Sprintf("%d-%d", set.MinZoom, set.MaxZoom),
			fmt.Sprintf("%d (%s)", set.SavedCount, humanize.Bytes(set.SavedSize)),
			fmt.Sprintf("%d (%s)", set.TotalCount, humanize.Bytes(set.TotalSize)),
			fmt.Sprintf("%d (%s)", set.UniqueCount, humanize.Bytes(set.UniqueSize)),
		})
	}

	t.Render()
	return nil
}
