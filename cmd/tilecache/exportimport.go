package main

import (
	"fmt"

	"github.com/avery/tilecache/internal/cache"
	"github.com/avery/tilecache/internal/logx"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export PATH [SET_ID...]",
	Short: "Export tile sets (default: all) into a fresh database file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Merge (or, with --replace, swap in) another cache database",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Bool("replace", false, "replace the entire cache database instead of merging")
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]
	w := newWorker()

	fetch := cache.NewFetchTileSetsTask()
	if err := cache.Do(w, fetch); err != nil {
		return fmt.Errorf("failed to list tile sets: %w", err)
	}

	sets := fetch.Sets
	if len(args) > 1 {
		wanted := make(map[uint64]bool, len(args)-1)
		for _, a := range args[1:] {
			id, err := parseSetID(a)
			if err != nil {
				return err
			}
			wanted[id] = true
		}
		var filtered []*cache.TileSet
		for _, s := range sets {
			if wanted[s.ID] {
				filtered = append(filtered, s)
			}
		}
		sets = filtered
	}

	bar := progressbar.Default(100, "exporting")
	lastPercent := 0
	task := cache.NewExportTask(path, sets, func(percent int) {
		bar.Add(percent - lastPercent)
		lastPercent = percent
	})
	if err := cache.Do(w, task); err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	logx.Infof("exported %d tile set(s) to %s", len(sets), path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	replace, _ := cmd.Flags().GetBool("replace")

	w := newWorker()
	bar := progressbar.Default(100, "importing")
	lastPercent := 0
	task := cache.NewImportTask(args[0], replace, func(percent int) {
		bar.Add(percent - lastPercent)
		lastPercent = percent
	})
	if err := cache.Do(w, task); err != nil {
		return fmt.Errorf("failed to import: %w", err)
	}

	logx.Infof("import complete")
	return nil
}
