package main

import (
	"fmt"
	"os"

	"github.com/avery/tilecache/internal/cache"
	"github.com/avery/tilecache/internal/logx"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch HASH",
	Short: "Fetch a single cached tile's bytes by hash",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().String("out", "", "write the tile bytes to this file instead of stdout")
}

func runFetch(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")

	w := newWorker()
	task := cache.NewFetchTileTask(args[0])
	if err := cache.Do(w, task); err != nil {
		return fmt.Errorf("failed to fetch tile: %w", err)
	}

	if out == "" {
		_, err := os.Stdout.Write(task.Tile.Bytes)
		return err
	}

	if err := os.WriteFile(out, task.Tile.Bytes, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	logx.Infof("wrote %d bytes to %s", len(task.Tile.Bytes), out)
	return nil
}
