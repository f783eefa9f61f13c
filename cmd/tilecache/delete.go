package main

import (
	"fmt"

	"github.com/avery/tilecache/internal/cache"
	"github.com/avery/tilecache/internal/logx"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete SET_ID",
	Short: "Delete a tile set and the tiles unique to it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	setID, err := parseSetID(args[0])
	if err != nil {
		return err
	}

	w := newWorker()
	task := cache.NewDeleteTileSetTask(setID)
	if err := cache.Do(w, task); err != nil {
		return fmt.Errorf("failed to delete tile set: %w", err)
	}

	logx.Infof("deleted tile set %d", setID)
	return nil
}
