package main

import (
	"fmt"

	"github.com/avery/tilecache/internal/cache"
	"github.com/avery/tilecache/internal/logx"
	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename SET_ID NEW_NAME",
	Short: "Rename a tile set in place",
	Args:  cobra.ExactArgs(2),
	RunE:  runRename,
}

func init() {
	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	setID, err := parseSetID(args[0])
	if err != nil {
		return err
	}

	w := newWorker()
	task := cache.NewRenameTileSetTask(setID, args[1])
	if err := cache.Do(w, task); err != nil {
		return fmt.Errorf("failed to rename tile set: %w", err)
	}

	logx.Infof("renamed tile set %d to %q", setID, args[1])
	return nil
}
