package main

import (
	"fmt"
	"os"

	"github.com/avery/tilecache/internal/cache"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var downloadListCmd = &cobra.Command{
	Use:   "download-list SET_ID",
	Short: "Pull up to --count pending tiles for a set and mark them downloading",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownloadList,
}

var markCmd = &cobra.Command{
	Use:   "mark SET_ID HASH STATE",
	Short: "Transition a download row's state (pending, downloading, complete, error)",
	Long:  "STATE is one of pending, downloading, complete, error. HASH may be \"*\" to apply pending, downloading or error to every row in the set; complete removes only the row named by HASH.",
	Args:  cobra.ExactArgs(3),
	RunE:  runMark,
}

func init() {
	rootCmd.AddCommand(downloadListCmd)
	rootCmd.AddCommand(markCmd)

	downloadListCmd.Flags().Int("count", 50, "maximum number of tiles to return")
}

func runDownloadList(cmd *cobra.Command, args []string) error {
	setID, err := parseSetID(args[0])
	if err != nil {
		return err
	}
	count, _ := cmd.Flags().GetInt("count")

	w := newWorker()
	task := cache.NewGetDownloadListTask(setID, count)
	if err := cache.Do(w, task); err != nil {
		return fmt.Errorf("failed to get download list: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Hash", "Provider", "X", "Y", "Z"})
	for _, tile := range task.Tiles {
		t.AppendRow(table.Row{tile.Hash, tile.ProviderType, tile.X, tile.Y, tile.Z})
	}
	t.Render()
	return nil
}

func parseDownloadState(s string) (cache.DownloadState, error) {
	switch s {
	case "pending":
		return cache.StatePending, nil
	case "downloading":
		return cache.StateDownloading, nil
	case "complete":
		return cache.StateComplete, nil
	case "error":
		return cache.StateError, nil
	default:
		return 0, fmt.Errorf("unknown state %q", s)
	}
}

func runMark(cmd *cobra.Command, args []string) error {
	setID, err := parseSetID(args[0])
	if err != nil {
		return err
	}
	state, err := parseDownloadState(args[2])
	if err != nil {
		return err
	}

	w := newWorker()
	task := cache.NewUpdateDownloadStateTask(setID, args[1], state)
	if err := cache.Do(w, task); err != nil {
		return fmt.Errorf("failed to update download state: %w", err)
	}
	return nil
}
