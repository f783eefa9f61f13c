package main

import (
	"fmt"

	"github.com/avery/tilecache/internal/cache"
	"github.com/avery/tilecache/internal/logx"
	"github.com/avery/tilecache/internal/provider"
	"github.com/spf13/cobra"
)

var createSetCmd = &cobra.Command{
	Use:   "create-set NAME",
	Short: "Plan and persist a new tile set over a bounding box",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateSet,
}

func init() {
	rootCmd.AddCommand(createSetCmd)

	createSetCmd.Flags().Float64("top-left-lat", 0, "top-left latitude")
	createSetCmd.Flags().Float64("top-left-lon", 0, "top-left longitude")
	createSetCmd.Flags().Float64("bottom-right-lat", 0, "bottom-right latitude")
	createSetCmd.Flags().Float64("bottom-right-lon", 0, "bottom-right longitude")
	createSetCmd.Flags().Int("min-zoom", 3, "minimum zoom level")
	createSetCmd.Flags().Int("max-zoom", 3, "maximum zoom level")
	createSetCmd.Flags().String("provider", string(provider.OSM), "provider (osm, bing, google, custom)")
}

func runCreateSet(cmd *cobra.Command, args []string) error {
	topLeftLat, _ := cmd.Flags().GetFloat64("top-left-lat")
	topLeftLon, _ := cmd.Flags().GetFloat64("top-left-lon")
	bottomRightLat, _ := cmd.Flags().GetFloat64("bottom-right-lat")
	bottomRightLon, _ := cmd.Flags().GetFloat64("bottom-right-lon")
	minZoom, _ := cmd.Flags().GetInt("min-zoom")
	maxZoom, _ := cmd.Flags().GetInt("max-zoom")
	providerName, _ := cmd.Flags().GetString("provider")

	spec := cache.TileSetSpec{
		Name: args[0],
		Box: cache.BoundingBox{
			TopLeftLat:     topLeftLat,
			TopLeftLon:     topLeftLon,
			BottomRightLat: bottomRightLat,
			BottomRightLon: bottomRightLon,
		},
		MinZoom:      minZoom,
		MaxZoom:      maxZoom,
		ProviderType: provider.Type(providerName),
	}

	w := newWorker()
	task := cache.NewCreateTileSetTask(spec)
	if err := cache.Do(w, task); err != nil {
		return fmt.Errorf("failed to create tile set: %w", err)
	}

	logx.Infof("created tile set %q (id %d) with %d planned tiles", task.Set.Name, task.Set.ID, task.Set.NumTiles)
	return nil
}
