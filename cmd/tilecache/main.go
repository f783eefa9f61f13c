package main

import (
	"fmt"
	"os"

	"github.com/avery/tilecache/internal/config"
	"github.com/avery/tilecache/internal/logx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time via -ldflags.
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "tilecache",
		Short: "Inspect and manage a map tile cache database",
		Long: `tilecache operates the persistent, disk-backed map-tile cache used by a
mapping UI's background download worker: tile sets, the download queue,
maintenance (prune/reset) and database import/export.`,
		Version: Version,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/tilecache/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "cache database file (default: XDG data dir)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("$XDG_CONFIG_HOME/tilecache")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TILECACHE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logx.Debugf("using config file: %s", viper.ConfigFileUsed())
	}

	logx.SetVerbose(viper.GetBool("verbose"))
	logx.SetQuiet(viper.GetBool("quiet"))
}

func databasePath() string {
	return config.GetString("db", config.DefaultDatabasePath())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
