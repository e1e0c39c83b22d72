// Package cmd provides the command-line interface for vedit.
//
// Configuration is read from, highest priority first:
//  1. Command-line flags (--config, --port, etc.)
//  2. VEDIT_CONFIG_FILE: path to a configuration file
//  3. Individual environment variables following VEDIT_<SECTION>_<OPTION>,
//     e.g. VEDIT_SERVER_PORT or VEDIT_AI_API_KEY
//  4. .vedit.yml in the current directory
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vedit",
	Short: "Visual editor that writes preview edits back to JSX source",
	Long: `vedit serves a live preview of a JSX/HTML project, lets you select and
restyle elements in the browser, and turns each visual change into a
minimal search/replace patch of the source file.

Quick Start:
  vedit serve                          Start the editor server
  vedit locate src/App.tsx --line 12   Show the element at a source line
  vedit patch src/App.tsx --line 12 --changes changes.json
  vedit tailwind marginTop 16px        Map a style to a utility class
  vedit mcp                            Serve the editing tools over MCP stdio`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .vedit.yml, can also use VEDIT_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig points viper at the configuration file and enables VEDIT_
// environment overrides. A missing file leaves the defaults in place.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("VEDIT_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".vedit")
	}

	viper.SetEnvPrefix("VEDIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
