// Package cmd provides the command-line interface for typetour.
//
// Configuration System:
//
//	Settings come from several sources with clear precedence:
//	1. Command-line flags (--port, --content, etc.) - highest priority
//	2. Individual environment variables (TYPETOUR_SERVER_PORT, etc.)
//	3. The configuration file: --config, then TYPETOUR_CONFIG_FILE, then
//	   .typetour.yml in the current directory
//	4. Built-in defaults - lowest priority
//
// Environment Variables:
//
//	TYPETOUR_CONFIG_FILE: Path to a custom configuration file
//	TYPETOUR_SERVER_PORT: Override server port
//	TYPETOUR_CONTENT_PATH: Serve a content file instead of the built-in tour
//	And every other key following the TYPETOUR_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/typetour/internal/catalog"
	"github.com/conneroisu/typetour/internal/config"
	tourerrors "github.com/conneroisu/typetour/internal/errors"
	"github.com/conneroisu/typetour/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "typetour",
	Short: "An interactive, page-by-page language tour in the browser",
	Long: `typetour serves a sequence of documentation pages, each pairing a title
and optional prose with an editable code sample. Readers step through the
pages with Previous and Next, and their edits are kept for the session.

Quick Start:
  typetour serve                       Serve the built-in TypeScript tour
  typetour serve --content tour.yml    Serve your own pages
  typetour pages                       List the pages of the tour
  typetour check --content tour.yml    Lint a content file

Documentation: https://github.com/conneroisu/typetour`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .typetour.yml, can also use TYPETOUR_CONFIG_FILE env var)")
	flags.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.String("log-file", "", "also write JSON logs to this file")
	flags.String("content", "", "content file (YAML); the built-in tour when empty")

	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("log.file", flags.Lookup("log-file"))
	_ = viper.BindPFlag("content.path", flags.Lookup("content"))
}

// initConfig selects the configuration file and enables TYPETOUR_
// environment overrides. A missing file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("TYPETOUR_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".typetour")
	}

	viper.SetEnvPrefix("TYPETOUR")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig reads the configuration and explains failures.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		path := viper.ConfigFileUsed()
		if path == "" {
			path = ".typetour.yml"
		}
		return nil, explain("Failed to load configuration", err, &tourerrors.SuggestionContext{ConfigPath: path})
	}
	return cfg, nil
}

// explain attaches the suggestions that match the kind of err.
func explain(title string, err error, ctx *tourerrors.SuggestionContext) error {
	var suggestions []tourerrors.ErrorSuggestion
	switch {
	case tourerrors.IsType(err, tourerrors.ErrorTypeConfig):
		suggestions = tourerrors.ConfigurationError(err.Error(), ctx)
	case tourerrors.IsType(err, tourerrors.ErrorTypeContent), tourerrors.IsType(err, tourerrors.ErrorTypeIO):
		suggestions = tourerrors.ContentError(err, ctx)
	}
	return tourerrors.NewEnhancedError(title, err, suggestions)
}

// newLogger builds the process logger from the log section.
func newLogger(cfg *config.Config) (*logging.TourLogger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = cfg.Log.Format
	lc.File = cfg.Log.File
	lc.Component = "typetour"
	return logging.NewLogger(lc)
}

// openCatalog loads the configured content and explains failures.
func openCatalog(path string) (*catalog.Catalog, error) {
	c, err := catalog.Open(path)
	if err != nil {
		return nil, explain("Failed to load tour content", err, &tourerrors.SuggestionContext{ContentPath: path})
	}
	return c, nil
}
