// Package main provides the entry point for the lot CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/keesvv/lot/internal/config"
	"github.com/keesvv/lot/internal/quote"
	"github.com/keesvv/lot/internal/store"
)

const maxWidth = 120

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile        string
	defaultConfigFile string
	copyQuote         bool

	rootCmd = &cobra.Command{
		Use:   "lot",
		Short: "Print a random quote from your collection",
		Long: paragraph(
			fmt.Sprintf("\nPrint a %s from your collection. Run %s after changing your quote files.",
				keyword("random quote"), keyword("lot reload")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return readConfigFlag()
		},
		RunE: execute,
	}
)

// readConfigFlag loads the file given with --config, which takes
// precedence over the default search locations.
func readConfigFlag() error {
	if configFile == "" {
		return nil
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("unable to read config file: %w", err)
	}
	log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
	return nil
}

// loadConfig resolves the configuration of this invocation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	return cfg, nil
}

func execute(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out, err := renderQuote(cfg, quote.NewRand(), resolveWidth(cfg.Width))
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), out); err != nil {
		return fmt.Errorf("unable to write to writer: %w", err)
	}

	if copyQuote {
		// Copy using OSC 52
		termenv.Copy(out)
		// Copy using native system clipboard
		if err := clipboard.WriteAll(out); err != nil {
			log.Debug("native clipboard unavailable", "error", err)
		}
	}
	return nil
}

// renderQuote loads the cache, picks one quote and formats it.
func renderQuote(cfg *config.Config, r *rand.Rand, width int) (string, error) {
	s, err := store.New(store.Options{})
	if err != nil {
		return "", err
	}
	defer s.Close() //nolint:errcheck

	quotes, err := s.Load(cfg.CacheFile)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w (run 'lot reload' to build the cache)", err)
	}
	if err != nil {
		return "", err
	}
	log.Debug("loaded quote cache", "path", cfg.CacheFile, "quotes", len(quotes))

	q, err := quote.Choose(r, quotes)
	if err != nil {
		return "", err
	}
	return quote.Format(quote.Wrap(q, width)), nil
}

// resolveWidth turns the configured width into a wrap column; -1 means
// the terminal width, when stdout is a terminal.
func resolveWidth(width int) int {
	if width != -1 {
		return width
	}
	fd := int(os.Stdout.Fd()) //nolint:gosec
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return min(w, maxWidth)
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", configPath()))
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.Flags().IntP("width", "w", 0, "word-wrap quotes at width (0 disables, -1 uses the terminal width)")
	rootCmd.Flags().BoolVarP(&copyQuote, "copy", "c", false, "copy the quote to the clipboard")

	// Config bindings
	_ = viper.BindPFlag(config.KeyDebug, rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag(config.KeyWidth, rootCmd.Flags().Lookup("width"))

	rootCmd.AddCommand(reloadCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := config.Scope()
	if err := config.SetDefaults(viper.GetViper(), scope); err != nil {
		fmt.Println("Could not find default quote directories.")
		os.Exit(1)
	}

	e, err := config.LoadEnv()
	if err != nil {
		log.Warn("Could not parse environment", "err", err)
	}

	dirs, err := config.ConfigDirs(scope, e)
	if err != nil || len(dirs) == 0 {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(config.AppName)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(config.AppName)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	defaultConfigFile = filepath.Join(dirs[0], config.AppName+".yml")
}

// configPath returns the config file in effect: the --config flag, the
// file found in the default places, or where a new one would be created.
func configPath() string {
	if configFile != "" {
		return configFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return defaultConfigFile
}
