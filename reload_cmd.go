package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keesvv/lot/internal/config"
	"github.com/keesvv/lot/internal/scan"
	"github.com/keesvv/lot/internal/store"
)

var (
	watch bool

	reloadCmd = &cobra.Command{
		Use:   "reload",
		Short: "Rebuild the quote cache",
		Long: paragraph(fmt.Sprintf("\n%s every quote file in the quotes directory and rewrite the cache. A single malformed quote aborts the reload and leaves the previous cache in place.",
			keyword("Re-scan"))),
		Example: paragraph("lot reload\nlot reload --dir ~/quotes\nlot reload --watch"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if watch {
				return watchQuotes(cmd.Context(), cfg)
			}
			_, err = reload(cfg)
			return err
		},
	}
)

// reloadStats summarizes one successful reload.
type reloadStats struct {
	Quotes int
	Bytes  int64
}

// reload scans the quotes directory and overwrites the cache. Nothing is
// written unless every quote parses.
func reload(cfg *config.Config) (reloadStats, error) {
	scanner := scan.New(scan.Options{Extension: cfg.Extension, Sorted: cfg.Sorted})
	quotes, err := scanner.Scan(cfg.QuotesDir)
	if err != nil {
		return reloadStats{}, err
	}

	s, err := store.New(store.Options{Compress: cfg.Compress})
	if err != nil {
		return reloadStats{}, err
	}
	defer s.Close() //nolint:errcheck

	if err := s.Save(cfg.CacheFile, quotes); err != nil {
		return reloadStats{}, err
	}

	stats := reloadStats{Quotes: len(quotes)}
	if info, err := os.Stat(cfg.CacheFile); err == nil {
		stats.Bytes = info.Size()
	}

	log.Info("Reloaded quote cache",
		"quotes", humanize.Comma(int64(stats.Quotes)),
		"size", humanize.Bytes(uint64(stats.Bytes)), //nolint:gosec
		"path", cfg.CacheFile)
	return stats, nil
}

// watchQuotes reloads once, then again after every change to the quotes
// directory until interrupted.
func watchQuotes(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := reload(cfg); err != nil {
		log.Error("Reload failed", "error", err)
	}

	scanner := scan.New(scan.Options{Extension: cfg.Extension, Sorted: cfg.Sorted})
	return scanner.Watch(ctx, cfg.QuotesDir, scan.DefaultDebounce, func() error {
		_, err := reload(cfg)
		return err
	})
}

func init() {
	reloadCmd.Flags().BoolVar(&watch, "watch", false, "keep running and reload whenever a quote file changes")
	reloadCmd.Flags().String("dir", "", "quotes directory to scan (overrides the configured one)")

	_ = viper.BindPFlag(config.KeyQuotesDir, reloadCmd.Flags().Lookup("dir"))
}
