// Package config resolves where lot reads quotes from and where it keeps
// its cache, from platform directories, the config file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"

	"github.com/keesvv/lot/internal/scan"
	"github.com/keesvv/lot/utils"
)

// AppName is used for platform directories, the config file name and the
// environment variable prefix.
const AppName = "lot"

// Config keys.
const (
	KeyQuotesDir = "quotes_dir"
	KeyCacheFile = "cache_file"
	KeyExtension = "extension"
	KeyCompress  = "compress"
	KeySorted    = "sorted"
	KeyWidth     = "width"
	KeyDebug     = "debug"
)

const (
	quotesDirName = "quotes"
	cacheFileName = "quotes.cache"
)

// Config holds the resolved settings of one invocation. It is passed
// explicitly to everything that touches the filesystem.
type Config struct {
	// QuotesDir is the directory scanned by reload.
	QuotesDir string
	// CacheFile is the binary cache artifact.
	CacheFile string
	// Extension selects which files in QuotesDir hold quotes.
	Extension string
	// Compress enables zstd compression of the cache.
	Compress bool
	// Sorted scans quote files in name order.
	Sorted bool
	// Width wraps printed quotes; 0 disables wrapping, -1 uses the
	// terminal width.
	Width int
	// Debug enables debug logging.
	Debug bool
}

// Env holds settings read straight from the process environment.
type Env struct {
	Debug         bool   `env:"LOT_DEBUG"`
	ConfigHome    string `env:"LOT_CONFIG_HOME"`
	XDGConfigHome string `env:"XDG_CONFIG_HOME"`
}

// LoadEnv parses Env from the environment.
func LoadEnv() (Env, error) {
	e, err := env.ParseAs[Env]()
	if err != nil {
		return Env{}, fmt.Errorf("error parsing environment: %w", err)
	}
	return e, nil
}

// Scope returns the platform directory scope for lot.
func Scope() *gap.Scope {
	return gap.NewScope(gap.User, AppName)
}

// DefaultPaths returns the platform quotes directory and cache file.
func DefaultPaths(scope *gap.Scope) (quotesDir, cacheFile string, err error) {
	dataDirs, err := scope.DataDirs()
	if err != nil {
		return "", "", fmt.Errorf("could not find data directory: %w", err)
	}
	if len(dataDirs) == 0 {
		return "", "", errors.New("could not find data directory")
	}

	cacheDir, err := scope.CacheDir()
	if err != nil {
		return "", "", fmt.Errorf("could not find cache directory: %w", err)
	}

	return filepath.Join(dataDirs[0], quotesDirName), filepath.Join(cacheDir, cacheFileName), nil
}

// ConfigDirs returns the directories searched for the config file, most
// specific first.
func ConfigDirs(scope *gap.Scope, e Env) ([]string, error) {
	dirs, err := scope.ConfigDirs()
	if err != nil {
		return nil, fmt.Errorf("could not find configuration directory: %w", err)
	}
	if e.XDGConfigHome != "" {
		dirs = append([]string{filepath.Join(e.XDGConfigHome, AppName)}, dirs...)
	}
	if e.ConfigHome != "" {
		dirs = append([]string{e.ConfigHome}, dirs...)
	}
	return dirs, nil
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper, scope *gap.Scope) error {
	quotesDir, cacheFile, err := DefaultPaths(scope)
	if err != nil {
		return err
	}

	v.SetDefault(KeyQuotesDir, quotesDir)
	v.SetDefault(KeyCacheFile, cacheFile)
	scanDefaults := scan.DefaultOptions()
	v.SetDefault(KeyExtension, scanDefaults.Extension)
	v.SetDefault(KeyCompress, true)
	v.SetDefault(KeySorted, scanDefaults.Sorted)
	v.SetDefault(KeyWidth, 0)
	v.SetDefault(KeyDebug, false)
	return nil
}

// FromViper builds a Config from v, expanding ~ in paths and validating
// the result.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		QuotesDir: utils.ExpandPath(v.GetString(KeyQuotesDir)),
		CacheFile: utils.ExpandPath(v.GetString(KeyCacheFile)),
		Extension: strings.TrimSpace(v.GetString(KeyExtension)),
		Compress:  v.GetBool(KeyCompress),
		Sorted:    v.GetBool(KeySorted),
		Width:     v.GetInt(KeyWidth),
		Debug:     v.GetBool(KeyDebug),
	}

	if cfg.Extension != "" && !strings.HasPrefix(cfg.Extension, ".") {
		cfg.Extension = "." + cfg.Extension
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config for values lot cannot work with.
func (c *Config) Validate() error {
	if c.QuotesDir == "" {
		return fmt.Errorf("%s must not be empty", KeyQuotesDir)
	}
	if c.CacheFile == "" {
		return fmt.Errorf("%s must not be empty", KeyCacheFile)
	}
	if c.Extension == "" || c.Extension == "." {
		return fmt.Errorf("%s must not be empty", KeyExtension)
	}
	if strings.ContainsRune(c.Extension, os.PathSeparator) {
		return fmt.Errorf("%s %q must not contain a path separator", KeyExtension, c.Extension)
	}
	if c.Width < -1 {
		return fmt.Errorf("%s must be -1, 0 or positive, got %d", KeyWidth, c.Width)
	}
	if filepath.Clean(c.CacheFile) == filepath.Clean(c.QuotesDir) {
		return fmt.Errorf("%s and %s must differ", KeyCacheFile, KeyQuotesDir)
	}
	return nil
}
