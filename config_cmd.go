package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
)

const defaultConfig = `# directory holding your quote files
# quotes_dir: "~/.local/share/lot/quotes"
# where the binary quote cache is written
# cache_file: "~/.cache/lot/quotes.cache"
# extension of quote files inside quotes_dir
extension: ".txt"
# compress the quote cache with zstd
compress: true
# scan quote files in name order for a reproducible cache
sorted: true
# word-wrap quotes at width (0 disables, -1 uses the terminal width)
width: 0
# enable debug logging
debug: false
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the lot config file",
	Long:    paragraph(fmt.Sprintf("\n%s the lot config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("lot config\nlot config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	// The file named by --config may not exist yet; it is created below
	// instead of being read.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(*cobra.Command, []string) error {
		file := configPath()
		if err := ensureConfigFile(file); err != nil {
			return err
		}

		c, err := editor.Cmd("Lot", file)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", file)
		return nil
	},
}

// ensureConfigFile writes the default config to file unless it exists.
func ensureConfigFile(file string) error {
	if file == "" {
		return errors.New("no configuration file location available")
	}

	if ext := path.Ext(file); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(file)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
