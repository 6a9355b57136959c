// Package scan reads a directory of quote files into an ordered collection.
package scan

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/keesvv/lot/internal/quote"
)

const (
	// BlockSeparator splits a quote file into blocks.
	BlockSeparator = "\n%"

	// DefaultExtension is the extension quote files are expected to carry.
	DefaultExtension = ".txt"
)

var errInvalidUTF8 = errors.New("stream did not contain valid UTF-8")

// Options configures a Scanner.
type Options struct {
	// Extension of the files to read, with or without the leading dot.
	Extension string

	// Sorted processes files in name order instead of directory order,
	// making the resulting collection reproducible across platforms.
	Sorted bool
}

// DefaultOptions returns the scanner defaults: .txt files in name order.
func DefaultOptions() Options {
	return Options{
		Extension: DefaultExtension,
		Sorted:    true,
	}
}

// Scanner turns quote files into quotes.
type Scanner struct {
	ext    string
	sorted bool
}

// New creates a Scanner. An empty extension falls back to DefaultExtension.
func New(opts Options) *Scanner {
	ext := opts.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Scanner{ext: ext, sorted: opts.Sorted}
}

// Matches reports whether name carries the scanner's extension.
func (s *Scanner) Matches(name string) bool {
	return filepath.Ext(name) == s.ext
}

// Scan reads every quote file directly inside dir and parses all of its
// blocks. The first I/O or parse failure aborts the scan; no partial
// collection is returned.
func (s *Scanner) Scan(dir string) ([]quote.Quote, error) {
	entries, err := s.readDir(dir)
	if err != nil {
		return nil, &quote.Error{Kind: quote.KindIO, Op: "scan", Err: err}
	}

	var quotes []quote.Quote
	for _, entry := range entries {
		if entry.IsDir() || !s.Matches(entry.Name()) {
			log.Debug("skipping entry", "name", entry.Name())
			continue
		}

		path := filepath.Join(dir, entry.Name())
		parsed, err := s.ScanFile(path)
		if err != nil {
			return nil, err
		}
		log.Debug("scanned quote file", "path", path, "quotes", len(parsed))
		quotes = append(quotes, parsed...)
	}

	return quotes, nil
}

// ScanFile parses every block of a single quote file.
func (s *Scanner) ScanFile(path string) ([]quote.Quote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &quote.Error{Kind: quote.KindIO, Op: "scan", Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &quote.Error{Kind: quote.KindIO, Op: "scan", Path: path, Err: errInvalidUTF8}
	}

	blocks := Blocks(string(data))
	quotes := make([]quote.Quote, 0, len(blocks))
	for i, block := range blocks {
		q, err := quote.Parse(block)
		if err != nil {
			return nil, &quote.Error{
				Kind:  quote.KindOf(err),
				Op:    "scan",
				Path:  path,
				Block: i + 1,
				Err:   err,
			}
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// Blocks splits file content into raw quote blocks. The file's final line
// break is not part of the last block, and a trailing block holding only
// whitespace is dropped.
func Blocks(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	content = strings.TrimSuffix(content, "\r")

	blocks := strings.Split(content, BlockSeparator)
	if last := blocks[len(blocks)-1]; strings.TrimSpace(last) == "" {
		blocks = blocks[:len(blocks)-1]
	}
	return blocks
}

func (s *Scanner) readDir(dir string) ([]os.DirEntry, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	// File.ReadDir keeps the directory's own order, unlike os.ReadDir.
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}

	if s.sorted {
		slices.SortFunc(entries, func(a, b os.DirEntry) int {
			return strings.Compare(a.Name(), b.Name())
		})
	}
	return entries, nil
}
