// Package store persists a quote collection as a single binary cache file
// and reads it back.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"

	"github.com/keesvv/lot/internal/quote"
)

// DefaultCompressionLevel is the zstd level used when none is configured.
const DefaultCompressionLevel = 3

// maxDecodedSize bounds the memory a corrupt or hostile artifact may claim.
const maxDecodedSize = 256 << 20

// Options configures a Store.
type Options struct {
	// Compress enables zstd compression of the payload on Save.
	Compress bool

	// CompressionLevel is the zstd level (1-22). Zero selects the default.
	CompressionLevel int
}

// Store encodes quote collections to and from cache artifacts. Artifacts
// written with or without compression can always be read back.
type Store struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// New creates a Store.
func New(opts Options) (*Store, error) {
	s := &Store{}

	if opts.Compress {
		level := opts.CompressionLevel
		if level == 0 {
			level = DefaultCompressionLevel
		}
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
			zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		s.encoder = enc
	}

	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxDecodedSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	s.decoder = dec

	return s, nil
}

// Close releases the compression resources.
func (s *Store) Close() error {
	s.decoder.Close()
	if s.encoder != nil {
		return s.encoder.Close()
	}
	return nil
}

// Encode returns the artifact bytes for quotes. The output depends on
// nothing but quotes and the store's options.
func (s *Store) Encode(quotes []quote.Quote) ([]byte, error) {
	payload, err := encodePayload(nil, quotes)
	if err != nil {
		return nil, &quote.Error{Kind: quote.KindSerialize, Op: "save", Err: err}
	}

	if s.encoder == nil {
		return append(encodeHeader(0), payload...), nil
	}
	return s.encoder.EncodeAll(payload, encodeHeader(flagCompressed)), nil
}

// Decode parses artifact bytes produced by Encode.
func (s *Store) Decode(data []byte) ([]quote.Quote, error) {
	flags, payload, err := decodeHeader(data)
	if err != nil {
		return nil, &quote.Error{Kind: quote.KindDeserialize, Op: "load", Err: err}
	}

	if flags&flagCompressed != 0 {
		payload, err = s.decoder.DecodeAll(payload, nil)
		if err != nil {
			return nil, &quote.Error{Kind: quote.KindDeserialize, Op: "load", Err: err}
		}
	}

	quotes, err := decodePayload(payload)
	if err != nil {
		return nil, &quote.Error{Kind: quote.KindDeserialize, Op: "load", Err: err}
	}
	return quotes, nil
}

// Save writes quotes to path, creating parent directories as needed. The
// artifact is written to a temporary file first and renamed into place, so
// a concurrent reader sees either the old or the new collection.
func (s *Store) Save(path string, quotes []quote.Quote) error {
	data, err := s.Encode(quotes)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec
		return &quote.Error{Kind: quote.KindIO, Op: "save", Err: err}
	}
	if err := writeFile(path, data); err != nil {
		return &quote.Error{Kind: quote.KindIO, Op: "save", Err: err}
	}

	log.Debug("wrote quote cache", "path", path, "quotes", len(quotes), "bytes", len(data))
	return nil
}

// Load reads the artifact at path. A missing file is an IO error that
// matches fs.ErrNotExist; anything unreadable is a Deserialize error.
func (s *Store) Load(path string) ([]quote.Quote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &quote.Error{Kind: quote.KindIO, Op: "load", Err: err}
	}
	return s.Decode(data)
}

func writeFile(path string, data []byte) error {
	// Write to a temp file next to the target, then rename (atomic on most
	// systems).
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tempPath := file.Name()

	_, err = file.Write(data)
	if err == nil {
		err = file.Chmod(0o644)
	}
	closeErr := file.Close()

	if err != nil {
		os.Remove(tempPath) //nolint:errcheck
		return err
	}
	if closeErr != nil {
		os.Remove(tempPath) //nolint:errcheck
		return closeErr
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath) //nolint:errcheck
		return err
	}
	return nil
}
