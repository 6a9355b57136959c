package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/keesvv/lot/internal/quote"
)

// Layout of a cache artifact:
//
//	"LOT" | version byte | flags byte | payload
//
// The payload, optionally zstd-compressed, is a uvarint record count
// followed by one entry per record:
//
//	source flag byte (0 or 1) | [uvarint len | source] | uvarint len | text
const (
	magic         = "LOT"
	formatVersion = 1

	flagCompressed byte = 1 << 0

	headerSize = len(magic) + 2
)

var (
	errBadMagic     = errors.New("not a quote cache")
	errTruncated    = errors.New("unexpected end of data")
	errTrailingData = errors.New("trailing data after last record")
)

// encodePayload appends the uncompressed record encoding of quotes to dst.
func encodePayload(dst []byte, quotes []quote.Quote) ([]byte, error) {
	dst = binary.AppendUvarint(dst, uint64(len(quotes)))
	for i, q := range quotes {
		if q.Text() == "" {
			return nil, fmt.Errorf("quote %d: empty text", i)
		}
		if !utf8.ValidString(q.Text()) {
			return nil, fmt.Errorf("quote %d: text is not valid UTF-8", i)
		}

		source, ok := q.Source()
		if ok {
			if source == "" {
				return nil, fmt.Errorf("quote %d: empty source", i)
			}
			if !utf8.ValidString(source) {
				return nil, fmt.Errorf("quote %d: source is not valid UTF-8", i)
			}
			dst = append(dst, 1)
			dst = appendString(dst, source)
		} else {
			dst = append(dst, 0)
		}
		dst = appendString(dst, q.Text())
	}
	return dst, nil
}

func appendString(dst []byte, s string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

// decodePayload is the inverse of encodePayload. It rejects anything that
// encodePayload could not have produced.
func decodePayload(data []byte) ([]quote.Quote, error) {
	r := payloadReader{buf: data}

	count, err := r.readUvarint()
	if err != nil {
		return nil, err
	}
	// Every record takes at least a flag byte and a length byte.
	if count > uint64(len(r.buf))/2 {
		return nil, fmt.Errorf("record count %d exceeds data size", count)
	}

	quotes := make([]quote.Quote, 0, count)
	for i := uint64(0); i < count; i++ {
		flag, err := r.readByte()
		if err != nil {
			return nil, err
		}

		var (
			source    string
			hasSource bool
		)
		switch flag {
		case 0:
		case 1:
			hasSource = true
			if source, err = r.readString(); err != nil {
				return nil, err
			}
			if source == "" {
				return nil, fmt.Errorf("record %d: empty source", i)
			}
		default:
			return nil, fmt.Errorf("record %d: invalid source flag %d", i, flag)
		}

		text, err := r.readString()
		if err != nil {
			return nil, err
		}
		if text == "" {
			return nil, fmt.Errorf("record %d: empty text", i)
		}

		if hasSource {
			quotes = append(quotes, quote.Attributed(text, source))
		} else {
			quotes = append(quotes, quote.New(text))
		}
	}

	if len(r.buf) != 0 {
		return nil, errTrailingData
	}
	return quotes, nil
}

func encodeHeader(flags byte) []byte {
	h := make([]byte, 0, headerSize)
	h = append(h, magic...)
	return append(h, formatVersion, flags)
}

func decodeHeader(data []byte) (flags byte, payload []byte, err error) {
	if len(data) < headerSize || !bytes.Equal(data[:len(magic)], []byte(magic)) {
		return 0, nil, errBadMagic
	}
	if v := data[len(magic)]; v != formatVersion {
		return 0, nil, fmt.Errorf("unsupported format version %d", v)
	}
	flags = data[len(magic)+1]
	if flags&^flagCompressed != 0 {
		return 0, nil, fmt.Errorf("unknown flags %#x", flags)
	}
	return flags, data[headerSize:], nil
}

type payloadReader struct {
	buf []byte
}

func (r *payloadReader) readByte() (byte, error) {
	if len(r.buf) == 0 {
		return 0, errTruncated
	}
	b := r.buf[0]
	r.buf = r.buf[1:]
	return b, nil
}

func (r *payloadReader) readUvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf)
	if n <= 0 {
		return 0, errTruncated
	}
	r.buf = r.buf[n:]
	return v, nil
}

func (r *payloadReader) readString() (string, error) {
	n, err := r.readUvarint()
	if err != nil {
		return "", err
	}
	if n > uint64(len(r.buf)) {
		return "", errTruncated
	}
	s := r.buf[:n]
	r.buf = r.buf[n:]
	if !utf8.Valid(s) {
		return "", errors.New("string is not valid UTF-8")
	}
	return string(s), nil
}
