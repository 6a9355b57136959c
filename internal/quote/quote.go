// Package quote holds the quote record, its text grammar and its display
// form, along with the error taxonomy shared by the scanner and the cache
// store.
package quote

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

const (
	// SourceDelimiter separates the quote body from its attribution.
	SourceDelimiter = "\n\t\t-- "

	// UnknownSource is printed in place of a missing attribution.
	UnknownSource = "Unknown"
)

// Quote is a parsed quotation. The zero value is not a valid quote; use
// Parse, New or Attributed.
type Quote struct {
	text      string
	source    string
	hasSource bool
}

// New returns an unattributed quote.
func New(text string) Quote {
	return Quote{text: text}
}

// Attributed returns a quote with the given source.
func Attributed(text, source string) Quote {
	return Quote{text: text, source: source, hasSource: true}
}

// Text returns the quotation body.
func (q Quote) Text() string {
	return q.text
}

// Source returns the attribution and whether one is present.
func (q Quote) Source() (string, bool) {
	return q.source, q.hasSource
}

// Parse converts one raw text block into a Quote.
//
// The block is split on the first SourceDelimiter. The part before it,
// trimmed, is the text and must not be empty. The part after it is kept
// verbatim as the source.
func Parse(raw string) (Quote, error) {
	text, source, found := strings.Cut(raw, SourceDelimiter)

	text = strings.TrimSpace(text)
	if text == "" {
		return Quote{}, &Error{Kind: KindEndOfInput, Op: "parse"}
	}

	// An empty attribution is treated as no attribution at all.
	if !found || source == "" {
		return New(text), nil
	}
	return Attributed(text, source), nil
}

// Format renders a quote as it is printed on the command line:
//
//	‘text’
//		— source
func Format(q Quote) string {
	source, ok := q.Source()
	if !ok {
		source = UnknownSource
	}

	var b strings.Builder
	b.Grow(len(q.text) + len(source) + 12)
	b.WriteString("‘")
	b.WriteString(q.text)
	b.WriteString("’\n\t— ")
	b.WriteString(source)
	return b.String()
}

// String implements fmt.Stringer.
func (q Quote) String() string {
	return Format(q)
}

// Wrap returns a copy of q whose text is word-wrapped at width columns.
// A width of zero or less leaves the quote untouched.
func Wrap(q Quote, width int) Quote {
	if width <= 0 {
		return q
	}
	q.text = wordwrap.String(q.text, width)
	return q
}
