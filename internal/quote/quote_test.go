package quote

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		text   string
		source string
		hasSrc bool
	}{
		{
			name:   "text with source",
			input:  "Lorem ipsum dolor sit amet\n\t\t-- Lorem Ipsum",
			text:   "Lorem ipsum dolor sit amet",
			source: "Lorem Ipsum",
			hasSrc: true,
		},
		{
			name:  "text without delimiter",
			input: "Just a line",
			text:  "Just a line",
		},
		{
			name:   "surrounding blank lines are trimmed",
			input:  "\n\n  Stay hungry.  \n\n\n\t\t-- Someone",
			text:   "Stay hungry.",
			source: "Someone",
			hasSrc: true,
		},
		{
			name:   "only the first delimiter splits",
			input:  "A\n\t\t-- B\n\t\t-- C",
			text:   "A",
			source: "B\n\t\t-- C",
			hasSrc: true,
		},
		{
			name:   "blank lines inside source are kept",
			input:  "A\n\t\t-- B\n\nC\n",
			text:   "A",
			source: "B\n\nC\n",
			hasSrc: true,
		},
		{
			name:   "multi-line text",
			input:  "line one\nline two\n\t\t-- Poet",
			text:   "line one\nline two",
			source: "Poet",
			hasSrc: true,
		},
		{
			name:  "empty source is absent",
			input: "Quiet\n\t\t-- ",
			text:  "Quiet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if q.Text() != tt.text {
				t.Errorf("Text() = %q, want %q", q.Text(), tt.text)
			}
			source, ok := q.Source()
			if ok != tt.hasSrc {
				t.Fatalf("Source() present = %v, want %v", ok, tt.hasSrc)
			}
			if source != tt.source {
				t.Errorf("Source() = %q, want %q", source, tt.source)
			}
		})
	}
}

func TestParseEndOfInput(t *testing.T) {
	inputs := []string{
		"",
		"   \n\t ",
		"\n\t\t-- Orphan Source",
		"  \n\n\t\t-- Orphan",
	}

	for _, input := range inputs {
		_, err := Parse(input)
		if err == nil {
			t.Fatalf("Parse(%q) expected error", input)
		}
		if !errors.Is(err, ErrEndOfInput) {
			t.Errorf("Parse(%q) error = %v, want ErrEndOfInput", input, err)
		}
		if KindOf(err) != KindEndOfInput {
			t.Errorf("KindOf = %v, want %v", KindOf(err), KindEndOfInput)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		q    Quote
		want string
	}{
		{"unattributed", New("X"), "‘X’\n\t— Unknown"},
		{"attributed", Attributed("X", "Y"), "‘X’\n\t— Y"},
		{"multi-line", Attributed("a\nb", "c"), "‘a\nb’\n\t— c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.q); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
			if got := tt.q.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	q := Attributed("the quick brown fox jumps over the lazy dog", "Typist")

	if got := Wrap(q, 0); got != q {
		t.Errorf("Wrap with width 0 changed the quote: %q", got.Text())
	}

	wrapped := Wrap(q, 16)
	for _, line := range strings.Split(wrapped.Text(), "\n") {
		if len(line) > 16 {
			t.Errorf("line %q exceeds 16 columns", line)
		}
	}
	if strings.Join(strings.Fields(wrapped.Text()), " ") != q.Text() {
		t.Errorf("wrapping lost words: %q", wrapped.Text())
	}
	if src, _ := wrapped.Source(); src != "Typist" {
		t.Errorf("wrapping changed source to %q", src)
	}
}

func TestChoose(t *testing.T) {
	r := NewRand()

	t.Run("empty collection", func(t *testing.T) {
		_, err := Choose(r, nil)
		if !errors.Is(err, ErrEmptyCollection) {
			t.Fatalf("Choose(nil) error = %v, want ErrEmptyCollection", err)
		}
	})

	t.Run("single element", func(t *testing.T) {
		only := Attributed("one", "me")
		for i := 0; i < 50; i++ {
			got, err := Choose(r, []Quote{only})
			if err != nil {
				t.Fatalf("Choose error: %v", err)
			}
			if got != only {
				t.Fatalf("Choose() = %v, want %v", got, only)
			}
		}
	})

	t.Run("roughly uniform", func(t *testing.T) {
		quotes := []Quote{New("a"), New("b"), New("c"), New("d")}
		const draws = 40000
		counts := make(map[string]int)
		for i := 0; i < draws; i++ {
			got, err := Choose(r, quotes)
			if err != nil {
				t.Fatalf("Choose error: %v", err)
			}
			counts[got.Text()]++
		}

		expected := draws / len(quotes)
		for _, q := range quotes {
			c := counts[q.Text()]
			if c < expected*85/100 || c > expected*115/100 {
				t.Errorf("quote %q drawn %d times, expected about %d", q.Text(), c, expected)
			}
		}
	})
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here")

	err := &Error{Kind: KindIO, Op: "load", Err: statErr}
	if !errors.Is(err, ErrIO) {
		t.Error("expected errors.Is(err, ErrIO)")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("expected errors.Is(err, fs.ErrNotExist)")
	}
	if !strings.HasPrefix(err.Error(), "load: ") {
		t.Errorf("unexpected message %q", err.Error())
	}

	scanErr := &Error{Kind: KindEndOfInput, Op: "scan", Path: "a.txt", Block: 3}
	if got, want := scanErr.Error(), "scan a.txt block 3: unexpected end of input"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if errors.Is(scanErr, ErrIO) {
		t.Error("end-of-input error must not match ErrIO")
	}
}

func TestKindString(t *testing.T) {
	kinds := map[Kind]string{
		KindEndOfInput:      "EndOfInput",
		KindIO:              "IO",
		KindSerialize:       "Serialize",
		KindDeserialize:     "Deserialize",
		KindEmptyCollection: "EmptyCollection",
		Kind(99):            "Unknown",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
