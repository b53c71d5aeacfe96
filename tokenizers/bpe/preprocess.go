package bpe

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Preprocess trims leading and trailing whitespace from text and splits it in one symbol
// per rune, with every space (U+0020) replaced by marker.
//
// Whitespace for trimming is Unicode White_Space plus the ASCII information separators
// U+001C..U+001F.
func Preprocess(text, marker string) []string {
	pieces := splitPieces(text, marker)
	symbols := make([]string, len(pieces))
	for ii, p := range pieces {
		symbols[ii] = p.symbol
	}
	return symbols
}

// piece is one preprocessed symbol and the byte range of the rune it came from.
type piece struct {
	symbol     string
	start, end int
}

func isTrimSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func splitPieces(text, marker string) []piece {
	start := len(text) - len(strings.TrimLeftFunc(text, isTrimSpace))
	end := len(strings.TrimRightFunc(text, isTrimSpace))
	if start >= end {
		return nil
	}
	pieces := make([]piece, 0, utf8.RuneCountInString(text[start:end]))
	for pos, r := range text[start:end] {
		// Invalid UTF-8 bytes decode to U+FFFD with size 1.
		_, size := utf8.DecodeRuneInString(text[start+pos:])
		p := piece{start: start + pos, end: start + pos + size}
		if r == ' ' {
			p.symbol = marker
		} else {
			p.symbol = string(r)
		}
		pieces = append(pieces, p)
	}
	return pieces
}

// preprocessor holds the preprocessing settings of a Config.
type preprocessor struct {
	marker    string
	form      norm.Form
	normalize bool
}

func newPreprocessor(config *Config) (preprocessor, error) {
	form, normalize, err := normalizationForm(config.Normalization)
	if err != nil {
		return preprocessor{}, err
	}
	return preprocessor{marker: config.WhitespaceMarker, form: form, normalize: normalize}, nil
}

// Normalize applies the configured Unicode normalization, if any.
func (p preprocessor) Normalize(text string) string {
	if !p.normalize {
		return text
	}
	return p.form.String(text)
}

// pieces returns the normalized text and its preprocessed pieces, with spans into the
// normalized text.
func (p preprocessor) pieces(text string) (string, []piece) {
	text = p.Normalize(text)
	return text, splitPieces(text, p.marker)
}

func (p preprocessor) symbols(text string) []string {
	return Preprocess(p.Normalize(text), p.marker)
}
