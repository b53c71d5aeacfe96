// Package bpe implements a character-level Byte Pair Encoding tokenizer, along with
// the trainer that learns its vocabulary.
//
// Training starts from a base alphabet (by default the 256 Latin-1 code points) plus
// every other character of the corpus, and then repeatedly merges the most frequent
// adjacent pair of tokens into a new token. The merges are kept in the order they were
// learned and replayed in that order on any text to be tokenized.
//
// Spaces are replaced by a whitespace marker (by default "▁") before training and
// tokenization, and restored by Decode.
//
// Example:
//
//	tok, err := bpe.Train(corpus, 600)
//	if err != nil {
//	    return err
//	}
//	ids, err := tok.Encode("hello world")
//	...
//	text, err := tok.Decode(ids)
package bpe

import (
	"strings"
	"unicode/utf8"

	"github.com/gomlx/go-bpe/tokenizers/api"
	"github.com/pkg/errors"
)

// Tokenizer encodes and decodes text with a trained vocabulary and merge table.
//
// It is immutable and safe for concurrent use.
type Tokenizer struct {
	config   Config
	pre      preprocessor
	vocab    *Vocabulary
	merges   []Merge
	baseSize int
}

// Compile time assert that Tokenizer implements the api interfaces.
var (
	_ api.SymbolTokenizer    = &Tokenizer{}
	_ api.TokenizerWithSpans = &Tokenizer{}
)

func newTokenizer(config Config, vocab *Vocabulary, merges []Merge, baseSize int) (*Tokenizer, error) {
	pre, err := newPreprocessor(&config)
	if err != nil {
		return nil, err
	}
	return &Tokenizer{
		config:   config,
		pre:      pre,
		vocab:    vocab,
		merges:   merges,
		baseSize: baseSize,
	}, nil
}

// NewTokenizer rebuilds a Tokenizer from the symbols of its vocabulary (indexed by id)
// and its merge table (in creation order), as returned by Vocabulary().Symbols() and
// Merges(). A nil config uses DefaultConfig.
//
// It returns an error wrapping ErrInvalidModel if they are not consistent: the last
// len(merges) symbols must be the merged ones, merge k must produce id base+k from two
// earlier ids, and its symbol must be the concatenation of theirs.
func NewTokenizer(config *Config, symbols []string, merges []Merge) (*Tokenizer, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	baseSize := len(symbols) - len(merges)
	if baseSize < 0 {
		return nil, errors.Wrapf(ErrInvalidModel, "%d merges for only %d symbols", len(merges), len(symbols))
	}

	vocab := &Vocabulary{
		symbols: make([]string, 0, len(symbols)),
		ids:     make(map[string]int, len(symbols)),
	}
	for id, s := range symbols[:baseSize] {
		if utf8.RuneCountInString(s) != 1 {
			return nil, errors.Wrapf(ErrInvalidModel, "base symbol %d (%q) is not a single rune", id, s)
		}
		if prev, found := vocab.ids[s]; found {
			return nil, errors.Wrapf(ErrInvalidModel, "base symbol %q has ids %d and %d", s, prev, id)
		}
		vocab.add(s)
	}
	if _, found := vocab.ID(config.WhitespaceMarker); !found {
		return nil, errors.Wrapf(ErrInvalidModel, "whitespace marker %q missing from base vocabulary", config.WhitespaceMarker)
	}

	for k, m := range merges {
		id := baseSize + k
		if m.ID != id {
			return nil, errors.Wrapf(ErrInvalidModel, "merge %d produces id %d, expected %d", k, m.ID, id)
		}
		if m.Pair.Left < 0 || m.Pair.Left >= id || m.Pair.Right < 0 || m.Pair.Right >= id {
			return nil, errors.Wrapf(ErrInvalidModel, "merge %d %s refers to ids not yet defined", k, m)
		}
		if want := symbols[m.Pair.Left] + symbols[m.Pair.Right]; symbols[id] != want {
			return nil, errors.Wrapf(ErrInvalidModel, "symbol %d is %q, but merge %s makes %q", id, symbols[id], m, want)
		}
		vocab.add(symbols[id])
	}

	ownMerges := make([]Merge, len(merges))
	copy(ownMerges, merges)
	return newTokenizer(*config, vocab, ownMerges, baseSize)
}

// Config returns a copy of the configuration the tokenizer was trained with.
func (t *Tokenizer) Config() Config {
	return t.config
}

// Vocabulary returns the (read-only) vocabulary.
func (t *Tokenizer) Vocabulary() *Vocabulary {
	return t.vocab
}

// Merges returns a copy of the merge table, in creation order.
func (t *Tokenizer) Merges() []Merge {
	out := make([]Merge, len(t.merges))
	copy(out, t.merges)
	return out
}

// BaseSize returns the number of base (non-merged) symbols.
func (t *Tokenizer) BaseSize() int {
	return t.baseSize
}

// VocabSize returns the total number of ids, base plus merged.
func (t *Tokenizer) VocabSize() int {
	return t.vocab.Size()
}

// Normalize applies the configured Unicode normalization to text. Spans returned by
// EncodeWithSpans index the normalized text.
func (t *Tokenizer) Normalize(text string) string {
	return t.pre.Normalize(text)
}

// Tokenize returns the tokens of text, each with its id and symbol.
func (t *Tokenizer) Tokenize(text string) ([]api.Token, error) {
	ids, err := t.Encode(text)
	if err != nil {
		return nil, err
	}
	tokens := make([]api.Token, len(ids))
	for ii, id := range ids {
		tokens[ii] = api.Token{ID: id, Symbol: t.vocab.symbols[id]}
	}
	return tokens, nil
}

// Encode converts text to a sequence of token ids.
//
// It returns an error wrapping ErrUnknownSymbol if text has a character the vocabulary
// doesn't know.
func (t *Tokenizer) Encode(text string) ([]int, error) {
	_, pieces := t.pre.pieces(text)
	ids, err := t.initialIDs(pieces)
	if err != nil {
		return nil, err
	}
	return t.applyMerges(ids), nil
}

// EncodeWithSpans returns the token ids of text along with their byte spans.
// If normalization is configured, the spans index Normalize(text).
func (t *Tokenizer) EncodeWithSpans(text string) (api.EncodingResult, error) {
	_, pieces := t.pre.pieces(text)
	ids, err := t.initialIDs(pieces)
	if err != nil {
		return api.EncodingResult{}, err
	}
	ids = t.applyMerges(ids)

	// Each token covers as many pieces as its symbol has runes.
	spans := make([]api.TokenSpan, len(ids))
	pos := 0
	for ii, id := range ids {
		n := utf8.RuneCountInString(t.vocab.symbols[id])
		spans[ii] = api.TokenSpan{Start: pieces[pos].start, End: pieces[pos+n-1].end}
		pos += n
	}
	return api.EncodingResult{IDs: ids, Spans: spans}, nil
}

// initialIDs maps each piece to its base id.
func (t *Tokenizer) initialIDs(pieces []piece) ([]int, error) {
	ids := make([]int, len(pieces))
	for ii, p := range pieces {
		id, found := t.vocab.ID(p.symbol)
		if !found {
			return nil, errors.Wrapf(ErrUnknownSymbol, "%q at byte offset %d", p.symbol, p.start)
		}
		ids[ii] = id
	}
	return ids, nil
}

// applyMerges replays the merge table, in creation order: later merges refer to ids
// created by earlier ones.
func (t *Tokenizer) applyMerges(ids []int) []int {
	for _, m := range t.merges {
		if len(ids) < 2 {
			break
		}
		ids = ApplyMerge(ids, m.Pair, m.ID)
	}
	return ids
}

// Decode converts token ids back to text, replacing whitespace markers with spaces.
//
// It returns an error wrapping ErrUnknownID if an id is outside the vocabulary.
func (t *Tokenizer) Decode(ids []int) (string, error) {
	var sb strings.Builder
	for pos, id := range ids {
		symbol, found := t.vocab.Symbol(id)
		if !found {
			return "", errors.Wrapf(ErrUnknownID, "id %d at position %d (vocabulary size %d)", id, pos, t.vocab.Size())
		}
		sb.WriteString(symbol)
	}
	return strings.ReplaceAll(sb.String(), t.config.WhitespaceMarker, " "), nil
}

// DecodeToken returns the text of a single token id.
func (t *Tokenizer) DecodeToken(id int) (string, error) {
	return t.Decode([]int{id})
}
