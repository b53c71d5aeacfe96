// Package api defines the Tokenizer API.
// It's kept separate from the implementations so that callers (the manifest and
// cmd packages, or users) can depend on the interfaces only.
package api

// Token is one element of a tokenized text: its vocabulary id and the symbol
// (string fragment) the id stands for.
type Token struct {
	ID     int
	Symbol string
}

// TokenSpan represents the byte span of a token in the original text.
// Start and End are byte offsets (not rune offsets), suitable for slicing
// Go strings directly: originalText[span.Start:span.End].
//
// Whitespace markers produced for spaces are mapped back to the space they replaced,
// so a span may start or end on a space.
type TokenSpan struct {
	Start int // start byte position (inclusive)
	End   int // end byte position (exclusive)
}

// EncodingResult contains tokens with their spans in the original text.
type EncodingResult struct {
	IDs   []int       // token IDs
	Spans []TokenSpan // byte spans for each token (use originalText[span.Start:span.End] to extract)
}

// Tokenizer interface allows one to convert text to "tokens" (integer ids) and back.
//
// Both directions fail on input the vocabulary can't represent: Encode on a character
// it has never seen, Decode on an id outside the vocabulary.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	Decode(ids []int) (string, error)
}

// TokenizerWithSpans extends Tokenizer with span tracking capability.
// This is useful for token classification tasks (NER, chunking) where you need
// to map token predictions back to byte positions in the original text.
type TokenizerWithSpans interface {
	Tokenizer
	// EncodeWithSpans returns tokens along with their byte spans in the original text.
	EncodeWithSpans(text string) (EncodingResult, error)
}

// SymbolTokenizer is a Tokenizer that also exposes the symbol of every token.
type SymbolTokenizer interface {
	Tokenizer
	// Tokenize returns the (id, symbol) pairs for text.
	Tokenize(text string) ([]Token, error)
}
