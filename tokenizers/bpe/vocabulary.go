package bpe

// Vocabulary maps dense ids (0..Size()-1) to symbols and back.
//
// Ids are always contiguous. Base symbols are unique single runes. Merged symbols
// are concatenations of two earlier symbols; if two different merge paths build
// the same string, both ids keep it and ID returns the lowest one.
//
// A Vocabulary is only modified while training; afterwards it is read-only and safe
// for concurrent use.
type Vocabulary struct {
	symbols []string
	ids     map[string]int
}

// Latin1Universe returns the 256 single code point symbols U+0000..U+00FF, in code point order.
func Latin1Universe() []string {
	return runeRange(256)
}

// ASCIIUniverse returns the 128 single code point symbols U+0000..U+007F, in code point order.
func ASCIIUniverse() []string {
	return runeRange(128)
}

func runeRange(n int) []string {
	symbols := make([]string, n)
	for ii := range symbols {
		symbols[ii] = string(rune(ii))
	}
	return symbols
}

// NewBaseVocabulary builds the base vocabulary used to start training.
//
// Ids are assigned in this order: the universe symbols, in the given order; then every
// symbol of the preprocessed text not yet present, in first-occurrence order; finally the
// whitespace marker, if still absent. The same inputs always produce the same ids.
func NewBaseVocabulary(universe []string, symbols []string, marker string) *Vocabulary {
	v := &Vocabulary{
		symbols: make([]string, 0, len(universe)+1),
		ids:     make(map[string]int, len(universe)+1),
	}
	for _, s := range universe {
		v.addIfMissing(s)
	}
	for _, s := range symbols {
		v.addIfMissing(s)
	}
	v.addIfMissing(marker)
	return v
}

func (v *Vocabulary) addIfMissing(symbol string) {
	if _, found := v.ids[symbol]; found {
		return
	}
	v.add(symbol)
}

// add appends symbol under the next id and returns it.
func (v *Vocabulary) add(symbol string) int {
	id := len(v.symbols)
	v.symbols = append(v.symbols, symbol)
	if _, found := v.ids[symbol]; !found {
		v.ids[symbol] = id
	}
	return id
}

// Size returns the number of ids in the vocabulary.
func (v *Vocabulary) Size() int {
	return len(v.symbols)
}

// Symbol returns the symbol for id.
func (v *Vocabulary) Symbol(id int) (string, bool) {
	if id < 0 || id >= len(v.symbols) {
		return "", false
	}
	return v.symbols[id], true
}

// ID returns the (lowest) id for symbol.
func (v *Vocabulary) ID(symbol string) (int, bool) {
	id, ok := v.ids[symbol]
	return id, ok
}

// Symbols returns a copy of all symbols, indexed by id.
func (v *Vocabulary) Symbols() []string {
	out := make([]string, len(v.symbols))
	copy(out, v.symbols)
	return out
}
