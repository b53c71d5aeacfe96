package bpe

import "k8s.io/klog/v2"

// MergeStep describes one training iteration, as reported to a ProgressFunc.
type MergeStep struct {
	Index       int    // 0-based index of the merge in the merge table.
	Merge       Merge  // Pair merged and the id assigned to it.
	Symbol      string // Symbol of the new id: concatenation of the pair's symbols.
	Count       int    // Occurrences of the pair in the sequence before merging.
	SequenceLen int    // Length of the token-id sequence after merging.
}

// ProgressFunc is called once per merge during training.
type ProgressFunc func(step MergeStep)

// Trainer learns a BPE vocabulary and merge table from a corpus.
//
// A Trainer has no state besides its configuration: training twice on the same
// corpus and vocabulary size yields identical tokenizers.
type Trainer struct {
	config   Config
	universe []string
	pre      preprocessor
	progress ProgressFunc
}

// NewTrainer creates a Trainer with the given config. A nil config uses DefaultConfig.
func NewTrainer(config *Config) (*Trainer, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	universe, err := universeSymbols(config.Universe)
	if err != nil {
		return nil, err
	}
	pre, err := newPreprocessor(config)
	if err != nil {
		return nil, err
	}
	return &Trainer{config: *config, universe: universe, pre: pre}, nil
}

// WithProgress registers fn to be called after every merge. It returns the trainer itself
// for chaining.
func (tr *Trainer) WithProgress(fn ProgressFunc) *Trainer {
	tr.progress = fn
	return tr
}

// Train is a shortcut for training with DefaultConfig.
func Train(corpus string, targetVocabSize int) (*Tokenizer, error) {
	tr, err := NewTrainer(nil)
	if err != nil {
		return nil, err
	}
	return tr.Train(corpus, targetVocabSize)
}

// Train learns merges from corpus until the vocabulary reaches targetVocabSize ids.
//
// Training stops early, without error, when the corpus runs out of pairs (the sequence
// collapsed to a single token, or the corpus is empty). The resulting vocabulary then
// has fewer than targetVocabSize ids. A targetVocabSize not larger than the base
// vocabulary produces no merges.
func (tr *Trainer) Train(corpus string, targetVocabSize int) (*Tokenizer, error) {
	symbols := tr.pre.symbols(corpus)
	vocab := NewBaseVocabulary(tr.universe, symbols, tr.config.WhitespaceMarker)
	baseSize := vocab.Size()

	ids := make([]int, len(symbols))
	for ii, s := range symbols {
		ids[ii], _ = vocab.ID(s) // Every corpus symbol is in the base vocabulary.
	}
	klog.V(1).Infof("bpe: training on %d symbols, base vocabulary %d, target vocabulary %d",
		len(ids), baseSize, targetVocabSize)

	var merges []Merge
	for nextID := baseSize; nextID < targetVocabSize; nextID++ {
		pair, count, ok := MostFrequentPair(ids)
		if !ok {
			klog.V(1).Infof("bpe: corpus exhausted after %d merges, %d requested",
				len(merges), targetVocabSize-baseSize)
			break
		}
		ids = ApplyMerge(ids, pair, nextID)
		merge := Merge{Pair: pair, ID: nextID}
		merges = append(merges, merge)

		symbol := vocab.symbols[pair.Left] + vocab.symbols[pair.Right]
		vocab.add(symbol)

		step := MergeStep{Index: len(merges) - 1, Merge: merge, Symbol: symbol, Count: count, SequenceLen: len(ids)}
		tr.logStep(step)
		if tr.progress != nil {
			tr.progress(step)
		}
	}

	if len(ids) > 0 {
		klog.V(1).Infof("bpe: done, vocabulary=%d merges=%d compression=%.2fx (%d symbols -> %d tokens)",
			vocab.Size(), len(merges), float64(len(symbols))/float64(len(ids)), len(symbols), len(ids))
	} else {
		klog.V(1).Infof("bpe: done, empty corpus, vocabulary=%d", vocab.Size())
	}
	return newTokenizer(tr.config, vocab, merges, baseSize)
}

func (tr *Trainer) logStep(step MergeStep) {
	if klog.V(2).Enabled() {
		klog.Infof("bpe: merge %d %s %q count=%d sequence=%d",
			step.Index, step.Merge, step.Symbol, step.Count, step.SequenceLen)
		return
	}
	if tr.config.LogEvery > 0 && (step.Index+1)%tr.config.LogEvery == 0 {
		klog.V(1).Infof("bpe: merge %d %q count=%d sequence=%d",
			step.Index+1, step.Symbol, step.Count, step.SequenceLen)
	}
}
