// Package manifest saves and loads trained BPE tokenizers as JSON documents.
//
// The document holds the tokenizer config, its vocabulary (symbols indexed by id)
// and its merge table in creation order, as returned by the bpe.Tokenizer
// inspection methods:
//
//	{
//	  "version": 1,
//	  "config": {"universe": "latin1", "whitespace_marker": "▁", "log_every": 100},
//	  "base_size": 257,
//	  "vocab": ["\u0000", ..., "▁", "th", ...],
//	  "merges": [[116, 104, 257], ...]
//	}
package manifest

import (
	"encoding/json"
	"io"
	"os"

	"github.com/gomlx/go-bpe/internal/files"
	"github.com/gomlx/go-bpe/tokenizers/bpe"
	"github.com/pkg/errors"
)

// Version of the manifest format written by this package.
const Version = 1

// Manifest is the serialized form of a trained tokenizer.
type Manifest struct {
	Version  int        `json:"version"`
	Config   bpe.Config `json:"config"`
	BaseSize int        `json:"base_size"`
	Vocab    []string   `json:"vocab"`
	Merges   [][3]int   `json:"merges"` // [left, right, id]
}

// FromTokenizer builds the manifest of tok.
func FromTokenizer(tok *bpe.Tokenizer) *Manifest {
	merges := tok.Merges()
	m := &Manifest{
		Version:  Version,
		Config:   tok.Config(),
		BaseSize: tok.BaseSize(),
		Vocab:    tok.Vocabulary().Symbols(),
		Merges:   make([][3]int, len(merges)),
	}
	for ii, merge := range merges {
		m.Merges[ii] = [3]int{merge.Pair.Left, merge.Pair.Right, merge.ID}
	}
	return m
}

// Tokenizer rebuilds the tokenizer described by the manifest.
func (m *Manifest) Tokenizer() (*bpe.Tokenizer, error) {
	if m.Version != Version {
		return nil, errors.Errorf("unsupported manifest version %d, expected %d", m.Version, Version)
	}
	if m.BaseSize != len(m.Vocab)-len(m.Merges) {
		return nil, errors.Errorf("manifest base_size %d doesn't match %d symbols and %d merges",
			m.BaseSize, len(m.Vocab), len(m.Merges))
	}
	merges := make([]bpe.Merge, len(m.Merges))
	for ii, entry := range m.Merges {
		merges[ii] = bpe.Merge{Pair: bpe.Pair{Left: entry[0], Right: entry[1]}, ID: entry[2]}
	}
	config := m.Config
	tok, err := bpe.NewTokenizer(&config, m.Vocab, merges)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid manifest")
	}
	return tok, nil
}

// Write encodes the manifest of tok as indented JSON.
func Write(w io.Writer, tok *bpe.Tokenizer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromTokenizer(tok)); err != nil {
		return errors.Wrap(err, "failed to encode manifest")
	}
	return nil
}

// Read decodes a manifest and rebuilds its tokenizer.
func Read(r io.Reader) (*bpe.Tokenizer, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest")
	}
	return m.Tokenizer()
}

// Save writes the manifest of tok to filePath. The file is replaced atomically.
func Save(filePath string, tok *bpe.Tokenizer) error {
	return files.WriteLocked(filePath, func(w io.Writer) error {
		return Write(w, tok)
	})
}

// Load reads a tokenizer saved with Save.
func Load(filePath string) (*bpe.Tokenizer, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open manifest %q", filePath)
	}
	defer f.Close()
	tok, err := Read(f)
	if err != nil {
		return nil, errors.WithMessagef(err, "manifest %q", filePath)
	}
	return tok, nil
}
