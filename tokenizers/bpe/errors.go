package bpe

import "github.com/pkg/errors"

var (
	// ErrUnknownSymbol is returned when text contains a character that is neither in the
	// base universe nor was seen during training.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrUnknownID is returned when decoding an id outside [0, VocabSize).
	ErrUnknownID = errors.New("unknown token id")

	// ErrInvalidConfig is returned for configurations that can't be used.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidModel is returned by NewTokenizer when the vocabulary and merges don't
	// describe a consistent trained model.
	ErrInvalidModel = errors.New("invalid model")
)
