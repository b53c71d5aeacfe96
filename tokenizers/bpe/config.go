package bpe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Supported base universes, see Config.Universe.
const (
	UniverseLatin1 = "latin1"
	UniverseASCII  = "ascii"
	UniverseNone   = "none"
)

// DefaultWhitespaceMarker replaces spaces during preprocessing. It's the same
// "lower one eighth block" (U+2581) SentencePiece uses as its metaspace.
const DefaultWhitespaceMarker = "▁"

// DefaultLogEvery is how often (in merges) training progress is logged at verbosity 1.
const DefaultLogEvery = 100

// Config holds the settings shared by training and tokenization.
// A trained Tokenizer keeps a copy of the Config it was trained with, since the
// same preprocessing must be applied to any text it later encodes.
type Config struct {
	// Universe selects the base alphabet seeded before any corpus symbol:
	// "latin1" (U+0000..U+00FF, the default), "ascii" (U+0000..U+007F) or "none".
	Universe string `json:"universe" yaml:"universe"`

	// WhitespaceMarker is the single rune substituted for every space.
	WhitespaceMarker string `json:"whitespace_marker" yaml:"whitespace_marker"`

	// Normalization is an optional Unicode normalization form (NFC, NFD, NFKC or NFKD)
	// applied to text before preprocessing. Empty disables it.
	Normalization string `json:"normalization,omitempty" yaml:"normalization,omitempty"`

	// LogEvery controls how often (in merges) training logs progress. 0 disables
	// periodic progress logs.
	LogEvery int `json:"log_every" yaml:"log_every"`
}

// DefaultConfig returns the configuration used by Train.
func DefaultConfig() *Config {
	return &Config{
		Universe:         UniverseLatin1,
		WhitespaceMarker: DefaultWhitespaceMarker,
		LogEvery:         DefaultLogEvery,
	}
}

// LoadConfig reads a configuration file: YAML if its extension is ".yaml" or ".yml",
// JSON otherwise. Fields missing in the file keep their DefaultConfig values.
func LoadConfig(filePath string) (*Config, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %q", filePath)
	}
	config := DefaultConfig()
	unmarshal := json.Unmarshal
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	}
	if err := unmarshal(content, config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %q", filePath)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "config file %q", filePath)
	}
	return config, nil
}

// WithUniverse sets the base universe. It returns the config itself for chaining.
func (c *Config) WithUniverse(universe string) *Config {
	c.Universe = universe
	return c
}

// WithWhitespaceMarker sets the whitespace marker. It returns the config itself for chaining.
func (c *Config) WithWhitespaceMarker(marker string) *Config {
	c.WhitespaceMarker = marker
	return c
}

// WithNormalization sets the Unicode normalization form. It returns the config itself for chaining.
func (c *Config) WithNormalization(form string) *Config {
	c.Normalization = form
	return c
}

// Validate checks that the config can be used for training and tokenization.
func (c *Config) Validate() error {
	if _, err := universeSymbols(c.Universe); err != nil {
		return err
	}
	if utf8.RuneCountInString(c.WhitespaceMarker) != 1 || !utf8.ValidString(c.WhitespaceMarker) {
		return errors.Wrapf(ErrInvalidConfig, "whitespace marker %q must be exactly one rune", c.WhitespaceMarker)
	}
	if c.WhitespaceMarker == " " {
		return errors.Wrap(ErrInvalidConfig, "whitespace marker can't be a space")
	}
	if _, _, err := normalizationForm(c.Normalization); err != nil {
		return err
	}
	if c.LogEvery < 0 {
		return errors.Wrapf(ErrInvalidConfig, "log_every must be >= 0, got %d", c.LogEvery)
	}
	return nil
}

// universeSymbols returns the base symbols for the named universe.
func universeSymbols(name string) ([]string, error) {
	switch name {
	case UniverseLatin1, "":
		return Latin1Universe(), nil
	case UniverseASCII:
		return ASCIIUniverse(), nil
	case UniverseNone:
		return nil, nil
	default:
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown universe %q", name)
	}
}

// normalizationForm maps the configured name to a norm.Form. The boolean is false
// when no normalization is configured.
func normalizationForm(name string) (norm.Form, bool, error) {
	switch name {
	case "":
		return 0, false, nil
	case "NFC":
		return norm.NFC, true, nil
	case "NFD":
		return norm.NFD, true, nil
	case "NFKC":
		return norm.NFKC, true, nil
	case "NFKD":
		return norm.NFKD, true, nil
	default:
		return 0, false, errors.Wrapf(ErrInvalidConfig, "unknown normalization %q", name)
	}
}
