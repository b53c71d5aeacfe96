package manifest

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomlx/go-bpe/tokenizers/bpe"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCorpus = `The Time Traveller (for so it will be convenient to speak of him) was expounding a
recondite matter to us. His grey eyes shone and twinkled, and his usually pale face was flushed and animated.`

func trainTest(t *testing.T) *bpe.Tokenizer {
	t.Helper()
	tok, err := bpe.Train(testCorpus, 350)
	require.NoError(t, err)
	return tok
}

func TestSaveLoad(t *testing.T) {
	tok := trainTest(t)
	filePath := filepath.Join(t.TempDir(), "model", "bpe.json")
	require.NoError(t, Save(filePath, tok))

	loaded, err := Load(filePath)
	require.NoError(t, err)
	assert.Equal(t, tok.Config(), loaded.Config())
	assert.Equal(t, tok.BaseSize(), loaded.BaseSize())
	assert.Equal(t, tok.Vocabulary().Symbols(), loaded.Vocabulary().Symbols())
	assert.Equal(t, tok.Merges(), loaded.Merges())

	text := "his grey eyes shone"
	want, err := tok.Encode(text)
	require.NoError(t, err)
	got, err := loaded.Encode(text)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteRead_CustomConfig(t *testing.T) {
	tr, err := bpe.NewTrainer(bpe.DefaultConfig().WithUniverse(bpe.UniverseNone).WithWhitespaceMarker("_"))
	require.NoError(t, err)
	tok, err := tr.Train("to be or not to be", 30)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tok))
	loaded, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, "_", loaded.Config().WhitespaceMarker)
	assert.Equal(t, tok.Vocabulary().Symbols(), loaded.Vocabulary().Symbols())

	text, err := loaded.Decode([]int{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, "to ", text)
}

func TestManifest_Invalid(t *testing.T) {
	tok := trainTest(t)

	tests := []struct {
		name   string
		mutate func(m *Manifest)
	}{
		{name: "version", mutate: func(m *Manifest) { m.Version = 99 }},
		{name: "base size", mutate: func(m *Manifest) { m.BaseSize++ }},
		{name: "merge id", mutate: func(m *Manifest) { m.Merges[0][2]++ }},
		{name: "symbol", mutate: func(m *Manifest) { m.Vocab[len(m.Vocab)-1] += "x" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromTokenizer(tok)
			tt.mutate(m)
			_, err := m.Tokenizer()
			assert.Error(t, err)
		})
	}

	m := FromTokenizer(tok)
	m.Merges[0][2]++
	_, err := m.Tokenizer()
	assert.True(t, errors.Is(err, bpe.ErrInvalidModel))
}

func TestRead_Malformed(t *testing.T) {
	_, err := Read(strings.NewReader("{"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestManifest_JSONLayout(t *testing.T) {
	tok := trainTest(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tok))

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	for _, key := range []string{"version", "config", "base_size", "vocab", "merges"} {
		assert.Contains(t, raw, key)
	}
}
