package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gomlx/go-bpe/corpus"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCorpus = `All human things are subject to decay, and when fate summons, monarchs must obey.
Whether we fall by ambition, blood, or lust, like diamonds we are cut with our own dust.`

func trainModel(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.txt")
	require.NoError(t, os.WriteFile(corpusPath, []byte(testCorpus), 0o644))
	modelPath := filepath.Join(dir, "bpe.json")

	var out bytes.Buffer
	err := run([]string{"train", "-corpus", corpusPath, "-vocab-size", "320", "-o", modelPath}, nil, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "trained 63 merges")
	return modelPath
}

func TestTrainEncodeDecode(t *testing.T) {
	modelPath := trainModel(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"encode", "-model", modelPath, "we", "are", "cut"}, nil, &out))
	ids := strings.TrimSpace(out.String())
	require.NotEmpty(t, ids)

	out.Reset()
	require.NoError(t, run(append([]string{"decode", "-model", modelPath}, strings.Fields(ids)...), nil, &out))
	assert.Equal(t, "we are cut\n", out.String())

	// Comma separated ids, text from stdin.
	out.Reset()
	require.NoError(t, run([]string{"encode", "-model", modelPath}, strings.NewReader("  lust  "), &out))
	commaIDs := strings.ReplaceAll(strings.TrimSpace(out.String()), " ", ",")
	out.Reset()
	require.NoError(t, run([]string{"decode", "-model", modelPath, commaIDs}, nil, &out))
	assert.Equal(t, "lust\n", out.String())
}

func TestTokenize(t *testing.T) {
	modelPath := trainModel(t)
	var out bytes.Buffer
	require.NoError(t, run([]string{"tokenize", "-model", modelPath, "the dust"}, nil, &out))
	assert.Contains(t, out.String(), "▁")
	assert.Contains(t, out.String(), "\t")
}

func TestInspect(t *testing.T) {
	modelPath := trainModel(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"vocab", "-model", modelPath}, nil, &out))
	assert.Contains(t, out.String(), "Vocabulary (257 base + 63 merged):")
	assert.Contains(t, out.String(), "97: a\n")
	assert.Contains(t, out.String(), `0: "\x00"`)

	out.Reset()
	require.NoError(t, run([]string{"merges", "-model", modelPath}, nil, &out))
	assert.Contains(t, out.String(), "BPE merges (63):")
	assert.Contains(t, out.String(), " - 257: ")
}

func TestTrain_Parquet(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "train.parquet")
	require.NoError(t, parquet.WriteFile(corpusPath, []corpus.Row{{Text: "to be or not to be"}, {Text: "that is the question"}}))
	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"universe": "none"}`), 0o644))
	modelPath := filepath.Join(dir, "bpe.json")

	var out bytes.Buffer
	require.NoError(t, run([]string{"train", "-corpus", corpusPath, "-config", configPath, "-marker", "_", "-vocab-size", "20", "-o", modelPath}, nil, &out))

	out.Reset()
	require.NoError(t, run([]string{"encode", "-model", modelPath, "to be"}, nil, &out))
	ids := strings.TrimSpace(out.String())
	out.Reset()
	require.NoError(t, run([]string{"decode", "-model", modelPath, ids}, nil, &out))
	assert.Equal(t, "to be\n", out.String())

	// "x" is neither in the (empty) universe nor in the corpus.
	err := run([]string{"encode", "-model", modelPath, "x"}, nil, &out)
	assert.Error(t, err)
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(nil, nil, &out))
	assert.Error(t, run([]string{"frobnicate"}, nil, &out))
	assert.Error(t, run([]string{"train"}, nil, &out))
	assert.Error(t, run([]string{"encode", "-model", filepath.Join(t.TempDir(), "missing.json"), "x"}, nil, &out))

	modelPath := trainModel(t)
	assert.Error(t, run([]string{"decode", "-model", modelPath, "abc"}, nil, &out))
	assert.Error(t, run([]string{"decode", "-model", modelPath, "100000"}, nil, &out))

	out.Reset()
	require.NoError(t, run([]string{"version"}, nil, &out))
	assert.Equal(t, "bpe "+version+"\n", out.String())
}
