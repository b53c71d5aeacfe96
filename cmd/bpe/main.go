// bpe trains BPE tokenizers and uses them to tokenize, encode and decode text.
//
// Usage:
//
//	bpe [-v=N] train -corpus FILE [-format auto|text|parquet] [-vocab-size 600] [-config FILE] [-o bpe.json]
//	bpe tokenize [-model bpe.json] TEXT...
//	bpe encode [-model bpe.json] TEXT...
//	bpe decode [-model bpe.json] ID...
//	bpe vocab [-model bpe.json]
//	bpe merges [-model bpe.json]
//	bpe version
//
// tokenize and encode read the text from stdin when none is given.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gomlx/go-bpe/corpus"
	"github.com/gomlx/go-bpe/manifest"
	"github.com/gomlx/go-bpe/tokenizers/bpe"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const version = "v0.1.0"

const defaultModelPath = "bpe.json"

func main() {
	klog.InitFlags(nil)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [klog flags] <train|tokenize|encode|decode|vocab|merges|version> [flags] [args]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	err := run(flag.Args(), os.Stdin, os.Stdout)
	klog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the subcommand in args[0].
func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New("missing command, one of train, tokenize, encode, decode, vocab, merges or version")
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "train":
		return runTrain(args, stdout)
	case "tokenize", "encode":
		return runEncode(cmd, args, stdin, stdout)
	case "decode":
		return runDecode(args, stdout)
	case "vocab", "merges":
		return runInspect(cmd, args, stdout)
	case "version":
		_, err := fmt.Fprintf(stdout, "bpe %s\n", version)
		return err
	default:
		return errors.Errorf("unknown command %q", cmd)
	}
}

func runTrain(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	corpusPath := fs.String("corpus", "", "Training corpus file (required).")
	format := fs.String("format", corpus.FormatAuto, "Corpus format: auto, text or parquet.")
	vocabSize := fs.Int("vocab-size", 600, "Target vocabulary size, base symbols included.")
	configPath := fs.String("config", "", "JSON or YAML config file. The flags below override it.")
	universe := fs.String("universe", "", "Base universe: latin1, ascii or none.")
	marker := fs.String("marker", "", "Whitespace marker (a single rune).")
	normalization := fs.String("normalization", "", "Unicode normalization: NFC, NFD, NFKC or NFKD.")
	output := fs.String("o", defaultModelPath, "Output manifest file.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *corpusPath == "" {
		return errors.New("train: -corpus is required")
	}

	config := bpe.DefaultConfig()
	if *configPath != "" {
		var err error
		if config, err = bpe.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *universe != "" {
		config.WithUniverse(*universe)
	}
	if *marker != "" {
		config.WithWhitespaceMarker(*marker)
	}
	if *normalization != "" {
		config.WithNormalization(*normalization)
	}

	text, err := corpus.Read(*corpusPath, *format)
	if err != nil {
		return err
	}
	trainer, err := bpe.NewTrainer(config)
	if err != nil {
		return err
	}
	tok, err := trainer.Train(text, *vocabSize)
	if err != nil {
		return err
	}
	if err := manifest.Save(*output, tok); err != nil {
		return err
	}
	numMerges := len(tok.Merges())
	_, err = fmt.Fprintf(stdout, "trained %d merges (vocabulary %d of %d requested), saved to %s\n",
		numMerges, tok.VocabSize(), *vocabSize, *output)
	return err
}

func runEncode(cmd string, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	modelPath := fs.String("model", defaultModelPath, "Manifest of the trained tokenizer.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tok, err := manifest.Load(*modelPath)
	if err != nil {
		return err
	}

	text := strings.Join(fs.Args(), " ")
	if fs.NArg() == 0 {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return errors.Wrap(err, "failed to read text from stdin")
		}
		text = string(content)
	}

	if cmd == "encode" {
		ids, err := tok.Encode(text)
		if err != nil {
			return err
		}
		return printIDs(stdout, ids)
	}
	tokens, err := tok.Tokenize(text)
	if err != nil {
		return err
	}
	newPrinter(stdout).tokens(tokens)
	return nil
}

func printIDs(w io.Writer, ids []int) error {
	parts := make([]string, len(ids))
	for ii, id := range ids {
		parts[ii] = strconv.Itoa(id)
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, " "))
	return err
}

func runDecode(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	modelPath := fs.String("model", defaultModelPath, "Manifest of the trained tokenizer.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tok, err := manifest.Load(*modelPath)
	if err != nil {
		return err
	}

	var ids []int
	for _, arg := range fs.Args() {
		// Accept "1 2 3" as well as "1,2,3".
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			id, err := strconv.Atoi(field)
			if err != nil {
				return errors.Wrapf(err, "decode: invalid token id %q", field)
			}
			ids = append(ids, id)
		}
	}
	text, err := tok.Decode(ids)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, text)
	return err
}

func runInspect(cmd string, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	modelPath := fs.String("model", defaultModelPath, "Manifest of the trained tokenizer.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tok, err := manifest.Load(*modelPath)
	if err != nil {
		return err
	}
	p := newPrinter(stdout)
	if cmd == "vocab" {
		p.vocab(tok)
	} else {
		p.merges(tok)
	}
	return nil
}
