package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/go-bpe/tokenizers/api"
	"github.com/gomlx/go-bpe/tokenizers/bpe"
)

// printer renders tokenizer output. Colors are only emitted if w is a terminal.
type printer struct {
	w         io.Writer
	alternate [2]lipgloss.Style
	id        lipgloss.Style
	header    lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w: w,
		alternate: [2]lipgloss.Style{
			r.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("153")),
			r.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("223")),
		},
		id:     r.NewStyle().Faint(true),
		header: r.NewStyle().Bold(true),
	}
}

// display makes symbols with control characters printable.
func display(symbol string) string {
	if strings.IndexFunc(symbol, func(r rune) bool { return !unicode.IsPrint(r) }) >= 0 {
		return strconv.Quote(symbol)
	}
	return symbol
}

// tokens prints the symbols with alternating backgrounds, followed by the (id, symbol) pairs.
func (p *printer) tokens(tokens []api.Token) {
	var sb strings.Builder
	for ii, token := range tokens {
		sb.WriteString(p.alternate[ii%2].Render(display(token.Symbol)))
	}
	fmt.Fprintln(p.w, sb.String())
	for _, token := range tokens {
		fmt.Fprintf(p.w, "%s\t%s\n", p.id.Render(strconv.Itoa(token.ID)), display(token.Symbol))
	}
}

func (p *printer) vocab(tok *bpe.Tokenizer) {
	fmt.Fprintln(p.w, p.header.Render(fmt.Sprintf("Vocabulary (%d base + %d merged):", tok.BaseSize(), tok.VocabSize()-tok.BaseSize())))
	for id, symbol := range tok.Vocabulary().Symbols() {
		fmt.Fprintf(p.w, "%s: %s\n", p.id.Render(strconv.Itoa(id)), display(symbol))
	}
}

func (p *printer) merges(tok *bpe.Tokenizer) {
	fmt.Fprintln(p.w, p.header.Render(fmt.Sprintf("BPE merges (%d):", len(tok.Merges()))))
	vocab := tok.Vocabulary()
	for _, m := range tok.Merges() {
		symbol, _ := vocab.Symbol(m.ID)
		fmt.Fprintf(p.w, "%s - %s: %s\n", m.Pair, p.id.Render(strconv.Itoa(m.ID)), display(symbol))
	}
}
