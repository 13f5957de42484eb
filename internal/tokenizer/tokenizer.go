// Package tokenizer splits English utterances into tokens and enumerates
// the spans entity displays are chosen from.
package tokenizer

import (
	"strings"
	"unicode"

	"github.com/roach88/sparqltt/internal/textutil"
)

// Result holds the tokens of one utterance. RawTokens keep the original
// spelling; Tokens are lowercased with accents removed.
type Result struct {
	RawTokens []string
	Tokens    []string
}

// Tokenizer is the English tokenizer. The zero value is ready to use and
// safe for concurrent use.
type Tokenizer struct{}

// New returns a Tokenizer.
func New() *Tokenizer {
	return &Tokenizer{}
}

// Tokenize splits text on whitespace and detaches surrounding punctuation
// into separate tokens. Abbreviations ("U.S."), decimals ("3.5") and
// thousands separators ("1,000") stay whole; a possessive "'s" is split off.
func (t *Tokenizer) Tokenize(text string) Result {
	var res Result
	for _, field := range strings.Fields(text) {
		for _, tok := range splitWord(field) {
			res.RawTokens = append(res.RawTokens, tok)
			res.Tokens = append(res.Tokens, textutil.Normalize(tok))
		}
	}
	return res
}

func splitWord(w string) []string {
	var lead, trail []string

	for w != "" {
		r := rune(w[0])
		if r >= 0x80 || !isPunct(r) {
			break
		}
		lead = append(lead, w[:1])
		w = w[1:]
	}

	for w != "" {
		r := rune(w[len(w)-1])
		if r >= 0x80 || !isPunct(r) {
			break
		}
		// Keep the final period of an abbreviation such as "U.S.".
		if r == '.' && isAbbreviation(w) {
			break
		}
		trail = append([]string{w[len(w)-1:]}, trail...)
		w = w[:len(w)-1]
	}

	out := lead
	if w != "" {
		lower := strings.ToLower(w)
		if strings.HasSuffix(lower, "'s") && len(w) > 2 {
			out = append(out, w[:len(w)-2], w[len(w)-2:])
		} else {
			out = append(out, w)
		}
	}
	return append(out, trail...)
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) && r != '\'' || r == '$'
}

// isAbbreviation reports whether w looks like "U.S." or "e.g.".
func isAbbreviation(w string) bool {
	parts := strings.Split(strings.TrimSuffix(w, "."), ".")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if len(p) != 1 || !unicode.IsLetter(rune(p[0])) {
			return false
		}
	}
	return true
}

// Spans returns every contiguous run of raw tokens, shortest first, with
// trailing sentence punctuation removed.
func Spans(res Result) []string {
	joined := strings.Join(res.RawTokens, " ")
	tokens := strings.Fields(textutil.RemoveEndPunctuation(strings.TrimSpace(joined)))

	var spans []string
	for n := 1; n <= len(tokens); n++ {
		for i := 0; i+n <= len(tokens); i++ {
			spans = append(spans, strings.Join(tokens[i:i+n], " "))
		}
	}
	return spans
}
