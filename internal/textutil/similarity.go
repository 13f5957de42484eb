// Package textutil holds the string helpers used to pick entity display
// spans and to turn Wikidata labels into ThingTalk identifiers.
package textutil

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Algorithm selects the word-level similarity measure.
type Algorithm string

const (
	F1      Algorithm = "f1"
	Jaccard Algorithm = "jaccard"
)

// ParseAlgorithm accepts "f1" or "jaccard"; empty means F1.
func ParseAlgorithm(s string) (Algorithm, bool) {
	switch Algorithm(strings.ToLower(s)) {
	case "", F1:
		return F1, true
	case Jaccard:
		return Jaccard, true
	}
	return "", false
}

var lower = cases.Lower(language.English)

// RemoveAccent strips combining marks: "Zürich" becomes "Zurich".
func RemoveAccent(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize lowercases s and strips accents.
func Normalize(s string) string {
	return RemoveAccent(lower.String(s))
}

// words splits on spaces, drops stopwords and stems what is left. Each stem
// is kept once.
func words(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, w := range strings.Split(strings.ToLower(s), " ") {
		if w == "" || stopwords[w] {
			continue
		}
		w = stem(RemoveAccent(w))
		if seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// sameWord treats stems within one edit of each other as equal once they
// are long enough for a typo or inflection to be the likely difference.
func sameWord(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) < 5 || len(b) < 5 {
		return false
	}
	return levenshtein.ComputeDistance(a, b) <= 1
}

func containsWord(list []string, w string) bool {
	for _, v := range list {
		if sameWord(v, w) {
			return true
		}
	}
	return false
}

// Similarity scores two phrases in [0, 1] by their shared words.
func Similarity(s1, s2 string, algo Algorithm) float64 {
	a, b := words(s1), words(s2)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersect := 0
	for _, w := range a {
		if containsWord(b, w) {
			intersect++
		}
	}

	if algo == Jaccard {
		union := make(map[string]bool, len(a)+len(b))
		for _, w := range a {
			union[w] = true
		}
		for _, w := range b {
			union[w] = true
		}
		return float64(intersect) / float64(len(union))
	}

	recalled := 0
	for _, w := range b {
		if containsWord(a, w) {
			recalled++
		}
	}
	precision := float64(intersect) / float64(len(a))
	recall := float64(recalled) / float64(len(b))
	if precision == 0 || recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// Closest returns the candidate most similar to s. Candidates scoring 0 are
// discarded; on ties the earliest candidate wins.
func Closest(s string, candidates []string, algo Algorithm) (string, bool) {
	best, bestScore := "", 0.0
	found := false
	for _, c := range candidates {
		score := Similarity(s, c, algo)
		if score <= 0 {
			continue
		}
		if score > bestScore {
			best, bestScore, found = c, score, true
		}
	}
	return best, found
}

// stem removes the common English inflection suffixes.
func stem(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 5 && strings.HasSuffix(w, "ing"):
		return w[:len(w)-3]
	case len(w) > 4 && strings.HasSuffix(w, "ed"):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	}
	return w
}

var stopwords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "am", "an",
	"and", "any", "are", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "could", "did",
	"do", "does", "doing", "down", "during", "each", "few", "for", "from",
	"further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"herself", "him", "himself", "his", "how", "i", "if", "in", "into", "is",
	"it", "its", "itself", "me", "more", "most", "my", "myself", "no", "nor",
	"not", "of", "off", "on", "once", "only", "or", "other", "our", "ours",
	"ourselves", "out", "over", "own", "same", "she", "should", "so", "some",
	"such", "than", "that", "the", "their", "theirs", "them", "themselves",
	"then", "there", "these", "they", "this", "those", "through", "to", "too",
	"under", "until", "up", "very", "was", "we", "were", "what", "when",
	"where", "which", "while", "who", "whom", "why", "will", "with", "would",
	"you", "your", "yours", "yourself", "yourselves",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
