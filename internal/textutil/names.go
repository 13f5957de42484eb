package textutil

import (
	"regexp"
	"strings"
)

var (
	snakeSeparators = regexp.MustCompile(`[() _-]+`)
	nonIdentifier   = regexp.MustCompile(`[^0-9a-zA-Z]`)
	underscoreRuns  = regexp.MustCompile(`_{2,}`)
	endPunctuation  = regexp.MustCompile(`[.!?]$`)
)

// keywords are ThingTalk reserved words that cannot be used as names.
var keywords = toSet(
	"true", "false", "null", "let", "now", "new", "of", "in", "filter",
	"sort", "function", "class", "import", "enum", "monitor", "notify",
	"return", "as", "from", "dataset", "query", "action", "list", "out",
	"req", "opt", "extends", "this", "stream", "table", "join", "on",
	"aggregate", "compute", "any", "undefined", "asc", "desc",
)

// SnakeCase lowercases v and joins its words with underscores.
func SnakeCase(v string) string {
	return strings.ToLower(snakeSeparators.ReplaceAllString(strings.TrimSpace(v), "_"))
}

// RemoveEndPunctuation drops one trailing '.', '!' or '?'.
func RemoveEndPunctuation(v string) string {
	return endPunctuation.ReplaceAllString(v, "")
}

// CleanName turns a label into a ThingTalk identifier:
// "human settlement(s)" becomes "human_settlements".
func CleanName(v string) string {
	v = strings.ReplaceAll(v, "(s)", "s")
	v = SnakeCase(v)
	v = strings.ReplaceAll(v, "u.s.", "us")
	v = RemoveAccent(v)
	v = nonIdentifier.ReplaceAllString(v, "_")
	v = underscoreRuns.ReplaceAllString(v, "_")

	if v == "" || !(v[0] == '_' || (v[0] >= 'a' && v[0] <= 'z')) {
		v = "_" + v
	}
	if keywords[v] {
		v = "_" + v
	}
	return v
}
