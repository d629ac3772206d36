package dedup

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumRe    = regexp.MustCompile(`[^a-z0-9]+`)
	digitLetterRe = regexp.MustCompile(`([0-9])([a-z])`)
	letterDigitRe = regexp.MustCompile(`([a-z])([0-9])`)
)

// phrases collapse multi-word names and units into one token. Applied to
// the space-separated lowercase title before tokenizing.
var phrases = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\bfederal reserve( board)?\b`), "fed"},
	{regexp.MustCompile(`\bbasis points?\b`), "bp"},
	{regexp.MustCompile(`\bbps\b`), "bp"},
	{regexp.MustCompile(`\bpercentage points?\b`), "pp"},
	{regexp.MustCompile(`\bper ?cent\b`), "percent"},
	{regexp.MustCompile(`\bunited states\b`), "us"},
	{regexp.MustCompile(`\bunited kingdom\b`), "uk"},
	{regexp.MustCompile(`\beuropean central bank\b`), "ecb"},
	{regexp.MustCompile(`\beuropean union\b`), "eu"},
	{regexp.MustCompile(`\bu s\b`), "us"},
}

// synonyms map headline verbs to one canonical form. Keys are post-stemming.
var synonyms = map[string]string{
	"hike":     "raise",
	"lift":     "raise",
	"increase": "raise",
	"boost":    "raise",
	"lower":    "cut",
	"reduce":   "cut",
	"slash":    "cut",
	"soar":     "surge",
	"jump":     "surge",
	"spike":    "surge",
	"climb":    "surge",
	"drop":     "fall",
	"plunge":   "fall",
	"tumble":   "fall",
	"slump":    "fall",
	"sink":     "fall",
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "by": true, "of": true, "in": true,
	"on": true, "at": true, "to": true, "for": true, "and": true, "as": true,
	"with": true, "from": true, "is": true, "are": true, "amid": true,
}

var foldAccents = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTitle reduces a headline to canonical tokens joined by single
// spaces. Titles that differ only in case, punctuation, accents, unit
// spelling or common verb choice normalize to the same string.
func NormalizeTitle(title string) string {
	return strings.Join(Tokens(title), " ")
}

// Tokens returns the canonical token list for a title, in order.
func Tokens(title string) []string {
	s, _, err := transform.String(foldAccents, title)
	if err != nil {
		s = title
	}
	s = strings.ToLower(s)
	s = nonAlnumRe.ReplaceAllString(s, " ")
	s = digitLetterRe.ReplaceAllString(s, "$1 $2")
	s = letterDigitRe.ReplaceAllString(s, "$1 $2")
	s = strings.Join(strings.Fields(s), " ")
	for _, p := range phrases {
		s = p.re.ReplaceAllString(s, p.repl)
	}

	fields := strings.Fields(s)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if stopwords[f] {
			continue
		}
		f = stem(f)
		if syn, ok := synonyms[f]; ok {
			f = syn
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// stem strips simple English plural endings.
func stem(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 4 && (strings.HasSuffix(w, "shes") || strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "xes")):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us"):
		return w[:len(w)-1]
	}
	return w
}
