// Package search vectorizes message text, ranks messages by similarity to
// a query, and groups messages into topic clusters.
package search

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// stopwords filters common English terms before vectorization.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true, "was": true,
	"are": true, "be": true, "been": true, "being": true, "have": true, "has": true,
	"had": true, "do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "can": true, "this": true,
	"that": true, "these": true, "those": true, "i": true, "you": true, "he": true,
	"she": true, "it": true, "we": true, "they": true, "what": true, "which": true,
	"who": true, "when": true, "where": true, "why": true, "how": true,
	"not": true, "no": true, "so": true, "if": true, "me": true, "my": true,
	"your": true, "our": true, "their": true, "am": true, "us": true,
}

// tokenize lowercases text, splits it into alphanumeric runs, drops
// stopwords, and stems each remaining term so that inflected forms share a
// vocabulary slot.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if stopwords[f] {
			continue
		}
		tokens = append(tokens, english.Stem(f, false))
	}
	return tokens
}
