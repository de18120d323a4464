package fetchers

import (
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "for": true, "of": true, "to": true,
	"and": true, "or": true, "with": true, "that": true, "which": true,
	"app": true, "platform": true, "service": true, "startup": true,
	"based": true, "on": true, "in": true, "my": true, "our": true, "your": true,
	"helps": true, "help": true, "people": true, "who": true, "is": true,
}

// Keyword reduces an idea sentence to a short search keyword: the first few
// content words, lower-cased, stopwords dropped.
func Keyword(idea string, maxWords int) string {
	if maxWords <= 0 {
		maxWords = 3
	}
	fields := strings.FieldsFunc(strings.ToLower(idea), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	words := make([]string, 0, maxWords)
	for _, f := range fields {
		if stopwords[f] || len(f) < 2 {
			continue
		}
		words = append(words, f)
		if len(words) == maxWords {
			break
		}
	}
	return strings.Join(words, " ")
}
