// ABOUTME: Derives short display titles for conversations from free text.
// ABOUTME: Pure and deterministic - the same input always yields the same title.

package title

import (
	"strings"
	"unicode"
)

// Placeholder is returned when no usable words remain after filtering.
const Placeholder = "New Chat"

// maxWords caps how many words make it into a generated title.
const maxWords = 4

// prefixes are conversational fillers stripped from the start of the input.
// Order matters: the first matching prefix wins and only that one is removed.
var prefixes = []string{
	"can you", "please", "help me", "i need", "how to", "what is", "explain", "tell me",
	"i want to", "i would like", "could you", "would you", "can someone", "does anyone",
	"i'm looking for", "i'm trying to", "i need help with", "i need assistance with",
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true, "with": true,
	"by": true, "is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "have": true, "has": true, "had": true,
	"do": true, "does": true, "did": true, "will": true, "would": true, "could": true,
	"should": true, "may": true, "might": true, "must": true, "help": true,
	"this": true, "that": true, "these": true, "those": true,
	"i": true, "you": true, "he": true, "she": true, "it": true, "we": true, "they": true,
	"me": true, "him": true, "her": true, "us": true, "them": true,
	"my": true, "your": true, "his": true, "its": true, "our": true, "their": true,
}

// Generate builds a 1-4 word Title-Cased label from the first user message.
// Returns Placeholder when the message contains no usable words.
func Generate(message string) string {
	clean := strings.ToLower(strings.TrimSpace(message))

	for _, prefix := range prefixes {
		if strings.HasPrefix(clean, prefix) {
			clean = strings.TrimSpace(strings.TrimPrefix(clean, prefix))
			break
		}
	}

	// Punctuation becomes whitespace so "launch!" and "launch" tokenize the same.
	clean = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, clean)

	var words []string
	for _, w := range strings.Fields(clean) {
		if len(w) <= 2 || stopWords[w] {
			continue
		}
		words = append(words, capitalize(w))
		if len(words) == maxWords {
			break
		}
	}

	if len(words) == 0 {
		return Placeholder
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
