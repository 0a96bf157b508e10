package terms

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	PolicyPattern    = "pattern"
	PolicyVocabulary = "vocabulary"
)

// Match is one recognized term in one document with its in-document count.
type Match struct {
	Term     string
	Category Category
	Count    int
}

// Recognizer finds terms in a document's text.
type Recognizer interface {
	Name() string
	Recognize(text string) []Match
}

// NewRecognizer returns the recognizer for a policy name. vocab is only used
// by the vocabulary policy; nil means DefaultVocabulary.
func NewRecognizer(policy string, vocab Vocabulary) (Recognizer, error) {
	switch policy {
	case PolicyPattern:
		return NewPatternRecognizer(DefaultRules()), nil
	case PolicyVocabulary:
		if vocab == nil {
			vocab = DefaultVocabulary()
		}
		return NewVocabularyRecognizer(vocab), nil
	default:
		return nil, fmt.Errorf("unknown extraction policy %q", policy)
	}
}

// DocumentText is the text a recognizer scans: title, description and body.
func DocumentText(title, description, body string) string {
	return title + " " + description + " " + body
}

// tally counts (category, term) pairs in first-seen order.
type tally struct {
	index   map[tallyKey]int
	matches []Match
}

type tallyKey struct {
	category Category
	term     string
}

func newTally() *tally {
	return &tally{index: make(map[tallyKey]int)}
}

func (t *tally) add(term string, category Category, n int) {
	key := tallyKey{category: category, term: term}
	if i, ok := t.index[key]; ok {
		t.matches[i].Count += n
		return
	}
	t.index[key] = len(t.matches)
	t.matches = append(t.matches, Match{Term: term, Category: category, Count: n})
}

// boundedPattern compiles term as a case-insensitive literal. \b is only
// added on a side whose edge rune is an ASCII word character, because RE2
// boundaries never match next to CJK text.
func boundedPattern(term string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?i)")

	runes := []rune(term)
	if len(runes) > 0 && isASCIIWord(runes[0]) {
		b.WriteString(`\b`)
	}
	b.WriteString(regexp.QuoteMeta(term))
	if len(runes) > 0 && isASCIIWord(runes[len(runes)-1]) {
		b.WriteString(`\b`)
	}

	return regexp.MustCompile(b.String())
}

func isASCIIWord(r rune) bool {
	return r < unicode.MaxASCII && (r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
}
