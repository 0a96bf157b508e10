package terms

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	numberPattern   = regexp.MustCompile(`^\d+(\.\d+)?$`)
	datePattern     = regexp.MustCompile(`^\d{4}[-/.]\d{1,2}[-/.]\d{1,2}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	urlPattern      = regexp.MustCompile(`^https?://`)
	pathPattern     = regexp.MustCompile(`^([a-zA-Z]:)?[\\/][^\\/]+[\\/][^\\/]+$`)
	fileNamePattern = regexp.MustCompile(`^[^\\/]+\.[a-zA-Z0-9]+$`)
)

var stopwords = toSet([]string{
	"the", "and", "or", "but", "in", "on", "at", "to", "for", "with", "by", "of", "a", "an",
	"is", "are", "was", "were", "be", "been", "being", "have", "has", "had", "having",
	"do", "does", "did", "doing", "will", "would", "shall", "should", "can", "could",
	"may", "might", "must", "ought", "i", "you", "he", "she", "it", "we", "they",
	"this", "that", "these", "those", "what", "which", "who", "whom", "whose",
	"why", "how", "where", "when",
})

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Excluded reports whether a pattern match is noise rather than a term:
// single characters, numbers, dates, emails, URLs, paths, file names and
// stopwords.
func Excluded(term string) bool {
	if utf8.RuneCountInString(term) <= 1 {
		return true
	}
	if _, ok := stopwords[strings.ToLower(term)]; ok {
		return true
	}

	switch {
	case numberPattern.MatchString(term),
		datePattern.MatchString(term),
		emailPattern.MatchString(term),
		urlPattern.MatchString(term),
		pathPattern.MatchString(term),
		fileNamePattern.MatchString(term):
		return true
	}

	return false
}
