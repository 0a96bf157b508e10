package terms

import (
	"regexp"
)

// Rule tags every match of Pattern with Category.
type Rule struct {
	Category Category
	Pattern  *regexp.Regexp
}

// DefaultRules returns the built-in lexical rules, most specific first. A
// match overlapping a span claimed by an earlier rule is dropped, so a span
// only ever counts for one category: "React Hooks" is one concept and yields
// no separate React framework.
func DefaultRules() []Rule {
	return []Rule{
		// CJK run ending in 模式 ("pattern"), e.g. 单例模式.
		{Category: Patterns, Pattern: regexp.MustCompile(`[\x{4e00}-\x{9fa5}]{2,}模式`)},
		// Hyphenated capitalized compounds, e.g. Create-React-App.
		{Category: Tools, Pattern: regexp.MustCompile(`\b[A-Z][a-zA-Z0-9]{2,}(?:-[A-Z][a-zA-Z0-9]+)+\b`)},
		// Names carrying a + or # suffix, e.g. Cpp++ or Fsharp#.
		{Category: Languages, Pattern: regexp.MustCompile(`\b[A-Z][a-zA-Z0-9]{2,}[+#]{1,2}[a-zA-Z0-9]*`)},
		// CJK runs, or two or more capitalized words on one line.
		{Category: Concepts, Pattern: regexp.MustCompile(`[\x{4e00}-\x{9fa5}]{2,}|\b[A-Z][a-zA-Z0-9]+(?:[ \t]+[A-Z][a-zA-Z0-9]+)+\b`)},
		{Category: Frameworks, Pattern: regexp.MustCompile(`\b[A-Z][a-zA-Z0-9]{2,}(?:-[A-Z][a-zA-Z0-9]+)*(?:\.[a-zA-Z0-9]+)?\b`)},
	}
}

// PatternRecognizer finds terms with per-category regular expressions.
type PatternRecognizer struct {
	rules []Rule
}

func NewPatternRecognizer(rules []Rule) *PatternRecognizer {
	return &PatternRecognizer{rules: rules}
}

func (p *PatternRecognizer) Name() string {
	return PolicyPattern
}

func (p *PatternRecognizer) Recognize(text string) []Match {
	t := newTally()
	var claimed [][2]int

	for _, rule := range p.rules {
		for _, loc := range rule.Pattern.FindAllStringIndex(text, -1) {
			if overlaps(claimed, loc[0], loc[1]) {
				continue
			}
			// Excluded spans stay claimed so "README.md" cannot resurface
			// as "README" under a looser rule.
			claimed = append(claimed, [2]int{loc[0], loc[1]})

			term := text[loc[0]:loc[1]]
			if Excluded(term) {
				continue
			}
			t.add(term, rule.Category, 1)
		}
	}

	return t.matches
}

func overlaps(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && s[0] < end {
			return true
		}
	}
	return false
}
