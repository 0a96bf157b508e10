package terms

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Vocabulary is a controlled list of known terms per category. Terms are
// matched in Categories order, then list order.
type Vocabulary map[Category][]string

func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Frameworks: {
			"React", "Vue", "Angular", "Svelte", "Next.js", "Nuxt", "Express", "Koa",
			"Spring", "Django", "Flask", "Electron", "Redux", "Tailwind CSS", "D3",
		},
		Concepts: {
			"Hooks", "Virtual DOM", "Server Components", "SSR", "Closure", "Event Loop",
			"组件", "状态管理", "闭包", "原型链", "事件循环", "响应式", "虚拟DOM", "异步",
		},
		Languages: {
			"JavaScript", "TypeScript", "Golang", "Python", "Rust", "Java", "Kotlin",
			"C++", "C#", "HTML", "CSS", "SQL",
		},
		Tools: {
			"Webpack", "Vite", "Babel", "ESLint", "Git", "Docker", "Kubernetes", "npm",
			"pnpm", "Jest", "Nginx", "VS Code",
		},
		Patterns: {
			"MVC", "MVVM", "Singleton", "Observer", "Factory", "Middleware",
			"单例模式", "观察者模式", "发布订阅模式", "工厂模式", "装饰器模式",
		},
	}
}

// LoadVocabulary reads a YAML file mapping category names to term lists:
//
//	frameworks: [React, Vue]
//	concepts: [Hooks, 组件]
func LoadVocabulary(fsys afero.Fs, path string) (Vocabulary, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary %s: %w", path, err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary %s: %w", path, err)
	}

	vocab := make(Vocabulary, len(raw))
	for name, list := range raw {
		category, err := ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("invalid vocabulary %s: %w", path, err)
		}
		vocab[category] = append(vocab[category], list...)
	}

	return vocab, nil
}

type vocabularyTerm struct {
	term     string
	category Category
	pattern  *regexp.Regexp
}

// VocabularyRecognizer counts case-insensitive whole-word occurrences of
// each vocabulary term. A term listed under two categories keeps the first.
type VocabularyRecognizer struct {
	terms []vocabularyTerm
}

func NewVocabularyRecognizer(vocab Vocabulary) *VocabularyRecognizer {
	seen := make(map[string]struct{})
	var compiled []vocabularyTerm

	for _, category := range Categories {
		for _, term := range vocab[category] {
			term = strings.TrimSpace(term)
			key := strings.ToLower(term)
			if term == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			compiled = append(compiled, vocabularyTerm{
				term:     term,
				category: category,
				pattern:  boundedPattern(term),
			})
		}
	}

	return &VocabularyRecognizer{terms: compiled}
}

func (v *VocabularyRecognizer) Name() string {
	return PolicyVocabulary
}

func (v *VocabularyRecognizer) Recognize(text string) []Match {
	t := newTally()

	for _, vt := range v.terms {
		if n := len(vt.pattern.FindAllStringIndex(text, -1)); n > 0 {
			t.add(vt.term, vt.category, n)
		}
	}

	return t.matches
}
