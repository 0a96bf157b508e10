package terms

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabularyRecognizerScenario(t *testing.T) {
	r := NewVocabularyRecognizer(Vocabulary{
		Frameworks: {"React"},
		Concepts:   {"Hooks", "组件"},
	})

	assert.Equal(t, []Match{
		{Term: "React", Category: Frameworks, Count: 1},
		{Term: "Hooks", Category: Concepts, Count: 1},
		{Term: "组件", Category: Concepts, Count: 1},
	}, r.Recognize("React uses Hooks and 组件 patterns"))
}

func TestVocabularyRecognizerMatching(t *testing.T) {
	r := NewVocabularyRecognizer(Vocabulary{
		Frameworks: {"React", "Next.js"},
		Languages:  {"C++", "Java"},
		Concepts:   {"状态管理"},
	})

	matches := r.Recognize("react, REACT and Reactive. Next.js vs Nextxjs. C++ not C. JavaScript is not Java. 状态管理和状态管理")

	assert.Equal(t, []Match{
		{Term: "React", Category: Frameworks, Count: 2},
		{Term: "Next.js", Category: Frameworks, Count: 1},
		{Term: "状态管理", Category: Concepts, Count: 2},
		{Term: "C++", Category: Languages, Count: 1},
		{Term: "Java", Category: Languages, Count: 1},
	}, matches)
}

func TestVocabularyRecognizerFirstCategoryWins(t *testing.T) {
	r := NewVocabularyRecognizer(Vocabulary{
		Tools:      {"Redux"},
		Frameworks: {"redux", " ", ""},
	})

	assert.Equal(t, []Match{{Term: "redux", Category: Frameworks, Count: 1}}, r.Recognize("Redux"))
	assert.Equal(t, "vocabulary", r.Name())
}

func TestLoadVocabulary(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/vocab.yaml", []byte(
		"frameworks: [React]\nconcept:\n  - Hooks\n  - 组件\n"), 0o644))

	vocab, err := LoadVocabulary(fsys, "/vocab.yaml")
	require.NoError(t, err)
	assert.Equal(t, Vocabulary{
		Frameworks: {"React"},
		Concepts:   {"Hooks", "组件"},
	}, vocab)
}

func TestLoadVocabularyErrors(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/bad.yaml", []byte("gadgets: [Thing]\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/broken.yaml", []byte("frameworks: [React\n"), 0o644))

	_, err := LoadVocabulary(fsys, "/missing.yaml")
	assert.Error(t, err)

	_, err = LoadVocabulary(fsys, "/bad.yaml")
	assert.ErrorContains(t, err, "unknown term category")

	_, err = LoadVocabulary(fsys, "/broken.yaml")
	assert.Error(t, err)
}

func TestNewRecognizer(t *testing.T) {
	r, err := NewRecognizer(PolicyPattern, nil)
	require.NoError(t, err)
	assert.IsType(t, &PatternRecognizer{}, r)

	r, err = NewRecognizer(PolicyVocabulary, nil)
	require.NoError(t, err)
	assert.IsType(t, &VocabularyRecognizer{}, r)
	assert.NotEmpty(t, r.Recognize("TypeScript and Docker"))

	_, err = NewRecognizer("llm", nil)
	assert.Error(t, err)
}

func TestCategory(t *testing.T) {
	groups := map[Category]int{Frameworks: 1, Concepts: 2, Languages: 3, Tools: 4, Patterns: 5, Unknown: 0}
	for c, g := range groups {
		assert.Equal(t, g, c.Group(), c.String())
	}

	c, err := ParseCategory(" Tool ")
	require.NoError(t, err)
	assert.Equal(t, Tools, c)

	_, err = ParseCategory("gadgets")
	assert.Error(t, err)

	var parsed Category
	require.NoError(t, parsed.UnmarshalText([]byte("patterns")))
	assert.Equal(t, Patterns, parsed)
	text, err := parsed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "patterns", string(text))
}
