package builder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdgraph/backend/internal/kg/terms"
)

func TestNormalizeID(t *testing.T) {
	tests := map[string]string{
		"React":                  "react",
		"  Server   Components ": "server-components",
		"Next.js":                "next.js",
		"next js":                "next-js",
		"组件":                     "组件",
		"Tailwind\tCSS":          "tailwind-css",
		"ÉCOLE":                  "école",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeID(in), in)
	}
}

func TestScenarioSingleDocument(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.Add("intro.md", []terms.Match{
		{Term: "React", Category: terms.Frameworks, Count: 1},
		{Term: "Hooks", Category: terms.Concepts, Count: 1},
		{Term: "组件", Category: terms.Concepts, Count: 1},
	})

	entities := acc.Entities()
	require.Len(t, entities, 3)
	assert.Equal(t, []string{"react", "hooks", "组件"}, []string{entities[0].ID, entities[1].ID, entities[2].ID})
	for _, e := range entities {
		assert.Equal(t, 1, e.Occurrences)
		assert.Equal(t, []string{"intro.md"}, e.Sources)
	}

	assert.Equal(t, []Relationship{
		{Source: "react", Target: "hooks", Type: "uses", Strength: 1},
		{Source: "react", Target: "组件", Type: "uses", Strength: 1},
		{Source: "hooks", Target: "组件", Type: "related-to", Strength: 1},
	}, acc.Relationships())
}

func TestMergeAcrossDocuments(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.Add("a.md", []terms.Match{
		{Term: "React", Category: terms.Frameworks, Count: 1},
		{Term: "TypeScript", Category: terms.Languages, Count: 3},
	})
	// Same pair in reverse order, different casing and category.
	acc.Add("b.md", []terms.Match{
		{Term: "typescript", Category: terms.Concepts, Count: 1},
		{Term: "react", Category: terms.Tools, Count: 1},
	})

	react, ok := acc.Entity("react")
	require.True(t, ok)
	assert.Equal(t, Entity{
		ID: "react", Label: "React", Category: terms.Frameworks,
		Occurrences: 2, Sources: []string{"a.md", "b.md"},
	}, react)

	ts, ok := acc.Entity("typescript")
	require.True(t, ok)
	assert.Equal(t, 4, ts.Occurrences)
	assert.Equal(t, terms.Languages, ts.Category)

	assert.Equal(t, []Relationship{
		{Source: "react", Target: "typescript", Type: "written-in", Strength: 2},
	}, acc.Relationships())

	_, ok = acc.Entity("vue")
	assert.False(t, ok)
}

func TestSameDocumentTwice(t *testing.T) {
	acc := NewAccumulator(nil)
	matches := []terms.Match{
		{Term: "Docker", Category: terms.Tools, Count: 1},
		{Term: "docker", Category: terms.Tools, Count: 2},
		{Term: "Golang", Category: terms.Languages, Count: 1},
	}
	acc.Add("ops.md", matches)

	docker, _ := acc.Entity("docker")
	assert.Equal(t, 3, docker.Occurrences)
	assert.Equal(t, []string{"ops.md"}, docker.Sources)

	// One relationship per unordered pair, no self loop.
	assert.Equal(t, []Relationship{
		{Source: "docker", Target: "golang", Type: "works-with", Strength: 1},
	}, acc.Relationships())
}

func TestUnknownCategoryFallsBackToRelated(t *testing.T) {
	acc := NewAccumulator(RelationTable{})
	acc.Add("x.md", []terms.Match{
		{Term: "Foo", Category: terms.Unknown, Count: 1},
		{Term: "Bar", Category: terms.Frameworks, Count: 1},
	})

	assert.Equal(t, DefaultRelation, acc.Relationships()[0].Type)
	assert.Equal(t, "related", DefaultRelationTable().Lookup(terms.Unknown, terms.Tools))
	assert.Len(t, DefaultRelationTable(), 25)
}

func TestAccumulatorCopiesAreIndependent(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.Add("a.md", []terms.Match{{Term: "Vite", Category: terms.Tools, Count: 1}})

	entities := acc.Entities()
	entities[0].Sources[0] = "mutated"

	e, _ := acc.Entity("vite")
	assert.Equal(t, []string{"a.md"}, e.Sources)
}

func TestBuildGraph(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.Add("a.md", []terms.Match{
		{Term: "React", Category: terms.Frameworks, Count: 12},
		{Term: "Jest", Category: terms.Tools, Count: 3},
	})

	g := Build(acc)
	assert.Equal(t, []Node{
		{ID: "react", Label: "React", Group: 1, Size: 20},
		{ID: "jest", Label: "Jest", Group: 4, Size: 6},
	}, g.Nodes)
	assert.Equal(t, []Link{
		{Source: "react", Target: "jest", Value: 1, Type: "built-with"},
	}, g.Links)
	assert.False(t, g.Empty())
}

func TestNodeSizeClamp(t *testing.T) {
	assert.Equal(t, 2, NodeSize(1))
	assert.Equal(t, 18, NodeSize(9))
	for occ := 10; occ < 200; occ += 7 {
		assert.Equal(t, MaxNodeSize, NodeSize(occ))
	}
}

func TestEmptyGraphJSON(t *testing.T) {
	data, err := json.Marshal(Build(NewAccumulator(nil)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"links":[]}`, string(data))
	assert.True(t, EmptyGraph().Empty())
}
