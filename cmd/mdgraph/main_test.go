package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdgraph/backend/internal/kg/builder"
	"github.com/mdgraph/backend/internal/knowledge"
)

func setupCorpus(t *testing.T) {
	t.Helper()

	mem := afero.NewMemMapFs()
	files := map[string]string{
		"/corpus/react.md":      "---\ntitle: React\n---\nReact uses Hooks",
		"/corpus/ops/docker.md": "Docker and React",
		"/vocab.yaml":           "frameworks: [React]\nconcepts: [Hooks]\ntools: [Docker]\n",
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(mem, path, []byte(content), 0o644))
	}

	previous := fsys
	fsys = mem
	t.Cleanup(func() { fsys = previous })
}

func execute(t *testing.T, args ...string) []byte {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--root", "/corpus", "--policy", "vocabulary", "--vocabulary", "/vocab.yaml"))
	require.NoError(t, rootCmd.Execute())
	return out.Bytes()
}

func TestGraphCommand(t *testing.T) {
	setupCorpus(t)

	var graph builder.Graph
	require.NoError(t, json.Unmarshal(execute(t, "graph"), &graph))

	ids := make([]string, 0, len(graph.Nodes))
	for _, n := range graph.Nodes {
		ids = append(ids, n.ID)
	}
	assert.ElementsMatch(t, []string{"react", "hooks", "docker"}, ids)
	assert.Len(t, graph.Links, 2)
}

func TestDocCommand(t *testing.T) {
	setupCorpus(t)

	var graph builder.Graph
	require.NoError(t, json.Unmarshal(execute(t, "doc", "/corpus/react.md"), &graph))
	assert.Len(t, graph.Nodes, 2)
	require.Len(t, graph.Links, 1)
	assert.Equal(t, "uses", graph.Links[0].Type)

	assert.JSONEq(t, `{"nodes":[],"links":[]}`, string(execute(t, "doc", "/corpus/missing.md")))
}

func TestListCommands(t *testing.T) {
	setupCorpus(t)

	var docs []string
	require.NoError(t, json.Unmarshal(execute(t, "list"), &docs))
	assert.Equal(t, []string{"ops/docker.md", "react.md"}, docs)

	var articles []knowledge.Article
	require.NoError(t, json.Unmarshal(execute(t, "articles"), &articles))
	require.Len(t, articles, 2)
	assert.Equal(t, "docker", articles[0].Title)
	assert.Equal(t, "React", articles[1].Title)
}

func TestInvalidPolicy(t *testing.T) {
	setupCorpus(t)

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"list", "--root", "/corpus", "--policy", "llm"})
	assert.Error(t, rootCmd.Execute())
}
