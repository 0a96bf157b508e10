package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCorpus(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/corpus", 0o755))
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
	}
	return fsys
}

func TestCollectRecursesInLexicalOrder(t *testing.T) {
	fsys := newCorpus(t, map[string]string{
		"/corpus/b.md":             "b",
		"/corpus/a.md":             "a",
		"/corpus/notes/react.md":   "react",
		"/corpus/notes/deep/go.md": "go",
		"/corpus/readme.txt":       "skip",
		"/corpus/notes/image.png":  "skip",
	})

	c := NewCollector(fsys, ".md")
	paths, err := c.Collect(context.Background(), "/corpus")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/corpus/a.md",
		"/corpus/b.md",
		"/corpus/notes/deep/go.md",
		"/corpus/notes/react.md",
	}, paths)

	rel, err := Relative("/corpus", paths)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.md", "notes/deep/go.md", "notes/react.md"}, rel)
}

func TestCollectMissingRoot(t *testing.T) {
	c := NewCollector(afero.NewMemMapFs(), ".md")

	_, err := c.Collect(context.Background(), "/nowhere")
	assert.Error(t, err)
}

func TestCollectRootIsFile(t *testing.T) {
	fsys := newCorpus(t, map[string]string{"/corpus/a.md": "a"})
	c := NewCollector(fsys, ".md")

	_, err := c.Collect(context.Background(), "/corpus/a.md")
	assert.Error(t, err)
}

func TestCollectEmptyCorpus(t *testing.T) {
	fsys := newCorpus(t, nil)
	c := NewCollector(fsys, ".md")

	paths, err := c.Collect(context.Background(), "/corpus")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestLoadParsesDocument(t *testing.T) {
	fsys := newCorpus(t, map[string]string{
		"/corpus/notes/react.md": "---\ntitle: React\ntags: [ui]\n---\nReact uses Hooks.",
	})

	doc, err := Load(fsys, "/corpus", "/corpus/notes/react.md")
	require.NoError(t, err)

	assert.Equal(t, "notes/react.md", doc.RelPath)
	assert.Equal(t, "react.md", doc.Name())
	assert.Equal(t, "React", doc.Meta.Title())
	assert.Equal(t, []string{"ui"}, doc.Meta.Tags())
	assert.Equal(t, "React uses Hooks.", doc.Body)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/corpus", "/corpus/missing.md")
	assert.Error(t, err)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	fsys := newCorpus(t, map[string]string{
		"/corpus/a.md": "a",
		"/corpus/b.md": "b",
	})
	paths := []string{"/corpus/b.md", "/corpus/a.md"}

	first, err := Fingerprint(fsys, "/corpus", paths)
	require.NoError(t, err)

	again, err := Fingerprint(fsys, "/corpus", []string{"/corpus/a.md", "/corpus/b.md"})
	require.NoError(t, err)
	assert.Equal(t, first, again)

	require.NoError(t, afero.WriteFile(fsys, "/corpus/a.md", []byte("a longer body"), 0o644))
	require.NoError(t, fsys.Chtimes("/corpus/a.md", time.Now(), time.Now().Add(time.Hour)))

	changed, err := Fingerprint(fsys, "/corpus", paths)
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)
}
