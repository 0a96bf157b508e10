package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdgraph/backend/internal/kg/builder"
	"github.com/mdgraph/backend/internal/knowledge"
)

func TestDebouncerCollapsesBursts(t *testing.T) {
	var calls int32
	d := NewDebouncer(30*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	for i := 0; i < 10; i++ {
		d.Trigger()
		time.Sleep(2 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDebouncerCancel(t *testing.T) {
	var calls int32
	d := NewDebouncer(20*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	d.Trigger()
	d.Cancel()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestWatcherTriggersOnDocumentChanges(t *testing.T) {
	root := t.TempDir()
	var calls int32

	w, err := NewWatcher(root, ".md", 20*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })
	require.NoError(t, err)
	w.Start(context.Background())
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0o644))
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("React"), 0o644))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, 2*time.Second, 10*time.Millisecond)

	// Files in directories created after start are seen too.
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	time.Sleep(80 * time.Millisecond)
	before := atomic.LoadInt32(&calls)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.md"), []byte("Docker"), 0o644))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) > before }, 2*time.Second, 10*time.Millisecond)
}

func TestNewWatcherMissingRoot(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), ".md", time.Millisecond, func() {})
	assert.Error(t, err)
}

type fakeBuilder struct {
	result *knowledge.CorpusResult
	err    error
	calls  int
}

func (f *fakeBuilder) BuildCorpusGraph(context.Context, string) (*knowledge.CorpusResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeInvalidator struct{ calls int }

func (f *fakeInvalidator) InvalidateGraphs(context.Context) error {
	f.calls++
	return errors.New("redis down")
}

type fakePublisher struct{ published []*knowledge.CorpusResult }

func (f *fakePublisher) Publish(r *knowledge.CorpusResult) {
	f.published = append(f.published, r)
}

func TestRebuilder(t *testing.T) {
	result := &knowledge.CorpusResult{Graph: builder.EmptyGraph()}
	b := &fakeBuilder{result: result}
	inv := &fakeInvalidator{}
	pub := &fakePublisher{}

	NewRebuilder("/corpus", b, inv, pub).Rebuild()

	assert.Equal(t, 1, inv.calls)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, []*knowledge.CorpusResult{result}, pub.published)
}

func TestRebuilderSkipsPublishOnError(t *testing.T) {
	b := &fakeBuilder{err: errors.New("boom")}
	pub := &fakePublisher{}

	NewRebuilder("/corpus", b, nil, pub).Rebuild()

	assert.Equal(t, 1, b.calls)
	assert.Empty(t, pub.published)
}
