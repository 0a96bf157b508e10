package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/mdgraph/backend/internal/knowledge"
	"github.com/mdgraph/backend/internal/metrics"
	"github.com/mdgraph/backend/pkg/logger"
)

// Watcher reports edits to the corpus. fsnotify is not recursive, so every
// directory under the root is watched and new ones are added as they appear.
type Watcher struct {
	root      string
	extension string
	watcher   *fsnotify.Watcher
	debouncer *Debouncer

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWatcher(root, extension string, debounce time.Duration, onChanged func()) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		root:      root,
		extension: extension,
		watcher:   watcher,
		debouncer: NewDebouncer(debounce, onChanged),
	}

	if err := w.addTree(root); err != nil {
		watcher.Close()
		return nil, err
	}

	logger.Info("Watching corpus", zap.String("root", root), zap.Duration("debounce", debounce))
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Start consumes events until ctx ends or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if w.relevant(event) {
					metrics.WatchEvents.Inc()
					logger.Debug("Corpus change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))
					w.debouncer.Trigger()
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Corpus watcher error", zap.Error(err))
			case <-ctx.Done():
				return
			}
		}
	}()
}

// relevant reports whether event can change the graph. New directories are
// watched on the way.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logger.Warn("Failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
			}
			return true
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	// A removed or renamed directory has no extension to check.
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && filepath.Ext(event.Name) == "" {
		return true
	}
	return strings.HasSuffix(event.Name, w.extension)
}

func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.debouncer.Cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

// GraphBuilder builds the corpus graph.
type GraphBuilder interface {
	BuildCorpusGraph(ctx context.Context, root string) (*knowledge.CorpusResult, error)
}

// Invalidator drops cached graphs.
type Invalidator interface {
	InvalidateGraphs(ctx context.Context) error
}

// Publisher delivers a fresh graph to live subscribers.
type Publisher interface {
	Publish(result *knowledge.CorpusResult)
}

// Rebuilder is the watcher's change action: drop cached graphs, rebuild,
// publish. Rebuilds never overlap.
type Rebuilder struct {
	root        string
	builder     GraphBuilder
	invalidator Invalidator
	publisher   Publisher
	timeout     time.Duration

	mu sync.Mutex
}

func NewRebuilder(root string, builder GraphBuilder, invalidator Invalidator, publisher Publisher) *Rebuilder {
	return &Rebuilder{
		root:        root,
		builder:     builder,
		invalidator: invalidator,
		publisher:   publisher,
		timeout:     time.Minute,
	}
}

func (r *Rebuilder) Rebuild() {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if r.invalidator != nil {
		if err := r.invalidator.InvalidateGraphs(ctx); err != nil {
			logger.Warn("Failed to invalidate graph cache", zap.Error(err))
		}
	}

	result, err := r.builder.BuildCorpusGraph(ctx, r.root)
	if err != nil {
		logger.Error("Failed to rebuild corpus graph", zap.String("root", r.root), zap.Error(err))
		return
	}

	if r.publisher != nil {
		r.publisher.Publish(result)
	}
}
