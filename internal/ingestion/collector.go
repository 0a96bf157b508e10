package ingestion

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mdgraph/backend/pkg/logger"
)

// Collector finds every document under a corpus root.
type Collector struct {
	fs        afero.Fs
	extension string
}

func NewCollector(fsys afero.Fs, extension string) *Collector {
	return &Collector{
		fs:        fsys,
		extension: extension,
	}
}

func (c *Collector) Extension() string {
	return c.extension
}

// Matches reports whether path carries the collector's extension.
func (c *Collector) Matches(path string) bool {
	return strings.HasSuffix(path, c.extension)
}

// Collect walks root recursively and returns the matching file paths in
// lexical order. A missing or unreadable root is an error.
func (c *Collector) Collect(ctx context.Context, root string) ([]string, error) {
	info, err := c.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat corpus root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", root)
	}

	var paths []string
	err = afero.Walk(c.fs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() || !c.Matches(info.Name()) {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Corpus collected", zap.String("root", root), zap.Int("documents", len(paths)))

	return paths, nil
}

// Relative converts collected paths to slash-separated paths relative to root.
func Relative(root string, paths []string) ([]string, error) {
	rel := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(root, p)
		if err != nil {
			return nil, fmt.Errorf("failed to relativize %s: %w", p, err)
		}
		rel = append(rel, filepath.ToSlash(r))
	}
	return rel, nil
}
