package ingestion

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/afero"

	"github.com/mdgraph/backend/pkg/utils"
)

// Document is one Markdown file, read fresh for every run.
type Document struct {
	Path    string
	RelPath string
	Raw     string
	Meta    FrontMatter
	Body    string
}

// Name is the file name. Articles fall back to it when the title is empty.
func (d *Document) Name() string {
	return filepath.Base(d.Path)
}

// Load reads path and splits off its front matter. root only feeds RelPath.
func Load(fsys afero.Fs, root, path string) (*Document, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}

	raw := string(data)
	meta, body := ParseFrontMatter(raw)

	return &Document{
		Path:    path,
		RelPath: filepath.ToSlash(rel),
		Raw:     raw,
		Meta:    meta,
		Body:    body,
	}, nil
}

// Fingerprint identifies a corpus snapshot by each document's relative path,
// size and modification time. Any edit, add or delete changes it.
func Fingerprint(fsys afero.Fs, root string, paths []string) (string, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	parts := make([]string, 0, len(sorted)*3+1)
	parts = append(parts, root)
	for _, p := range sorted {
		info, err := fsys.Stat(p)
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", p, err)
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = p
		}
		parts = append(parts,
			filepath.ToSlash(rel),
			strconv.FormatInt(info.Size(), 10),
			strconv.FormatInt(info.ModTime().UnixNano(), 10),
		)
	}

	return utils.HashString(parts...), nil
}
