package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mdgraph/backend/internal/ingestion"
	"github.com/mdgraph/backend/internal/kg/builder"
	"github.com/mdgraph/backend/internal/kg/terms"
	"github.com/mdgraph/backend/internal/metrics"
	"github.com/mdgraph/backend/internal/storage/models"
	"github.com/mdgraph/backend/pkg/logger"
)

// ErrInvalidDocument marks a single-document request for a path that is
// missing, a directory, or has the wrong extension.
var ErrInvalidDocument = errors.New("invalid document")

// GraphCache stores corpus results keyed by corpus fingerprint.
type GraphCache interface {
	GetGraph(ctx context.Context, fingerprint string, dest interface{}) (bool, error)
	SetGraph(ctx context.Context, fingerprint string, value interface{}) error
}

// RunRecorder persists build history.
type RunRecorder interface {
	InsertBuildRun(run *models.BuildRun) error
}

type Options struct {
	Extension string
	Workers   int
	// FailFast aborts a corpus build on the first unreadable document.
	// When false, failures are reported in CorpusResult.Failures.
	FailFast  bool
	Relations builder.RelationTable
	Cache     GraphCache
	Recorder  RunRecorder
}

type DocumentFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type CorpusResult struct {
	Graph       *builder.Graph    `json:"graph"`
	Documents   int               `json:"documents"`
	Failures    []DocumentFailure `json:"failures,omitempty"`
	Fingerprint string            `json:"fingerprint,omitempty"`
}

type Article struct {
	File        string   `json:"file"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date"`
	Summary     string   `json:"summary"`
}

// Service runs the extraction pipeline. Every call starts from an empty
// accumulator, so results depend only on the corpus and the term rules.
type Service struct {
	fs         afero.Fs
	collector  *ingestion.Collector
	recognizer terms.Recognizer
	relations  builder.RelationTable
	workers    int
	failFast   bool
	cache      GraphCache
	recorder   RunRecorder
}

func NewService(fsys afero.Fs, recognizer terms.Recognizer, opts Options) *Service {
	if opts.Extension == "" {
		opts.Extension = ".md"
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Relations == nil {
		opts.Relations = builder.DefaultRelationTable()
	}

	return &Service{
		fs:         fsys,
		collector:  ingestion.NewCollector(fsys, opts.Extension),
		recognizer: recognizer,
		relations:  opts.Relations,
		workers:    opts.Workers,
		failFast:   opts.FailFast,
		cache:      opts.Cache,
		recorder:   opts.Recorder,
	}
}

func (s *Service) Policy() string {
	return s.recognizer.Name()
}

// recognized is one document's contribution to a corpus build.
type recognized struct {
	doc     *ingestion.Document
	matches []terms.Match
	err     error
}

func (s *Service) recognize(doc *ingestion.Document) []terms.Match {
	text := terms.DocumentText(doc.Meta.Title(), doc.Meta.Description(), doc.Body)
	return s.recognizer.Recognize(text)
}

// loadAll reads and recognizes every path on a bounded worker pool. Results
// come back in path order. With failFast the first read error aborts the
// whole batch; otherwise it is recorded on that document's slot.
func (s *Service) loadAll(ctx context.Context, root string, paths []string, recognize bool) ([]recognized, error) {
	results := make([]recognized, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			doc, err := ingestion.Load(s.fs, root, path)
			if err != nil {
				if s.failFast {
					return err
				}
				results[i] = recognized{err: err, doc: &ingestion.Document{Path: path, RelPath: relPath(root, path)}}
				return nil
			}

			results[i].doc = doc
			if recognize {
				results[i].matches = s.recognize(doc)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BuildCorpusGraph builds one graph over every document under root.
func (s *Service) BuildCorpusGraph(ctx context.Context, root string) (*CorpusResult, error) {
	start := time.Now()
	logger.Info("Building corpus graph", zap.String("root", root), zap.String("policy", s.Policy()))

	paths, err := s.collector.Collect(ctx, root)
	if err != nil {
		metrics.BuildsTotal.WithLabelValues("corpus", "error").Inc()
		return nil, fmt.Errorf("failed to collect documents: %w", err)
	}

	fingerprint := s.fingerprint(root, paths)
	if cached := s.cached(ctx, fingerprint); cached != nil {
		metrics.BuildsTotal.WithLabelValues("corpus", "cached").Inc()
		s.record(root, start, cached, true)
		return cached, nil
	}

	results, err := s.loadAll(ctx, root, paths, true)
	if err != nil {
		metrics.BuildsTotal.WithLabelValues("corpus", "error").Inc()
		return nil, fmt.Errorf("failed to build corpus graph: %w", err)
	}

	acc := builder.NewAccumulator(s.relations)
	result := &CorpusResult{Fingerprint: fingerprint}

	for _, r := range results {
		if r.err != nil {
			logger.Warn("Skipping unreadable document", zap.String("path", r.doc.Path), zap.Error(r.err))
			metrics.DocumentFailures.Inc()
			result.Failures = append(result.Failures, DocumentFailure{Path: r.doc.RelPath, Error: r.err.Error()})
			continue
		}
		acc.Add(r.doc.RelPath, r.matches)
		result.Documents++
	}

	result.Graph = builder.Build(acc)

	metrics.DocumentsProcessed.Add(float64(result.Documents))
	metrics.GraphEntities.Set(float64(len(result.Graph.Nodes)))
	metrics.GraphRelationships.Set(float64(len(result.Graph.Links)))
	metrics.BuildsTotal.WithLabelValues("corpus", "success").Inc()
	metrics.BuildDuration.WithLabelValues("corpus").Observe(time.Since(start).Seconds())

	logger.Info("Corpus graph built",
		zap.String("root", root),
		zap.Int("documents", result.Documents),
		zap.Int("failures", len(result.Failures)),
		zap.Int("nodes", len(result.Graph.Nodes)),
		zap.Int("links", len(result.Graph.Links)),
		zap.Duration("duration", time.Since(start)),
	)

	if len(result.Failures) == 0 {
		s.store(ctx, fingerprint, result)
	}
	s.record(root, start, result, false)

	return result, nil
}

// BuildDocumentGraph builds the graph of a single document. A path that does
// not exist, is a directory, or lacks the corpus extension yields an empty
// graph and no error.
func (s *Service) BuildDocumentGraph(ctx context.Context, path string) (*builder.Graph, error) {
	start := time.Now()

	doc, err := s.loadDocument(path)
	if errors.Is(err, ErrInvalidDocument) {
		logger.Debug("No graph for document", zap.String("path", path), zap.Error(err))
		metrics.BuildsTotal.WithLabelValues("document", "empty").Inc()
		return builder.EmptyGraph(), nil
	}
	if err != nil {
		metrics.BuildsTotal.WithLabelValues("document", "error").Inc()
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	acc := builder.NewAccumulator(s.relations)
	acc.Add(doc.RelPath, s.recognize(doc))
	graph := builder.Build(acc)

	metrics.DocumentsProcessed.Inc()
	metrics.BuildsTotal.WithLabelValues("document", "success").Inc()
	metrics.BuildDuration.WithLabelValues("document").Observe(time.Since(start).Seconds())

	return graph, nil
}

func (s *Service) loadDocument(path string) (*ingestion.Document, error) {
	if !s.collector.Matches(path) {
		return nil, fmt.Errorf("%w: %s is not a %s file", ErrInvalidDocument, path, s.collector.Extension())
	}

	info, err := s.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s does not exist", ErrInvalidDocument, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat document %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidDocument, path)
	}

	return ingestion.Load(s.fs, filepath.Dir(path), path)
}

// ListDocuments returns the corpus-relative paths of every document.
func (s *Service) ListDocuments(ctx context.Context, root string) ([]string, error) {
	paths, err := s.collector.Collect(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return ingestion.Relative(root, paths)
}

// ListArticles returns front matter and a plain-text summary per document.
func (s *Service) ListArticles(ctx context.Context, root string) ([]Article, error) {
	paths, err := s.collector.Collect(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	results, err := s.loadAll(ctx, root, paths, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	articles := make([]Article, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			logger.Warn("Skipping unreadable article", zap.String("path", r.doc.Path), zap.Error(r.err))
			continue
		}
		articles = append(articles, newArticle(r.doc))
	}

	return articles, nil
}

func newArticle(doc *ingestion.Document) Article {
	title := doc.Meta.Title()
	if title == "" {
		name := doc.Name()
		title = strings.TrimSuffix(name, filepath.Ext(name))
	}

	tags := doc.Meta.Tags()
	if tags == nil {
		tags = []string{}
	}

	return Article{
		File:        doc.RelPath,
		Title:       title,
		Description: doc.Meta.Description(),
		Category:    doc.Meta.Category(),
		Tags:        tags,
		Date:        doc.Meta.Date(),
		Summary:     ingestion.Summarize(doc.Body, ingestion.DefaultSummaryLength),
	}
}

// BuildDocumentGraphs returns every document's own graph keyed by its
// corpus-relative path.
func (s *Service) BuildDocumentGraphs(ctx context.Context, root string) (map[string]*builder.Graph, error) {
	paths, err := s.collector.Collect(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to collect documents: %w", err)
	}

	results, err := s.loadAll(ctx, root, paths, true)
	if err != nil {
		return nil, fmt.Errorf("failed to build document graphs: %w", err)
	}

	graphs := make(map[string]*builder.Graph, len(results))
	for _, r := range results {
		if r.err != nil {
			logger.Warn("Skipping unreadable document", zap.String("path", r.doc.Path), zap.Error(r.err))
			continue
		}
		acc := builder.NewAccumulator(s.relations)
		acc.Add(r.doc.RelPath, r.matches)
		graphs[r.doc.RelPath] = builder.Build(acc)
	}

	return graphs, nil
}

func (s *Service) fingerprint(root string, paths []string) string {
	if s.cache == nil {
		return ""
	}
	fp, err := ingestion.Fingerprint(s.fs, root, paths)
	if err != nil {
		logger.Warn("Failed to fingerprint corpus", zap.Error(err))
		return ""
	}
	return s.Policy() + ":" + fp
}

func (s *Service) cached(ctx context.Context, fingerprint string) *CorpusResult {
	if s.cache == nil || fingerprint == "" {
		return nil
	}

	var result CorpusResult
	found, err := s.cache.GetGraph(ctx, fingerprint, &result)
	if err != nil {
		logger.Warn("Graph cache lookup failed", zap.Error(err))
	}
	if !found || err != nil || result.Graph == nil {
		metrics.CacheMisses.WithLabelValues("graph").Inc()
		return nil
	}

	metrics.CacheHits.WithLabelValues("graph").Inc()
	logger.Debug("Corpus graph served from cache", zap.String("fingerprint", fingerprint))
	return &result
}

func (s *Service) store(ctx context.Context, fingerprint string, result *CorpusResult) {
	if s.cache == nil || fingerprint == "" {
		return
	}
	if err := s.cache.SetGraph(ctx, fingerprint, result); err != nil {
		logger.Warn("Failed to cache corpus graph", zap.Error(err))
	}
}

func (s *Service) record(root string, start time.Time, result *CorpusResult, cached bool) {
	if s.recorder == nil {
		return
	}

	run := &models.BuildRun{
		ID:          uuid.New().String(),
		Root:        root,
		Policy:      s.Policy(),
		Fingerprint: result.Fingerprint,
		Cached:      cached,
		StartedAt:   start,
		DurationMS:  time.Since(start).Milliseconds(),
		Documents:   result.Documents,
		Nodes:       len(result.Graph.Nodes),
		Links:       len(result.Graph.Links),
		Failures:    len(result.Failures),
	}
	for _, f := range result.Failures {
		run.FailedPaths = append(run.FailedPaths, f.Path)
	}

	if err := s.recorder.InsertBuildRun(run); err != nil {
		logger.Warn("Failed to record build run", zap.Error(err))
	}
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}
