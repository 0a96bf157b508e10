package knowledge

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/mdgraph/backend/internal/kg/terms"
	"github.com/mdgraph/backend/pkg/config"
)

// NewFromConfig wires a Service from the extraction and corpus settings.
// cache and recorder may be nil.
func NewFromConfig(fsys afero.Fs, cfg *config.Config, cache GraphCache, recorder RunRecorder) (*Service, error) {
	var vocab terms.Vocabulary
	if cfg.Extraction.VocabularyFile != "" {
		loaded, err := terms.LoadVocabulary(fsys, cfg.Extraction.VocabularyFile)
		if err != nil {
			return nil, err
		}
		vocab = loaded
	}

	recognizer, err := terms.NewRecognizer(cfg.Extraction.Policy, vocab)
	if err != nil {
		return nil, fmt.Errorf("failed to create recognizer: %w", err)
	}

	return NewService(fsys, recognizer, Options{
		Extension: cfg.Corpus.Extension,
		Workers:   cfg.Extraction.Workers,
		FailFast:  cfg.Extraction.FailFast,
		Cache:     cache,
		Recorder:  recorder,
	}), nil
}
