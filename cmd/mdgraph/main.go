package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mdgraph/backend/internal/knowledge"
	"github.com/mdgraph/backend/pkg/config"
	"github.com/mdgraph/backend/pkg/logger"
)

var (
	rootDir        string
	policy         string
	vocabularyFile string
	workers        int
	partial        bool

	// fsys is swapped for an in-memory filesystem in tests.
	fsys = afero.NewOsFs()
)

var rootCmd = &cobra.Command{
	Use:   "mdgraph",
	Short: "Build knowledge graphs from a Markdown corpus",
	Long: `mdgraph extracts technical terms from Markdown documents and prints the
resulting co-occurrence graph as JSON.

Settings come from config.yaml and MDGRAPH_* environment variables; the
flags below override them.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "corpus root directory (default corpus.root)")
	rootCmd.PersistentFlags().StringVar(&policy, "policy", "", "term recognition policy: pattern or vocabulary")
	rootCmd.PersistentFlags().StringVar(&vocabularyFile, "vocabulary", "", "YAML vocabulary file for the vocabulary policy")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "documents processed in parallel (default extraction.workers)")
	rootCmd.PersistentFlags().BoolVar(&partial, "partial", false, "skip unreadable documents instead of failing the build")

	rootCmd.AddCommand(graphCmd, docCmd, listCmd, articlesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig applies the command-line overrides on top of config.Load.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Corpus.Root = rootDir
	}
	if flags.Changed("policy") {
		cfg.Extraction.Policy = policy
	}
	if flags.Changed("vocabulary") {
		cfg.Extraction.VocabularyFile = vocabularyFile
	}
	if flags.Changed("workers") {
		cfg.Extraction.Workers = workers
	}
	if flags.Changed("partial") {
		cfg.Extraction.FailFast = !partial
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newService(cmd *cobra.Command) (*knowledge.Service, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	// Logs go to stderr so stdout stays valid JSON.
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, "stderr"); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	service, err := knowledge.NewFromConfig(fsys, cfg, nil, nil)
	if err != nil {
		return nil, nil, err
	}
	return service, cfg, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
