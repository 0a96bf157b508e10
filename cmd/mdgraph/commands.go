package main

import (
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the graph of the whole corpus",
	Long: `Print the co-occurrence graph built from every document under the corpus root.

Examples:
  mdgraph graph --root ./docs
  mdgraph graph --root ./docs --policy vocabulary --vocabulary terms.yaml
  mdgraph graph --detail          # include document count and failures`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		detail, _ := cmd.Flags().GetBool("detail")

		service, cfg, err := newService(cmd)
		if err != nil {
			return err
		}

		result, err := service.BuildCorpusGraph(cmd.Context(), cfg.Corpus.Root)
		if err != nil {
			return err
		}

		if detail {
			return printJSON(cmd.OutOrStdout(), result)
		}
		return printJSON(cmd.OutOrStdout(), result.Graph)
	},
}

var docCmd = &cobra.Command{
	Use:   "doc <path>",
	Short: "Print the graph of a single document",
	Long: `Print the graph of one Markdown file. A path that does not name a readable
Markdown file prints an empty graph.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _, err := newService(cmd)
		if err != nil {
			return err
		}

		graph, err := service.BuildDocumentGraph(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), graph)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List corpus documents relative to the root",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cfg, err := newService(cmd)
		if err != nil {
			return err
		}

		docs, err := service.ListDocuments(cmd.Context(), cfg.Corpus.Root)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), docs)
	},
}

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "List document metadata taken from front matter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, cfg, err := newService(cmd)
		if err != nil {
			return err
		}

		articles, err := service.ListArticles(cmd.Context(), cfg.Corpus.Root)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), articles)
	},
}

func init() {
	graphCmd.Flags().Bool("detail", false, "print document count, failures and fingerprint with the graph")
}
