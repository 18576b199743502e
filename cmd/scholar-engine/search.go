// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-engine/internal/artifact"
	"github.com/pdiddy/scholar-engine/internal/engine"
	"github.com/pdiddy/scholar-engine/internal/extract"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Rank the corpus against a query",
	Long: `Search ranks the paper corpus against a free-text query using one of
four methods:

  bm25      raw lexical relevance
  bert      dense semantic similarity over the lexical candidates
  pagerank  lexical relevance mixed with citation authority
  hybrid    all three signals fused (default)

The bert and hybrid methods need an embedding endpoint; configure
embedding.base_url or use bm25/pagerank offline. With --file the query is
taken from the opening words of a .txt or .md document instead of the
command line.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := serviceConfig()
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.Artifacts.DataDir = dataDir
	}

	query, err := searchQuery(cmd, args, cfg.Engine.MaxQueryChars)
	if err != nil {
		return err
	}

	methodFlag, _ := cmd.Flags().GetString("method")
	method, err := types.ParseMethod(methodFlag)
	if err != nil {
		return err
	}

	topK, _ := cmd.Flags().GetInt("top-k")
	if topK <= 0 {
		topK = cfg.Engine.DefaultTopK
	}

	logger := newLogger()

	store := artifact.Open(cfg.Artifacts.DataDir)
	defer store.Close()

	embedder, err := buildEmbedder(cfg.Embedding, store, logger)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg.Engine, store, embedder, engine.WithLogger(logger))
	if err != nil {
		return err
	}
	defer eng.Close()

	resp, err := eng.Search(cmd.Context(), query, method, topK)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return formatSearchJSON(resp, os.Stdout)
	}
	formatSearchTable(resp, os.Stdout)
	return nil
}

// searchQuery resolves the query text from --file or positional args.
func searchQuery(cmd *cobra.Command, args []string, maxChars int) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return "", err
		}
		defer f.Close()

		text, err := extract.Text(file, f, maxChars)
		if err != nil {
			return "", err
		}
		return engine.FirstWords(text, 100), nil
	}

	if len(args) == 0 {
		return "", fmt.Errorf("query required: pass it as an argument or use --file")
	}
	return strings.Join(args, " "), nil
}

// formatSearchTable writes results as a human-readable table to w.
func formatSearchTable(resp types.SearchResponse, w io.Writer) {
	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-6s  %-60s  %-7s  %s\n",
		"Rank", "ID", "Title", "Score", "Link")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, r := range resp.Results {
		title := r.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Fprintf(w, "%-4d  %-6d  %-60s  %-7.4f  %s\n",
			i+1, r.ID, title, r.Score, r.Link)
	}

	fmt.Fprintf(w, "\n%d results (%s)\n", len(resp.Results), resp.Method)
}

// formatSearchJSON writes the full response as indented JSON to w.
func formatSearchJSON(resp types.SearchResponse, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func init() {
	searchCmd.Flags().String("method", string(types.MethodHybrid), "ranking method: bm25, bert, pagerank, or hybrid")
	searchCmd.Flags().Int("top-k", 0, "number of results (0 = config default)")
	searchCmd.Flags().String("file", "", "derive the query from a .txt or .md document")
	searchCmd.Flags().String("data-dir", "", "artifact directory (default from config, \"data\")")
	searchCmd.Flags().Bool("json", false, "output the full response as JSON")

	rootCmd.AddCommand(searchCmd)
}
