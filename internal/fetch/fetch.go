// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads the precomputed artifact bundle into the data
// directory. It is deploy-time tooling around the engine: nothing here is
// consulted at query time, and the engine itself never triggers a
// download.
//
// See docs/ARCHITECTURE § Artifact Acquisition.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/pdiddy/scholar-engine/internal/artifact"
	"github.com/pdiddy/scholar-engine/internal/httputil"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

// Files lists the artifact bundle contents in download order.
var Files = []string{
	artifact.PapersFile,
	artifact.LexicalFile,
	artifact.VectorsMetaFile,
	artifact.VectorsFile,
	artifact.AuthorityFile,
}

// BatchResult holds the outcome of one fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed to download.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchAll downloads every bundle file from cfg.BaseURL into dataDir,
// skipping files already present. Progress lines go to w. Individual
// failures are reported and counted rather than aborting the batch, so a
// partially-fetched bundle can be completed by a later run.
func FetchAll(ctx context.Context, client *http.Client, cfg types.FetchConfig, dataDir string, w io.Writer) (BatchResult, error) {
	if cfg.BaseURL == "" {
		return BatchResult{}, fmt.Errorf("fetch base_url is not configured")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating data directory: %w", err)
	}

	var result BatchResult
	for _, name := range Files {
		dest := filepath.Join(dataDir, name)
		if _, err := os.Stat(dest); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", name)
			result.Skipped++
			continue
		}

		fmt.Fprintf(w, "downloading: %s\n", name)
		if err := fetchFile(ctx, client, cfg, name, dest); err != nil {
			fmt.Fprintf(w, "  failed: %s: %v\n", name, err)
			result.Failed++
			continue
		}
		result.Downloaded++
	}
	return result, nil
}

// fetchFile downloads one file to a temp path and renames on success, so
// an interrupted download never leaves a truncated artifact behind.
func fetchFile(ctx context.Context, client *http.Client, cfg types.FetchConfig, name, dest string) error {
	src, err := url.JoinPath(cfg.BaseURL, name)
	if err != nil {
		return fmt.Errorf("building URL for %s: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, src)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+name+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}

	return os.Rename(tmp.Name(), dest)
}
