// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-engine/internal/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the precomputed artifact bundle",
	Long: `Fetch downloads the artifact bundle (paper table, lexical index, vector
table, authority scores) from the configured release location into the data
directory. Files already present are skipped, so an interrupted run can be
resumed by running fetch again.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := serviceConfig()
	if baseURL, _ := cmd.Flags().GetString("base-url"); baseURL != "" {
		cfg.Fetch.BaseURL = baseURL
	}
	dataDir := cfg.Artifacts.DataDir
	if flagDir, _ := cmd.Flags().GetString("data-dir"); flagDir != "" {
		dataDir = flagDir
	}

	client := &http.Client{Timeout: httpTimeout(cfg.Fetch.Timeout)}

	result, err := fetch.FetchAll(cmd.Context(), client, cfg.Fetch, dataDir, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("\n%d downloaded, %d skipped, %d failed\n",
		result.Downloaded, result.Skipped, result.Failed)
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed to download", result.Failed)
	}
	return nil
}

func init() {
	fetchCmd.Flags().String("base-url", "", "bundle location (default from config)")
	fetchCmd.Flags().String("data-dir", "", "artifact directory (default from config, \"data\")")

	rootCmd.AddCommand(fetchCmd)
}
