// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-engine/internal/artifact"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report artifact bundle state",
	Long: `Status reports which artifact files are present in the data directory
and, when the paper table is readable, the corpus size. Use it after fetch
to confirm the bundle is complete.`,
	RunE: runStatus,
}

// statusReport is the machine-readable status layout.
type statusReport struct {
	DataDir    string                     `yaml:"data_dir" json:"data_dir"`
	Ready      bool                       `yaml:"ready" json:"ready"`
	PaperCount int                        `yaml:"paper_count,omitempty" json:"paper_count,omitempty"`
	Artifacts  map[string]artifact.Status `yaml:"artifacts" json:"artifacts"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := serviceConfig()
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.Artifacts.DataDir = dataDir
	}

	store := artifact.Open(cfg.Artifacts.DataDir)
	defer store.Close()

	report := statusReport{
		DataDir:   cfg.Artifacts.DataDir,
		Ready:     store.Ready(),
		Artifacts: store.Status(),
	}
	if n, err := store.PaperCount(cmd.Context()); err == nil {
		report.PaperCount = n
	}

	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	if yamlOutput {
		return yaml.NewEncoder(os.Stdout).Encode(report)
	}

	fmt.Printf("Data directory: %s\n", report.DataDir)
	for _, name := range []string{artifact.NamePapers, artifact.NameLexical, artifact.NameVectors, artifact.NameAuthority} {
		st := report.Artifacts[name]
		mark := "missing"
		if st.Present {
			mark = "present"
		}
		fmt.Printf("  %-10s %s\n", name, mark)
	}
	if report.PaperCount > 0 {
		fmt.Printf("Papers: %d\n", report.PaperCount)
	}
	if report.Ready {
		fmt.Println("Bundle complete.")
	} else {
		fmt.Println("Bundle incomplete: run \"scholar-engine fetch\".")
	}
	return nil
}

func init() {
	statusCmd.Flags().Bool("yaml", false, "output status as YAML")
	statusCmd.Flags().String("data-dir", "", "artifact directory (default from config, \"data\")")

	rootCmd.AddCommand(statusCmd)
}
