package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ugorjiizu/globus-assessment/internal/config"
	"github.com/ugorjiizu/globus-assessment/internal/knowledge"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect the knowledge index chunking",
	Long: `Chunks the product document exactly as the server does at startup
and prints the resulting chunks. The index itself is in-memory and is
rebuilt on every serve, so this command is a dry run for corpus edits:
run it after changing the product document to see what retrieval will
work with.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndex(cmd)
	},
}

var indexVerbose bool

func init() {
	indexCmd.Flags().BoolVarP(&indexVerbose, "verbose", "v", false, "print full chunk text")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	data, err := os.ReadFile(cfg.ProductsPath)
	if err != nil {
		return fmt.Errorf("reading product document: %w", err)
	}

	chunks := knowledge.SplitChunks(knowledge.Normalize(string(data)), cfg.ChunkSize)
	if len(chunks) == 0 {
		return fmt.Errorf("no indexable chunks in %s", cfg.ProductsPath)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d chunks (target size %d chars)\n\n", cfg.ProductsPath, len(chunks), cfg.ChunkSize)
	for _, c := range chunks {
		fmt.Fprintf(out, "%s  %4d chars  %s\n", c.ID, len(c.Text), c.Section)
		if indexVerbose {
			fmt.Fprintf(out, "%s\n\n", c.Text)
		}
	}
	return nil
}
