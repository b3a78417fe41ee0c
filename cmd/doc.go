package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/omaradly/transmem/internal/document"
	"github.com/omaradly/transmem/internal/progress"
)

var (
	docFrom   string
	docTo     string
	docOutput string
)

var docCmd = &cobra.Command{
	Use:   "doc <file.md>",
	Short: "Translate a markdown document",
	Long:  `Translates the prose of a markdown document while preserving structure: code blocks, inline code, and links pass through untouched. All sentences share one document context for consistent terminology and tone.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if docTo == "" {
			return fmt.Errorf("--to is required")
		}

		source, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		a, err := buildApp(cfgFile)
		if err != nil {
			return err
		}
		defer a.Close()

		tr := document.New(a.resolver, a.docs, progress.NewReporter())
		out, err := tr.TranslateMarkdown(context.Background(), source, docFrom, docTo)
		if err != nil {
			return fmt.Errorf("translating %s: %w", args[0], err)
		}

		if docOutput == "" || docOutput == "-" {
			os.Stdout.Write(out)
			return nil
		}
		if err := os.WriteFile(docOutput, out, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", docOutput, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", docOutput)
		return nil
	},
}

func init() {
	docCmd.Flags().StringVar(&docFrom, "from", "auto", "source language code")
	docCmd.Flags().StringVar(&docTo, "to", "", "target language code (required)")
	docCmd.Flags().StringVarP(&docOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(docCmd)
}
