package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/omaradly/transmem/internal/translation"
)

var (
	translateFrom    string
	translateTo      string
	translateContext string
)

var translateCmd = &cobra.Command{
	Use:   "translate [text...]",
	Short: "Translate text through the pipeline",
	Long:  `Resolves one translation through the layered pipeline and prints the result with its provenance. The result is remembered for next time.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if translateTo == "" {
			return fmt.Errorf("--to is required")
		}

		a, err := buildApp(cfgFile)
		if err != nil {
			return err
		}
		defer a.Close()

		result := a.resolver.Translate(context.Background(), &translation.Request{
			ID:         uuid.NewString(),
			Text:       strings.Join(args, " "),
			SourceLang: translateFrom,
			TargetLang: translateTo,
			Context:    translateContext,
		})

		if !result.Success {
			return fmt.Errorf("%s: %s", result.ErrorKind, result.ErrorMessage)
		}

		fmt.Println(result.Text)
		if verbose {
			fmt.Printf("provenance=%s confidence=%.2f", result.Provenance, result.Confidence)
			if result.DetectedLang != "" {
				fmt.Printf(" detected=%s", result.DetectedLang)
			}
			fmt.Println()
			for _, adj := range result.Adjustments {
				fmt.Printf("adjustment %s: %q -> %q\n", adj.Type, adj.Original, adj.Adjusted)
			}
		}
		return nil
	},
}

func init() {
	translateCmd.Flags().StringVar(&translateFrom, "from", "auto", "source language code")
	translateCmd.Flags().StringVar(&translateTo, "to", "", "target language code (required)")
	translateCmd.Flags().StringVar(&translateContext, "context", "", "disambiguation excerpt")
	rootCmd.AddCommand(translateCmd)
}
