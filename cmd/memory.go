package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/omaradly/transmem/internal/memory"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and maintain the translation memory",
}

var memoryExportCmd = &cobra.Command{
	Use:   "export [file.json]",
	Short: "Export the translation memory as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cfgFile)
		if err != nil {
			return err
		}
		defer a.Close()

		dump, err := a.memory.Export(context.Background())
		if err != nil {
			return fmt.Errorf("exporting memory: %w", err)
		}

		out := os.Stdout
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[0], err)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dump); err != nil {
			return fmt.Errorf("writing dump: %w", err)
		}
		if len(args) == 1 {
			fmt.Fprintf(os.Stderr, "Exported %d entries to %s\n", len(dump.Entries), args[0])
		}
		return nil
	},
}

var memoryImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Merge a memory dump into the local memory",
	Long:  `Merges an exported dump into the local translation memory. Entries are matched by content address; usage counts and confidence take the higher of the two sides, so importing never loses local learning.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		var dump memory.Dump
		if err := json.Unmarshal(data, &dump); err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}

		a, err := buildApp(cfgFile)
		if err != nil {
			return err
		}
		defer a.Close()

		imported, err := a.memory.Import(context.Background(), &dump)
		if err != nil {
			return fmt.Errorf("importing memory: %w", err)
		}

		fmt.Fprintf(os.Stderr, "Imported %d entries\n", imported)
		return nil
	},
}

var memorySweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Purge old, rarely used memory entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cfgFile)
		if err != nil {
			return err
		}
		defer a.Close()

		cutoff := time.Now().AddDate(0, 0, -a.cfg.Memory.RetentionDays)
		n, err := a.memory.Sweep(context.Background(), cutoff, a.cfg.Memory.SweepMinUseCount)
		if err != nil {
			return fmt.Errorf("sweeping memory: %w", err)
		}

		fmt.Fprintf(os.Stderr, "Purged %d entries older than %s with fewer than %d uses\n",
			n, cutoff.Format("2006-01-02"), a.cfg.Memory.SweepMinUseCount)
		return nil
	},
}

func init() {
	memoryCmd.AddCommand(memoryExportCmd)
	memoryCmd.AddCommand(memoryImportCmd)
	memoryCmd.AddCommand(memorySweepCmd)
	rootCmd.AddCommand(memoryCmd)
}
