package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "transmem",
	Short: "Personal translation memory with layered resolution",
	Long: `Transmem is a local translation daemon. Every translation you make
teaches it: results are stored in a content-addressed memory that is
consulted before the network, adjusted for document context, and backed
by an offline dictionary chain so you always get an answer.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".transmem.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
