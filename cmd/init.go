package cmd

import (
	"github.com/spf13/cobra"

	"github.com/omaradly/transmem/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize transmem configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure transmem and generates a .transmem.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
