package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command; subcommands attach themselves in their init funcs.
var rootCmd = &cobra.Command{
	Use:   "apiserver",
	Short: "Resume analyzer API server",
	Long:  `Backend for the resume analyzer platform: auth, jobs, resumes, applications.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
