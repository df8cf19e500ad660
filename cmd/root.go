package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "medreminder",
	Short: "Medicine reminder API server",
	Long: `medreminder serves a JSON API where users register, log in and keep
a schedule of medicine reminders. Usage:

	medreminder serve
	medreminder migrate
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
