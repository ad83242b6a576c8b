package main

import (
	"os"

	"github.com/spf13/cobra"
)

// newRootCmd describes the operator tool and defaults to printing help.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "medcertctl",
		Short: "Operate the medical certificate service.",
	}
	root.AddCommand(
		newMigrateCmd(),
		newSignCmd(),
		newVerifyCmd(),
		newQRCmd(),
		newSeedAdminCmd(),
		newGenKeyCmd(),
	)
	return root
}

func main() {
	// cobra already prints the error and usage
	if newRootCmd().Execute() != nil {
		os.Exit(1)
	}
}
