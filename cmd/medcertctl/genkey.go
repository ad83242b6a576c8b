package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bossygit/digital-medical-certificate-system/pkg/secrets"
)

func newGenKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-key",
		Short: "Print a random value for JWT_SIGNING_KEY.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := secrets.Generate()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}
