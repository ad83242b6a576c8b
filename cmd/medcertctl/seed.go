package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	adminservice "github.com/bossygit/digital-medical-certificate-system/internal/admin/service"
	userstore "github.com/bossygit/digital-medical-certificate-system/internal/auth/store/user"
)

func newSeedAdminCmd() *cobra.Command {
	var seed adminservice.SeedAdminCommand
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the initial DGTT administrator if absent.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			user, created, err := adminservice.SeedAdmin(cmd.Context(), userstore.NewPostgres(db), seed, time.Now().UTC())
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", user.Email, user.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists\n", user.Email)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&seed.Email, "email", "", "admin email")
	flags.StringVar(&seed.Password, "password", "", "admin password")
	flags.StringVar(&seed.FirstName, "first", "DGTT", "admin first name")
	flags.StringVar(&seed.LastName, "last", "Administrator", "admin last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
