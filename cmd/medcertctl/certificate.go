package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/models"
	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/qr"
	"github.com/bossygit/digital-medical-certificate-system/internal/certificate/signature"
	certstore "github.com/bossygit/digital-medical-certificate-system/internal/certificate/store"
	id "github.com/bossygit/digital-medical-certificate-system/pkg/domain"
)

func newSignCmd() *cobra.Command {
	var (
		fields   signature.Fields
		publicID string
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the digest binding a certificate's signed fields.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !signature.Representable(fields.FirstName) || !signature.Representable(fields.LastName) {
				return fmt.Errorf("names must not contain %q", signature.Delimiter)
			}
			pid, err := id.ParsePublicID(publicID)
			if err != nil {
				return err
			}
			dob, err := models.ParseDate(fields.DateOfBirth)
			if err != nil {
				return err
			}
			fields.DateOfBirth = dob.Format(models.DateLayout)
			fields.PublicID = pid.String()
			fmt.Fprintln(cmd.OutOrStdout(), signature.Compute(fields))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&fields.FirstName, "first", "", "applicant first name")
	flags.StringVar(&fields.LastName, "last", "", "applicant last name")
	flags.StringVar(&fields.DateOfBirth, "dob", "", "applicant date of birth (YYYY-MM-DD)")
	flags.BoolVar(&fields.IsFit, "fit", false, "fitness verdict")
	flags.StringVar(&publicID, "public-id", "", "certificate public identifier")
	for _, name := range []string{"first", "last", "dob", "public-id"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var publicID string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Recompute a stored certificate's digest.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pid, err := id.ParsePublicID(publicID)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			db, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			cert, err := certstore.NewPostgres(db).FindByPublicID(cmd.Context(), pid)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cert.HasValidSignature() {
				fmt.Fprintf(out, "%s: INVALID (stored digest does not match)\n", pid)
				return fmt.Errorf("certificate %s failed verification", pid)
			}
			fmt.Fprintf(out, "%s: valid, status %s, issued %s\n", pid, cert.Status, cert.IssueDate.Format(models.DateLayout))
			return nil
		},
	}
	cmd.Flags().StringVar(&publicID, "public-id", "", "certificate public identifier")
	_ = cmd.MarkFlagRequired("public-id")
	return cmd
}

func newQRCmd() *cobra.Command {
	var publicID, baseURL, out string
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Render the verification QR code as PNG.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pid, err := id.ParsePublicID(publicID)
			if err != nil {
				return err
			}
			encoder, err := qr.NewEncoder(baseURL)
			if err != nil {
				return err
			}
			png, err := encoder.PNG(pid)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", encoder.Payload(pid), out)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&publicID, "public-id", "", "certificate public identifier")
	flags.StringVar(&baseURL, "base-url", "http://localhost:8080/api/verify", "verification base URL")
	flags.StringVar(&out, "out", "certificate-qr.png", "output file")
	_ = cmd.MarkFlagRequired("public-id")
	return cmd
}
