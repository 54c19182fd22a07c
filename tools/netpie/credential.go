package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCredentialCommand(a *app) *cobra.Command {
	credentialCmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the device credential",
	}
	credentialCmd.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Check that NETPIE accepts the configured credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.executor.TestCredential(cmd.Context(), a.config.Credential); err != nil {
				return fmt.Errorf("credential %s was rejected: %w", a.config.Credential, err)
			}
			_, err := fmt.Fprintf(a.out, "credential %s is valid\n", a.config.Credential)
			return err
		},
	})
	return credentialCmd
}
