package cli

import (
	"fmt"

	"contract-admin/utils"

	"github.com/spf13/cobra"
)

// NewPasswdCommand prints the bcrypt hash for default_admin.password.
func NewPasswdCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <password>",
		Short: "Print the bcrypt hash of an admin password",
		Args:  cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := utils.HashPassword(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}
