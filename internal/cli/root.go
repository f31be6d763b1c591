// Package cli holds the contract-admin commands.
package cli

import (
	"contract-admin/config"
	"contract-admin/log"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	conf       *config.Conf
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "contract-admin",
		Short:         "Admin panel for a single smart contract",
		Long:          "Generates invocation forms from a contract ABI and sends the calls through an operator wallet.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			if err := log.Init(conf.Log); err != nil {
				return err
			}
			opts.conf = conf
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Sync()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultPath, "path to the toml config")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewFormsCommand(opts))
	cmd.AddCommand(NewCallCommand(opts))
	cmd.AddCommand(NewPasswdCommand())

	return cmd
}
