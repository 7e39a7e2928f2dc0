package commands

import (
	"github.com/spf13/cobra"
)

func newUninstallCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove installed files and forget them",
		Long: `Delete every file agentsync installed, pruning the registry and the
ownership ledger. Files the user modified after install are kept unless
--force is given; files the user already deleted are simply forgotten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, renderer, err := newEnv(cmd, flags)
			if err != nil {
				return err
			}
			result, err := env.Uninstall()
			if err != nil {
				return err
			}
			return renderer.Result(result)
		},
	}
}
