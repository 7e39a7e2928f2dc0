package commands

import (
	"github.com/spf13/cobra"
)

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show ownership of every tracked file",
		Long: `Classify each file the engine has written: engine (untouched since
install), engine-modified (edited afterwards) or removed (deleted by the
user).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, renderer, err := newEnv(cmd, flags)
			if err != nil {
				return err
			}
			rows, err := env.Status()
			if err != nil {
				return err
			}
			return renderer.Status(rows)
		},
	}
}
