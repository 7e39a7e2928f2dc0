package commands

import (
	"github.com/spf13/cobra"
)

func newApplyCmd(flags *rootFlags) *cobra.Command {
	var resolutions []string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Plan and execute a sync",
		Long: `Build the action plan and execute it. Conflicts must be settled up
front with --resolve (or --force to overwrite everything); a plan with an
unresolved conflict is rejected before any file is touched.

Resolution keys use the form printed by plan, for example:

  agentsync apply --resolve 'claude/rules/docker@project=keep'
  agentsync apply --resolve 'claude/config/config@project=smart-merge'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, renderer, err := newEnv(cmd, flags)
			if err != nil {
				return err
			}
			result, err := env.Apply(resolutions)
			if err != nil {
				return err
			}
			return renderer.Result(result)
		},
	}
	cmd.Flags().StringArrayVar(&resolutions, "resolve", nil,
		"Conflict resolution as key=strategy (overwrite, keep, smart-merge); repeatable")
	return cmd
}
