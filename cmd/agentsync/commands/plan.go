package commands

import (
	"errors"

	"github.com/spf13/cobra"
)

// ErrConflictsPresent signals main to exit with status 2 so scripts can
// tell "conflicts found" apart from a failed run.
var ErrConflictsPresent = errors.New("plan has unresolved conflicts")

func newPlanCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Preview what a sync would do",
		Long: `Discover the source items, compare them against the installation
registry and the live target files, and print the resulting action plan.
Nothing on disk changes. Exits with status 2 when conflicts are present.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, renderer, err := newEnv(cmd, flags)
			if err != nil {
				return err
			}
			plan, err := env.Plan()
			if err != nil {
				return err
			}
			if err := renderer.Plan(plan); err != nil {
				return err
			}
			if plan.HasConflicts {
				return ErrConflictsPresent
			}
			return nil
		},
	}
}
