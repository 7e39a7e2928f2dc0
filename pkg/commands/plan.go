package commands

import "github.com/agentsync-dev/agentsync/pkg/reconcile"

// Plan runs a read-only reconcile pass and returns the resulting plan.
// Nothing on disk changes.
func (e *Env) Plan() (*reconcile.Plan, error) {
	ctx, err := e.buildPlan()
	if err != nil {
		return nil, err
	}
	return ctx.plan, nil
}
