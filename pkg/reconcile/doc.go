// Package reconcile implements the migration reconciliation engine: a pure
// planner that three-way diffs current source items, the installation
// registry, and live target state into a conflict-aware action plan, and an
// executor that applies such a plan under strict safety rules (validation
// before side effects, writes before deletes, no silent clobber of user
// edits, no resurrection of user-deleted targets).
package reconcile
