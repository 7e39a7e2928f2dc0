// Package types defines the shared data model for agentsync: item and
// provider identifiers, source and target state snapshots, and the small
// interfaces that decouple the reconciliation engine from its collaborators.
package types
