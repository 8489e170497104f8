// Package contextkeys holds the keys under which run metadata travels in a
// context.Context.
package contextkeys

// ContextKey is distinct from string so values cannot collide with keys set
// by other packages.
type ContextKey string

func (c ContextKey) String() string {
	return "rta-sync context key " + string(c)
}

const (
	// JobNameKey carries the descriptor name, e.g. "load:labs_json"
	JobNameKey = ContextKey("jobName")
	// RunIDKey identifies a single dispatch of a job
	RunIDKey     = ContextKey("runID")
	PartitionKey = ContextKey("partition")
	ComponentKey = ContextKey("component")
	// OperationKey carries load, purge or snapshot
	OperationKey = ContextKey("operation")
)
