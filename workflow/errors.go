package workflow

import "fmt"

// ValidationError reports a transition request that failed validation before
// any persistence was attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PermissionError reports a caller whose role is not allowed to mutate lab
// script status. No writes are performed.
type PermissionError struct {
	Role string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("role %q is not permitted to change lab script status", e.Role)
}

// PersistenceError wraps a storage failure. The in-memory script the caller
// passed in is left at its pre-transition value.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
