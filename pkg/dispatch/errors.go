package dispatch

import "fmt"

// EmptyRegistryError is returned when dispatch is attempted with no
// workflows registered at all.
type EmptyRegistryError struct{}

func (e *EmptyRegistryError) Error() string {
	return "no workflows found"
}

// NoWorkflowSpecifiedError is returned when no token in the stream names a
// registered workflow.
type NoWorkflowSpecifiedError struct{}

func (e *NoWorkflowSpecifiedError) Error() string {
	return "no workflow given"
}

// WorkflowNotFoundError is returned when a workflow was registered from an
// explicit snakefile option but its derived name does not occur as a literal
// token in the stream, so the token ranges cannot be computed.
type WorkflowNotFoundError struct {
	Name string
}

func (e *WorkflowNotFoundError) Error() string {
	return fmt.Sprintf("workflow %q not found in the argument list", e.Name)
}
