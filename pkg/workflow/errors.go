package workflow

import "fmt"

// DuplicateNameError is returned when a workflow is registered under a name
// that is already taken.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("multiple workflows with name %q", e.Name)
}

// MissingFileError is returned when a workflow references a snakefile or
// snakeparse file that does not exist on disk.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("file does not exist: %s", e.Path)
}

// UnknownTransformError is returned for a name-transform key that is not one
// of the built-in transforms.
type UnknownTransformError struct {
	Key string
}

func (e *UnknownTransformError) Error() string {
	return fmt.Sprintf("unknown name_transform: %q", e.Key)
}
