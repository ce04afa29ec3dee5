package workflow

import "os"

// Workflow holds the command line metadata for one runnable Snakemake
// workflow: the name displayed (and matched) on the command line, the path to
// its snakefile, the path to its snakeparse file, and optional display-only
// group and description.
type Workflow struct {
	Name        string
	Snakefile   string
	Snakeparse  string
	Group       string
	Description string
}

// CheckFiles verifies that the snakefile and snakeparse file exist.
func (w *Workflow) CheckFiles() error {
	if _, err := os.Stat(w.Snakefile); err != nil {
		return &MissingFileError{Path: w.Snakefile}
	}
	if _, err := os.Stat(w.Snakeparse); err != nil {
		return &MissingFileError{Path: w.Snakeparse}
	}
	return nil
}
