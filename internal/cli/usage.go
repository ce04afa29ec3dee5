package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/nh13/snakeparse/pkg/parser"
	"github.com/nh13/snakeparse/pkg/workflow"
)

// Fixed usage layout; terminal-width awareness is deliberately not part of
// this tool.
const (
	groupNameColumns    = 38
	groupDescColumns    = 42
	workflowNameColumns = groupNameColumns - 3
	usageLine           = "------------------------------------------------------------"
)

// usageRenderer writes the combined usage message: the one-line usage, the
// router's own flag help, and the registered workflows grouped for display.
// Help text appears only when the router decides to render it, exactly once
// per failure.
type usageRenderer struct {
	out       io.Writer
	prog      string
	flagUsage string
	registry  *workflow.Registry
	extraHelp bool
}

func usageShort(prog, workflowName string) string {
	if workflowName == "" {
		workflowName = "[workflow name]"
	}
	return fmt.Sprintf("%s [snakeparse options] [snakemake options] %s [workflow options]", prog, workflowName)
}

func (u *usageRenderer) render(message string) {
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(u.out, "Usage: %s\n", usageShort(u.prog, ""))
	fmt.Fprintf(u.out, "Version: %s\n\n", Version)

	fmt.Fprintf(u.out, "Optional options:\n%s\n", u.flagUsage)

	if u.registry == nil || u.registry.Len() == 0 {
		fmt.Fprintf(u.out, "No workflows configured.\n%s\n", usageLine)
	} else {
		fmt.Fprintf(u.out, "%s\n%s\n", bold("Available Workflows:"), usageLine)
		u.renderWorkflows()
	}

	if message != "" {
		fmt.Fprintf(u.out, "\n%s\n", message)
	}
}

func (u *usageRenderer) renderWorkflows() {
	groups := u.registry.GroupNames()
	if hasUngrouped(u.registry) {
		groups = append([]string{""}, groups...)
	}
	for _, group := range groups {
		header := group
		if header == "" {
			header = "Workflows"
		}
		fmt.Fprintf(u.out, "%-*s%-*s\n",
			groupNameColumns, header+":",
			groupDescColumns, u.registry.GroupDescription(group))
		for _, wf := range u.registry.All() {
			if wf.Group != group {
				continue
			}
			description := wf.Description
			if description == "" {
				description = wf.Snakefile
			}
			// Pad before colorizing; the escape bytes would count
			// against the field width.
			name := fmt.Sprintf("%-*s", workflowNameColumns, wf.Name)
			fmt.Fprintf(u.out, "    %s%s\n", color.CyanString(name), description)
			if u.extraHelp {
				fmt.Fprintf(u.out, "        snakefile:  %s\n", wf.Snakefile)
				fmt.Fprintf(u.out, "        snakeparse: %s\n", wf.Snakeparse)
			}
		}
		fmt.Fprintln(u.out, usageLine)
	}
}

// renderWorkflowHelp writes the combined usage followed by the selected
// workflow's own help and, for validation failures, the error.
func (u *usageRenderer) renderWorkflowHelp(wf *workflow.Workflow, p parser.Parser, message string) {
	u.render("")
	fmt.Fprintf(u.out, "\n%s Arguments:\n%s\n\n", wf.Name, usageLine)
	fmt.Fprint(u.out, p.Help())
	if message != "" {
		fmt.Fprintf(u.out, "\nerror: %s\n", message)
	}
}

func hasUngrouped(reg *workflow.Registry) bool {
	for _, wf := range reg.All() {
		if wf.Group == "" {
			return true
		}
	}
	return false
}
