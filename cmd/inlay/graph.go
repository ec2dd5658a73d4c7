package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	inlayerrors "inlay/pkg/errors"
)

var graphCmd = &cobra.Command{
	Use:   "graph [flags] [entry]",
	Short: "Show the transform order without rewriting anything",
	Long: "Graph parses the module graph, prints every module in the order the\n" +
		"build would transform it, and names the inline suppliers each module\n" +
		"waits on.",
	Args: cobra.MaximumNArgs(1),
	RunE: graphExecution,
}

func graphExecution(cmd *cobra.Command, args []string) error {
	if err := applyColorFlag(cmd); err != nil {
		return err
	}
	setup, err := loadBuildSetup(args)
	if err != nil {
		return err
	}
	session, err := newSession(setup, 0)
	if err != nil {
		return err
	}
	result, err := session.Analyze(setup.entry)
	if err != nil {
		return err
	}
	if diags := result.Diags(); len(diags) > 0 {
		inlayerrors.DisplayErrors(cmd.ErrOrStderr(), diags)
	}

	w := cmd.OutOrStdout()
	for _, path := range result.Order {
		if sups := result.Suppliers[path]; len(sups) > 0 {
			fmt.Fprintf(w, "%s <- %s\n", path, strings.Join(sups, ", "))
		} else {
			fmt.Fprintln(w, path)
		}
	}
	if len(result.Cyclic) > 0 {
		fmt.Fprintf(w, "cycle: %s\n", strings.Join(result.Cyclic, " -> "))
	}
	if result.Failed() {
		return fmt.Errorf("graph finished with errors")
	}
	return nil
}
