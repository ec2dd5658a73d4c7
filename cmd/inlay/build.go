package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"inlay/pkg/driver"
	inlayerrors "inlay/pkg/errors"
	"inlay/pkg/modules"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [entry]",
	Short: "Rewrite a module graph with its inline and pure hints applied",
	Long: "Build inlines hinted function bodies at their call sites and hoists\n" +
		"repeated pure calls, module by module, suppliers before consumers.\n" +
		"The entry comes from the command line or from [build].entry in\n" +
		"inlay.toml.",
	Args: cobra.MaximumNArgs(1),
	RunE: buildExecution,
}

func init() {
	buildCmd.Flags().String("out-dir", "", "write rewritten modules under this directory")
	buildCmd.Flags().Uint("jobs", 0, "modules to parse concurrently (0 = one per CPU)")
	buildCmd.Flags().Bool("no-cache", false, "rewrite every module even when cached output exists")
	buildCmd.Flags().Bool("stdout", false, "print the entry module instead of writing files")
}

func buildExecution(cmd *cobra.Command, args []string) error {
	if err := applyColorFlag(cmd); err != nil {
		return err
	}
	outDirFlag, err := cmd.Flags().GetString("out-dir")
	if err != nil {
		return err
	}
	jobsValue, err := cmd.Flags().GetUint("jobs")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	toStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}
	if toStdout && outDirFlag != "" {
		return fmt.Errorf("--stdout and --out-dir are mutually exclusive")
	}
	jobs, err := safecast.Conv[int](jobsValue)
	if err != nil {
		return fmt.Errorf("--jobs value out of range: %w", err)
	}

	setup, err := loadBuildSetup(args)
	if err != nil {
		return err
	}
	session, err := newSession(setup, jobs)
	if err != nil {
		return err
	}
	if store := openStore(cmd, setup, noCache); store != nil {
		session.SetCache(store, markerFingerprint(setup.cfg))
	}

	result, err := session.Build(setup.entry)
	if err != nil {
		return err
	}
	if diags := result.Diags(); len(diags) > 0 {
		inlayerrors.DisplayErrors(cmd.ErrOrStderr(), diags)
	}
	if len(result.Cyclic) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: inline dependency cycle: %s\n", strings.Join(result.Cyclic, " -> "))
	}

	if toStdout {
		entry := result.Record(result.Entry)
		if entry == nil || entry.State != modules.ModuleTransformed {
			return fmt.Errorf("entry module %s failed to transform", result.Entry)
		}
		fmt.Fprint(cmd.OutOrStdout(), entry.Output)
		if result.Failed() {
			return fmt.Errorf("build finished with errors")
		}
		return nil
	}

	outDir := outDirFlag
	if outDir == "" {
		outDir = setup.cfg.Build.OutDir
		if !filepath.IsAbs(outDir) {
			outDir = filepath.Join(setup.baseDir, outDir)
		}
	}
	if err := session.WriteOutputs(result, outDir); err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), result)
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d modules to %s\n", writtenCount(result), outDir)
	if result.Failed() {
		return fmt.Errorf("build finished with errors")
	}
	return nil
}

func printSummary(w io.Writer, result *driver.Result) {
	for _, rec := range result.Records {
		switch {
		case rec.State == modules.ModuleFailed:
			fmt.Fprintf(w, "  %-24s failed\n", rec.ResolvedPath)
		case rec.Cached:
			fmt.Fprintf(w, "  %-24s cached\n", rec.ResolvedPath)
		default:
			fmt.Fprintf(w, "  %-24s %d inlined, %d hoisted\n", rec.ResolvedPath, len(rec.Expansions), len(rec.Merges))
		}
	}
}

func writtenCount(result *driver.Result) int {
	n := 0
	for _, rec := range result.Records {
		if rec.State == modules.ModuleTransformed {
			n++
		}
	}
	return n
}
