package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/luminalang/lumina/internal/codegen/script"
	"github.com/luminalang/lumina/internal/compiler"
	"github.com/luminalang/lumina/internal/infer"
)

// newWatchCmd is intentionally thin: it polls mtime and re-runs `check`'s
// logic on change. A real editor integration belongs outside this binary,
// per spec.md §1's external-collaborator boundary.
func newWatchCmd(traceEnabled *bool) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Re-check a Lumina source file whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var lastMod time.Time

			runOnce := func() {
				cfg, err := loadProjectConfig()
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					return
				}
				src, err := os.ReadFile(path)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					return
				}
				prog, err := parseSource(path, src)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					return
				}
				inferOpts := infer.DefaultOptions()
				inferOpts.Wrappers = cfg.wrapperSet()
				ctx := compiler.CompileWithOptions(path, prog, compiler.ModeCheck, compiler.BackendScript, script.Options{}, inferOpts)

				runID := ""
				if *traceEnabled {
					runID = newRunID()
				}
				printDiagnostics(cmd.OutOrStdout(), path, ctx.Errors.Items(), runID)
				if !ctx.HasFatalErrors() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
				}
			}

			for {
				info, err := os.Stat(path)
				if err != nil {
					return err
				}
				if info.ModTime().After(lastMod) {
					lastMod = info.ModTime()
					runOnce()
				}
				time.Sleep(interval)
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "poll interval")
	return cmd
}
