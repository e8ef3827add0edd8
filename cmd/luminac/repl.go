package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luminalang/lumina/internal/codegen/script"
	"github.com/luminalang/lumina/internal/compiler"
	"github.com/luminalang/lumina/internal/infer"
)

// newReplCmd is intentionally thin: one line in, one checked/compiled
// snippet out. A stateful incremental session (retained bindings across
// lines) is an external-collaborator concern per spec.md §1, not this
// binary's.
func newReplCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Read-eval-print a Lumina snippet per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProjectConfig()
			if err != nil {
				return err
			}
			inferOpts := infer.DefaultOptions()
			inferOpts.Wrappers = cfg.wrapperSet()

			in := bufio.NewScanner(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			fmt.Fprint(out, "lumina> ")
			for in.Scan() {
				line := in.Text()
				prog, err := parseSource("<repl>", []byte(line))
				if err != nil {
					fmt.Fprintln(out, err)
					fmt.Fprint(out, "lumina> ")
					continue
				}
				ctx := compiler.CompileWithOptions("<repl>", prog, compiler.ModeCompile, compiler.BackendScript, script.Options{}, inferOpts)
				printDiagnostics(out, "<repl>", ctx.Errors.Items(), "")
				if !ctx.HasFatalErrors() && ctx.ScriptResult != nil {
					fmt.Fprintln(out, ctx.ScriptResult.Code)
				}
				fmt.Fprint(out, "lumina> ")
			}
			fmt.Fprintln(out)
			return in.Err()
		},
	}
	return cmd
}
