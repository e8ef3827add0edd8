package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luminalang/lumina/internal/codegen/script"
	"github.com/luminalang/lumina/internal/compiler"
	"github.com/luminalang/lumina/internal/infer"
)

func newCheckCmd(traceEnabled *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Type-check and lint a Lumina source file without emitting code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			cfg, err := loadProjectConfig()
			if err != nil {
				return fmt.Errorf("reading %s: %w", rcPath, err)
			}

			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			prog, err := parseSource(path, src)
			if err != nil {
				return err
			}

			inferOpts := infer.DefaultOptions()
			inferOpts.Wrappers = cfg.wrapperSet()

			ctx := compiler.CompileWithOptions(path, prog, compiler.ModeCheck, compiler.BackendScript, script.Options{}, inferOpts)

			runID := ""
			if *traceEnabled {
				runID = newRunID()
			}
			printDiagnostics(cmd.OutOrStdout(), path, ctx.Errors.Items(), runID)

			if ctx.HasFatalErrors() {
				return fmt.Errorf("%s failed checks", path)
			}
			return nil
		},
	}
	return cmd
}
