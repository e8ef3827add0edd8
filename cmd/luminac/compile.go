package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luminalang/lumina/internal/codegen/script"
	"github.com/luminalang/lumina/internal/compiler"
	"github.com/luminalang/lumina/internal/infer"
)

func newCompileCmd(traceEnabled *bool) *cobra.Command {
	var (
		targetFlag    string
		backendFlag   string
		outFlag       string
		emitSourceMap bool
	)

	cmd := &cobra.Command{
		Use:   "compile [file]",
		Short: "Compile a Lumina source file to the chosen back end",
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

			backend := compiler.BackendScript
			if backendFlag == "stack" {
				backend = compiler.BackendStack
			}

			inferOpts := infer.DefaultOptions()
			inferOpts.Wrappers = cfg.wrapperSet()

			scriptOpts := script.Options{
				Target:        cfg.scriptTarget(targetFlag),
				SourceFile:    path,
				EmitSourceMap: emitSourceMap,
			}

			ctx := compiler.CompileWithOptions(path, prog, compiler.ModeCompile, backend, scriptOpts, inferOpts)

			runID := ""
			if *traceEnabled {
				runID = newRunID()
			}
			printDiagnostics(cmd.ErrOrStderr(), path, ctx.Errors.Items(), runID)

			if ctx.HasFatalErrors() {
				return fmt.Errorf("compile failed: %s has unresolved errors", path)
			}

			var out string
			if backend == compiler.BackendStack {
				out = ctx.StackCode
			} else {
				out = ctx.ScriptResult.Code
			}

			if outFlag == "" || outFlag == "-" {
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}
			return os.WriteFile(outFlag, []byte(out), 0o644)
		},
	}

	cmd.Flags().StringVar(&targetFlag, "target", "", "script target: esm or cjs (overrides .luminarc.yaml)")
	cmd.Flags().StringVar(&backendFlag, "backend", "script", "back end: script or stack")
	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&emitSourceMap, "source-map", false, "emit a source map alongside the script back end")
	return cmd
}
