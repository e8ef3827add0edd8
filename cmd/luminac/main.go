// Command luminac is the thin CLI collaborator spec.md §1 explicitly treats
// as glue: it does not constitute the compiler's intellectual content, only
// a small interface onto internal/compiler.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var traceEnabled bool

	root := &cobra.Command{
		Use:     "luminac",
		Short:   "Lumina compiler CLI",
		Version: "0.1.0",
	}
	root.PersistentFlags().BoolVar(&traceEnabled, "trace", false, "attach a run id to diagnostic output for this invocation")
	root.PersistentFlags().StringVar(&rcPath, "config", ".luminarc.yaml", "project configuration file")

	root.AddCommand(newCompileCmd(&traceEnabled))
	root.AddCommand(newCheckCmd(&traceEnabled))
	root.AddCommand(newWatchCmd(&traceEnabled))
	root.AddCommand(newReplCmd())
	return root
}
