// Package optimize runs the fixed-point IR optimization pipeline of §4.7:
// constant folding, algebraic identities, constant propagation, branch
// folding, dead-store elimination, unreachable-code elimination, and
// reachability-based function DCE, in that order, repeated until a pass
// produces no change.
//
// Grounded on the teacher's internal/vm bytecode peephole passes (disasm.go
// documents the instruction set the teacher's own compiler.go constant-folds
// before emission) — generalized here from bytecode peepholing to tree-IR
// rewriting since this spec's IR is a tree, not a flat instruction stream.
package optimize

import "github.com/luminalang/lumina/internal/ir"

// Run applies every pass to fixed point and returns the optimized program.
// The optimizer assumes the input already passed HM + semantic analysis
// (§4.7: "allowed to assume type correctness").
func Run(prog *ir.Program) *ir.Program {
	for {
		changed := false
		for _, fn := range prog.Functions {
			var c bool
			fn.Body, c = foldConstants(fn.Body)
			changed = changed || c
			fn.Body, c = applyAlgebraicIdentities(fn.Body)
			changed = changed || c
			fn.Body, c = propagateConstants(fn.Body)
			changed = changed || c
			fn.Body, c = foldBranches(fn.Body)
			changed = changed || c
			fn.Body, c = eliminateDeadStores(fn.Body)
			changed = changed || c
			fn.Body, c = eliminateUnreachable(fn.Body)
			changed = changed || c
		}
		var c bool
		prog, c = pruneUnreachableFunctions(prog)
		changed = changed || c
		if !changed {
			return prog
		}
	}
}
