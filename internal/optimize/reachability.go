package optimize

import "github.com/luminalang/lumina/internal/ir"

// pruneUnreachableFunctions implements §4.7 step 7: from main (and any
// top-level exported declarations), compute the transitive call closure and
// drop everything else. Because this runs inside the same fixed-point loop
// as branch folding, calls inside an already-folded-away branch were
// already removed from the IR by the time this pass scans for call edges —
// satisfying "function references in folded-away branches do not count"
// without any extra bookkeeping.
func pruneUnreachableFunctions(prog *ir.Program) (*ir.Program, bool) {
	byName := map[string]*ir.Function{}
	for _, fn := range prog.Functions {
		byName[fn.Name] = fn
	}

	reachable := map[string]bool{}
	var visit func(name string)
	visit = func(name string) {
		if reachable[name] {
			return
		}
		fn, ok := byName[name]
		if !ok {
			return
		}
		reachable[name] = true
		for _, callee := range calledFunctions(fn.Body) {
			visit(callee)
		}
	}

	visit("main")
	for _, fn := range prog.Functions {
		if fn.Exported {
			visit(fn.Name)
		}
	}

	var kept []*ir.Function
	changed := false
	for _, fn := range prog.Functions {
		if reachable[fn.Name] {
			kept = append(kept, fn)
		} else {
			changed = true
		}
	}
	prog.Functions = kept
	return prog, changed
}

func calledFunctions(body []ir.Stmt) []string {
	var out []string
	walkStmtsExprs(body, func(e ir.Expr) {
		if call, ok := e.(*ir.Call); ok && call.Callee != "" {
			out = append(out, call.Callee)
		}
	})
	return out
}
