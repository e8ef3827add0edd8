package optimize

import "github.com/luminalang/lumina/internal/ir"

// eliminateDeadStores implements §4.7 step 5: a Let whose bound name is
// never read is dropped, unless its value has a side effect (only Call
// does, per §4.7).
func eliminateDeadStores(body []ir.Stmt) ([]ir.Stmt, bool) {
	reads := map[string]bool{}
	walkStmtsExprs(body, func(e ir.Expr) {
		if id, ok := e.(*ir.Identifier); ok {
			reads[id.Name] = true
		}
	})
	changed := false
	out := removeDeadLets(body, reads, &changed)
	return out, changed
}

func removeDeadLets(stmts []ir.Stmt, reads map[string]bool, changed *bool) []ir.Stmt {
	var out []ir.Stmt
	for _, s := range stmts {
		switch n := s.(type) {
		case *ir.Let:
			if !reads[n.Name] && !hasSideEffect(n.Value) {
				*changed = true
				continue
			}
			out = append(out, n)
		case *ir.If:
			n.Then = removeDeadLets(n.Then, reads, changed)
			n.Else = removeDeadLets(n.Else, reads, changed)
			out = append(out, n)
		case *ir.While:
			n.Body = removeDeadLets(n.Body, reads, changed)
			out = append(out, n)
		default:
			out = append(out, s)
		}
	}
	return out
}

// eliminateUnreachable implements §4.7 step 6: statements after a Return in
// the same block are dropped.
func eliminateUnreachable(body []ir.Stmt) ([]ir.Stmt, bool) {
	changed := false
	out := trimAfterReturn(body, &changed)
	return out, changed
}

func trimAfterReturn(stmts []ir.Stmt, changed *bool) []ir.Stmt {
	var out []ir.Stmt
	for _, s := range stmts {
		switch n := s.(type) {
		case *ir.If:
			n.Then = trimAfterReturn(n.Then, changed)
			n.Else = trimAfterReturn(n.Else, changed)
		case *ir.While:
			n.Body = trimAfterReturn(n.Body, changed)
		}
		out = append(out, s)
		if _, ok := s.(*ir.Return); ok {
			break
		}
	}
	if len(out) < len(stmts) {
		*changed = true
	}
	return out
}
