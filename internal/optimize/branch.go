package optimize

import "github.com/luminalang/lumina/internal/ir"

// foldBranches implements §4.7 step 4: an If whose condition folded to a
// Boolean literal is replaced by (flattened into its parent block as) the
// corresponding branch's statements.
func foldBranches(body []ir.Stmt) ([]ir.Stmt, bool) {
	changed := false
	out := foldBranchesStmts(body, &changed)
	return out, changed
}

func foldBranchesStmts(stmts []ir.Stmt, changed *bool) []ir.Stmt {
	var out []ir.Stmt
	for _, s := range stmts {
		switch n := s.(type) {
		case *ir.If:
			if b, ok := n.Cond.(*ir.Boolean); ok {
				*changed = true
				if b.Value {
					out = append(out, foldBranchesStmts(n.Then, changed)...)
				} else {
					out = append(out, foldBranchesStmts(n.Else, changed)...)
				}
				continue
			}
			n.Then = foldBranchesStmts(n.Then, changed)
			n.Else = foldBranchesStmts(n.Else, changed)
			out = append(out, n)
		case *ir.While:
			n.Body = foldBranchesStmts(n.Body, changed)
			out = append(out, n)
		default:
			out = append(out, s)
		}
	}
	return out
}
