package optimize

import "github.com/luminalang/lumina/internal/ir"

// propagateConstants implements §4.7 step 3: a Let binding a constant whose
// name is never reassigned (no Assign anywhere in the function) lets later
// reads of that name be replaced by the constant directly.
func propagateConstants(body []ir.Stmt) ([]ir.Stmt, bool) {
	assigned := collectAssignedNames(body)
	changed := false
	env := map[string]ir.Expr{}
	propagateStmts(body, assigned, env, &changed)
	return body, changed
}

func collectAssignedNames(stmts []ir.Stmt) map[string]bool {
	out := map[string]bool{}
	var walk func([]ir.Stmt)
	walk = func(ss []ir.Stmt) {
		for _, s := range ss {
			switch n := s.(type) {
			case *ir.Assign:
				out[n.Name] = true
			case *ir.If:
				walk(n.Then)
				walk(n.Else)
			case *ir.While:
				walk(n.Body)
			}
		}
	}
	walk(stmts)
	return out
}

func cloneEnv(env map[string]ir.Expr) map[string]ir.Expr {
	out := make(map[string]ir.Expr, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}

func asConst(e ir.Expr) (ir.Expr, bool) {
	switch e.(type) {
	case *ir.Number, *ir.String, *ir.Boolean:
		return e, true
	default:
		return nil, false
	}
}

func substituteConst(e ir.Expr, env map[string]ir.Expr, changed *bool) ir.Expr {
	return transformExpr(e, func(n ir.Expr) ir.Expr {
		id, ok := n.(*ir.Identifier)
		if !ok {
			return n
		}
		if c, ok := env[id.Name]; ok {
			*changed = true
			return c
		}
		return n
	})
}

func propagateStmts(stmts []ir.Stmt, assigned map[string]bool, env map[string]ir.Expr, changed *bool) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ir.Let:
			n.Value = substituteConst(n.Value, env, changed)
			if !assigned[n.Name] {
				if c, ok := asConst(n.Value); ok {
					env[n.Name] = c
				}
			}
		case *ir.Assign:
			n.Value = substituteConst(n.Value, env, changed)
		case *ir.Return:
			if n.Value != nil {
				n.Value = substituteConst(n.Value, env, changed)
			}
		case *ir.ExprStmt:
			n.Value = substituteConst(n.Value, env, changed)
		case *ir.If:
			n.Cond = substituteConst(n.Cond, env, changed)
			propagateStmts(n.Then, assigned, cloneEnv(env), changed)
			propagateStmts(n.Else, assigned, cloneEnv(env), changed)
		case *ir.While:
			propagateStmts(n.Body, assigned, cloneEnv(env), changed)
		}
	}
}
