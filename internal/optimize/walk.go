package optimize

import "github.com/luminalang/lumina/internal/ir"

// transformExpr rewrites e bottom-up: every child is transformed first, then
// f is applied to the (possibly already-rewritten) node itself. Mutates
// container nodes in place; f may return a different node entirely (e.g.
// folding a Binary of two constants into a single Number).
func transformExpr(e ir.Expr, f func(ir.Expr) ir.Expr) ir.Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ir.Binary:
		n.Left = transformExpr(n.Left, f)
		n.Right = transformExpr(n.Right, f)
	case *ir.Unary:
		n.Operand = transformExpr(n.Operand, f)
	case *ir.Member:
		n.Object = transformExpr(n.Object, f)
	case *ir.Index:
		n.Object = transformExpr(n.Object, f)
		n.Index = transformExpr(n.Index, f)
	case *ir.Call:
		for i := range n.Args {
			n.Args[i] = transformExpr(n.Args[i], f)
		}
	case *ir.Array:
		for i := range n.Elements {
			n.Elements[i] = transformExpr(n.Elements[i], f)
		}
	case *ir.Record:
		for k := range n.Fields {
			n.Fields[k] = transformExpr(n.Fields[k], f)
		}
	case *ir.EnumValue:
		for i := range n.Payload {
			n.Payload[i] = transformExpr(n.Payload[i], f)
		}
	case *ir.Tag:
		n.Object = transformExpr(n.Object, f)
	case *ir.Phi:
		n.Cond = transformExpr(n.Cond, f)
		n.ThenVal = transformExpr(n.ThenVal, f)
		n.ElseVal = transformExpr(n.ElseVal, f)
	case *ir.MatchExpr:
		n.Scrutinee = transformExpr(n.Scrutinee, f)
		for i := range n.Arms {
			n.Arms[i].Body = transformExpr(n.Arms[i].Body, f)
		}
	}
	return f(e)
}

// transformStmtsExprs applies f to every expression reachable from stmts,
// recursing into nested If/While bodies, and reports whether anything
// actually changed.
func transformStmtsExprs(stmts []ir.Stmt, changed *bool, f func(ir.Expr) ir.Expr) {
	wrapped := func(e ir.Expr) ir.Expr {
		out := f(e)
		if out != e {
			*changed = true
		}
		return out
	}
	for _, s := range stmts {
		switch n := s.(type) {
		case *ir.Let:
			n.Value = transformExpr(n.Value, wrapped)
		case *ir.Assign:
			n.Value = transformExpr(n.Value, wrapped)
		case *ir.Return:
			if n.Value != nil {
				n.Value = transformExpr(n.Value, wrapped)
			}
		case *ir.ExprStmt:
			n.Value = transformExpr(n.Value, wrapped)
		case *ir.If:
			n.Cond = transformExpr(n.Cond, wrapped)
			transformStmtsExprs(n.Then, changed, f)
			transformStmtsExprs(n.Else, changed, f)
		case *ir.While:
			transformStmtsExprs(n.Body, changed, f)
		}
	}
}

// walkExpr visits every expression node reachable from e, e itself included.
func walkExpr(e ir.Expr, visit func(ir.Expr)) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ir.Binary:
		walkExpr(n.Left, visit)
		walkExpr(n.Right, visit)
	case *ir.Unary:
		walkExpr(n.Operand, visit)
	case *ir.Member:
		walkExpr(n.Object, visit)
	case *ir.Index:
		walkExpr(n.Object, visit)
		walkExpr(n.Index, visit)
	case *ir.Call:
		for _, a := range n.Args {
			walkExpr(a, visit)
		}
	case *ir.Array:
		for _, el := range n.Elements {
			walkExpr(el, visit)
		}
	case *ir.Record:
		for _, v := range n.Fields {
			walkExpr(v, visit)
		}
	case *ir.EnumValue:
		for _, p := range n.Payload {
			walkExpr(p, visit)
		}
	case *ir.Tag:
		walkExpr(n.Object, visit)
	case *ir.Phi:
		walkExpr(n.Cond, visit)
		walkExpr(n.ThenVal, visit)
		walkExpr(n.ElseVal, visit)
	case *ir.MatchExpr:
		walkExpr(n.Scrutinee, visit)
		for _, a := range n.Arms {
			walkExpr(a.Body, visit)
		}
	}
	visit(e)
}

// walkStmtsExprs visits every expression reachable from stmts (including
// within nested If/While bodies).
func walkStmtsExprs(stmts []ir.Stmt, visit func(ir.Expr)) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ir.Let:
			walkExpr(n.Value, visit)
		case *ir.Assign:
			walkExpr(n.Value, visit)
		case *ir.Return:
			walkExpr(n.Value, visit)
		case *ir.ExprStmt:
			walkExpr(n.Value, visit)
		case *ir.If:
			walkExpr(n.Cond, visit)
			walkStmtsExprs(n.Then, visit)
			walkStmtsExprs(n.Else, visit)
		case *ir.While:
			walkStmtsExprs(n.Body, visit)
		}
	}
}

func isPure(e ir.Expr) bool {
	switch e.(type) {
	case *ir.Number, *ir.String, *ir.Boolean, *ir.Identifier:
		return true
	default:
		return false
	}
}

func hasSideEffect(e ir.Expr) bool {
	found := false
	walkExpr(e, func(n ir.Expr) {
		if _, ok := n.(*ir.Call); ok {
			found = true
		}
	})
	return found
}
