package optimize

import "github.com/luminalang/lumina/internal/ir"

// foldConstants implements §4.7 step 1: binary operations over two constant
// operands evaluate; division by a zero constant is left alone (runtime
// semantics own that trap).
func foldConstants(body []ir.Stmt) ([]ir.Stmt, bool) {
	changed := false
	transformStmtsExprs(body, &changed, foldOnce)
	return body, changed
}

func foldOnce(e ir.Expr) ir.Expr {
	b, ok := e.(*ir.Binary)
	if !ok {
		return e
	}
	if l, ok := b.Left.(*ir.Number); ok {
		if r, ok := b.Right.(*ir.Number); ok {
			if v, ok := foldNumericOp(b.Op, l.Value, r.Value); ok {
				return &ir.Number{Value: v}
			}
			if v, ok := foldNumericCompare(b.Op, l.Value, r.Value); ok {
				return &ir.Boolean{Value: v}
			}
		}
	}
	if l, ok := b.Left.(*ir.String); ok {
		if r, ok := b.Right.(*ir.String); ok {
			switch b.Op {
			case "+":
				return &ir.String{Value: l.Value + r.Value}
			case "==":
				return &ir.Boolean{Value: l.Value == r.Value}
			case "!=":
				return &ir.Boolean{Value: l.Value != r.Value}
			}
		}
	}
	if l, ok := b.Left.(*ir.Boolean); ok {
		if r, ok := b.Right.(*ir.Boolean); ok {
			if v, ok := foldBooleanOp(b.Op, l.Value, r.Value); ok {
				return &ir.Boolean{Value: v}
			}
		}
	}
	return e
}

func foldNumericOp(op string, l, r float64) (float64, bool) {
	switch op {
	case "+":
		return l + r, true
	case "-":
		return l - r, true
	case "*":
		return l * r, true
	case "/":
		if r == 0 {
			return 0, false // division by a zero constant is not folded (§4.7)
		}
		return l / r, true
	case "%":
		if r == 0 {
			return 0, false
		}
		return float64(int64(l) % int64(r)), true
	}
	return 0, false
}

func foldNumericCompare(op string, l, r float64) (bool, bool) {
	switch op {
	case "<":
		return l < r, true
	case "<=":
		return l <= r, true
	case ">":
		return l > r, true
	case ">=":
		return l >= r, true
	case "==":
		return l == r, true
	case "!=":
		return l != r, true
	}
	return false, false
}

func foldBooleanOp(op string, l, r bool) (bool, bool) {
	switch op {
	case "&&":
		return l && r, true
	case "||":
		return l || r, true
	case "==":
		return l == r, true
	case "!=":
		return l != r, true
	}
	return false, false
}

// applyAlgebraicIdentities implements §4.7 step 2.
func applyAlgebraicIdentities(body []ir.Stmt) ([]ir.Stmt, bool) {
	changed := false
	transformStmtsExprs(body, &changed, identityOnce)
	return body, changed
}

func identityOnce(e ir.Expr) ir.Expr {
	b, ok := e.(*ir.Binary)
	if !ok {
		return e
	}
	switch b.Op {
	case "+":
		if isZeroNum(b.Right) {
			return b.Left
		}
		if isZeroNum(b.Left) {
			return b.Right
		}
	case "-":
		if isZeroNum(b.Right) {
			return b.Left
		}
	case "*":
		if isOneNum(b.Right) {
			return b.Left
		}
		if isOneNum(b.Left) {
			return b.Right
		}
		if isZeroNum(b.Right) && isPure(b.Left) {
			return &ir.Number{Value: 0}
		}
		if isZeroNum(b.Left) && isPure(b.Right) {
			return &ir.Number{Value: 0}
		}
	case "/":
		if isOneNum(b.Right) {
			return b.Left
		}
	case "&&":
		if isTrueBool(b.Right) {
			return b.Left
		}
		if isTrueBool(b.Left) {
			return b.Right
		}
		if isFalseBool(b.Right) && isPure(b.Left) {
			return &ir.Boolean{Value: false}
		}
		if isFalseBool(b.Left) && isPure(b.Right) {
			return &ir.Boolean{Value: false}
		}
	case "||":
		if isFalseBool(b.Right) {
			return b.Left
		}
		if isFalseBool(b.Left) {
			return b.Right
		}
	}
	return e
}

func isZeroNum(e ir.Expr) bool   { n, ok := e.(*ir.Number); return ok && n.Value == 0 }
func isOneNum(e ir.Expr) bool    { n, ok := e.(*ir.Number); return ok && n.Value == 1 }
func isTrueBool(e ir.Expr) bool  { b, ok := e.(*ir.Boolean); return ok && b.Value }
func isFalseBool(e ir.Expr) bool { b, ok := e.(*ir.Boolean); return ok && !b.Value }
