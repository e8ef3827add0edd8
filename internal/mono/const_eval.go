package mono

import (
	"fmt"

	"github.com/luminalang/lumina/internal/ast"
	"github.com/luminalang/lumina/internal/diagnostics"
)

// ConstBindings maps a const generic parameter name to its resolved integer
// value for one specialization.
type ConstBindings map[string]int64

// EvalConst evaluates a const array-size expression under bindings: literal
// integers, bound const-param identifiers, and `+ - * /` over those (§4.5).
// Division by zero reports CONST-DIV-ZERO and returns (0, false).
func EvalConst(bag *diagnostics.Bag, expr ast.Expression, bindings ConstBindings) (int64, bool) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return e.Value, true
	case *ast.Identifier:
		v, ok := bindings[e.Name]
		if !ok {
			bag.Add(diagnostics.New(diagnostics.CodeConstUnboundParam, e.Span(),
				"const expression references unbound parameter %s", e.Name))
			return 0, false
		}
		return v, true
	case *ast.BinaryExpr:
		l, lok := EvalConst(bag, e.Left, bindings)
		r, rok := EvalConst(bag, e.Right, bindings)
		if !lok || !rok {
			return 0, false
		}
		switch e.Op {
		case "+":
			return l + r, true
		case "-":
			return l - r, true
		case "*":
			return l * r, true
		case "/":
			if r == 0 {
				bag.Add(diagnostics.New(diagnostics.CodeConstDivZero, e.Span(), "division by zero in const expression"))
				return 0, false
			}
			return l / r, true
		default:
			bag.Add(diagnostics.New(diagnostics.CodeConstInvalidType, e.Span(),
				"unsupported const operator %s", e.Op))
			return 0, false
		}
	default:
		bag.Add(diagnostics.New(diagnostics.CodeConstInvalidType, expr.Span(),
			fmt.Sprintf("expression is not a valid const expression: %T", expr)))
		return 0, false
	}
}
