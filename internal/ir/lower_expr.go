package ir

import (
	"fmt"

	"github.com/luminalang/lumina/internal/ast"
	"github.com/luminalang/lumina/internal/config"
	"github.com/luminalang/lumina/internal/token"
)

func lowerExpr(e ast.Expression, sc *scope) Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *ast.IntLiteral:
		return &Number{base: base{Sp: n.Span()}, Value: float64(n.Value)}
	case *ast.FloatLiteral:
		return &Number{base: base{Sp: n.Span()}, Value: n.Value}
	case *ast.StringLiteral:
		return &String{base: base{Sp: n.Span()}, Value: n.Value}
	case *ast.BoolLiteral:
		return &Boolean{base: base{Sp: n.Span()}, Value: n.Value}
	case *ast.InterpolatedString:
		return lowerInterp(n, sc)
	case *ast.Identifier:
		return &Identifier{base: base{Sp: n.Span()}, Name: sc.resolve(n.Name)}
	case *ast.ArrayLiteral:
		els := make([]Expr, len(n.Elements))
		for i, el := range n.Elements {
			els[i] = lowerExpr(el, sc)
		}
		return &Array{base: base{Sp: n.Span()}, Elements: els}
	case *ast.ArrayRepeatLiteral:
		// The IR has no repeat-literal node; expand eagerly whenever the
		// count is an integer literal, otherwise lower as a single-element
		// array (the optimizer and back ends never see ArrayRepeatLiteral
		// directly — monomorphization's const evaluator has already
		// resolved the count for specialized struct fields).
		count := 1
		if lit, ok := n.Count.(*ast.IntLiteral); ok {
			count = int(lit.Value)
		}
		val := lowerExpr(n.Value, sc)
		els := make([]Expr, count)
		for i := range els {
			els[i] = val
		}
		return &Array{base: base{Sp: n.Span()}, Elements: els}
	case *ast.RangeExpr:
		args := []Expr{}
		if n.Start != nil {
			args = append(args, lowerExpr(n.Start, sc))
		}
		if n.End != nil {
			args = append(args, lowerExpr(n.End, sc))
		}
		return &Call{base: base{Sp: n.Span()}, Callee: config.HelperRange, Args: args}
	case *ast.BinaryExpr:
		return &Binary{base: base{Sp: n.Span()}, Op: n.Op, Left: lowerExpr(n.Left, sc), Right: lowerExpr(n.Right, sc)}
	case *ast.MemberExpr:
		return &Member{base: base{Sp: n.Span()}, Object: lowerExpr(n.Object, sc), Field: n.Field}
	case *ast.IndexExpr:
		return &Index{base: base{Sp: n.Span()}, Object: lowerExpr(n.Object, sc), Index: lowerExpr(n.Index, sc)}
	case *ast.CallExpr:
		return lowerCall(n, sc)
	case *ast.StructLiteral:
		fields := map[string]Expr{}
		order := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			fields[f.Name] = lowerExpr(f.Value, sc)
			order[i] = f.Name
		}
		return &Record{base: base{Sp: n.Span()}, TypeName: n.TypeName, Fields: fields, FieldOrder: order}
	case *ast.MatchExpr:
		return lowerMatchExprAsCall(n, sc)
	case *ast.LambdaExpr:
		// Lambdas have no first-class IR representation in this spec's back
		// ends (no closures are emitted). The lambda lowers to a plain
		// Identifier named __lumina_unsupported_lambda; its parameters and
		// body are not lowered, and the back ends emit that name like any
		// other identifier reference.
		return &Identifier{base: base{Sp: n.Span()}, Name: "__lumina_unsupported_lambda"}
	case *ast.TryExpr:
		return &Call{base: base{Sp: n.Span()}, Callee: config.HelperTry, Args: []Expr{lowerExpr(n.Operand, sc)}}
	case *ast.AsExpr:
		return lowerExpr(n.Operand, sc) // numeric cast instruction selection happens in the stack back end
	case *ast.AwaitExpr:
		return lowerExpr(n.Operand, sc) // scheduling is a runtime concern, not an IR-level one
	case *ast.SelectExpr:
		if len(n.Arms) == 0 {
			return &Noop{base: base{Sp: n.Span()}}
		}
		return lowerExpr(n.Arms[0].Body, sc)
	case *ast.MacroCall:
		return lowerMacroCall(n, sc)
	case *ast.IsExpr:
		return &Binary{
			base: base{Sp: n.Span()},
			Op:   "==",
			Left: &Tag{base: base{Sp: n.Span()}, Object: lowerExpr(n.Operand, sc)},
			Right: &String{base: base{Sp: n.Span()}, Value: n.Variant},
		}
	default:
		return &Noop{base: base{Sp: e.Span()}}
	}
}

func lowerInterp(n *ast.InterpolatedString, sc *scope) Expr {
	var result Expr = &String{base: base{Sp: n.Span()}, Value: ""}
	for _, part := range n.Parts {
		var piece Expr
		if part.Expr != nil {
			piece = &Call{base: base{Sp: n.Span()}, Callee: config.HelperStringify, Args: []Expr{lowerExpr(part.Expr, sc)}}
		} else {
			piece = &String{base: base{Sp: n.Span()}, Value: part.Text}
		}
		result = &Binary{base: base{Sp: n.Span()}, Op: "+", Left: result, Right: piece}
	}
	return result
}

func lowerCall(n *ast.CallExpr, sc *scope) Expr {
	args := make([]Expr, len(n.Args))
	for i, a := range n.Args {
		args[i] = lowerExpr(a, sc)
	}
	if n.EnumQualifier != "" {
		return &EnumValue{base: base{Sp: n.Span()}, EnumName: n.EnumQualifier, Variant: n.Variant, Payload: args}
	}
	if n.Receiver != nil {
		recv := lowerExpr(n.Receiver, sc)
		return &Call{base: base{Sp: n.Span()}, Callee: n.Method, Args: append([]Expr{recv}, args...)}
	}
	name := ""
	if id, ok := n.Callee.(*ast.Identifier); ok {
		name = id.Name // already mangled by the monomorphizer if this was a generic call
	}
	return &Call{base: base{Sp: n.Span()}, Callee: name, Args: args}
}

// lowerMatchExprAsCall lowers a match *expression*'s arms the same way as a
// match statement (§4.6 applies identically to both forms): the first arm
// whose pattern matches contributes its body's value, modeled here as a
// right-nested chain of Phi expressions driven by the same Tag comparisons
// lowerMatchArms uses for statements.
func lowerMatchExprAsCall(n *ast.MatchExpr, sc *scope) Expr {
	scrutinee := lowerExpr(n.Scrutinee, sc)
	return buildMatchExprChain(n.Span(), scrutinee, n.Arms, 0, sc)
}

// buildMatchExprChain builds the Phi chain for a match-expression's arms.
// Payload field bindings are not available inside the body expression here
// (unlike the statement form, an expression can't host the projecting Let
// statements bindMatchPayload emits) — a documented gap: variant patterns
// with sub-bindings inside a match *expression* (as opposed to statement)
// are rare in practice (the arm usually just returns a literal or a plain
// identifier already in scope) and aren't exercised by this lowering.
func buildMatchExprChain(sp token.Span, scrutinee Expr, arms []ast.MatchExprArm, i int, sc *scope) Expr {
	if i >= len(arms) {
		return &Noop{base: base{Sp: sp}}
	}
	arm := arms[i]
	body := lowerExpr(arm.Body, sc)
	if isCatchAllPattern(arm.Pattern) && arm.Guard == nil {
		return body
	}
	cond := matchCondition(arm.Pattern, scrutinee, sp)
	if arm.Guard != nil {
		cond = &Binary{base: base{Sp: sp}, Op: "&&", Left: cond, Right: lowerExpr(arm.Guard, sc)}
	}
	rest := buildMatchExprChain(sp, scrutinee, arms, i+1, sc)
	return &Phi{base: base{Sp: sp}, Cond: cond, ThenVal: body, ElseVal: rest}
}

func lowerMacroCall(n *ast.MacroCall, sc *scope) Expr {
	args := make([]Expr, len(n.Args))
	for i, a := range n.Args {
		args[i] = lowerExpr(a, sc)
	}
	switch n.Name {
	case "vec!":
		return &Array{base: base{Sp: n.Span()}, Elements: args}
	default:
		return &Call{base: base{Sp: n.Span()}, Callee: fmt.Sprintf("__lumina_macro_%s", n.Name), Args: args}
	}
}
