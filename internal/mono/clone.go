package mono

import "github.com/luminalang/lumina/internal/ast"

// tag assigns n a fresh node id in place (n must be a pointer node type).
func tag(n ast.Node) {
	if s, ok := n.(interface{ SetID(int) }); ok {
		s.SetID(ast.NewID())
	}
}

// cloneBlock deep-clones a function body with fresh node ids (literal leaves
// and type annotations are shared with the original, ids included) so a
// specialization's body is never aliased with the generic original's (or
// with a sibling specialization's) — each needs its own identity since
// rewriteCallSites and later IR lowering key state off node id.
//
// This is the one piece of the monomorphizer with no direct teacher
// analogue: funxy specializes after lowering to its own bytecode IR, where
// instructions are already freshly allocated per specialization, so no
// AST-level clone is ever needed. Surface-AST monomorphization (§4.5) has
// no choice but to clone before substituting.
func cloneBlock(b *ast.Block) *ast.Block {
	if b == nil {
		return nil
	}
	stmts := make([]ast.Statement, len(b.Statements))
	for i, s := range b.Statements {
		stmts[i] = cloneStmt(s)
	}
	n := &ast.Block{Statements: stmts}
	tag(n)
	return n
}

func cloneStmt(s ast.Statement) ast.Statement {
	switch n := s.(type) {
	case *ast.LetStmt:
		n := &ast.LetStmt{Name: n.Name, Pattern: clonePattern(n.Pattern), Annotation: n.Annotation, Value: cloneExpr(n.Value)}
		tag(n)
		return n
	case *ast.ReturnStmt:
		var v ast.Expression
		if n.Value != nil {
			v = cloneExpr(n.Value)
		}
		n := &ast.ReturnStmt{Value: v}
		tag(n)
		return n
	case *ast.ExprStmt:
		n := &ast.ExprStmt{Expr: cloneExpr(n.Expr)}
		tag(n)
		return n
	case *ast.Block:
		return cloneBlock(n)
	case *ast.IfStmt:
		var elseClause ast.Statement
		if n.Else != nil {
			elseClause = cloneStmt(n.Else)
		}
		n := &ast.IfStmt{Cond: cloneExpr(n.Cond), Then: cloneBlock(n.Then), Else: elseClause}
		tag(n)
		return n
	case *ast.WhileStmt:
		n := &ast.WhileStmt{Cond: cloneExpr(n.Cond), Body: cloneBlock(n.Body)}
		tag(n)
		return n
	case *ast.MatchStmt:
		arms := make([]ast.MatchArm, len(n.Arms))
		for i, a := range n.Arms {
			var guard ast.Expression
			if a.Guard != nil {
				guard = cloneExpr(a.Guard)
			}
			arms[i] = ast.MatchArm{Pattern: clonePattern(a.Pattern), Guard: guard, Body: cloneBlock(a.Body)}
		}
		n := &ast.MatchStmt{Scrutinee: cloneExpr(n.Scrutinee), Arms: arms}
		tag(n)
		return n
	default:
		return s // declarations nested in a body (rare) pass through unshared
	}
}

func cloneExpr(e ast.Expression) ast.Expression {
	switch n := e.(type) {
	case nil:
		return nil
	case *ast.Identifier:
		n := &ast.Identifier{Name: n.Name}
		tag(n)
		return n
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.StringLiteral, *ast.BoolLiteral:
		return e // immutable leaves; safe to share
	case *ast.InterpolatedString:
		parts := make([]ast.InterpPart, len(n.Parts))
		for i, p := range n.Parts {
			parts[i] = ast.InterpPart{Text: p.Text, Expr: cloneExpr(p.Expr)}
		}
		n := &ast.InterpolatedString{Parts: parts}
		tag(n)
		return n
	case *ast.ArrayLiteral:
		els := make([]ast.Expression, len(n.Elements))
		for i, el := range n.Elements {
			els[i] = cloneExpr(el)
		}
		n := &ast.ArrayLiteral{Elements: els}
		tag(n)
		return n
	case *ast.ArrayRepeatLiteral:
		n := &ast.ArrayRepeatLiteral{Value: cloneExpr(n.Value), Count: cloneExpr(n.Count)}
		tag(n)
		return n
	case *ast.RangeExpr:
		var start, end ast.Expression
		if n.Start != nil {
			start = cloneExpr(n.Start)
		}
		if n.End != nil {
			end = cloneExpr(n.End)
		}
		n := &ast.RangeExpr{Start: start, End: end, Inclusive: n.Inclusive}
		tag(n)
		return n
	case *ast.BinaryExpr:
		n := &ast.BinaryExpr{Op: n.Op, Left: cloneExpr(n.Left), Right: cloneExpr(n.Right)}
		tag(n)
		return n
	case *ast.MemberExpr:
		n := &ast.MemberExpr{Object: cloneExpr(n.Object), Field: n.Field}
		tag(n)
		return n
	case *ast.IndexExpr:
		n := &ast.IndexExpr{Object: cloneExpr(n.Object), Index: cloneExpr(n.Index)}
		tag(n)
		return n
	case *ast.CallExpr:
		args := make([]ast.Expression, len(n.Args))
		for i, a := range n.Args {
			args[i] = cloneExpr(a)
		}
		var callee, receiver ast.Expression
		if n.Callee != nil {
			callee = cloneExpr(n.Callee)
		}
		if n.Receiver != nil {
			receiver = cloneExpr(n.Receiver)
		}
		n := &ast.CallExpr{
			Callee: callee, EnumQualifier: n.EnumQualifier, Variant: n.Variant,
			Receiver: receiver, Method: n.Method, Args: args,
		}
		tag(n)
		return n
	case *ast.StructLiteral:
		fields := make([]ast.FieldInit, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = ast.FieldInit{Name: f.Name, Value: cloneExpr(f.Value)}
		}
		n := &ast.StructLiteral{TypeName: n.TypeName, Fields: fields}
		tag(n)
		return n
	case *ast.MatchExpr:
		arms := make([]ast.MatchExprArm, len(n.Arms))
		for i, a := range n.Arms {
			var guard ast.Expression
			if a.Guard != nil {
				guard = cloneExpr(a.Guard)
			}
			arms[i] = ast.MatchExprArm{Pattern: clonePattern(a.Pattern), Guard: guard, Body: cloneExpr(a.Body)}
		}
		n := &ast.MatchExpr{Scrutinee: cloneExpr(n.Scrutinee), Arms: arms}
		tag(n)
		return n
	case *ast.LambdaExpr:
		n := &ast.LambdaExpr{
			Params: n.Params, ReturnType: n.ReturnType, BlockBody: cloneBlock(n.BlockBody),
			ExprBody: cloneExpr(n.ExprBody), IsBlockForm: n.IsBlockForm, Async: n.Async,
		}
		tag(n)
		return n
	case *ast.TryExpr:
		n := &ast.TryExpr{Operand: cloneExpr(n.Operand)}
		tag(n)
		return n
	case *ast.AsExpr:
		n := &ast.AsExpr{Operand: cloneExpr(n.Operand), TargetType: n.TargetType}
		tag(n)
		return n
	case *ast.AwaitExpr:
		n := &ast.AwaitExpr{Operand: cloneExpr(n.Operand)}
		tag(n)
		return n
	case *ast.SelectExpr:
		arms := make([]ast.SelectArm, len(n.Arms))
		for i, a := range n.Arms {
			arms[i] = ast.SelectArm{Binding: a.Binding, Awaited: cloneExpr(a.Awaited), Body: cloneExpr(a.Body)}
		}
		n := &ast.SelectExpr{Arms: arms}
		tag(n)
		return n
	case *ast.MacroCall:
		args := make([]ast.Expression, len(n.Args))
		for i, a := range n.Args {
			args[i] = cloneExpr(a)
		}
		n := &ast.MacroCall{Name: n.Name, Args: args}
		tag(n)
		return n
	case *ast.IsExpr:
		n := &ast.IsExpr{Operand: cloneExpr(n.Operand), Variant: n.Variant}
		tag(n)
		return n
	default:
		return e
	}
}

func clonePattern(p ast.Pattern) ast.Pattern {
	switch n := p.(type) {
	case nil:
		return nil
	case *ast.WildcardPattern:
		n := &ast.WildcardPattern{}
		tag(n)
		return n
	case *ast.BindingPattern:
		n := &ast.BindingPattern{Name: n.Name}
		tag(n)
		return n
	case *ast.LiteralPattern:
		n := &ast.LiteralPattern{Value: cloneExpr(n.Value)}
		tag(n)
		return n
	case *ast.TuplePattern:
		els := make([]ast.Pattern, len(n.Elements))
		for i, el := range n.Elements {
			els[i] = clonePattern(el)
		}
		n := &ast.TuplePattern{Elements: els}
		tag(n)
		return n
	case *ast.VariantPattern:
		subs := make([]ast.Pattern, len(n.SubPatterns))
		for i, sp := range n.SubPatterns {
			subs[i] = clonePattern(sp)
		}
		n := &ast.VariantPattern{EnumName: n.EnumName, Variant: n.Variant, SubPatterns: subs}
		tag(n)
		return n
	default:
		return p
	}
}
