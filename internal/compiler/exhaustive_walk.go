package compiler

import (
	"github.com/luminalang/lumina/internal/ast"
	"github.com/luminalang/lumina/internal/diagnostics"
	"github.com/luminalang/lumina/internal/exhaustive"
	"github.com/luminalang/lumina/internal/infer"
	"github.com/luminalang/lumina/internal/typesystem"
)

// exhaustiveWalker finds every MatchStmt/MatchExpr in the program and hands
// each to the exhaustive package with the scrutinee's enum name resolved
// from InferProcessor's recorded expression types (§4.3's entry contract:
// exhaustiveness runs "separately" from HM, after types are known).
type exhaustiveWalker struct {
	bag      *diagnostics.Bag
	infer    *infer.Result
	variants exhaustive.EnumVariants
}

func (w *exhaustiveWalker) scrutineeEnumName(scrutinee ast.Expression) (string, bool) {
	t, ok := w.infer.ExprTypes[scrutinee.ID()]
	if !ok {
		return "", false
	}
	if w.infer.State != nil {
		t = w.infer.State.Prune(t)
	}
	adt, ok := t.(typesystem.ADT)
	if !ok {
		return "", false
	}
	return adt.Name, true
}

func (w *exhaustiveWalker) walkStmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.FunctionDecl:
		if n.Body != nil {
			w.walkBlock(n.Body)
		}
	case *ast.ImplDecl:
		for _, m := range n.Methods {
			if m.Body != nil {
				w.walkBlock(m.Body)
			}
		}
	case *ast.Block:
		w.walkBlock(n)
	case *ast.IfStmt:
		w.walkExpr(n.Cond)
		w.walkBlock(n.Then)
		if n.Else != nil {
			w.walkStmt(n.Else)
		}
	case *ast.WhileStmt:
		w.walkExpr(n.Cond)
		w.walkBlock(n.Body)
	case *ast.MatchStmt:
		w.walkExpr(n.Scrutinee)
		if name, ok := w.scrutineeEnumName(n.Scrutinee); ok {
			exhaustive.CheckMatchStmt(w.bag, name, w.variants, n)
		}
		for _, arm := range n.Arms {
			if arm.Guard != nil {
				w.walkExpr(arm.Guard)
			}
			w.walkBlock(arm.Body)
		}
	case *ast.LetStmt:
		if n.Value != nil {
			w.walkExpr(n.Value)
		}
	case *ast.ReturnStmt:
		if n.Value != nil {
			w.walkExpr(n.Value)
		}
	case *ast.ExprStmt:
		w.walkExpr(n.Expr)
	}
}

func (w *exhaustiveWalker) walkBlock(b *ast.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		w.walkStmt(s)
	}
}

func (w *exhaustiveWalker) walkExpr(e ast.Expression) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.BinaryExpr:
		w.walkExpr(n.Left)
		w.walkExpr(n.Right)
	case *ast.MemberExpr:
		w.walkExpr(n.Object)
	case *ast.IndexExpr:
		w.walkExpr(n.Object)
		w.walkExpr(n.Index)
	case *ast.CallExpr:
		w.walkExpr(n.Callee)
		w.walkExpr(n.Receiver)
		for _, a := range n.Args {
			w.walkExpr(a)
		}
	case *ast.StructLiteral:
		for _, f := range n.Fields {
			w.walkExpr(f.Value)
		}
	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			w.walkExpr(el)
		}
	case *ast.ArrayRepeatLiteral:
		w.walkExpr(n.Value)
		w.walkExpr(n.Count)
	case *ast.RangeExpr:
		w.walkExpr(n.Start)
		w.walkExpr(n.End)
	case *ast.InterpolatedString:
		for _, part := range n.Parts {
			w.walkExpr(part.Expr)
		}
	case *ast.LambdaExpr:
		if n.IsBlockForm {
			w.walkBlock(n.BlockBody)
		} else {
			w.walkExpr(n.ExprBody)
		}
	case *ast.TryExpr:
		w.walkExpr(n.Operand)
	case *ast.AwaitExpr:
		w.walkExpr(n.Operand)
	case *ast.AsExpr:
		w.walkExpr(n.Operand)
	case *ast.IsExpr:
		w.walkExpr(n.Operand)
	case *ast.MacroCall:
		for _, a := range n.Args {
			w.walkExpr(a)
		}
	case *ast.SelectExpr:
		for _, arm := range n.Arms {
			w.walkExpr(arm.Awaited)
			w.walkExpr(arm.Body)
		}
	case *ast.MatchExpr:
		w.walkExpr(n.Scrutinee)
		if name, ok := w.scrutineeEnumName(n.Scrutinee); ok {
			exhaustive.CheckMatchExpr(w.bag, name, w.variants, n)
		}
		for _, arm := range n.Arms {
			if arm.Guard != nil {
				w.walkExpr(arm.Guard)
			}
			w.walkExpr(arm.Body)
		}
	}
}
