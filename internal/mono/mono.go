package mono

import (
	"github.com/luminalang/lumina/internal/ast"
	"github.com/luminalang/lumina/internal/diagnostics"
	"github.com/luminalang/lumina/internal/infer"
	"github.com/luminalang/lumina/internal/typesystem"
)

// Result is the monomorphizer's output: the transformed AST plus the
// diagnostics its const evaluator produced.
type Result struct {
	Program     *ast.Program
	Diagnostics *diagnostics.Bag
}

// Monomorphize rewrites prog per §4.5 using the call-site instantiations
// infer.InferProgram recorded in res. Unused generic declarations (zero
// recorded instantiations) are kept verbatim so dead-code elimination in the
// optimizer — not this pass — is what removes them.
func Monomorphize(prog *ast.Program, res *infer.Result) *Result {
	bag := diagnostics.NewBag()
	m := &monomorphizer{res: res, bag: bag, specializedFns: map[string]bool{}}

	// Collect, per generic function name, the distinct type-argument tuples
	// recorded at any call site.
	instantiations := map[string]map[string][]typesystem.Type{} // fn -> mangledKey -> typeArgs
	for _, sig := range res.CallSigs {
		if len(sig.TypeArgs) == 0 {
			continue
		}
		key := MangleName(sig.Callee, sig.TypeArgs)
		if instantiations[sig.Callee] == nil {
			instantiations[sig.Callee] = map[string][]typesystem.Type{}
		}
		instantiations[sig.Callee][key] = sig.TypeArgs
	}

	var newStatements []ast.Statement
	for _, stmt := range prog.Statements {
		fd, ok := stmt.(*ast.FunctionDecl)
		if !ok || len(fd.TypeParams) == 0 {
			newStatements = append(newStatements, stmt)
			continue
		}
		newStatements = append(newStatements, fd) // keep the generic original
		for mangled, typeArgs := range instantiations[fd.Name] {
			newStatements = append(newStatements, m.specializeFunction(fd, mangled, typeArgs))
		}
	}
	prog.Statements = newStatements

	m.rewriteCallSites(prog, instantiations)
	m.specializeADTs(prog)

	return &Result{Program: prog, Diagnostics: bag}
}

type monomorphizer struct {
	res            *infer.Result
	bag            *diagnostics.Bag
	specializedFns map[string]bool
}

// specializeFunction clones fd into a new FunctionDecl named base_mangled
// with every reference to fd's own type parameters substituted for the
// concrete typeArgs, in declared order.
func (m *monomorphizer) specializeFunction(fd *ast.FunctionDecl, mangledKey string, typeArgs []typesystem.Type) *ast.FunctionDecl {
	subst := map[string]typesystem.Type{}
	i := 0
	for _, tp := range fd.TypeParams {
		if tp.Const {
			continue
		}
		if i < len(typeArgs) {
			subst[tp.Name] = typeArgs[i]
		}
		i++
	}

	clone := *fd
	clone.Name = mangledKey
	clone.TypeParams = nil
	clone.Params = make([]ast.Param, len(fd.Params))
	for i, p := range fd.Params {
		clone.Params[i] = p
		clone.Params[i].Annotation = substituteTypeExpr(p.Annotation, subst)
	}
	clone.ReturnType = substituteTypeExpr(fd.ReturnType, subst)
	// The body must be independently owned: rewriteCallSites mutates call-site
	// identifiers in place, and every specialization (plus the kept generic
	// original) needs its own copy or they'd corrupt each other's rewrites.
	clone.Body = cloneBlock(fd.Body)
	return &clone
}

// substituteTypeExpr rewrites a surface type annotation's bare generic-name
// references into NamedType nodes for their concrete substitution, leaving
// everything else structurally unchanged.
func substituteTypeExpr(t ast.TypeExpr, subst map[string]typesystem.Type) ast.TypeExpr {
	if t == nil {
		return nil
	}
	switch tt := t.(type) {
	case *ast.NamedType:
		if replacement, ok := subst[tt.Name]; ok && len(tt.Args) == 0 {
			return typeToTypeExpr(replacement)
		}
		args := make([]ast.TypeExpr, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = substituteTypeExpr(a, subst)
		}
		return &ast.NamedType{Name: tt.Name, Args: args}
	case *ast.FunctionType:
		params := make([]ast.TypeExpr, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = substituteTypeExpr(p, subst)
		}
		return &ast.FunctionType{Params: params, Return: substituteTypeExpr(tt.Return, subst)}
	case *ast.ArrayType:
		return &ast.ArrayType{Elem: substituteTypeExpr(tt.Elem, subst), Size: tt.Size}
	default:
		return t
	}
}

// typeToTypeExpr renders a resolved typesystem.Type back into a surface
// TypeExpr so a cloned declaration's annotations stay self-describing.
func typeToTypeExpr(t typesystem.Type) ast.TypeExpr {
	switch tt := t.(type) {
	case typesystem.Primitive:
		return &ast.NamedType{Name: string(tt.Name)}
	case typesystem.ADT:
		args := make([]ast.TypeExpr, len(tt.Params))
		for i, p := range tt.Params {
			args[i] = typeToTypeExpr(p)
		}
		return &ast.NamedType{Name: tt.Name, Args: args}
	default:
		return &ast.NamedType{Name: MangleType(t)}
	}
}

// rewriteCallSites replaces each generic call's Callee identifier with the
// mangled specialization name it resolved to, leaving qualified calls
// (EnumQualifier/Receiver) untouched per §4.5.
func (m *monomorphizer) rewriteCallSites(node ast.Node, instantiations map[string]map[string][]typesystem.Type) {
	switch n := node.(type) {
	case nil:
		return
	case *ast.Program:
		for _, s := range n.Statements {
			m.rewriteCallSites(s, instantiations)
		}
	case *ast.FunctionDecl:
		if n.Body != nil {
			m.rewriteCallSites(n.Body, instantiations)
		}
	case *ast.ImplDecl:
		for _, meth := range n.Methods {
			m.rewriteCallSites(meth, instantiations)
		}
	case *ast.Block:
		for _, s := range n.Statements {
			m.rewriteCallSites(s, instantiations)
		}
	case *ast.ExprStmt:
		m.rewriteCallSites(n.Expr, instantiations)
	case *ast.LetStmt:
		m.rewriteCallSites(n.Value, instantiations)
	case *ast.ReturnStmt:
		if n.Value != nil {
			m.rewriteCallSites(n.Value, instantiations)
		}
	case *ast.IfStmt:
		m.rewriteCallSites(n.Cond, instantiations)
		m.rewriteCallSites(n.Then, instantiations)
		if n.Else != nil {
			m.rewriteCallSites(n.Else, instantiations)
		}
	case *ast.WhileStmt:
		m.rewriteCallSites(n.Cond, instantiations)
		m.rewriteCallSites(n.Body, instantiations)
	case *ast.MatchStmt:
		m.rewriteCallSites(n.Scrutinee, instantiations)
		for _, arm := range n.Arms {
			if arm.Guard != nil {
				m.rewriteCallSites(arm.Guard, instantiations)
			}
			m.rewriteCallSites(arm.Body, instantiations)
		}
	case *ast.MatchExpr:
		m.rewriteCallSites(n.Scrutinee, instantiations)
		for _, arm := range n.Arms {
			if arm.Guard != nil {
				m.rewriteCallSites(arm.Guard, instantiations)
			}
			m.rewriteCallSites(arm.Body, instantiations)
		}
	case *ast.BinaryExpr:
		m.rewriteCallSites(n.Left, instantiations)
		m.rewriteCallSites(n.Right, instantiations)
	case *ast.MemberExpr:
		m.rewriteCallSites(n.Object, instantiations)
	case *ast.IndexExpr:
		m.rewriteCallSites(n.Object, instantiations)
		m.rewriteCallSites(n.Index, instantiations)
	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			m.rewriteCallSites(el, instantiations)
		}
	case *ast.ArrayRepeatLiteral:
		m.rewriteCallSites(n.Value, instantiations)
		m.rewriteCallSites(n.Count, instantiations)
	case *ast.RangeExpr:
		if n.Start != nil {
			m.rewriteCallSites(n.Start, instantiations)
		}
		if n.End != nil {
			m.rewriteCallSites(n.End, instantiations)
		}
	case *ast.InterpolatedString:
		for _, p := range n.Parts {
			if p.Expr != nil {
				m.rewriteCallSites(p.Expr, instantiations)
			}
		}
	case *ast.StructLiteral:
		for _, f := range n.Fields {
			m.rewriteCallSites(f.Value, instantiations)
		}
	case *ast.LambdaExpr:
		if n.IsBlockForm {
			m.rewriteCallSites(n.BlockBody, instantiations)
		} else {
			m.rewriteCallSites(n.ExprBody, instantiations)
		}
	case *ast.TryExpr:
		m.rewriteCallSites(n.Operand, instantiations)
	case *ast.AsExpr:
		m.rewriteCallSites(n.Operand, instantiations)
	case *ast.AwaitExpr:
		m.rewriteCallSites(n.Operand, instantiations)
	case *ast.SelectExpr:
		for _, arm := range n.Arms {
			m.rewriteCallSites(arm.Awaited, instantiations)
			m.rewriteCallSites(arm.Body, instantiations)
		}
	case *ast.MacroCall:
		for _, a := range n.Args {
			m.rewriteCallSites(a, instantiations)
		}
	case *ast.IsExpr:
		m.rewriteCallSites(n.Operand, instantiations)
	case *ast.CallExpr:
		if n.Callee != nil {
			m.rewriteCallSites(n.Callee, instantiations)
		}
		if n.Receiver != nil {
			m.rewriteCallSites(n.Receiver, instantiations)
		}
		for _, a := range n.Args {
			m.rewriteCallSites(a, instantiations)
		}
		if n.EnumQualifier != "" || n.Receiver != nil {
			return // qualified calls are never rewritten (§4.5)
		}
		id, ok := n.Callee.(*ast.Identifier)
		if !ok {
			return
		}
		sig, ok := m.res.CallSigs[n.ID()]
		if !ok || len(sig.TypeArgs) == 0 {
			return
		}
		if _, known := instantiations[id.Name]; !known {
			return
		}
		id.Name = MangleName(id.Name, sig.TypeArgs)
	}
}
