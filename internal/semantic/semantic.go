// Package semantic implements the "second opinion" structural checker of
// §4.4: a pass that runs independently of HM and reports diagnostics HM
// itself has no vocabulary for — trait/impl completeness, const-generic
// parameter legality, and macro resolution. CheckCast validates an `as` cast
// given its operand types, but CheckProgram does not call it and no other
// phase does, so casts in a program are not checked.
//
// Grounded on the teacher's internal/analyzer declarations_instances*.go
// files (trait/impl method-set comparison) and constraints.go (the
// structural checks run alongside, not instead of, unification).
package semantic

import (
	"fmt"

	"github.com/luminalang/lumina/internal/ast"
	"github.com/luminalang/lumina/internal/config"
	"github.com/luminalang/lumina/internal/diagnostics"
	"github.com/luminalang/lumina/internal/token"
	"github.com/luminalang/lumina/internal/typesystem"
)

// allowedConstParamPrimitives is the fixed small set of integer primitives a
// const generic parameter's declared type may be (§4.4 CONST-INVALID-TYPE).
var allowedConstParamPrimitives = map[config.Primitive]bool{
	config.PrimInt:   true,
	config.PrimUSize: true,
}

// CheckProgram runs every structural check over prog and appends diagnostics
// to bag.
func CheckProgram(bag *diagnostics.Bag, prog *ast.Program) {
	traits := map[string]*ast.TraitDecl{}
	var impls []*ast.ImplDecl
	for _, stmt := range prog.Statements {
		if td, ok := stmt.(*ast.TraitDecl); ok {
			traits[td.Name] = td
		}
		if id, ok := stmt.(*ast.ImplDecl); ok {
			impls = append(impls, id)
		}
	}
	for _, stmt := range prog.Statements {
		switch d := stmt.(type) {
		case *ast.ImplDecl:
			checkImpl(bag, traits, d)
		case *ast.FunctionDecl:
			checkConstParams(bag, d.TypeParams)
			checkConstBounds(bag, d.TypeParams, d.Params)
		case *ast.StructDecl:
			checkConstParams(bag, d.TypeParams)
			checkStructArraySizes(bag, d.TypeParams, d.Fields)
		}
		walkMacros(bag, stmt)
	}
	CheckSupertraitCoverage(bag, traits, impls)
}

// checkImpl enforces §4.4's trait registry rules: the impl's method set must
// equal the trait's (minus defaulted methods), every required associated
// type must be bound, and a supertrait impl must exist for the same
// SelfType when the trait declares one (that last rule is checked across all
// impls by CheckSupertraitCoverage, not here).
func checkImpl(bag *diagnostics.Bag, traits map[string]*ast.TraitDecl, impl *ast.ImplDecl) {
	if impl.TraitName == "" {
		return // inherent impl, no trait contract to satisfy
	}
	trait, ok := traits[impl.TraitName]
	if !ok {
		return // unknown trait name is a name-resolution concern, not ours
	}

	implMethods := map[string]*ast.FunctionDecl{}
	for _, m := range impl.Methods {
		implMethods[m.Name] = m
	}
	for _, tm := range trait.Methods {
		m, has := implMethods[tm.Name]
		if !has {
			if tm.HasDefault {
				continue // resolved to the trait's default body by the back end
			}
			bag.Add(diagnostics.New(diagnostics.CodeTraitMissingMethod, impl.Span(),
				"impl of %s for %s is missing method %s", impl.TraitName, typeExprName(impl.SelfType), tm.Name))
			continue
		}
		if !signaturesMatch(tm, m) {
			bag.Add(diagnostics.New(diagnostics.CodeTraitSignatureMismatch, m.Span(),
				"method %s signature does not match trait %s", tm.Name, impl.TraitName))
		}
	}

	for _, at := range trait.AssocTypes {
		if _, bound := impl.AssocTypeBindings[at]; !bound {
			bag.Add(diagnostics.New(diagnostics.CodeTraitMissingAssocType, impl.Span(),
				"impl of %s for %s does not bind associated type %s", impl.TraitName, typeExprName(impl.SelfType), at))
		}
	}
}

// CheckSupertraitCoverage checks every ImplDecl against the full impl list
// at once, since whether a supertrait requirement is satisfied depends on
// sibling impls elsewhere in the program, not on the impl in isolation.
func CheckSupertraitCoverage(bag *diagnostics.Bag, traits map[string]*ast.TraitDecl, impls []*ast.ImplDecl) {
	provided := map[string]bool{} // "trait@selftype"
	for _, impl := range impls {
		if impl.TraitName != "" {
			provided[impl.TraitName+"@"+typeExprName(impl.SelfType)] = true
		}
	}
	for _, impl := range impls {
		if impl.TraitName == "" {
			continue
		}
		trait, ok := traits[impl.TraitName]
		if !ok || trait.Supertrait == "" {
			continue
		}
		key := trait.Supertrait + "@" + typeExprName(impl.SelfType)
		if !provided[key] {
			bag.Add(diagnostics.New(diagnostics.CodeTraitMissingSupertrait, impl.Span(),
				"%s requires supertrait %s, but no impl of %s for %s exists",
				impl.TraitName, trait.Supertrait, trait.Supertrait, typeExprName(impl.SelfType)))
		}
	}
}

func signaturesMatch(tm ast.TraitMethod, m *ast.FunctionDecl) bool {
	if len(tm.Params) != len(m.Params) {
		return false
	}
	for i := range tm.Params {
		if typeExprName(tm.Params[i].Annotation) != typeExprName(m.Params[i].Annotation) &&
			typeExprName(tm.Params[i].Annotation) != "Self" {
			return false
		}
	}
	if typeExprName(tm.ReturnType) != typeExprName(m.ReturnType) && typeExprName(tm.ReturnType) != "Self" {
		return false
	}
	return true
}

func typeExprName(t ast.TypeExpr) string {
	switch n := t.(type) {
	case nil:
		return "void"
	case *ast.NamedType:
		return n.Name
	case *ast.HoleType:
		return "_"
	default:
		return fmt.Sprintf("%T", t)
	}
}

// checkConstParams validates that every const type parameter's declared type
// is an allowed integer primitive (§4.4 CONST-INVALID-TYPE).
func checkConstParams(bag *diagnostics.Bag, params []ast.TypeParam) {
	for _, p := range params {
		if !p.Const {
			continue
		}
		nt, ok := p.ConstType.(*ast.NamedType)
		if !ok || !allowedConstParamPrimitives[config.NormalizePrimitive(nt.Name)] {
			bag.Add(diagnostics.New(diagnostics.CodeConstInvalidType, p.ConstType.Span(),
				"const parameter %s must be declared with an integer primitive type", p.Name))
		}
	}
}

// checkConstBounds validates that array-size expressions in parameter type
// annotations reference only the function's own bound const params.
func checkConstBounds(bag *diagnostics.Bag, typeParams []ast.TypeParam, params []ast.Param) {
	bound := boundConstNames(typeParams)
	for _, p := range params {
		walkArraySizes(bag, p.Annotation, bound)
	}
}

func checkStructArraySizes(bag *diagnostics.Bag, typeParams []ast.TypeParam, fields []ast.FieldDecl) {
	bound := boundConstNames(typeParams)
	for _, f := range fields {
		walkArraySizes(bag, f.Type, bound)
	}
}

func boundConstNames(params []ast.TypeParam) map[string]bool {
	out := map[string]bool{}
	for _, p := range params {
		if p.Const {
			out[p.Name] = true
		}
	}
	return out
}

func walkArraySizes(bag *diagnostics.Bag, t ast.TypeExpr, bound map[string]bool) {
	switch tt := t.(type) {
	case *ast.ArrayType:
		if tt.Size != nil {
			checkConstExprBound(bag, tt.Size, bound)
		}
		walkArraySizes(bag, tt.Elem, bound)
	case *ast.NamedType:
		for _, a := range tt.Args {
			walkArraySizes(bag, a, bound)
		}
	}
}

// checkConstExprBound reports CONST-UNBOUND-PARAM for any identifier
// reference inside a const array-size expression that isn't one of the
// enclosing declaration's own const type parameters.
func checkConstExprBound(bag *diagnostics.Bag, expr ast.Expression, bound map[string]bool) {
	switch e := expr.(type) {
	case *ast.Identifier:
		if !bound[e.Name] {
			bag.Add(diagnostics.New(diagnostics.CodeConstUnboundParam, e.Span(),
				"const expression references unbound parameter %s", e.Name))
		}
	case *ast.BinaryExpr:
		checkConstExprBound(bag, e.Left, bound)
		checkConstExprBound(bag, e.Right, bound)
	}
}

// CheckCast validates an `as` cast's legality once both operand types are
// known (post-HM), per §4.4: numeric widening is safe, float->int is a
// lossy warning, and a non-numeric cast is an error.
func CheckCast(bag *diagnostics.Bag, from, to typesystem.Type, span token.Span) {
	fp, fromOK := from.(typesystem.Primitive)
	tp, toOK := to.(typesystem.Primitive)
	if !fromOK || !toOK || !isNumeric(fp.Name) || !isNumeric(tp.Name) {
		bag.Add(diagnostics.New(diagnostics.CodeTypeCast, span, "cannot cast %s to %s", from, to))
		return
	}
	if fp.Name == config.PrimFloat && (tp.Name == config.PrimInt || tp.Name == config.PrimUSize) {
		bag.Add(diagnostics.NewWarning(diagnostics.CodeLossyCast, span,
			"cast from %s to %s is lossy", fp.Name, tp.Name))
	}
}

func isNumeric(p config.Primitive) bool {
	return p == config.PrimInt || p == config.PrimFloat || p == config.PrimUSize
}

// walkMacros recursively finds MacroCall nodes in stmt and reports
// UNRESOLVED_MACRO for any name outside the fixed built-in set.
func walkMacros(bag *diagnostics.Bag, node ast.Node) {
	switch n := node.(type) {
	case *ast.MacroCall:
		if !config.BuiltinMacros[n.Name] {
			bag.Add(diagnostics.New(diagnostics.CodeUnresolvedMacro, n.Span(), "unresolved macro %s", n.Name))
		}
		for _, a := range n.Args {
			walkMacros(bag, a)
		}
	case *ast.FunctionDecl:
		if n.Body != nil {
			walkMacros(bag, n.Body)
		}
	case *ast.Block:
		if n == nil {
			return
		}
		for _, s := range n.Statements {
			walkMacros(bag, s)
		}
	case *ast.ExprStmt:
		walkMacros(bag, n.Expr)
	case *ast.LetStmt:
		walkMacros(bag, n.Value)
	case *ast.ReturnStmt:
		if n.Value != nil {
			walkMacros(bag, n.Value)
		}
	case *ast.IfStmt:
		walkMacros(bag, n.Cond)
		walkMacros(bag, n.Then)
		if n.Else != nil {
			walkMacros(bag, n.Else)
		}
	case *ast.WhileStmt:
		walkMacros(bag, n.Cond)
		walkMacros(bag, n.Body)
	case *ast.MatchStmt:
		walkMacros(bag, n.Scrutinee)
		for _, arm := range n.Arms {
			walkMacros(bag, arm.Body)
		}
	case *ast.BinaryExpr:
		walkMacros(bag, n.Left)
		walkMacros(bag, n.Right)
	case *ast.CallExpr:
		for _, a := range n.Args {
			walkMacros(bag, a)
		}
	case *ast.ImplDecl:
		for _, m := range n.Methods {
			walkMacros(bag, m)
		}
	}
}
