// Package infer implements the Hindley-Milner inferencer of §4.2: two
// passes over the program (collect stub schemes, then solve bodies),
// producing annotated type maps and diagnostics without mutating the AST.
//
// Grounded on the teacher's internal/analyzer two-phase "headers then
// bodies" split (see analyzer.IsHeadersAnalyzed/IsBodiesAnalyzed in
// internal/analyzer/analyzer.go) and its style of an inference-time struct
// threading a shared *typesystem.State — generalized from funxy's own
// TCon/TApp lattice to this spec's primitive/function/adt/row/hole/promise
// types and its wrapper-barrier unifier.
package infer

import (
	"fmt"

	"github.com/luminalang/lumina/internal/ast"
	"github.com/luminalang/lumina/internal/config"
	"github.com/luminalang/lumina/internal/diagnostics"
	"github.com/luminalang/lumina/internal/token"
	"github.com/luminalang/lumina/internal/typesystem"
)

// Options configures one infer_program run.
type Options struct {
	RowPolymorphism bool
	Wrappers        map[string]bool
}

func DefaultOptions() Options {
	return Options{RowPolymorphism: true, Wrappers: config.DefaultWrapperSet()}
}

// CallSig is the instantiation recorded at one generic call site, keyed by
// the call expression's node id. Monomorphization reads this to decide which
// concrete specialization a call site needs (§4.2, §4.5).
type CallSig struct {
	Callee       string
	Instantiated typesystem.Type   // the callee's type after substituting fresh vars
	TypeArgs     []typesystem.Type // concrete type arguments, in declared-param order
}

// Result is everything downstream phases need from inference (§4.2 entry
// contract).
type Result struct {
	Diagnostics   *diagnostics.Bag
	ExprTypes     map[int]typesystem.Type // AST node id -> inferred type
	CallSigs      map[int]CallSig         // call node id -> instantiation
	FnReturnType  map[string]typesystem.Type
	StructFields  map[string][]ast.FieldDecl
	EnumVariants  map[string]ast.EnumVariant // "Enum.Variant" -> decl
	EnumOf        map[string]string          // variant name -> owning enum (for bare variant refs)
	NarrowedTypes map[int]typesystem.Type    // id of an `is`-tested identifier in an if condition -> its (unchanged) ADT type
	State         *typesystem.State
}

type fnInfo struct {
	decl      *ast.FunctionDecl
	scheme    typesystem.Scheme
	paramVars map[string]typesystem.Type // namespaced rigid vars for this fn's TypeParams
}

type inferer struct {
	st       *typesystem.State
	opts     Options
	bag      *diagnostics.Bag
	global   map[string]typesystem.Scheme
	fns      map[string]*fnInfo
	asyncFns map[string]bool
	structs  map[string][]ast.FieldDecl
	structTP map[string][]ast.TypeParam
	enums    map[string][]ast.EnumVariant
	enumOf   map[string]string
	result   *Result
}

// InferProgram runs the full two-pass algorithm described in §4.2.
func InferProgram(prog *ast.Program, opts Options) *Result {
	if opts.Wrappers == nil {
		opts.Wrappers = config.DefaultWrapperSet()
	}
	inf := &inferer{
		st:       typesystem.NewState(opts.Wrappers),
		opts:     opts,
		bag:      diagnostics.NewBag(),
		global:   map[string]typesystem.Scheme{},
		fns:      map[string]*fnInfo{},
		asyncFns: map[string]bool{},
		structs:  map[string][]ast.FieldDecl{},
		structTP: map[string][]ast.TypeParam{},
		enums:    map[string][]ast.EnumVariant{},
		enumOf:   map[string]string{},
	}
	inf.result = &Result{
		Diagnostics:  inf.bag,
		ExprTypes:    map[int]typesystem.Type{},
		CallSigs:     map[int]CallSig{},
		FnReturnType: map[string]typesystem.Type{},
		StructFields: inf.structs,
		EnumVariants: map[string]ast.EnumVariant{},
		EnumOf:       inf.enumOf,
		NarrowedTypes: map[int]typesystem.Type{},
		State:        inf.st,
	}

	inf.collectDeclarations(prog)
	inf.checkBodies(prog)
	return inf.result
}

func (inf *inferer) collectDeclarations(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		switch d := stmt.(type) {
		case *ast.StructDecl:
			inf.structs[d.Name] = d.Fields
			inf.structTP[d.Name] = d.TypeParams
		case *ast.EnumDecl:
			for _, v := range d.Variants {
				inf.enums[d.Name] = append(inf.enums[d.Name], v)
				inf.enumOf[v.Name] = d.Name
				inf.result.EnumVariants[d.Name+"."+v.Name] = v
			}
		}
	}
	for _, stmt := range prog.Statements {
		if fd, ok := stmt.(*ast.FunctionDecl); ok {
			inf.stubFunction(fd)
		}
	}
}

func (inf *inferer) stubFunction(fd *ast.FunctionDecl) {
	paramVars := map[string]typesystem.Type{}
	var quantified []string
	for _, tp := range fd.TypeParams {
		if tp.Const {
			continue // const params don't participate in HM unification
		}
		id := fd.Name + "#" + tp.Name
		paramVars[tp.Name] = typesystem.Variable{ID: id}
		quantified = append(quantified, id)
	}

	args := make([]typesystem.Type, len(fd.Params))
	for i, p := range fd.Params {
		args[i] = inf.typeExprToType(p.Annotation, paramVars, fd.Params[i].Annotation == nil)
	}
	var ret typesystem.Type
	if fd.ReturnType != nil {
		ret = inf.typeExprToType(fd.ReturnType, paramVars, false)
	} else {
		ret = inf.st.Fresh()
	}
	if fd.Async {
		ret = typesystem.Promise{Inner: ret}
		inf.asyncFns[fd.Name] = true
	}

	fnType := typesystem.Function{Args: args, Return: ret}
	scheme := typesystem.Scheme{Quantified: quantified, Body: fnType}
	inf.global[fd.Name] = scheme
	inf.fns[fd.Name] = &fnInfo{decl: fd, scheme: scheme, paramVars: paramVars}
}

// typeExprToType converts a surface annotation to an inference-time Type.
// When ann is nil, a fresh variable is returned whether or not allowFresh
// is set.
func (inf *inferer) typeExprToType(ann ast.TypeExpr, rigid map[string]typesystem.Type, allowFresh bool) typesystem.Type {
	if ann == nil {
		if allowFresh {
			return inf.st.Fresh()
		}
		return inf.st.Fresh()
	}
	switch t := ann.(type) {
	case *ast.HoleType:
		return typesystem.Hole{Span: t.Span()}
	case *ast.NamedType:
		if rv, ok := rigid[t.Name]; ok && len(t.Args) == 0 {
			return rv
		}
		switch t.Name {
		case "int", "i32", "float", "f64", "string", "bool", "void", "any", "usize", "u32":
			return typesystem.Primitive{Name: config.NormalizePrimitive(t.Name)}
		case "Option", "Result":
			params := make([]typesystem.Type, len(t.Args))
			for i, a := range t.Args {
				params[i] = inf.typeExprToType(a, rigid, false)
			}
			return typesystem.ADT{Name: t.Name, Params: params}
		default:
			params := make([]typesystem.Type, 0, len(t.Args))
			for _, a := range t.Args {
				if isConstArg(a) {
					continue // const args don't participate in HM; monomorphizer handles them
				}
				params = append(params, inf.typeExprToType(a, rigid, false))
			}
			return typesystem.ADT{Name: t.Name, Params: params}
		}
	case *ast.FunctionType:
		args := make([]typesystem.Type, len(t.Params))
		for i, p := range t.Params {
			args[i] = inf.typeExprToType(p, rigid, false)
		}
		return typesystem.Function{Args: args, Return: inf.typeExprToType(t.Return, rigid, false)}
	case *ast.ArrayType:
		return typesystem.ADT{Name: "Array", Params: []typesystem.Type{inf.typeExprToType(t.Elem, rigid, false)}}
	case *ast.RecordType:
		fields := make([]typesystem.RowField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = typesystem.RowField{Name: f.Name, Type: inf.typeExprToType(f.Type, rigid, false)}
		}
		var tail typesystem.Type
		if t.Open {
			tail = inf.st.Fresh()
		}
		return typesystem.Row{Fields: fields, Tail: tail}
	default:
		return inf.st.Fresh()
	}
}

// isConstArg reports whether a type-argument slot is actually a const-value
// expression smuggled through the TypeExpr slot (e.g. the `3` in Vec<i32,3>
// parsed as a NamedType{Name:"3"}). The semantic analyzer and const
// evaluator are the ones that interpret these; HM just skips them.
func isConstArg(t ast.TypeExpr) bool {
	nt, ok := t.(*ast.NamedType)
	if !ok || len(nt.Args) != 0 {
		return false
	}
	for _, c := range nt.Name {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(nt.Name) > 0
}

func (inf *inferer) checkBodies(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		if fd, ok := stmt.(*ast.FunctionDecl); ok {
			inf.checkFunctionBody(fd)
		}
	}
}

// scope is a chain of lexical environments; a fresh map per block keeps the
// parent's bindings visible without mutating them (§4.6 also relies on block
// scoping for its let-suffix renaming).
type scope struct {
	vars   map[string]typesystem.Type
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: map[string]typesystem.Type{}, parent: parent}
}

func (s *scope) lookup(name string) (typesystem.Type, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (s *scope) define(name string, t typesystem.Type) { s.vars[name] = t }

type funcCtx struct {
	fd           *ast.FunctionDecl
	declaredRet  typesystem.Type // unwrapped (non-Promise) return type
	isAsync      bool
}

func (inf *inferer) checkFunctionBody(fd *ast.FunctionDecl) {
	info := inf.fns[fd.Name]
	fnType := info.scheme.Body.(typesystem.Function)

	sc := newScope(nil)
	for i, p := range fd.Params {
		sc.define(p.Name, fnType.Args[i])
	}

	declaredRet := fnType.Return
	if fd.Async {
		declaredRet = fnType.Return.(typesystem.Promise).Inner
	}
	fctx := &funcCtx{fd: fd, declaredRet: declaredRet, isAsync: fd.Async}

	inf.checkBlock(sc, fd.Body, fctx)
	inf.result.FnReturnType[fd.Name] = declaredRet
}

func (inf *inferer) checkBlock(parent *scope, blk *ast.Block, fctx *funcCtx) {
	sc := newScope(parent)
	for _, stmt := range blk.Statements {
		inf.checkStmt(sc, stmt, fctx)
	}
}

func (inf *inferer) checkStmt(sc *scope, stmt ast.Statement, fctx *funcCtx) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		valType := inf.inferExpr(sc, s.Value, fctx)
		if s.Annotation != nil {
			ann := inf.typeExprToType(s.Annotation, nil, false)
			inf.unify(ann, valType, s.Span())
			valType = ann
		}
		if s.Pattern != nil {
			inf.bindPattern(sc, s.Pattern, valType)
		} else {
			sc.define(s.Name, valType)
		}
	case *ast.ReturnStmt:
		var got typesystem.Type = typesystem.Primitive{Name: config.PrimVoid}
		if s.Value != nil {
			got = inf.inferExpr(sc, s.Value, fctx)
		}
		inf.unify(fctx.declaredRet, got, s.Span())
	case *ast.ExprStmt:
		inf.inferExpr(sc, s.Expr, fctx)
	case *ast.Block:
		inf.checkBlock(sc, s, fctx)
	case *ast.IfStmt:
		inf.checkIf(sc, s, fctx)
	case *ast.WhileStmt:
		condT := inf.inferExpr(sc, s.Cond, fctx)
		inf.unify(typesystem.Primitive{Name: config.PrimBool}, condT, s.Cond.Span())
		inf.checkBlock(sc, s.Body, fctx)
	case *ast.MatchStmt:
		inf.checkMatchStmt(sc, s, fctx)
	case *ast.ImportStmt, *ast.TypeAliasDecl, *ast.TraitDecl, *ast.ImplDecl, *ast.StructDecl, *ast.EnumDecl, *ast.FunctionDecl:
		// Nested/global declarations have no body-position HM obligations here.
	default:
		panic(fmt.Sprintf("infer: unhandled statement kind %T", stmt))
	}
}

func (inf *inferer) checkIf(sc *scope, s *ast.IfStmt, fctx *funcCtx) {
	condT := inf.inferExpr(sc, s.Cond, fctx)
	inf.unify(typesystem.Primitive{Name: config.PrimBool}, condT, s.Cond.Span())

	thenScope := newScope(sc)
	inf.applyNarrowing(thenScope, s.Cond, true)
	inf.checkBlock(thenScope, s.Then, fctx)

	if s.Else != nil {
		elseScope := newScope(sc)
		inf.applyNarrowing(elseScope, s.Cond, false)
		inf.checkStmt(elseScope, s.Else, fctx)
	}
}

// applyNarrowing records, for an if condition of the form `ident is Variant`
// whose identifier has an ADT type, that ADT type in NarrowedTypes under the
// condition identifier's id (for the then-branch always, for the else-branch
// only when the enum has two variants). It does not change the identifier's
// type in the branch scope, and no later phase reads NarrowedTypes.
func (inf *inferer) applyNarrowing(sc *scope, cond ast.Expression, thenBranch bool) {
	isExpr, ok := cond.(*ast.IsExpr)
	if !ok {
		return
	}
	ident, ok := isExpr.Operand.(*ast.Identifier)
	if !ok {
		return
	}
	baseT, ok := sc.lookup(ident.Name)
	if !ok {
		return
	}
	adt, ok := inf.st.Prune(baseT).(typesystem.ADT)
	if !ok {
		return
	}
	if thenBranch {
		// Narrowed type equals the tested ADT itself; payload precision is
		// resolved structurally by the pattern machinery, not by renaming the
		// scrutinee's nominal type here. Recorded in NarrowedTypes only.
		inf.result.NarrowedTypes[ident.ID()] = adt
		return
	}
	variants := inf.enums[adt.Name]
	if len(variants) != 2 {
		return
	}
	// Two-variant enum: the else-branch rules out the tested variant, so the
	// identifier is narrowed to the other one. The nominal type is unchanged
	// (Lumina has no per-variant types), so only the ADT itself is recorded.
	inf.result.NarrowedTypes[ident.ID()] = adt
}

func (inf *inferer) checkMatchStmt(sc *scope, s *ast.MatchStmt, fctx *funcCtx) {
	scrutT := inf.inferExpr(sc, s.Scrutinee, fctx)
	for _, arm := range s.Arms {
		armScope := newScope(sc)
		inf.bindPattern(armScope, arm.Pattern, scrutT)
		if arm.Guard != nil {
			guardT := inf.inferExpr(armScope, arm.Guard, fctx)
			inf.unify(typesystem.Primitive{Name: config.PrimBool}, guardT, arm.Guard.Span())
		}
		inf.checkBlock(armScope, arm.Body, fctx)
	}
}

func (inf *inferer) bindPattern(sc *scope, pat ast.Pattern, scrutT typesystem.Type) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
	case *ast.BindingPattern:
		sc.define(p.Name, scrutT)
	case *ast.LiteralPattern:
		litT := inf.inferExpr(sc, p.Value, nil)
		inf.unify(scrutT, litT, p.Span())
	case *ast.TuplePattern:
		for i, sub := range p.Elements {
			elemVar := inf.st.Fresh()
			_ = i
			inf.bindPattern(sc, sub, elemVar)
		}
	case *ast.VariantPattern:
		enumName := p.EnumName
		if enumName == "" {
			enumName = inf.enumOf[p.Variant]
		}
		inf.unify(typesystem.ADT{Name: enumName}, scrutT, p.Span())
		variant := inf.lookupVariant(enumName, p.Variant)
		for i, sub := range p.SubPatterns {
			var fieldT typesystem.Type = inf.st.Fresh()
			if variant != nil && i < len(variant.Payload) {
				fieldT = inf.typeExprToType(variant.Payload[i], nil, false)
			}
			inf.bindPattern(sc, sub, fieldT)
		}
	default:
		panic(fmt.Sprintf("infer: unhandled pattern kind %T", pat))
	}
}

func (inf *inferer) lookupVariant(enumName, variant string) *ast.EnumVariant {
	for _, v := range inf.enums[enumName] {
		if v.Name == variant {
			vv := v
			return &vv
		}
	}
	return nil
}

func (inf *inferer) unify(expected, actual typesystem.Type, span token.Span) bool {
	if err := inf.st.Unify(expected, actual); err != nil {
		inf.bag.Add(diagnostics.New(diagnostics.CodeUnifyFailure, span,
			"type mismatch: expected %s, found %s", inf.st.Prune(expected), inf.st.Prune(actual)))
		return false
	}
	return true
}
