package infer

import (
	"fmt"

	"github.com/luminalang/lumina/internal/ast"
	"github.com/luminalang/lumina/internal/config"
	"github.com/luminalang/lumina/internal/diagnostics"
	"github.com/luminalang/lumina/internal/typesystem"
)

func (inf *inferer) record(n ast.Expression, t typesystem.Type) typesystem.Type {
	inf.result.ExprTypes[n.ID()] = t
	return t
}

func (inf *inferer) inferExpr(sc *scope, expr ast.Expression, fctx *funcCtx) typesystem.Type {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		if e.Suffix != "" {
			return inf.record(e, typesystem.Primitive{Name: config.NormalizePrimitive(e.Suffix)})
		}
		return inf.record(e, typesystem.Primitive{Name: config.PrimInt})
	case *ast.FloatLiteral:
		return inf.record(e, typesystem.Primitive{Name: config.PrimFloat})
	case *ast.StringLiteral:
		return inf.record(e, typesystem.Primitive{Name: config.PrimString})
	case *ast.BoolLiteral:
		return inf.record(e, typesystem.Primitive{Name: config.PrimBool})
	case *ast.InterpolatedString:
		for _, part := range e.Parts {
			if part.Expr != nil {
				t := inf.inferExpr(sc, part.Expr, fctx)
				if pruned := inf.st.Prune(t); isVoid(pruned) {
					inf.bag.Add(diagnostics.New(diagnostics.CodeStringInterpVoid, part.Expr.Span(),
						"interpolated expression has void type"))
				}
			}
		}
		return inf.record(e, typesystem.Primitive{Name: config.PrimString})
	case *ast.ArrayLiteral:
		elem := inf.st.Fresh()
		for _, el := range e.Elements {
			t := inf.inferExpr(sc, el, fctx)
			inf.unify(elem, t, el.Span())
		}
		return inf.record(e, typesystem.ADT{Name: "Array", Params: []typesystem.Type{elem}})
	case *ast.ArrayRepeatLiteral:
		valT := inf.inferExpr(sc, e.Value, fctx)
		countT := inf.inferExpr(sc, e.Count, fctx)
		if !isIntLike(inf.st.Prune(countT)) {
			inf.bag.Add(diagnostics.New(diagnostics.CodeArrayRepeatNotInt, e.Count.Span(),
				"array repeat count must be integer"))
		}
		return inf.record(e, typesystem.ADT{Name: "Array", Params: []typesystem.Type{valT}})
	case *ast.RangeExpr:
		if e.Start != nil {
			st := inf.inferExpr(sc, e.Start, fctx)
			if !isIntLike(inf.st.Prune(st)) {
				inf.bag.Add(diagnostics.New(diagnostics.CodeRangeType, e.Start.Span(), "range bound must be integer"))
			}
		}
		if e.End != nil {
			et := inf.inferExpr(sc, e.End, fctx)
			if !isIntLike(inf.st.Prune(et)) {
				inf.bag.Add(diagnostics.New(diagnostics.CodeRangeType, e.End.Span(), "range bound must be integer"))
			}
		}
		return inf.record(e, typesystem.ADT{Name: "Range", Params: []typesystem.Type{typesystem.Primitive{Name: config.PrimInt}}})
	case *ast.Identifier:
		if t, ok := sc.lookup(e.Name); ok {
			return inf.record(e, t)
		}
		if scheme, ok := inf.global[e.Name]; ok {
			return inf.record(e, inf.st.Instantiate(scheme))
		}
		inf.bag.Add(diagnostics.New(diagnostics.CodeUnifyFailure, e.Span(), "undefined identifier %s", e.Name))
		return inf.record(e, inf.st.Fresh())
	case *ast.BinaryExpr:
		return inf.inferBinary(sc, e, fctx)
	case *ast.MemberExpr:
		return inf.inferMember(sc, e, fctx)
	case *ast.IndexExpr:
		return inf.inferIndex(sc, e, fctx)
	case *ast.CallExpr:
		return inf.inferCall(sc, e, fctx)
	case *ast.StructLiteral:
		return inf.inferStructLiteral(sc, e, fctx)
	case *ast.MatchExpr:
		return inf.inferMatchExpr(sc, e, fctx)
	case *ast.LambdaExpr:
		return inf.inferLambda(sc, e, fctx)
	case *ast.TryExpr:
		return inf.inferTry(sc, e, fctx)
	case *ast.AsExpr:
		operandT := inf.inferExpr(sc, e.Operand, fctx)
		_ = operandT
		return inf.record(e, inf.typeExprToType(e.TargetType, nil, false))
	case *ast.AwaitExpr:
		return inf.inferAwait(sc, e, fctx)
	case *ast.SelectExpr:
		return inf.inferSelect(sc, e, fctx)
	case *ast.IsExpr:
		inf.inferExpr(sc, e.Operand, fctx)
		return inf.record(e, typesystem.Primitive{Name: config.PrimBool})
	case *ast.MacroCall:
		return inf.inferMacroCall(sc, e, fctx)
	default:
		panic(fmt.Sprintf("infer: unhandled expression kind %T", expr))
	}
}

// inferMacroCall gives the one HM-relevant built-in macro, `vec!`, the array
// type its elements unify to. Resolving whether a macro name is known at all
// is the semantic analyzer's job (UNRESOLVED_MACRO); HM only needs a type for
// the expression when the name is one it understands.
func (inf *inferer) inferMacroCall(sc *scope, e *ast.MacroCall, fctx *funcCtx) typesystem.Type {
	if e.Name != "vec!" {
		return inf.record(e, inf.st.Fresh())
	}
	elem := inf.st.Fresh()
	for _, a := range e.Args {
		t := inf.inferExpr(sc, a, fctx)
		inf.unify(elem, t, a.Span())
	}
	return inf.record(e, typesystem.ADT{Name: "Array", Params: []typesystem.Type{elem}})
}

func isVoid(t typesystem.Type) bool {
	p, ok := t.(typesystem.Primitive)
	return ok && p.Name == config.PrimVoid
}

func isIntLike(t typesystem.Type) bool {
	p, ok := t.(typesystem.Primitive)
	return ok && (p.Name == config.PrimInt || p.Name == config.PrimUSize)
}

var comparisonOps = map[string]bool{"<": true, "<=": true, ">": true, ">=": true, "==": true, "!=": true}
var logicalOps = map[string]bool{"&&": true, "||": true}

func (inf *inferer) inferBinary(sc *scope, e *ast.BinaryExpr, fctx *funcCtx) typesystem.Type {
	lt := inf.inferExpr(sc, e.Left, fctx)
	rt := inf.inferExpr(sc, e.Right, fctx)
	switch {
	case logicalOps[e.Op]:
		b := typesystem.Primitive{Name: config.PrimBool}
		inf.unify(b, lt, e.Left.Span())
		inf.unify(b, rt, e.Right.Span())
		return inf.record(e, b)
	case comparisonOps[e.Op]:
		inf.unify(lt, rt, e.Span())
		return inf.record(e, typesystem.Primitive{Name: config.PrimBool})
	default:
		inf.unify(lt, rt, e.Span())
		return inf.record(e, inf.st.Prune(lt))
	}
}

func (inf *inferer) inferMember(sc *scope, e *ast.MemberExpr, fctx *funcCtx) typesystem.Type {
	objT := inf.inferExpr(sc, e.Object, fctx)
	var fieldT typesystem.Type = inf.st.Fresh()
	if inf.opts.RowPolymorphism {
		tail := inf.st.Fresh()
		row := typesystem.Row{Fields: []typesystem.RowField{{Name: e.Field, Type: fieldT}}, Tail: tail}
		inf.unify(row, objT, e.Span())
	} else {
		adt, ok := inf.st.Prune(objT).(typesystem.ADT)
		if !ok {
			inf.bag.Add(diagnostics.New(diagnostics.CodeUnifyFailure, e.Span(), "member access on non-struct type"))
			return inf.record(e, fieldT)
		}
		found := false
		for _, f := range inf.structs[adt.Name] {
			if f.Name == e.Field {
				fieldT = inf.typeExprToType(f.Type, nil, false)
				found = true
				break
			}
		}
		if !found {
			inf.bag.Add(diagnostics.New(diagnostics.CodeUnifyFailure, e.Span(), "unknown field %s on %s", e.Field, adt.Name))
		}
	}
	return inf.record(e, fieldT)
}

func (inf *inferer) inferIndex(sc *scope, e *ast.IndexExpr, fctx *funcCtx) typesystem.Type {
	objT := inf.inferExpr(sc, e.Object, fctx)
	idxT := inf.st.Prune(inf.inferExpr(sc, e.Index, fctx))

	obj := inf.st.Prune(objT)
	if _, isRange := idxT.(typesystem.ADT); isRange {
		if r, ok := idxT.(typesystem.ADT); ok && r.Name == "Range" {
			if s, ok := obj.(typesystem.Primitive); ok && s.Name == config.PrimString {
				return inf.record(e, typesystem.Primitive{Name: config.PrimString})
			}
			if a, ok := obj.(typesystem.ADT); ok && a.Name == "Array" {
				return inf.record(e, a)
			}
		}
	}
	switch o := obj.(type) {
	case typesystem.ADT:
		if o.Name == "Array" && len(o.Params) == 1 {
			return inf.record(e, o.Params[0])
		}
	case typesystem.Primitive:
		if o.Name == config.PrimString {
			return inf.record(e, typesystem.Primitive{Name: config.PrimString})
		}
	}
	inf.bag.Add(diagnostics.New(diagnostics.CodeInvalidIndex, e.Span(), "value is not indexable with %s", idxT))
	return inf.record(e, inf.st.Fresh())
}

func (inf *inferer) inferStructLiteral(sc *scope, e *ast.StructLiteral, fctx *funcCtx) typesystem.Type {
	fields, known := inf.structs[e.TypeName]
	for _, fi := range e.Fields {
		valT := inf.inferExpr(sc, fi.Value, fctx)
		if known {
			for _, fd := range fields {
				if fd.Name == fi.Name {
					expected := inf.typeExprToType(fd.Type, nil, false)
					inf.unify(expected, valT, fi.Value.Span())
				}
			}
		}
	}
	return inf.record(e, typesystem.ADT{Name: e.TypeName})
}

func (inf *inferer) inferMatchExpr(sc *scope, e *ast.MatchExpr, fctx *funcCtx) typesystem.Type {
	scrutT := inf.inferExpr(sc, e.Scrutinee, fctx)
	result := inf.st.Fresh()
	for _, arm := range e.Arms {
		armScope := newScope(sc)
		inf.bindPattern(armScope, arm.Pattern, scrutT)
		if arm.Guard != nil {
			g := inf.inferExpr(armScope, arm.Guard, fctx)
			inf.unify(typesystem.Primitive{Name: config.PrimBool}, g, arm.Guard.Span())
		}
		bodyT := inf.inferExpr(armScope, arm.Body, fctx)
		inf.unify(result, bodyT, arm.Body.Span())
	}
	return inf.record(e, result)
}

func (inf *inferer) inferLambda(sc *scope, e *ast.LambdaExpr, fctx *funcCtx) typesystem.Type {
	lamScope := newScope(sc)
	args := make([]typesystem.Type, len(e.Params))
	for i, p := range e.Params {
		var t typesystem.Type
		if p.Annotation != nil {
			t = inf.typeExprToType(p.Annotation, nil, false)
		} else {
			t = inf.st.Fresh()
		}
		args[i] = t
		lamScope.define(p.Name, t)
	}
	var ret typesystem.Type
	if e.ReturnType != nil {
		ret = inf.typeExprToType(e.ReturnType, nil, false)
	} else {
		ret = inf.st.Fresh()
	}
	if e.Async {
		ret = typesystem.Promise{Inner: ret}
	}
	lamCtx := &funcCtx{declaredRet: ret, isAsync: e.Async}
	if e.Async {
		lamCtx.declaredRet = ret.(typesystem.Promise).Inner
	}
	if e.IsBlockForm {
		inf.checkBlock(lamScope, e.BlockBody, lamCtx)
	} else {
		bodyT := inf.inferExpr(lamScope, e.ExprBody, fctx)
		inf.unify(lamCtx.declaredRet, bodyT, e.ExprBody.Span())
	}
	return inf.record(e, typesystem.Function{Args: args, Return: ret})
}

func (inf *inferer) inferTry(sc *scope, e *ast.TryExpr, fctx *funcCtx) typesystem.Type {
	operandT := inf.st.Prune(inf.inferExpr(sc, e.Operand, fctx))
	adt, ok := operandT.(typesystem.ADT)
	if !ok || adt.Name != "Result" {
		inf.bag.Add(diagnostics.New(diagnostics.CodeTryNotResult, e.Span(), "`?` operand is not a Result"))
		return inf.record(e, inf.st.Fresh())
	}
	var okT, errT typesystem.Type = inf.st.Fresh(), inf.st.Fresh()
	if len(adt.Params) == 2 {
		okT, errT = adt.Params[0], adt.Params[1]
	}
	if fctx == nil {
		return inf.record(e, okT)
	}
	retAdt, ok := inf.st.Prune(fctx.declaredRet).(typesystem.ADT)
	if !ok || retAdt.Name != "Result" {
		inf.bag.Add(diagnostics.New(diagnostics.CodeTryReturnMismatch, e.Span(),
			"`?` used in a function whose return type is not Result"))
		return inf.record(e, okT)
	}
	if len(retAdt.Params) == 2 {
		if err := inf.st.Unify(retAdt.Params[1], errT); err != nil {
			inf.bag.Add(diagnostics.New(diagnostics.CodeTryReturnMismatch, e.Span(),
				"`?` error type does not match function's Result error type"))
		}
	}
	return inf.record(e, okT)
}

func (inf *inferer) inferAwait(sc *scope, e *ast.AwaitExpr, fctx *funcCtx) typesystem.Type {
	if fctx == nil || !fctx.isAsync {
		inf.bag.Add(diagnostics.New(diagnostics.CodeAwaitOutsideAsync, e.Span(), "`await` used outside an async function"))
	}
	operandT := inf.st.Prune(inf.inferExpr(sc, e.Operand, fctx))
	if p, ok := operandT.(typesystem.Promise); ok {
		return inf.record(e, p.Inner)
	}
	inner := inf.st.Fresh()
	inf.unify(typesystem.Promise{Inner: inner}, operandT, e.Span())
	return inf.record(e, inner)
}

// inferCall resolves a free-function call, an Enum.Variant(args) constructor
// call, or a recv.method(args) call, instantiating the callee's scheme with
// fresh variables and recording the per-call-site instantiation in
// Result.CallSigs for the monomorphizer (§4.2, §4.5).
func (inf *inferer) inferCall(sc *scope, e *ast.CallExpr, fctx *funcCtx) typesystem.Type {
	argTypes := make([]typesystem.Type, len(e.Args))
	for i, a := range e.Args {
		argTypes[i] = inf.inferExpr(sc, a, fctx)
	}

	if e.EnumQualifier != "" {
		variant := inf.lookupVariant(e.EnumQualifier, e.Variant)
		for i, a := range e.Args {
			if variant != nil && i < len(variant.Payload) {
				expected := inf.typeExprToType(variant.Payload[i], nil, false)
				inf.unify(expected, argTypes[i], a.Span())
			}
		}
		return inf.record(e, typesystem.ADT{Name: e.EnumQualifier})
	}

	if e.Receiver != nil {
		// Method resolution depends on the trait/impl registry built by the
		// semantic analyzer, which hasn't run yet at HM time; record a fresh
		// result type and let the analyzer re-check call compatibility once
		// impls are known.
		inf.inferExpr(sc, e.Receiver, fctx)
		return inf.record(e, inf.st.Fresh())
	}

	name, ok := calleeName(e.Callee)
	if !ok {
		calleeT := inf.st.Prune(inf.inferExpr(sc, e.Callee, fctx))
		fn, ok := calleeT.(typesystem.Function)
		if !ok {
			inf.bag.Add(diagnostics.New(diagnostics.CodeUnifyFailure, e.Span(), "called value is not a function"))
			return inf.record(e, inf.st.Fresh())
		}
		if len(fn.Args) != len(argTypes) {
			inf.bag.Add(diagnostics.New(diagnostics.CodeArityMismatch, e.Span(),
				"expected %d arguments, found %d", len(fn.Args), len(argTypes)))
		}
		for i := 0; i < len(fn.Args) && i < len(argTypes); i++ {
			inf.unify(fn.Args[i], argTypes[i], e.Args[i].Span())
		}
		return inf.record(e, fn.Return)
	}

	scheme, ok := inf.global[name]
	if !ok {
		inf.bag.Add(diagnostics.New(diagnostics.CodeUnifyFailure, e.Span(), "undefined function %s", name))
		return inf.record(e, inf.st.Fresh())
	}
	instantiated, subst := inf.st.InstantiateWithSubst(scheme)
	fn, ok := instantiated.(typesystem.Function)
	if !ok {
		inf.bag.Add(diagnostics.New(diagnostics.CodeUnifyFailure, e.Span(), "%s is not callable", name))
		return inf.record(e, inf.st.Fresh())
	}
	if len(fn.Args) != len(argTypes) {
		inf.bag.Add(diagnostics.New(diagnostics.CodeArityMismatch, e.Span(),
			"expected %d arguments, found %d", len(fn.Args), len(argTypes)))
	}
	for i := 0; i < len(fn.Args) && i < len(argTypes); i++ {
		inf.unify(fn.Args[i], argTypes[i], e.Args[i].Span())
	}

	// The call carries no explicit type-argument syntax (spec's grammar has
	// none); the concrete per-parameter types monomorphization keys on come
	// from this call's own unification, read back off the fresh variables
	// Instantiate created for scheme.Quantified, pruned now that the
	// argument unifications above have resolved them.
	typeArgs := make([]typesystem.Type, len(scheme.Quantified))
	for i, q := range scheme.Quantified {
		typeArgs[i] = inf.st.Prune(subst[q])
	}
	inf.result.CallSigs[e.ID()] = CallSig{Callee: name, Instantiated: instantiated, TypeArgs: typeArgs}

	return inf.record(e, fn.Return)
}

func calleeName(callee ast.Expression) (string, bool) {
	if id, ok := callee.(*ast.Identifier); ok {
		return id.Name, true
	}
	return "", false
}

func (inf *inferer) inferSelect(sc *scope, e *ast.SelectExpr, fctx *funcCtx) typesystem.Type {
	result := inf.st.Fresh()
	for _, arm := range e.Arms {
		awaitedT := inf.st.Prune(inf.inferExpr(sc, arm.Awaited, fctx))
		inner := inf.st.Fresh()
		inf.unify(typesystem.Promise{Inner: inner}, awaitedT, arm.Awaited.Span())
		armScope := newScope(sc)
		armScope.define(arm.Binding, inner)
		bodyT := inf.inferExpr(armScope, arm.Body, fctx)
		inf.unify(result, bodyT, arm.Body.Span())
	}
	return inf.record(e, result)
}
