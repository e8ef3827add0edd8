package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminalang/lumina/internal/ir"
)

func num(v float64) *ir.Number   { return &ir.Number{Value: v} }
func boolean(v bool) *ir.Boolean { return &ir.Boolean{Value: v} }
func ident(n string) *ir.Identifier { return &ir.Identifier{Name: n} }

func TestFoldConstantsEvaluatesArithmetic(t *testing.T) {
	body := []ir.Stmt{&ir.Return{Value: &ir.Binary{Op: "+", Left: num(2), Right: num(3)}}}
	out, changed := foldConstants(body)
	assert.True(t, changed)
	ret := out[0].(*ir.Return)
	n := ret.Value.(*ir.Number)
	assert.Equal(t, float64(5), n.Value)
}

func TestFoldConstantsLeavesDivisionByZeroConstantUnfolded(t *testing.T) {
	bin := &ir.Binary{Op: "/", Left: num(4), Right: num(0)}
	body := []ir.Stmt{&ir.Return{Value: bin}}
	out, changed := foldConstants(body)
	assert.False(t, changed)
	ret := out[0].(*ir.Return)
	_, stillBinary := ret.Value.(*ir.Binary)
	assert.True(t, stillBinary)
}

func TestAlgebraicIdentityXPlusZero(t *testing.T) {
	body := []ir.Stmt{&ir.Return{Value: &ir.Binary{Op: "+", Left: ident("x"), Right: num(0)}}}
	out, changed := applyAlgebraicIdentities(body)
	assert.True(t, changed)
	ret := out[0].(*ir.Return)
	assert.Equal(t, "x", ret.Value.(*ir.Identifier).Name)
}

func TestAlgebraicIdentityXTimesZeroIsZeroWhenPure(t *testing.T) {
	body := []ir.Stmt{&ir.Return{Value: &ir.Binary{Op: "*", Left: ident("x"), Right: num(0)}}}
	out, changed := applyAlgebraicIdentities(body)
	assert.True(t, changed)
	ret := out[0].(*ir.Return)
	assert.Equal(t, float64(0), ret.Value.(*ir.Number).Value)
}

func TestAlgebraicIdentityDoesNotFoldImpureMultiplyByZero(t *testing.T) {
	call := &ir.Call{Callee: "f"}
	body := []ir.Stmt{&ir.Return{Value: &ir.Binary{Op: "*", Left: call, Right: num(0)}}}
	out, changed := applyAlgebraicIdentities(body)
	assert.False(t, changed)
	ret := out[0].(*ir.Return)
	_, stillBinary := ret.Value.(*ir.Binary)
	assert.True(t, stillBinary)
}

func TestPropagateConstantsReplacesUnassignedLetReads(t *testing.T) {
	body := []ir.Stmt{
		&ir.Let{Name: "x", Value: num(7)},
		&ir.Return{Value: ident("x")},
	}
	out, changed := propagateConstants(body)
	assert.True(t, changed)
	ret := out[1].(*ir.Return)
	assert.Equal(t, float64(7), ret.Value.(*ir.Number).Value)
}

func TestPropagateConstantsSkipsReassignedNames(t *testing.T) {
	body := []ir.Stmt{
		&ir.Let{Name: "x", Value: num(7)},
		&ir.Assign{Name: "x", Value: num(8)},
		&ir.Return{Value: ident("x")},
	}
	_, changed := propagateConstants(body)
	assert.False(t, changed)
}

func TestFoldBranchesFlattensTrueCondition(t *testing.T) {
	body := []ir.Stmt{
		&ir.If{Cond: boolean(true), Then: []ir.Stmt{&ir.Return{Value: num(1)}}, Else: []ir.Stmt{&ir.Return{Value: num(2)}}},
	}
	out, changed := foldBranches(body)
	assert.True(t, changed)
	require.Len(t, out, 1)
	ret := out[0].(*ir.Return)
	assert.Equal(t, float64(1), ret.Value.(*ir.Number).Value)
}

func TestEliminateDeadStoresDropsUnreadPureLet(t *testing.T) {
	body := []ir.Stmt{
		&ir.Let{Name: "unused", Value: num(1)},
		&ir.Return{Value: num(2)},
	}
	out, changed := eliminateDeadStores(body)
	assert.True(t, changed)
	require.Len(t, out, 1)
}

func TestEliminateDeadStoresKeepsLetWithCallSideEffect(t *testing.T) {
	body := []ir.Stmt{
		&ir.Let{Name: "unused", Value: &ir.Call{Callee: "sideEffect"}},
		&ir.Return{Value: num(2)},
	}
	out, changed := eliminateDeadStores(body)
	assert.False(t, changed)
	require.Len(t, out, 2)
}

func TestEliminateUnreachableDropsStatementsAfterReturn(t *testing.T) {
	body := []ir.Stmt{
		&ir.Return{Value: num(1)},
		&ir.ExprStmt{Value: &ir.Call{Callee: "neverRuns"}},
	}
	out, changed := eliminateUnreachable(body)
	assert.True(t, changed)
	require.Len(t, out, 1)
}

func TestPruneUnreachableFunctionsKeepsOnlyReachableFromMain(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{
		{Name: "main", Body: []ir.Stmt{&ir.ExprStmt{Value: &ir.Call{Callee: "helper"}}}},
		{Name: "helper", Body: nil},
		{Name: "dead", Body: nil},
	}}
	out, changed := pruneUnreachableFunctions(prog)
	assert.True(t, changed)
	var names []string
	for _, fn := range out.Functions {
		names = append(names, fn.Name)
	}
	assert.Contains(t, names, "main")
	assert.Contains(t, names, "helper")
	assert.NotContains(t, names, "dead")
}

func TestPruneUnreachableFunctionsKeepsExportedEvenIfUncalled(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{
		{Name: "main", Body: nil},
		{Name: "publicApi", Exported: true, Body: nil},
	}}
	out, _ := pruneUnreachableFunctions(prog)
	var names []string
	for _, fn := range out.Functions {
		names = append(names, fn.Name)
	}
	assert.Contains(t, names, "publicApi")
}

func TestRunReachesFixedPoint(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{
		{
			Name: "main",
			Body: []ir.Stmt{
				&ir.Let{Name: "x", Value: &ir.Binary{Op: "+", Left: num(1), Right: num(1)}},
				&ir.Return{Value: ident("x")},
			},
		},
	}}
	out := Run(prog)
	ret := out.Functions[0].Body[len(out.Functions[0].Body)-1].(*ir.Return)
	n, ok := ret.Value.(*ir.Number)
	require.True(t, ok)
	assert.Equal(t, float64(2), n.Value)

	// A second pass over already-optimized output is a no-op (§8 fixed point).
	again := Run(out)
	assert.Equal(t, len(out.Functions[0].Body), len(again.Functions[0].Body))
}
