package mono

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminalang/lumina/internal/ast"
	"github.com/luminalang/lumina/internal/config"
	"github.com/luminalang/lumina/internal/infer"
	"github.com/luminalang/lumina/internal/typesystem"
)

func newTestResult() *infer.Result {
	return &infer.Result{CallSigs: map[int]infer.CallSig{}}
}

func TestMonomorphizeKeepsGenericOriginalAndAddsSpecialization(t *testing.T) {
	prog, res := buildIdentityCallProgram(t)

	result := Monomorphize(prog, res)
	require.Empty(t, result.Diagnostics.Items())

	var names []string
	for _, stmt := range result.Program.Statements {
		if fd, ok := stmt.(*ast.FunctionDecl); ok {
			names = append(names, fd.Name)
		}
	}
	assert.Contains(t, names, "identity")
	assert.Contains(t, names, "identity_i32")
}

func TestMonomorphizeSpecializationHasIndependentBody(t *testing.T) {
	prog, res := buildIdentityCallProgram(t)
	result := Monomorphize(prog, res)

	var generic, specialized *ast.FunctionDecl
	for _, stmt := range result.Program.Statements {
		fd, ok := stmt.(*ast.FunctionDecl)
		if !ok {
			continue
		}
		switch fd.Name {
		case "identity":
			generic = fd
		case "identity_i32":
			specialized = fd
		}
	}
	require.NotNil(t, generic)
	require.NotNil(t, specialized)
	assert.NotSame(t, generic.Body, specialized.Body)

	genReturn := generic.Body.Statements[0].(*ast.ReturnStmt)
	specReturn := specialized.Body.Statements[0].(*ast.ReturnStmt)
	assert.NotSame(t, genReturn, specReturn)
	assert.NotEqual(t, genReturn.Value.(*ast.Identifier).ID(), specReturn.Value.(*ast.Identifier).ID())
}

func TestMonomorphizeRewritesCallSiteToMangledName(t *testing.T) {
	prog, res := buildIdentityCallProgram(t)
	result := Monomorphize(prog, res)

	var caller *ast.FunctionDecl
	for _, stmt := range result.Program.Statements {
		if fd, ok := stmt.(*ast.FunctionDecl); ok && fd.Name == "main" {
			caller = fd
		}
	}
	require.NotNil(t, caller)
	exprStmt := caller.Body.Statements[0].(*ast.ExprStmt)
	call := exprStmt.Expr.(*ast.CallExpr)
	assert.Equal(t, "identity_i32", call.Callee.(*ast.Identifier).Name)
}

func TestMonomorphizeLeavesQualifiedCallsAlone(t *testing.T) {
	call := &ast.CallExpr{
		EnumQualifier: "Option",
		Variant:       "Some",
		Args:          []ast.Expression{&ast.IntLiteral{Value: 1}},
	}
	fd := &ast.FunctionDecl{
		Name: "main",
		Body: &ast.Block{Statements: []ast.Statement{&ast.ExprStmt{Expr: call}}},
	}
	prog := &ast.Program{Statements: []ast.Statement{fd}}
	res := newTestResult()

	result := Monomorphize(prog, res)
	got := result.Program.Statements[0].(*ast.FunctionDecl).Body.Statements[0].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	assert.Equal(t, "Option", got.EnumQualifier)
	assert.Equal(t, "Some", got.Variant)
}

// buildIdentityCallProgram wires a real CallSig keyed by the actual call
// node's id, since Monomorphize looks up res.CallSigs by n.ID().
func buildIdentityCallProgram(t *testing.T) (*ast.Program, *infer.Result) {
	t.Helper()

	fd := &ast.FunctionDecl{
		Name:       "identity",
		TypeParams: []ast.TypeParam{{Name: "T"}},
		Params:     []ast.Param{{Name: "x", Annotation: &ast.NamedType{Name: "T"}}},
		ReturnType: &ast.NamedType{Name: "T"},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.ReturnStmt{Value: &ast.Identifier{Name: "x"}},
		}},
	}
	call := &ast.CallExpr{
		Callee: &ast.Identifier{Name: "identity"},
		Args:   []ast.Expression{&ast.IntLiteral{Value: 1}},
	}
	tag(call) // give it a real, unique node id the way a parser would

	caller := &ast.FunctionDecl{
		Name: "main",
		Body: &ast.Block{Statements: []ast.Statement{&ast.ExprStmt{Expr: call}}},
	}

	prog := &ast.Program{Statements: []ast.Statement{fd, caller}}

	res := newTestResult()
	i32 := typesystem.Primitive{Name: config.PrimInt}
	res.CallSigs[call.ID()] = infer.CallSig{
		Callee:       "identity",
		Instantiated: typesystem.Function{Args: []typesystem.Type{i32}, Return: i32},
		TypeArgs:     []typesystem.Type{i32},
	}
	return prog, res
}
