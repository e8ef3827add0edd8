package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminalang/lumina/internal/ast"
)

func fn(name string, params []ast.Param, body ...ast.Statement) *ast.FunctionDecl {
	return &ast.FunctionDecl{Name: name, Params: params, Body: &ast.Block{Statements: body}}
}

func TestLowerSimpleLetAndReturn(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		fn("f", nil,
			&ast.LetStmt{Name: "x", Value: &ast.IntLiteral{Value: 1}},
			&ast.ReturnStmt{Value: &ast.Identifier{Name: "x"}},
		),
	}}
	out := Lower(prog)
	require.Len(t, out.Functions, 1)
	body := out.Functions[0].Body
	require.Len(t, body, 2)

	let, ok := body[0].(*Let)
	require.True(t, ok)
	assert.Equal(t, "x_1", let.Name)

	ret, ok := body[1].(*Return)
	require.True(t, ok)
	ident, ok := ret.Value.(*Identifier)
	require.True(t, ok)
	assert.Equal(t, "x_1", ident.Name)
}

func TestLowerIfWithBothBranchesAssignProducesPhi(t *testing.T) {
	ifStmt := &ast.IfStmt{
		Cond: &ast.Identifier{Name: "cond"},
		Then: &ast.Block{Statements: []ast.Statement{
			&ast.LetStmt{Name: "y", Value: &ast.IntLiteral{Value: 1}},
		}},
		Else: &ast.Block{Statements: []ast.Statement{
			&ast.LetStmt{Name: "y", Value: &ast.IntLiteral{Value: 2}},
		}},
	}
	prog := &ast.Program{Statements: []ast.Statement{
		fn("f", []ast.Param{{Name: "cond"}}, ifStmt, &ast.ReturnStmt{Value: &ast.Identifier{Name: "y"}}),
	}}
	out := Lower(prog)
	body := out.Functions[0].Body
	require.Len(t, body, 3) // If, Phi-let, Return

	phiLet, ok := body[1].(*Let)
	require.True(t, ok)
	phi, ok := phiLet.Value.(*Phi)
	require.True(t, ok)
	assert.Equal(t, "y_1", phi.ThenVal.(*Identifier).Name)
	assert.Equal(t, "y_2", phi.ElseVal.(*Identifier).Name)

	ret := body[2].(*Return)
	assert.Equal(t, phiLet.Name, ret.Value.(*Identifier).Name)
}

func TestLowerIfWithOnlyOneBranchAssigningUsesPreIfValue(t *testing.T) {
	ifStmt := &ast.IfStmt{
		Cond: &ast.Identifier{Name: "cond"},
		Then: &ast.Block{Statements: []ast.Statement{
			&ast.LetStmt{Name: "y", Value: &ast.IntLiteral{Value: 9}},
		}},
	}
	prog := &ast.Program{Statements: []ast.Statement{
		fn("f",
			[]ast.Param{{Name: "cond"}, {Name: "y"}},
			ifStmt,
			&ast.ReturnStmt{Value: &ast.Identifier{Name: "y"}},
		),
	}}
	out := Lower(prog)
	body := out.Functions[0].Body
	phiLet := body[1].(*Let)
	phi := phiLet.Value.(*Phi)
	assert.Equal(t, "y_1", phi.ThenVal.(*Identifier).Name)
	assert.Equal(t, "y", phi.ElseVal.(*Identifier).Name) // pre-if value: the bare parameter
}

func TestLowerWhileProducesBreakGuard(t *testing.T) {
	whileStmt := &ast.WhileStmt{
		Cond: &ast.Identifier{Name: "cond"},
		Body: &ast.Block{Statements: []ast.Statement{
			&ast.ExprStmt{Expr: &ast.CallExpr{Callee: &ast.Identifier{Name: "tick"}}},
		}},
	}
	prog := &ast.Program{Statements: []ast.Statement{
		fn("f", []ast.Param{{Name: "cond"}}, whileStmt),
	}}
	out := Lower(prog)
	loop, ok := out.Functions[0].Body[0].(*While)
	require.True(t, ok)
	require.NotEmpty(t, loop.Body)
	guard, ok := loop.Body[0].(*If)
	require.True(t, ok)
	unary, ok := guard.Cond.(*Unary)
	require.True(t, ok)
	assert.Equal(t, "!", unary.Op)
	require.Len(t, guard.Then, 1)
	_, isBreak := guard.Then[0].(*Break)
	assert.True(t, isBreak)
}

func TestLowerMatchStmtProducesTagCascade(t *testing.T) {
	matchStmt := &ast.MatchStmt{
		Scrutinee: &ast.Identifier{Name: "opt"},
		Arms: []ast.MatchArm{
			{
				Pattern: &ast.VariantPattern{EnumName: "Option", Variant: "Some", SubPatterns: []ast.Pattern{&ast.BindingPattern{Name: "v"}}},
				Body:    &ast.Block{Statements: []ast.Statement{&ast.ReturnStmt{Value: &ast.Identifier{Name: "v"}}}},
			},
			{
				Pattern: &ast.WildcardPattern{},
				Body:    &ast.Block{Statements: []ast.Statement{&ast.ReturnStmt{Value: &ast.IntLiteral{Value: 0}}}},
			},
		},
	}
	prog := &ast.Program{Statements: []ast.Statement{
		fn("f", []ast.Param{{Name: "opt"}}, matchStmt),
	}}
	out := Lower(prog)
	ifNode, ok := out.Functions[0].Body[0].(*If)
	require.True(t, ok)
	cmp, ok := ifNode.Cond.(*Binary)
	require.True(t, ok)
	assert.Equal(t, "==", cmp.Op)
	_, isTag := cmp.Left.(*Tag)
	assert.True(t, isTag)
	require.Len(t, ifNode.Else, 1) // wildcard arm's body, unconditional
}

func TestLowerMacroCallVecBecomesArray(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		fn("f", nil, &ast.ReturnStmt{Value: &ast.MacroCall{Name: "vec!", Args: []ast.Expression{
			&ast.IntLiteral{Value: 1}, &ast.IntLiteral{Value: 2},
		}}}),
	}}
	out := Lower(prog)
	ret := out.Functions[0].Body[0].(*Return)
	arr, ok := ret.Value.(*Array)
	require.True(t, ok)
	assert.Len(t, arr.Elements, 2)
}
