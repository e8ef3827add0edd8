package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminalang/lumina/internal/ast"
	"github.com/luminalang/lumina/internal/codegen/script"
	"github.com/luminalang/lumina/internal/config"
	"github.com/luminalang/lumina/internal/diagnostics"
	"github.com/luminalang/lumina/internal/token"
)

func namedType(name string) *ast.NamedType { return &ast.NamedType{Name: name} }

// buildColorProgram builds:
//
//	enum Color { Red, Green, Blue }
//	fn pick(c: Color) -> i32 {
//	  match c {
//	    Color.Red => 1,
//	  }
//	}
//
// whose match is missing Green/Blue and carries no wildcard.
func buildColorProgram() *ast.Program {
	color := &ast.EnumDecl{
		Name: "Color",
		Variants: []ast.EnumVariant{
			{Name: "Red"},
			{Name: "Green"},
			{Name: "Blue"},
		},
	}
	pick := &ast.FunctionDecl{
		Name:       "pick",
		Params:     []ast.Param{{Name: "c", Annotation: namedType("Color")}},
		ReturnType: namedType("i32"),
		Body: &ast.Block{
			Statements: []ast.Statement{
				&ast.MatchStmt{
					Scrutinee: ast.NewIdentifier(token.Span{}, "c"),
					Arms: []ast.MatchArm{
						{
							Pattern: &ast.VariantPattern{EnumName: "Color", Variant: "Red"},
							Body: &ast.Block{Statements: []ast.Statement{
								&ast.ReturnStmt{Value: &ast.IntLiteral{Value: 1}},
							}},
						},
					},
				},
			},
		},
	}
	return &ast.Program{Statements: []ast.Statement{color, pick}}
}

// buildAddProgram builds a trivially well-typed, exhaustive-free program:
//
//	fn add(a: i32, b: i32) -> i32 { return a + b; }
func buildAddProgram() *ast.Program {
	add := &ast.FunctionDecl{
		Name: "add",
		Params: []ast.Param{
			{Name: "a", Annotation: namedType("i32")},
			{Name: "b", Annotation: namedType("i32")},
		},
		ReturnType: namedType("i32"),
		Exported:   true,
		Body: &ast.Block{
			Statements: []ast.Statement{
				&ast.ReturnStmt{Value: &ast.BinaryExpr{
					Op:    "+",
					Left:  &ast.Identifier{Name: "a"},
					Right: &ast.Identifier{Name: "b"},
				}},
			},
		},
	}
	return &ast.Program{Statements: []ast.Statement{add}}
}

func TestCheckPipelineReportsNonExhaustiveMatch(t *testing.T) {
	prog := buildColorProgram()
	ctx := Compile("color.lum", prog, ModeCheck, BackendScript, script.Options{})

	var found bool
	for _, d := range ctx.Errors.Items() {
		if d.Code == diagnostics.CodeNonExhaustive {
			found = true
		}
	}
	assert.True(t, found, "expected a non-exhaustive match diagnostic")
	assert.Nil(t, ctx.ScriptResult, "check mode must not emit")
}

func TestCheckPipelineCleanProgramHasNoErrors(t *testing.T) {
	prog := buildAddProgram()
	ctx := Compile("add.lum", prog, ModeCheck, BackendScript, script.Options{})
	assert.False(t, ctx.HasFatalErrors())
}

func TestCompilePipelineScriptBackendEmitsCode(t *testing.T) {
	prog := buildAddProgram()
	ctx := Compile("add.lum", prog, ModeCompile, BackendScript, script.Options{Target: config.TargetESM})
	require.False(t, ctx.HasFatalErrors())
	require.NotNil(t, ctx.ScriptResult)
	assert.Contains(t, ctx.ScriptResult.Code, "export { add }")
	assert.Contains(t, ctx.ScriptResult.Code, "function add(a, b)")
}

func TestCompilePipelineStackBackendEmitsCode(t *testing.T) {
	prog := buildAddProgram()
	ctx := Compile("add.lum", prog, ModeCompile, BackendStack, script.Options{})
	require.False(t, ctx.HasFatalErrors())
	assert.Contains(t, ctx.StackCode, "(func $add")
	assert.Empty(t, ctx.ScriptResult)
}

func TestCompilePipelineRunsThroughEveryStage(t *testing.T) {
	prog := buildAddProgram()
	ctx := Compile("add.lum", prog, ModeCompile, BackendScript, script.Options{})
	require.NotNil(t, ctx.InferResult)
	require.NotNil(t, ctx.Mono)
	require.NotNil(t, ctx.IR)
	require.NotNil(t, ctx.Optimized)
}
