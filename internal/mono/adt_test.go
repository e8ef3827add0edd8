package mono

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminalang/lumina/internal/ast"
)

// buildVecProgram wires `struct Vec<T, const N: usize>{ data: [T; N] }` plus
// two functions instantiating it at Vec<i32,3> and Vec<i32,5>, and a third
// call site re-using Vec<i32,3> — mirroring the end-to-end scenario of the
// const-generic monomorphization test property.
func buildVecProgram() *ast.Program {
	vec := &ast.StructDecl{
		Name: "Vec",
		TypeParams: []ast.TypeParam{
			{Name: "T"},
			{Name: "N", Const: true, ConstType: &ast.NamedType{Name: "usize"}},
		},
		Fields: []ast.FieldDecl{
			{Name: "data", Type: &ast.ArrayType{
				Elem: &ast.NamedType{Name: "T"},
				Size: &ast.Identifier{Name: "N"},
			}},
		},
	}
	fnA := &ast.FunctionDecl{
		Name:       "a",
		ReturnType: &ast.NamedType{Name: "Vec", Args: []ast.TypeExpr{&ast.NamedType{Name: "i32"}, &ast.NamedType{Name: "3"}}},
		Body:       &ast.Block{},
	}
	fnB := &ast.FunctionDecl{
		Name:       "b",
		ReturnType: &ast.NamedType{Name: "Vec", Args: []ast.TypeExpr{&ast.NamedType{Name: "i32"}, &ast.NamedType{Name: "5"}}},
		Body:       &ast.Block{},
	}
	fnC := &ast.FunctionDecl{
		Name: "c",
		Params: []ast.Param{
			{Name: "v", Annotation: &ast.NamedType{Name: "Vec", Args: []ast.TypeExpr{&ast.NamedType{Name: "i32"}, &ast.NamedType{Name: "3"}}}},
		},
		Body: &ast.Block{},
	}
	return &ast.Program{Statements: []ast.Statement{vec, fnA, fnB, fnC}}
}

func TestSpecializeADTsProducesOneDeclPerDistinctInstantiation(t *testing.T) {
	prog := buildVecProgram()
	res := newTestResult()
	result := Monomorphize(prog, res)
	require.Empty(t, result.Diagnostics.Items())

	var names []string
	for _, stmt := range result.Program.Statements {
		if sd, ok := stmt.(*ast.StructDecl); ok {
			names = append(names, sd.Name)
		}
	}
	assert.Contains(t, names, "Vec") // generic original kept verbatim
	assert.Contains(t, names, "Vec_i32_3")
	assert.Contains(t, names, "Vec_i32_5")

	count3 := 0
	for _, n := range names {
		if n == "Vec_i32_3" {
			count3++
		}
	}
	assert.Equal(t, 1, count3, "a third call site with Vec<i32,3> must not create a second specialization")
}

func TestSpecializeADTsEvaluatesArraySize(t *testing.T) {
	prog := buildVecProgram()
	res := newTestResult()
	result := Monomorphize(prog, res)

	var vec3 *ast.StructDecl
	for _, stmt := range result.Program.Statements {
		if sd, ok := stmt.(*ast.StructDecl); ok && sd.Name == "Vec_i32_3" {
			vec3 = sd
		}
	}
	require.NotNil(t, vec3)
	arr, ok := vec3.Fields[0].Type.(*ast.ArrayType)
	require.True(t, ok)
	size, ok := arr.Size.(*ast.IntLiteral)
	require.True(t, ok)
	assert.Equal(t, int64(3), size.Value)
	elem, ok := arr.Elem.(*ast.NamedType)
	require.True(t, ok)
	assert.Equal(t, "i32", elem.Name)
}

func TestSpecializeADTsRewritesReturnTypeToMangledName(t *testing.T) {
	prog := buildVecProgram()
	res := newTestResult()
	result := Monomorphize(prog, res)

	var fnA *ast.FunctionDecl
	for _, stmt := range result.Program.Statements {
		if fd, ok := stmt.(*ast.FunctionDecl); ok && fd.Name == "a" {
			fnA = fd
		}
	}
	require.NotNil(t, fnA)
	rt, ok := fnA.ReturnType.(*ast.NamedType)
	require.True(t, ok)
	assert.Equal(t, "Vec_i32_3", rt.Name)
	assert.Empty(t, rt.Args)
}

func TestSpecializeADTsLeavesGenericDeclarationUntouched(t *testing.T) {
	prog := buildVecProgram()
	res := newTestResult()
	result := Monomorphize(prog, res)

	var vec *ast.StructDecl
	for _, stmt := range result.Program.Statements {
		if sd, ok := stmt.(*ast.StructDecl); ok && sd.Name == "Vec" {
			vec = sd
		}
	}
	require.NotNil(t, vec)
	require.Len(t, vec.TypeParams, 2)
	arr := vec.Fields[0].Type.(*ast.ArrayType)
	_, stillIdentifier := arr.Size.(*ast.Identifier)
	assert.True(t, stillIdentifier, "the generic original's size expression must stay symbolic, not evaluated")
}
