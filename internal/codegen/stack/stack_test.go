package stack

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luminalang/lumina/internal/ir"
)

func TestEmitFunctionSignatureWithParamsAndResult(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{
		Name:   "add",
		Params: []string{"a", "b"},
		Body:   []ir.Stmt{&ir.Return{Value: &ir.Binary{Op: "+", Left: &ir.Identifier{Name: "a"}, Right: &ir.Identifier{Name: "b"}}}},
	}}}
	out := Emit(prog, Options{})
	assert.Contains(t, out, "(func $add (param $a i32) (param $b i32) (result i32)")
	assert.Contains(t, out, "(return (i32.add (local.get $a) (local.get $b)))")
}

func TestEmitMainExportedWhenRequested(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "main",
		Body: []ir.Stmt{&ir.Return{Value: &ir.Number{Value: 0}}},
	}}}
	out := Emit(prog, Options{ExportMain: true})
	assert.Contains(t, out, `(export "main" (func $main))`)
}

func TestEmitExportedFunctionAlwaysExportedRegardlessOfOption(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{
		Name:     "publicFn",
		Exported: true,
		Body:     []ir.Stmt{&ir.Return{Value: &ir.Number{Value: 1}}},
	}}}
	out := Emit(prog, Options{ExportMain: false})
	assert.Contains(t, out, `(export "publicFn" (func $publicFn))`)
}

func TestEmitDeclaresLocalsForEveryLetBinding(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "f",
		Body: []ir.Stmt{
			&ir.Let{Name: "x", Value: &ir.Number{Value: 1}},
			&ir.Let{Name: "y", Value: &ir.Number{Value: 2}},
			&ir.Return{Value: &ir.Identifier{Name: "x"}},
		},
	}}}
	out := Emit(prog, Options{})
	assert.Contains(t, out, "(local $x i32)")
	assert.Contains(t, out, "(local $y i32)")
}

func TestEmitDeclaresLocalsInsideIfBranches(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "f",
		Body: []ir.Stmt{
			&ir.If{
				Cond: &ir.Identifier{Name: "cond"},
				Then: []ir.Stmt{&ir.Let{Name: "inner", Value: &ir.Number{Value: 1}}},
				Else: []ir.Stmt{&ir.Let{Name: "otherInner", Value: &ir.Number{Value: 2}}},
			},
		},
	}}}
	out := Emit(prog, Options{})
	assert.Contains(t, out, "(local $inner i32)")
	assert.Contains(t, out, "(local $otherInner i32)")
}

func TestEmitBoundsCheckedIndexTrapsOnOutOfRange(t *testing.T) {
	idx := &ir.Index{Object: &ir.Identifier{Name: "arr"}, Index: &ir.Identifier{Name: "i"}}
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "f",
		Body: []ir.Stmt{&ir.Return{Value: idx}},
	}}}
	out := Emit(prog, Options{})
	assert.Contains(t, out, "(i32.ge_u (local.get $i) (array.len (local.get $arr)))")
	assert.Contains(t, out, "(then (unreachable))")
	assert.Contains(t, out, "(array.get (local.get $arr) (local.get $i))")
}

func TestEmitWhileLowersToLoopWithBranch(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "f",
		Body: []ir.Stmt{
			&ir.While{Body: []ir.Stmt{
				&ir.If{Cond: &ir.Unary{Op: "!", Operand: &ir.Identifier{Name: "cond"}}, Then: []ir.Stmt{&ir.Break{}}},
			}},
		},
	}}}
	out := Emit(prog, Options{})
	assert.Contains(t, out, "(loop $loop")
	assert.Contains(t, out, "(br $loop)")
}

func TestEmitIntegerNumberUsesI32Const(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "f",
		Body: []ir.Stmt{&ir.Return{Value: &ir.Number{Value: 42}}},
	}}}
	out := Emit(prog, Options{})
	assert.Contains(t, out, "(i32.const 42)")
}

func TestEmitFractionalNumberUsesF64Const(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "f",
		Body: []ir.Stmt{&ir.Return{Value: &ir.Number{Value: 1.5}}},
	}}}
	out := Emit(prog, Options{})
	assert.Contains(t, out, "(f64.const 1.5)")
}

func TestEmitRecordUsesFieldOrderForStructNewArgs(t *testing.T) {
	rec := &ir.Record{
		TypeName:   "Point",
		Fields:     map[string]ir.Expr{"x": &ir.Number{Value: 1}, "y": &ir.Number{Value: 2}},
		FieldOrder: []string{"y", "x"},
	}
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "f",
		Body: []ir.Stmt{&ir.Return{Value: rec}},
	}}}
	out := Emit(prog, Options{})
	yIdx := strings.Index(out, "(i32.const 2)")
	xIdx := strings.Index(out, "(i32.const 1)")
	assert.True(t, yIdx >= 0 && xIdx >= 0)
	assert.Less(t, yIdx, xIdx)
}

func TestEmitEnumValueUsesTagIndexConstForDiscriminant(t *testing.T) {
	ev := &ir.EnumValue{EnumName: "Option", Variant: "Some", Payload: []ir.Expr{&ir.Number{Value: 1}}}
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "f",
		Body: []ir.Stmt{&ir.Return{Value: ev}},
	}}}
	out := Emit(prog, Options{})
	assert.Contains(t, out, "(struct.new $Option (i32.const "+strconv.Itoa(len("Some"))+") (i32.const 1))")
}

// A match arm's condition lowers to Binary(Tag(scrutinee), "==", String(variant))
// regardless of back end (ir/lower.go's matchCondition is shared). The stack
// machine represents a tag as an i32 discriminant, so the String half of
// this specific comparison must emit as i32.const <tagIndex>, never as a
// quoted string literal — the rest of the §6 instruction set is numeric-only.
func TestEmitTagComparisonAgainstVariantNameUsesNumericConst(t *testing.T) {
	cond := &ir.Binary{
		Op:   "==",
		Left: &ir.Tag{Object: &ir.Identifier{Name: "scrutinee"}},
		Right: &ir.String{Value: "Some"},
	}
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "f",
		Body: []ir.Stmt{&ir.Return{Value: cond}},
	}}}
	out := Emit(prog, Options{})
	assert.Contains(t, out, "(i32.eq (struct.get $enum $tag (local.get $scrutinee)) (i32.const "+strconv.Itoa(len("Some"))+"))")
	assert.NotContains(t, out, `"Some"`)
}

func TestEmitTagComparisonIsSymmetricRegardlessOfOperandOrder(t *testing.T) {
	cond := &ir.Binary{
		Op:   "==",
		Left: &ir.String{Value: "None"},
		Right: &ir.Tag{Object: &ir.Identifier{Name: "scrutinee"}},
	}
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "f",
		Body: []ir.Stmt{&ir.Return{Value: cond}},
	}}}
	out := Emit(prog, Options{})
	assert.Contains(t, out, "(i32.const "+strconv.Itoa(len("None"))+")")
	assert.NotContains(t, out, `"None"`)
}

func TestEmitPlainStringLiteralStillQuotedWhenNotPairedWithTag(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "f",
		Body: []ir.Stmt{&ir.Return{Value: &ir.String{Value: "hello"}}},
	}}}
	out := Emit(prog, Options{})
	assert.Contains(t, out, `"hello"`)
}

func TestTotalArraySizeFormatsHumanReadableBytes(t *testing.T) {
	assert.Equal(t, "Total size: 12 B", TotalArraySize(3))
}

func TestCastInstructionWideningIntToFloat(t *testing.T) {
	assert.Equal(t, "f64.convert_i32", CastInstruction("i32", "f64"))
}

func TestCastInstructionNarrowingFloatToInt(t *testing.T) {
	assert.Equal(t, "i32.trunc_f64", CastInstruction("f64", "i32"))
}
