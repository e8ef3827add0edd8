package script

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminalang/lumina/internal/config"
	"github.com/luminalang/lumina/internal/ir"
	"github.com/luminalang/lumina/internal/token"
)

func loc(line, col int) token.Span {
	return token.Span{Start: token.Position{Line: line, Column: col}, End: token.Position{Line: line, Column: col}}
}

func TestEmitArithmeticFoldedReturn(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "main",
		Body: []ir.Stmt{&ir.Return{Value: &ir.Number{Value: 5}}},
	}}}
	res := Emit(prog, Options{Target: config.TargetESM})
	assert.Contains(t, res.Code, "function main()")
	assert.Contains(t, res.Code, "return 5;")
}

func TestEmitESMPreambleExportsExportedFunctions(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{
		{Name: "publicFn", Exported: true, Body: nil},
	}}
	res := Emit(prog, Options{Target: config.TargetESM})
	assert.True(t, strings.HasPrefix(res.Code, "export { publicFn };\n"))
}

func TestEmitCJSPreambleAssignsModuleExports(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{
		{Name: "publicFn", Exported: true, Body: nil},
	}}
	res := Emit(prog, Options{Target: config.TargetCJS})
	assert.True(t, strings.HasPrefix(res.Code, "module.exports = { publicFn: publicFn };\n"))
}

func TestEmitStringLiteralEscapesNewlineWithoutAdvancingGeneratedLine(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "main",
		Body: []ir.Stmt{
			&ir.Let{Name: "x", Value: &ir.String{Value: "a\nb"}},
			&ir.Return{Value: &ir.Identifier{Name: "x"}},
		},
	}}}
	res := Emit(prog, Options{Target: config.TargetESM})
	require.Contains(t, res.Code, `"a\nb"`)

	// The embedded newline is escaped text, not a literal line break: the
	// let-statement and the return must land on two adjacent generated
	// lines, not three.
	lines := strings.Split(strings.TrimRight(res.Code, "\n"), "\n")
	var letIdx, returnIdx = -1, -1
	for i, l := range lines {
		if strings.Contains(l, "let x") {
			letIdx = i
		}
		if strings.Contains(l, "return x") {
			returnIdx = i
		}
	}
	require.NotEqual(t, -1, letIdx)
	require.NotEqual(t, -1, returnIdx)
	assert.Equal(t, letIdx+1, returnIdx)
}

func TestSourceMapProducesDistinctColumnsForNodesOnSameGeneratedLine(t *testing.T) {
	// g(f(x), y) on one generated line: Call, Call, Identifier, Identifier
	// all land on the same generated line at different columns.
	inner := &ir.Call{Callee: "f", Args: []ir.Expr{&ir.Identifier{Name: "x"}}}
	outer := &ir.Call{Callee: "g", Args: []ir.Expr{inner, &ir.Identifier{Name: "y"}}}
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "main",
		Body: []ir.Stmt{&ir.ExprStmt{Value: outer}},
	}}}
	res := Emit(prog, Options{Target: config.TargetESM, EmitSourceMap: true, SourceFile: "main.lum"})
	require.NotNil(t, res.Map)

	cols := map[int]bool{}
	for _, gc := range genColsOnLine(res.Map, 2) {
		cols[gc] = true
	}
	assert.GreaterOrEqual(t, len(cols), 2)
}

func TestEmitIfWithPhiJoinEmitsTernary(t *testing.T) {
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "main",
		Body: []ir.Stmt{
			&ir.Let{Name: "y", Value: &ir.Phi{
				Cond:    &ir.Identifier{Name: "cond"},
				ThenVal: &ir.Number{Value: 1},
				ElseVal: &ir.Number{Value: 2},
			}},
		},
	}}}
	res := Emit(prog, Options{Target: config.TargetESM})
	assert.Contains(t, res.Code, "cond ? 1 : 2")
}

func TestEmitRecordPreservesFieldOrder(t *testing.T) {
	rec := &ir.Record{
		TypeName:   "User",
		Fields:     map[string]ir.Expr{"id": &ir.Number{Value: 1}, "name": &ir.String{Value: "Ada"}},
		FieldOrder: []string{"name", "id"},
	}
	prog := &ir.Program{Functions: []*ir.Function{{
		Name: "main",
		Body: []ir.Stmt{&ir.Return{Value: rec}},
	}}}
	res := Emit(prog, Options{Target: config.TargetESM})
	nameIdx := strings.Index(res.Code, "name:")
	idIdx := strings.Index(res.Code, "id:")
	require.True(t, nameIdx >= 0 && idIdx >= 0)
	assert.Less(t, nameIdx, idIdx)
}

// genColsOnLine decodes just enough of the VLQ mapping string to report the
// distinct generated columns recorded for 1-based generated line `line`.
func genColsOnLine(sm *SourceMap, line int) []int {
	segs := strings.Split(sm.Mappings, ";")
	if line-1 >= len(segs) {
		return nil
	}
	var cols []int
	col := 0
	for _, seg := range strings.Split(segs[line-1], ",") {
		if seg == "" {
			continue
		}
		delta, _ := decodeFirstVLQ(seg)
		col += delta
		cols = append(cols, col)
	}
	return cols
}

// decodeFirstVLQ decodes only the first VLQ field of a mapping segment
// (the generated-column delta) — enough for the test above.
func decodeFirstVLQ(seg string) (int, int) {
	shift := 0
	result := 0
	consumed := 0
	for _, c := range seg {
		consumed++
		digit := strings.IndexRune(base64Chars, c)
		cont := digit & 0x20
		digit &= 0x1f
		result |= digit << shift
		shift += 5
		if cont == 0 {
			break
		}
	}
	neg := result&1 == 1
	result >>= 1
	if neg {
		result = -result
	}
	return result, consumed
}
