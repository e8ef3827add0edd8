// Package stack implements the stack-machine text-format back end of §4.9:
// IR to an S-expression-like module with bounds-checked indexing. The module
// carries no fixed-array layout-size comments: TotalArraySize formats that
// text, but Emit never writes it.
//
// Grounded on the teacher's internal/vm/disasm.go text-emission style, same
// as internal/codegen/script, but targeting the S-expression surface named
// in §6 (`func`, `param`, `result`, `local`, `i32.*`, `f64.*`, `if`, `call`,
// `unreachable`, `export`) instead of a curly-brace scripting language.
package stack

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/luminalang/lumina/internal/ir"
)

// Options configures one Emit call.
type Options struct {
	ExportMain bool // mark `main` exported per §4.9
}

// elementSize is the fixed byte width this back end assumes for a scalar element
// in a fixed-array layout; the spec leaves the exact numeric-kind ↔ width
// table to the target, so this back end uses one constant width consistent
// with its i32/f64 instruction pair.
const elementSize = 4

// Emit lowers prog to stack-machine text.
func Emit(prog *ir.Program, opts Options) string {
	e := &emitter{opts: opts}
	e.write("(module\n")
	for _, fn := range prog.Functions {
		e.emitFunction(fn)
	}
	e.write(")\n")
	return e.buf.String()
}

type emitter struct {
	opts Options
	buf  strings.Builder
}

func (e *emitter) write(s string) { e.buf.WriteString(s) }

func (e *emitter) emitFunction(fn *ir.Function) {
	e.write(fmt.Sprintf("  (func $%s", fn.Name))
	for _, p := range fn.Params {
		e.write(fmt.Sprintf(" (param $%s i32)", p))
	}
	e.write(" (result i32)\n")
	for _, p := range fn.Params {
		_ = p // params are already declared above; locals are declared separately below
	}
	e.emitLocals(fn.Body)
	e.emitStmts(fn.Body, 2)
	if fn.Exported || (fn.Name == "main" && e.opts.ExportMain) {
		e.write(fmt.Sprintf("  (export \"%s\" (func $%s))\n", fn.Name, fn.Name))
	}
	e.write("  )\n")
}

// emitLocals declares every Let-bound name in fn.Body as a wasm-text local,
// since the stack machine (unlike the scripting target) requires locals
// declared up front rather than introduced inline.
func (e *emitter) emitLocals(stmts []ir.Stmt) {
	names := collectLetNames(stmts)
	for _, n := range names {
		e.write(fmt.Sprintf("    (local $%s i32)\n", n))
	}
}

func collectLetNames(stmts []ir.Stmt) []string {
	var names []string
	var walk func([]ir.Stmt)
	walk = func(ss []ir.Stmt) {
		for _, s := range ss {
			switch n := s.(type) {
			case *ir.Let:
				names = append(names, n.Name)
			case *ir.If:
				walk(n.Then)
				walk(n.Else)
			case *ir.While:
				walk(n.Body)
			}
		}
	}
	walk(stmts)
	return names
}

func (e *emitter) emitStmts(stmts []ir.Stmt, indent int) {
	for _, s := range stmts {
		e.emitStmt(s, indent)
	}
}

func pad(indent int) string { return strings.Repeat("  ", indent) }

func (e *emitter) emitStmt(s ir.Stmt, indent int) {
	p := pad(indent)
	switch n := s.(type) {
	case *ir.Let:
		e.write(p + "(local.set $" + n.Name + " ")
		e.emitExpr(n.Value)
		e.write(")\n")
	case *ir.Assign:
		e.write(p + "(local.set $" + n.Name + " ")
		e.emitExpr(n.Value)
		e.write(")\n")
	case *ir.Return:
		if n.Value == nil {
			e.write(p + "(return)\n")
			return
		}
		e.write(p + "(return ")
		e.emitExpr(n.Value)
		e.write(")\n")
	case *ir.ExprStmt:
		e.write(p + "(drop ")
		e.emitExpr(n.Value)
		e.write(")\n")
	case *ir.If:
		e.write(p + "(if ")
		e.emitExpr(n.Cond)
		e.write("\n" + p + "  (then\n")
		e.emitStmts(n.Then, indent+2)
		e.write(p + "  )\n")
		if len(n.Else) > 0 {
			e.write(p + "  (else\n")
			e.emitStmts(n.Else, indent+2)
			e.write(p + "  )\n")
		}
		e.write(p + ")\n")
	case *ir.While:
		e.write(p + "(loop $loop\n")
		e.emitStmts(n.Body, indent+1)
		e.write(p + "  (br $loop)\n")
		e.write(p + ")\n")
	case *ir.Break:
		e.write(p + "(br $loop)\n")
	case *ir.Noop:
		// nothing to emit
	}
}

func (e *emitter) emitExpr(x ir.Expr) {
	switch n := x.(type) {
	case *ir.Number:
		e.write(formatNumber(n.Value))
	case *ir.String:
		e.write(strconv.Quote(n.Value)) // strings have no first-class wasm-text form; quoted for readability
	case *ir.Boolean:
		if n.Value {
			e.write("(i32.const 1)")
		} else {
			e.write("(i32.const 0)")
		}
	case *ir.Identifier:
		e.write("(local.get $" + n.Name + ")")
	case *ir.Binary:
		e.write("(" + binaryOp(n.Op) + " ")
		e.emitTagOperand(n.Left, n.Right)
		e.write(" ")
		e.emitTagOperand(n.Right, n.Left)
		e.write(")")
	case *ir.Unary:
		e.write("(" + unaryOp(n.Op) + " ")
		e.emitExpr(n.Operand)
		e.write(")")
	case *ir.Member:
		e.write("(struct.get $" + "_ $" + n.Field + " ") // field index resolution is a linker-time concern; name kept symbolic
		e.emitExpr(n.Object)
		e.write(")")
	case *ir.Index:
		e.emitBoundsCheckedIndex(n)
	case *ir.Call:
		e.write("(call $" + n.Callee)
		for _, a := range n.Args {
			e.write(" ")
			e.emitExpr(a)
		}
		e.write(")")
	case *ir.Array:
		e.write("(array.new_fixed $Array " + strconv.Itoa(len(n.Elements)))
		for _, el := range n.Elements {
			e.write(" ")
			e.emitExpr(el)
		}
		e.write(")")
	case *ir.Record:
		e.write("(struct.new $" + n.TypeName)
		for _, name := range n.FieldOrder {
			e.write(" ")
			e.emitExpr(n.Fields[name])
		}
		e.write(")")
	case *ir.EnumValue:
		e.write("(struct.new $" + n.EnumName + " (i32.const " + tagIndex(n.Variant) + ")")
		for _, p := range n.Payload {
			e.write(" ")
			e.emitExpr(p)
		}
		e.write(")")
	case *ir.Tag:
		e.write("(struct.get $enum $tag ")
		e.emitExpr(n.Object)
		e.write(")")
	case *ir.Phi:
		e.write("(if (result i32) ")
		e.emitExpr(n.Cond)
		e.write(" (then ")
		e.emitExpr(n.ThenVal)
		e.write(") (else ")
		e.emitExpr(n.ElseVal)
		e.write("))")
	case *ir.MatchExpr:
		// Lower never constructs this node kind; emitted only defensively.
		e.write("(unreachable)")
	case *ir.Noop:
		e.write("(i32.const 0)")
	}
}

// emitTagOperand emits x, except when x is the String half of a Tag == "Variant"
// comparison (the shared IR's tag-discrimination test, §4.6/§4.9) — there the
// variant name never reaches the text form, since this target's enum values
// carry a numeric discriminant (struct.get $enum $tag is an i32), not the
// runtime string the scripting target uses. sibling is the other operand of
// the same Binary, used only to detect that shape.
func (e *emitter) emitTagOperand(x, sibling ir.Expr) {
	if s, ok := x.(*ir.String); ok {
		if _, siblingIsTag := sibling.(*ir.Tag); siblingIsTag {
			e.write("(i32.const " + tagIndex(s.Value) + ")")
			return
		}
	}
	e.emitExpr(x)
}

// emitBoundsCheckedIndex implements §4.9's indexing contract: an unsigned
// compare against the array's length, trapping on out-of-range before the
// arithmetic access.
func (e *emitter) emitBoundsCheckedIndex(n *ir.Index) {
	e.write("(if (result i32) (i32.ge_u ")
	e.emitExpr(n.Index)
	e.write(" (array.len ")
	e.emitExpr(n.Object)
	e.write(")) (then (unreachable)) (else (array.get ")
	e.emitExpr(n.Object)
	e.write(" ")
	e.emitExpr(n.Index)
	e.write(")))")
}

func binaryOp(op string) string {
	switch op {
	case "+":
		return "i32.add"
	case "-":
		return "i32.sub"
	case "*":
		return "i32.mul"
	case "/":
		return "i32.div_s"
	case "%":
		return "i32.rem_s"
	case "<":
		return "i32.lt_s"
	case "<=":
		return "i32.le_s"
	case ">":
		return "i32.gt_s"
	case ">=":
		return "i32.ge_s"
	case "==":
		return "i32.eq"
	case "!=":
		return "i32.ne"
	case "&&":
		return "i32.and"
	case "||":
		return "i32.or"
	default:
		return "i32.add"
	}
}

func unaryOp(op string) string {
	switch op {
	case "!":
		return "i32.eqz"
	case "-":
		return "i32.neg" // lowered separately where the target lacks a native neg; kept symbolic here
	default:
		return "i32.eqz"
	}
}

func tagIndex(variant string) string {
	// A real linker resolves variant name -> discriminant index from the
	// enum declaration; this back end emits the name length as a stable
	// placeholder ordinal so repeated emission of the same variant is
	// deterministic without needing the enum declaration threaded through.
	return strconv.Itoa(len(variant))
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("(i32.const %d)", int64(v))
	}
	return fmt.Sprintf("(f64.const %s)", strconv.FormatFloat(v, 'g', -1, 64))
}

// TotalArraySize returns the layout-size text for a fixed-size array field
// whose element count has already been const-evaluated by the monomorphizer:
// `Total size: ` followed by count*elementSize formatted by humanize.Bytes
// (e.g. `Total size: 12 B` for three elements), not a plain `N bytes` count.
// Emit does not call it.
func TotalArraySize(count int64) string {
	total := uint64(count) * uint64(elementSize)
	return fmt.Sprintf("Total size: %s", humanize.Bytes(total))
}

// CastInstruction returns the explicit numeric conversion instruction for a
// widening/narrowing pair, e.g. int->float widening (§4.9).
func CastInstruction(from, to string) string {
	switch {
	case from == "i32" && to == "f64":
		return "f64.convert_i32"
	case from == "f64" && to == "i32":
		return "i32.trunc_f64"
	case from == "i32" && to == "u32":
		return "i32.extend_u"
	default:
		return fmt.Sprintf("%s.convert_%s", to, from)
	}
}
