// Package mono implements the monomorphizer of §4.5: it turns each distinct
// concrete instantiation of a generic function, struct, or enum recorded
// during inference into a standalone specialized declaration, rewriting
// call sites (and field array sizes) to reference it.
//
// Grounded on the teacher's internal/codegen specialization pass (funxy
// monomorphizes generic instances by mangled name before lowering to
// bytecode); generalized here to this spec's AST-to-AST transform and its
// own `normalize_type_name` mangling scheme (glossary) instead of funxy's.
package mono

import (
	"fmt"
	"strings"

	"github.com/luminalang/lumina/internal/typesystem"
)

// MangleType implements the glossary's normalize_type_name: an injective
// string mangling over the admissible post-inference type set (primitives,
// ADTs, functions, promises, and fully-resolved type variables — row types
// and unresolved variables never appear in well-formed monomorphizer input).
func MangleType(t typesystem.Type) string {
	switch tt := t.(type) {
	case typesystem.Primitive:
		return string(tt.Name)
	case typesystem.ADT:
		if len(tt.Params) == 0 {
			return tt.Name
		}
		parts := make([]string, len(tt.Params))
		for i, p := range tt.Params {
			parts[i] = MangleType(p)
		}
		return tt.Name + "_" + strings.Join(parts, "_")
	case typesystem.Function:
		args := make([]string, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = MangleType(a)
		}
		return fmt.Sprintf("Fn_%s_%s", strings.Join(args, "_"), MangleType(tt.Return))
	case typesystem.Promise:
		return "Promise_" + MangleType(tt.Inner)
	case typesystem.Variable:
		return "T" + tt.ID
	case typesystem.Row:
		parts := make([]string, len(tt.Fields))
		for i, f := range tt.Fields {
			parts[i] = f.Name + ":" + MangleType(f.Type)
		}
		tail := "Closed"
		if tt.Tail != nil {
			tail = MangleType(tt.Tail)
		}
		return "Row_" + strings.Join(parts, "_") + "_" + tail
	default:
		return "Unknown"
	}
}

// MangleName builds F_mangled for a generic declaration F instantiated with
// the given concrete type arguments, in declared-parameter order.
func MangleName(base string, typeArgs []typesystem.Type) string {
	if len(typeArgs) == 0 {
		return base
	}
	parts := make([]string, len(typeArgs))
	for i, ta := range typeArgs {
		parts[i] = MangleType(ta)
	}
	return base + "_" + strings.Join(parts, "_")
}

// MangleConstArgs builds the Vec_i32_3-style name for a const-generic
// struct/enum instantiation from its resolved const integer values, appended
// after the type arguments' mangled names.
func MangleConstArgs(base string, typeArgs []typesystem.Type, constArgs []int64) string {
	name := MangleName(base, typeArgs)
	for _, c := range constArgs {
		name = fmt.Sprintf("%s_%d", name, c)
	}
	return name
}
