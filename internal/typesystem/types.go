// Package typesystem is the ground truth for Lumina types: the Type sum,
// schemes, substitutions, and the unifier with barrier occurs-check and row
// handling (§4.1). Grounded on the teacher's internal/typesystem/types.go —
// same Type interface shape (String/Apply/FreeTypeVariables), same
// substitution-as-map representation, generalized here to the spec's
// primitive/function/adt/row/hole/promise sum instead of funxy's own
// TCon/TApp/TRecord/TUnion lattice.
package typesystem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luminalang/lumina/internal/config"
	"github.com/luminalang/lumina/internal/token"
)

// Type is the interface every member of the sum implements.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeVars() []string
}

// Subst maps type-variable ids to their bound Type. Grows only by unifier
// assignment; never mutated after one inference run completes (§5).
type Subst map[string]Type

// Variable is a mutable HM unknown.
type Variable struct {
	ID string
}

func (t Variable) String() string {
	if config.IsTestMode {
		return "t?"
	}
	return t.ID
}

func (t Variable) Apply(s Subst) Type {
	if repl, ok := s[t.ID]; ok {
		if rv, ok := repl.(Variable); ok && rv.ID == t.ID {
			return t
		}
		return repl.Apply(s)
	}
	return t
}

func (t Variable) FreeVars() []string { return []string{t.ID} }

// Primitive is one of the fixed primitive names, already normalized.
type Primitive struct {
	Name config.Primitive
}

func (t Primitive) String() string        { return string(t.Name) }
func (t Primitive) Apply(s Subst) Type    { return t }
func (t Primitive) FreeVars() []string    { return nil }

// Function is a function type.
type Function struct {
	Args   []Type
	Return Type
}

func (t Function) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), t.Return.String())
}

func (t Function) Apply(s Subst) Type {
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Apply(s)
	}
	return Function{Args: args, Return: t.Return.Apply(s)}
}

func (t Function) FreeVars() []string {
	var vars []string
	for _, a := range t.Args {
		vars = append(vars, a.FreeVars()...)
	}
	vars = append(vars, t.Return.FreeVars()...)
	return dedupe(vars)
}

// ADT is a named algebraic data type applied to zero or more params, e.g.
// Option<T>, Result<T,E>, or a user struct/enum name with no params.
type ADT struct {
	Name   string
	Params []Type
}

func (t ADT) String() string {
	if len(t.Params) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ", "))
}

func (t ADT) Apply(s Subst) Type {
	params := make([]Type, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.Apply(s)
	}
	return ADT{Name: t.Name, Params: params}
}

func (t ADT) FreeVars() []string {
	var vars []string
	for _, p := range t.Params {
		vars = append(vars, p.FreeVars()...)
	}
	return dedupe(vars)
}

// RowField is one field of an open/closed record row, keeping insertion
// order as the spec's "ordered-map-by-insertion" requires.
type RowField struct {
	Name string
	Type Type
}

// Row represents an open record `{id:int | rho}` or a closed one
// `{id:int, name:string}` when Tail is nil.
type Row struct {
	Fields []RowField
	Tail   Type // nil => closed row
}

func (t Row) field(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

func (t Row) withoutField(name string) Row {
	out := Row{Tail: t.Tail}
	for _, f := range t.Fields {
		if f.Name != name {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

func (t Row) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type.String())
	}
	if t.Tail != nil {
		return fmt.Sprintf("{%s | %s}", strings.Join(parts, ", "), t.Tail.String())
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

func (t Row) Apply(s Subst) Type {
	fields := make([]RowField, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = RowField{Name: f.Name, Type: f.Type.Apply(s)}
	}
	var tail Type
	if t.Tail != nil {
		tail = t.Tail.Apply(s)
	}
	return Row{Fields: fields, Tail: tail}
}

func (t Row) FreeVars() []string {
	var vars []string
	for _, f := range t.Fields {
		vars = append(vars, f.Type.FreeVars()...)
	}
	if t.Tail != nil {
		vars = append(vars, t.Tail.FreeVars()...)
	}
	return dedupe(vars)
}

// Hole is a `_` annotation: "infer a fresh variable, report LUM-010 if it
// can't be resolved."
type Hole struct {
	Span token.Span
}

func (t Hole) String() string     { return "_" }
func (t Hole) Apply(s Subst) Type { return t }
func (t Hole) FreeVars() []string { return nil }

// Promise wraps the result of an async function body (§4.2).
type Promise struct {
	Inner Type
}

func (t Promise) String() string     { return fmt.Sprintf("Promise<%s>", t.Inner.String()) }
func (t Promise) Apply(s Subst) Type { return Promise{Inner: t.Inner.Apply(s)} }
func (t Promise) FreeVars() []string { return t.Inner.FreeVars() }

// Scheme is a type generalized over a set of quantified variable ids.
type Scheme struct {
	Quantified []string
	Body       Type
}

func (s Scheme) String() string {
	if len(s.Quantified) == 0 {
		return s.Body.String()
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(s.Quantified, " "), s.Body.String())
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
