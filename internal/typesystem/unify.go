package typesystem

import (
	"fmt"
)

// ErrorKind classifies a unification failure (§7's type-error taxonomy).
type ErrorKind string

const (
	ErrMismatch  ErrorKind = "mismatch"
	ErrArity     ErrorKind = "arity"
	ErrRecursive ErrorKind = "recursive"
)

// UnifyError carries the expected/found trace the HM driver synthesizes a
// diagnostic from (§5's failure-containment rule).
type UnifyError struct {
	Kind     ErrorKind
	Expected Type
	Found    Type
	Detail   string
}

func (e *UnifyError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: expected %s, found %s: %s", e.Kind, e.Expected, e.Found, e.Detail)
	}
	return fmt.Sprintf("%s: expected %s, found %s", e.Kind, e.Expected, e.Found)
}

// RowResolver lets Unify look up the field table of a nominal ADT that
// behaves like a row (e.g. a declared struct), so that field access on a
// concrete struct still participates in row unification (§4.1 rule 4).
type RowResolver interface {
	ResolveRow(Type) (Row, bool)
}

// State is the per-inference-run owner of the substitution and the
// fresh-variable counter. The spec's design notes (§9) call out the
// teacher's global counter as the thing to fix: State is never shared
// across two calls to infer_program.
type State struct {
	Subst    Subst
	counter  int
	Wrappers map[string]bool
	Resolver RowResolver
}

// NewState creates fresh per-run inference state. wrappers is the set of ADT
// names (minimally Option, Result) whose parameters act as barriers for the
// occurs check.
func NewState(wrappers map[string]bool) *State {
	if wrappers == nil {
		wrappers = map[string]bool{}
	}
	return &State{Subst: Subst{}, Wrappers: wrappers}
}

// Fresh allocates a new unbound type variable.
func (st *State) Fresh() Variable {
	st.counter++
	return Variable{ID: fmt.Sprintf("t%d", st.counter)}
}

// Prune walks the substitution until reaching a type that's not a bound
// variable, compressing the path as it goes (§4.1).
func (st *State) Prune(t Type) Type {
	v, ok := t.(Variable)
	if !ok {
		return t
	}
	repl, ok := st.Subst[v.ID]
	if !ok {
		return v
	}
	final := st.Prune(repl)
	st.Subst[v.ID] = final // path compression
	return final
}

// Unify attempts to make t1 and t2 equal, recording bindings in st.Subst.
func (st *State) Unify(t1, t2 Type) error {
	_, err := st.unify(t1, t2, false)
	return err
}

// unify threads the occurs-check barrier flag through one unification.
func (st *State) unify(t1, t2 Type, passedBarrier bool) (bool, error) {
	t1 = st.Prune(t1)
	t2 = st.Prune(t2)

	// Rule 2: same variable.
	if v1, ok := t1.(Variable); ok {
		if v2, ok := t2.(Variable); ok && v1.ID == v2.ID {
			return passedBarrier, nil
		}
	}

	// Rule 3: one side a variable -> barrier occurs check, then bind.
	if v1, ok := t1.(Variable); ok {
		if ok, err := st.occursBarrier(v1, t2, passedBarrier); err != nil {
			return false, err
		} else if ok {
			// Occurs, but only past a barrier: legal, no binding needed
			// (the recursive reference resolves through the wrapper).
			return true, nil
		}
		st.Subst[v1.ID] = t2
		return passedBarrier, nil
	}
	if v2, ok := t2.(Variable); ok {
		if ok, err := st.occursBarrier(v2, t1, passedBarrier); err != nil {
			return false, err
		} else if ok {
			return true, nil
		}
		st.Subst[v2.ID] = t1
		return passedBarrier, nil
	}

	// Rule 4: rows (directly, or resolved via RowResolver).
	row1, isRow1 := st.asRow(t1)
	row2, isRow2 := st.asRow(t2)
	if isRow1 && isRow2 {
		return passedBarrier, st.unifyRows(row1, row2)
	}

	// Rule 5: primitives.
	if p1, ok := t1.(Primitive); ok {
		if p2, ok := t2.(Primitive); ok {
			if p1.Name == p2.Name {
				return passedBarrier, nil
			}
			return passedBarrier, &UnifyError{Kind: ErrMismatch, Expected: t1, Found: t2}
		}
	}

	// Rule 6: functions.
	if f1, ok := t1.(Function); ok {
		f2, ok := t2.(Function)
		if !ok {
			return passedBarrier, &UnifyError{Kind: ErrMismatch, Expected: t1, Found: t2}
		}
		if len(f1.Args) != len(f2.Args) {
			return passedBarrier, &UnifyError{Kind: ErrArity, Expected: t1, Found: t2}
		}
		for i := range f1.Args {
			if _, err := st.unify(f1.Args[i], f2.Args[i], passedBarrier); err != nil {
				return passedBarrier, err
			}
		}
		_, err := st.unify(f1.Return, f2.Return, passedBarrier)
		return passedBarrier, err
	}

	// Rule 7: promises.
	if p1, ok := t1.(Promise); ok {
		p2, ok := t2.(Promise)
		if !ok {
			return passedBarrier, &UnifyError{Kind: ErrMismatch, Expected: t1, Found: t2}
		}
		_, err := st.unify(p1.Inner, p2.Inner, passedBarrier)
		return passedBarrier, err
	}

	// Rule 8: ADTs.
	if a1, ok := t1.(ADT); ok {
		a2, ok := t2.(ADT)
		if !ok || a1.Name != a2.Name {
			return passedBarrier, &UnifyError{Kind: ErrMismatch, Expected: t1, Found: t2}
		}
		if len(a1.Params) != len(a2.Params) {
			return passedBarrier, &UnifyError{Kind: ErrArity, Expected: t1, Found: t2}
		}
		barrier := passedBarrier || st.Wrappers[a1.Name]
		for i := range a1.Params {
			if _, err := st.unify(a1.Params[i], a2.Params[i], barrier); err != nil {
				return passedBarrier, err
			}
		}
		return passedBarrier, nil
	}

	// Rule 9: everything else.
	return passedBarrier, &UnifyError{Kind: ErrMismatch, Expected: t1, Found: t2}
}

func (st *State) asRow(t Type) (Row, bool) {
	if r, ok := t.(Row); ok {
		return r, true
	}
	if st.Resolver != nil {
		if r, ok := st.Resolver.ResolveRow(t); ok {
			return r, true
		}
	}
	return Row{}, false
}

func (st *State) unifyRows(r1, r2 Row) error {
	remaining2 := r2
	for _, f1 := range r1.Fields {
		v2, ok := remaining2.field(f1.Name)
		if !ok {
			if remaining2.Tail == nil {
				return &UnifyError{Kind: ErrMismatch, Expected: r1, Found: r2, Detail: "missing field " + f1.Name}
			}
			// Extra field on r1's side unifies into r2's tail: grow the tail.
			fresh := st.Prune(remaining2.Tail)
			newTailVar, isVar := fresh.(Variable)
			if !isVar {
				return &UnifyError{Kind: ErrMismatch, Expected: r1, Found: r2, Detail: "tail is not extensible"}
			}
			rest := st.Fresh()
			st.Subst[newTailVar.ID] = Row{Fields: []RowField{{Name: f1.Name, Type: f1.Type}}, Tail: rest}
			remaining2 = Row{Tail: rest}
			continue
		}
		if _, err := st.unify(f1.Type, v2, false); err != nil {
			return err
		}
		remaining2 = remaining2.withoutField(f1.Name)
	}
	// Remaining fields unique to r2 unify into r1's tail the same way.
	for _, f2 := range remaining2.Fields {
		if _, ok := r1.field(f2.Name); ok {
			continue // already consumed above
		}
		if r1.Tail == nil {
			return &UnifyError{Kind: ErrMismatch, Expected: r1, Found: r2, Detail: "missing field " + f2.Name}
		}
		fresh := st.Prune(r1.Tail)
		tailVar, isVar := fresh.(Variable)
		if !isVar {
			return &UnifyError{Kind: ErrMismatch, Expected: r1, Found: r2, Detail: "tail is not extensible"}
		}
		rest := st.Fresh()
		st.Subst[tailVar.ID] = Row{Fields: []RowField{{Name: f2.Name, Type: f2.Type}}, Tail: rest}
	}
	if r1.Tail != nil && remaining2.Tail != nil {
		_, err := st.unify(r1.Tail, remaining2.Tail, false)
		return err
	}
	return nil
}

// occursBarrier implements §4.1 rule 3: the occurs check, except that
// descending through a parameter of a wrapper-set ADT toggles "passed
// barrier"; recurrence of the target variable past the barrier is legal.
// Returns (occursPastBarrier, error). error is non-nil for a bare occurs
// violation (no barrier crossed).
func (st *State) occursBarrier(tv Variable, t Type, passedBarrier bool) (bool, error) {
	t = st.Prune(t)
	switch typ := t.(type) {
	case Variable:
		if typ.ID == tv.ID {
			if passedBarrier {
				return true, nil
			}
			return false, &UnifyError{Kind: ErrRecursive, Expected: tv, Found: t}
		}
		return false, nil
	case ADT:
		barrier := passedBarrier || st.Wrappers[typ.Name]
		for _, p := range typ.Params {
			if occurred, err := st.occursBarrier(tv, p, barrier); err != nil {
				return false, err
			} else if occurred {
				return true, nil
			}
		}
		return false, nil
	case Function:
		for _, a := range typ.Args {
			if occurred, err := st.occursBarrier(tv, a, passedBarrier); err != nil {
				return false, err
			} else if occurred {
				return true, nil
			}
		}
		return st.occursBarrier(tv, typ.Return, passedBarrier)
	case Promise:
		return st.occursBarrier(tv, typ.Inner, passedBarrier)
	case Row:
		for _, f := range typ.Fields {
			if occurred, err := st.occursBarrier(tv, f.Type, passedBarrier); err != nil {
				return false, err
			} else if occurred {
				return true, nil
			}
		}
		if typ.Tail != nil {
			return st.occursBarrier(tv, typ.Tail, passedBarrier)
		}
		return false, nil
	default:
		return false, nil
	}
}

// FreeVars returns the free variable ids of t under the current substitution.
func (st *State) FreeVars(t Type) map[string]bool {
	out := map[string]bool{}
	for _, v := range st.Prune(t).FreeVars() {
		out[v] = true
	}
	return out
}

// Generalize produces a Scheme quantifying over the free variables of t that
// are not in bound (the enclosing environment's free variables).
func (st *State) Generalize(t Type, bound map[string]bool) Scheme {
	t = st.applyDeep(t)
	free := t.FreeVars()
	var quantified []string
	for _, v := range free {
		if !bound[v] {
			quantified = append(quantified, v)
		}
	}
	return Scheme{Quantified: quantified, Body: t}
}

// Instantiate replaces every quantified variable in sc with a fresh one.
func (st *State) Instantiate(sc Scheme) Type {
	t, _ := st.InstantiateWithSubst(sc)
	return t
}

// InstantiateWithSubst is Instantiate plus the quantified-name -> fresh-var
// substitution it used, so a caller can later Prune each fresh var (after
// unifying against call-site argument types) to recover the concrete type
// HM inferred for that quantified parameter — the per-call-site
// instantiation monomorphization keys on (§4.2, §4.5).
func (st *State) InstantiateWithSubst(sc Scheme) (Type, Subst) {
	s := Subst{}
	for _, v := range sc.Quantified {
		s[v] = st.Fresh()
	}
	return sc.Body.Apply(s), s
}

// applyDeep applies the full current substitution, resolving through Prune
// so schemes capture the final resolved shape rather than intermediate vars.
func (st *State) applyDeep(t Type) Type {
	return t.Apply(st.Subst)
}
