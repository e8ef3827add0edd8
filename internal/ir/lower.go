package ir

import (
	"fmt"

	"github.com/luminalang/lumina/internal/ast"
	"github.com/luminalang/lumina/internal/token"
)

// scope tracks, for the statement currently being lowered, which SSA-suffixed
// name each source binding currently resolves to (§4.6: "Later references to
// x within the scope resolve to the most recent suffix").
type scope struct {
	current map[string]string
	counter map[string]int
}

func newScope() *scope {
	return &scope{current: map[string]string{}, counter: map[string]int{}}
}

func (s *scope) clone() *scope {
	c := newScope()
	for k, v := range s.current {
		c.current[k] = v
	}
	// The suffix counter is shared rather than copied, so sibling scopes (the
	// two branches of an if, successive match arms) never mint the same name.
	c.counter = s.counter
	return c
}

// fresh mints the next suffixed name for base and records it as current.
func (s *scope) fresh(name string) string {
	s.counter[name]++
	suffixed := fmt.Sprintf("%s_%d", name, s.counter[name])
	s.current[name] = suffixed
	return suffixed
}

// resolve returns the name an identifier reference should use: its current
// SSA suffix if this scope has ever bound it, else the bare name (a function
// parameter, global function, or module-level constant).
func (s *scope) resolve(name string) string {
	if v, ok := s.current[name]; ok {
		return v
	}
	return name
}

// Lower runs the structural AST-to-IR mapping of §4.6 over a monomorphized
// program.
func Lower(prog *ast.Program) *Program {
	out := &Program{}
	for _, stmt := range prog.Statements {
		fd, ok := stmt.(*ast.FunctionDecl)
		if !ok || fd.Body == nil {
			continue
		}
		out.Functions = append(out.Functions, lowerFunction(fd))
	}
	return out
}

func lowerFunction(fd *ast.FunctionDecl) *Function {
	sc := newScope()
	params := make([]string, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = p.Name
		sc.current[p.Name] = p.Name
	}
	fn := &Function{
		base:     base{Sp: fd.Span()},
		Name:     fd.Name,
		Params:   params,
		Exported: fd.Exported,
	}
	fn.Body = lowerBlock(fd.Body, sc)
	return fn
}

func lowerBlock(b *ast.Block, sc *scope) []Stmt {
	if b == nil {
		return nil
	}
	var out []Stmt
	for _, s := range b.Statements {
		out = append(out, lowerStmt(s, sc)...)
		if _, ok := s.(*ast.ReturnStmt); ok {
			break // §4.7 step 6 trims these too, but lowering needn't manufacture dead IR
		}
	}
	return out
}

func lowerStmt(s ast.Statement, sc *scope) []Stmt {
	switch n := s.(type) {
	case *ast.LetStmt:
		val := lowerExpr(n.Value, sc)
		name := n.Name
		if name == "" && n.Pattern != nil {
			// Destructuring let: bind a synthetic root then project fields;
			// simple single-identifier patterns are the common case.
			if bp, ok := n.Pattern.(*ast.BindingPattern); ok {
				name = bp.Name
			} else {
				name = "_pat"
			}
		}
		return []Stmt{&Let{base: base{Sp: n.Span()}, Name: sc.fresh(name), Value: val}}

	case *ast.ReturnStmt:
		var val Expr
		if n.Value != nil {
			val = lowerExpr(n.Value, sc)
		}
		return []Stmt{&Return{base: base{Sp: n.Span()}, Value: val}}

	case *ast.ExprStmt:
		return []Stmt{&ExprStmt{base: base{Sp: n.Span()}, Value: lowerExpr(n.Expr, sc)}}

	case *ast.Block:
		return lowerBlock(n, sc)

	case *ast.IfStmt:
		return lowerIf(n, sc)

	case *ast.WhileStmt:
		return lowerWhile(n, sc)

	case *ast.MatchStmt:
		return lowerMatchStmt(n, sc)

	default:
		return nil
	}
}

func lowerIf(n *ast.IfStmt, sc *scope) []Stmt {
	cond := lowerExpr(n.Cond, sc)

	thenSc := sc.clone()
	thenStmts := lowerBlock(n.Then, thenSc)

	elseSc := sc.clone()
	var elseStmts []Stmt
	if n.Else != nil {
		elseStmts = lowerStmt(n.Else, elseSc)
	}

	out := []Stmt{&If{base: base{Sp: n.Span()}, Cond: cond, Then: thenStmts, Else: elseStmts}}

	// Join point: any binding whose current suffix differs between the two
	// branches (or between a branch and the pre-if scope) needs a Phi,
	// per §4.6's join rule.
	changed := map[string]bool{}
	for name, v := range thenSc.current {
		if sc.current[name] != v {
			changed[name] = true
		}
	}
	for name, v := range elseSc.current {
		if sc.current[name] != v {
			changed[name] = true
		}
	}
	for _, name := range sortedKeys(changed) {
		thenVal := &Identifier{base: base{Sp: n.Span()}, Name: branchValue(thenSc, sc, name)}
		elseVal := &Identifier{base: base{Sp: n.Span()}, Name: branchValue(elseSc, sc, name)}
		phi := &Phi{base: base{Sp: n.Span()}, Cond: cond, ThenVal: thenVal, ElseVal: elseVal}
		out = append(out, &Let{base: base{Sp: n.Span()}, Name: sc.fresh(name), Value: phi})
	}
	return out
}

// branchValue returns the name a binding resolves to at the end of one
// branch, falling back to its pre-if value when that branch never touched it
// (§4.6: "Where only one branch assigns, the other branch contributes the
// pre-if value").
func branchValue(branchSc, preSc *scope, name string) string {
	if v, ok := branchSc.current[name]; ok {
		return v
	}
	return preSc.resolve(name)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// lowerWhile desugars `while cond { body }` into an infinite loop with a
// break prelude (§4.6). Loop-carried bindings update via Assign rather than
// a fresh Let, matching the spec's "Assign updates" — SSA renaming resets at
// loop entry and is not threaded across the back edge, a documented
// simplification since this spec's optimizer never needs loop-carried Phis.
func lowerWhile(n *ast.WhileStmt, sc *scope) []Stmt {
	cond := lowerExpr(n.Cond, sc)
	guard := &If{
		base: base{Sp: n.Cond.Span()},
		Cond: &Unary{base: base{Sp: n.Cond.Span()}, Op: "!", Operand: cond},
		Then: []Stmt{&Break{base: base{Sp: n.Cond.Span()}}},
	}
	bodySc := sc.clone()
	body := append([]Stmt{guard}, lowerLoopBody(n.Body, bodySc)...)
	return []Stmt{&While{base: base{Sp: n.Span()}, Body: body}}
}

// lowerLoopBody lowers a while-body's statements, turning rebindings of a
// name already known in the enclosing scope into Assign (loop-carried
// mutation) instead of a fresh suffixed Let.
func lowerLoopBody(b *ast.Block, sc *scope) []Stmt {
	if b == nil {
		return nil
	}
	var out []Stmt
	for _, s := range b.Statements {
		if ls, ok := s.(*ast.LetStmt); ok && ls.Name != "" {
			if _, known := sc.current[ls.Name]; known {
				val := lowerExpr(ls.Value, sc)
				out = append(out, &Assign{base: base{Sp: ls.Span()}, Name: sc.resolve(ls.Name), Value: val})
				continue
			}
		}
		out = append(out, lowerStmt(s, sc)...)
	}
	return out
}

func lowerMatchStmt(n *ast.MatchStmt, sc *scope) []Stmt {
	scrutinee := lowerExpr(n.Scrutinee, sc)
	return lowerMatchArms(n.Span(), scrutinee, n.Arms, 0, sc)
}

// lowerMatchArms lowers match arms[i:] into a nested If/Tag cascade (§4.6):
// each arm becomes `if tag(scrutinee) == "Variant" { <payload bound via
// Member>; <lowered body> }` chained into the next arm's else. A
// wildcard/binding pattern (exhaustiveness already checked it's only ever
// last, or unreachable arms after it are simply never reached) lowers to an
// unconditional block instead of an If.
func lowerMatchArms(sp token.Span, scrutinee Expr, arms []ast.MatchArm, i int, sc *scope) []Stmt {
	if i >= len(arms) {
		return nil
	}
	arm := arms[i]
	armSc := sc.clone()
	body := bindMatchPayload(arm.Pattern, scrutinee, armSc)
	body = append(body, lowerBlock(arm.Body, armSc)...)

	if isCatchAllPattern(arm.Pattern) && arm.Guard == nil {
		return body
	}

	cond := matchCondition(arm.Pattern, scrutinee, sp)
	if arm.Guard != nil {
		guardVal := lowerExpr(arm.Guard, armSc)
		cond = &Binary{base: base{Sp: sp}, Op: "&&", Left: cond, Right: guardVal}
	}
	elseStmts := lowerMatchArms(sp, scrutinee, arms, i+1, sc)
	return []Stmt{&If{base: base{Sp: sp}, Cond: cond, Then: body, Else: elseStmts}}
}

func isCatchAllPattern(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.WildcardPattern, *ast.BindingPattern:
		return true
	default:
		return false
	}
}

// matchCondition builds the tag-discrimination test for a pattern against
// scrutinee. Literal patterns compare by value; variant patterns compare the
// enum discriminant.
func matchCondition(p ast.Pattern, scrutinee Expr, sp token.Span) Expr {
	switch pat := p.(type) {
	case *ast.VariantPattern:
		tag := &Tag{base: base{Sp: sp}, Object: scrutinee}
		want := &String{base: base{Sp: sp}, Value: pat.Variant}
		return &Binary{base: base{Sp: sp}, Op: "==", Left: tag, Right: want}
	case *ast.LiteralPattern:
		return &Binary{base: base{Sp: sp}, Op: "==", Left: scrutinee, Right: lowerExprStandalone(pat.Value)}
	default:
		return &Boolean{base: base{Sp: sp}, Value: true}
	}
}

// lowerExprStandalone lowers an expression with no enclosing scope's
// bindings in play (only used for self-contained literal patterns).
func lowerExprStandalone(e ast.Expression) Expr {
	return lowerExpr(e, newScope())
}

// bindMatchPayload emits the Let statements projecting a variant pattern's
// sub-patterns off the scrutinee's payload fields via Member reads (§4.6).
func bindMatchPayload(p ast.Pattern, scrutinee Expr, sc *scope) []Stmt {
	switch pat := p.(type) {
	case *ast.BindingPattern:
		return []Stmt{&Let{Name: sc.fresh(pat.Name), Value: scrutinee}}
	case *ast.VariantPattern:
		var out []Stmt
		for i, sub := range pat.SubPatterns {
			field := fmt.Sprintf("_%d", i)
			member := &Member{Object: scrutinee, Field: field}
			out = append(out, bindMatchPayload(sub, member, sc)...)
		}
		return out
	case *ast.TuplePattern:
		var out []Stmt
		for i, el := range pat.Elements {
			field := fmt.Sprintf("_%d", i)
			member := &Member{Object: scrutinee, Field: field}
			out = append(out, bindMatchPayload(el, member, sc)...)
		}
		return out
	default:
		return nil
	}
}
