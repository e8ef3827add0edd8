// Package exhaustive checks match coverage over enum scrutinees (§4.3):
// a match over enum E is exhaustive iff every variant of E is covered by
// some unguarded arm, or a wildcard/binding arm is present. Guarded arms
// (arm.Guard != nil) never count toward coverage since the guard may fail
// at runtime.
//
// Grounded on the teacher's internal/analyzer exhaustiveness pass (the
// "every constructor of a sum type must be covered by match" rule in
// declarations_patterns.go), generalized here to this spec's arm/pattern
// shapes and its own LUM-003 diagnostic code.
package exhaustive

import (
	"github.com/luminalang/lumina/internal/ast"
	"github.com/luminalang/lumina/internal/diagnostics"
	"github.com/luminalang/lumina/internal/token"
)

// EnumVariants gives this package just enough to look up a declared enum's
// variant names; infer.Result.EnumVariants is keyed "Enum.Variant" so a
// thin adapter collects the plain per-enum variant lists once up front.
type EnumVariants map[string][]string

// BuildEnumVariants inverts infer.Result.EnumOf (variant name -> owning enum)
// into the per-enum variant-name lists this package consumes.
func BuildEnumVariants(variantToEnum map[string]string) EnumVariants {
	out := EnumVariants{}
	for variant, enumName := range variantToEnum {
		out[enumName] = append(out[enumName], variant)
	}
	return out
}

// CheckMatchStmt reports LUM-003 if stmt's arms don't cover every variant of
// enumName.
func CheckMatchStmt(bag *diagnostics.Bag, enumName string, variants EnumVariants, stmt *ast.MatchStmt) {
	covered, wildcard := coverage(stmt.Arms)
	reportIfIncomplete(bag, enumName, variants, covered, wildcard, stmt.Span())
}

// CheckMatchExpr is the expression-position counterpart (§3 MatchExpr).
func CheckMatchExpr(bag *diagnostics.Bag, enumName string, variants EnumVariants, expr *ast.MatchExpr) {
	covered := map[string]bool{}
	wildcard := false
	for _, arm := range expr.Arms {
		if arm.Guard != nil {
			continue
		}
		markCoverage(arm.Pattern, covered, &wildcard)
	}
	reportIfIncomplete(bag, enumName, variants, covered, wildcard, expr.Span())
}

func coverage(arms []ast.MatchArm) (map[string]bool, bool) {
	covered := map[string]bool{}
	wildcard := false
	for _, arm := range arms {
		if arm.Guard != nil {
			continue
		}
		markCoverage(arm.Pattern, covered, &wildcard)
	}
	return covered, wildcard
}

func markCoverage(pat ast.Pattern, covered map[string]bool, wildcard *bool) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		*wildcard = true
	case *ast.BindingPattern:
		*wildcard = true
	case *ast.VariantPattern:
		covered[p.Variant] = true
	}
}

func reportIfIncomplete(bag *diagnostics.Bag, enumName string, variants EnumVariants, covered map[string]bool, wildcard bool, span token.Span) {
	if wildcard {
		return
	}
	var missing []string
	for _, v := range variants[enumName] {
		if !covered[v] {
			missing = append(missing, v)
		}
	}
	if len(missing) == 0 {
		return
	}
	msg := "non-exhaustive match on " + enumName + ", missing variant"
	if len(missing) > 1 {
		msg += "s"
	}
	msg += ": "
	for i, m := range missing {
		if i > 0 {
			msg += ", "
		}
		msg += m
	}
	bag.Add(diagnostics.New(diagnostics.CodeNonExhaustive, span, msg))
}
