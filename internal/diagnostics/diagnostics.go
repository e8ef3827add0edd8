// Package diagnostics implements the stable diagnostic shape the whole
// pipeline reports through. No phase in the core ever panics on a malformed
// program; it appends a Diagnostic and keeps going, mirroring the teacher's
// addError accumulation style in internal/analyzer.
package diagnostics

import (
	"fmt"

	"github.com/luminalang/lumina/internal/token"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

// Code is one of the stable diagnostic strings named in the specification.
type Code string

// HM (type inferencer) codes.
const (
	CodeUnifyFailure      Code = "LUM-001"
	CodeArityMismatch     Code = "LUM-002"
	CodeNonExhaustive     Code = "LUM-003"
	CodeUnresolvedHole    Code = "LUM-010"
	CodeTryNotResult      Code = "TRY_NOT_RESULT"
	CodeTryReturnMismatch Code = "TRY_RETURN_MISMATCH"
	CodeAwaitOutsideAsync Code = "AWAIT_OUTSIDE_ASYNC"
	CodeRecursiveType     Code = "RECURSIVE_TYPE_ERROR"
	CodeUnsupportedGADT   Code = "UNSUPPORTED_GADT"
	CodeUnsupportedHKT    Code = "UNSUPPORTED_HKT"
)

// Semantic analyzer codes.
const (
	CodeTraitMissingMethod    Code = "TRAIT-004"
	CodeTraitSignatureMismatch Code = "TRAIT-006"
	CodeTraitMissingAssocType Code = "TRAIT-012"
	CodeTraitMissingSupertrait Code = "TRAIT-015"
	CodeConstInvalidType      Code = "CONST-INVALID-TYPE"
	CodeConstUnboundParam     Code = "CONST-UNBOUND-PARAM"
	CodeConstDivZero          Code = "CONST-DIV-ZERO"
	CodeArrayRepeatNotInt     Code = "ARRAY_REPEAT_NOT_INT"
	CodeLossyCast             Code = "LOSSY-CAST"
	CodeTypeCast              Code = "TYPE-CAST"
	CodeStringInterpVoid      Code = "STRING_INTERP_VOID"
	CodeInvalidIndex          Code = "INVALID_INDEX"
	CodeRangeType             Code = "RANGE_TYPE"
	CodeUnresolvedMacro       Code = "UNRESOLVED_MACRO"
)

// Delegated / CLI-adjacent codes.
const (
	CodeParseError  Code = "PARSE_ERROR"
	CodeUnusedBind  Code = "UNUSED_BINDING"
)

// Related attaches a secondary note (e.g. "defined here") to a Diagnostic.
type Related struct {
	Message string
	Span    token.Span
}

// Diagnostic is the stable externally-visible shape described in §6.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Span     token.Span
	Related  []Related
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s (%s)", d.Severity, d.Code, d.Message, d.Span)
}

// New builds an error-severity Diagnostic.
func New(code Code, span token.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Severity: Error, Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}

// NewWarning builds a warning-severity Diagnostic.
func NewWarning(code Code, span token.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Severity: Warning, Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}

// Bag accumulates diagnostics across a phase, deduplicating by (Code, Span)
// per the spec's resolution of the HM-vs-semantic precedence question.
type Bag struct {
	items []*Diagnostic
	seen  map[string]bool
}

func NewBag() *Bag {
	return &Bag{seen: make(map[string]bool)}
}

func (b *Bag) Add(d *Diagnostic) {
	key := fmt.Sprintf("%s@%s", d.Code, d.Span)
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	b.items = append(b.items, d)
}

func (b *Bag) Addf(code Code, span token.Span, format string, args ...interface{}) {
	b.Add(New(code, span, format, args...))
}

func (b *Bag) Items() []*Diagnostic { return b.items }

func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Merge appends another bag's items (still deduplicating).
func (b *Bag) Merge(other *Bag) {
	for _, d := range other.items {
		b.Add(d)
	}
}

// SortByLocation returns a copy of items stably ordered by source offset
// (Span.Start.Offset). It does not order by phase: a Diagnostic records no
// phase, so diagnostics at equal offsets keep their input order.
func SortByLocation(items []*Diagnostic) []*Diagnostic {
	out := make([]*Diagnostic, len(items))
	copy(out, items)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Span.Start.Offset > out[j].Span.Start.Offset; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
