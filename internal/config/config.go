// Package config holds compile-time constants shared across the pipeline:
// the primitive normalization table, the default wrapper set, and the fixed
// set of built-in macro/runtime-helper names. Mirrors the teacher's
// internal/config/constants.go split between "what the language calls things"
// and "what mode we're running in".
package config

// IsTestMode mirrors the teacher's global test-mode flag: when set, type
// variable names are normalized (t1, t2, ... -> t?) so test assertions don't
// depend on fresh-variable counter ordering. Unlike the teacher's original
// (a package-global mutated by main.go), nothing in this module's inference
// path reads it — it exists only for the printer, keeping fresh-variable
// state itself per-run as the spec's §5 demands.
var IsTestMode = false

// Primitive is a normalized primitive type name.
type Primitive string

const (
	PrimInt    Primitive = "i32"
	PrimFloat  Primitive = "f64"
	PrimString Primitive = "string"
	PrimBool   Primitive = "bool"
	PrimVoid   Primitive = "void"
	PrimAny    Primitive = "any"
	PrimUSize  Primitive = "u32"
)

// normalizationTable maps surface primitive spellings to their canonical
// name, per §3's Type data model ("int -> i32, float -> f64, usize -> u32").
var normalizationTable = map[string]Primitive{
	"int":    PrimInt,
	"i32":    PrimInt,
	"float":  PrimFloat,
	"f64":    PrimFloat,
	"string": PrimString,
	"bool":   PrimBool,
	"void":   PrimVoid,
	"any":    PrimAny,
	"usize":  PrimUSize,
	"u32":    PrimUSize,
}

// NormalizePrimitive resolves a surface name to its canonical form. Unknown
// names pass through unchanged (the semantic analyzer is the one that
// decides whether an unknown name is actually an error).
func NormalizePrimitive(name string) Primitive {
	if p, ok := normalizationTable[name]; ok {
		return p
	}
	return Primitive(name)
}

// DefaultWrapperSet is the minimal set of ADT names whose parameters act as
// indirections permitting recursive types, per §4.1's barrier occurs check.
func DefaultWrapperSet() map[string]bool {
	return map[string]bool{
		"Option": true,
		"Result": true,
	}
}

// Built-in macro names that resolve without a user declaration (§4.4).
var BuiltinMacros = map[string]bool{
	"vec!":   true,
	"derive": true,
}

// Runtime helper names the scripting back end is allowed to emit (§4.8).
// The back end must never invent a helper name outside this fixed set.
const (
	HelperEq        = "__lumina_eq"
	HelperClone     = "__lumina_clone"
	HelperStringify = "__lumina_stringify"
	HelperTry       = "__lumina_try"
	HelperRange     = "__lumina_range"
	HelperSlice     = "__lumina_slice"
	HelperBoundsChk = "__lumina_array_bounds_check"
)

// ScriptTarget selects the preamble style for the scripting back end (§4.8).
type ScriptTarget string

const (
	TargetESM ScriptTarget = "esm"
	TargetCJS ScriptTarget = "cjs"
)

// Sync-point synchronization tokens used by the delegated panic-recovery
// layer (§7); listed here since the core's diagnostic converter needs to
// recognize PARSE_ERROR payloads shaped by that recovery contract.
var DefaultSyncTokens = []string{";", "}"}
