package ast

// NamedType is a nominal type reference, possibly generic: `Int`,
// `List<T>`, `Vec<i32, 3>`.
type NamedType struct {
	base
	Name string
	Args []TypeExpr
}

func (*NamedType) typeExprNode() {}

// FunctionType is a surface function type annotation `(A, B) -> C`.
type FunctionType struct {
	base
	Params []TypeExpr
	Return TypeExpr
}

func (*FunctionType) typeExprNode() {}

// HoleType is the `_` type annotation (§4.2, LUM-010 on failure to resolve).
type HoleType struct{ base }

func (*HoleType) typeExprNode() {}

// ArrayType is `[T; N]` (fixed, Size non-nil) or `[T]` (slice, Size nil).
type ArrayType struct {
	base
	Elem TypeExpr
	Size Expression // nil => slice; non-nil => fixed-size, const-evaluated
}

func (*ArrayType) typeExprNode() {}

// RecordFieldType is one field of a record type annotation.
type RecordFieldType struct {
	Name string
	Type TypeExpr
}

// RecordType is a structural record annotation `{ x: Int, y: Bool }`,
// optionally open (row-polymorphic) when used in a context that permits it.
type RecordType struct {
	base
	Fields []RecordFieldType
	Open   bool
}

func (*RecordType) typeExprNode() {}
