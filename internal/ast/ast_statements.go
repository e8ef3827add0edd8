package ast

import "github.com/luminalang/lumina/internal/token"

// FunctionDecl declares a (possibly async, possibly generic) function.
type FunctionDecl struct {
	base
	Name       string
	Async      bool
	TypeParams []TypeParam
	Params     []Param
	ReturnType TypeExpr // nil => inferred
	Body       *Block
	Exported   bool
}

func (*FunctionDecl) statementNode() {}

func NewFunctionDecl(sp token.Span, name string) *FunctionDecl {
	return &FunctionDecl{base: base{Id: NewID(), Sp: sp}, Name: name}
}

// FieldDecl is one field of a struct declaration.
type FieldDecl struct {
	Name string
	Type TypeExpr
}

// StructDecl declares a (possibly generic, possibly const-generic) struct.
type StructDecl struct {
	base
	Name       string
	TypeParams []TypeParam
	Fields     []FieldDecl
}

func (*StructDecl) statementNode() {}

// EnumVariant is one variant of an enum declaration, with an optional
// tuple-style payload.
type EnumVariant struct {
	Name    string
	Payload []TypeExpr
}

// EnumDecl declares a (possibly generic) sum type.
type EnumDecl struct {
	base
	Name       string
	TypeParams []TypeParam
	Variants   []EnumVariant
}

func (*EnumDecl) statementNode() {}

// TraitMethod is one method signature in a trait declaration, optionally
// with a default body.
type TraitMethod struct {
	Name        string
	Params      []Param
	ReturnType  TypeExpr
	HasDefault  bool
	DefaultBody *Block
}

// TraitDecl declares a trait: a method set plus associated types.
type TraitDecl struct {
	base
	Name       string
	Supertrait string // "" if none
	AssocTypes []string
	Methods    []TraitMethod
}

func (*TraitDecl) statementNode() {}

// ImplDecl implements a trait (or, if TraitName is empty, an inherent impl)
// for SelfType.
type ImplDecl struct {
	base
	TraitName         string // "" => inherent impl
	SelfType          TypeExpr
	TypeParams        []TypeParam
	Methods           []*FunctionDecl
	AssocTypeBindings map[string]TypeExpr
}

func (*ImplDecl) statementNode() {}

// TypeAliasDecl declares `type Name<params> = Aliased`.
type TypeAliasDecl struct {
	base
	Name       string
	TypeParams []string
	Aliased    TypeExpr
}

func (*TypeAliasDecl) statementNode() {}

// LetStmt binds a name (or destructuring pattern) to a value.
type LetStmt struct {
	base
	Name       string   // simple binding; "" if Pattern is used
	Pattern    Pattern  // destructuring binding; nil if Name is used
	Annotation TypeExpr // nil => inferred
	Value      Expression
}

func (*LetStmt) statementNode() {}

// ReturnStmt returns from the enclosing function.
type ReturnStmt struct {
	base
	Value Expression // nil => bare `return;`
}

func (*ReturnStmt) statementNode() {}

// Block is a brace-delimited statement sequence introducing a lexical scope.
type Block struct {
	base
	Statements []Statement
}

func (*Block) statementNode() {}

// ExprStmt is an expression used for its side effect.
type ExprStmt struct {
	base
	Expr Expression
}

func (*ExprStmt) statementNode() {}

// IfStmt is a statement-position conditional. Else is nil, *Block, or
// *IfStmt (for `else if`).
type IfStmt struct {
	base
	Cond Expression
	Then *Block
	Else Statement
}

func (*IfStmt) statementNode() {}

// WhileStmt is a pre-tested loop.
type WhileStmt struct {
	base
	Cond Expression
	Body *Block
}

func (*WhileStmt) statementNode() {}

// MatchArm is one arm of a statement-position match.
type MatchArm struct {
	Pattern Pattern
	Guard   Expression // nil => unguarded
	Body    *Block
}

// MatchStmt pattern-matches a scrutinee over a sum type.
type MatchStmt struct {
	base
	Scrutinee Expression
	Arms      []MatchArm
}

func (*MatchStmt) statementNode() {}

// ImportStmt imports another module.
type ImportStmt struct {
	base
	Path  string
	Alias string
}

func (*ImportStmt) statementNode() {}
