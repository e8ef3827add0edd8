package main

import (
	"fmt"

	"github.com/luminalang/lumina/internal/ast"
)

// parseSource is the "parse source -> AST" contract spec.md §1 names as an
// external collaborator out of the core's scope ("The surface grammar and
// tokenization (consumed via an opaque 'parse source -> AST' contract)").
// luminac ships no lexer/parser of its own; embedding tools wire a concrete
// implementation in here. Until one is wired, compile/check return this
// error and watch/repl print it, instead of silently producing an empty
// program; it is not turned into a PARSE_ERROR diagnostic.
var parseSource = func(path string, src []byte) (*ast.Program, error) {
	return nil, fmt.Errorf("no front end wired: luminac embeds internal/compiler directly against a parser-produced *ast.Program; %s was not parsed", path)
}
