package ast

import (
	"testing"

	"github.com/luminalang/lumina/internal/token"
	"github.com/stretchr/testify/require"
)

func TestProgramIDsAreStable(t *testing.T) {
	ResetIDs()
	id := NewIdentifier(token.Span{}, "x")
	lit := &IntLiteral{base: base{Id: NewID(), Sp: token.Span{}}, Value: 1}
	require.NotEqual(t, id.ID(), lit.ID())
	require.Equal(t, "x", id.Name)
}

func TestBlockHoldsStatements(t *testing.T) {
	ResetIDs()
	ret := &ReturnStmt{base: base{Id: NewID()}, Value: &IntLiteral{base: base{Id: NewID()}, Value: 5}}
	blk := &Block{base: base{Id: NewID()}, Statements: []Statement{ret}}
	require.Len(t, blk.Statements, 1)
	require.IsType(t, &ReturnStmt{}, blk.Statements[0])
}
