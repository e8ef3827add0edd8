package mono

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luminalang/lumina/internal/config"
	"github.com/luminalang/lumina/internal/typesystem"
)

func prim(p config.Primitive) typesystem.Primitive { return typesystem.Primitive{Name: p} }

func TestMangleTypeDistinguishesPrimitives(t *testing.T) {
	assert.Equal(t, "i32", MangleType(prim(config.PrimInt)))
	assert.Equal(t, "f64", MangleType(prim(config.PrimFloat)))
	assert.NotEqual(t, MangleType(prim(config.PrimInt)), MangleType(prim(config.PrimFloat)))
}

func TestMangleTypeADTWithParams(t *testing.T) {
	opt := typesystem.ADT{Name: "Option", Params: []typesystem.Type{prim(config.PrimInt)}}
	assert.Equal(t, "Option_i32", MangleType(opt))
}

func TestMangleTypeNestedADT(t *testing.T) {
	inner := typesystem.ADT{Name: "Option", Params: []typesystem.Type{prim(config.PrimInt)}}
	outer := typesystem.ADT{Name: "Result", Params: []typesystem.Type{inner, prim(config.PrimString)}}
	assert.Equal(t, "Result_Option_i32_string", MangleType(outer))
}

func TestMangleTypeFunction(t *testing.T) {
	fn := typesystem.Function{Args: []typesystem.Type{prim(config.PrimInt), prim(config.PrimBool)}, Return: prim(config.PrimString)}
	assert.Equal(t, "Fn_i32_bool_string", MangleType(fn))
}

func TestMangleTypePromise(t *testing.T) {
	p := typesystem.Promise{Inner: prim(config.PrimInt)}
	assert.Equal(t, "Promise_i32", MangleType(p))
}

func TestMangleNameDistinctTypeArgsProduceDistinctNames(t *testing.T) {
	a := MangleName("identity", []typesystem.Type{prim(config.PrimInt)})
	b := MangleName("identity", []typesystem.Type{prim(config.PrimString)})
	assert.NotEqual(t, a, b)
	assert.Equal(t, "identity_i32", a)
	assert.Equal(t, "identity_string", b)
}

func TestMangleNameNoTypeArgsReturnsBase(t *testing.T) {
	assert.Equal(t, "identity", MangleName("identity", nil))
}

func TestMangleConstArgsAppendsConstValues(t *testing.T) {
	name := MangleConstArgs("Vec", []typesystem.Type{prim(config.PrimInt)}, []int64{3})
	assert.Equal(t, "Vec_i32_3", name)
}
