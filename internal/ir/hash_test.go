package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHashDeterminism(t *testing.T) {
	v := IRObject{
		"name":  IRString("books"),
		"nodes": IRArray{IRInt(0), IRInt(1)},
	}

	h1, err := ContentHash(DomainQuery, v)
	require.NoError(t, err)
	h2, err := ContentHash(DomainQuery, v)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestContentHashKeyOrderIndependent(t *testing.T) {
	a := NewIRObjectFromPairs(O("a", IRInt(1)), O("b", IRInt(2)))
	b := NewIRObjectFromPairs(O("b", IRInt(2)), O("a", IRInt(1)))

	assert.Equal(t, MustContentHash(DomainQuery, a), MustContentHash(DomainQuery, b))
}

func TestContentHashDomainSeparation(t *testing.T) {
	v := IRObject{"name": IRString("x")}

	assert.NotEqual(t,
		MustContentHash(DomainQuery, v),
		MustContentHash(DomainOntology, v),
		"same payload under different domains must not collide")
}

func TestContentHashError(t *testing.T) {
	_, err := ContentHash(DomainQuery, IRArray{IRNull{}})
	assert.Error(t, err)
	assert.Panics(t, func() { MustContentHash(DomainQuery, IRNull{}) })
}
