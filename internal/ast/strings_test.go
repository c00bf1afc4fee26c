package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringPoolInterning(t *testing.T) {
	pool := NewStringPool()

	a := pool.Intern("hello")
	b := pool.Intern("world")
	c := pool.Intern("hello")

	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, a, c, "identical contents share one entry")
	assert.Equal(t, 2, pool.Len())
	assert.Equal(t, []string{"hello", "world"}, pool.Values())
}

func TestStringPoolLabels(t *testing.T) {
	pool := NewStringPool()
	pool.Intern("x")
	pool.Intern("y")

	assert.Equal(t, "str_0", pool.Label(0))
	assert.Equal(t, "str_1", pool.Label(1))
}

func TestStringPoolDistinguishesDecodedBytes(t *testing.T) {
	pool := NewStringPool()
	a := pool.Intern("a\nb")
	b := pool.Intern(`a\nb`)
	assert.NotEqual(t, a, b)
}
