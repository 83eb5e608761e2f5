package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogFilters(t *testing.T) {
	shape := Shape{S: []int{1}, J0: 1, J1: 1, C: []int{2}}
	tr, term := Simulate(shape, testBounds)
	require.Equal(t, Halted, term)
	// exit tape: 0 1 2 4 8 16 32 64 128 0 0 0 0, exit at 10

	// goal 'A' (65): only 64 is within an adjustment of 19
	cat := NewCatalog(tr, []byte("A"), 20)
	require.Equal(t, 1, cat.Len())
	st, ok := cat.At(7)
	require.True(t, ok)
	assert.Equal(t, CandidateState{Iteration: 7, Offset: 7, Value: 64}, st)
	assert.Equal(t, []CandidateState{st}, cat.ByValue(64))

	// one byte at cap 3 allows 2 moves from the exit, and 128 is too far
	// from 0 to adjust
	cat = NewCatalog(tr, []byte{0}, 3)
	for s := range cat.States() {
		assert.LessOrEqual(t, MoveCost(s.Offset, tr.Exit), 2)
		assert.Equal(t, byte(0), s.Value)
	}
	_, ok = cat.At(12)
	assert.True(t, ok)
	_, ok = cat.At(7)
	assert.False(t, ok)
	_, ok = cat.At(-1)
	assert.False(t, ok)
	_, ok = cat.At(13)
	assert.False(t, ok)
}

func TestNewCatalogKeepsWindow(t *testing.T) {
	shape := Shape{S: []int{1}, J0: 1, J1: 1, C: []int{2}}
	tr, _ := Simulate(shape, testBounds)
	cat := NewCatalog(tr, []byte("hello"), 200)
	require.Equal(t, tr.MaxPointer+1, cat.Len())
	for s := range cat.States() {
		assert.GreaterOrEqual(t, s.Offset, 0)
		assert.LessOrEqual(t, s.Offset, cat.MaxPointer)
		assert.Equal(t, tr.Tape[s.Offset], s.Value)
	}
	_, ok := cat.checkWindow()
	assert.True(t, ok)
}

func TestCatalogOfByValue(t *testing.T) {
	cat := CatalogOf(0, 4, []CandidateState{
		{Offset: 0, Value: 7}, {Offset: 2, Value: 9}, {Offset: 4, Value: 7},
	})
	assert.Len(t, cat.ByValue(7), 2)
	assert.Len(t, cat.ByValue(9), 1)
	assert.Empty(t, cat.ByValue(8))
}
