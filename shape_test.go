package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShapeString(t *testing.T) {
	tests := []struct {
		shape Shape
		want  string
	}{
		{Shape{S: []int{1}, J0: 1, J1: 1, C: []int{2}}, "+[[<+>->++<]>]"},
		{Shape{S: []int{4}, J0: 1, J1: 1, C: []int{5, 1, 4}, H: -1, K1: 2}, "++++[[<+>->+++++>+>++++<<<]->++]"},
		{Shape{S: []int{-1, 0, 2}, K0: -2, J0: 2, J1: 3, C: []int{0, -1}}, "++<<-[--[<++>--->>-<<]>]"},
	}
	for _, tt := range tests {
		got := tt.shape.String()
		assert.Equal(t, tt.want, got)
		assert.Len(t, got, tt.shape.Len(), tt.want)
	}
}

func TestShapeSegmentLengths(t *testing.T) {
	s := Shape{S: []int{-1, 0, 2}, C: []int{0, -1}}
	assert.Equal(t, 5, s.SLen())
	assert.Equal(t, 5, s.CLen())
	assert.Equal(t, "s[-1 0 2] k0,0 j0,0 c[0 -1] h0", s.Key())
}
