package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustCostAllPairs(t *testing.T) {
	for v := range 256 {
		for u := range 256 {
			up := (u - v + 256) % 256
			down := (v - u + 256) % 256
			got := AdjustCost(byte(v), byte(u))
			if got != min(up, down) {
				t.Fatalf("AdjustCost(%d, %d) = %d, want %d", v, u, got, min(up, down))
			}
			if got > 128 {
				t.Fatalf("AdjustCost(%d, %d) = %d > 128", v, u, got)
			}
		}
		require.Zero(t, AdjustCost(byte(v), byte(v)))
	}
}

func TestAdjustCostWraps(t *testing.T) {
	assert.Equal(t, 1, AdjustCost(255, 0))
	assert.Equal(t, 2, AdjustCost(1, 255))
	assert.Equal(t, 128, AdjustCost(0, 128))
	assert.Equal(t, 104, AdjustCost(0, 'h'))
}

func TestLoopCountMatchesBruteForce(t *testing.T) {
	for step := -255; step <= 255; step++ {
		for v := range 256 {
			want, wantOK := 0, false
			var c byte = byte(v)
			for n := 0; n < 256; n++ {
				if c == 0 {
					want, wantOK = n, true
					break
				}
				c = addByte(c, -step)
			}
			got, ok := loopCount(byte(v), step)
			if ok != wantOK || (ok && got != want) {
				t.Fatalf("loopCount(%d, %d) = %d,%v want %d,%v", v, step, got, ok, want, wantOK)
			}
		}
	}
}

func TestMoveCost(t *testing.T) {
	assert.Equal(t, 3, MoveCost(2, 5))
	assert.Equal(t, 3, MoveCost(5, 2))
	assert.Zero(t, MoveCost(7, 7))
}
