package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func sampleSolution() Solution {
	shape := Shape{S: []int{1}, J0: 1, J1: 1, C: []int{2}}
	plan := EmissionPlan{
		Start: 10,
		Steps: []PlanStep{{Offset: 7, Cost: 4, From: 64, To: 64}, {Offset: 7, Cost: 2, From: 64, To: 65}},
		Cost:  6,
	}
	return Solution{
		Shape:     shape,
		Prefix:    shape.String(),
		Length:    shape.Len() + plan.Cost,
		Plan:      plan,
		Touched:   []int{7},
		Cells:     []byte{64, 128, 0, 0, 0},
		CellsFrom: 7,
		Program:   RenderProgram(&shape, &plan),
	}
}

func TestFormatSolution(t *testing.T) {
	sol := sampleSolution()
	want := "20: +[[<+>->++<]>]\n" +
		"10, (7 4), (7 2)\n" +
		"7\n" +
		"64, 128, 0, 0, 0"
	assert.Equal(t, want, FormatSolution(&sol, false))
	assert.Equal(t, want+"\n+[[<+>->++<]>]<<<.+.", FormatSolution(&sol, true))
}

func TestEncodeSolution(t *testing.T) {
	sol := sampleSolution()
	data, err := EncodeSolution(&sol)
	require.NoError(t, err)

	r := gjson.ParseBytes(data)
	assert.Equal(t, int64(20), r.Get("length").Int())
	assert.Equal(t, int64(14), r.Get("prefixLen").Int())
	assert.Equal(t, int64(10), r.Get("exit").Int())
	assert.Equal(t, int64(7), r.Get("steps.1.offset").Int())
	assert.Equal(t, int64(2), r.Get("steps.1.cost").Int())
	assert.False(t, r.Get("steps.1.move").Exists(), "walks carry no move")
	assert.Equal(t, sol.Program, r.Get("program").String())

	sol.Plan.Steps[1].Move = ZipLeft
	data, err = EncodeSolution(&sol)
	require.NoError(t, err)
	assert.Equal(t, "zip-left", gjson.GetBytes(data, "steps.1.move").String())
}
