package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	// 8*8+1 = 'A'
	m, err := Execute("++++++++[>++++++++<-]>+.<<-.", 1000)
	require.NoError(t, err)
	assert.Equal(t, []byte{'A', 255}, m.Output())
	assert.Equal(t, -1, m.Pointer())
	assert.Equal(t, byte(65), m.Cell(1))
	assert.Equal(t, byte(255), m.Cell(-1))
	assert.Zero(t, m.Cell(-1000))
}

func TestExecuteErrors(t *testing.T) {
	_, err := Execute("+[", 100)
	assert.ErrorIs(t, err, ErrUnbalanced)
	_, err = Execute("]", 100)
	assert.ErrorIs(t, err, ErrUnbalanced)
	_, err = Execute("+[]", 100)
	assert.ErrorIs(t, err, ErrStepLimit)
}

func TestExecuteGrowsLeft(t *testing.T) {
	prog := ""
	for range 100 {
		prog += "<"
	}
	prog += "+++."
	m, err := Execute(prog, 1000)
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, m.Output())
	assert.Equal(t, byte(3), m.Cell(-100))
}

func TestRenderTail(t *testing.T) {
	plan := EmissionPlan{
		Start: 5,
		Steps: []PlanStep{
			{Offset: 3, Cost: 5, From: 'f', To: 'h'},
			{Offset: 3, Cost: 1, From: 'h', To: 'h'},
			{Offset: 4, Cost: 5, From: 2, To: 255},
		},
		Cost: 11,
	}
	tail := RenderTail(&plan)
	assert.Equal(t, "<<++..>---.", tail)
	assert.Len(t, tail, plan.Cost)
}

func TestRenderProgramRoundTrip(t *testing.T) {
	shape := Shape{S: []int{1}, J0: 1, J1: 1, C: []int{2}}
	tr, term := Simulate(shape, testBounds)
	require.Equal(t, Halted, term)

	goal := []byte("@A")
	cat := NewCatalog(tr, goal, 20)
	res, err := NewPlanner(goal, 20, false).Plan(t.Context(), cat, 100)
	require.NoError(t, err)
	require.Equal(t, Found, res.Outcome)

	prog := RenderProgram(&shape, &res.Plan)
	assert.Len(t, prog, shape.Len()+res.Plan.Cost)
	m, err := Execute(prog, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, goal, m.Output())
}
