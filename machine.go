package main

import (
	"errors"
	"fmt"
)

var (
	// ErrStepLimit means the program did not finish within the step budget.
	ErrStepLimit = errors.New("step limit exceeded")
	// ErrUnbalanced means the program's brackets do not match.
	ErrUnbalanced = errors.New("unbalanced brackets")
)

// Machine is a reference interpreter for the tape language. The tape grows
// in both directions; offsets are relative to the starting cell.
type Machine struct {
	cells  []byte
	origin int
	ptr    int
	out    []byte
	steps  int
}

// Execute runs program from a zeroed tape. Input (',') reads zero.
func Execute(program string, maxSteps int) (*Machine, error) {
	jump, err := matchBrackets(program)
	if err != nil {
		return nil, err
	}
	m := &Machine{cells: make([]byte, 64), origin: 32}
	for pc := 0; pc < len(program); pc++ {
		m.steps++
		if m.steps > maxSteps {
			return m, fmt.Errorf("after %d steps at pc %d: %w", maxSteps, pc, ErrStepLimit)
		}
		switch program[pc] {
		case '+':
			*m.cell()++
		case '-':
			*m.cell()--
		case '>':
			m.ptr++
		case '<':
			m.ptr--
		case '.':
			m.out = append(m.out, *m.cell())
		case ',':
			*m.cell() = 0
		case '[':
			if *m.cell() == 0 {
				pc = jump[pc]
			}
		case ']':
			if *m.cell() != 0 {
				pc = jump[pc]
			}
		}
	}
	return m, nil
}

func matchBrackets(program string) (map[int]int, error) {
	jump := make(map[int]int)
	var open []int
	for i := 0; i < len(program); i++ {
		switch program[i] {
		case '[':
			open = append(open, i)
		case ']':
			if len(open) == 0 {
				return nil, fmt.Errorf("stray ']' at %d: %w", i, ErrUnbalanced)
			}
			j := open[len(open)-1]
			open = open[:len(open)-1]
			jump[i], jump[j] = j, i
		}
	}
	if len(open) > 0 {
		return nil, fmt.Errorf("unclosed '[' at %d: %w", open[len(open)-1], ErrUnbalanced)
	}
	return jump, nil
}

// cell returns the current cell, growing the tape as needed.
func (m *Machine) cell() *byte {
	i := m.origin + m.ptr
	for i < 0 {
		grown := make([]byte, 2*len(m.cells))
		copy(grown[len(m.cells):], m.cells)
		m.origin += len(m.cells)
		m.cells = grown
		i = m.origin + m.ptr
	}
	for i >= len(m.cells) {
		m.cells = append(m.cells, make([]byte, len(m.cells))...)
	}
	return &m.cells[i]
}

// Output is everything printed so far.
func (m *Machine) Output() []byte { return m.out }

// Pointer is the current offset from the starting cell.
func (m *Machine) Pointer() int { return m.ptr }

// Steps is the number of instructions executed.
func (m *Machine) Steps() int { return m.steps }

// Cell reads the cell at offset without growing the tape.
func (m *Machine) Cell(offset int) byte {
	i := m.origin + offset
	if i < 0 || i >= len(m.cells) {
		return 0
	}
	return m.cells[i]
}
