package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FormatSolution renders the report lines of one solution:
//
//	<length>: <prefix>
//	<exit>, (<offset> <cost>), ...
//	<touched offsets>
//	<cell values from the leftmost used cell>
//	<full program, when requested>
func FormatSolution(sol *Solution, fullProgram bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d: %s\n", sol.Length, sol.Prefix)

	b.WriteString(strconv.Itoa(sol.Plan.Start))
	for _, st := range sol.Plan.Steps {
		fmt.Fprintf(&b, ", (%d %d)", st.Offset, st.Cost)
	}
	b.WriteByte('\n')

	b.WriteString(joinInts(sol.Touched, " "))
	b.WriteByte('\n')

	cells := make([]int, len(sol.Cells))
	for i, v := range sol.Cells {
		cells[i] = int(v)
	}
	b.WriteString(joinInts(cells, ", "))

	if fullProgram {
		b.WriteByte('\n')
		b.WriteString(sol.Program)
	}
	return b.String()
}

func joinInts(vs []int, sep string) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}

// ── JSON ────────────────────────────────────────────────────────────

type stepRecord struct {
	Offset int    `json:"offset"`
	Cost   int    `json:"cost"`
	Move   string `json:"move,omitempty"`
}

// solutionRecord is the JSON form of a solution, used by the store and the
// HTTP handler.
type solutionRecord struct {
	Length    int          `json:"length"`
	Prefix    string       `json:"prefix"`
	PrefixLen int          `json:"prefixLen"`
	Exit      int          `json:"exit"`
	Steps     []stepRecord `json:"steps"`
	Touched   []int        `json:"touched"`
	Program   string       `json:"program"`
}

func newSolutionRecord(sol *Solution) solutionRecord {
	steps := make([]stepRecord, len(sol.Plan.Steps))
	for i, st := range sol.Plan.Steps {
		steps[i] = stepRecord{Offset: st.Offset, Cost: st.Cost}
		if st.Move != Walk {
			steps[i].Move = st.Move.String()
		}
	}
	return solutionRecord{
		Length:    sol.Length,
		Prefix:    sol.Prefix,
		PrefixLen: len(sol.Prefix),
		Exit:      sol.Plan.Start,
		Steps:     steps,
		Touched:   sol.Touched,
		Program:   sol.Program,
	}
}

// EncodeSolution marshals sol as JSON.
func EncodeSolution(sol *Solution) ([]byte, error) {
	data, err := json.Marshal(newSolutionRecord(sol))
	if err != nil {
		return nil, fmt.Errorf("encode solution: %w", err)
	}
	return data, nil
}
