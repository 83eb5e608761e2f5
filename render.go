package main

import "strings"

// RenderTail writes the emission tail of plan. Each step moves (walking, or
// zipping to a zero cell first), adjusts in the shorter direction and prints
// with '.' or, for a roll, with a print loop that leaves the pointer on the
// zero cell ending the run.
func RenderTail(plan *EmissionPlan) string {
	var b strings.Builder
	b.Grow(plan.Cost)
	ptr := plan.Start
	for _, st := range plan.Steps {
		switch st.Move {
		case Rolled:
			continue
		case ZipLeft:
			writeRepeat(&b, '<', st.Skip)
			b.WriteString("[<]")
			ptr = st.Via
		case ZipRight:
			writeRepeat(&b, '>', st.Skip)
			b.WriteString("[>]")
			ptr = st.Via
		}
		if st.Offset > ptr {
			writeRepeat(&b, '>', st.Offset-ptr)
		} else {
			writeRepeat(&b, '<', ptr-st.Offset)
		}
		ptr = st.Offset
		up := int(st.To - st.From)
		if up <= 128 {
			writeRepeat(&b, '+', up)
		} else {
			writeRepeat(&b, '-', 256-up)
		}
		switch st.Move {
		case RollLeft:
			b.WriteString("[.<]")
			ptr = st.Via
		case RollRight:
			b.WriteString("[.>]")
			ptr = st.Via
		default:
			b.WriteByte('.')
		}
	}
	return b.String()
}

// RenderProgram is the complete program: prefix followed by tail.
func RenderProgram(shape *Shape, plan *EmissionPlan) string {
	return shape.String() + RenderTail(plan)
}
