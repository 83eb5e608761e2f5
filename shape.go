package main

import (
	"fmt"
	"strings"
)

// templateOverhead counts the fixed symbols of the initialization template:
// the outer "[", the inner "[<", the ">" after j0, the inner "]", the ">"
// before k1 and the outer "]".
const templateOverhead = 7

// Shape is one parameterization of the initialization prefix
//
//	{s_n-1}<…<{s1}<{s0}[{k0}[<{j0}>{-j1}>{c0}>{c1}…<…<]{h}>{k1}]
//
// S[0] is the cell the counted loop starts on.
type Shape struct {
	S  []int
	K0 int
	K1 int
	J0 int
	J1 int
	C  []int
	H  int
}

// SLen is the rendered length of the s-segment, excluding the loop bracket.
func (s *Shape) SLen() int {
	return sLen(s.S)
}

// CLen is the rendered length of the c-segment including its return moves.
func (s *Shape) CLen() int {
	return cLen(s.C)
}

// Len is the exact number of symbols of the rendered prefix.
func (s *Shape) Len() int {
	return s.SLen() + s.CLen() + abs(s.K0) + abs(s.K1) + abs(s.J0) + abs(s.J1) + abs(s.H) + templateOverhead
}

// String renders the prefix in the tape language.
func (s *Shape) String() string {
	var b strings.Builder
	b.Grow(s.Len())
	for i := len(s.S) - 1; i >= 0; i-- {
		writeRun(&b, s.S[i])
		if i > 0 {
			b.WriteByte('<')
		}
	}
	b.WriteByte('[')
	writeRun(&b, s.K0)
	b.WriteString("[<")
	writeRun(&b, s.J0)
	b.WriteByte('>')
	writeRun(&b, -abs(s.J1))
	for _, c := range s.C {
		b.WriteByte('>')
		writeRun(&b, c)
	}
	writeRepeat(&b, '<', len(s.C))
	b.WriteByte(']')
	writeRun(&b, s.H)
	b.WriteByte('>')
	writeRun(&b, s.K1)
	b.WriteByte(']')
	return b.String()
}

// Key is a compact, human-readable identity used in logs and the store.
func (s *Shape) Key() string {
	return fmt.Sprintf("s%v k%d,%d j%d,%d c%v h%d", s.S, s.K0, s.K1, s.J0, s.J1, s.C, s.H)
}

func sLen(terms []int) int {
	if len(terms) == 0 {
		return 0
	}
	n := len(terms) - 1
	for _, t := range terms {
		n += abs(t)
	}
	return n
}

func cLen(terms []int) int {
	n := 2 * len(terms)
	for _, t := range terms {
		n += abs(t)
	}
	return n
}

// writeRun writes |n| copies of '+' (n > 0) or '-' (n < 0).
func writeRun(b *strings.Builder, n int) {
	if n < 0 {
		writeRepeat(b, '-', -n)
	} else {
		writeRepeat(b, '+', n)
	}
}

func writeRepeat(b *strings.Builder, c byte, n int) {
	for i := 0; i < n; i++ {
		b.WriteByte(c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
