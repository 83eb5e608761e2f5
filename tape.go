package main

// addByte adds a signed delta to a tape cell with modulo-256 wraparound.
func addByte(v byte, delta int) byte {
	return v + byte(delta)
}

// AdjustCost is the number of +/- symbols needed to turn cell value v into t,
// taking the shorter of the two wraparound directions. Never exceeds 128.
func AdjustCost(v, t byte) int {
	up := int(t - v)
	down := int(v - t)
	if up < down {
		return up
	}
	return down
}

// MoveCost is the number of < or > symbols needed to move from offset a to b.
func MoveCost(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// trailingZeros8 counts the trailing zero bits of a nonzero value below 256.
func trailingZeros8(v int) int {
	n := 0
	for v&1 == 0 {
		v >>= 1
		n++
	}
	return n
}

// inverseMod returns the multiplicative inverse of an odd a modulo m, where
// m is a power of two no larger than 256.
func inverseMod(a, m int) int {
	a %= m
	for x := 1; x < m; x += 2 {
		if a*x%m == 1 {
			return x
		}
	}
	// m == 1: every value is congruent to zero
	return 0
}

// loopCount solves n*step ≡ v (mod 256) for the smallest non-negative n, the
// number of passes a decrement-by-step inner loop makes over a counter cell
// holding v. ok is false when no such n exists and the loop never exits.
func loopCount(v byte, step int) (n int, ok bool) {
	if v == 0 {
		return 0, true
	}
	step &= 0xff
	if step == 0 {
		return 0, false
	}
	shift := trailingZeros8(step)
	if int(v)&(1<<shift-1) != 0 {
		return 0, false
	}
	mod := 256 >> shift
	inv := inverseMod(step>>shift, mod)
	return (int(v) >> shift) * inv % mod, true
}
