package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// errEscape wraps every malformed escape sequence.
var errEscape = errors.New("bad escape")

// Unescape expands the regex-style escapes accepted in the text argument:
// \n \r \t \f \v \a \b \0, \xHH, \uHHHH, \UHHHHHHHH and \cX (control-X).
// Any other escaped character stands for itself, and a trailing backslash
// is kept literally.
func Unescape(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		i++
		if i == len(rs) {
			b.WriteByte('\\')
			break
		}
		switch e := rs[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case '0':
			b.WriteByte(0)
		case 'x', 'u', 'U':
			width := map[rune]int{'x': 2, 'u': 4, 'U': 8}[e]
			if i+width >= len(rs) {
				return "", fmt.Errorf("%w: \\%c needs %d hex digits", errEscape, e, width)
			}
			digits := string(rs[i+1 : i+1+width])
			v, err := strconv.ParseUint(digits, 16, 32)
			if err != nil {
				return "", fmt.Errorf("%w: \\%c%s", errEscape, e, digits)
			}
			if e != 'x' && (v > 0x10FFFF || (v >= 0xD800 && v <= 0xDFFF)) {
				return "", fmt.Errorf("%w: \\%c%s is not a code point", errEscape, e, digits)
			}
			b.WriteRune(rune(v))
			i += width
		case 'c':
			if i+1 >= len(rs) {
				return "", fmt.Errorf("%w: \\c needs a control character", errEscape)
			}
			i++
			b.WriteRune(rs[i] & 0x1f)
		default:
			b.WriteRune(e)
		}
	}
	return b.String(), nil
}

// ToLatin1 encodes s as ISO-8859-1, one byte per rune.
func ToLatin1(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xff {
			return nil, fmt.Errorf("character %q is not representable in ISO-8859-1", r)
		}
		out = append(out, byte(r))
	}
	return out, nil
}

// ParseText unescapes a text argument and encodes it for the tape.
func ParseText(arg string) ([]byte, error) {
	s, err := Unescape(arg)
	if err != nil {
		return nil, err
	}
	goal, err := ToLatin1(s)
	if err != nil {
		return nil, err
	}
	if len(goal) == 0 {
		return nil, fmt.Errorf("%w: empty text", ErrInvalidConfig)
	}
	return goal, nil
}

// DefaultLimit guesses a generous length bound for goal: a third of the
// total byte-to-byte distance plus one print per byte plus a prefix
// allowance.
func DefaultLimit(goal []byte) int {
	var prev byte
	dist := 0
	for _, b := range goal {
		dist += abs(int(b) - int(prev))
		prev = b
	}
	return dist/3 + len(goal) + 20
}
