// Package urlcodec implements the percent-encode/decode helpers exposed
// to user code: component G of the request-processing engine.
package urlcodec

import (
	"errors"
	"strings"

	"github.com/yourusername/yhttp/pkg/yhttp/abnf"
)

// ErrMalformed is returned by Decode when the input contains an
// incomplete or invalid percent-triplet, or one that would decode to a
// NUL octet.
var ErrMalformed = errors.New("urlcodec: malformed percent-encoding")

const upperHex = "0123456789ABCDEF"

// Encode maps 'A'-'Z', 'a'-'z', '0'-'9', '-', '_', '.', '~' verbatim,
// space to '+', and everything else to "%XX" using uppercase hex
// digits.
func Encode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case abnf.IsUnreserved(c):
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(upperHex[c>>4])
			b.WriteByte(upperHex[c&0x0f])
		}
	}
	return b.String()
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// Decode inverts Encode: '+' becomes space, "%XX" becomes the
// represented octet, everything else is copied verbatim. A malformed or
// NUL-producing triplet is rejected with ErrMalformed, mirroring the
// %00 smuggling prohibition enforced by the request parser.
func Decode(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '+':
			b.WriteByte(' ')
		case '%':
			if i+2 >= len(s) {
				return "", ErrMalformed
			}
			hi, ok1 := hexVal(s[i+1])
			lo, ok2 := hexVal(s[i+2])
			if !ok1 || !ok2 {
				return "", ErrMalformed
			}
			v := hi<<4 | lo
			if v == 0 {
				return "", ErrMalformed
			}
			b.WriteByte(v)
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
