// Package bytebuf provides a growable unsigned-octet buffer with
// append, pop-front, and clear, backed by a pooled byte slice.
package bytebuf

import (
	"errors"

	"github.com/valyala/bytebufferpool"
)

// ErrOverflow is returned when a size computation required to grow the
// buffer would exceed the platform's maximum addressable length.
var ErrOverflow = errors.New("bytebuf: size overflow")

// Buf is a growable byte buffer. The zero value is ready to use; Init
// exists only to mirror the collaborator contract's explicit init step
// and performs no allocation.
type Buf struct {
	bb   *bytebufferpool.ByteBuffer
	used int
}

// Init zeroes the buffer's fields. It performs no allocation; the first
// Append call lazily acquires a pooled backing array.
func (b *Buf) Init() {
	b.bb = nil
	b.used = 0
}

// Len reports the number of valid bytes, i.e. the bytes addressable from
// 0..Len(). Bytes beyond Len() up to cap(b.Bytes()) are indeterminate.
func (b *Buf) Len() int {
	return b.used
}

// Bytes returns the valid prefix of the buffer. The returned slice
// aliases the buffer's storage and is invalidated by the next Append,
// Pop, or Wipe call.
func (b *Buf) Bytes() []byte {
	if b.bb == nil {
		return nil
	}
	return b.bb.B[:b.used]
}

// Append copies data onto the end of the buffer, growing the backing
// array if necessary. On growth the new capacity is old capacity plus
// twice the incoming length, matching the source buffer's grow policy;
// ErrOverflow is returned if that arithmetic would exceed the maximum
// representable length.
func (b *Buf) Append(data []byte) error {
	if b.bb == nil {
		b.bb = bytebufferpool.Get()
	}
	n := len(data)
	if n == 0 {
		return nil
	}
	needed := b.used + n
	if needed < b.used || needed < n {
		return ErrOverflow
	}
	if cap(b.bb.B) < needed {
		growBy := n * 2
		newCap := cap(b.bb.B) + growBy
		if newCap < cap(b.bb.B) || growBy < n {
			return ErrOverflow
		}
		if newCap < needed {
			newCap = needed
		}
		grown := make([]byte, b.used, newCap)
		copy(grown, b.bb.B[:b.used])
		b.bb.B = grown
	}
	b.bb.B = b.bb.B[:needed]
	copy(b.bb.B[b.used:needed], data)
	b.used = needed
	return nil
}

// Pop shifts the first n octets off the front of the buffer, shrinking
// Len() by n. Calling Pop with n greater than Len() is a programmer
// error and panics, matching the source contract's "n > used is a
// programmer error".
func (b *Buf) Pop(n int) {
	if n == 0 {
		return
	}
	if n > b.used {
		panic("bytebuf: pop exceeds used length")
	}
	copy(b.bb.B[0:b.used-n], b.bb.B[n:b.used])
	b.used -= n
	b.bb.B = b.bb.B[:b.used]
}

// Wipe releases the backing array back to the pool and reinitializes
// the buffer. Wiping an already-wiped (zero-value) Buf is a no-op.
func (b *Buf) Wipe() {
	if b.bb == nil {
		b.used = 0
		return
	}
	bytebufferpool.Put(b.bb)
	b.bb = nil
	b.used = 0
}
