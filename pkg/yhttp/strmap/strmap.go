// Package strmap implements the string-to-string associative container
// used for request headers and query fields: component B of the
// request-processing engine. Its bucketed layout is the idiomatic-Go
// rendition of a Kernighan & Pike style chaining hash table, keeping the
// "compare keys case-insensitively, but preserve original casing"
// header semantics separate from the case-sensitive query semantics via
// a constructor flag rather than two parallel implementations.
package strmap

import "errors"

// ErrDuplicateKey is returned by SetNoDuplicates when key already has an
// entry.
var ErrDuplicateKey = errors.New("strmap: duplicate key")

const bucketCount = 128

// kpHash is Kernighan & Pike's bucketed-chaining hash from The Practice
// of Programming, folded over the comparison key.
func kpHash(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = 31*h + uint32(s[i])
	}
	return h % bucketCount
}

type entry struct {
	key   string // as first inserted, original casing preserved
	value string
}

// Map is a string-to-string map with configurable key comparison.
// The zero value is not ready to use; call New.
type Map struct {
	buckets         [bucketCount][]entry
	caseInsensitive bool
}

// New returns a Map. When caseInsensitive is true, keys compare
// ASCII-case-insensitively (the header-map variant); otherwise
// comparison is exact (the query-map variant).
func New(caseInsensitive bool) *Map {
	return &Map{caseInsensitive: caseInsensitive}
}

func asciiLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func (m *Map) compareKey(s string) string {
	if !m.caseInsensitive {
		return s
	}
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		b[i] = asciiLower(s[i])
	}
	return string(b)
}

func (m *Map) bucket(key string) (*[]entry, string) {
	ck := m.compareKey(key)
	return &m.buckets[kpHash(ck)], ck
}

func (m *Map) find(key string) (bucketIdx *[]entry, pos int, ck string) {
	b, ck := m.bucket(key)
	for i := range *b {
		if m.compareKey((*b)[i].key) == ck {
			return b, i, ck
		}
	}
	return b, -1, ck
}

// Get returns the value stored for key and whether it was present.
// Comparison follows the Map's case policy.
func (m *Map) Get(key string) (string, bool) {
	b, pos, _ := m.find(key)
	if pos < 0 {
		return "", false
	}
	return (*b)[pos].value, true
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, pos, _ := m.find(key)
	return pos >= 0
}

// Set stores value under key, overwriting any existing value for a key
// that compares equal. The first-seen casing of key is retained across
// overwrites.
func (m *Map) Set(key, value string) {
	b, pos, _ := m.find(key)
	if pos >= 0 {
		(*b)[pos].value = value
		return
	}
	*b = append(*b, entry{key: key, value: value})
}

// SetNoDuplicates behaves like Set but returns ErrDuplicateKey instead
// of overwriting when key is already present; used by the header parser
// (§4.D.5), which rejects duplicate field names rather than merging
// them.
func (m *Map) SetNoDuplicates(key, value string) error {
	b, pos, _ := m.find(key)
	if pos >= 0 {
		return ErrDuplicateKey
	}
	*b = append(*b, entry{key: key, value: value})
	return nil
}

// Unset removes key if present. Unsetting an absent key is a no-op.
func (m *Map) Unset(key string) {
	b, pos, _ := m.find(key)
	if pos < 0 {
		return
	}
	*b = append((*b)[:pos], (*b)[pos+1:]...)
}

// Len returns the number of entries currently stored.
func (m *Map) Len() int {
	n := 0
	for i := range m.buckets {
		n += len(m.buckets[i])
	}
	return n
}

// Pair is one key/value entry returned by Dump.
type Pair struct {
	Key   string
	Value string
}

// Dump returns a snapshot of all entries. Iteration order is
// unspecified.
func (m *Map) Dump() []Pair {
	out := make([]Pair, 0, m.Len())
	for i := range m.buckets {
		for _, e := range m.buckets[i] {
			out = append(out, Pair{Key: e.key, Value: e.value})
		}
	}
	return out
}
