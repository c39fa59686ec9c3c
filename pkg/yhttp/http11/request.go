package http11

import "github.com/yourusername/yhttp/pkg/yhttp/strmap"

// Request is the owned record exposed to the user callback once a
// Parser reaches Done. Path is validated per §4.D.4 and stored as
// received (percent-triplets are not decoded); the query is split into
// Query;
// Body is a borrowed slice into the owning Parser's buffer and is only
// valid until the callback returns.
type Request struct {
	Method  Method
	Path    string
	Query   *strmap.Map // case-sensitive, as received (no automatic decode)
	Headers *strmap.Map // case-insensitive, original casing preserved

	// ClientIP is the printable form of the peer address, filled in by
	// the dispatcher after the parser reaches Done, not by the parser itself.
	ClientIP string

	// Body aliases the parser's internal buffer. Its length equals
	// Content-Length exactly, or zero if absent. The dispatcher must not
	// let it escape past the callback's return.
	Body []byte

	// Response is allocated alongside the Request and mutated by the
	// user callback via its setter methods.
	Response *Response
}

func newRequest() *Request {
	return &Request{
		Query:    strmap.New(false),
		Headers:  strmap.New(true),
		Response: newResponse(),
	}
}

// Header returns the value of the named header, case-insensitively, and
// whether it was present.
func (r *Request) Header(name string) (string, bool) {
	return r.Headers.Get(name)
}

// QueryValue returns the value of the named query field, case
// sensitively, and whether it was present.
func (r *Request) QueryValue(key string) (string, bool) {
	return r.Query.Get(key)
}

// IsKeepAlive reports whether the request carried a case-insensitive,
// value-exact `Connection: keep-alive` header, per §4.F.4. Any other
// value, or an absent header, means close.
func (r *Request) IsKeepAlive() bool {
	v, ok := r.Header("Connection")
	if !ok {
		return false
	}
	return asciiEqualFold(v, "keep-alive")
}

func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
