package http11

import (
	"bytes"
	"strconv"

	"github.com/yourusername/yhttp/pkg/yhttp/abnf"
	"github.com/yourusername/yhttp/pkg/yhttp/bytebuf"
)

// State is one of the four states the incremental parser moves
// through: request-line, headers, body, done.
type State int

const (
	StateRLine State = iota
	StateHeaders
	StateBody
	StateDone
)

// Parser is an incremental, byte-oriented HTTP/1.1 request parser.
// Feed is called as bytes arrive; once State() reports StateDone (or
// ErrStatus() is non-zero) the caller reads Request and discards the
// Parser — it is never reused without a full Free/New cycle, so no
// state or buffered bytes can leak across requests on a keep-alive
// connection.
type Parser struct {
	state         State
	errStatus     int
	err           error
	buf           bytebuf.Buf
	requ          *Request
	contentLength int
}

// New returns a Parser ready to receive the start of a request line.
func New() *Parser {
	p := &Parser{state: StateRLine, requ: newRequest()}
	p.buf.Init()
	return p
}

// Free releases the parser's buffer. Discard the Parser afterward; it
// must not be fed again.
func (p *Parser) Free() {
	p.buf.Wipe()
}

// State returns the parser's current state.
func (p *Parser) State() State { return p.state }

// ErrStatus returns the HTTP status the peer should receive, or zero if
// no grammar error has been detected. Once non-zero it never changes
// and the parser never advances state again.
func (p *Parser) ErrStatus() int { return p.errStatus }

// Err returns the sentinel identifying which grammar rule produced
// ErrStatus, or nil if ErrStatus is zero. It is the error-taxonomy
// counterpart to the numeric status and is meant for logging and
// tests, not for choosing the wire status (ErrStatus already did
// that).
func (p *Parser) Err() error { return p.err }

// Request returns the Request under construction. Its fields are only
// meaningful once State() reports StateDone.
func (p *Parser) Request() *Request { return p.requ }

// Feed appends data to the parser's internal buffer and drives the
// state machine as far as the buffered bytes allow. It returns a
// non-nil error only for ErrOverflow (a size computation that would
// exceed the platform maximum), which is fatal to the caller's dispatch
// loop; grammar violations are reported through ErrStatus, not the
// return value.
func (p *Parser) Feed(data []byte) error {
	if err := p.buf.Append(data); err != nil {
		return ErrOverflow
	}

	for p.errStatus == 0 {
		var advanced bool
		switch p.state {
		case StateRLine:
			advanced = p.handleRequestLine()
		case StateHeaders:
			advanced = p.handleHeaderLine()
		case StateBody:
			advanced = p.handleBody()
		case StateDone:
			return nil
		}
		if !advanced {
			return nil
		}
	}
	return nil
}

// findEOL scans b for a line terminator: CRLF, or a bare LF. A CR not
// immediately followed by LF is an ordinary octet within the line, per
// §4.D.3. Returns the index of the terminator's first byte and its
// length (1 or 2), or found=false if no terminator is buffered yet.
func findEOL(b []byte) (idx int, termLen int, found bool) {
	for i := 0; i < len(b); i++ {
		if b[i] == '\n' {
			if i > 0 && b[i-1] == '\r' {
				return i - 1, 2, true
			}
			return i, 1, true
		}
	}
	return -1, 0, false
}

func (p *Parser) handleRequestLine() bool {
	data := p.buf.Bytes()
	idx, termLen, found := findEOL(data)
	if !found {
		return false
	}
	line := data[:idx]
	consumed := idx + termLen

	fail := func(status int, err error) bool {
		p.errStatus = status
		p.err = err
		p.buf.Pop(consumed)
		return true
	}

	if bytes.IndexByte(line, 0) >= 0 {
		return fail(400, ErrBadRequestLine)
	}

	sp1 := bytes.IndexByte(line, ' ')
	if sp1 <= 0 {
		return fail(400, ErrBadRequestLine)
	}
	rest := line[sp1+1:]
	sp2rel := bytes.IndexByte(rest, ' ')
	if sp2rel < 0 {
		return fail(400, ErrBadRequestLine)
	}
	sp2 := sp1 + 1 + sp2rel
	if bytes.IndexByte(line[sp2+1:], ' ') >= 0 {
		return fail(400, ErrBadRequestLine)
	}
	if sp2+1 >= len(line) {
		return fail(400, ErrBadRequestLine)
	}

	methodBytes := line[:sp1]
	target := line[sp1+1 : sp2]
	method := ParseMethod(methodBytes)
	if method == MethodUnknown {
		return fail(501, ErrUnknownMethod)
	}

	var rawPath, rawQuery []byte
	if qIdx := bytes.IndexByte(target, '?'); qIdx < 0 {
		rawPath = target
	} else {
		rawPath = target[:qIdx]
		rawQuery = target[qIdx+1:]
	}

	if !validatePath(rawPath) {
		return fail(400, ErrBadRequestLine)
	}
	if !validateQueryChars(rawQuery) {
		return fail(400, ErrBadRequestLine)
	}

	p.requ.Method = method
	p.requ.Path = string(rawPath)
	if err := parseQueryInto(rawQuery, p.requ.Query); err != nil {
		return fail(400, ErrBadRequestLine)
	}

	p.buf.Pop(consumed)
	p.state = StateHeaders
	return true
}

func validatePath(path []byte) bool {
	if len(path) == 0 || path[0] != '/' {
		return false
	}
	prevSlash := false
	for i := 0; i < len(path); {
		c := path[i]
		if c == '/' {
			if prevSlash {
				return false
			}
			prevSlash = true
			i++
			continue
		}
		prevSlash = false
		if c == '%' {
			if !abnf.IsPctEncoded(path[i:]) {
				return false
			}
			i += 3
			continue
		}
		if !abnf.IsPathChar(c) {
			return false
		}
		i++
	}
	return true
}

func validateQueryChars(q []byte) bool {
	for i := 0; i < len(q); {
		c := q[i]
		if c == '%' {
			if !abnf.IsPctEncoded(q[i:]) {
				return false
			}
			i += 3
			continue
		}
		if !abnf.IsQueryChar(c) {
			return false
		}
		i++
	}
	return true
}

// queryMap is the minimal interface parseQueryInto needs from the
// request's query map, kept narrow so this file doesn't import strmap
// types directly into its signature.
type queryMap interface {
	Set(key, value string)
}

func parseQueryInto(raw []byte, m queryMap) error {
	if len(raw) == 0 {
		return nil
	}
	for _, seg := range bytes.Split(raw, []byte{'&'}) {
		if len(seg) == 0 {
			continue
		}
		if seg[0] == '=' {
			return ErrBadRequestLine
		}
		if eq := bytes.IndexByte(seg, '='); eq < 0 {
			m.Set(string(seg), "")
		} else {
			m.Set(string(seg[:eq]), string(seg[eq+1:]))
		}
	}
	return nil
}

func trimOWS(b []byte) []byte {
	i, j := 0, len(b)
	for i < j && b[i] == ' ' {
		i++
	}
	for j > i && b[j-1] == ' ' {
		j--
	}
	return b[i:j]
}

func (p *Parser) handleHeaderLine() bool {
	data := p.buf.Bytes()
	idx, termLen, found := findEOL(data)
	if !found {
		return false
	}
	line := data[:idx]
	consumed := idx + termLen

	fail := func(status int, err error) bool {
		p.errStatus = status
		p.err = err
		p.buf.Pop(consumed)
		return true
	}

	if len(line) == 0 {
		p.buf.Pop(consumed)
		return p.finishHeaders()
	}

	if bytes.IndexByte(line, 0) >= 0 {
		return fail(400, ErrBadHeader)
	}
	colon := bytes.IndexByte(line, ':')
	if colon < 0 {
		return fail(400, ErrBadHeader)
	}
	name := line[:colon]
	if len(name) == 0 {
		return fail(400, ErrBadHeader)
	}
	for _, c := range name {
		if !abnf.IsTChar(c) {
			return fail(400, ErrBadHeader)
		}
	}
	value := trimOWS(line[colon+1:])
	if len(value) == 0 {
		return fail(400, ErrBadHeader)
	}
	for _, c := range value {
		if c < 0x20 || c > 0x7e {
			return fail(400, ErrBadHeader)
		}
	}

	if err := p.requ.Headers.SetNoDuplicates(string(name), string(value)); err != nil {
		return fail(400, ErrDuplicateHeader)
	}
	p.buf.Pop(consumed)
	return true
}

func (p *Parser) finishHeaders() bool {
	if _, ok := p.requ.Headers.Get("Transfer-Encoding"); ok {
		p.errStatus = 501
		p.err = ErrTransferEncoding
		return true
	}
	if cl, ok := p.requ.Headers.Get("Content-Length"); ok {
		n, err := strconv.ParseUint(cl, 10, 63)
		if err != nil {
			p.errStatus = 400
			p.err = ErrBadContentLength
			return true
		}
		p.contentLength = int(n)
	} else {
		p.contentLength = 0
	}
	p.state = StateBody
	return true
}

func (p *Parser) handleBody() bool {
	if p.buf.Len() != p.contentLength {
		return false
	}
	p.requ.Body = p.buf.Bytes()
	p.state = StateDone
	return true
}
