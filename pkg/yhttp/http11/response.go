package http11

import (
	"io"
	"strconv"

	"github.com/yourusername/yhttp/pkg/yhttp/strmap"
)

// Response is the owned record produced by the user callback and
// streamed to the connection by Write. Content-Length and
// Transfer-Encoding are synthesized/rejected respectively, never set
// directly by the caller.
type Response struct {
	status  int
	headers *strmap.Map
	body    []byte
}

func newResponse() *Response {
	return &Response{
		status:  200,
		headers: strmap.New(true),
	}
}

// SetStatus sets the response status code. code must be in [1, 999].
func (r *Response) SetStatus(code int) error {
	if code < 1 || code > 999 {
		return ErrStatusOutOfRange
	}
	r.status = code
	return nil
}

// Status returns the currently configured status code.
func (r *Response) Status() int {
	return r.status
}

// SetHeader sets a response header; it never clears one, even for an
// empty value (use UnsetHeader to remove a header). Content-Length and
// Transfer-Encoding are rejected (case-insensitively) since the writer
// owns both.
func (r *Response) SetHeader(name, value string) error {
	if asciiEqualFold(name, "Content-Length") || asciiEqualFold(name, "Transfer-Encoding") {
		return ErrReservedHeader
	}
	r.headers.Set(name, value)
	return nil
}

// UnsetHeader removes a previously set header, if present.
func (r *Response) UnsetHeader(name string) {
	r.headers.Unset(name)
}

// SetBody replaces the response body. A nil or empty slice clears it.
func (r *Response) SetBody(body []byte) {
	r.body = body
}

// Body returns the currently configured response body.
func (r *Response) Body() []byte {
	return r.body
}

// Write formats the response onto w in the order status-line, headers,
// synthesized Content-Length, blank line, body, per §4.E. It does not
// retry short writes itself — callers driving a non-blocking socket are
// expected to use a writer that loops internally (see dispatch.fdWriter).
func (r *Response) Write(w io.Writer) (int64, error) {
	var total int64

	line := "HTTP/1.1 " + strconv.Itoa(r.status) + " " + ReasonPhrase(r.status) + "\r\n"
	n, err := io.WriteString(w, line)
	total += int64(n)
	if err != nil {
		return total, err
	}

	for _, p := range r.headers.Dump() {
		n, err := io.WriteString(w, p.Key+": "+p.Value+"\r\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	n, err = io.WriteString(w, "Content-Length: "+strconv.Itoa(len(r.body))+"\r\n\r\n")
	total += int64(n)
	if err != nil {
		return total, err
	}

	if len(r.body) > 0 {
		nb, err := w.Write(r.body)
		total += int64(nb)
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// WriteError formats the self-contained error shortcut of §4.E: a
// status line, a single synthesized Content-Length, and a body equal to
// the reason phrase. Used when the parser has set a non-zero error
// status and no user callback will run.
func WriteError(w io.Writer, status int) (int64, error) {
	reason := ReasonPhrase(status)
	var total int64

	line := "HTTP/1.1 " + strconv.Itoa(status) + " " + reason + "\r\n"
	n, err := io.WriteString(w, line)
	total += int64(n)
	if err != nil {
		return total, err
	}

	n, err = io.WriteString(w, "Content-Length: "+strconv.Itoa(len(reason))+"\r\n\r\n"+reason)
	total += int64(n)
	return total, err
}
