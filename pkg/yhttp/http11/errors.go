package http11

import "errors"

// Parser errors
var (
	// ErrOverflow indicates an integer-overflow in a size computation
	// inside the parser's buffer growth; fatal to the dispatch call.
	ErrOverflow = errors.New("http11: size overflow")

	// ErrBadRequestLine corresponds to a 400 produced while parsing the
	// request line: wrong number of spaces, NUL octet, or malformed
	// path/query grammar.
	ErrBadRequestLine = errors.New("http11: malformed request line")

	// ErrUnknownMethod corresponds to a 501 produced when the request
	// line's method does not exact-match one of the six supported verbs.
	ErrUnknownMethod = errors.New("http11: unknown method")

	// ErrBadHeader corresponds to a 400 produced while parsing a header
	// line: missing colon, empty or non-tchar name, empty value after
	// trimming, or a control character in the value.
	ErrBadHeader = errors.New("http11: malformed header line")

	// ErrDuplicateHeader corresponds to a 400 produced when a header
	// field-name repeats (case-insensitive comparison).
	ErrDuplicateHeader = errors.New("http11: duplicate header field")

	// ErrBadContentLength corresponds to a 400 produced when
	// Content-Length is present but does not parse as an unsigned
	// decimal integer.
	ErrBadContentLength = errors.New("http11: invalid Content-Length")

	// ErrTransferEncoding corresponds to a 501 produced when a
	// Transfer-Encoding header is present; chunked encoding is not
	// supported in either direction.
	ErrTransferEncoding = errors.New("http11: Transfer-Encoding not supported")
)

// Response-builder errors
var (
	// ErrReservedHeader is returned by Response.SetHeader for
	// Content-Length or Transfer-Encoding, which the writer synthesizes
	// itself and never accepts from the callback.
	ErrReservedHeader = errors.New("http11: Content-Length and Transfer-Encoding are reserved")

	// ErrStatusOutOfRange is returned by Response.SetStatus for a code
	// outside [1, 999].
	ErrStatusOutOfRange = errors.New("http11: status code out of range")
)
