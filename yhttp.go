// Package yhttp is an embeddable HTTP/1.1 origin-server library.
// Applications call Init to obtain an Instance, register a Handler, and
// call Dispatch to hand control to the single-threaded event loop. The
// loop listens on one IPv4 and one IPv6 socket, parses each incoming
// request, invokes the Handler synchronously, and writes the response.
package yhttp

import (
	"github.com/yourusername/yhttp/pkg/yhttp/dispatch"
	"github.com/yourusername/yhttp/pkg/yhttp/http11"
	"github.com/yourusername/yhttp/pkg/yhttp/urlcodec"
)

// Request and Response are re-exported so callers never need to import
// the http11 package directly.
type Request = http11.Request
type Response = http11.Response

// Handler is invoked synchronously, from inside the Dispatch call, once
// a Request has been fully parsed. The loop makes no progress on any
// other connection while a Handler runs. It must populate req.Response
// and must not call Stop or Dispatch on the owning Instance.
type Handler func(req *Request)

// Instance is one embeddable library instance: one pair of listener
// sockets, one slot vector, one shutdown handle.
type Instance struct {
	d *dispatch.Dispatcher
}

// Init creates an Instance bound to port. Port must be >= 1024.
// Config is optional; a zero Config is replaced with
// dispatch.DefaultConfig() defaults field by field.
func Init(port int, cfg dispatch.Config) (*Instance, error) {
	d, err := dispatch.New(port, cfg)
	if err != nil {
		return nil, err
	}
	return &Instance{d: d}, nil
}

// Dispatch hands control to the event loop until Stop is called or an
// unrecoverable error occurs. Only one Dispatch call may run at a time
// on a given Instance; a concurrent attempt returns dispatch.ErrBusy.
func (in *Instance) Dispatch(h Handler) error {
	return in.d.Dispatch(dispatch.Callback(h))
}

// Stop requests a graceful shutdown of an in-progress Dispatch call.
// It is idempotent: only the first call succeeds, every later call
// returns dispatch.ErrNotFound, as does any call while not dispatched.
func (in *Instance) Stop() error {
	return in.d.Stop()
}

// Header returns the named request header, case-insensitively.
func Header(req *Request, name string) (string, bool) {
	return req.Header(name)
}

// Query returns the named query field, case-sensitively.
func Query(req *Request, key string) (string, bool) {
	return req.QueryValue(key)
}

// URLEncode percent-encodes s per §6: unreserved characters verbatim,
// space to '+', everything else to uppercase "%XX".
func URLEncode(s string) string {
	return urlcodec.Encode(s)
}

// URLDecode inverts URLEncode, rejecting malformed or NUL-producing
// triplets.
func URLDecode(s string) (string, error) {
	return urlcodec.Decode(s)
}

// RespStatus sets the status code on req's Response. code must be in
// [1, 999].
func RespStatus(req *Request, code int) error {
	return req.Response.SetStatus(code)
}

// RespHeader sets a response header. Content-Length and
// Transfer-Encoding are rejected; an empty value unsets the header.
func RespHeader(req *Request, name, value string) error {
	if value == "" {
		req.Response.UnsetHeader(name)
		return nil
	}
	return req.Response.SetHeader(name, value)
}

// RespBody sets the response body. A nil or empty slice clears it.
func RespBody(req *Request, body []byte) error {
	req.Response.SetBody(body)
	return nil
}
