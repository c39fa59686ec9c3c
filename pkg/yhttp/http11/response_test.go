package http11

import (
	"bytes"
	"testing"
)

func TestResponseWriteProducesExpectedWireFormat(t *testing.T) {
	r := newResponse()
	if err := r.SetStatus(204); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	var buf bytes.Buffer
	n, err := r.Write(&buf)
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	want := "HTTP/1.1 204 No Content\r\nContent-Length: 0\r\n\r\n"
	if buf.String() != want {
		t.Errorf("Write output = %q, want %q", buf.String(), want)
	}
	if n != int64(len(want)) {
		t.Errorf("Write returned n=%d, want %d", n, len(want))
	}
}

// Invariant 6: total wire byte count matches the formula in §8.
func TestResponseWriteByteCountInvariant(t *testing.T) {
	r := newResponse()
	_ = r.SetStatus(200)
	_ = r.SetHeader("X-Foo", "bar")
	body := []byte("hello world")
	r.SetBody(body)

	var buf bytes.Buffer
	n, err := r.Write(&buf)
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}

	statusLine := "HTTP/1.1 200 OK\r\n"
	headerLine := "X-Foo: bar\r\n"
	clLine := "Content-Length: 11\r\n"
	blank := "\r\n"
	want := len(statusLine) + len(headerLine) + len(clLine) + len(blank) + len(body)
	if int(n) != want {
		t.Errorf("total bytes = %d, want %d", n, want)
	}
	if buf.Len() != want {
		t.Errorf("buffer length = %d, want %d", buf.Len(), want)
	}
}

func TestResponseRejectsReservedHeaders(t *testing.T) {
	r := newResponse()
	if err := r.SetHeader("Content-Length", "5"); err != ErrReservedHeader {
		t.Errorf("SetHeader(Content-Length) error = %v, want ErrReservedHeader", err)
	}
	if err := r.SetHeader("transfer-encoding", "chunked"); err != ErrReservedHeader {
		t.Errorf("SetHeader(transfer-encoding) error = %v, want ErrReservedHeader", err)
	}
}

func TestResponseStatusRange(t *testing.T) {
	r := newResponse()
	if err := r.SetStatus(0); err != ErrStatusOutOfRange {
		t.Errorf("SetStatus(0) error = %v, want ErrStatusOutOfRange", err)
	}
	if err := r.SetStatus(1000); err != ErrStatusOutOfRange {
		t.Errorf("SetStatus(1000) error = %v, want ErrStatusOutOfRange", err)
	}
	if err := r.SetStatus(999); err != nil {
		t.Errorf("SetStatus(999) unexpected error: %v", err)
	}
}

func TestResponseDefaultStatusIs200(t *testing.T) {
	r := newResponse()
	if r.Status() != 200 {
		t.Errorf("default Status() = %d, want 200", r.Status())
	}
}
