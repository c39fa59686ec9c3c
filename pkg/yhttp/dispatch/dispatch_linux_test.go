//go:build linux

package dispatch

import (
	"math"
	"net"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

func TestFdWriterWritesFullPayload(t *testing.T) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], 0); err != nil {
		t.Fatalf("pipe2 error: %v", err)
	}
	defer unix.Close(fds[0])

	w := fdWriter{fd: fds[1]}
	payload := make([]byte, 200000) // larger than one pipe-buffer write
	for i := range payload {
		payload[i] = byte(i)
	}

	done := make(chan error, 1)
	go func() {
		_, err := w.Write(payload)
		unix.Close(fds[1])
		done <- err
	}()

	got := make([]byte, 0, len(payload))
	buf := make([]byte, 4096)
	for {
		n, err := unix.Read(fds[0], buf)
		if n > 0 {
			got = append(got, buf[:n]...)
		}
		if err != nil || n == 0 {
			break
		}
		if len(got) >= len(payload) {
			break
		}
	}
	if err := <-done; err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if len(got) != len(payload) {
		t.Fatalf("read %d bytes, want %d", len(got), len(payload))
	}
	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("payload mismatch at byte %d", i)
		}
	}
}

func TestNewRejectsLowPort(t *testing.T) {
	if _, err := New(80, DefaultConfig()); err != ErrInvalidPort {
		t.Errorf("New(80) error = %v, want ErrInvalidPort", err)
	}
}

func TestStopWithoutDispatchReturnsNotFound(t *testing.T) {
	d, err := New(8080, DefaultConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := d.Stop(); err != ErrNotFound {
		t.Errorf("Stop() before Dispatch = %v, want ErrNotFound", err)
	}
}

// TestAcceptOnePropagatesGrowthOverflow reproduces a slot vector whose
// next grow() call overflows, per §4.F.3/§4.F.6: the failure must come
// back out of acceptOne rather than being swallowed as a log line.
func TestAcceptOnePropagatesGrowthOverflow(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	defer ln.Close()

	conn, err := net.Dial("tcp4", ln.Addr().String())
	if err != nil {
		t.Fatalf("net.Dial: %v", err)
	}
	defer conn.Close()

	sc, err := ln.(*net.TCPListener).SyscallConn()
	if err != nil {
		t.Fatalf("SyscallConn: %v", err)
	}
	var listenFD int
	if err := sc.Control(func(fd uintptr) { listenFD = int(fd) }); err != nil {
		t.Fatalf("Control: %v", err)
	}

	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		t.Fatalf("EpollCreate1: %v", err)
	}
	defer unix.Close(epfd)

	sv := newSlotVector(math.MaxInt)
	sv.slots = []slot{{fd: 0}} // one filled, non-free slot forces grow()

	d := &Dispatcher{cfg: DefaultConfig()}
	if err := d.acceptOne(epfd, listenFD, sv, zap.NewNop()); err != ErrOverflow {
		t.Errorf("acceptOne growth overflow = %v, want ErrOverflow", err)
	}
}
