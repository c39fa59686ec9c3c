//go:build linux

package dispatch

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/yourusername/yhttp/pkg/yhttp/http11"
)

// Callback is the user handler invoked synchronously, on the
// dispatcher's own goroutine, once a Request reaches http11.StateDone.
// It must not call Stop or Dispatch on the same Dispatcher.
type Callback func(*http11.Request)

// Dispatcher owns the listener sockets, the slot vector, and the
// shutdown pipe for one library instance. There is exactly one active
// Dispatch call at a time; concurrent attempts return ErrBusy.
type Dispatcher struct {
	port int
	cfg  Config

	shutdownR, shutdownW int
	stopOnce             sync.Once
	dispatching          atomic.Bool
}

// New creates a Dispatcher bound to port (>= 1024) and opens the
// shutdown pipe the instance owns for its lifetime. It does not open
// any listener socket yet — that happens in Dispatch, per §4.F.1.
func New(port int, cfg Config) (*Dispatcher, error) {
	if port < 1024 {
		return nil, ErrInvalidPort
	}
	cfg = cfg.withDefaults()

	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, err
	}
	return &Dispatcher{port: port, cfg: cfg, shutdownR: fds[0], shutdownW: fds[1]}, nil
}

// Stop closes the write end of the shutdown pipe, which wakes the event
// loop via EOF on the read end. Idempotent: only the first call among
// all Stop calls across the instance's lifetime succeeds; every other
// call, and any call while not dispatched, returns ErrNotFound.
func (d *Dispatcher) Stop() error {
	if !d.dispatching.Load() {
		return ErrNotFound
	}
	err := ErrNotFound
	d.stopOnce.Do(func() {
		unix.Close(d.shutdownW)
		err = nil
	})
	return err
}

func listenSocket(family int, sa unix.Sockaddr, backlog int) (int, error) {
	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// Dispatch runs the single-threaded event loop until Stop is called or
// an unrecoverable error occurs. Exactly one Dispatch call may run at a
// time per Dispatcher; a concurrent attempt returns ErrBusy.
func (d *Dispatcher) Dispatch(cb Callback) error {
	if !d.dispatching.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer d.dispatching.Store(false)

	log := d.cfg.Logger

	fd4, err := listenSocket(unix.AF_INET, &unix.SockaddrInet4{Port: d.port}, d.cfg.ListenBacklog)
	if err != nil {
		log.Error("listen ipv4 failed", zap.Int("port", d.port), zap.Error(err))
		return err
	}
	defer unix.Close(fd4)

	fd6, err := listenSocket(unix.AF_INET6, &unix.SockaddrInet6{Port: d.port}, d.cfg.ListenBacklog)
	if err != nil {
		log.Error("listen ipv6 failed", zap.Int("port", d.port), zap.Error(err))
		return err
	}
	defer unix.Close(fd6)

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return err
	}
	defer unix.Close(epfd)

	if err := epollAdd(epfd, fd4); err != nil {
		return err
	}
	if err := epollAdd(epfd, fd6); err != nil {
		return err
	}
	if err := epollAdd(epfd, d.shutdownR); err != nil {
		return err
	}

	sv := newSlotVector(d.cfg.SlotGrowth)
	log.Info("dispatch started", zap.Int("port", d.port))

	events := make([]unix.EpollEvent, 64)
	quit := false
	var loopErr error

	for !quit {
		n, err := unix.EpollWait(epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			loopErr = err
			break
		}
		for i := 0; i < n && !quit; i++ {
			fd := int(events[i].Fd)
			switch fd {
			case fd4:
				if err := d.acceptOne(epfd, fd4, sv, log); err != nil {
					loopErr = err
					quit = true
				}
			case fd6:
				if err := d.acceptOne(epfd, fd6, sv, log); err != nil {
					loopErr = err
					quit = true
				}
			case d.shutdownR:
				log.Info("shutdown received")
				quit = true
			default:
				idx, ok := sv.indexForFD(fd)
				if !ok {
					continue
				}
				if err := d.handleClient(epfd, sv, idx, cb, log); err != nil {
					loopErr = err
					quit = true
				}
			}
		}
		if errors.Is(loopErr, ErrOverflow) {
			log.Error("slot vector growth failed, dispatch returning", zap.Error(loopErr))
			break
		}
	}

	for _, fd := range sv.all() {
		unix.Close(fd)
	}
	log.Info("dispatch returning", zap.Error(loopErr))
	return loopErr
}

func epollAdd(epfd, fd int) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	return unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

// acceptOne accepts one pending connection on listenFD. A non-nil
// return is a slot-vector growth failure (ErrOverflow or an allocation
// failure) and, per §4.F.3/§4.F.6, must propagate all the way out of
// Dispatch; every other accept-time failure (EAGAIN, a transient accept
// error, epoll registration failure) is handled locally and never
// returned.
func (d *Dispatcher) acceptOne(epfd, listenFD int, sv *slotVector, log *zap.Logger) error {
	nfd, _, err := unix.Accept4(listenFD, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		if err != unix.EAGAIN {
			log.Warn("accept failed", zap.Error(err))
		}
		return nil
	}
	parser := http11.New()
	if _, err := sv.add(nfd, parser); err != nil {
		unix.Close(nfd)
		return err
	}
	if err := epollAdd(epfd, nfd); err != nil {
		log.Warn("epoll add failed", zap.Error(err))
		unix.Close(nfd)
		return nil
	}
	if d.cfg.Metrics != nil {
		d.cfg.Metrics.connectionsAccepted.Inc()
		d.cfg.Metrics.activeSlots.Set(float64(sv.liveCount()))
	}
	return nil
}

func (d *Dispatcher) closeSlot(epfd int, sv *slotVector, idx int) {
	fd := sv.get(idx).fd
	unix.EpollCtl(epfd, unix.EPOLL_CTL_DEL, fd, nil)
	sv.del(idx)
	unix.Close(fd)
	if d.cfg.Metrics != nil {
		d.cfg.Metrics.connectionsClosed.Inc()
		d.cfg.Metrics.activeSlots.Set(float64(sv.liveCount()))
	}
}

func peerIP(fd int) string {
	sa, err := unix.Getpeername(fd)
	if err != nil {
		return ""
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.IP(a.Addr[:]).String()
	case *unix.SockaddrInet6:
		return net.IP(a.Addr[:]).String()
	default:
		return ""
	}
}

// handleClient drives one readable connection through a single read,
// parser feed, and (if the request completed) callback invocation and
// response write, following §4.F.2's per-connection branch. A non-nil
// return is an ALLOC/OVERFLOW failure that must propagate out of
// Dispatch entirely, per §4.F.6.
func (d *Dispatcher) handleClient(epfd int, sv *slotVector, idx int, cb Callback, log *zap.Logger) error {
	s := sv.get(idx)
	buf := make([]byte, d.cfg.ReadBufferSize)
	n, err := unix.Read(s.fd, buf)
	if err != nil {
		if err == unix.EAGAIN {
			return nil
		}
		log.Warn("read failed", zap.Error(err))
		d.closeSlot(epfd, sv, idx)
		return nil
	}
	if n == 0 {
		d.closeSlot(epfd, sv, idx)
		return nil
	}

	parser := s.parser
	if err := parser.Feed(buf[:n]); err != nil {
		log.Error("parser buffer overflow", zap.Error(err))
		return err
	}

	if status := parser.ErrStatus(); status != 0 {
		w := fdWriter{fd: s.fd}
		if _, werr := http11.WriteError(w, status); werr != nil {
			log.Warn("write error response failed", zap.Error(werr))
		}
		if d.cfg.Metrics != nil {
			d.cfg.Metrics.parseErrors.WithLabelValues(statusLabel(status)).Inc()
		}
		log.Debug("request rejected", zap.Int("status", status), zap.Error(parser.Err()))
		d.applyKeepAlive(epfd, sv, idx, parser.Request())
		return nil
	}

	if parser.State() != http11.StateDone {
		return nil
	}

	req := parser.Request()
	req.ClientIP = peerIP(s.fd)
	if req.ClientIP == "" {
		log.Warn("peer address resolution failed")
		d.closeSlot(epfd, sv, idx)
		return nil
	}
	cb(req)
	if d.cfg.Metrics != nil {
		d.cfg.Metrics.requestsCompleted.Inc()
	}
	log.Debug("request completed",
		zap.String("method", req.Method.String()),
		zap.String("path", req.Path),
		zap.Int("status", req.Response.Status()))

	w := fdWriter{fd: s.fd}
	if _, werr := req.Response.Write(w); werr != nil {
		log.Warn("write response failed", zap.Error(werr))
		d.closeSlot(epfd, sv, idx)
		return nil
	}
	d.applyKeepAlive(epfd, sv, idx, req)
	return nil
}

// applyKeepAlive implements §4.F.4: keep-alive requests get a freshly
// allocated parser on the same fd; everything else closes.
func (d *Dispatcher) applyKeepAlive(epfd int, sv *slotVector, idx int, req *http11.Request) {
	if req != nil && req.IsKeepAlive() {
		sv.replaceParser(idx, http11.New())
		return
	}
	d.closeSlot(epfd, sv, idx)
}

func statusLabel(status int) string {
	switch status {
	case 400:
		return "400"
	case 501:
		return "501"
	default:
		return "other"
	}
}

// fdWriter adapts a raw, non-blocking socket descriptor to io.Writer,
// retrying short writes from the unsent offset per §4.E. EAGAIN and
// EINTR are retried; a write that returns 0 or any other error is
// terminal.
type fdWriter struct {
	fd int
}

func (w fdWriter) Write(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := unix.Write(w.fd, p[total:])
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if err == unix.EAGAIN {
				continue
			}
			return total, err
		}
		if n <= 0 {
			return total, unix.EPIPE
		}
		total += n
	}
	return total, nil
}
