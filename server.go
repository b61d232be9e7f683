package krb5

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gemalto/flume"
	"github.com/gemalto/krb5-go/ber"
	"github.com/google/uuid"
)

var serverLog = flume.New("krb5_server")

// ErrServerClosed is returned by the Server's Serve method after a call to
// Close.
var ErrServerClosed = errors.New("krb5: server closed")

// Handler responds to a decoded request message.  The returned message is
// framed and written back to the client.  Returning a nil message with a nil
// error sends no reply.
type Handler interface {
	HandleMessage(ctx context.Context, req *Request) (Encodable, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, req *Request) (Encodable, error)

func (f HandlerFunc) HandleMessage(ctx context.Context, req *Request) (Encodable, error) {
	return f(ctx, req)
}

// DefaultHandler logs each request and drops it without replying.  It serves
// when Server.Handler is nil.
var DefaultHandler Handler = HandlerFunc(func(ctx context.Context, req *Request) (Encodable, error) {
	flume.FromContext(ctx).Info("dropping request, no handler configured", "msgType", req.Message.MessageType().String())
	return nil, nil
})

// Request carries one framed record and its decoded message to a Handler.
type Request struct {
	// Raw is the record exactly as it arrived, without the length prefix.
	Raw RawMessage
	// Message is the decoded AS-REQ or TGS-REQ.
	Message Message

	TLS        *tls.ConnectionState
	RemoteAddr string
	LocalAddr  string
}

// AsReq returns the decoded message if it is an AS-REQ, or nil.
func (r *Request) AsReq() *AsReq {
	m, _ := r.Message.(*AsReq)
	return m
}

// TgsReq returns the decoded message if it is a TGS-REQ, or nil.
func (r *Request) TgsReq() *TgsReq {
	m, _ := r.Message.(*TgsReq)
	return m
}

// Server accepts connections carrying length prefixed Kerberos records and
// dispatches each decoded message to Handler.  The serve loop is patterned
// on net/http's.
type Server struct {
	Handler Handler

	// MaxRecordSize caps the record length accepted from clients.  Zero
	// means DefaultMaxRecordSize.
	MaxRecordSize int

	// ReadTimeout bounds the wait for each record.  Zero means no
	// timeout.
	ReadTimeout time.Duration

	mu         sync.Mutex
	listeners  map[*net.Listener]struct{}
	inShutdown int32 // accessed atomically (non-zero means we're in Close)
}

// Serve accepts incoming connections on the Listener l, creating a new
// service goroutine for each.  The service goroutines read requests and call
// srv.Handler to reply to them.
//
// Serve always returns a non-nil error and closes l.  After Close, the
// returned error is ErrServerClosed.
func (srv *Server) Serve(l net.Listener) error {
	l = &onceCloseListener{Listener: l}
	defer l.Close()

	if !srv.trackListener(&l, true) {
		return ErrServerClosed
	}
	defer srv.trackListener(&l, false)

	var tempDelay time.Duration // how long to sleep on accept failure
	ctx := context.Background()
	for {
		rw, e := l.Accept()
		if e != nil {
			if srv.shuttingDown() {
				return ErrServerClosed
			}
			if ne, ok := e.(net.Error); ok && ne.Temporary() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := 1 * time.Second; tempDelay > max {
					tempDelay = max
				}
				serverLog.Info("accept error, retrying", "error", e, "delay", tempDelay)
				time.Sleep(tempDelay)
				continue
			}
			return e
		}
		tempDelay = 0
		c := &conn{server: srv, rwc: rw}
		go c.serve(ctx)
	}
}

// Close immediately closes all active net.Listeners.  Connections already
// being served run until their clients hang up.
func (srv *Server) Close() error {
	atomic.StoreInt32(&srv.inShutdown, 1)
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return srv.closeListenersLocked()
}

func (s *Server) closeListenersLocked() error {
	var err error
	for ln := range s.listeners {
		if cerr := (*ln).Close(); cerr != nil && err == nil {
			err = cerr
		}
		delete(s.listeners, ln)
	}
	return err
}

// trackListener adds or removes a net.Listener to the set of tracked
// listeners.
//
// We store a pointer to interface in the map set, in case the net.Listener
// is not comparable.  This is safe because we only call trackListener via
// Serve and can track+defer untrack the same pointer to local variable
// there.  We never need to compare a Listener from another caller.
//
// It reports whether the server is still up (not Closed).
func (s *Server) trackListener(ln *net.Listener, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listeners == nil {
		s.listeners = make(map[*net.Listener]struct{})
	}
	if add {
		if s.shuttingDown() {
			return false
		}
		s.listeners[ln] = struct{}{}
	} else {
		delete(s.listeners, ln)
	}
	return true
}

func (s *Server) shuttingDown() bool {
	return atomic.LoadInt32(&s.inShutdown) != 0
}

type conn struct {
	rwc        net.Conn
	remoteAddr string
	localAddr  string
	tlsState   *tls.ConnectionState
	// cancelCtx cancels the connection-level context.
	cancelCtx context.CancelFunc

	mr *MessageReader

	server *Server
}

func (c *conn) close() {
	c.rwc.Close()
}

// Serve a new connection.
func (c *conn) serve(ctx context.Context) {
	c.remoteAddr = c.rwc.RemoteAddr().String()
	c.localAddr = c.rwc.LocalAddr().String()

	// a connection correlation value ties together all the log lines for
	// this connection
	logger := serverLog.With("ccv", uuid.New().String(), "remoteAddr", c.remoteAddr)
	ctx = flume.WithLogger(ctx, logger)
	ctx, cancelCtx := context.WithCancel(ctx)
	c.cancelCtx = cancelCtx

	defer func() {
		if err := recover(); err != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			logger.Error("panic serving connection", "error", err, "stack", string(buf))
		}
		cancelCtx()
		c.close()
	}()

	if tlsConn, ok := c.rwc.(*tls.Conn); ok {
		if err := tlsConn.Handshake(); err != nil {
			logger.Info("TLS handshake error", "error", err)
			return
		}
		c.tlsState = new(tls.ConnectionState)
		*c.tlsState = tlsConn.ConnectionState()
	}

	c.mr = NewMessageReader(bufio.NewReader(c.rwc))
	c.mr.MaxRecordSize = c.server.MaxRecordSize

	for {
		if d := c.server.ReadTimeout; d != 0 {
			c.rwc.SetReadDeadline(time.Now().Add(d))
		}
		req, err := c.readRequest()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Debug("client closed connection")
				return
			}
			if Is(err, ber.ErrStructural, ber.ErrConstraint) {
				// the record was well framed, so the stream is
				// still aligned and the connection can go on
				logger.Info("dropping undecodable record", "error", err.Error())
				continue
			}
			logger.Info("closing connection", "error", err.Error())
			return
		}

		h := c.server.Handler
		if h == nil {
			h = DefaultHandler
		}
		resp, err := h.HandleMessage(ctx, req)
		if err != nil {
			logger.Error("handler error", "error", Details(err))
			return
		}
		if resp == nil {
			continue
		}

		writer := bufio.NewWriter(c.rwc)
		if err := WriteMessage(writer, resp); err != nil {
			logger.Info("write error", "error", err.Error())
			return
		}
		if err := writer.Flush(); err != nil {
			logger.Info("write error", "error", err.Error())
			return
		}
	}
}

// Read next request from connection.
func (c *conn) readRequest() (*Request, error) {
	msg, raw, err := c.mr.Next()
	if err != nil {
		return nil, err
	}
	return &Request{
		Raw:        raw,
		Message:    msg,
		RemoteAddr: c.remoteAddr,
		LocalAddr:  c.localAddr,
		TLS:        c.tlsState,
	}, nil
}

// onceCloseListener wraps a net.Listener, protecting it from multiple Close
// calls.
type onceCloseListener struct {
	net.Listener
	once     sync.Once
	closeErr error
}

func (oc *onceCloseListener) Close() error {
	oc.once.Do(oc.close)
	return oc.closeErr
}

func (oc *onceCloseListener) close() { oc.closeErr = oc.Listener.Close() }
