package krb5

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/ansel1/merry"
	"github.com/gemalto/flume/flumetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	flumetest.SetDefaults()
}

// echoHandler replies to every request with the raw request record.
var echoHandler = HandlerFunc(func(ctx context.Context, req *Request) (Encodable, error) {
	return req.Raw, nil
})

// startServer serves srv on an ephemeral listener and returns the address to
// dial.  The server is closed when the test ends.
func startServer(t *testing.T, srv *Server) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(listener)
	t.Cleanup(func() { srv.Close() })
	return listener.Addr().String()
}

func TestServer(t *testing.T) {
	defer flumetest.Start(t)()

	addr := startServer(t, &Server{Handler: echoHandler})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	mr := NewMessageReader(bufio.NewReader(conn))
	for i := 0; i < 3; i++ {
		require.NoError(t, WriteMessage(conn, sampleAsReq()))

		msg, raw, err := mr.Next()
		require.NoError(t, err)
		assert.Equal(t, RawMessage(hex2bytes(sampleAsReqHex)), raw)
		assert.Equal(t, sampleAsReq(), msg)
	}
}

// A handler returning nil sends no reply, and the connection stays usable
// for the next request.
func TestServer_noReply(t *testing.T) {
	defer flumetest.Start(t)()

	addr := startServer(t, &Server{
		Handler: HandlerFunc(func(ctx context.Context, req *Request) (Encodable, error) {
			if req.TgsReq() == nil {
				return nil, nil
			}
			return req.Raw, nil
		}),
	})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	tgs := &TgsReq{KdcReq: KdcReq{
		Pvno:    5,
		MsgType: MsgTypeTgsReq,
		ReqBody: sampleAsReq().ReqBody,
	}}

	// the AS-REQ is dropped without a reply, so the first message read
	// back must be the echoed TGS-REQ
	require.NoError(t, WriteMessage(conn, sampleAsReq()))
	require.NoError(t, WriteMessage(conn, tgs))

	msg, _, err := ReadMessage(bufio.NewReader(conn))
	require.NoError(t, err)
	assert.Equal(t, tgs, msg)
}

// A well framed record that fails to decode is dropped, and the connection
// keeps serving.
func TestServer_undecodableRecord(t *testing.T) {
	defer flumetest.Start(t)()

	addr := startServer(t, &Server{Handler: echoHandler})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	// record claims 3 content bytes but holds 2
	require.NoError(t, WriteRawMessage(conn, hex2bytes("30 03 02 01")))
	require.NoError(t, WriteMessage(conn, sampleAsReq()))

	msg, _, err := ReadMessage(bufio.NewReader(conn))
	require.NoError(t, err)
	assert.Equal(t, sampleAsReq(), msg)
}

func TestServer_readTimeout(t *testing.T) {
	defer flumetest.Start(t)()

	addr := startServer(t, &Server{Handler: echoHandler, ReadTimeout: 50 * time.Millisecond})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	// send nothing; the server should hang up on its own
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err = conn.Read(make([]byte, 1))
	assert.Error(t, err)
}

func TestServer_close(t *testing.T) {
	defer flumetest.Start(t)()

	srv := &Server{Handler: echoHandler}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(listener) }()

	require.NoError(t, srv.Close())
	select {
	case err := <-serveErr:
		assert.Equal(t, ErrServerClosed, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}

func TestMessageMux(t *testing.T) {
	defer flumetest.Start(t)()

	mux := &MessageMux{}
	mux.Handle(MsgTypeAsReq, echoHandler)

	req := &Request{Raw: RawMessage(hex2bytes(sampleAsReqHex)), Message: sampleAsReq()}
	resp, err := mux.HandleMessage(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, Encodable(req.Raw), resp)

	// no handler registered for TGS-REQ: the default error handler
	// swallows the error and drops the request
	tgsReq := &Request{Message: &TgsReq{KdcReq: KdcReq{Pvno: 5, MsgType: MsgTypeTgsReq}}}
	resp, err = mux.HandleMessage(context.Background(), tgsReq)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestMessageMux_errorHandler(t *testing.T) {
	defer flumetest.Start(t)()

	mux := &MessageMux{
		ErrorHandler: ErrorHandlerFunc(func(ctx context.Context, req *Request, err error) (Encodable, error) {
			return nil, err
		}),
	}

	// unregistered message type
	_, err := mux.HandleMessage(context.Background(), &Request{Message: sampleAsReq()})
	require.Error(t, err)
	assert.Equal(t, KrbApErrMsgType, GetErrorCode(err))

	// handler errors flow through the error handler unchanged
	mux.Handle(MsgTypeAsReq, HandlerFunc(func(ctx context.Context, req *Request) (Encodable, error) {
		return nil, WithErrorCode(merry.New("client not found"), KdcErrCPrincipalUnknown)
	}))
	_, err = mux.HandleMessage(context.Background(), &Request{Message: sampleAsReq()})
	require.Error(t, err)
	assert.Equal(t, KdcErrCPrincipalUnknown, GetErrorCode(err))
}

func TestServer_mux(t *testing.T) {
	defer flumetest.Start(t)()

	mux := &MessageMux{}
	mux.Handle(MsgTypeAsReq, echoHandler)

	addr := startServer(t, &Server{Handler: mux})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	// TGS-REQ has no handler and is dropped; AS-REQ is echoed
	tgs := &TgsReq{KdcReq: KdcReq{
		Pvno:    5,
		MsgType: MsgTypeTgsReq,
		ReqBody: sampleAsReq().ReqBody,
	}}
	require.NoError(t, WriteMessage(conn, tgs))
	require.NoError(t, WriteMessage(conn, sampleAsReq()))

	msg, _, err := ReadMessage(bufio.NewReader(conn))
	require.NoError(t, err)
	assert.Equal(t, sampleAsReq(), msg)
}
