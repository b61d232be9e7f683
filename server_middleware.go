package krb5

import (
	"context"
	"sync"

	"github.com/ansel1/merry"
	"github.com/gemalto/flume"
	"github.com/google/uuid"
)

// ErrorHandler turns an error returned by a message handler into a reply.
// Implementations may return a substitute reply, swallow the error (nil, nil
// drops the request and keeps the connection alive), or return the error
// unchanged, which closes the connection.
type ErrorHandler interface {
	HandleError(ctx context.Context, req *Request, err error) (Encodable, error)
}

// ErrorHandlerFunc adapts a function to the ErrorHandler interface.
type ErrorHandlerFunc func(ctx context.Context, req *Request, err error) (Encodable, error)

func (f ErrorHandlerFunc) HandleError(ctx context.Context, req *Request, err error) (Encodable, error) {
	return f(ctx, req, err)
}

// DefaultErrorHandler logs the error with its protocol error code and drops
// the request.  Handlers which want KRB-ERROR replies on the wire should
// install an ErrorHandler that builds them.
var DefaultErrorHandler ErrorHandler = ErrorHandlerFunc(func(ctx context.Context, req *Request, err error) (Encodable, error) {
	flume.FromContext(ctx).Info("dropping request", "errorCode", GetErrorCode(err).String(), "error", err.Error())
	return nil, nil
})

// DefaultMux is the MessageMux used by kdcserve and by callers who want a
// shared, package-level mux.
var DefaultMux = &MessageMux{}

// MessageMux routes requests to handlers registered by message type.  It is
// itself a Handler, so it can be installed directly as Server.Handler.
type MessageMux struct {
	mu       sync.RWMutex
	handlers map[MessageType]Handler

	// ErrorHandler converts handler errors into replies.  Nil means
	// DefaultErrorHandler.
	ErrorHandler ErrorHandler
}

// Handle registers handler for the given message type, replacing any prior
// registration.
func (m *MessageMux) Handle(mt MessageType, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handlers == nil {
		m.handlers = map[MessageType]Handler{}
	}

	m.handlers[mt] = handler
}

func (m *MessageMux) handlerForType(mt MessageType) Handler {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.handlers[mt]
}

func (m *MessageMux) HandleMessage(ctx context.Context, req *Request) (Encodable, error) {
	// create a server correlation value, which is like a unique transaction ID
	scv := uuid.New().String()

	// create a logger for the transaction, seeded with the scv
	logger := flume.FromContext(ctx).With("scv", scv)
	// attach the logger to the context, so it is available to the handling chain
	ctx = flume.WithLogger(ctx, logger)

	mt := req.Message.MessageType()
	h := m.handlerForType(mt)
	if h == nil {
		err := WithErrorCode(merry.Errorf("no handler registered for %s", mt), KrbApErrMsgType)
		return m.handleError(ctx, req, err)
	}

	resp, err := h.HandleMessage(ctx, req)
	if err != nil {
		return m.handleError(ctx, req, err)
	}
	return resp, nil
}

func (m *MessageMux) handleError(ctx context.Context, req *Request, err error) (Encodable, error) {
	eh := m.ErrorHandler
	if eh == nil {
		eh = DefaultErrorHandler
	}
	return eh.HandleError(ctx, req, err)
}
