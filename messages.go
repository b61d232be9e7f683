package krb5

import (
	"bytes"

	"github.com/gemalto/krb5-go/ber"
)

// Message is a complete Kerberos protocol message.
type Message interface {
	Encodable
	MessageType() MessageType
}

// AsReq is the initial ticket request, RFC 4120 5.4.1.
//
//	AS-REQ          ::= [APPLICATION 10] KDC-REQ
type AsReq struct {
	KdcReq
}

// TgsReq is the additional ticket request, RFC 4120 5.4.1.
//
//	TGS-REQ         ::= [APPLICATION 12] KDC-REQ
type TgsReq struct {
	KdcReq
}

func (r *AsReq) MessageType() MessageType { return MsgTypeAsReq }

func (r *TgsReq) MessageType() MessageType { return MsgTypeTgsReq }

const (
	msgStart ber.State = iota
	msgApp
	msgKdcReq
)

var asReqGrammar = ber.NewGrammar("AS-REQ", []string{"START", "APP", "KDC_REQ"})

var tgsReqGrammar = ber.NewGrammar("TGS-REQ", []string{"START", "APP", "KDC_REQ"})

var messageGrammar = ber.NewGrammar("Message", []string{"START", "APP", "KDC_REQ"})

func init() {
	storeAsReq := &ber.Action{Name: "AS-REQ.storeKdcReq", Do: func(d *ber.Decoder, c ber.Container) error {
		ac := c.(*AsReqContainer)
		child := NewKdcReqContainer()
		return d.PushGrammar(child, func() error {
			req := child.KdcReq()
			if req.MsgType != MsgTypeAsReq {
				return d.ConstraintErrorf(ErrInvalidMsgType, "msg-type is %s inside an AS-REQ wrapper", req.MsgType)
			}
			ac.req = &AsReq{KdcReq: *req}
			ac.SetGrammarEndAllowed(true)
			return nil
		})
	}}
	storeTgsReq := &ber.Action{Name: "TGS-REQ.storeKdcReq", Do: func(d *ber.Decoder, c ber.Container) error {
		tc := c.(*TgsReqContainer)
		child := NewKdcReqContainer()
		return d.PushGrammar(child, func() error {
			req := child.KdcReq()
			if req.MsgType != MsgTypeTgsReq {
				return d.ConstraintErrorf(ErrInvalidMsgType, "msg-type is %s inside a TGS-REQ wrapper", req.MsgType)
			}
			tc.req = &TgsReq{KdcReq: *req}
			tc.SetGrammarEndAllowed(true)
			return nil
		})
	}}

	asReqGrammar.AddTransition(msgStart, ber.ApplicationTag(10), msgApp, nil)
	asReqGrammar.AddTransition(msgApp, ber.TagSequence, msgKdcReq, storeAsReq)
	tgsReqGrammar.AddTransition(msgStart, ber.ApplicationTag(12), msgApp, nil)
	tgsReqGrammar.AddTransition(msgApp, ber.TagSequence, msgKdcReq, storeTgsReq)

	// the detecting grammar accepts either application wrapper and records
	// which one opened the message
	beginAsReq := &ber.Action{Name: "Message.beginAsReq", Do: func(d *ber.Decoder, c ber.Container) error {
		c.(*MessageContainer).wrapper = MsgTypeAsReq
		return nil
	}}
	beginTgsReq := &ber.Action{Name: "Message.beginTgsReq", Do: func(d *ber.Decoder, c ber.Container) error {
		c.(*MessageContainer).wrapper = MsgTypeTgsReq
		return nil
	}}
	storeMessage := &ber.Action{Name: "Message.storeKdcReq", Do: func(d *ber.Decoder, c ber.Container) error {
		mc := c.(*MessageContainer)
		child := NewKdcReqContainer()
		return d.PushGrammar(child, func() error {
			req := child.KdcReq()
			if req.MsgType != mc.wrapper {
				return d.ConstraintErrorf(ErrInvalidMsgType, "msg-type is %s inside a %s wrapper", req.MsgType, mc.wrapper)
			}
			switch mc.wrapper {
			case MsgTypeAsReq:
				mc.msg = &AsReq{KdcReq: *req}
			case MsgTypeTgsReq:
				mc.msg = &TgsReq{KdcReq: *req}
			}
			mc.SetGrammarEndAllowed(true)
			return nil
		})
	}}

	messageGrammar.AddTransition(msgStart, ber.ApplicationTag(10), msgApp, beginAsReq)
	messageGrammar.AddTransition(msgStart, ber.ApplicationTag(12), msgApp, beginTgsReq)
	messageGrammar.AddTransition(msgApp, ber.TagSequence, msgKdcReq, storeMessage)
}

// AsReqContainer accumulates an AS-REQ during a parse.
type AsReqContainer struct {
	ber.BaseContainer
	req *AsReq
}

func NewAsReqContainer() *AsReqContainer {
	return &AsReqContainer{}
}

func (c *AsReqContainer) Grammar() *ber.Grammar {
	return asReqGrammar
}

func (c *AsReqContainer) AsReq() *AsReq {
	return c.req
}

// TgsReqContainer accumulates a TGS-REQ during a parse.
type TgsReqContainer struct {
	ber.BaseContainer
	req *TgsReq
}

func NewTgsReqContainer() *TgsReqContainer {
	return &TgsReqContainer{}
}

func (c *TgsReqContainer) Grammar() *ber.Grammar {
	return tgsReqGrammar
}

func (c *TgsReqContainer) TgsReq() *TgsReq {
	return c.req
}

// MessageContainer accumulates whichever message the stream carries.  Use it
// when the caller does not know the message type up front.
type MessageContainer struct {
	ber.BaseContainer
	wrapper MessageType
	msg     Message
}

func NewMessageContainer() *MessageContainer {
	return &MessageContainer{}
}

func (c *MessageContainer) Grammar() *ber.Grammar {
	return messageGrammar
}

func (c *MessageContainer) Message() Message {
	return c.msg
}

// DecodeAsReq decodes one complete AS-REQ from b.
func DecodeAsReq(b []byte) (*AsReq, error) {
	c := NewAsReqContainer()
	if err := decodeFull(c, b); err != nil {
		return nil, err
	}
	return c.AsReq(), nil
}

// DecodeTgsReq decodes one complete TGS-REQ from b.
func DecodeTgsReq(b []byte) (*TgsReq, error) {
	c := NewTgsReqContainer()
	if err := decodeFull(c, b); err != nil {
		return nil, err
	}
	return c.TgsReq(), nil
}

// DecodeMessage decodes one complete message from b, detecting the message
// type from the application wrapper.
func DecodeMessage(b []byte) (Message, error) {
	c := NewMessageContainer()
	if err := decodeFull(c, b); err != nil {
		return nil, err
	}
	return c.Message(), nil
}

func (r *AsReq) ComputeLength() int {
	return ber.FullSize(r.KdcReq.ComputeLength())
}

func (r *AsReq) encodeTo(buf *bytes.Buffer) {
	ber.WriteHeader(buf, ber.ApplicationTag(10), r.KdcReq.ComputeLength())
	r.KdcReq.encodeTo(buf)
}

func (r *TgsReq) ComputeLength() int {
	return ber.FullSize(r.KdcReq.ComputeLength())
}

func (r *TgsReq) encodeTo(buf *bytes.Buffer) {
	ber.WriteHeader(buf, ber.ApplicationTag(12), r.KdcReq.ComputeLength())
	r.KdcReq.encodeTo(buf)
}
