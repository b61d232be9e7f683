package krb5

import (
	"bytes"

	"github.com/gemalto/krb5-go/ber"
)

// KdcReq is the request structure shared by AS-REQ and TGS-REQ, RFC 4120
// 5.4.1.  Field tags start at [1], a relic of RFC 1510.
//
//	KDC-REQ         ::= SEQUENCE {
//	        pvno            [1] INTEGER (5),
//	        msg-type        [2] INTEGER (10 -- AS -- | 12 -- TGS --),
//	        padata          [3] SEQUENCE OF PA-DATA OPTIONAL,
//	        req-body        [4] KDC-REQ-BODY
//	}
type KdcReq struct {
	Pvno    int32
	MsgType MessageType
	PaData  []PaData
	ReqBody KdcReqBody
}

const (
	reqStart ber.State = iota
	reqSeq
	reqPvnoTag
	reqPvnoValue
	reqMsgTypeTag
	reqMsgTypeValue
	reqPaDataTag
	reqPaDataSeq
	reqBodyTag
	reqBodyValue
)

var kdcReqGrammar = ber.NewGrammar("KDC-REQ", []string{
	"START", "SEQ", "PVNO_TAG", "PVNO_VALUE", "MSG_TYPE_TAG", "MSG_TYPE_VALUE",
	"PA_DATA_TAG", "PA_DATA_SEQ", "REQ_BODY_TAG", "REQ_BODY_VALUE",
})

func init() {
	storePvno := &ber.Action{Name: "KDC-REQ.storePvno", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseInt32(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		if v != 5 {
			return d.ConstraintErrorf(ErrInvalidPvno, "pvno is %d", v)
		}
		c.(*KdcReqContainer).req.Pvno = v
		return nil
	}}
	storeMsgType := &ber.Action{Name: "KDC-REQ.storeMsgType", Do: func(d *ber.Decoder, c ber.Container) error {
		v, err := ber.ParseInt32(d.CurrentTLV().Value())
		if err != nil {
			return err
		}
		mt := MessageType(v)
		if mt != MsgTypeAsReq && mt != MsgTypeTgsReq {
			return d.ConstraintErrorf(ErrInvalidMsgType, "msg-type is %d", v)
		}
		c.(*KdcReqContainer).req.MsgType = mt
		return nil
	}}
	addPaData := &ber.Action{Name: "KDC-REQ.addPaData", Do: func(d *ber.Decoder, c ber.Container) error {
		rc := c.(*KdcReqContainer)
		child := NewPaDataContainer()
		return d.PushGrammar(child, func() error {
			rc.req.PaData = append(rc.req.PaData, *child.PaData())
			return nil
		})
	}}
	storeReqBody := &ber.Action{Name: "KDC-REQ.storeReqBody", Do: func(d *ber.Decoder, c ber.Container) error {
		rc := c.(*KdcReqContainer)
		child := NewKdcReqBodyContainer()
		return d.PushGrammar(child, func() error {
			rc.req.ReqBody = *child.KdcReqBody()
			rc.SetGrammarEndAllowed(true)
			return nil
		})
	}}

	g := kdcReqGrammar
	g.AddTransition(reqStart, ber.TagSequence, reqSeq, nil)
	g.AddTransition(reqSeq, ber.ContextTag(1), reqPvnoTag, ber.CheckNotNullLength)
	g.AddTransition(reqPvnoTag, ber.TagInteger, reqPvnoValue, storePvno)
	g.AddTransition(reqPvnoValue, ber.ContextTag(2), reqMsgTypeTag, ber.CheckNotNullLength)
	g.AddTransition(reqMsgTypeTag, ber.TagInteger, reqMsgTypeValue, storeMsgType)
	g.AddTransition(reqMsgTypeValue, ber.ContextTag(3), reqPaDataTag, ber.CheckNotNullLength)
	g.AddTransition(reqMsgTypeValue, ber.ContextTag(4), reqBodyTag, ber.CheckNotNullLength)
	g.AddTransition(reqPaDataTag, ber.TagSequence, reqPaDataSeq, ber.CheckNotNullLength)
	g.AddTransition(reqPaDataSeq, ber.TagSequence, reqPaDataSeq, addPaData)
	g.AddTransition(reqPaDataSeq, ber.ContextTag(4), reqBodyTag, ber.CheckNotNullLength)
	g.AddTransition(reqBodyTag, ber.TagSequence, reqBodyValue, storeReqBody)
}

// KdcReqContainer accumulates a KDC-REQ during a parse.
type KdcReqContainer struct {
	ber.BaseContainer
	req *KdcReq
}

func NewKdcReqContainer() *KdcReqContainer {
	return &KdcReqContainer{req: &KdcReq{}}
}

func (c *KdcReqContainer) Grammar() *ber.Grammar {
	return kdcReqGrammar
}

func (c *KdcReqContainer) KdcReq() *KdcReq {
	return c.req
}

// DecodeKdcReq decodes one complete KDC-REQ from b, without the application
// wrapper that distinguishes AS-REQ from TGS-REQ.
func DecodeKdcReq(b []byte) (*KdcReq, error) {
	c := NewKdcReqContainer()
	if err := decodeFull(c, b); err != nil {
		return nil, err
	}
	return c.KdcReq(), nil
}

func (r *KdcReq) paDataLen() int {
	var n int
	for i := range r.PaData {
		n += r.PaData[i].ComputeLength()
	}
	return n
}

func (r *KdcReq) seqLen() int {
	n := intFieldSize(int64(r.Pvno)) + intFieldSize(int64(r.MsgType))
	if len(r.PaData) > 0 {
		n += ber.FullSize(ber.FullSize(r.paDataLen()))
	}
	n += ber.FullSize(r.ReqBody.ComputeLength())
	return n
}

func (r *KdcReq) ComputeLength() int {
	return ber.FullSize(r.seqLen())
}

func (r *KdcReq) encodeTo(buf *bytes.Buffer) {
	ber.WriteHeader(buf, ber.TagSequence, r.seqLen())
	writeIntField(buf, ber.ContextTag(1), int64(r.Pvno))
	writeIntField(buf, ber.ContextTag(2), int64(r.MsgType))
	if len(r.PaData) > 0 {
		paLen := r.paDataLen()
		ber.WriteHeader(buf, ber.ContextTag(3), ber.FullSize(paLen))
		ber.WriteHeader(buf, ber.TagSequence, paLen)
		for i := range r.PaData {
			r.PaData[i].encodeTo(buf)
		}
	}
	ber.WriteHeader(buf, ber.ContextTag(4), r.ReqBody.ComputeLength())
	r.ReqBody.encodeTo(buf)
}
