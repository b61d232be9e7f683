package ber

import (
	"math"

	"github.com/ansel1/merry"
	"github.com/gemalto/flume"
)

var log = flume.New("ber")

// DefaultMaxDepth bounds TLV nesting and grammar recursion when
// Decoder.MaxDepth is left zero.  Kerberos messages nest a handful of levels;
// anything deeper is hostile input.
const DefaultMaxDepth = 32

// scanState tracks progress through the TLV being read, so a header or value
// split across input chunks resumes where it left off.
type scanState int

const (
	scanTag scanState = iota
	scanLength
	scanLengthBytes
	scanValue
)

// frame is one level of grammar nesting.  frames[0] is the top-level message;
// actions push a frame per nested structure, bound to the constructed TLV
// that opened it.  When that TLV closes the frame pops and done delivers the
// child's product to the parent.
type frame struct {
	c      Container
	opened *TLV
	done   func() error
}

// Decoder drives a byte stream through grammar tables.  It owns all mutable
// parse state, so input may be supplied in arbitrary chunks: Decode consumes
// a chunk and suspends internally when it runs out of bytes, and Complete
// reports whether a whole message has been decoded.  A Decoder is used for a
// single message and is not safe for concurrent use.
type Decoder struct {
	// MaxDepth bounds constructed-TLV nesting and grammar recursion.
	// Zero means DefaultMaxDepth.
	MaxDepth int

	state   scanState
	current *TLV
	parent  *TLV // innermost open constructed TLV
	frames  []frame

	lenNeed int // long-form length octets expected
	lenRead int // long-form length octets consumed

	offset   int64
	complete bool
	pushed   bool // set by PushGrammar; triggers replay of the current TLV
}

// NewDecoder returns a decoder that parses one message into root.
func NewDecoder(root Container) *Decoder {
	return &Decoder{frames: []frame{{c: root}}}
}

// Reset discards all parse state and prepares the decoder to parse a new
// message into root.
func (d *Decoder) Reset(root Container) {
	frames := append(d.frames[:0], frame{c: root})
	*d = Decoder{
		MaxDepth: d.MaxDepth,
		frames:   frames,
	}
}

// Complete reports whether a full message has been decoded.
func (d *Decoder) Complete() bool {
	return d.complete
}

// Offset is the number of bytes consumed so far, across all Decode calls.
func (d *Decoder) Offset() int64 {
	return d.offset
}

// CurrentTLV is the TLV whose transition is being executed.  Only valid
// inside an action.
func (d *Decoder) CurrentTLV() *TLV {
	return d.current
}

// PushGrammar begins a nested parse: child's grammar takes over until the
// current (constructed) TLV closes, then done runs to deliver the child's
// product to the parent.  The decoder replays the current TLV against the
// child grammar's start state, so child grammars keep their natural
// first transition on the structure's own tag.
//
// PushGrammar may only be called from an action fired on the constructed TLV
// that opens the nested structure.
func (d *Decoder) PushGrammar(child Container, done func() error) error {
	if d.current == nil || !d.current.tag.Constructed() {
		return merry.New("PushGrammar called outside a constructed TLV transition")
	}
	if len(d.frames) >= d.maxDepth() {
		return d.StructuralErrorf(ErrMaxDepthExceeded, "more than %d nested grammars", d.maxDepth())
	}
	d.frames = append(d.frames, frame{c: child, opened: d.current, done: done})
	d.pushed = true
	return nil
}

// Decode consumes all of b, feeding completed TLVs through the grammar.  A
// chunk ending mid-header, mid-value, or mid-message is not an error: the
// parse suspends and the next Decode call resumes it.  Errors mean the stream
// can never be a valid message and the decoder must not be reused.
func (d *Decoder) Decode(b []byte) error {
	for pos := 0; pos < len(b); {
		if d.complete {
			return d.StructuralErrorf(ErrTrailingBytes, "%d bytes after message end", len(b)-pos)
		}

		switch d.state {
		case scanTag:
			c := b[pos]
			pos++
			d.offset++
			if c == 0 {
				return d.StructuralErrorf(ErrNullTag, "tag byte 0x00 at offset %d", d.offset-1)
			}
			if c&numberMask == numberMask {
				return d.StructuralErrorf(ErrHighTagNumber, "tag byte %#02x uses the multi-byte identifier form", c)
			}
			d.current = &TLV{tag: Tag(c), hdr: 1}
			d.state = scanLength

		case scanLength:
			c := b[pos]
			pos++
			d.offset++
			t := d.current
			t.hdr++
			switch {
			case c < 0x80:
				t.length = int(c)
				if err := d.headerDone(); err != nil {
					return err
				}
			case c == 0x80:
				return d.StructuralErrorf(ErrIndefiniteLength, "%s uses an indefinite length", t.tag)
			default:
				n := int(c & 0x7F)
				if n > 8 {
					return d.StructuralErrorf(ErrLengthOverflow, "%s declares %d length octets", t.tag, n)
				}
				t.hdr += n
				d.lenNeed = n
				d.lenRead = 0
				d.state = scanLengthBytes
			}

		case scanLengthBytes:
			t := d.current
			for d.lenRead < d.lenNeed && pos < len(b) {
				if t.length > math.MaxInt>>8 {
					return d.StructuralErrorf(ErrLengthOverflow, "%s length does not fit in an int", t.tag)
				}
				t.length = t.length<<8 | int(b[pos])
				pos++
				d.offset++
				d.lenRead++
			}
			if d.lenRead == d.lenNeed {
				if err := d.headerDone(); err != nil {
					return err
				}
			}

		case scanValue:
			t := d.current
			need := t.length - t.vread
			avail := len(b) - pos
			if t.vread == 0 && avail >= need {
				// whole value available: use it in place
				t.value = b[pos : pos+need]
				t.vread = need
				pos += need
				d.offset += int64(need)
				if err := d.tlvDone(); err != nil {
					return err
				}
				break
			}
			if t.value == nil {
				t.value = make([]byte, 0, t.length)
			}
			take := need
			if take > avail {
				take = avail
			}
			t.value = append(t.value, b[pos:pos+take]...)
			t.vread += take
			pos += take
			d.offset += int64(take)
			if t.vread == t.length {
				if err := d.tlvDone(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// headerDone runs once the current TLV's tag and length are fully read: the
// TLV is linked under the innermost open constructed TLV, checked against its
// remaining value bytes, and either starts value collection (primitive) or is
// processed immediately (constructed, or empty primitive).
func (d *Decoder) headerDone() error {
	t := d.current
	if p := d.parent; p != nil {
		if t.Size() > p.pending {
			return d.StructuralErrorf(ErrTLVOverflow, "%s of %d bytes exceeds the %d bytes left in %s",
				t.tag, t.Size(), p.pending, p.tag)
		}
		p.pending -= t.Size()
		t.parent = p
		t.depth = p.depth + 1
		if t.depth >= d.maxDepth() {
			return d.StructuralErrorf(ErrMaxDepthExceeded, "TLVs nested more than %d deep", d.maxDepth())
		}
	}
	if t.tag.Constructed() {
		t.pending = t.length
		return d.tlvDone()
	}
	if t.length == 0 {
		return d.tlvDone()
	}
	d.state = scanValue
	return nil
}

// tlvDone executes the grammar transition for the finished TLV, then closes
// every enclosing constructed TLV whose declared length has been consumed,
// popping grammar frames bound to them.  When the outermost TLV closes the
// message is complete, provided the grammar allows ending here.
func (d *Decoder) tlvDone() error {
	t := d.current
	if err := d.executeTransitions(t); err != nil {
		return err
	}
	d.current = nil
	d.state = scanTag

	if t.tag.Constructed() && t.pending > 0 {
		d.parent = t
		return nil
	}

	n := t
	if !t.tag.Constructed() {
		n = t.parent
	}
	for n != nil && n.pending == 0 {
		if err := d.closeFrames(n); err != nil {
			return err
		}
		n = n.parent
	}
	d.parent = n
	if d.parent != nil {
		return nil
	}

	root := d.frames[0].c
	if !root.GrammarEndAllowed() {
		return d.StructuralErrorf(ErrIncomplete, "%s closed before all required fields were read",
			root.Grammar().Name())
	}
	d.complete = true
	return nil
}

// executeTransitions applies the top frame's transition for t.  If the action
// pushed a child grammar, the same TLV is replayed against the child's start
// state, which runs the child's own init action.
func (d *Decoder) executeTransitions(t *TLV) error {
	for {
		c := d.frames[len(d.frames)-1].c
		g := c.Grammar()
		tr := g.Transition(c.State(), t.tag)
		if tr == nil {
			return d.StructuralErrorf(ErrUnexpectedTag, "%s in state %s of %s",
				t.tag, g.StateName(c.State()), g.Name())
		}
		if log.IsDebug() {
			log.Debug("transition", "grammar", g.Name(), "from", g.StateName(tr.Current),
				"to", g.StateName(tr.Next), "tag", t.tag.String(), "length", t.length)
		}
		if tr.Action != nil {
			if err := tr.Action.Do(d, c); err != nil {
				return err
			}
		}
		c.SetState(tr.Next)
		if !d.pushed {
			return nil
		}
		d.pushed = false
	}
}

// closeFrames pops grammar frames bound to the closing TLV n, verifying each
// child grammar reached a legal end and delivering its product.
func (d *Decoder) closeFrames(n *TLV) error {
	for len(d.frames) > 1 {
		fr := d.frames[len(d.frames)-1]
		if fr.opened != n {
			return nil
		}
		if !fr.c.GrammarEndAllowed() {
			return d.StructuralErrorf(ErrIncomplete, "%s closed before all required fields were read",
				fr.c.Grammar().Name())
		}
		d.frames = d.frames[:len(d.frames)-1]
		if fr.done != nil {
			if err := fr.done(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Decoder) maxDepth() int {
	if d.MaxDepth > 0 {
		return d.MaxDepth
	}
	return DefaultMaxDepth
}

// StructuralErrorf builds a structural decode error carrying the current
// offset, grammar state, and tag as error details.
func (d *Decoder) StructuralErrorf(sentinel error, format string, args ...interface{}) error {
	return d.annotate(merry.WrapSkipping(sentinel, 2).WithCause(ErrStructural).Appendf(format, args...))
}

// ConstraintErrorf builds a constraint violation error carrying the current
// offset, grammar state, and tag as error details.
func (d *Decoder) ConstraintErrorf(sentinel error, format string, args ...interface{}) error {
	return d.annotate(merry.WrapSkipping(sentinel, 2).WithCause(ErrConstraint).Appendf(format, args...))
}

func (d *Decoder) annotate(err merry.Error) error {
	err = err.WithValue(errKeyOffset, d.offset)
	if len(d.frames) > 0 {
		c := d.frames[len(d.frames)-1].c
		err = err.WithValue(errKeyState, c.Grammar().Name()+"."+c.Grammar().StateName(c.State()))
	}
	if d.current != nil {
		err = err.WithValue(errKeyTag, d.current.tag)
	}
	return err
}
