package ber

import "fmt"

// State is one position in a grammar's state space.  Each grammar numbers its
// own states from 0 (the start state).
type State int

// Transition is one legal edge in a grammar: seeing Tag while in Current
// moves the parse to Next, running Action first if one is bound.
type Transition struct {
	Current State
	Next    State
	Tag     Tag
	Action  *Action
}

// Action is one unit of decode logic, run when its transition fires.  The
// decoder argument exposes the current TLV and the sub-grammar hook; the
// container is the frame's in-progress message object.  Actions never perform
// I/O: they operate only on the container and the TLV's already-read bytes.
type Action struct {
	Name string
	Do   func(d *Decoder, c Container) error
}

// CheckNotNullLength rejects a zero-length TLV.  It is the stock action for
// tags whose value is required to have content, which in Kerberos is nearly
// every wrapper tag.
var CheckNotNullLength = &Action{
	Name: "check not null length",
	Do: func(d *Decoder, _ Container) error {
		if d.CurrentTLV().Length() == 0 {
			return d.StructuralErrorf(ErrNullLength, "%s must not be empty", d.CurrentTLV().Tag())
		}
		return nil
	},
}

// Grammar is the complete transition table for one message type: a dense
// [numStates][256] lookup from (state, tag byte) to the transition to take.
// Grammars are built once at package init and never mutated afterwards, so a
// single instance is shared by all decodes of that message type.
type Grammar struct {
	name        string
	stateNames  []string
	transitions [][256]*Transition
}

// NewGrammar returns an empty grammar with one row per state name.  The
// state names are used only for diagnostics.
func NewGrammar(name string, stateNames []string) *Grammar {
	return &Grammar{
		name:        name,
		stateNames:  stateNames,
		transitions: make([][256]*Transition, len(stateNames)),
	}
}

func (g *Grammar) Name() string {
	return g.name
}

// StateName returns the diagnostic name of s.
func (g *Grammar) StateName(s State) string {
	if s < 0 || int(s) >= len(g.stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return g.stateNames[s]
}

// AddTransition registers the edge (from, tag) -> to.  action may be nil for
// a pure state move.  Registering the same (from, tag) twice panics: grammars
// are static tables and a duplicate edge is a programming error.
func (g *Grammar) AddTransition(from State, tag Tag, to State, action *Action) {
	if g.transitions[from][tag] != nil {
		panic(fmt.Sprintf("%s: duplicate transition from %s on %s", g.name, g.StateName(from), tag))
	}
	g.transitions[from][tag] = &Transition{
		Current: from,
		Next:    to,
		Tag:     tag,
		Action:  action,
	}
}

// Transition looks up the edge for (state, tag).  A nil result means the tag
// is not legal in that state.
func (g *Grammar) Transition(s State, tag Tag) *Transition {
	if s < 0 || int(s) >= len(g.transitions) {
		return nil
	}
	return g.transitions[s][tag]
}

// Container accumulates one grammar's product during a parse.  Message types
// implement it by embedding BaseContainer and adding their target object plus
// a Grammar method returning the type's shared grammar.
type Container interface {
	Grammar() *Grammar

	State() State
	SetState(State)

	// GrammarEndAllowed reports whether the grammar is in a position where
	// its structure may legally end.  Actions set it once the last required
	// field has been stored; the decoder checks it when the structure's
	// enclosing TLV closes.
	GrammarEndAllowed() bool
	SetGrammarEndAllowed(bool)
}

// BaseContainer supplies the bookkeeping half of Container.  Embed it in a
// message container and implement Grammar.
type BaseContainer struct {
	state State
	endOK bool
}

func (c *BaseContainer) State() State {
	return c.state
}

func (c *BaseContainer) SetState(s State) {
	c.state = s
}

func (c *BaseContainer) GrammarEndAllowed() bool {
	return c.endOK
}

func (c *BaseContainer) SetGrammarEndAllowed(ok bool) {
	c.endOK = ok
}
