package ber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrammar(t *testing.T) {
	g := NewGrammar("test", []string{"START", "ONE", "TWO"})
	assert.Equal(t, "test", g.Name())
	assert.Equal(t, "START", g.StateName(0))
	assert.Equal(t, "TWO", g.StateName(2))
	assert.Equal(t, "state(5)", g.StateName(5))
	assert.Equal(t, "state(-1)", g.StateName(-1))

	g.AddTransition(0, TagSequence, 1, nil)
	g.AddTransition(1, ContextTag(0), 2, CheckNotNullLength)

	tr := g.Transition(0, TagSequence)
	require.NotNil(t, tr)
	assert.Equal(t, State(0), tr.Current)
	assert.Equal(t, State(1), tr.Next)
	assert.Equal(t, TagSequence, tr.Tag)
	assert.Nil(t, tr.Action)

	tr = g.Transition(1, ContextTag(0))
	require.NotNil(t, tr)
	assert.Equal(t, CheckNotNullLength, tr.Action)

	// tags with no registered edge are illegal
	assert.Nil(t, g.Transition(0, TagInteger))
	assert.Nil(t, g.Transition(2, TagSequence))

	// out of range states are illegal rather than a panic
	assert.Nil(t, g.Transition(17, TagSequence))
	assert.Nil(t, g.Transition(-1, TagSequence))

	// a duplicate edge is a programming error
	assert.Panics(t, func() {
		g.AddTransition(0, TagSequence, 2, nil)
	})
}

func TestBaseContainer(t *testing.T) {
	var c BaseContainer
	assert.Equal(t, State(0), c.State())
	assert.False(t, c.GrammarEndAllowed())

	c.SetState(3)
	c.SetGrammarEndAllowed(true)
	assert.Equal(t, State(3), c.State())
	assert.True(t, c.GrammarEndAllowed())
}
