package automaton

import (
	"fmt"

	"nfamatch/internal/syntax"
)

// Compile builds an NFA from a parsed pattern using Thompson's construction.
// Each node kind has a fixed fragment shape; fragments are spliced together
// with ε-transitions inside one shared state table.
func Compile(node syntax.Node) *NFA {
	c := &compiler{states: make([]NFAState, 0, 2*syntax.Size(node))}
	frag := c.compile(node)
	return &NFA{
		states: c.states,
		start:  frag.Start,
		accept: frag.Accept,
	}
}

type compiler struct {
	states []NFAState
}

func (c *compiler) newState() StateID {
	c.states = append(c.states, NFAState{})
	return StateID(len(c.states) - 1)
}

func (c *compiler) epsilon(from, to StateID) {
	c.states[from].Out = append(c.states[from].Out, Transition{Kind: TransitionEpsilon, To: to})
}

func (c *compiler) compile(node syntax.Node) Fragment {
	switch n := node.(type) {
	case *syntax.Literal:
		s, a := c.newState(), c.newState()
		c.states[s].Out = append(c.states[s].Out, Transition{Kind: TransitionChar, Char: n.Char, To: a})
		return Fragment{Start: s, Accept: a}

	case *syntax.AnyChar:
		s, a := c.newState(), c.newState()
		c.states[s].Out = append(c.states[s].Out, Transition{Kind: TransitionAny, To: a})
		return Fragment{Start: s, Accept: a}

	case *syntax.Empty:
		s, a := c.newState(), c.newState()
		c.epsilon(s, a)
		return Fragment{Start: s, Accept: a}

	case *syntax.Concat:
		left := c.compile(n.Left)
		right := c.compile(n.Right)
		c.epsilon(left.Accept, right.Start)
		return Fragment{Start: left.Start, Accept: right.Accept}

	case *syntax.Alternate:
		s, a := c.newState(), c.newState()
		left := c.compile(n.Left)
		right := c.compile(n.Right)
		c.epsilon(s, left.Start)
		c.epsilon(s, right.Start)
		c.epsilon(left.Accept, a)
		c.epsilon(right.Accept, a)
		return Fragment{Start: s, Accept: a}

	case *syntax.Star:
		s, a := c.newState(), c.newState()
		inner := c.compile(n.Inner)
		c.epsilon(s, inner.Start)
		c.epsilon(s, a)
		c.epsilon(inner.Accept, inner.Start)
		c.epsilon(inner.Accept, a)
		return Fragment{Start: s, Accept: a}

	case *syntax.Plus:
		inner := c.compile(n.Inner)
		a := c.newState()
		c.epsilon(inner.Accept, inner.Start)
		c.epsilon(inner.Accept, a)
		return Fragment{Start: inner.Start, Accept: a}

	case *syntax.Optional:
		s, a := c.newState(), c.newState()
		inner := c.compile(n.Inner)
		c.epsilon(s, inner.Start)
		c.epsilon(s, a)
		c.epsilon(inner.Accept, a)
		return Fragment{Start: s, Accept: a}

	default:
		// Parse only produces the node kinds above.
		panic(fmt.Sprintf("automaton: unknown node type %T", node))
	}
}
