package automaton

// StateID indexes a state in an NFA's state table.
type StateID int

// TransitionKind distinguishes labelled transitions from ε-transitions.
type TransitionKind uint8

const (
	TransitionEpsilon TransitionKind = iota
	TransitionChar
	TransitionAny
)

// Transition is a single outgoing edge. Char is meaningful for TransitionChar only.
type Transition struct {
	Kind TransitionKind
	Char rune
	To   StateID
}

// matches reports whether a labelled transition consumes r.
func (t Transition) matches(r rune) bool {
	switch t.Kind {
	case TransitionChar:
		return t.Char == r
	case TransitionAny:
		return true
	default:
		return false
	}
}

// NFAState holds the outgoing transitions of one state.
type NFAState struct {
	Out []Transition
}

// Fragment is a sub-automaton with a single entry and a single exit state.
// Fragments only exist while compiling.
type Fragment struct {
	Start  StateID
	Accept StateID
}

// NFA is a compiled Thompson automaton: a flat state table addressed by
// StateID plus the designated start and accept states. The accept state has
// no outgoing transitions. An NFA is never mutated after Compile returns and
// may be shared between goroutines.
type NFA struct {
	states []NFAState
	start  StateID
	accept StateID
}

// Start returns the start state.
func (n *NFA) Start() StateID { return n.start }

// Accept returns the single accepting state.
func (n *NFA) Accept() StateID { return n.accept }

// NumStates returns the size of the state table.
func (n *NFA) NumStates() int { return len(n.states) }

// Transitions returns the outgoing transitions of id. The slice must not be modified.
func (n *NFA) Transitions(id StateID) []Transition {
	return n.states[id].Out
}
