package automaton

import (
	"encoding/binary"
	"errors"
	"sort"
)

// MaxDFAStates bounds subset construction when no explicit limit is given.
const MaxDFAStates = 10000

var ErrDFAStateLimitExceeded = errors.New("DFA state limit exceeded during construction")

// DFA is a deterministic automaton accepting the same language as the NFA it
// was built from. The input alphabet is partitioned into classes: one class
// per literal rune appearing in the NFA and a final class for every other rune.
type DFA struct {
	classes    map[rune]int
	numClasses int
	// transitions[state][class] = next state
	transitions [][]State
	accepting   []bool
	live        []bool
}

// Determinize converts an NFA into a DFA via subset construction. It returns
// ErrDFAStateLimitExceeded if more than maxStates states would be needed.
// A non-positive maxStates means MaxDFAStates.
func Determinize(n *NFA, maxStates int) (*DFA, error) {
	if maxStates <= 0 {
		maxStates = MaxDFAStates
	}

	classes, classRunes := alphabetClasses(n)
	numClasses := len(classRunes) + 1
	sim := newSimulation(n)

	// DFA state 0 = dead, state 1 = start
	dfa := &DFA{
		classes:     classes,
		numClasses:  numClasses,
		transitions: [][]State{make([]State, numClasses)},
		accepting:   []bool{false},
	}

	sim.reset()
	startSet := append([]StateID(nil), sim.cur.dense...)
	dfa.transitions = append(dfa.transitions, make([]State, numClasses))
	dfa.accepting = append(dfa.accepting, sim.accepting())

	setToID := map[string]State{setKey(startSet): 1}
	queue := [][]StateID{startSet}
	queueIDs := []State{1}

	for len(queue) > 0 {
		currentSet := queue[0]
		currentID := queueIDs[0]
		queue = queue[1:]
		queueIDs = queueIDs[1:]

		for class := 0; class < numClasses; class++ {
			sim.next.clear()
			for _, s := range currentSet {
				for _, t := range n.states[s].Out {
					if classMatches(t, class, classes) {
						sim.addClosure(sim.next, t.To, 0)
					}
				}
			}

			if sim.next.empty() {
				dfa.transitions[currentID][class] = DeadState
				continue
			}

			nextSet := append([]StateID(nil), sim.next.dense...)
			key := setKey(nextSet)

			if id, exists := setToID[key]; exists {
				dfa.transitions[currentID][class] = id
				continue
			}

			newID := State(len(dfa.transitions))
			if int(newID) >= maxStates {
				return nil, ErrDFAStateLimitExceeded
			}
			setToID[key] = newID
			dfa.transitions = append(dfa.transitions, make([]State, numClasses))
			dfa.accepting = append(dfa.accepting, sim.next.contains(n.accept))
			dfa.transitions[currentID][class] = newID
			queue = append(queue, nextSet)
			queueIDs = append(queueIDs, newID)
		}
	}

	dfa.live = liveStates(dfa)
	return dfa, nil
}

// alphabetClasses assigns a class index to every literal rune in the NFA.
// The class len(runes) stands for all remaining runes.
func alphabetClasses(n *NFA) (map[rune]int, []rune) {
	seen := make(map[rune]bool)
	for _, st := range n.states {
		for _, t := range st.Out {
			if t.Kind == TransitionChar {
				seen[t.Char] = true
			}
		}
	}

	runes := make([]rune, 0, len(seen))
	for r := range seen {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })

	classes := make(map[rune]int, len(runes))
	for i, r := range runes {
		classes[r] = i
	}
	return classes, runes
}

func classMatches(t Transition, class int, classes map[rune]int) bool {
	switch t.Kind {
	case TransitionAny:
		return true
	case TransitionChar:
		return classes[t.Char] == class
	default:
		return false
	}
}

// setKey encodes a state set canonically so equal sets map to the same DFA state.
func setKey(set []StateID) string {
	sorted := append([]StateID(nil), set...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	buf := make([]byte, 4*len(sorted))
	for i, s := range sorted {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(s))
	}
	return string(buf)
}

// liveStates marks every state from which an accepting state is reachable.
func liveStates(dfa *DFA) []bool {
	live := make([]bool, len(dfa.transitions))
	copy(live, dfa.accepting)

	for changed := true; changed; {
		changed = false
		for s := 1; s < len(dfa.transitions); s++ {
			if live[s] {
				continue
			}
			for _, next := range dfa.transitions[s] {
				if live[next] {
					live[s] = true
					changed = true
					break
				}
			}
		}
	}
	return live
}

func (a *DFA) Start() State {
	return 1 // State 1 is start; 0 is dead.
}

func (a *DFA) Step(state State, r rune) State {
	if state == DeadState || int(state) >= len(a.transitions) {
		return DeadState
	}
	class, ok := a.classes[r]
	if !ok {
		class = a.numClasses - 1
	}
	return a.transitions[state][class]
}

func (a *DFA) IsAccept(state State) bool {
	if state == DeadState || int(state) >= len(a.accepting) {
		return false
	}
	return a.accepting[state]
}

func (a *DFA) CanMatch(state State) bool {
	if state == DeadState || int(state) >= len(a.live) {
		return false
	}
	return a.live[state]
}

// NumStates returns the number of DFA states including the dead state.
func (a *DFA) NumStates() int {
	return len(a.transitions)
}
