package automaton

import "unicode/utf8"

// stateSet is a sparse set of NFA states: O(1) insert, membership test and
// clear, with insertion order preserved in dense. origin records, per member,
// the text offset where the thread holding that state began.
type stateSet struct {
	dense  []StateID
	sparse []int
	origin []int
}

func newStateSet(capacity int) *stateSet {
	return &stateSet{
		dense:  make([]StateID, 0, capacity),
		sparse: make([]int, capacity),
		origin: make([]int, capacity),
	}
}

func (s *stateSet) contains(id StateID) bool {
	i := s.sparse[id]
	return i < len(s.dense) && s.dense[i] == id
}

func (s *stateSet) insert(id StateID, origin int) {
	s.sparse[id] = len(s.dense)
	s.dense = append(s.dense, id)
	s.origin[id] = origin
}

func (s *stateSet) clear() {
	s.dense = s.dense[:0]
}

func (s *stateSet) empty() bool {
	return len(s.dense) == 0
}

// simulation is the per-call scratch space for running an NFA. The NFA
// itself is only read.
type simulation struct {
	nfa   *NFA
	cur   *stateSet
	next  *stateSet
	stack []StateID
}

func newSimulation(n *NFA) *simulation {
	return &simulation{
		nfa:   n,
		cur:   newStateSet(len(n.states)),
		next:  newStateSet(len(n.states)),
		stack: make([]StateID, 0, len(n.states)),
	}
}

// addClosure adds id and every state reachable from it through ε-transitions
// to set, tagged with origin. Membership doubles as the visited set, so
// ε-cycles from Star and Plus terminate. A state already in set keeps the
// origin it was first added with.
func (sim *simulation) addClosure(set *stateSet, id StateID, origin int) {
	if set.contains(id) {
		return
	}
	set.insert(id, origin)
	sim.stack = append(sim.stack[:0], id)

	for len(sim.stack) > 0 {
		s := sim.stack[len(sim.stack)-1]
		sim.stack = sim.stack[:len(sim.stack)-1]
		for _, t := range sim.nfa.states[s].Out {
			if t.Kind == TransitionEpsilon && !set.contains(t.To) {
				set.insert(t.To, origin)
				sim.stack = append(sim.stack, t.To)
			}
		}
	}
}

// reset makes the current set the ε-closure of the start state.
func (sim *simulation) reset() {
	sim.cur.clear()
	sim.addClosure(sim.cur, sim.nfa.start, 0)
}

// step advances every active state over r and swaps in the closure of the
// result. It returns false when no state survives.
func (sim *simulation) step(r rune) bool {
	sim.next.clear()
	for _, s := range sim.cur.dense {
		for _, t := range sim.nfa.states[s].Out {
			if t.matches(r) {
				sim.addClosure(sim.next, t.To, sim.cur.origin[s])
			}
		}
	}
	sim.cur, sim.next = sim.next, sim.cur
	return !sim.cur.empty()
}

func (sim *simulation) accepting() bool {
	return sim.cur.contains(sim.nfa.accept)
}

// Matches reports whether the NFA accepts the whole of text. It runs in
// O(len(text) × NumStates) time and never backtracks.
func Matches(n *NFA, text string) bool {
	sim := newSimulation(n)
	sim.reset()
	for _, r := range text {
		if !sim.step(r) {
			return false
		}
	}
	return sim.accepting()
}

// findFrom returns the leftmost-longest match starting at or after byte
// offset from in a single pass over the text.
//
// A new thread is seeded at every offset until a match is found. Threads are
// kept in ascending order of origin, so when two threads reach the same state
// the one that started first wins. Once a match is recorded, threads that
// started after it are dropped; the scan ends when none that started at or
// before it remain. Each rune is stepped once, so the cost is
// O(len(text) × NumStates).
func (sim *simulation) findFrom(text string, from int) (start, end int, ok bool) {
	accept := sim.nfa.accept
	start, end = -1, -1
	sim.cur.clear()

	for i := from; ; {
		if start < 0 {
			sim.addClosure(sim.cur, sim.nfa.start, i)
		}
		if sim.cur.contains(accept) {
			if o := sim.cur.origin[accept]; start < 0 || o <= start {
				start, end = o, i
			}
		}
		if i >= len(text) {
			break
		}

		r, size := utf8.DecodeRuneInString(text[i:])
		sim.next.clear()
		for _, s := range sim.cur.dense {
			o := sim.cur.origin[s]
			if start >= 0 && o > start {
				continue
			}
			for _, t := range sim.nfa.states[s].Out {
				if t.matches(r) {
					sim.addClosure(sim.next, t.To, o)
				}
			}
		}
		sim.cur, sim.next = sim.next, sim.cur
		i += size

		if start >= 0 && sim.cur.empty() {
			break
		}
	}
	return start, end, start >= 0
}

// Find returns the byte offsets of the leftmost match in text, choosing the
// longest match at that position.
func Find(n *NFA, text string) (start, end int, ok bool) {
	return newSimulation(n).findFrom(text, 0)
}

// FindAll returns successive non-overlapping leftmost-longest matches. An
// empty match directly after a previous match is skipped. A negative limit
// means no limit.
func FindAll(n *NFA, text string, limit int) [][2]int {
	sim := newSimulation(n)
	var matches [][2]int
	prevEnd := -1

	for pos := 0; pos <= len(text); {
		if limit >= 0 && len(matches) >= limit {
			break
		}
		start, end, ok := sim.findFrom(text, pos)
		if !ok {
			break
		}

		if end > start || start != prevEnd {
			matches = append(matches, [2]int{start, end})
			prevEnd = end
			if end > start {
				pos = end
				continue
			}
		}

		if end >= len(text) {
			break
		}
		_, size := utf8.DecodeRuneInString(text[end:])
		pos = end + size
	}
	return matches
}
