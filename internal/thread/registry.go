package thread

import "sort"

// Registry is an ordered mapping from thread id to State. Threads are
// inserted on first open (primary) or on an observed CreateThread
// returning a non-zero child id, and remain in the registry (marked
// Finished) after their stream is exhausted so Summary can report on
// them.
//
// Ordering is ascending thread id. The replay engine's round-robin
// cursor is kept as a thread id (a stable key), never a slice index or
// iterator, so insertions and removals mid-scan never invalidate it.
// See Registry.Next.
type Registry struct {
	states map[uint32]*State
	order  []uint32 // ascending thread ids, kept sorted
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{states: make(map[uint32]*State)}
}

// Insert adds a new thread state, keeping Registry.order sorted. It is a
// no-op (the caller should treat this as a duplicate-id warning) if the
// id is already present.
func (r *Registry) Insert(s *State) bool {
	if _, exists := r.states[s.ID]; exists {
		return false
	}
	r.states[s.ID] = s
	i := sort.Search(len(r.order), func(i int) bool { return r.order[i] >= s.ID })
	r.order = append(r.order, 0)
	copy(r.order[i+1:], r.order[i:])
	r.order[i] = s.ID
	return true
}

// Get returns the state for id, if present.
func (r *Registry) Get(id uint32) (*State, bool) {
	s, ok := r.states[id]
	return s, ok
}

// Len returns the number of threads known to the registry (finished or
// not).
func (r *Registry) Len() int {
	return len(r.order)
}

// IDs returns the ascending-thread-id order used for round-robin
// scheduling. The returned slice is owned by the caller.
func (r *Registry) IDs() []uint32 {
	out := make([]uint32, len(r.order))
	copy(out, r.order)
	return out
}

// Next returns the smallest registered thread id strictly greater than
// after, wrapping around to the smallest id overall. It returns false if
// the registry is empty. This is how the engine re-seats a round-robin
// cursor that is a stable key rather than a container iterator: erasing
// or inserting threads mid-scan cannot invalidate a thread id the way it
// would a C++ map iterator.
func (r *Registry) Next(after uint32) (uint32, bool) {
	if len(r.order) == 0 {
		return 0, false
	}
	i := sort.Search(len(r.order), func(i int) bool { return r.order[i] > after })
	if i == len(r.order) {
		i = 0
	}
	return r.order[i], true
}

// Remove deletes a thread from the registry entirely. Finalized threads
// are normally kept (Finished=true) for Summary reporting rather than
// removed. The replay engine does not call Remove: a CreateThread child
// is only inserted after its sibling log has opened.
func (r *Registry) Remove(id uint32) {
	if _, ok := r.states[id]; !ok {
		return
	}
	delete(r.states, id)
	i := sort.Search(len(r.order), func(i int) bool { return r.order[i] >= id })
	if i < len(r.order) && r.order[i] == id {
		r.order = append(r.order[:i], r.order[i+1:]...)
	}
}

// Each calls fn once per registered thread in ascending id order.
func (r *Registry) Each(fn func(*State)) {
	for _, id := range r.order {
		fn(r.states[id])
	}
}
