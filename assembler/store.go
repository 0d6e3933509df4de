package assembler

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/sets/linkedhashset"
)

// subjectStore maps subject indices to their accumulators in the order the
// subjects were opened.
type subjectStore struct {
	m *linkedhashmap.Map
}

func newSubjectStore() *subjectStore {
	return &subjectStore{m: linkedhashmap.New()}
}

func (s *subjectStore) get(subject int) (Entries, bool) {
	v, ok := s.m.Get(subject)
	if !ok {
		return nil, false
	}
	return v.(Entries), true
}

func (s *subjectStore) put(subject int, e Entries) {
	s.m.Put(subject, e)
}

func (s *subjectStore) remove(subject int) {
	s.m.Remove(subject)
}

func (s *subjectStore) len() int {
	return s.m.Size()
}

func (s *subjectStore) subjects() []int {
	return toInts(s.m.Keys())
}

// readySet is an insertion-ordered set of subject indices.
type readySet struct {
	s *linkedhashset.Set
}

func newReadySet() *readySet {
	return &readySet{s: linkedhashset.New()}
}

func (r *readySet) add(subjects ...int) {
	for _, subject := range subjects {
		r.s.Add(subject)
	}
}

func (r *readySet) remove(subject int) bool {
	if !r.s.Contains(subject) {
		return false
	}
	r.s.Remove(subject)
	return true
}

func (r *readySet) contains(subject int) bool {
	return r.s.Contains(subject)
}

func (r *readySet) values() []int {
	return toInts(r.s.Values())
}

// intersect keeps the subjects of r that are also ready in every other set,
// preserving r's order.
func (r *readySet) intersect(others ...*readySet) *readySet {
	out := newReadySet()
	for _, subject := range r.values() {
		keep := true
		for _, o := range others {
			if !o.contains(subject) {
				keep = false
				break
			}
		}
		if keep {
			out.add(subject)
		}
	}
	return out
}

func toInts(vs []interface{}) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = v.(int)
	}
	return out
}
