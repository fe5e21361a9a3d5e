package ui

import (
	"sort"
	"sync"
)

// Op identifies an in-flight action on one entity, e.g. {"status", ticketID}.
type Op struct {
	Action string
	ID     string
}

// InFlight tracks pending requests per entity so that a slow request on one
// row never blocks another. It does not reject or coalesce repeated
// submissions; each Begin is counted until its end function runs.
type InFlight struct {
	mu     sync.Mutex
	counts map[Op]int
}

// NewInFlight creates an empty tracker.
func NewInFlight() *InFlight {
	return &InFlight{counts: make(map[Op]int)}
}

// Begin marks op as pending and returns the function that ends it.
// Calling the end function more than once has no further effect.
func (f *InFlight) Begin(action, id string) (end func()) {
	op := Op{Action: action, ID: id}
	f.mu.Lock()
	f.counts[op]++
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.counts[op] <= 1 {
				delete(f.counts, op)
				return
			}
			f.counts[op]--
		})
	}
}

// Active reports whether action is pending for id.
func (f *InFlight) Active(action, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[Op{Action: action, ID: id}] > 0
}

// Busy reports whether any action is pending for id.
func (f *InFlight) Busy(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for op := range f.counts {
		if op.ID == id {
			return true
		}
	}
	return false
}

// Retain drops the flags of every entity not in ids. Views call it when
// their entity set is replaced.
func (f *InFlight) Retain(ids map[string]bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for op := range f.counts {
		if !ids[op.ID] {
			delete(f.counts, op)
		}
	}
}

// Pending lists the pending operations, sorted for stable output.
func (f *InFlight) Pending() []Op {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Op, 0, len(f.counts))
	for op := range f.counts {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Action < out[j].Action
	})
	return out
}
