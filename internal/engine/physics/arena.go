package physics

import "fmt"

// Handle refers to an object owned by a Backend. A handle stays comparable
// after the object is destroyed but no longer resolves: the slot's generation
// moves on, so a reused slot never answers to an old handle.
type Handle struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h was never issued.
func (h Handle) IsZero() bool {
	return h.generation == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%d#%d", h.index, h.generation)
}

type slot[T any] struct {
	generation uint32
	alive      bool
	value      T
}

// arena stores values by handle and recycles freed slots.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

func (a *arena[T]) insert(v T) Handle {
	var i uint32
	if n := len(a.free); n > 0 {
		i = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot[T]{})
		i = uint32(len(a.slots) - 1)
	}
	s := &a.slots[i]
	s.generation++
	s.alive = true
	s.value = v
	a.live++
	return Handle{index: i, generation: s.generation}
}

// get returns the value for h, or nil if h does not resolve.
func (a *arena[T]) get(h Handle) *T {
	if int(h.index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[h.index]
	if !s.alive || s.generation != h.generation {
		return nil
	}
	return &s.value
}

func (a *arena[T]) remove(h Handle) bool {
	if a.get(h) == nil {
		return false
	}
	s := &a.slots[h.index]
	var zero T
	s.value = zero
	s.alive = false
	a.free = append(a.free, h.index)
	a.live--
	return true
}

// each calls fn for every live value in slot order.
func (a *arena[T]) each(fn func(Handle, *T)) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.alive {
			fn(Handle{index: uint32(i), generation: s.generation}, &s.value)
		}
	}
}

func (a *arena[T]) count() int {
	return a.live
}
