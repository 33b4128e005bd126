package types

import "sync/atomic"

// System is the single shared mutable object a compilation owns for its
// duration: it issues fresh type-variable ordinals and memoizes
// datatype definitions by name. One compilation owns one System
// exclusively; nothing here is safe for concurrent compilations to share.
type System struct {
	nextVar  int64
	datatypes map[string]*TData
}

// NewSystem creates an empty type system.
func NewSystem() *System {
	return &System{datatypes: make(map[string]*TData)}
}

// FreshVar allocates a new type variable with a fresh ordinal.
func (s *System) FreshVar() *TVar {
	return &TVar{Id: int(atomic.AddInt64(&s.nextVar, 1) - 1)}
}

// FreshVarId allocates and returns just the ordinal, for callers (such as
// Instantiate) that want a bare `func() int` allocator.
func (s *System) FreshVarId() int {
	return int(atomic.AddInt64(&s.nextVar, 1) - 1)
}

// DefineDatatype memoizes a datatype definition by name. Redefining the
// same name is an error — datatype declarations are processed once, in
// the order they appear.
func (s *System) DefineDatatype(d *TData) error {
	if _, exists := s.datatypes[d.Name]; exists {
		return &DuplicateDatatypeError{Name: d.Name}
	}
	s.datatypes[d.Name] = d
	return nil
}

// LookupDatatype returns the memoized definition for name, if any.
func (s *System) LookupDatatype(name string) (*TData, bool) {
	d, ok := s.datatypes[name]
	return d, ok
}

// DuplicateDatatypeError reports a second declaration of the same
// datatype name.
type DuplicateDatatypeError struct{ Name string }

func (e *DuplicateDatatypeError) Error() string {
	return "duplicate datatype declaration: " + e.Name
}
