package models

// MethodSet is a collection of MethodDescriptors keyed by name. Insertion
// order is preserved so generated source stays stable between runs. A name
// is absorbed only once: adding a duplicate is a silent no-op.
type MethodSet struct {
	order  []string
	byName map[string]MethodDescriptor
}

// NewMethodSet creates an empty MethodSet.
func NewMethodSet() *MethodSet {
	return &MethodSet{
		byName: make(map[string]MethodDescriptor),
	}
}

// Add inserts descriptors into the set, deduplicating by name. The first
// descriptor registered for a name wins.
func (s *MethodSet) Add(descriptors ...MethodDescriptor) {
	for _, desc := range descriptors {
		if _, exists := s.byName[desc.Name]; exists {
			continue
		}
		s.byName[desc.Name] = desc
		s.order = append(s.order, desc.Name)
	}
}

// Contains reports whether a descriptor with the given name is present.
func (s *MethodSet) Contains(name string) bool {
	_, exists := s.byName[name]
	return exists
}

// Get returns the descriptor for name, if present.
func (s *MethodSet) Get(name string) (MethodDescriptor, bool) {
	desc, exists := s.byName[name]
	return desc, exists
}

// Ordered returns the descriptors in insertion order.
func (s *MethodSet) Ordered() []MethodDescriptor {
	result := make([]MethodDescriptor, 0, len(s.order))
	for _, name := range s.order {
		result = append(result, s.byName[name])
	}
	return result
}

// Names returns the method names in insertion order.
func (s *MethodSet) Names() []string {
	result := make([]string, len(s.order))
	copy(result, s.order)
	return result
}

// Len returns the number of descriptors in the set.
func (s *MethodSet) Len() int {
	return len(s.order)
}

// Merge absorbs every descriptor from other, preserving the receiver's
// existing entries on name collisions.
func (s *MethodSet) Merge(other *MethodSet) {
	if other == nil {
		return
	}
	s.Add(other.Ordered()...)
}
