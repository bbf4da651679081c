package mimic

import (
	"sort"
	"sync"
)

// DoubleFactory describes one generated double type and how to build
// instances of it. Generated code registers a factory per double in an
// init function.
type DoubleFactory struct {
	// Name is the generated double's type name
	Name string

	// Target is the qualified name of the doubled type (e.g. "store.Repo")
	Target string

	// Kind is the double kind the type was generated for
	Kind Kind

	// Methods lists the configurable method descriptors in generated order
	Methods []ConfigurableMethod

	// New builds a fresh instance with its own control plane
	New func(t TestingT, opts ...Option) Configurable

	// Construct invokes the target's constructor with positional
	// arguments. Nil when the target has no recognized constructor.
	Construct func(args []any) (any, error)
}

// DoubleRegistry provides access to all registered double factories
type DoubleRegistry interface {
	// Register adds a factory to the registry (used by generated code)
	Register(factory DoubleFactory)

	// Get retrieves a factory by generated double name
	Get(name string) (DoubleFactory, bool)

	// Lookup retrieves the factory generated for a target and kind
	Lookup(target string, kind Kind) (DoubleFactory, bool)

	// All returns every registered factory sorted by double name
	All() []DoubleFactory

	// NameExists reports whether a double name is already taken
	NameExists(name string) bool
}

// inMemoryDoubleRegistry implements DoubleRegistry
type inMemoryDoubleRegistry struct {
	mutex     sync.RWMutex
	factories map[string]DoubleFactory
}

// NewInMemoryDoubleRegistry creates a new in-memory double registry
func NewInMemoryDoubleRegistry() DoubleRegistry {
	return &inMemoryDoubleRegistry{
		factories: make(map[string]DoubleFactory),
	}
}

func (r *inMemoryDoubleRegistry) Register(factory DoubleFactory) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.factories[factory.Name] = factory
}

func (r *inMemoryDoubleRegistry) Get(name string) (DoubleFactory, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	factory, exists := r.factories[name]
	return factory, exists
}

func (r *inMemoryDoubleRegistry) Lookup(target string, kind Kind) (DoubleFactory, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	// Deterministic pick when several doubles exist for one target
	var names []string
	for name, factory := range r.factories {
		if factory.Target == target && factory.Kind == kind {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return DoubleFactory{}, false
	}
	sort.Strings(names)
	return r.factories[names[0]], true
}

func (r *inMemoryDoubleRegistry) All() []DoubleFactory {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]DoubleFactory, 0, len(names))
	for _, name := range names {
		result = append(result, r.factories[name])
	}
	return result
}

func (r *inMemoryDoubleRegistry) NameExists(name string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, exists := r.factories[name]
	return exists
}

// DefaultDoubleRegistry is the global double registry generated code
// registers into
var DefaultDoubleRegistry DoubleRegistry = NewInMemoryDoubleRegistry()
