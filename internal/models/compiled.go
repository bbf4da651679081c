package models

// DoubleKind distinguishes stubs (canned responses only) from mocks
// (additionally verify expected interactions).
type DoubleKind int

const (
	KindStub DoubleKind = iota
	KindMock
)

// String returns the string representation of the kind
func (k DoubleKind) String() string {
	switch k {
	case KindMock:
		return "mock"
	default:
		return "stub"
	}
}

// ClonePolicy selects how the generated Clone method behaves.
type ClonePolicy int

const (
	// CloneDoubled makes Clone itself an interceptable, configurable method.
	CloneDoubled ClonePolicy = iota
	// CloneProxied makes the generated Clone invoke the target's real Clone.
	CloneProxied
	// CloneForbidden makes Clone fail loudly. Selected for opaque targets
	// whose internal state cannot be copied safely.
	CloneForbidden
)

// String returns the string representation of the policy
func (p ClonePolicy) String() string {
	switch p {
	case CloneProxied:
		return "proxy"
	case CloneForbidden:
		return "forbid"
	default:
		return "double"
	}
}

// ConfigurableMethod describes one generated method to the runtime
// configuration facility: enough to validate calls and to produce
// default return values.
type ConfigurableMethod struct {
	Name       string   // method name
	ParamCount int      // number of declared parameters
	Variadic   bool     // whether the last parameter is variadic
	ParamTypes []string // source text of each parameter type
	Returns    []string // source text of each result type
}

// CompiledDouble is the product of one synthesis pass: the rendered
// source for the double plus the metadata handed to the runtime
// configuration subsystem. Immutable; cached per fingerprint for the
// process lifetime.
type CompiledDouble struct {
	Source      string               // generated Go source for the double
	Name        DoubleNameInfo       // resolved naming
	Kind        DoubleKind           // stub or mock
	Clone       ClonePolicy          // selected clone strategy
	Methods     []ConfigurableMethod // one entry per generated method
	Placeholder bool                 // target was fabricated for an ad hoc type name
	Fingerprint string               // cache key; empty when an explicit name forced fresh synthesis
}
