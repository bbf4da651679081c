package mimic

import (
	"fmt"
	"sync"
)

// TestingT is the subset of testing.T the runtime needs
type TestingT interface {
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
	Helper()
}

// Kind distinguishes stubs from mocks at runtime
type Kind int

const (
	// KindStub returns canned responses and verifies nothing
	KindStub Kind = iota
	// KindMock additionally verifies expected interactions
	KindMock
)

// String returns the string representation of the kind
func (k Kind) String() string {
	if k == KindMock {
		return "mock"
	}
	return "stub"
}

// ConfigurableMethod describes one doubled method to the control plane.
// Generated code produces one entry per method.
type ConfigurableMethod struct {
	Name       string   // method name
	ParamCount int      // number of declared parameters
	Variadic   bool     // whether the last parameter is variadic
	ParamTypes []string // source text of each parameter type
	Returns    []string // source text of each result type
}

// Configurable is implemented by every generated double: the Mimic
// accessor exposes the control plane. The accessor name is reserved; a
// target method named Mimic cannot be doubled.
type Configurable interface {
	Mimic() *Double
}

// Double is the per-instance control plane of one generated test double.
// It records configured behaviors during setup and dispatches method
// invocations to them during exercise.
type Double struct {
	t               TestingT
	name            string
	kind            Kind
	target          any
	generateReturns bool
	trace           bool

	mutex   sync.Mutex
	order   []string
	methods map[string]*method
}

// Option configures a Double at construction
type Option func(*Double)

// WithKind selects stub or mock behavior for unmatched calls
func WithKind(kind Kind) Option {
	return func(d *Double) { d.kind = kind }
}

// WithTarget injects the real target instance a struct double embeds
func WithTarget(target any) Option {
	return func(d *Double) { d.target = target }
}

// WithReturnGeneration controls whether unconfigured calls yield zero
// values instead of failing the test
func WithReturnGeneration(enabled bool) Option {
	return func(d *Double) { d.generateReturns = enabled }
}

// WithTrace logs every dispatched call via t.Logf
func WithTrace() Option {
	return func(d *Double) { d.trace = true }
}

// NewDouble constructs the control plane for one double instance.
// Generated constructors call this; the state is owned by the double from
// construction on.
func NewDouble(t TestingT, name string, methods []ConfigurableMethod, opts ...Option) *Double {
	d := &Double{
		t:               t,
		name:            name,
		kind:            KindMock,
		generateReturns: true,
		methods:         make(map[string]*method, len(methods)),
	}
	for _, desc := range methods {
		d.methods[desc.Name] = &method{desc: desc}
		d.order = append(d.order, desc.Name)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the generated double's type name
func (d *Double) Name() string { return d.name }

// Kind returns the double's runtime kind
func (d *Double) Kind() Kind { return d.kind }

// Target returns the injected real target instance, if any
func (d *Double) Target() any { return d.target }

// Methods returns the configurable method descriptors in generated order
func (d *Double) Methods() []ConfigurableMethod {
	result := make([]ConfigurableMethod, 0, len(d.order))
	for _, name := range d.order {
		result = append(result, d.methods[name].desc)
	}
	return result
}

func (d *Double) String() string {
	return fmt.Sprintf("%s(%s)", d.kind, d.name)
}

// Stub registers and returns a stubbed call configuration for methodName.
// The first stub whose matcher accepts the invocation arguments provides
// the return values.
func (d *Double) Stub(methodName string) *StubCall {
	d.t.Helper()
	m := d.method(methodName)
	stub := &StubCall{double: d, method: m}
	m.addCall(stub)
	return stub
}

// Mock registers and returns a mocked call configuration for methodName.
// By default it expects exactly one matching invocation; Verify enforces
// the expectation.
func (d *Double) Mock(methodName string) *MockCall {
	d.t.Helper()
	m := d.method(methodName)
	mock := &MockCall{double: d, method: m, expected: 1}
	m.addCall(mock)
	return mock
}

// Invoke dispatches one method invocation to the first matching
// configured call. Generated method bodies call this; it always returns
// exactly one value per declared result.
func (d *Double) Invoke(methodName string, args ...any) []any {
	d.t.Helper()

	m := d.method(methodName)
	returns := m.invoke(d, args)

	if d.trace {
		d.t.Logf("%v: called %s(%v) => %v", d, methodName, args, returns)
	}
	return returns
}

// CallsTo returns the recorded argument lists of every invocation of
// methodName, in call order.
func (d *Double) CallsTo(methodName string) [][]any {
	m := d.method(methodName)
	m.mutex.Lock()
	defer m.mutex.Unlock()

	recorded := make([][]any, len(m.recorded))
	copy(recorded, m.recorded)
	return recorded
}

// Verify asserts that every mocked expectation on this double has been
// met. Typically deferred right after the double is created.
func (d *Double) Verify() {
	d.t.Helper()
	d.mutex.Lock()
	defer d.mutex.Unlock()

	for _, name := range d.order {
		m := d.methods[name]
		for _, call := range m.calls {
			call.verify(d.t, d.name, name)
		}
	}
}

// Forbidden fails the test; generated bodies of methods that must never
// run (such as Clone on an opaque double) call it.
func (d *Double) Forbidden(methodName string) {
	d.t.Helper()
	d.t.Fatalf("%v: %s is not supported on this double", d, methodName)
}

// MissingTarget fails the test; generated proxy bodies call it when the
// double was built without a real target to forward to.
func (d *Double) MissingTarget(methodName string) {
	d.t.Helper()
	d.t.Fatalf("%v: %s proxies the real implementation, but the double was built without a target", d, methodName)
}

func (d *Double) method(name string) *method {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	m, ok := d.methods[name]
	if !ok {
		d.t.Fatalf("%v has no doubled method %s", d, name)
		// Unreachable with a conforming TestingT; keeps non-fatal fakes alive.
		m = &method{desc: ConfigurableMethod{Name: name}}
		d.methods[name] = m
		d.order = append(d.order, name)
	}
	return m
}

// Verifiable is anything with mock expectations to check
type Verifiable interface {
	Verify()
}

// Verify is shorthand to verify a set of doubles
func Verify(doubles ...Verifiable) {
	for _, d := range doubles {
		d.Verify()
	}
}
