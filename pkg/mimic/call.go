package mimic

import (
	"reflect"
	"sync"
)

// ArgsMatcher decides whether a configured call applies to a set of
// invocation arguments
type ArgsMatcher func(args []any) bool

func equalArgs(want []any) ArgsMatcher {
	return func(got []any) bool {
		return reflect.DeepEqual(want, got)
	}
}

// call is the abstract interface of the configured call types
type call interface {
	matches(args []any) bool
	available() bool
	consume(d *Double, m *method, args []any) []any
	verify(t TestingT, doubleName, methodName string)
}

// method holds the configured calls and the recorded invocations of one
// doubled method
type method struct {
	desc     ConfigurableMethod
	mutex    sync.Mutex
	calls    []call
	recorded [][]any
}

func (m *method) addCall(c call) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls = append(m.calls, c)
}

// invoke finds the first matching, still-available configured call and
// lets it produce the return values. Unmatched invocations fall back to
// generated zero returns, or fail the test for strict mocks.
func (m *method) invoke(d *Double, args []any) []any {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.recorded = append(m.recorded, args)

	for _, c := range m.calls {
		if c.available() && c.matches(args) {
			return c.consume(d, m, args)
		}
	}

	if d.kind == KindMock && !d.generateReturns {
		d.t.Fatalf("%v: unexpected call to %s(%v)", d, m.desc.Name, args)
	}
	return m.zeroReturns()
}

// zeroReturns produces one nil slot per declared result. Generated
// forwarding bodies convert each slot with a comma-ok assertion, so a nil
// becomes the result type's zero value.
func (m *method) zeroReturns() []any {
	return make([]any, len(m.desc.Returns))
}

// checkReturns validates a Returning configuration against the method
// signature before it is stored
func (m *method) checkReturns(t TestingT, values []any) {
	t.Helper()
	if len(values) != len(m.desc.Returns) {
		t.Fatalf("method %s returns %d values, Returning got %d",
			m.desc.Name, len(m.desc.Returns), len(values))
	}
}

// StubCall is a configured call that matches arguments and returns canned
// values. Nothing to verify.
type StubCall struct {
	double  *Double
	method  *method
	matcher ArgsMatcher
	returns []any
}

// Matching restricts this stub to invocations accepted by the matcher
func (c *StubCall) Matching(matcher ArgsMatcher) *StubCall {
	c.matcher = matcher
	return c
}

// MatchingArgs restricts this stub to invocations whose arguments are
// deeply equal to the given ones
func (c *StubCall) MatchingArgs(args ...any) *StubCall {
	return c.Matching(equalArgs(args))
}

// Returning configures the values every matching invocation yields
func (c *StubCall) Returning(values ...any) *StubCall {
	c.method.checkReturns(c.double.t, values)
	c.returns = values
	return c
}

func (c *StubCall) matches(args []any) bool {
	return c.matcher == nil || c.matcher(args)
}

func (c *StubCall) available() bool { return true }

func (c *StubCall) consume(d *Double, m *method, _ []any) []any {
	if c.returns == nil {
		return m.zeroReturns()
	}
	return c.returns
}

func (c *StubCall) verify(TestingT, string, string) {
	// Nothing to verify
}

// MockCall is a stub with an expectation about the number of matching
// invocations, checked during Verify.
type MockCall struct {
	double   *Double
	method   *method
	matcher  ArgsMatcher
	returns  []any
	expected int
	anyTimes bool
	count    int
}

// Matching restricts this mock to invocations accepted by the matcher
func (c *MockCall) Matching(matcher ArgsMatcher) *MockCall {
	c.matcher = matcher
	return c
}

// MatchingArgs restricts this mock to invocations whose arguments are
// deeply equal to the given ones
func (c *MockCall) MatchingArgs(args ...any) *MockCall {
	return c.Matching(equalArgs(args))
}

// Returning configures the values every matching invocation yields
func (c *MockCall) Returning(values ...any) *MockCall {
	c.method.checkReturns(c.double.t, values)
	c.returns = values
	return c
}

// Times sets the exact number of expected invocations
func (c *MockCall) Times(n int) *MockCall {
	c.expected = n
	return c
}

// AnyTimes drops the invocation-count expectation
func (c *MockCall) AnyTimes() *MockCall {
	c.anyTimes = true
	return c
}

func (c *MockCall) matches(args []any) bool {
	return c.matcher == nil || c.matcher(args)
}

func (c *MockCall) available() bool {
	return c.anyTimes || c.count < c.expected
}

func (c *MockCall) consume(d *Double, m *method, _ []any) []any {
	c.count++
	if c.returns == nil {
		return m.zeroReturns()
	}
	return c.returns
}

func (c *MockCall) verify(t TestingT, doubleName, methodName string) {
	if c.anyTimes {
		return
	}
	if c.count != c.expected {
		t.Errorf("%s.%s: expected %d matching calls, got %d",
			doubleName, methodName, c.expected, c.count)
	}
}
