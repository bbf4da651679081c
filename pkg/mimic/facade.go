package mimic

import (
	"regexp"
	"sort"
	"strings"
)

// Options configures CreateTestDouble
type Options struct {
	// Kind selects stub or mock behavior. The zero value is KindStub.
	Kind Kind

	// Methods restricts which methods are doubled. Nil means the
	// generated default set; an empty non-nil slice means none.
	Methods []string

	// DoubleName selects a specific generated double by name instead of
	// looking one up by target
	DoubleName string

	// InvokeConstructor runs the target's real constructor with
	// ConstructorArgs and injects the result as the double's target
	InvokeConstructor bool

	// ConstructorArgs are the positional constructor arguments
	ConstructorArgs []any

	// GenerateReturns makes unconfigured calls yield zero values instead
	// of failing the test. Defaults to true; set DisableReturnGeneration
	// to turn it off.
	DisableReturnGeneration bool

	// Trace logs every dispatched call
	Trace bool
}

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// CreateTestDouble builds a configured instance of a generated double for
// the given target. The target is the qualified type name the double was
// generated for, e.g. "store.Repo".
func CreateTestDouble(t TestingT, target string, opts Options) (Configurable, error) {
	if err := checkMethodNames(target, opts.Methods); err != nil {
		return nil, err
	}

	factory, err := selectFactory(target, opts)
	if err != nil {
		return nil, err
	}
	if err := checkMethodsConfigurable(factory, opts.Methods); err != nil {
		return nil, err
	}

	options := []Option{WithKind(opts.Kind)}
	if opts.DisableReturnGeneration {
		options = append(options, WithReturnGeneration(false))
	}
	if opts.Trace {
		options = append(options, WithTrace())
	}

	double, err := instantiate(t, factory, opts.InvokeConstructor, opts.ConstructorArgs, options)
	if err != nil {
		return nil, err
	}
	return double, nil
}

// CreateTestDoubleForInterfaceIntersection builds a double registered for
// the combination of several interfaces. The targets are qualified
// interface names; order does not matter.
func CreateTestDoubleForInterfaceIntersection(t TestingT, targets []string, opts Options) (Configurable, error) {
	if len(targets) < 2 {
		return nil, NewDoubleError(ReasonBadIntersection, "",
			"an intersection needs at least 2 interfaces, got %d", len(targets))
	}

	pkg := ""
	sorted := make([]string, 0, len(targets))
	for _, target := range targets {
		dot := strings.LastIndex(target, ".")
		if dot < 1 || dot == len(target)-1 {
			return nil, NewDoubleError(ReasonBadIntersection, target,
				"interface name must be package-qualified")
		}
		if pkg == "" {
			pkg = target[:dot]
		} else if pkg != target[:dot] {
			return nil, NewDoubleError(ReasonBadIntersection, target,
				"all intersected interfaces must live in package %s", pkg)
		}
		sorted = append(sorted, target[dot+1:])
	}
	sort.Strings(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, NewDoubleError(ReasonBadIntersection, pkg+"."+sorted[i],
				"interface listed twice")
		}
	}

	opts.DoubleName = ""
	return CreateTestDouble(t, pkg+"."+strings.Join(sorted, "&"), opts)
}

func selectFactory(target string, opts Options) (DoubleFactory, error) {
	if opts.DoubleName != "" {
		factory, ok := DefaultDoubleRegistry.Get(opts.DoubleName)
		if !ok {
			return DoubleFactory{}, NewDoubleError(ReasonUnknownType, opts.DoubleName,
				"no generated double with this name")
		}
		return factory, nil
	}

	factory, ok := DefaultDoubleRegistry.Lookup(target, opts.Kind)
	if !ok {
		return DoubleFactory{}, NewDoubleError(ReasonUnknownType, target,
			"no %s double generated for this type", opts.Kind)
	}
	return factory, nil
}

// checkMethodsConfigurable verifies every requested method was generated
// as configurable on the selected double
func checkMethodsConfigurable(factory DoubleFactory, names []string) error {
	if len(names) == 0 {
		return nil
	}
	configurable := make(map[string]bool, len(factory.Methods))
	for _, desc := range factory.Methods {
		configurable[desc.Name] = true
	}
	for _, name := range names {
		if !configurable[name] {
			return NewDoubleError(ReasonUnknownType, factory.Target,
				"double %s has no configurable method %s", factory.Name, name)
		}
	}
	return nil
}

func checkMethodNames(target string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if !identifierPattern.MatchString(name) {
			return NewDoubleError(ReasonInvalidMethodName, target, "%q", name)
		}
		if name == "Mimic" {
			return NewDoubleError(ReasonReservedMethodName, target,
				"Mimic is the double's accessor and cannot be doubled")
		}
		if seen[name] {
			return NewDoubleError(ReasonDuplicateMethod, target, "%q", name)
		}
		seen[name] = true
	}
	return nil
}
