package mimic

// Traversable marks a type as traversal-capable without prescribing how
// the traversal works. It cannot be satisfied directly: embed
// TraversalCore, or use one of the refinements Iterator and
// IteratorFactory.
type Traversable interface {
	isTraversable()
}

// Iterator refines Traversable with explicit element-by-element
// traversal
type Iterator interface {
	Traversable
	Next() bool
	Value() any
}

// IteratorFactory refines Traversable by producing an Iterator on demand
type IteratorFactory interface {
	Traversable
	Iterate() Iterator
}

// TraversalCore satisfies the Traversable marker. Generated doubles of
// traversable targets embed it; the traversal methods themselves are
// dispatched through the control plane.
type TraversalCore struct{}

func (TraversalCore) isTraversable() {}

// ErrorCore gives a generated double of an error-embedding target a real
// error identity. The double owns Error and Unwrap; they are never
// dispatched through the control plane.
type ErrorCore struct {
	msg string
}

// NewErrorCore builds the error identity of one double instance
func NewErrorCore(doubleName string) ErrorCore {
	return ErrorCore{msg: doubleName}
}

// Error returns the double's name as its message
func (e ErrorCore) Error() string { return e.msg }

// Unwrap reports no underlying cause
func (e ErrorCore) Unwrap() error { return nil }
