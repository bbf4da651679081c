package directives

import (
	"github.com/mimicgo/mimic/internal/errors"
)

// DirectiveType identifies what a mimic:: comment asks for
type DirectiveType int

const (
	// DirectiveDouble requests a double for a single target type
	DirectiveDouble DirectiveType = iota
	// DirectiveIntersection requests a double satisfying several interfaces
	DirectiveIntersection
	// DirectiveFinal marks a method as non-overridable in doubles
	DirectiveFinal
)

// String returns the directive keyword
func (t DirectiveType) String() string {
	switch t {
	case DirectiveIntersection:
		return "intersection"
	case DirectiveFinal:
		return "final"
	default:
		return "double"
	}
}

// Directive is one parsed mimic:: comment
type Directive struct {
	Type     DirectiveType
	Target   string            // target type name, or comma-joined interfaces for intersections
	Params   map[string]string // named -Key=Value parameters
	Flags    map[string]bool   // bare -Flag parameters
	Location errors.SourceLocation
	Raw      string // original comment text
}

// Param returns a named parameter value, or def when absent
func (d *Directive) Param(key, def string) string {
	if v, ok := d.Params[key]; ok {
		return v
	}
	return def
}

// Flag reports whether a bare flag was present
func (d *Directive) Flag(name string) bool {
	return d.Flags[name]
}
