package scanner

import (
	"go/ast"

	"github.com/mimicgo/mimic/internal/errors"
	"github.com/mimicgo/mimic/internal/models"
)

// TargetKind classifies a doubleable type
type TargetKind int

const (
	// TargetInterface is a plain interface type
	TargetInterface TargetKind = iota
	// TargetStruct is a struct type doubled by embedding
	TargetStruct
	// TargetEnumeration is a const-backed defined type; cannot be doubled
	TargetEnumeration
	// TargetSealed cannot be implemented or embedded from a generated package
	TargetSealed
)

// String returns the string representation of the kind
func (k TargetKind) String() string {
	switch k {
	case TargetStruct:
		return "struct"
	case TargetEnumeration:
		return "enumeration"
	case TargetSealed:
		return "sealed"
	default:
		return "interface"
	}
}

// TargetInfo is the reflection snapshot of one candidate target type
type TargetInfo struct {
	Name    string     // short type name
	Package string     // declaring package name
	Kind    TargetKind // classification

	Methods *models.MethodSet // declared and inherited methods

	// Interface capabilities picked up from embedded interfaces
	EmbedsError           bool // embeds the error interface
	EmbedsTraversable     bool // embeds mimic.Traversable
	EmbedsIterator        bool // embeds mimic.Iterator
	EmbedsIteratorFactory bool // embeds mimic.IteratorFactory

	// Struct properties
	Opaque      bool   // all fields unexported; internal state cannot be copied
	HasClone    bool   // declares a Clone method
	CloneFinal  bool   // Clone carries a mimic::final directive
	Constructor string // matching New<Name> constructor func, if any

	SealedReason string // why the target is sealed, when Kind == TargetSealed

	Location errors.SourceLocation
}

// Qualified returns the package-qualified type name
func (t *TargetInfo) Qualified() string {
	if t.Package == "" {
		return t.Name
	}
	return t.Package + "." + t.Name
}

// IsExported reports whether the target's name is exported
func (t *TargetInfo) IsExported() bool {
	return ast.IsExported(t.Name)
}
