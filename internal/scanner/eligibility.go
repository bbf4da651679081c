package scanner

import (
	"go/ast"

	"github.com/mimicgo/mimic/internal/models"
)

// ReservedMethodName is the accessor through which every generated double
// exposes its control plane. A target method with this name cannot be
// doubled; the conflict is fatal.
const ReservedMethodName = "Mimic"

// reservedNames are identifiers that may never enter a generated method
// set. Construction and teardown are handled by the instantiation adapter
// and the registry, never by overriding.
var reservedNames = map[string]bool{
	ReservedMethodName: true,
	"init":             true,
	"main":             true,
}

// CanDouble decides whether a method may be overridden in a double.
// Unexported methods cannot be implemented from the generated package,
// final methods opted out via mimic::final, and reserved identifiers are
// all ineligible. Pure predicate; no side effects.
func CanDouble(desc models.MethodDescriptor) bool {
	if !ast.IsExported(desc.Name) {
		return false
	}
	if desc.Final {
		return false
	}
	if reservedNames[desc.Name] {
		return false
	}
	return true
}

// EligibleMethods filters a method set down to the doubleable subset,
// preserving order.
func EligibleMethods(set *models.MethodSet) []models.MethodDescriptor {
	var eligible []models.MethodDescriptor
	for _, desc := range set.Ordered() {
		if CanDouble(desc) {
			eligible = append(eligible, desc)
		}
	}
	return eligible
}
