package namer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mimicgo/mimic/internal/errors"
	"github.com/mimicgo/mimic/internal/models"
)

// DefaultPrefix is prepended to generated double names when the caller
// supplies none.
const DefaultPrefix = "Mimic"

// Prober answers whether a candidate name is already taken in the scope
// the double will be generated into.
type Prober interface {
	NameExists(name string) bool
}

// ProberFunc adapts a plain function to the Prober interface
type ProberFunc func(name string) bool

// NameExists implements Prober
func (f ProberFunc) NameExists(name string) bool { return f(name) }

// Resolver derives collision-free names for generated doubles
type Resolver struct {
	prober Prober
}

// NewResolver creates a resolver probing against the given scope
func NewResolver(prober Prober) *Resolver {
	return &Resolver{prober: prober}
}

// Resolve derives the naming for one double. A non-empty requestedName is
// used verbatim; its availability must have been verified by the caller.
// Otherwise the name is prefix + shortName + "_" + an eight-hex-digit
// random suffix, re-rolled until unused. Collisions are vanishingly
// unlikely, so the loop carries no retry cap.
func (r *Resolver) Resolve(shortName, qualified, pkg, requestedName, prefix string) models.DoubleNameInfo {
	info := models.DoubleNameInfo{
		ShortName: shortName,
		Qualified: qualified,
		Package:   pkg,
	}

	if requestedName != "" {
		info.DoubleName = requestedName
		return info
	}

	if prefix == "" {
		prefix = DefaultPrefix
	}
	for {
		candidate := fmt.Sprintf("%s%s_%s", prefix, shortName, randomSuffix())
		if r.prober == nil || !r.prober.NameExists(candidate) {
			info.DoubleName = candidate
			return info
		}
	}
}

// CheckAvailable verifies that a caller-supplied name is not yet declared
// in the target scope. Fails with NameInUse before any synthesis happens.
func (r *Resolver) CheckAvailable(name string) error {
	if r.prober != nil && r.prober.NameExists(name) {
		return errors.Newf(errors.NameInUseCode,
			"a type or value named %s already exists", name)
	}
	return nil
}

// randomSuffix returns eight hex digits of fresh randomness
func randomSuffix() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:4])
}
