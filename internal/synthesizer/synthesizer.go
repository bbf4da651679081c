package synthesizer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mimicgo/mimic/internal/errors"
	"github.com/mimicgo/mimic/internal/models"
	"github.com/mimicgo/mimic/internal/namer"
	"github.com/mimicgo/mimic/internal/scanner"
	"github.com/mimicgo/mimic/internal/utils"
)

// methodNamePattern validates explicitly requested method names
var methodNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Request describes one double to synthesize
type Request struct {
	TypeName      string            // short name of the target type
	Kind          models.DoubleKind // stub or mock
	Methods       []string          // explicit method list; nil doubles every eligible method
	RequestedName string            // caller-supplied double name; empty generates one
	Prefix        string            // name prefix when generating
	Constructor   string            // overrides the detected New<Type> constructor func
	InvokeClone   bool              // proxy the target's real Clone instead of doubling it
	NoReturns     bool              // unconfigured calls fail instead of yielding zero values
}

// Synthesizer renders double source and configuration metadata for scanned
// targets. Synthesis results are memoized per fingerprint for the process
// lifetime; a caller-supplied name always forces fresh synthesis.
type Synthesizer struct {
	templates *TemplateRegistry
	cache     *utils.Cache[string, *models.CompiledDouble]
}

// NewSynthesizer creates a new synthesizer with an empty cache
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{
		templates: NewTemplateRegistry(),
		cache:     utils.NewCache[string, *models.CompiledDouble](),
	}
}

// Synthesize produces the compiled double for one request against a
// scanned package.
func (s *Synthesizer) Synthesize(pkg *scanner.PackageInfo, req Request) (*models.CompiledDouble, error) {
	if err := validateMethodList(req.Methods); err != nil {
		return nil, err
	}

	if req.RequestedName != "" {
		// Explicit names bypass the cache: identical fingerprints with
		// different names must not collide on one entry.
		if pkg.NameExists(req.RequestedName) {
			return nil, errors.Newf(errors.NameInUseCode,
				"a declaration named %s already exists in package %s", req.RequestedName, pkg.PackageName)
		}
		return s.synthesize(pkg, req, "")
	}

	fingerprint := Fingerprint(req.TypeName, req.Kind, req.Methods, req.Constructor, req.InvokeClone, req.NoReturns)
	return s.cache.GetOrCompute(fingerprint, func() (*models.CompiledDouble, error) {
		return s.synthesize(pkg, req, fingerprint)
	})
}

func (s *Synthesizer) synthesize(pkg *scanner.PackageInfo, req Request, fingerprint string) (*models.CompiledDouble, error) {
	target, known := pkg.Target(req.TypeName)

	placeholder := false
	if !known {
		// An ad hoc type name is tolerated only as forward-declared
		// scaffolding: the caller must spell out the methods it wants.
		if len(req.Methods) == 0 {
			return nil, errors.Newf(errors.UnknownTypeCode,
				"unknown type %s in package %s", req.TypeName, pkg.PackageName)
		}
		placeholder = true
		target = &scanner.TargetInfo{
			Name:    req.TypeName,
			Package: pkg.PackageName,
			Kind:    scanner.TargetInterface,
			Methods: models.NewMethodSet(),
		}
	}

	switch target.Kind {
	case scanner.TargetEnumeration:
		return nil, errors.Newf(errors.TypeIsEnumerationCode,
			"type %s is an enumeration and cannot be doubled", target.Qualified())
	case scanner.TargetSealed:
		return nil, errors.Newf(errors.TypeIsSealedCode,
			"type %s cannot be doubled: %s", target.Qualified(), target.SealedReason)
	}

	if req.Constructor != "" {
		if target.Kind != scanner.TargetStruct {
			return nil, errors.Newf(errors.GenerationErrorCode,
				"-Constructor only applies to struct targets, %s is a %s", target.Qualified(), target.Kind)
		}
		if !pkg.NameExists(req.Constructor) {
			return nil, errors.Newf(errors.GenerationErrorCode,
				"constructor %s not found in package %s", req.Constructor, pkg.PackageName)
		}
		// Override on a copy; the scanned snapshot is shared across requests
		overridden := *target
		overridden.Constructor = req.Constructor
		target = &overridden
	}

	resolver := namer.NewResolver(pkg)
	name := resolver.Resolve(target.Name, target.Qualified(), pkg.PackageName, req.RequestedName, req.Prefix)

	clonePolicy := resolveClonePolicy(target, req.InvokeClone)

	methods, err := populateMethods(target, req.Methods)
	if err != nil {
		return nil, err
	}

	// An interface that embeds mimic.Traversable without committing to a
	// refinement would yield an unusable traversable; complete it with the
	// pull-iterator surface.
	if target.EmbedsTraversable && !target.EmbedsIterator && !target.EmbedsIteratorFactory {
		methods.Add(
			models.MethodDescriptor{Name: "Next", Returns: []string{"bool"}},
			models.MethodDescriptor{Name: "Value", Returns: []string{"any"}},
		)
	}

	// When the target embeds error, the embedded ErrorCore owns the error
	// surface; colliding declarations drop out of the doubled set.
	if target.EmbedsError {
		filtered := models.NewMethodSet()
		for _, desc := range methods.Ordered() {
			if desc.Name == "Error" || desc.Name == "Unwrap" {
				continue
			}
			filtered.Add(desc)
		}
		methods = filtered
	}

	// The control-plane accessor name is reserved unconditionally.
	if methods.Contains(scanner.ReservedMethodName) {
		return nil, errors.Newf(errors.ReservedMethodNameCode,
			"doubling %s would collide with the reserved %s accessor",
			target.Qualified(), scanner.ReservedMethodName)
	}

	return s.render(target, name, req.Kind, clonePolicy, methods, placeholder, req.NoReturns, fingerprint, "")
}

// render composes the full double source from its template pieces
func (s *Synthesizer) render(target *scanner.TargetInfo, name models.DoubleNameInfo, kind models.DoubleKind, clonePolicy models.ClonePolicy, methods *models.MethodSet, placeholder, noReturns bool, fingerprint, prologue string) (*models.CompiledDouble, error) {
	metadataVar := metadataVarName(name.DoubleName)
	isStruct := target.Kind == scanner.TargetStruct

	data := doubleData{
		DoubleName:         name.DoubleName,
		TargetName:         target.Name,
		Qualified:          name.Qualified,
		KindConst:          kindConst(kind),
		MetadataVar:        metadataVar,
		IsStructTarget:     isStruct,
		Constructor:        target.Constructor,
		NoReturns:          noReturns,
		EmbedErrorCore:     target.EmbedsError,
		EmbedTraversalCore: target.EmbedsTraversable,
		AssertTarget:       !isStruct,
		AssertError:        target.EmbedsError,
		AssertIterator:     target.EmbedsTraversable && !target.EmbedsIteratorFactory,
	}

	var source strings.Builder

	if prologue != "" {
		source.WriteString(prologue)
		source.WriteString("\n")
	}
	if placeholder {
		rendered, err := s.templates.Render("placeholder", data)
		if err != nil {
			return nil, err
		}
		source.WriteString(rendered)
		source.WriteString("\n")
	}

	rendered, err := s.templates.Render("double", data)
	if err != nil {
		return nil, err
	}
	source.WriteString(rendered)

	var configurable []models.ConfigurableMethod
	for _, desc := range methods.Ordered() {
		templateName := "method"
		if desc.Name == "Clone" && target.HasClone {
			switch clonePolicy {
			case models.CloneProxied:
				templateName = "proxy-method"
			case models.CloneForbidden:
				templateName = "forbidden-method"
			}
		}

		body, err := s.templates.Render(templateName, newMethodData(name.DoubleName, target.Name, desc))
		if err != nil {
			return nil, err
		}
		source.WriteString("\n")
		source.WriteString(body)

		if templateName == "method" {
			configurable = append(configurable, describeMethod(desc))
		}
	}

	// An opaque target without a doubled Clone still must refuse copying.
	if clonePolicy == models.CloneForbidden && !methods.Contains("Clone") && target.HasClone {
		cloneDesc, _ := target.Methods.Get("Clone")
		body, err := s.templates.Render("forbidden-method", newMethodData(name.DoubleName, target.Name, cloneDesc))
		if err != nil {
			return nil, err
		}
		source.WriteString("\n")
		source.WriteString(body)
	}

	metadata, err := s.templates.Render("metadata", metadataData{MetadataVar: metadataVar, Methods: configurable})
	if err != nil {
		return nil, err
	}
	source.WriteString("\n")
	source.WriteString(metadata)

	registration, err := s.templates.Render("registration", data)
	if err != nil {
		return nil, err
	}
	source.WriteString("\n")
	source.WriteString(registration)

	return &models.CompiledDouble{
		Source:      source.String(),
		Name:        name,
		Kind:        kind,
		Clone:       clonePolicy,
		Methods:     configurable,
		Placeholder: placeholder,
		Fingerprint: fingerprint,
	}, nil
}

// SynthesizeIntersection generates a marker interface embedding every
// requested interface plus a double for the marker. Interface names are
// sorted before name generation so the marker name is deterministic.
func (s *Synthesizer) SynthesizeIntersection(pkg *scanner.PackageInfo, interfaces []string, kind models.DoubleKind, requestedName, prefix string, noReturns bool) (*models.CompiledDouble, error) {
	if len(interfaces) < 2 {
		return nil, errors.New(errors.RuntimeErrorCode,
			"an interface intersection requires at least two interfaces")
	}

	sorted := make([]string, len(interfaces))
	copy(sorted, interfaces)
	sort.Strings(sorted)

	union := models.NewMethodSet()
	merged := &scanner.TargetInfo{
		Package: pkg.PackageName,
		Kind:    scanner.TargetInterface,
		Methods: union,
	}

	seen := make(map[string]string) // method name -> declaring interface
	for _, ifaceName := range sorted {
		target, ok := pkg.Target(ifaceName)
		if !ok {
			return nil, errors.Newf(errors.UnknownTypeCode,
				"unknown interface %s in package %s", ifaceName, pkg.PackageName)
		}
		if target.Kind != scanner.TargetInterface {
			return nil, errors.Newf(errors.RuntimeErrorCode,
				"%s is not an interface", target.Qualified())
		}

		for _, desc := range target.Methods.Ordered() {
			if owner, dup := seen[desc.Name]; dup {
				return nil, errors.Newf(errors.RuntimeErrorCode,
					"interfaces %s and %s both declare method %s", owner, ifaceName, desc.Name)
			}
			seen[desc.Name] = ifaceName
		}
		union.Merge(target.Methods)

		merged.EmbedsError = merged.EmbedsError || target.EmbedsError
		merged.EmbedsTraversable = merged.EmbedsTraversable || target.EmbedsTraversable
		merged.EmbedsIterator = merged.EmbedsIterator || target.EmbedsIterator
		merged.EmbedsIteratorFactory = merged.EmbedsIteratorFactory || target.EmbedsIteratorFactory
	}

	if merged.EmbedsTraversable && !merged.EmbedsIterator && !merged.EmbedsIteratorFactory {
		union.Add(
			models.MethodDescriptor{Name: "Next", Returns: []string{"bool"}},
			models.MethodDescriptor{Name: "Value", Returns: []string{"any"}},
		)
	}
	if merged.EmbedsError {
		filtered := models.NewMethodSet()
		for _, desc := range union.Ordered() {
			if desc.Name == "Error" || desc.Name == "Unwrap" {
				continue
			}
			filtered.Add(desc)
		}
		union = filtered
		merged.Methods = union
	}

	if union.Contains(scanner.ReservedMethodName) {
		return nil, errors.Newf(errors.ReservedMethodNameCode,
			"intersection would collide with the reserved %s accessor", scanner.ReservedMethodName)
	}

	resolver := namer.NewResolver(pkg)
	if requestedName != "" {
		if err := resolver.CheckAvailable(requestedName); err != nil {
			return nil, err
		}
	}
	markerName := resolver.Resolve(strings.Join(sorted, "And"), pkg.PackageName+"."+strings.Join(sorted, "&"), pkg.PackageName, "", "Intersection")
	merged.Name = markerName.DoubleName

	prologue, err := s.templates.Render("marker", markerData{MarkerName: merged.Name, Interfaces: sorted})
	if err != nil {
		return nil, err
	}

	doubleName := resolver.Resolve(merged.Name, markerName.Qualified, pkg.PackageName, requestedName, prefix)
	return s.render(merged, doubleName, kind, models.CloneDoubled, union, false, noReturns, "", prologue)
}

// resolveClonePolicy applies the clone rules: a declared, non-final Clone
// on a struct target may be proxied on request; everything else is
// doubled, except opaque targets whose doubled Clone is unsafe and must
// fail loudly instead. A target with no Clone hook at all stays doubled.
func resolveClonePolicy(target *scanner.TargetInfo, invokeClone bool) models.ClonePolicy {
	policy := models.CloneDoubled
	if target.HasClone && !target.CloneFinal && invokeClone && target.Kind == scanner.TargetStruct {
		policy = models.CloneProxied
	}
	if target.Opaque && target.HasClone && policy == models.CloneDoubled {
		policy = models.CloneForbidden
	}
	return policy
}

// populateMethods assembles the method set per the population rules:
// interfaces contribute every method (static satisfaction requires it),
// structs contribute the eligible subset or the explicit list, and
// explicitly requested names missing from the target become permissive
// descriptors.
func populateMethods(target *scanner.TargetInfo, explicit []string) (*models.MethodSet, error) {
	set := models.NewMethodSet()

	if target.Kind == scanner.TargetInterface {
		set.Merge(target.Methods)
		for _, name := range explicit {
			if !set.Contains(name) {
				set.Add(models.NewPermissiveDescriptor(name))
			}
		}
		return set, nil
	}

	if len(explicit) == 0 {
		set.Add(scanner.EligibleMethods(target.Methods)...)
		return set, nil
	}

	for _, name := range explicit {
		if desc, ok := target.Methods.Get(name); ok && scanner.CanDouble(desc) {
			set.Add(desc)
		} else {
			set.Add(models.NewPermissiveDescriptor(name))
		}
	}
	return set, nil
}

func validateMethodList(methods []string) error {
	seen := make(map[string]bool, len(methods))
	for _, name := range methods {
		if !methodNamePattern.MatchString(name) {
			return errors.Newf(errors.InvalidMethodNameCode, "invalid method name %q", name)
		}
		if seen[name] {
			return errors.Newf(errors.DuplicateMethodCode, "duplicate method name %s", name)
		}
		seen[name] = true
	}
	return nil
}

func describeMethod(desc models.MethodDescriptor) models.ConfigurableMethod {
	method := models.ConfigurableMethod{
		Name:       desc.Name,
		ParamCount: len(desc.Params),
	}
	for _, p := range desc.Params {
		method.ParamTypes = append(method.ParamTypes, p.Type)
		method.Variadic = method.Variadic || p.Variadic
	}
	method.Returns = append(method.Returns, desc.Returns...)
	return method
}

func kindConst(kind models.DoubleKind) string {
	if kind == models.KindMock {
		return "KindMock"
	}
	return "KindStub"
}

// Fingerprint derives the stable cache key for one synthesis request
func Fingerprint(typeName string, kind models.DoubleKind, methods []string, constructor string, invokeClone, noReturns bool) string {
	payload := fmt.Sprintf("%s|%s|%s|%s|%v|%v", typeName, kind, strings.Join(methods, ","), constructor, invokeClone, noReturns)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// CacheSize reports how many compiled doubles are memoized
func (s *Synthesizer) CacheSize() int {
	return s.cache.Size()
}
