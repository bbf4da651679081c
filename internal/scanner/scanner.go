package scanner

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"strings"

	"github.com/mimicgo/mimic/internal/directives"
	"github.com/mimicgo/mimic/internal/errors"
	"github.com/mimicgo/mimic/internal/models"
	"github.com/mimicgo/mimic/internal/utils"
)

// PackageInfo is everything the synthesizer needs to know about one
// scanned package: its candidate targets, the directives found in it, and
// the names already taken at its top level.
type PackageInfo struct {
	PackageName string
	Path        string

	Targets    map[string]*TargetInfo
	Directives []*directives.Directive

	declared map[string]bool // every top-level identifier in the package
}

// NameExists reports whether a top-level identifier is already declared
// in the scanned package. Used by the name resolver's collision probe.
func (p *PackageInfo) NameExists(name string) bool {
	return p.declared[name]
}

// Target returns the snapshot for a type name, if the package declares it.
func (p *PackageInfo) Target(name string) (*TargetInfo, bool) {
	t, ok := p.Targets[name]
	return t, ok
}

// Scanner extracts doubleable targets and mimic:: directives from Go
// source, working purely on the AST.
type Scanner struct {
	fileSet    *token.FileSet
	directives *directives.Parser
}

// NewScanner creates a new source scanner
func NewScanner() *Scanner {
	return &Scanner{
		fileSet:    token.NewFileSet(),
		directives: directives.NewParser(),
	}
}

// ParseSource parses source code from a string, primarily for testing.
func (s *Scanner) ParseSource(filename, source string) (*PackageInfo, error) {
	file, err := parser.ParseFile(s.fileSet, filename, source, parser.ParseComments)
	if err != nil {
		return nil, utils.WrapParseError("source", err)
	}

	info := newPackageInfo(file.Name.Name, "./")
	if err := s.collect(info, map[string]*ast.File{filename: file}); err != nil {
		return nil, err
	}
	return info, nil
}

// ParseDirectory scans all Go files of the single package in a directory.
// File names listed in skip are left out of the scan; the generator passes
// its own output file here so a previous run's declarations do not count
// as taken names when regenerating.
func (s *Scanner) ParseDirectory(path string, skip ...string) (*PackageInfo, error) {
	skipped := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipped[name] = true
	}

	pkgs, err := parser.ParseDir(s.fileSet, path, func(info fs.FileInfo) bool {
		return !skipped[info.Name()]
	}, parser.ParseComments)
	if err != nil {
		return nil, utils.WrapParseError("directory "+path, err)
	}

	// Drop external test packages; one package per directory otherwise.
	for name := range pkgs {
		if strings.HasSuffix(name, "_test") {
			delete(pkgs, name)
		}
	}
	if len(pkgs) == 0 {
		return nil, errors.Newf(errors.ScanErrorCode, "no Go packages found in %s", path)
	}
	if len(pkgs) > 1 {
		return nil, errors.Newf(errors.ScanErrorCode, "multiple packages found in %s", path)
	}

	var info *PackageInfo
	for name, pkg := range pkgs {
		info = newPackageInfo(name, path)
		if err := s.collect(info, pkg.Files); err != nil {
			return nil, err
		}
	}
	return info, nil
}

func newPackageInfo(name, path string) *PackageInfo {
	return &PackageInfo{
		PackageName: name,
		Path:        path,
		Targets:     make(map[string]*TargetInfo),
		declared:    make(map[string]bool),
	}
}

// collect runs the scan passes over a package's files: declarations first,
// then method attachment and classification, then directives.
func (s *Scanner) collect(info *PackageInfo, files map[string]*ast.File) error {
	interfaces := make(map[string]*ast.InterfaceType)
	constTypes := make(map[string]bool) // type names backing const declarations

	// First pass: type declarations, constructors, consts, declared names
	for fileName, file := range files {
		for _, decl := range file.Decls {
			switch node := decl.(type) {
			case *ast.GenDecl:
				s.collectGenDecl(info, node, fileName, interfaces, constTypes)
			case *ast.FuncDecl:
				info.declared[node.Name.Name] = true
			}
		}
	}

	// Second pass: attach struct methods and constructors
	for fileName, file := range files {
		for _, decl := range file.Decls {
			funcDecl, ok := decl.(*ast.FuncDecl)
			if !ok {
				continue
			}
			s.collectFuncDecl(info, funcDecl, fileName)
		}
	}

	// Resolve interface surfaces now that every declaration is known
	for name, ifaceType := range interfaces {
		target := info.Targets[name]
		if err := s.resolveInterface(info, target, ifaceType, interfaces, map[string]bool{name: true}); err != nil {
			return err
		}
	}

	// Classify enumerations and sealed targets
	for _, target := range info.Targets {
		s.classify(target, constTypes)
	}

	// Final pass: directive comments
	for fileName, file := range files {
		if err := s.collectDirectives(info, file, fileName); err != nil {
			return err
		}
	}

	return nil
}

func (s *Scanner) collectGenDecl(info *PackageInfo, decl *ast.GenDecl, fileName string, interfaces map[string]*ast.InterfaceType, constTypes map[string]bool) {
	switch decl.Tok {
	case token.TYPE:
		for _, spec := range decl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			name := typeSpec.Name.Name
			info.declared[name] = true

			target := &TargetInfo{
				Name:     name,
				Package:  info.PackageName,
				Methods:  models.NewMethodSet(),
				Location: s.location(fileName, typeSpec.Pos()),
			}

			switch underlying := typeSpec.Type.(type) {
			case *ast.InterfaceType:
				target.Kind = TargetInterface
				interfaces[name] = underlying
			case *ast.StructType:
				target.Kind = TargetStruct
				target.Opaque = isOpaqueStruct(underlying)
			default:
				// Defined non-struct, non-interface type; classified below
				target.Kind = TargetSealed
				target.SealedReason = "defined type cannot be extended"
			}

			info.Targets[name] = target
		}

	case token.CONST:
		// Track which defined types back const declarations. Within a
		// block, an untyped spec inherits the preceding spec's type.
		current := ""
		for _, spec := range decl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			if ident, ok := valueSpec.Type.(*ast.Ident); ok {
				current = ident.Name
			}
			if current != "" {
				constTypes[current] = true
			}
			for _, name := range valueSpec.Names {
				info.declared[name.Name] = true
			}
		}

	case token.VAR:
		for _, spec := range decl.Specs {
			if valueSpec, ok := spec.(*ast.ValueSpec); ok {
				for _, name := range valueSpec.Names {
					info.declared[name.Name] = true
				}
			}
		}
	}
}

func (s *Scanner) collectFuncDecl(info *PackageInfo, decl *ast.FuncDecl, fileName string) {
	if decl.Recv == nil || len(decl.Recv.List) == 0 {
		s.collectConstructor(info, decl)
		return
	}

	receiver := receiverTypeName(decl.Recv.List[0].Type)
	target, ok := info.Targets[receiver]
	if !ok {
		return
	}

	desc := models.NewMethodDescriptor(decl.Name.Name, decl.Type)
	desc.Final = hasFinalDirective(decl.Doc)
	target.Methods.Add(desc)

	if decl.Name.Name == "Clone" {
		target.HasClone = true
		target.CloneFinal = desc.Final
	}
}

// collectConstructor records a New<Type> package function returning the
// type (or a pointer to it) as the target's original constructor.
func (s *Scanner) collectConstructor(info *PackageInfo, decl *ast.FuncDecl) {
	name := decl.Name.Name
	if !strings.HasPrefix(name, "New") || len(name) == 3 {
		return
	}
	target, ok := info.Targets[strings.TrimPrefix(name, "New")]
	if !ok || target.Kind != TargetStruct {
		return
	}
	if decl.Type.Results == nil || len(decl.Type.Results.List) == 0 {
		return
	}

	resultType := decl.Type.Results.List[0].Type
	if star, ok := resultType.(*ast.StarExpr); ok {
		resultType = star.X
	}
	if ident, ok := resultType.(*ast.Ident); ok && ident.Name == target.Name {
		target.Constructor = name
	}
}

// resolveInterface flattens an interface's declared and embedded methods
// into the target's method set, recording capability embeds along the way.
func (s *Scanner) resolveInterface(info *PackageInfo, target *TargetInfo, ifaceType *ast.InterfaceType, interfaces map[string]*ast.InterfaceType, visited map[string]bool) error {
	if ifaceType.Methods == nil {
		return nil
	}

	for _, field := range ifaceType.Methods.List {
		if len(field.Names) > 0 {
			// Declared method
			funcType, ok := field.Type.(*ast.FuncType)
			if !ok {
				continue
			}
			for _, ident := range field.Names {
				desc := models.NewMethodDescriptor(ident.Name, funcType)
				desc.Final = hasFinalDirective(field.Doc)
				target.Methods.Add(desc)
				if !ast.IsExported(ident.Name) {
					target.Kind = TargetSealed
					target.SealedReason = "interface has unexported method " + ident.Name
				}
			}
			continue
		}

		// Embedded interface
		switch embed := field.Type.(type) {
		case *ast.Ident:
			if embed.Name == "error" {
				target.EmbedsError = true
				continue
			}
			if visited[embed.Name] {
				continue
			}
			nested, ok := interfaces[embed.Name]
			if !ok {
				return errors.Newf(errors.ScanErrorCode,
					"cannot resolve interface %s embedded in %s", embed.Name, target.Name).
					WithLocation(target.Location)
			}
			visited[embed.Name] = true
			if err := s.resolveInterface(info, target, nested, interfaces, visited); err != nil {
				return err
			}
			// Capability flags propagate from same-package embeds
			if embedded, ok := info.Targets[embed.Name]; ok {
				target.EmbedsError = target.EmbedsError || embedded.EmbedsError
			}

		case *ast.SelectorExpr:
			pkgIdent, ok := embed.X.(*ast.Ident)
			if !ok || pkgIdent.Name != "mimic" {
				return errors.Newf(errors.ScanErrorCode,
					"cannot resolve interface %s embedded in %s", typeText(embed), target.Name).
					WithLocation(target.Location)
			}
			switch embed.Sel.Name {
			case "Traversable":
				target.EmbedsTraversable = true
			case "Iterator":
				target.EmbedsTraversable = true
				target.EmbedsIterator = true
				target.Methods.Add(iteratorMethods()...)
			case "IteratorFactory":
				target.EmbedsTraversable = true
				target.EmbedsIteratorFactory = true
				target.Methods.Add(iteratorFactoryMethods()...)
			default:
				return errors.Newf(errors.ScanErrorCode,
					"unknown mimic capability %s embedded in %s", embed.Sel.Name, target.Name).
					WithLocation(target.Location)
			}
		}
	}

	return nil
}

// classify finalizes a target's kind once all declarations are visible
func (s *Scanner) classify(target *TargetInfo, constTypes map[string]bool) {
	if target.Kind == TargetSealed && constTypes[target.Name] {
		target.Kind = TargetEnumeration
		target.SealedReason = ""
	}
	if !target.IsExported() && target.Kind != TargetSealed && target.Kind != TargetEnumeration {
		target.Kind = TargetSealed
		target.SealedReason = "type " + target.Name + " is unexported"
	}
}

func (s *Scanner) collectDirectives(info *PackageInfo, file *ast.File, fileName string) error {
	for _, group := range file.Comments {
		for _, comment := range group.List {
			if !directives.IsDirective(comment.Text) {
				continue
			}
			directive, err := s.directives.Parse(comment.Text, s.location(fileName, comment.Pos()))
			if err != nil {
				return err
			}
			// final directives are consumed where the method is collected
			if directive.Type == directives.DirectiveFinal {
				continue
			}
			info.Directives = append(info.Directives, directive)
		}
	}
	return nil
}

func (s *Scanner) location(fileName string, pos token.Pos) errors.SourceLocation {
	position := s.fileSet.Position(pos)
	return errors.SourceLocation{File: fileName, Line: position.Line}
}

// ListDoubleableMethods exposes the eligible method set of a scanned type
// for external inspection.
func (s *Scanner) ListDoubleableMethods(info *PackageInfo, typeName string) ([]models.MethodDescriptor, error) {
	target, ok := info.Target(typeName)
	if !ok {
		return nil, errors.Newf(errors.UnknownTypeCode, "unknown type %s", typeName)
	}
	return EligibleMethods(target.Methods), nil
}

func hasFinalDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, comment := range doc.List {
		text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(comment.Text), "//"))
		if text == "mimic::final" {
			return true
		}
	}
	return false
}

func isOpaqueStruct(structType *ast.StructType) bool {
	if structType.Fields == nil || len(structType.Fields.List) == 0 {
		return false
	}
	for _, field := range structType.Fields.List {
		for _, name := range field.Names {
			if ast.IsExported(name.Name) {
				return false
			}
		}
		if len(field.Names) == 0 {
			// Embedded field; exported when its type name is
			if ast.IsExported(embeddedFieldName(field.Type)) {
				return false
			}
		}
	}
	return true
}

func embeddedFieldName(expr ast.Expr) string {
	switch node := expr.(type) {
	case *ast.Ident:
		return node.Name
	case *ast.StarExpr:
		return embeddedFieldName(node.X)
	case *ast.SelectorExpr:
		return node.Sel.Name
	}
	return ""
}

func receiverTypeName(expr ast.Expr) string {
	switch node := expr.(type) {
	case *ast.Ident:
		return node.Name
	case *ast.StarExpr:
		return receiverTypeName(node.X)
	case *ast.IndexExpr:
		return receiverTypeName(node.X)
	case *ast.IndexListExpr:
		return receiverTypeName(node.X)
	}
	return ""
}

func typeText(expr ast.Expr) string {
	if sel, ok := expr.(*ast.SelectorExpr); ok {
		if ident, ok := sel.X.(*ast.Ident); ok {
			return ident.Name + "." + sel.Sel.Name
		}
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return "<complex type>"
}

func iteratorMethods() []models.MethodDescriptor {
	return []models.MethodDescriptor{
		{Name: "Next", Returns: []string{"bool"}},
		{Name: "Value", Returns: []string{"any"}},
	}
}

func iteratorFactoryMethods() []models.MethodDescriptor {
	return []models.MethodDescriptor{
		{Name: "Iterate", Returns: []string{"mimic.Iterator"}},
	}
}
