package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/mimicgo/mimic/internal/config"
	"github.com/mimicgo/mimic/internal/directives"
	"github.com/mimicgo/mimic/internal/errors"
	"github.com/mimicgo/mimic/internal/models"
	"github.com/mimicgo/mimic/internal/scanner"
	"github.com/mimicgo/mimic/internal/synthesizer"
	"github.com/mimicgo/mimic/internal/utils"
)

// runtimeImport is the package every generated file depends on
const runtimeImport = "github.com/mimicgo/mimic/pkg/mimic"

// runtimeModule is the module providing runtimeImport
const runtimeModule = "github.com/mimicgo/mimic"

// generatedHeader marks generated files; Clean refuses to delete files
// without it
const generatedHeader = "// Code generated by mimic. DO NOT EDIT."

// GeneratedFile is the assembled output for one package
type GeneratedFile struct {
	PackageName string
	Path        string
	Content     string
	Doubles     []string
}

// Generator walks packages, resolves their directives and writes one
// generated file per package that requests doubles.
type Generator struct {
	cfg   *config.Config
	diag  *utils.DiagnosticSystem
	scan  *scanner.Scanner
	synth *synthesizer.Synthesizer
}

// NewGenerator creates a generator with a fresh scanner and synthesizer
func NewGenerator(cfg *config.Config, diag *utils.DiagnosticSystem) *Generator {
	return &Generator{
		cfg:   cfg,
		diag:  diag,
		scan:  scanner.NewScanner(),
		synth: synthesizer.NewSynthesizer(),
	}
}

// Run processes the given package directories and writes the generated
// files. It returns the run summary; per-package failures are collected
// rather than aborting the run.
func (g *Generator) Run(dirs []string) (*Summary, error) {
	summary := &Summary{}
	failures := errors.NewMultipleErrors()

	if len(dirs) > 0 {
		g.checkRuntimeRequirement(dirs[0])
	}

	for _, dir := range dirs {
		summary.PackagesScanned++

		file, err := g.ProcessDirectory(dir)
		if err != nil {
			g.diag.Error("%s: %v", dir, err)
			if mimicErr, ok := err.(errors.MimicError); ok {
				failures.Add(mimicErr)
			} else {
				failures.Add(errors.Wrap(errors.GenerationErrorCode, dir, err))
			}
			continue
		}
		if file == nil {
			continue
		}

		if err := g.WriteFile(file); err != nil {
			g.diag.Error("%s: %v", file.Path, err)
			failures.Add(errors.Wrap(errors.FileSystemErrorCode, file.Path, err))
			continue
		}

		summary.FilesWritten++
		summary.DoublesGenerated += len(file.Doubles)
		g.diag.Success("%s: %d double(s)", file.Path, len(file.Doubles))
	}

	if !failures.IsEmpty() {
		return summary, failures
	}
	return summary, nil
}

// checkRuntimeRequirement warns when the module being scanned does not
// depend on the mimic runtime. Generated files import it, so a missing
// requirement breaks the build of the very first generated double.
func (g *Generator) checkRuntimeRequirement(dir string) {
	parser := utils.NewGoModParser()
	goModPath, err := parser.FindGoModFile(dir)
	if err != nil {
		g.diag.Verbose("no go.mod found from %s upward; skipping runtime dependency check", dir)
		return
	}

	ok, err := parser.HasRequirement(goModPath, runtimeModule)
	if err != nil {
		g.diag.Verbose("runtime dependency check: %v", err)
		return
	}
	if !ok {
		g.diag.Warn("%s does not require %s; run 'go get %s' so generated files build",
			goModPath, runtimeModule, runtimeModule)
	}
}

// ProcessDirectory scans one package directory and synthesizes its
// directives. Returns nil without error when the package requests no
// doubles.
func (g *Generator) ProcessDirectory(dir string) (*GeneratedFile, error) {
	pkg, err := g.scan.ParseDirectory(dir, g.cfg.OutputFile)
	if err != nil {
		return nil, err
	}
	if pkg == nil || len(pkg.Directives) == 0 {
		return nil, nil
	}

	g.diag.Subsection(fmt.Sprintf("package %s", pkg.PackageName))

	var doubles []*models.CompiledDouble
	for _, directive := range pkg.Directives {
		compiled, err := g.synthesizeDirective(pkg, directive)
		if err != nil {
			return nil, err
		}
		g.diag.Verbose("synthesized %s for %s", compiled.Name.DoubleName, directive.Target)
		doubles = append(doubles, compiled)
	}

	return g.assemble(pkg, dir, doubles)
}

func (g *Generator) synthesizeDirective(pkg *scanner.PackageInfo, directive *directives.Directive) (*models.CompiledDouble, error) {
	kind := g.kindFor(directive)
	noReturns := directive.Flag("NoReturns") || !g.cfg.GenerateReturns

	switch directive.Type {
	case directives.DirectiveIntersection:
		return g.synth.SynthesizeIntersection(pkg, directive.Interfaces(), kind,
			directive.Param("Name", ""), g.cfg.NamePrefix, noReturns)

	default:
		clone := directive.Param("Clone", g.cfg.DefaultClone)
		if clone == "forbid" {
			if target, ok := pkg.Target(directive.Target); ok && !target.Opaque {
				g.diag.Warn("%s: -Clone=forbid only applies to opaque targets; doubling Clone instead", directive.Target)
			}
		}

		return g.synth.Synthesize(pkg, synthesizer.Request{
			TypeName:      directive.Target,
			Kind:          kind,
			Methods:       directive.MethodList(),
			RequestedName: directive.Param("Name", ""),
			Prefix:        g.cfg.NamePrefix,
			Constructor:   directive.Param("Constructor", ""),
			InvokeClone:   clone == "proxy",
			NoReturns:     noReturns,
		})
	}
}

func (g *Generator) kindFor(directive *directives.Directive) models.DoubleKind {
	if directive.Param("Kind", g.cfg.DefaultKind) == "stub" {
		return models.KindStub
	}
	return models.KindMock
}

// assemble composes the generated file for one package and runs it
// through the import fixer, which both formats the source and resolves
// the imports the template bodies reference.
func (g *Generator) assemble(pkg *scanner.PackageInfo, dir string, doubles []*models.CompiledDouble) (*GeneratedFile, error) {
	path := filepath.Join(dir, g.cfg.OutputFile)

	var builder strings.Builder
	builder.WriteString(generatedHeader)
	builder.WriteString("\n\n")
	builder.WriteString(fmt.Sprintf("package %s\n\n", pkg.PackageName))
	builder.WriteString(fmt.Sprintf("import %q\n", runtimeImport))

	names := make([]string, 0, len(doubles))
	for _, double := range doubles {
		builder.WriteString("\n")
		builder.WriteString(double.Source)
		names = append(names, double.Name.DoubleName)
	}

	formatted, err := imports.Process(path, []byte(builder.String()), nil)
	if err != nil {
		return nil, errors.Wrapf(errors.GenerationErrorCode, err,
			"generated source for package %s does not format", pkg.PackageName)
	}

	return &GeneratedFile{
		PackageName: pkg.PackageName,
		Path:        path,
		Content:     string(formatted),
		Doubles:     names,
	}, nil
}

// WriteFile writes one generated file to disk
func (g *Generator) WriteFile(file *GeneratedFile) error {
	if err := os.WriteFile(file.Path, []byte(file.Content), 0o644); err != nil {
		return utils.WrapWriteError(file.Path, err)
	}
	return nil
}

// ExpandPatterns resolves directory arguments into package directories.
// An argument ending in /... is walked recursively; anything else is
// taken as a single package directory.
func ExpandPatterns(args []string) ([]string, error) {
	var dirs []string
	for _, arg := range args {
		if root, ok := strings.CutSuffix(arg, "/..."); ok {
			found, err := FindPackageDirs(filepath.Clean(root))
			if err != nil {
				return nil, err
			}
			dirs = append(dirs, found...)
			continue
		}
		dirs = append(dirs, filepath.Clean(arg))
	}
	return dirs, nil
}

// FindPackageDirs collects every directory under root that holds Go
// sources, skipping hidden directories, testdata, vendor trees and
// underscore-prefixed paths.
func FindPackageDirs(root string) ([]string, error) {
	var dirs []string

	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			name := entry.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
				name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(entry.Name(), ".go") && !strings.HasSuffix(entry.Name(), "_test.go") {
			dir := filepath.Dir(path)
			if len(dirs) == 0 || dirs[len(dirs)-1] != dir {
				dirs = append(dirs, dir)
			}
		}
		return nil
	})
	if err != nil {
		return nil, utils.WrapScanError(root, err)
	}
	return dirs, nil
}
