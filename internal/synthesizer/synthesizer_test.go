package synthesizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mimicgo/mimic/internal/errors"
	"github.com/mimicgo/mimic/internal/models"
	"github.com/mimicgo/mimic/internal/scanner"
)

const repoSource = `package store

type Repo interface {
	Save(id string, data []byte) error
	Load(id string) ([]byte, error)
	Drop(id string)
}
`

func scanSource(t *testing.T, source string) *scanner.PackageInfo {
	t.Helper()
	pkg, err := scanner.NewScanner().ParseSource("test.go", source)
	require.NoError(t, err)
	return pkg
}

func TestSynthesizeInterfaceDouble(t *testing.T) {
	pkg := scanSource(t, repoSource)

	compiled, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName:      "Repo",
		Kind:          models.KindMock,
		RequestedName: "FakeRepo",
	})
	require.NoError(t, err)

	assert.Equal(t, "FakeRepo", compiled.Name.DoubleName)
	assert.Equal(t, "store.Repo", compiled.Name.Qualified)

	source := compiled.Source
	assert.Contains(t, source, "type FakeRepo struct {")
	assert.Contains(t, source, "var _ Repo = (*FakeRepo)(nil)")
	assert.Contains(t, source, "func NewFakeRepo(t mimic.TestingT")
	assert.Contains(t, source, `func (d *FakeRepo) Save(id string, data []byte) error {`)
	assert.Contains(t, source, `func (d *FakeRepo) Mimic() *mimic.Double`)
	assert.Contains(t, source, "mimic.DefaultDoubleRegistry.Register")
	assert.Contains(t, source, `Target:  "store.Repo"`)
	assert.Contains(t, source, "mimic.KindMock")

	// All three interface methods stay configurable
	names := make([]string, 0, len(compiled.Methods))
	for _, m := range compiled.Methods {
		names = append(names, m.Name)
	}
	assert.ElementsMatch(t, []string{"Save", "Load", "Drop"}, names)
}

func TestSynthesizeInterfaceAlwaysDoublesEveryMethod(t *testing.T) {
	pkg := scanSource(t, repoSource)

	// Interface satisfaction is static: an explicit subset must not shrink
	// the generated surface, only extend it.
	compiled, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName:      "Repo",
		Kind:          models.KindStub,
		Methods:       []string{"Save", "Purge"},
		RequestedName: "FakeRepo",
	})
	require.NoError(t, err)

	assert.Contains(t, compiled.Source, "func (d *FakeRepo) Load(")
	assert.Contains(t, compiled.Source, "func (d *FakeRepo) Purge(args ...any) any {")
}

func TestSynthesizeStructSubset(t *testing.T) {
	pkg := scanSource(t, `package store

type Repo struct {
	Label string
}

func (r *Repo) Save(id string) error { return nil }

func (r *Repo) Load(id string) ([]byte, error) { return nil, nil }
`)

	compiled, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName:      "Repo",
		Kind:          models.KindMock,
		Methods:       []string{"Save"},
		RequestedName: "FakeRepo",
	})
	require.NoError(t, err)

	assert.Contains(t, compiled.Source, "*Repo\n")
	assert.Contains(t, compiled.Source, "func (d *FakeRepo) Save(")
	assert.NotContains(t, compiled.Source, "func (d *FakeRepo) Load(")
}

func TestSynthesizeEnumerationRejected(t *testing.T) {
	pkg := scanSource(t, `package store

type Level int

const LevelLow Level = 0
`)

	_, err := NewSynthesizer().Synthesize(pkg, Request{TypeName: "Level"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.TypeIsEnumerationCode))
}

func TestSynthesizeSealedRejected(t *testing.T) {
	pkg := scanSource(t, `package store

type Guarded interface {
	hidden() int
}
`)

	_, err := NewSynthesizer().Synthesize(pkg, Request{TypeName: "Guarded"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.TypeIsSealedCode))
}

func TestSynthesizeUnknownType(t *testing.T) {
	pkg := scanSource(t, "package store\n")

	_, err := NewSynthesizer().Synthesize(pkg, Request{TypeName: "Ghost"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.UnknownTypeCode))
}

func TestSynthesizeUnknownTypeWithMethodsGetsPlaceholder(t *testing.T) {
	pkg := scanSource(t, "package store\n")

	compiled, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName:      "Ghost",
		Methods:       []string{"Haunt"},
		RequestedName: "FakeGhost",
	})
	require.NoError(t, err)

	assert.True(t, compiled.Placeholder)
	assert.Contains(t, compiled.Source, "type Ghost interface{}")
	assert.Contains(t, compiled.Source, "func (d *FakeGhost) Haunt(args ...any) any {")
}

func TestSynthesizeInvalidMethodName(t *testing.T) {
	pkg := scanSource(t, repoSource)

	_, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName: "Repo",
		Methods:  []string{"not-an-identifier"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.InvalidMethodNameCode))
}

func TestSynthesizeDuplicateMethodName(t *testing.T) {
	pkg := scanSource(t, repoSource)

	_, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName: "Repo",
		Methods:  []string{"Save", "Save"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.DuplicateMethodCode))
}

func TestSynthesizeReservedMethodName(t *testing.T) {
	pkg := scanSource(t, `package store

type Weird interface {
	Mimic() string
}
`)

	_, err := NewSynthesizer().Synthesize(pkg, Request{TypeName: "Weird"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ReservedMethodNameCode))
}

func TestSynthesizeRequestedNameCollision(t *testing.T) {
	pkg := scanSource(t, repoSource)

	_, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName:      "Repo",
		RequestedName: "Repo",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.NameInUseCode))
}

func TestSynthesizeCachesByFingerprint(t *testing.T) {
	pkg := scanSource(t, repoSource)
	synth := NewSynthesizer()

	first, err := synth.Synthesize(pkg, Request{TypeName: "Repo", Kind: models.KindMock})
	require.NoError(t, err)

	second, err := synth.Synthesize(pkg, Request{TypeName: "Repo", Kind: models.KindMock})
	require.NoError(t, err)

	assert.Same(t, first, second, "identical requests must share one compiled double")
	assert.Equal(t, 1, synth.CacheSize())

	third, err := synth.Synthesize(pkg, Request{TypeName: "Repo", Kind: models.KindStub})
	require.NoError(t, err)
	assert.NotSame(t, first, third, "a different kind is a different double")
}

func TestSynthesizeExplicitNameBypassesCache(t *testing.T) {
	pkg := scanSource(t, repoSource)
	synth := NewSynthesizer()

	first, err := synth.Synthesize(pkg, Request{TypeName: "Repo", RequestedName: "FakeA"})
	require.NoError(t, err)
	second, err := synth.Synthesize(pkg, Request{TypeName: "Repo", RequestedName: "FakeB"})
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 0, synth.CacheSize())
}

func TestSynthesizeErrorEmbeddingTarget(t *testing.T) {
	pkg := scanSource(t, `package store

type NotFound interface {
	error
	Key() string
}
`)

	compiled, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName:      "NotFound",
		RequestedName: "FakeNotFound",
	})
	require.NoError(t, err)

	source := compiled.Source
	assert.Contains(t, source, "mimic.ErrorCore")
	assert.Contains(t, source, `mimic.NewErrorCore("FakeNotFound")`)
	assert.Contains(t, source, "var _ error = (*FakeNotFound)(nil)")
	// Error and Unwrap belong to the embedded core, not the dispatch table
	assert.NotContains(t, source, "func (d *FakeNotFound) Error(")
	assert.NotContains(t, source, "func (d *FakeNotFound) Unwrap(")
}

func TestSynthesizeBareTraversableGetsIterator(t *testing.T) {
	pkg := scanSource(t, `package store

import "github.com/mimicgo/mimic/pkg/mimic"

type Bag interface {
	mimic.Traversable
	Size() int
}
`)

	compiled, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName:      "Bag",
		RequestedName: "FakeBag",
	})
	require.NoError(t, err)

	source := compiled.Source
	assert.Contains(t, source, "mimic.TraversalCore")
	assert.Contains(t, source, "var _ mimic.Iterator = (*FakeBag)(nil)")
	assert.Contains(t, source, "func (d *FakeBag) Next() bool {")
	assert.Contains(t, source, "func (d *FakeBag) Value() any {")
}

func TestSynthesizeOpaqueCloneForbidden(t *testing.T) {
	pkg := scanSource(t, `package store

type Snapshot struct {
	data []byte
}

func (s *Snapshot) Clone() *Snapshot { return s }

func (s *Snapshot) Bytes() []byte { return s.data }
`)

	compiled, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName:      "Snapshot",
		RequestedName: "FakeSnapshot",
	})
	require.NoError(t, err)

	assert.Equal(t, models.CloneForbidden, compiled.Clone)
	assert.Contains(t, compiled.Source, `d.control.Forbidden("Clone")`)
}

func TestSynthesizeOpaqueWithoutCloneStaysDoubled(t *testing.T) {
	pkg := scanSource(t, `package store

type Ledger struct {
	entries []string
}

func (l *Ledger) Count() int { return len(l.entries) }
`)

	compiled, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName:      "Ledger",
		RequestedName: "FakeLedger",
	})
	require.NoError(t, err)

	// No clone hook to guard; the double behaves like any other struct double.
	assert.Equal(t, models.CloneDoubled, compiled.Clone)
	assert.NotContains(t, compiled.Source, "Forbidden")
}

func TestSynthesizeProxiedClone(t *testing.T) {
	pkg := scanSource(t, `package store

type Repo struct {
	Label string
}

func (r *Repo) Clone() *Repo { return &Repo{Label: r.Label} }
`)

	compiled, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName:      "Repo",
		RequestedName: "FakeRepo",
		InvokeClone:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, models.CloneProxied, compiled.Clone)
	assert.Contains(t, compiled.Source, "d.Repo.Clone()")
	// A double built without a target must fail cleanly, not nil-deref
	assert.Contains(t, compiled.Source, "if d.Repo == nil {")
	assert.Contains(t, compiled.Source, `d.control.MissingTarget("Clone")`)
}

func TestSynthesizeFinalCloneCannotBeProxied(t *testing.T) {
	pkg := scanSource(t, `package store

type Repo struct {
	Label string
}

//mimic::final
func (r *Repo) Clone() *Repo { return r }
`)

	compiled, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName:      "Repo",
		RequestedName: "FakeRepo",
		InvokeClone:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.CloneDoubled, compiled.Clone)
}

func TestSynthesizeConstructorOverride(t *testing.T) {
	pkg := scanSource(t, `package store

type Repo struct {
	Label string
}

func NewRepo() *Repo { return &Repo{} }

func BuildRepo(label string) *Repo { return &Repo{Label: label} }

func (r *Repo) Save(id string) error { return nil }
`)

	compiled, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName:      "Repo",
		RequestedName: "FakeRepo",
		Constructor:   "BuildRepo",
	})
	require.NoError(t, err)
	assert.Contains(t, compiled.Source, "mimic.CallConstructor(BuildRepo, args)")
	assert.NotContains(t, compiled.Source, "mimic.CallConstructor(NewRepo, args)")
}

func TestSynthesizeConstructorOverrideMustExist(t *testing.T) {
	pkg := scanSource(t, `package store

type Repo struct {
	Label string
}
`)

	_, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName:      "Repo",
		RequestedName: "FakeRepo",
		Constructor:   "BuildRepo",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.GenerationErrorCode))
}

func TestSynthesizeConstructorOverrideOnInterfaceRejected(t *testing.T) {
	pkg := scanSource(t, repoSource)

	_, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName:      "Repo",
		RequestedName: "FakeRepo",
		Constructor:   "NewRepo",
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.GenerationErrorCode))
}

func TestSynthesizeNoReturnsOption(t *testing.T) {
	pkg := scanSource(t, repoSource)

	compiled, err := NewSynthesizer().Synthesize(pkg, Request{
		TypeName:      "Repo",
		RequestedName: "FakeRepo",
		NoReturns:     true,
	})
	require.NoError(t, err)
	assert.Contains(t, compiled.Source, "mimic.WithReturnGeneration(false)")
}

func TestSynthesizeIntersection(t *testing.T) {
	pkg := scanSource(t, `package store

type Reader interface {
	Read(id string) ([]byte, error)
}

type Writer interface {
	Write(id string, data []byte) error
}
`)

	compiled, err := NewSynthesizer().SynthesizeIntersection(pkg,
		[]string{"Writer", "Reader"}, models.KindMock, "FakeReadWriter", "", false)
	require.NoError(t, err)

	source := compiled.Source
	// Sorted regardless of request order
	assert.Contains(t, source, "Reader\n\tWriter")
	assert.Contains(t, source, "func (d *FakeReadWriter) Read(")
	assert.Contains(t, source, "func (d *FakeReadWriter) Write(")
}

func TestSynthesizeIntersectionRejectsOverlap(t *testing.T) {
	pkg := scanSource(t, `package store

type A interface {
	Ping() error
}

type B interface {
	Ping() error
}
`)

	_, err := NewSynthesizer().SynthesizeIntersection(pkg,
		[]string{"A", "B"}, models.KindMock, "", "", false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.RuntimeErrorCode))
	assert.True(t, strings.Contains(err.Error(), "Ping"))
}

func TestSynthesizeIntersectionRejectsNonInterface(t *testing.T) {
	pkg := scanSource(t, `package store

type Reader interface {
	Read() error
}

type Box struct{}
`)

	_, err := NewSynthesizer().SynthesizeIntersection(pkg,
		[]string{"Reader", "Box"}, models.KindMock, "", "", false)
	require.Error(t, err)
}

func TestFingerprintSensitivity(t *testing.T) {
	base := Fingerprint("Repo", models.KindMock, []string{"Save"}, "", false, false)

	assert.Equal(t, base, Fingerprint("Repo", models.KindMock, []string{"Save"}, "", false, false))
	assert.NotEqual(t, base, Fingerprint("Repo", models.KindStub, []string{"Save"}, "", false, false))
	assert.NotEqual(t, base, Fingerprint("Repo", models.KindMock, []string{"Load"}, "", false, false))
	assert.NotEqual(t, base, Fingerprint("Repo", models.KindMock, []string{"Save"}, "BuildRepo", false, false))
	assert.NotEqual(t, base, Fingerprint("Repo", models.KindMock, []string{"Save"}, "", true, false))
	assert.NotEqual(t, base, Fingerprint("Repo", models.KindMock, []string{"Save"}, "", false, true))
}
