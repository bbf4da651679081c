package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mimicgo/mimic/internal/errors"
	"github.com/mimicgo/mimic/internal/models"
)

func parse(t *testing.T, source string) *PackageInfo {
	t.Helper()
	info, err := NewScanner().ParseSource("test.go", source)
	require.NoError(t, err)
	return info
}

func TestScanInterfaceMethods(t *testing.T) {
	info := parse(t, `package store

type Repo interface {
	Save(id string, data []byte) error
	Load(id string) ([]byte, error)
}
`)

	target, ok := info.Target("Repo")
	require.True(t, ok)
	assert.Equal(t, TargetInterface, target.Kind)
	assert.Equal(t, []string{"Save", "Load"}, target.Methods.Names())
	assert.Equal(t, "store.Repo", target.Qualified())
}

func TestScanFlattensEmbeddedInterfaces(t *testing.T) {
	info := parse(t, `package store

type Reader interface {
	Read(id string) ([]byte, error)
}

type Writer interface {
	Write(id string, data []byte) error
}

type ReadWriter interface {
	Reader
	Writer
	Close() error
}
`)

	target, ok := info.Target("ReadWriter")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"Read", "Write", "Close"}, target.Methods.Names())
}

func TestScanUnresolvableEmbedFails(t *testing.T) {
	_, err := NewScanner().ParseSource("test.go", `package store

import "io"

type Streamer interface {
	io.Reader
}
`)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ScanErrorCode))
}

func TestScanErrorEmbed(t *testing.T) {
	info := parse(t, `package store

type NotFound interface {
	error
	Key() string
}
`)

	target, ok := info.Target("NotFound")
	require.True(t, ok)
	assert.True(t, target.EmbedsError)
	assert.Equal(t, []string{"Key"}, target.Methods.Names())
}

func TestScanTraversalCapabilities(t *testing.T) {
	info := parse(t, `package store

import "github.com/mimicgo/mimic/pkg/mimic"

type Bag interface {
	mimic.Traversable
	Size() int
}

type Cursor interface {
	mimic.Iterator
}

type Table interface {
	mimic.IteratorFactory
}
`)

	bag, _ := info.Target("Bag")
	assert.True(t, bag.EmbedsTraversable)
	assert.False(t, bag.EmbedsIterator)

	cursor, _ := info.Target("Cursor")
	assert.True(t, cursor.EmbedsIterator)
	assert.ElementsMatch(t, []string{"Next", "Value"}, cursor.Methods.Names())

	table, _ := info.Target("Table")
	assert.True(t, table.EmbedsIteratorFactory)
	assert.Contains(t, table.Methods.Names(), "Iterate")
}

func TestScanUnexportedInterfaceMethodSeals(t *testing.T) {
	info := parse(t, `package store

type Guarded interface {
	Exported() int
	hidden() int
}
`)

	target, ok := info.Target("Guarded")
	require.True(t, ok)
	assert.Equal(t, TargetSealed, target.Kind)
	assert.NotEmpty(t, target.SealedReason)
}

func TestScanStructWithMethodsAndConstructor(t *testing.T) {
	info := parse(t, `package store

type Repo struct {
	items map[string][]byte
	Label string
}

func NewRepo() *Repo { return &Repo{} }

func (r *Repo) Save(id string, data []byte) error { return nil }

func (r *Repo) Clone() *Repo { return r }
`)

	target, ok := info.Target("Repo")
	require.True(t, ok)
	assert.Equal(t, TargetStruct, target.Kind)
	assert.False(t, target.Opaque)
	assert.Equal(t, "NewRepo", target.Constructor)
	assert.True(t, target.HasClone)
	assert.False(t, target.CloneFinal)
}

func TestScanOpaqueStruct(t *testing.T) {
	info := parse(t, `package store

type Snapshot struct {
	data  []byte
	taken int64
}
`)

	target, ok := info.Target("Snapshot")
	require.True(t, ok)
	assert.True(t, target.Opaque)
}

func TestScanFinalMethodDirective(t *testing.T) {
	info := parse(t, `package store

type Repo struct{}

//mimic::final
func (r *Repo) Save(id string) error { return nil }

func (r *Repo) Load(id string) ([]byte, error) { return nil, nil }
`)

	target, ok := info.Target("Repo")
	require.True(t, ok)

	save, ok := target.Methods.Get("Save")
	require.True(t, ok)
	assert.True(t, save.Final)

	load, ok := target.Methods.Get("Load")
	require.True(t, ok)
	assert.False(t, load.Final)

	// final directives never surface as package directives
	assert.Empty(t, info.Directives)
}

func TestScanEnumeration(t *testing.T) {
	info := parse(t, `package store

type Level int

const (
	LevelLow Level = iota
	LevelHigh
)
`)

	target, ok := info.Target("Level")
	require.True(t, ok)
	assert.Equal(t, TargetEnumeration, target.Kind)
}

func TestScanUnexportedTypeSeals(t *testing.T) {
	info := parse(t, `package store

type secret struct {
	Value int
}
`)

	target, ok := info.Target("secret")
	require.True(t, ok)
	assert.Equal(t, TargetSealed, target.Kind)
}

func TestScanCollectsDirectives(t *testing.T) {
	info := parse(t, `package store

//mimic::double Repo -Kind=stub
type Repo interface {
	Save(id string) error
}

//mimic::intersection Repo,Extra
type Extra interface {
	Extend() bool
}
`)

	require.Len(t, info.Directives, 2)
	assert.Equal(t, "Repo", info.Directives[0].Target)
}

func TestScanDeclaredNames(t *testing.T) {
	info := parse(t, `package store

type Repo interface{}

var DefaultRepo Repo

const MaxItems = 64

func Reset() {}
`)

	for _, name := range []string{"Repo", "DefaultRepo", "MaxItems", "Reset"} {
		assert.True(t, info.NameExists(name), name)
	}
	assert.False(t, info.NameExists("Unknown"))
}

func TestParseDirectorySkipsListedFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("repo.go", "package store\n\ntype Repo interface {\n\tSave(id string) error\n}\n")
	write("doubles.go", "package store\n\ntype MockRepo struct{}\n")

	info, err := NewScanner().ParseDirectory(dir, "doubles.go")
	require.NoError(t, err)

	assert.True(t, info.NameExists("Repo"))
	assert.False(t, info.NameExists("MockRepo"), "skipped files must not claim names")
}

func TestEligibility(t *testing.T) {
	assert.False(t, CanDouble(models.MethodDescriptor{Name: "hidden"}), "unexported")
	assert.False(t, CanDouble(models.MethodDescriptor{Name: "Mimic"}), "reserved")
	assert.False(t, CanDouble(models.MethodDescriptor{Name: "Save", Final: true}), "final")
	assert.True(t, CanDouble(models.MethodDescriptor{Name: "Save"}))
}
