package directives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mimicgo/mimic/internal/errors"
)

func TestIsDirective(t *testing.T) {
	assert.True(t, IsDirective("//mimic::double Repo"))
	assert.True(t, IsDirective("// mimic::final"))
	assert.False(t, IsDirective("// plain comment"))
	assert.False(t, IsDirective("//go:generate stringer -type=Kind"))
}

func TestParseDoubleDirective(t *testing.T) {
	parser := NewParser()

	directive, err := parser.Parse("//mimic::double Repo -Kind=stub -Methods=Save,Load -Name=FakeRepo", errors.SourceLocation{})
	require.NoError(t, err)

	assert.Equal(t, DirectiveDouble, directive.Type)
	assert.Equal(t, "Repo", directive.Target)
	assert.Equal(t, "stub", directive.Param("Kind", ""))
	assert.Equal(t, "FakeRepo", directive.Param("Name", ""))
	assert.Equal(t, []string{"Save", "Load"}, directive.MethodList())
}

func TestParseDirectiveDefaults(t *testing.T) {
	parser := NewParser()

	directive, err := parser.Parse("//mimic::double Repo", errors.SourceLocation{})
	require.NoError(t, err)

	assert.Equal(t, "mock", directive.Param("Kind", "mock"))
	assert.Nil(t, directive.MethodList(), "absent -Methods must stay nil")
	assert.False(t, directive.Flag("NoReturns"))
}

func TestParseToleratesGofmtSpacing(t *testing.T) {
	parser := NewParser()

	// gofmt may rewrite //mimic:: inside a doc comment to // mimic::
	directive, err := parser.Parse("// mimic::double Repo -Kind=stub", errors.SourceLocation{})
	require.NoError(t, err)
	assert.Equal(t, "Repo", directive.Target)
}

func TestParseFlags(t *testing.T) {
	parser := NewParser()

	directive, err := parser.Parse("//mimic::double Repo -NoReturns", errors.SourceLocation{})
	require.NoError(t, err)
	assert.True(t, directive.Flag("NoReturns"))
}

func TestParseIntersection(t *testing.T) {
	parser := NewParser()

	directive, err := parser.Parse("//mimic::intersection Reader,Writer -Kind=mock", errors.SourceLocation{})
	require.NoError(t, err)

	assert.Equal(t, DirectiveIntersection, directive.Type)
	assert.Equal(t, []string{"Reader", "Writer"}, directive.Interfaces())
}

func TestParseIntersectionRequiresTwoInterfaces(t *testing.T) {
	parser := NewParser()

	_, err := parser.Parse("//mimic::intersection Reader", errors.SourceLocation{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.RuntimeErrorCode))
}

func TestParseFinal(t *testing.T) {
	parser := NewParser()

	directive, err := parser.Parse("//mimic::final", errors.SourceLocation{})
	require.NoError(t, err)
	assert.Equal(t, DirectiveFinal, directive.Type)

	_, err = parser.Parse("//mimic::final Save", errors.SourceLocation{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.SyntaxErrorCode))
}

func TestParseErrors(t *testing.T) {
	parser := NewParser()

	cases := []struct {
		name    string
		comment string
	}{
		{"unknown keyword", "//mimic::proxy Repo"},
		{"missing target", "//mimic::double"},
		{"target cannot be a flag", "//mimic::double -Kind=mock"},
		{"unknown parameter", "//mimic::double Repo -Speed=fast"},
		{"unknown flag", "//mimic::double Repo -Fast"},
		{"bad kind", "//mimic::double Repo -Kind=spy"},
		{"bad clone policy", "//mimic::double Repo -Clone=maybe"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parser.Parse(tc.comment, errors.SourceLocation{})
			assert.Error(t, err)
		})
	}
}

func TestParseAttachesLocation(t *testing.T) {
	parser := NewParser()
	loc := errors.SourceLocation{File: "repo.go", Line: 12}

	directive, err := parser.Parse("//mimic::double Repo", loc)
	require.NoError(t, err)
	assert.Equal(t, loc, directive.Location)
}
