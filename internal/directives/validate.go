package directives

import (
	"strings"

	"github.com/mimicgo/mimic/internal/errors"
)

// knownParams maps each directive type to the parameter names it accepts
var knownParams = map[DirectiveType]map[string]bool{
	DirectiveDouble: {
		"Kind":        true,
		"Methods":     true,
		"Name":        true,
		"Clone":       true,
		"Constructor": true,
	},
	DirectiveIntersection: {
		"Kind": true,
		"Name": true,
	},
}

// knownFlags maps each directive type to the bare flags it accepts
var knownFlags = map[DirectiveType]map[string]bool{
	DirectiveDouble:       {"NoReturns": true},
	DirectiveIntersection: {"NoReturns": true},
}

func validate(d *Directive, loc errors.SourceLocation) error {
	for key := range d.Params {
		if !knownParams[d.Type][key] {
			return errors.Newf(errors.SyntaxErrorCode,
				"unknown parameter -%s for mimic::%s", key, d.Type).WithLocation(loc)
		}
	}
	for name := range d.Flags {
		if !knownFlags[d.Type][name] {
			return errors.Newf(errors.SyntaxErrorCode,
				"unknown flag -%s for mimic::%s", name, d.Type).WithLocation(loc)
		}
	}

	if kind, ok := d.Params["Kind"]; ok {
		if kind != "mock" && kind != "stub" {
			return errors.Newf(errors.SyntaxErrorCode,
				"invalid -Kind=%s, want mock or stub", kind).WithLocation(loc)
		}
	}

	if clone, ok := d.Params["Clone"]; ok {
		if clone != "double" && clone != "proxy" && clone != "forbid" {
			return errors.Newf(errors.SyntaxErrorCode,
				"invalid -Clone=%s, want double, proxy or forbid", clone).WithLocation(loc)
		}
	}

	if d.Type == DirectiveIntersection {
		if len(strings.Split(d.Target, ",")) < 2 {
			return errors.New(errors.RuntimeErrorCode,
				"mimic::intersection requires at least two interfaces").WithLocation(loc)
		}
	}

	return nil
}

// MethodList splits the -Methods parameter into names. Returns nil when the
// parameter was absent, distinguishing "all eligible methods" from an
// explicitly empty list.
func (d *Directive) MethodList() []string {
	raw, ok := d.Params["Methods"]
	if !ok {
		return nil
	}
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

// Interfaces splits an intersection target into its interface names
func (d *Directive) Interfaces() []string {
	parts := strings.Split(d.Target, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}
