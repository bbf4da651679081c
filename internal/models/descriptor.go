package models

import (
	"fmt"
	"go/ast"
	"go/types"
	"strings"
)

// Parameter represents one parameter of a doubled method
type Parameter struct {
	Name     string // parameter name ("arg0", "arg1"... when the source omits names)
	Type     string // Go source text of the type, relative to the target's package
	Variadic bool   // whether this is a trailing ...T parameter
}

// MethodDescriptor is an immutable snapshot of one method signature,
// sufficient to regenerate forwarding source for it and to describe it
// to the runtime configuration facility.
type MethodDescriptor struct {
	Name       string      // method name, unique within a MethodSet
	Params     []Parameter // ordered parameters
	Returns    []string    // Go source text of each result type
	Permissive bool        // synthesized for a name not present on the target
	Final      bool        // marked non-overridable via a mimic::final directive
}

// NewMethodDescriptor captures a method signature from its AST function type.
// Parameters without names are given positional ones so the generated
// forwarding body can reference them.
func NewMethodDescriptor(name string, funcType *ast.FuncType) MethodDescriptor {
	desc := MethodDescriptor{Name: name}

	if funcType.Params != nil {
		position := 0
		for _, field := range funcType.Params.List {
			typeText := types.ExprString(field.Type)
			variadic := false
			if ellipsis, ok := field.Type.(*ast.Ellipsis); ok {
				variadic = true
				typeText = types.ExprString(ellipsis.Elt)
			}

			if len(field.Names) == 0 {
				desc.Params = append(desc.Params, Parameter{
					Name:     fmt.Sprintf("arg%d", position),
					Type:     typeText,
					Variadic: variadic,
				})
				position++
				continue
			}
			for _, ident := range field.Names {
				paramName := ident.Name
				if paramName == "" || paramName == "_" {
					paramName = fmt.Sprintf("arg%d", position)
				}
				desc.Params = append(desc.Params, Parameter{
					Name:     paramName,
					Type:     typeText,
					Variadic: variadic,
				})
				position++
			}
		}
	}

	if funcType.Results != nil {
		for _, field := range funcType.Results.List {
			typeText := types.ExprString(field.Type)
			count := len(field.Names)
			if count == 0 {
				count = 1
			}
			for i := 0; i < count; i++ {
				desc.Returns = append(desc.Returns, typeText)
			}
		}
	}

	return desc
}

// NewPermissiveDescriptor synthesizes a descriptor for a method name that
// does not exist on the target: variadic untyped arguments, single untyped
// return. Used for forward-declared test scaffolding.
func NewPermissiveDescriptor(name string) MethodDescriptor {
	return MethodDescriptor{
		Name:       name,
		Params:     []Parameter{{Name: "args", Type: "any", Variadic: true}},
		Returns:    []string{"any"},
		Permissive: true,
	}
}

// IsExported reports whether the method name is exported. Unexported
// methods can never be doubled from a generated package.
func (d MethodDescriptor) IsExported() bool {
	return ast.IsExported(d.Name)
}

// ParamDecl renders the parameter list as it appears in a func declaration,
// e.g. "ctx context.Context, ids ...int".
func (d MethodDescriptor) ParamDecl() string {
	parts := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		if p.Variadic {
			parts = append(parts, fmt.Sprintf("%s ...%s", p.Name, p.Type))
		} else {
			parts = append(parts, fmt.Sprintf("%s %s", p.Name, p.Type))
		}
	}
	return strings.Join(parts, ", ")
}

// ArgList renders the argument names for a forwarding call,
// e.g. "ctx, ids". Variadic parameters are passed as a slice value; the
// dispatch path receives them as a single argument.
func (d MethodDescriptor) ArgList() string {
	parts := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		parts = append(parts, p.Name)
	}
	return strings.Join(parts, ", ")
}

// ReturnDecl renders the result list for a func declaration,
// e.g. "(string, error)". Empty for niladic results.
func (d MethodDescriptor) ReturnDecl() string {
	switch len(d.Returns) {
	case 0:
		return ""
	case 1:
		return d.Returns[0]
	default:
		return "(" + strings.Join(d.Returns, ", ") + ")"
	}
}

// Signature renders the full method signature without the receiver,
// e.g. "Charge(ctx context.Context, amount int) (string, error)".
func (d MethodDescriptor) Signature() string {
	ret := d.ReturnDecl()
	if ret == "" {
		return fmt.Sprintf("%s(%s)", d.Name, d.ParamDecl())
	}
	return fmt.Sprintf("%s(%s) %s", d.Name, d.ParamDecl(), ret)
}
