package directives

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/mimicgo/mimic/internal/errors"
)

// paramItem is one -Key or -Key=Value entry after the directive target
type paramItem struct {
	Flag     string `parser:"Dash @Ident"`
	HasValue bool   `parser:"@Equals?"`
	Value    string `parser:"(@Ident (@Comma @Ident)*)?"`
}

// paramList is the parameter tail of a directive
type paramList struct {
	Items []paramItem `parser:"@@*"`
}

// Parser parses mimic:: directive comments
type Parser struct {
	params *participle.Parser[paramList]
}

// NewParser creates a new directive parser
func NewParser() *Parser {
	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
		{Name: "Dash", Pattern: `-`},
		{Name: "Equals", Pattern: `=`},
		{Name: "Comma", Pattern: `,`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	params := participle.MustBuild[paramList](
		participle.Lexer(lex),
		participle.Elide("Whitespace"),
	)

	return &Parser{params: params}
}

// IsDirective reports whether a comment line carries a mimic:: prefix
func IsDirective(comment string) bool {
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(comment), "//"))
	return strings.HasPrefix(text, "mimic::")
}

// Parse parses a single comment line into a Directive
func (p *Parser) Parse(comment string, loc errors.SourceLocation) (*Directive, error) {
	keyword, remaining, err := splitDirective(comment)
	if err != nil {
		return nil, err.WithLocation(loc)
	}

	directive := &Directive{
		Params:   make(map[string]string),
		Flags:    make(map[string]bool),
		Location: loc,
		Raw:      comment,
	}

	switch keyword {
	case "double":
		directive.Type = DirectiveDouble
	case "intersection":
		directive.Type = DirectiveIntersection
	case "final":
		directive.Type = DirectiveFinal
	default:
		return nil, errors.Newf(errors.SyntaxErrorCode,
			"unknown directive 'mimic::%s'", keyword).WithLocation(loc)
	}

	// A final directive takes neither target nor parameters
	if directive.Type == DirectiveFinal {
		if remaining != "" {
			return nil, errors.New(errors.SyntaxErrorCode,
				"mimic::final takes no arguments").WithLocation(loc)
		}
		return directive, nil
	}

	// First field is the target; the rest is the parameter tail
	fields := strings.Fields(remaining)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "-") {
		return nil, errors.Newf(errors.SyntaxErrorCode,
			"mimic::%s requires a target type", keyword).WithLocation(loc)
	}
	directive.Target = fields[0]

	tail := strings.TrimSpace(strings.TrimPrefix(remaining, fields[0]))
	if tail == "" {
		return directive, validate(directive, loc)
	}

	parsed, perr := p.params.ParseString("", tail)
	if perr != nil {
		return nil, errors.Wrapf(errors.SyntaxErrorCode, perr,
			"malformed directive parameters %q", tail).WithLocation(loc)
	}

	for _, item := range parsed.Items {
		if item.HasValue {
			directive.Params[item.Flag] = item.Value
		} else {
			directive.Flags[item.Flag] = true
		}
	}

	return directive, validate(directive, loc)
}

// splitDirective strips the comment and mimic:: prefixes and returns the
// directive keyword plus everything after it
func splitDirective(comment string) (keyword, remaining string, err *errors.BaseError) {
	text := strings.TrimSpace(comment)
	if !strings.HasPrefix(text, "//") {
		return "", "", errors.New(errors.SyntaxErrorCode, "directive must start with '//'")
	}
	text = strings.TrimSpace(strings.TrimPrefix(text, "//"))

	if !strings.HasPrefix(text, "mimic::") {
		return "", "", errors.New(errors.SyntaxErrorCode, "directive must contain 'mimic::' prefix")
	}
	text = strings.TrimPrefix(text, "mimic::")

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", "", errors.New(errors.SyntaxErrorCode, "empty directive")
	}

	keyword = fields[0]
	remaining = strings.TrimSpace(strings.TrimPrefix(text, keyword))
	return keyword, remaining, nil
}
