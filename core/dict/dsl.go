package dict

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/markalign/core/errors"
)

// The dictionary DSL is a line-oriented list of entries:
//
//	# places
//	name "New York City" kind place
//	name "Paris" kind place
//	name "Boston"
//
// Kind labels are bare identifiers; names are quoted strings.

//nolint:govet // participle grammar tags are not standard struct tags
type dslFile struct {
	Entries []*dslEntry `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type dslEntry struct {
	Name string `"name" @String`
	Kind string `( "kind" @Ident )?`
}

// dslLexer defines the lexer for dictionary DSL files.
var dslLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Ident", Pattern: `[a-zA-Z][a-zA-Z0-9_-]*`},
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// dslParser is the participle parser for dictionary DSL files.
var dslParser = participle.MustBuild[dslFile](
	participle.Lexer(dslLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
)

// ParseDSL parses a dictionary DSL document. The path is used for error
// reporting only and may be empty.
func ParseDSL(path string, data []byte) (*Dictionary, error) {
	file, err := dslParser.ParseBytes(path, data)
	if err != nil {
		return nil, &errors.ParseError{
			Format:  "dictionary",
			Path:    path,
			Offset:  -1,
			Message: "invalid DSL",
			Err:     err,
		}
	}
	d := New()
	for _, e := range file.Entries {
		if err := d.Add(Entry{Name: e.Name, Kind: e.Kind}); err != nil {
			return nil, err
		}
	}
	return d, nil
}
