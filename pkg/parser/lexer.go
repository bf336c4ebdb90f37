package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// hyphenatedKeywords is every reserved word in the unit-script grammar that
// contains a hyphen (BOS's multi-word keywords and axis literals are
// conventionally hyphenated: "call-script", "x-axis", and so on). Since a
// hyphen is not a valid identifier character, these need their own lexer
// rule; a plain Ident token would never produce them as a single token.
var hyphenatedKeywords = []string{
	"stop-spin", "wait-for-turn", "wait-for-move", "call-script", "start-script",
	"emit-sfx", "set-signal-mask", "attach-unit", "drop-unit", "dont-cache",
	"dont-shadow", "dont-shade", "play-sound", "static-var",
	"x-axis", "y-axis", "z-axis",
}

// caseInsensitiveTokens lists every lexer token whose text participle should
// compare against grammar literals ignoring case, matching the language's
// case-insensitive keywords (ast.Name.Key(), ast.ParseAxis).
var caseInsensitiveTokens = []string{"Ident", "Hyphenated"}

func buildLexer() lexer.Definition {
	hyphenPattern := `(?i)\b(` + joinAlternatives(hyphenatedKeywords) + `)\b`

	return lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "BlockComment", Pattern: `(?s)/\*.*?\*/`},
		// The preprocessor stitches #include'd files together by emitting
		// "#line N \"file\"" markers into the text it hands the parser, the
		// same convention a C preprocessor uses. It also passes through any
		// directive it doesn't itself model (#pragma, #warning) verbatim
		// rather than dropping it. None of these carry grammar meaning here
		// (diagnostic positions are resolved from the source map, not from
		// these markers), so the lexer elides a whole "#..." line like a
		// comment rather than the grammar having to know about each one.
		{Name: "LineDirective", Pattern: `#[^\n]*`},
		{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
		// Bracketed numeric constants must be tried before the Punct rule
		// matches a lone '<', '>', '[', or ']'.
		{Name: "AngularConst", Pattern: `<\s*(?:0[xX][0-9a-fA-F]+|[0-9]+\.[0-9]+|[0-9]+|\.[0-9]+)\s*>`},
		{Name: "LinearConst", Pattern: `\[\s*(?:0[xX][0-9a-fA-F]+|[0-9]+\.[0-9]+|[0-9]+|\.[0-9]+)\s*\]`},
		// Hyphenated keywords before Ident/Punct so "call-script" isn't
		// split into "call", "-", "script".
		{Name: "Hyphenated", Pattern: hyphenPattern},
		{Name: "HexInt", Pattern: `0[xX][0-9a-fA-F]+`},
		{Name: "Float", Pattern: `[0-9]+\.[0-9]+`},
		{Name: "Int", Pattern: `[0-9]+`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
		// Multi-character operators before the single-character Punct rule.
		{Name: "EqEq", Pattern: `==`},
		{Name: "NotEq", Pattern: `!=`},
		{Name: "LessEq", Pattern: `<=`},
		{Name: "GreaterEq", Pattern: `>=`},
		{Name: "AndAnd", Pattern: `&&`},
		{Name: "OrOr", Pattern: `\|\|`},
		{Name: "XorXor", Pattern: `\^\^`},
		{Name: "IncOp", Pattern: `\+\+`},
		{Name: "DecOp", Pattern: `--`},
		{Name: "Punct", Pattern: `[{}()\[\]<>+\-*/%!=&|^,;:.]`},
	})
}

func joinAlternatives(words []string) string {
	out := ""
	for i, w := range words {
		if i > 0 {
			out += "|"
		}
		out += w
	}
	return out
}
