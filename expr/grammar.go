package expr

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Bits", Pattern: `:bits\b`},
	{Name: "At", Pattern: `@`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
})

// node is either a parenthesized operator or a literal.
type node struct {
	Pos lexer.Position

	Operator *operatorNode `parser:"\"(\" @@ \")\""`
	Literal  *literalNode  `parser:"| @@"`
}

type operatorNode struct {
	Pos lexer.Position

	Name     string  `parser:"@Ident"`
	Bits     bool    `parser:"@Bits?"`
	Version  string  `parser:"( At @Int )?"`
	Children []*node `parser:"@@*"`
}

type literalNode struct {
	Pos lexer.Position

	Value   string `parser:"@Int"`
	Version string `parser:"( At @Int )?"`
}

var exprParser = participle.MustBuild[node](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
)
