package server

import (
	"regexp"

	"lucent/src/source"
)

// tokenLegend is spec.md §6's semantic token legend, verbatim and in
// order: the index of a name here is the token type index the protocol
// sends for every token of that kind.
var tokenLegend = []string{
	"keyword", "operator", "punctuation", "string", "number", "attribute",
	"property", "variable", "constant", "comment", "function", "global",
	"module", "type",
}

var keywords = map[string]bool{
	"fn": true, "data": true, "static": true, "load": true, "use": true,
	"module": true, "as": true, "if": true, "else": true, "while": true,
	"break": true, "continue": true, "return": true, "let": true,
	"true": true, "false": true, "null": true,
}

// tokenPattern re-lexes source text for highlighting purposes only, using
// the same token shapes parse/grammar.go's participle lexer recognizes
// (comment, string, rune, float, int, ident, punctuation, whitespace). A
// second, independent lexical pass rather than participle's own lexer is
// used here because Initialize never keeps the participle token stream
// around after a parse succeeds, and re-running the full grammar on every
// keystroke just to color text would defeat semantic tokens' purpose as a
// cheap, best-effort overlay.
var tokenPattern = regexp.MustCompile(
	`//[^\n]*` +
		`|"(\\.|[^"])*"` +
		`|'(\\.|[^'])'` +
		`|\d+\.\d+` +
		`|\d+` +
		`|[a-zA-Z_][a-zA-Z0-9_]*` +
		`|==|!=|<=|>=|&&|\|\||<<|>>|::|->` +
		`|[-+*/%=<>!&|^~.,;:(){}\[\]@#]`,
)

type semanticToken struct {
	line, col, length int
	kind              int
}

// legendIndex returns tokenLegend's index for name, or -1 for tokens the
// legend doesn't classify on their own (whitespace is never matched at all).
func legendIndex(name string) int {
	for i, n := range tokenLegend {
		if n == name {
			return i
		}
	}
	return -1
}

// scanTokens classifies every lexeme in text using one regexp pass and a
// handful of positional rules (an identifier right after "fn" is a
// function name; one right after "@" is an attribute; one right after
// "module" is a module name; anything else lower-case is a variable, and
// anything starting upper-case is treated as a type name, matching this
// language's `data Name { ... }` convention).
func scanTokens(file *source.File) []semanticToken {
	text := file.Text
	matches := tokenPattern.FindAllStringIndex(text, -1)

	var tokens []semanticToken
	prevWord := ""
	for _, m := range matches {
		lexeme := text[m[0]:m[1]]
		kind := classify(lexeme, prevWord)
		if kind >= 0 {
			line, col := file.Line(m[0])
			tokens = append(tokens, semanticToken{line: line - 1, col: col, length: len(lexeme), kind: kind})
		}
		if lexeme != "" && !isSpace(lexeme[0]) {
			prevWord = lexeme
		}
	}
	return tokens
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

func classify(lexeme, prevWord string) int {
	switch {
	case lexeme == "":
		return -1
	case lexeme[0] == '/':
		return legendIndex("comment")
	case lexeme[0] == '"' || lexeme[0] == '\'':
		return legendIndex("string")
	case lexeme[0] >= '0' && lexeme[0] <= '9':
		return legendIndex("number")
	case keywords[lexeme]:
		return legendIndex("keyword")
	case isIdent(lexeme):
		return classifyIdent(lexeme, prevWord)
	case isOperator(lexeme):
		return legendIndex("operator")
	default:
		return legendIndex("punctuation")
	}
}

func classifyIdent(lexeme, prevWord string) int {
	switch prevWord {
	case "fn":
		return legendIndex("function")
	case "module":
		return legendIndex("module")
	case "data":
		return legendIndex("type")
	case "@":
		return legendIndex("attribute")
	case "static":
		return legendIndex("global")
	}
	if lexeme[0] >= 'A' && lexeme[0] <= 'Z' {
		return legendIndex("type")
	}
	return legendIndex("variable")
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isOperator(s string) bool {
	switch s {
	case "==", "!=", "<=", ">=", "&&", "||", "<<", ">>", "->",
		"+", "-", "*", "/", "%", "=", "<", ">", "!", "&", "|", "^", "~":
		return true
	default:
		return false
	}
}

// encodeTokens converts tokens (already in source order) to the LSP
// semantic-tokens wire format: five uint32s per token, each field a delta
// from the previous token (deltaLine, deltaStartChar restarting at 0 on a
// new line, length, tokenType, tokenModifiers).
func encodeTokens(tokens []semanticToken) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)
	prevLine, prevCol := 0, 0
	for _, t := range tokens {
		deltaLine := t.line - prevLine
		deltaCol := t.col
		if deltaLine == 0 {
			deltaCol = t.col - prevCol
		}
		data = append(data, uint32(deltaLine), uint32(deltaCol), uint32(t.length), uint32(t.kind), 0)
		prevLine, prevCol = t.line, t.col
	}
	return data
}
