// Package parse is the external Parse Adapter named in spec.md §1/§2: a
// concrete grammar (github.com/alecthomas/participle/v2, grounded on
// kanso-lang-kanso's struct-tag grammar) plus the tree-walking code that
// turns the parsed form into SymbolTable/ItemTable/node.Value graphs
// (original_source/src/parse/{parse,symbol,symbols,item,kind,function,
// other}.rs).
package parse

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// lucentLexer tokenizes `.lc` source. Comments and whitespace are elided;
// everything else is handed to the grammar below.
var lucentLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"])*"`},
	{Name: "Rune", Pattern: `'(\\.|[^'])'`},
	{Name: "Float", Pattern: `\d+\.\d+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `==|!=|<=|>=|&&|\|\||<<|>>|::|->|[-+*/%=<>!&|^~.,;:(){}\[\]@#]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// grammar is built once at package init and reused by every parse.
var grammar = participle.MustBuild[File](
	participle.Lexer(lucentLexer),
	participle.Unquote("String"),
	participle.Elide("Comment", "Whitespace"),
	participle.UseLookahead(2),
)

// File is the parsed form of a whole `.lc` source file: a flat sequence of
// top-level items (modules nest their own Items recursively).
type File struct {
	Items []*Item `@@*`
}

// Item is one top-level (or module-nested) declaration.
type Item struct {
	Annotations []*Annotation    `@@*`
	Module      *ModuleDecl      `( @@`
	Function    *FunctionDecl    `| @@`
	Data        *DataDecl        `| @@`
	Static      *StaticDecl      `| @@`
	Load        *LoadDecl        `| @@`
	Use         *UseDecl         `| @@`
	Global      *GlobalAnnotation `| @@ )`
}

// Annotation is a `@name` or `@name(value)` attribute preceding an item.
type Annotation struct {
	Name  string `"@" @Ident`
	Value *Expr  `( "(" @@ ")" )?`
}

// GlobalAnnotation is a standalone `@name = value;` binding not attached to
// any item (original_source/src/parse/other.rs `global_annotations`).
type GlobalAnnotation struct {
	Name  string `"@" @Ident "="`
	Value *Expr  `@@ ";"`
}

// ModuleDecl is an inline submodule: `module name { ...items... }`.
type ModuleDecl struct {
	Name  string  `"module" @Ident "{"`
	Items []*Item `@@* "}"`
}

// Param is one function parameter: `name: type`.
type Param struct {
	Name string    `@Ident ":"`
	Type *TypeExpr `@@`
}

// Signature is the parsed parameter/return list shared by `fn` and the
// `load ... as` function form.
type Signature struct {
	Params []*Param  `"(" ( @@ ( "," @@ )* )? ")"`
	Return *TypeExpr `( "->" @@ )?`
}

// FunctionDecl is `fn name(params) -> ret = value`.
type FunctionDecl struct {
	Name      string     `"fn" @Ident`
	Signature *Signature `@@`
	Value     *Expr      `"=" @@ ";"?`
}

// Field is one structure field: `name: type`.
type Field struct {
	Name string    `@Ident ":"`
	Type *TypeExpr `@@`
}

// DataDecl is a structure declaration: `data name { field: type, ... }`.
type DataDecl struct {
	Name   string   `"data" @Ident "{"`
	Fields []*Field `( @@ ( "," @@ )* ","? )? "}"`
}

// StaticDecl is `static name: type = value;` (type and/or value required,
// original_source/src/parse/parse.rs "static variable has no type").
type StaticDecl struct {
	Name  string    `"static" @Ident`
	Type  *TypeExpr `( ":" @@ )?`
	Value *Expr     `( "=" @@ )? ";"`
}

// LoadTarget is the right-hand side of `load name = ...;`: either a bare
// library string (`load libc = "libc.so";`) or a dotted symbol path with an
// explicit local form (`load f = path.to.sym as fn(...) -> T;` /
// `... as static T;`).
type LoadTarget struct {
	Library   *string    `@String`
	Path      *PathExpr  `| @@`
	AsStatic  *TypeExpr  `( "as" "static" @@`
	AsName    string     `| "as" @Ident`
	AsSig     *Signature `@@ )?`
}

// LoadDecl is the `load` item (original_source/src/parse/symbol.rs `load`,
// /item.rs `HLoadFunction`/`HLoadStatic`).
type LoadDecl struct {
	Name   string      `"load" @Ident "="`
	Target *LoadTarget `@@ ";"`
}

// UseDecl imports a path, optionally renamed, optionally wildcarded
// (original_source/src/parse/parse.rs "use").
type UseDecl struct {
	Path     *PathExpr `"use" @@`
	Wildcard bool      `( @"."? "*"`
	As       *string   `| "as" @Ident )? ";"`
}

// PathExpr is a `::`-free, dot-joined sequence of identifiers (`a.b.c`).
type PathExpr struct {
	Segments []string `@Ident ( "." @Ident )*`
}

// TypeExpr is the parsed type grammar (original_source/src/parse/kind.rs).
type TypeExpr struct {
	Pointer   *TypeExpr  `( "*" @@`
	SliceOf   *TypeExpr  `| "[" "]" @@`
	ArrayOf   *ArrayType `| "[" @@`
	Signature *Signature `| "fn" @@`
	Path      *PathExpr  `| @@ )`
}

// ArrayType is `[element; size]`.
type ArrayType struct {
	Element *TypeExpr `@@ ";"`
	Size    *Expr     `@@ "]"`
}
