package node

import "lucent/src/span"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// SymbolKey is one parse-order entry in a SymbolTable (spec.md §4.2
// "SymbolTable"), grounded on original_source/src/parse/symbol.rs
// `SymbolKey`. Function carries an overload index since a module may
// declare several overloads under one name.
type SymbolKey interface {
	isSymbolKey()
}

// SymModuleKey names a child module.
type SymModuleKey struct{ Name Identifier }

// SymFunctionKey names one overload of a function.
type SymFunctionKey struct {
	Name  Identifier
	Index int
}

// SymStructureKey names a structure declaration.
type SymStructureKey struct{ Name Identifier }

// SymStaticKey names a static declaration.
type SymStaticKey struct{ Name Identifier }

// SymLibraryKey names a `load "..."` library block.
type SymLibraryKey struct{ Name Identifier }

func (SymModuleKey) isSymbolKey()    {}
func (SymFunctionKey) isSymbolKey()  {}
func (SymStructureKey) isSymbolKey() {}
func (SymStaticKey) isSymbolKey()    {}
func (SymLibraryKey) isSymbolKey()   {}

// ModuleLocation distinguishes an inline submodule (`module m { ... }`)
// from one brought in via `use "file.lc"` (spec.md §4.2).
type ModuleLocation interface {
	isModuleLocation()
}

// ModuleInline is a submodule nested directly in the same file.
type ModuleInline struct{ Table *SymbolTable }

// ModuleExternal is a submodule backed by another source file.
type ModuleExternal struct{ File string }

func (ModuleInline) isModuleLocation()   {}
func (ModuleExternal) isModuleLocation() {}

// ModuleEntry pairs a module's declaration span with its location.
type ModuleEntry struct {
	Span     span.Item
	Location ModuleLocation
}

// SymbolTable enumerates the names declared directly within one module,
// in source order, without resolving any of them (spec.md §4.2
// "SymbolTable"). It is grounded on
// original_source/src/parse/symbol.rs `SymbolTable`. A SymbolTable is
// rebuilt on every edit to its file (spans move), but the query engine
// only invalidates dependents when Equal reports a semantic change,
// mirroring the original's span-transparent PartialEq on TSpan.
type SymbolTable struct {
	Symbols    []SymbolKey
	Modules    map[Identifier]ModuleEntry
	Functions  map[Identifier][]span.Item
	Structures map[Identifier]span.Item
	Statics    map[Identifier]span.Item
	Libraries  map[Identifier]span.Item
}

// NewSymbolTable returns an empty table ready for population by the
// parser.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Modules:    make(map[Identifier]ModuleEntry),
		Functions:  make(map[Identifier][]span.Item),
		Structures: make(map[Identifier]span.Item),
		Statics:    make(map[Identifier]span.Item),
		Libraries:  make(map[Identifier]span.Item),
	}
}

// Equal reports whether two tables declare the same names in the same
// order, ignoring source spans (spec.md §4.2, §9 "invalidation only
// propagates on semantic change"). Inline module locations recurse;
// external locations compare by file path only.
func (t *SymbolTable) Equal(o *SymbolTable) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.Symbols) != len(o.Symbols) {
		return false
	}
	for i, k := range t.Symbols {
		if k != o.Symbols[i] {
			return false
		}
	}
	if len(t.Modules) != len(o.Modules) {
		return false
	}
	for name, entry := range t.Modules {
		other, ok := o.Modules[name]
		if !ok || !locationEqual(entry.Location, other.Location) {
			return false
		}
	}
	if len(t.Functions) != len(o.Functions) {
		return false
	}
	for name, overloads := range t.Functions {
		if len(o.Functions[name]) != len(overloads) {
			return false
		}
	}
	if len(t.Structures) != len(o.Structures) {
		return false
	}
	for name := range t.Structures {
		if _, ok := o.Structures[name]; !ok {
			return false
		}
	}
	if len(t.Statics) != len(o.Statics) {
		return false
	}
	for name := range t.Statics {
		if _, ok := o.Statics[name]; !ok {
			return false
		}
	}
	if len(t.Libraries) != len(o.Libraries) {
		return false
	}
	for name := range t.Libraries {
		if _, ok := o.Libraries[name]; !ok {
			return false
		}
	}
	return true
}

func locationEqual(a, b ModuleLocation) bool {
	switch a := a.(type) {
	case ModuleInline:
		b, ok := b.(ModuleInline)
		return ok && a.Table.Equal(b.Table)
	case ModuleExternal:
		b, ok := b.(ModuleExternal)
		return ok && a.File == b.File
	default:
		return false
	}
}

// ----------------------------
// ----- Resolved items -----
// ----------------------------

// Annotations holds `@name(value)` attribute values recognized by later
// stages (spec.md SPEC_FULL supplement: `@load`/`@virtual`/`is_root`);
// only bare integer-literal values are captured (original_source/src/
// node/address.rs's own annotation values are likewise only ever read
// back as a raw address constant).
type Annotations map[string]int64

// HModule is the resolved payload of a module item (spec.md §4.2
// "ItemTable").
type HModule struct {
	Path        Path
	Annotations Annotations
}

// HStructureField is one field of a resolved structure.
type HStructureField struct {
	Name Identifier
	Type HType
}

// HData is the resolved payload of a structure declaration.
type HData struct {
	Path   Path
	Fields []HStructureField
	Values *Value
}

// HFunction is a function declared and defined in this module.
type HFunction struct {
	Signature   HSignature
	Parameters  []Identifier
	Body        HIndex
	Values      *Value
	IsRoot      bool // spec.md supplement: `is_root` keeps the function live through dead-code elimination regardless of reachability.
	Annotations Annotations
}

// HLoadFunction is a function signature brought in via `load`, with no
// local body (spec.md supplement: foreign/`load` declarations).
type HLoadFunction struct {
	Signature HSignature
	Library   *Path
}

// PFunction is either a locally defined function or a loaded signature
// (original_source/src/parse/item.rs `Universal<HFunction, HLoadFunction>`).
type PFunction interface {
	isPFunction()
	Signature() HSignature
}

// PFunctionLocal wraps a local HFunction.
type PFunctionLocal struct{ Function *HFunction }

// PFunctionLoad wraps a loaded HLoadFunction.
type PFunctionLoad struct{ Function *HLoadFunction }

func (PFunctionLocal) isPFunction()      {}
func (PFunctionLoad) isPFunction()       {}
func (p PFunctionLocal) Signature() HSignature { return p.Function.Signature }
func (p PFunctionLoad) Signature() HSignature  { return p.Function.Signature }

// HStatic is a static variable defined in this module.
type HStatic struct {
	Type        HType
	Init        *HIndex
	Values      *Value
	Annotations Annotations
}

// HLoadStatic is a static variable brought in via `load`.
type HLoadStatic struct {
	Type    HType
	Library *Path
}

// PStatic is either a local or loaded static.
type PStatic interface {
	isPStatic()
}

// PStaticLocal wraps a local HStatic.
type PStaticLocal struct{ Static *HStatic }

// PStaticLoad wraps a loaded HLoadStatic.
type PStaticLoad struct{ Static *HLoadStatic }

func (PStaticLocal) isPStatic() {}
func (PStaticLoad) isPStatic()  {}

// HLibrary is the resolved payload of a `load "name.so"` block.
type HLibrary struct{ Name string }

// ItemTable holds the resolved items directly declared within one module
// (spec.md §4.2 "ItemTable"), grounded on
// original_source/src/parse/item.rs `ItemTable`. Only items within the
// same source file are reachable through a given table; an inline
// submodule's own ItemTable is looked up through its parent.
type ItemTable struct {
	Module     *HModule
	Modules    map[Identifier]*ItemTable
	Functions  map[Identifier][]PFunction
	Structures map[Identifier]*HData
	Statics    map[Identifier]PStatic
	Libraries  map[Identifier]*HLibrary
	Inclusions *Inclusions
}

// NewItemTable returns an empty table for module, scoped by inclusions.
func NewItemTable(module *HModule, inclusions *Inclusions) *ItemTable {
	return &ItemTable{
		Module:     module,
		Modules:    make(map[Identifier]*ItemTable),
		Functions:  make(map[Identifier][]PFunction),
		Structures: make(map[Identifier]*HData),
		Statics:    make(map[Identifier]PStatic),
		Libraries:  make(map[Identifier]*HLibrary),
		Inclusions: inclusions,
	}
}
