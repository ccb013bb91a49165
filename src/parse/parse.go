package parse

import "lucent/src/node"

// ParseFile parses text (from path, used only for participle's error
// messages) into its grammar-level File form.
func ParseFile(path, text string) (*File, error) {
	return grammar.ParseString(path, text)
}

// ParseModule parses text as the root module at path and walks it into a
// SymbolTable/ItemTable pair, seeding a fresh Inclusions rooted at path
// (original_source/src/parse/parse.rs top-level entry point). Nested
// `module` items push/pop their own Inclusions frame as BuildModule
// recurses.
func ParseModule(path node.Path, text string) (*node.SymbolTable, *node.ItemTable, *node.Inclusions, error) {
	file, err := ParseFile(path.String(), text)
	if err != nil {
		return nil, nil, nil, err
	}
	inclusions := node.NewInclusions(path)
	sym, it, err := BuildModule(path, file.Items, inclusions)
	if err != nil {
		return nil, nil, nil, err
	}
	return sym, it, inclusions, nil
}
