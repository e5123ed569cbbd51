//go:build cgo

package symbols

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"flowmap/internal/lang"
)

// Indexer builds symbol indexes from source files using tree-sitter.
type Indexer struct {
	parser *lang.Parser
}

// NewIndexer creates a new symbol indexer.
func NewIndexer() *Indexer {
	return &Indexer{parser: lang.NewParser()}
}

// Build parses the file content and returns its symbol index. Unsupported
// file types and unparseable content yield an empty index, never an error:
// remapping degrades to whole-file search.
func (ix *Indexer) Build(ctx context.Context, path string, source []byte) *Index {
	index := NewIndex()

	ext := strings.ToLower(filepath.Ext(path))
	language, ok := lang.FromExtension(ext)
	if !ok {
		return index
	}

	root, err := ix.parser.Parse(ctx, source, language)
	if err != nil || root == nil {
		return index
	}

	walk(root, source, language, nil, index)
	return index
}

// walk visits every node, extending the dotted path at each named
// declaration. Anonymous constructs do not extend the path but their
// children are still visited, so a named function inside an anonymous
// closure keeps its enclosing named ancestors only.
func walk(node *sitter.Node, source []byte, language lang.Language, path []string, index *Index) {
	childPath := path

	if name, kind := declaration(node, source, language); name != "" {
		// Copy so sibling branches never share backing arrays.
		childPath = make([]string, 0, len(path)+1)
		childPath = append(childPath, path...)
		childPath = append(childPath, name)

		index.add(SymbolRange{
			Path:  strings.Join(childPath, "."),
			Start: int(node.StartPoint().Row) + 1,
			End:   int(node.EndPoint().Row) + 1,
			Kind:  kind,
		})
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil {
			walk(child, source, language, childPath, index)
		}
	}
}

// declaration reports the name and kind when node is a named declaration
// worth indexing, or "" when it is not (including anonymous constructs).
func declaration(node *sitter.Node, source []byte, language lang.Language) (string, string) {
	nodeType := node.Type()

	switch language {
	case lang.LangGo:
		switch nodeType {
		case "function_declaration":
			return fieldName(node, source), "function"
		case "method_declaration":
			return fieldName(node, source), "method"
		case "type_spec":
			return fieldName(node, source), "type"
		}

	case lang.LangJavaScript, lang.LangTypeScript, lang.LangTSX:
		switch nodeType {
		case "function_declaration", "generator_function_declaration":
			return fieldName(node, source), "function"
		case "class_declaration":
			return fieldName(node, source), "class"
		case "interface_declaration":
			return fieldName(node, source), "interface"
		case "method_definition":
			// Covers constructors and get/set accessors; the name field
			// is the property identifier either way.
			return fieldName(node, source), "method"
		case "variable_declarator":
			// const f = () => {} / const f = function () {} declare a
			// named callable; anything else bound to a variable is not a
			// symbol boundary.
			if value := node.ChildByFieldName("value"); value != nil {
				switch value.Type() {
				case "arrow_function", "function_expression", "function":
					return fieldName(node, source), "function"
				}
			}
		}

	case lang.LangPython:
		switch nodeType {
		case "function_definition":
			return fieldName(node, source), "function"
		case "class_definition":
			return fieldName(node, source), "class"
		}

	case lang.LangRust:
		switch nodeType {
		case "function_item":
			return fieldName(node, source), "function"
		case "struct_item", "enum_item":
			return fieldName(node, source), "type"
		case "trait_item":
			return fieldName(node, source), "interface"
		case "impl_item":
			// impl blocks have no name field; anchor on the implemented type.
			for i := 0; i < int(node.ChildCount()); i++ {
				child := node.Child(i)
				if child != nil && child.Type() == "type_identifier" {
					return text(child, source), "type"
				}
			}
		}

	case lang.LangJava:
		switch nodeType {
		case "class_declaration":
			return fieldName(node, source), "class"
		case "interface_declaration":
			return fieldName(node, source), "interface"
		case "enum_declaration":
			return fieldName(node, source), "type"
		case "method_declaration", "constructor_declaration":
			return fieldName(node, source), "method"
		}

	case lang.LangKotlin:
		switch nodeType {
		case "class_declaration", "object_declaration":
			return simpleIdentifier(node, source), "class"
		case "function_declaration":
			return simpleIdentifier(node, source), "function"
		}
	}

	return "", ""
}

// fieldName extracts the node's "name" field text.
func fieldName(node *sitter.Node, source []byte) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	return text(nameNode, source)
}

// simpleIdentifier finds the first simple_identifier child (Kotlin grammar
// has no name field on declarations).
func simpleIdentifier(node *sitter.Node, source []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == "simple_identifier" {
			return text(child, source)
		}
	}
	return ""
}

func text(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// IsAvailable returns whether structural indexing is available.
func IsAvailable() bool {
	return lang.IsAvailable()
}
