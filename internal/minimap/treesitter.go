package minimap

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// grammarSpec parameterizes the generic tree-sitter extractor for one
// grammar: which node kinds declare symbols, and which node kinds are call
// sites. The extractor itself is language-agnostic.
type grammarSpec struct {
	lang     string
	language *sitter.Language
	// declarations maps node kind to symbol kind ("function" or "class").
	// Functions nested directly inside a class surface as "method".
	declarations map[string]string
	// calls maps call-site node kind to the field holding the callee
	// expression ("" when the node itself names the callee).
	calls map[string]string
}

func grammars() map[string]grammarSpec {
	tsLang := sitter.NewLanguage(typescript.LanguageTypescript())

	ts := grammarSpec{
		language: tsLang,
		declarations: map[string]string{
			"function_declaration":           "function",
			"generator_function_declaration": "function",
			"method_definition":              "function",
			"class_declaration":              "class",
			"interface_declaration":          "type",
			"enum_declaration":               "type",
		},
		calls: map[string]string{
			"call_expression": "function",
			"new_expression":  "constructor",
		},
	}

	specs := map[string]grammarSpec{
		"python": {
			language: sitter.NewLanguage(python.Language()),
			declarations: map[string]string{
				"function_definition": "function",
				"class_definition":    "class",
			},
			calls: map[string]string{"call": "function"},
		},
		"typescript": ts,
		"javascript": ts, // same AST shape; the TypeScript grammar covers JS
		"ruby": {
			language: sitter.NewLanguage(ruby.Language()),
			declarations: map[string]string{
				"method":           "function",
				"singleton_method": "function",
				"class":            "class",
				"module":           "class",
			},
			calls: map[string]string{"call": "method"},
		},
		"rust": {
			language: sitter.NewLanguage(rust.Language()),
			declarations: map[string]string{
				"function_item": "function",
				"struct_item":   "type",
				"enum_item":     "type",
				"trait_item":    "type",
			},
			calls: map[string]string{"call_expression": "function"},
		},
		"java": {
			language: sitter.NewLanguage(java.Language()),
			declarations: map[string]string{
				"method_declaration":      "function",
				"constructor_declaration": "function",
				"class_declaration":       "class",
				"interface_declaration":   "type",
				"enum_declaration":        "type",
			},
			calls: map[string]string{
				"method_invocation":          "name",
				"object_creation_expression": "type",
			},
		},
		"c": {
			language: sitter.NewLanguage(c.Language()),
			declarations: map[string]string{
				"function_definition": "function",
				"struct_specifier":    "type",
				"enum_specifier":      "type",
			},
			calls: map[string]string{"call_expression": "function"},
		},
		"php": {
			language: sitter.NewLanguage(php.LanguagePHP()),
			declarations: map[string]string{
				"function_definition":   "function",
				"method_declaration":    "function",
				"class_declaration":     "class",
				"interface_declaration": "type",
			},
			calls: map[string]string{
				"function_call_expression": "function",
				"member_call_expression":   "name",
			},
		},
	}

	for lang, spec := range specs {
		spec.lang = lang
		specs[lang] = spec
	}
	return specs
}

// treeSitterExtractor walks one parse tree in pre-order, tracking the
// innermost enclosing declared symbol for call attribution. The walk order
// is the source declaration order, which keeps output deterministic.
type treeSitterExtractor struct {
	spec grammarSpec
}

func newTreeSitterExtractor(spec grammarSpec) *treeSitterExtractor {
	return &treeSitterExtractor{spec: spec}
}

type scopeEntry struct {
	name string
	kind string
}

func (e *treeSitterExtractor) Extract(content string) ([]Symbol, []CallEdge, bool, error) {
	source := []byte(content)

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.spec.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, nil, false, errParse
	}
	defer tree.Close()

	root := tree.RootNode()

	var (
		symbols   []Symbol
		calls     []CallEdge
		scope     []scopeEntry
		truncated bool
	)

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}

		pushed := false
		kind := node.Kind()

		if symKind, ok := e.spec.declarations[kind]; ok {
			name := declarationName(node, source)
			if name != "" {
				if symKind == "function" && len(scope) > 0 && scope[len(scope)-1].kind == "class" {
					symKind = "method"
				}
				if len(symbols) < maxSymbols {
					symbols = append(symbols, Symbol{
						Name:     name,
						Kind:     symKind,
						Line:     int(node.StartPosition().Row) + 1,
						Language: e.spec.lang,
					})
				} else {
					truncated = true
				}
				scope = append(scope, scopeEntry{name: name, kind: symKind})
				pushed = true
			}
		} else if field, ok := e.spec.calls[kind]; ok {
			callee := node
			if field != "" {
				callee = node.ChildByFieldName(field)
			}
			if name := calleeName(callee, source); name != "" {
				if len(calls) < maxCallEdges {
					calls = append(calls, CallEdge{
						Caller: enclosing(scope),
						Callee: name,
						Line:   int(node.StartPosition().Row) + 1,
					})
				} else {
					truncated = true
				}
			}
		}

		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i))
		}

		if pushed {
			scope = scope[:len(scope)-1]
		}
	}
	walk(root)

	if root.HasError() && len(symbols) == 0 && len(calls) == 0 {
		return nil, nil, false, errParse
	}
	return symbols, calls, truncated, nil
}

// declarationName resolves the declared name of a symbol node. Most grammars
// expose a "name" field; C routes through a declarator chain instead.
func declarationName(node *sitter.Node, source []byte) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return leafName(name, source)
	}
	if decl := node.ChildByFieldName("declarator"); decl != nil {
		return leafName(decl, source)
	}
	return ""
}

// calleeName resolves the textual callee of a call site, descending through
// attribute/member/scope wrappers until an identifier-like leaf remains.
// Unresolvable callees return "" and the edge is dropped.
func calleeName(node *sitter.Node, source []byte) string {
	return leafName(node, source)
}

func leafName(node *sitter.Node, source []byte) string {
	for node != nil {
		switch node.Kind() {
		case "identifier", "name", "constant", "field_identifier",
			"property_identifier", "type_identifier", "qualified_name":
			return nodeText(node, source)
		}

		next := firstField(node, "attribute", "property", "field", "name", "method", "declarator", "function", "constructor", "type")
		if next == nil {
			return ""
		}
		node = next
	}
	return ""
}

func firstField(node *sitter.Node, fields ...string) *sitter.Node {
	for _, f := range fields {
		if child := node.ChildByFieldName(f); child != nil {
			return child
		}
	}
	return nil
}

func enclosing(scope []scopeEntry) string {
	if len(scope) == 0 {
		return topLevelCaller
	}
	return scope[len(scope)-1].name
}

// nodeText extracts the text content of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}
