// Package methodspan extracts declared method and function names with
// their line spans from source files, using tree-sitter grammars
// selected by language name.
package methodspan

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	forest "github.com/alexaandru/go-sitter-forest"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/covscope/covscope/pkg/safeconv"
)

// Sentinel errors for span extraction.
var (
	// ErrUnsupportedLanguage reports a language with no declaration
	// extraction support.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrGrammarNotAvailable reports a language whose tree-sitter
	// grammar could not be loaded.
	ErrGrammarNotAvailable = errors.New("tree-sitter grammar not available")
	// ErrNoRootNode reports a parse that produced no syntax tree.
	ErrNoRootNode = errors.New("no root node")
)

// Method is one declared method or function.
type Method struct {
	// Name is the declared identifier, without receiver, class, or
	// parameter decorations.
	Name string

	// StartLine and EndLine delimit the declaration, 1-based inclusive.
	StartLine int
	EndLine   int
}

// declarationTypes maps a grammar name to the node types that declare a
// method or function.
var declarationTypes = map[string]map[string]bool{
	"go":         {"function_declaration": true, "method_declaration": true},
	"java":       {"method_declaration": true, "constructor_declaration": true},
	"python":     {"function_definition": true},
	"javascript": {"function_declaration": true, "generator_function_declaration": true, "method_definition": true},
	"typescript": {"function_declaration": true, "generator_function_declaration": true, "method_definition": true},
	"c":          {"function_definition": true},
	"cpp":        {"function_definition": true},
	"c_sharp":    {"method_declaration": true, "constructor_declaration": true},
	"rust":       {"function_item": true},
	"ruby":       {"method": true, "singleton_method": true},
	"php":        {"function_definition": true, "method_declaration": true},
	"kotlin":     {"function_declaration": true},
	"scala":      {"function_definition": true},
}

// grammarAliases maps detected language names (linguist vocabulary,
// lowercased) to grammar names where the two differ.
var grammarAliases = map[string]string{
	"c++":    "cpp",
	"c#":     "c_sharp",
	"csharp": "c_sharp",
}

// GrammarName normalizes a detected language name to the matching
// tree-sitter grammar name.
func GrammarName(language string) string {
	name := strings.ToLower(strings.TrimSpace(language))
	if alias, ok := grammarAliases[name]; ok {
		return alias
	}

	return name
}

// Supported reports whether declaration extraction is available for the
// given language.
func Supported(language string) bool {
	_, ok := declarationTypes[GrammarName(language)]

	return ok
}

// Extract parses the source and returns its declared methods and
// functions, sorted by start line.
func Extract(ctx context.Context, language string, content []byte) ([]Method, error) {
	grammar := GrammarName(language)

	types, ok := declarationTypes[grammar]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}

	lang := loadGrammar(grammar)
	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrGrammarNotAvailable, grammar)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s source: %w", grammar, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, ErrNoRootNode
	}

	var methods []Method

	walk(root, func(node sitter.Node) {
		if !types[node.Type()] {
			return
		}

		name := declaredName(node, content)
		if name == "" {
			return
		}

		methods = append(methods, Method{
			Name:      name,
			StartLine: safeconv.MustUintToInt(node.StartPoint().Row) + 1,
			EndLine:   safeconv.MustUintToInt(node.EndPoint().Row) + 1,
		})
	})

	slices.SortFunc(methods, func(a, b Method) int {
		return cmp.Compare(a.StartLine, b.StartLine)
	})

	return methods, nil
}

// loadGrammar loads a tree-sitter grammar by name. The forest lookup
// panics on unknown names, which is reported as a nil grammar.
func loadGrammar(name string) (lang *sitter.Language) {
	defer func() {
		_ = recover() //nolint:errcheck // recover() returns any, not error
	}()

	return forest.GetLanguage(name)
}

// walk visits every named node in the tree.
func walk(root sitter.Node, visit func(sitter.Node)) {
	stack := []sitter.Node{root}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visit(node)

		for idx := range node.NamedChildCount() {
			stack = append(stack, node.NamedChild(idx))
		}
	}
}

// declaredName resolves the identifier of a declaration node. Most
// grammars expose a "name" field; C-family definitions nest the name
// inside declarator chains, and a few grammars place a bare identifier
// among the children.
func declaredName(node sitter.Node, source []byte) string {
	if name := fieldText(node, "name", source); name != "" {
		return name
	}

	decl := node.ChildByFieldName("declarator")
	for !decl.IsNull() {
		if name := fieldText(decl, "name", source); name != "" {
			return name
		}

		next := decl.ChildByFieldName("declarator")
		if next.IsNull() {
			break
		}

		decl = next
	}

	if !decl.IsNull() && decl.NamedChildCount() == 0 {
		return nodeText(decl, source)
	}

	for idx := range node.NamedChildCount() {
		child := node.NamedChild(idx)
		if strings.Contains(child.Type(), "identifier") && child.NamedChildCount() == 0 {
			return nodeText(child, source)
		}
	}

	return ""
}

func fieldText(node sitter.Node, field string, source []byte) string {
	child := node.ChildByFieldName(field)
	if child.IsNull() {
		return ""
	}

	return nodeText(child, source)
}

func nodeText(node sitter.Node, source []byte) string {
	start := safeconv.MustUintToInt(node.StartByte())
	end := safeconv.MustUintToInt(node.EndByte())

	if start > end || end > len(source) {
		return ""
	}

	return string(source[start:end])
}
