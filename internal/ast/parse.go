package ast

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// File is a parsed TypeScript source file.
type File struct {
	Path         string // absolute, slash separated
	RelativePath string // project relative, "./" prefixed
	Source       []byte
	Root         *Node
	TSX          bool
}

// Parser parses TypeScript and TSX sources into owned syntax trees.
type Parser struct {
	typescript *sitter.Language
	tsx        *sitter.Language
}

// NewParser creates a parser for both TypeScript grammars.
func NewParser() *Parser {
	return &Parser{
		typescript: sitter.NewLanguage(typescript.LanguageTypescript()),
		tsx:        sitter.NewLanguage(typescript.LanguageTSX()),
	}
}

// ParseFile parses source for the file at absPath. relPath is the path relative
// to the project root and is only carried along for FQN construction.
func (p *Parser) ParseFile(ctx context.Context, absPath, relPath string, source []byte) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(absPath))
	isTSX := ext == ".tsx" || ext == ".jsx"
	lang := p.typescript
	if isTSX {
		lang = p.tsx
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("failed to set language for %s: %w", absPath, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse typescript file: %s", absPath)
	}
	defer tree.Close()

	file := &File{
		Path:         filepath.ToSlash(absPath),
		RelativePath: relPath,
		Source:       source,
		TSX:          isTSX,
	}

	cursor := tree.RootNode().Walk()
	defer cursor.Close()
	file.Root = copyTree(cursor, file, nil, "")

	return file, nil
}

// ParseSource is a convenience for tests and tools that parse in-memory code.
func (p *Parser) ParseSource(absPath string, source string) (*File, error) {
	return p.ParseFile(context.Background(), absPath, "./"+filepath.Base(absPath), []byte(source))
}

// copyTree converts the subtree under the cursor into owned nodes.
func copyTree(cursor *sitter.TreeCursor, file *File, parent *Node, field string) *Node {
	tsNode := cursor.Node()
	start := tsNode.StartPosition()
	end := tsNode.EndPosition()

	node := &Node{
		Kind:      tsNode.Kind(),
		Field:     field,
		Named:     tsNode.IsNamed(),
		StartByte: int(tsNode.StartByte()),
		EndByte:   int(tsNode.EndByte()),
		Start:     Point{Line: int(start.Row), Column: int(start.Column)},
		End:       Point{Line: int(end.Row), Column: int(end.Column)},
		Parent:    parent,
		File:      file,
	}

	if cursor.GotoFirstChild() {
		for {
			child := cursor.Node()
			if child.Kind() != "comment" {
				c := copyTree(cursor, file, node, cursor.FieldName())
				c.index = len(node.Children)
				node.Children = append(node.Children, c)
			}
			if !cursor.GotoNextSibling() {
				break
			}
		}
		cursor.GotoParent()
	}

	if node.Kind == "class_body" || node.Kind == "export_statement" {
		reattachDecorators(node)
	}

	return node
}

// reattachDecorators moves decorators that the grammar places before a class
// member (or before an exported declaration) into the decorated node, so that
// every decorator is a child of what it decorates.
func reattachDecorators(n *Node) {
	var pending []*Node
	kept := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Kind == "decorator" {
			pending = append(pending, c)
			continue
		}
		target := c.Named && (n.Kind == "class_body" || c.Field == "declaration")
		if len(pending) > 0 && target {
			for _, d := range pending {
				d.Parent = c
				d.Field = "decorator"
			}
			c.Children = append(pending, c.Children...)
			reindex(c)
			pending = nil
		}
		kept = append(kept, c)
	}
	n.Children = append(kept, pending...)
	reindex(n)
}

func reindex(n *Node) {
	for i, c := range n.Children {
		c.index = i
	}
}
