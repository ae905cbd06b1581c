package rust

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/viant/callflow/inspector/graph"
)

var testWord = regexp.MustCompile(`(^|[^\w])test([^\w]|$)`)

// builder populates a table for one unit while tracking lexical scope
type builder struct {
	*Inspector
	table   *graph.Table
	scope   *graph.Scope
	visited *graph.VisitedSet
}

// sourceFile represents a parsed file and the directory holding its child modules
type sourceFile struct {
	path      string
	src       []byte
	moduleDir string
}

// inspectFile reads, parses and registers a file; root is true for crate roots and
// files whose child modules live next to them (main.rs, lib.rs, mod.rs)
func (b *builder) inspectFile(ctx context.Context, path string, root bool) error {
	canonical, err := graph.Canonical(path)
	if err != nil {
		return &graph.SourceError{Path: path, Err: fmt.Errorf("%w: %w", graph.ErrUnreadableSource, err)}
	}
	if !b.visited.Visit(canonical) {
		b.logger.Debug("skipping visited file", "path", canonical, "unit", b.table.Unit)
		return nil
	}
	src, err := b.fs.DownloadWithURL(ctx, canonical)
	if err != nil {
		return &graph.SourceError{Path: canonical, Err: fmt.Errorf("%w: %w", graph.ErrUnreadableSource, err)}
	}
	tree, err := parse(ctx, src, canonical)
	if err != nil {
		return err
	}
	defer tree.Close()

	b.table.AddFile(canonical)
	file := &sourceFile{path: canonical, src: src, moduleDir: filepath.Dir(canonical)}
	if stem := strings.TrimSuffix(filepath.Base(canonical), ".rs"); !root && stem != "mod" {
		file.moduleDir = filepath.Join(file.moduleDir, stem)
	}
	return b.processItems(ctx, tree.RootNode(), file)
}

// processItems registers the items of a source file or module body
func (b *builder) processItems(ctx context.Context, node *sitter.Node, file *sourceFile) error {
	return forEachItem(node, file.src, func(item *sitter.Node, attributes []string) error {
		if !b.config.IncludeTests && isTestTagged(attributes) {
			return nil
		}
		switch item.Type() {
		case "function_item":
			b.addFunction(item, file, "")
		case "impl_item":
			b.processImpl(item, file)
		case "mod_item":
			return b.processModule(ctx, item, file, attributes)
		}
		return nil
	})
}

// processModule registers an inline module body or follows an out-of-line module file
func (b *builder) processModule(ctx context.Context, node *sitter.Node, file *sourceFile, attributes []string) error {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(file.src)
	if body := node.ChildByFieldName("body"); body != nil {
		b.scope.Push(name)
		defer b.scope.Pop()
		inline := *file
		inline.moduleDir = filepath.Join(file.moduleDir, name)
		return b.processItems(ctx, body, &inline)
	}
	if file.moduleDir == "" || file.path == defaultFilename {
		b.logger.Debug("skipping out-of-line module of in-memory source", "module", name)
		return nil
	}
	location := b.locateModule(ctx, file, name, attributes)
	if location == "" {
		b.logger.Warn("module file not found", "module", b.scope.Qualify(name), "declaredIn", file.path)
		return nil
	}
	b.scope.Push(name)
	defer b.scope.Pop()
	return b.inspectFile(ctx, location, filepath.Base(location) == "mod.rs")
}

// locateModule returns the file implementing module name: an explicit #[path] attribute,
// <moduleDir>/<name>.rs or <moduleDir>/<name>/mod.rs
func (b *builder) locateModule(ctx context.Context, file *sourceFile, name string, attributes []string) string {
	if custom := pathAttribute(attributes); custom != "" {
		candidate := filepath.Join(filepath.Dir(file.path), custom)
		if ok, _ := b.fs.Exists(ctx, candidate); ok {
			return candidate
		}
		return ""
	}
	candidates := []string{
		filepath.Join(file.moduleDir, name+".rs"),
		filepath.Join(file.moduleDir, name, "mod.rs"),
	}
	for _, candidate := range candidates {
		if ok, _ := b.fs.Exists(ctx, candidate); ok {
			return candidate
		}
	}
	return ""
}

// processImpl registers methods of an impl block under Type::method
func (b *builder) processImpl(node *sitter.Node, file *sourceFile) {
	typeName := implTypeName(node.ChildByFieldName("type"), file.src)
	if typeName == "" {
		return
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	_ = forEachItem(body, file.src, func(item *sitter.Node, attributes []string) error {
		if !b.config.IncludeTests && isTestTagged(attributes) {
			return nil
		}
		if item.Type() == "function_item" {
			b.addFunction(item, file, typeName)
		}
		return nil
	})
}

// addFunction registers a free function (owner empty) or a method
func (b *builder) addFunction(node *sitter.Node, file *sourceFile, owner string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(file.src)
	scope := b.scope.Path()
	def := &graph.Definition{
		Name:   name,
		Scope:  scope,
		Kind:   graph.KindFunction,
		Public: hasVisibility(node),
		Location: &graph.Location{
			Path:  file.path,
			Start: int(node.StartPoint().Row) + 1,
			End:   int(node.EndPoint().Row) + 1,
		},
	}
	if owner == "" {
		def.QualifiedName = graph.Qualify(scope, name)
	} else {
		def.Kind = graph.KindMethod
		def.Owner = owner
		def.QualifiedName = graph.Qualify(def.OwnerPath(), name)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		def.Calls = extractCalls(body, file.src)
	}
	if !b.table.Add(def) {
		b.logger.Debug("duplicate definition", "name", def.QualifiedName, "path", file.path)
	}
}

// forEachItem visits named children of a declaration container, passing the
// outer attributes (#[...]) that precede each item
func forEachItem(node *sitter.Node, src []byte, fn func(item *sitter.Node, attributes []string) error) error {
	var attributes []string
	for j := 0; j < int(node.NamedChildCount()); j++ {
		child := node.NamedChild(j)
		switch child.Type() {
		case "attribute_item":
			attributes = append(attributes, child.Content(src))
			continue
		case "line_comment", "block_comment", "inner_attribute_item":
			continue
		}
		if err := fn(child, attributes); err != nil {
			return err
		}
		attributes = nil
	}
	return nil
}

// implTypeName returns the simple name of an implementing type: last path segment, generics stripped
func implTypeName(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "type_identifier":
		return node.Content(src)
	case "generic_type", "reference_type", "pointer_type":
		return implTypeName(node.ChildByFieldName("type"), src)
	case "scoped_type_identifier":
		return implTypeName(node.ChildByFieldName("name"), src)
	}
	return ""
}

func hasVisibility(node *sitter.Node) bool {
	for j := 0; j < int(node.NamedChildCount()); j++ {
		if node.NamedChild(j).Type() == "visibility_modifier" {
			return true
		}
	}
	return false
}

// attributeBody returns attribute text without #[ ] and whitespace
func attributeBody(attribute string) string {
	attribute = strings.TrimSpace(attribute)
	attribute = strings.TrimPrefix(attribute, "#")
	attribute = strings.TrimPrefix(attribute, "[")
	attribute = strings.TrimSuffix(attribute, "]")
	return strings.Join(strings.Fields(attribute), "")
}

// isTestTagged returns true for #[test], #[<runtime>::test] and #[cfg(test)] style attributes
func isTestTagged(attributes []string) bool {
	for _, attribute := range attributes {
		body := attributeBody(attribute)
		name := body
		if idx := strings.Index(body, "("); idx != -1 {
			name = body[:idx]
		}
		switch {
		case name == "test", strings.HasSuffix(name, "::test"):
			return true
		case name == "cfg":
			if strings.Contains(body, "not(test)") {
				continue
			}
			if testWord.MatchString(body[len(name):]) {
				return true
			}
		}
	}
	return false
}

// pathAttribute returns value of #[path = "..."]
func pathAttribute(attributes []string) string {
	for _, attribute := range attributes {
		body := attributeBody(attribute)
		if !strings.HasPrefix(body, "path=") {
			continue
		}
		return strings.Trim(strings.TrimPrefix(body, "path="), `"`)
	}
	return ""
}
