package indexer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"semls/pkg/astnode"
)

// fakeBackend ignores src entirely and builds a small, deterministic tree
// per path: a global function "helper" and a global function "caller"
// whose body calls helper(), both namespaced by the file's base name so
// multiple files never collide. This exercises the full declaration and
// reference pass without depending on a concrete grammar.
type fakeBackend struct{}

func (fakeBackend) Name() string { return "fake" }

func (fakeBackend) Parse(path string, src []byte) (astnode.Node, error) {
	ns := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	tree := astnode.NewTree()

	root := tree.NewNode(astnode.NamespaceDefinition, "", 0, len(src))

	helperFn := tree.NewNode(astnode.FunctionDeclaration, "helper", 0, 1)
	tree.SetResolvedName(helperFn, `app\`+ns+`\helper`)
	tree.AddChild(root, helperFn)

	callerFn := tree.NewNode(astnode.FunctionDeclaration, "caller", 1, 2)
	tree.SetResolvedName(callerFn, `app\`+ns+`\caller`)
	tree.AddChild(root, callerFn)

	stmt := tree.NewNode(astnode.ExpressionStatement, "helper();", 1, 2)
	tree.AddChild(callerFn, stmt)

	call := tree.NewNode(astnode.CallExpression, "helper()", 1, 2)
	tree.AddChild(stmt, call)
	tree.SetField(stmt, astnode.FieldExpression, call)

	callee := tree.NewNode(astnode.QualifiedName, "helper", 1, 2)
	tree.SetResolvedName(callee, `app\`+ns+`\helper`)
	tree.AddChild(call, callee)
	tree.SetField(call, astnode.FieldCallee, callee)

	return root, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestBuildPath_DeclarationsAndReferences(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mod1.ph", "v1")
	writeFile(t, dir, "mod2.ph", "v1")

	b := NewBuilder(fakeBackend{})
	result, err := b.BuildPath(dir)
	if err != nil {
		t.Fatalf("BuildPath: %v", err)
	}
	if result.Revision == "" {
		t.Fatalf("expected a non-empty revision stamp")
	}
	if result.Stats.ParsedFiles != 2 {
		t.Fatalf("expected 2 parsed files, got %d", result.Stats.ParsedFiles)
	}
	if result.Stats.DefinitionCount != 4 {
		t.Fatalf("expected 4 definitions (2 funcs x 2 files), got %d", result.Stats.DefinitionCount)
	}
	if result.Stats.ReferenceCount != 2 {
		t.Fatalf("expected exactly 2 references total, one per file's call (no callee/call duplication), got %d", result.Stats.ReferenceCount)
	}

	if _, ok := b.Index().GetDefinition(`app\mod1\helper()`, false); !ok {
		t.Fatalf("expected app\\mod1\\helper() to be indexed")
	}
	if _, ok := b.Index().GetDefinition(`app\mod2\caller()`, false); !ok {
		t.Fatalf("expected app\\mod2\\caller() to be indexed")
	}

	edges := b.Xref().OutgoingEdges(`app\mod1\caller()`)
	if len(edges) != 1 || edges[0].Callee != `app\mod1\helper()` {
		t.Fatalf("expected one outgoing edge to app\\mod1\\helper(), got %+v", edges)
	}
}

func TestBuildPath_ReusesUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mod1.ph", "v1")

	b := NewBuilder(fakeBackend{})
	if _, err := b.BuildPath(dir); err != nil {
		t.Fatalf("first BuildPath: %v", err)
	}

	result, err := b.BuildPath(dir)
	if err != nil {
		t.Fatalf("second BuildPath: %v", err)
	}
	if result.Stats.ParsedFiles != 0 {
		t.Fatalf("expected no files to be reparsed, got %d", result.Stats.ParsedFiles)
	}
	if result.Stats.ReusedFiles != 1 {
		t.Fatalf("expected 1 reused file, got %d", result.Stats.ReusedFiles)
	}
}

func TestBuildPath_ReparsesChangedContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mod1.ph", "v1")

	b := NewBuilder(fakeBackend{})
	if _, err := b.BuildPath(dir); err != nil {
		t.Fatalf("first BuildPath: %v", err)
	}

	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	result, err := b.BuildPath(dir)
	if err != nil {
		t.Fatalf("second BuildPath: %v", err)
	}
	if result.Stats.ParsedFiles != 1 {
		t.Fatalf("expected the changed file to be reparsed, got %d", result.Stats.ParsedFiles)
	}
	if _, ok := b.Index().GetDefinition(`app\mod1\helper()`, false); !ok {
		t.Fatalf("expected the definition to still be present after re-indexing")
	}
}

func TestBuildPath_PrunesRemovedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mod1.ph", "v1")
	path2 := writeFile(t, dir, "mod2.ph", "v1")

	b := NewBuilder(fakeBackend{})
	if _, err := b.BuildPath(dir); err != nil {
		t.Fatalf("first BuildPath: %v", err)
	}

	if err := os.Remove(path2); err != nil {
		t.Fatalf("remove: %v", err)
	}

	result, err := b.BuildPath(dir)
	if err != nil {
		t.Fatalf("second BuildPath: %v", err)
	}
	if result.Stats.RemovedFiles != 1 {
		t.Fatalf("expected 1 removed file, got %d", result.Stats.RemovedFiles)
	}
	if _, ok := b.Index().GetDefinition(`app\mod2\helper()`, false); ok {
		t.Fatalf("expected app\\mod2\\helper() to be pruned from the index")
	}
	if _, ok := b.Index().GetDefinition(`app\mod1\helper()`, false); !ok {
		t.Fatalf("expected app\\mod1\\helper() to remain indexed")
	}
}

func TestBuildFiles_TargetsExactPathsOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mod1.ph", "v1")
	path2 := writeFile(t, dir, "mod2.ph", "v1")

	b := NewBuilder(fakeBackend{})
	if _, err := b.BuildPath(dir); err != nil {
		t.Fatalf("BuildPath: %v", err)
	}

	if err := os.WriteFile(path2, []byte("v2"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	result, err := b.BuildFiles([]string{path2})
	if err != nil {
		t.Fatalf("BuildFiles: %v", err)
	}
	if result.Stats.ParsedFiles != 1 {
		t.Fatalf("expected exactly the one given path to be parsed, got %d", result.Stats.ParsedFiles)
	}
	if _, ok := b.Index().GetDefinition(`app\mod1\helper()`, false); !ok {
		t.Fatalf("expected mod1's definitions, untouched by BuildFiles, to remain")
	}
}
