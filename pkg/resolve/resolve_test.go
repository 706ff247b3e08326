package resolve

import (
	"testing"

	"semls/pkg/astnode"
	"semls/pkg/symtype"
)

func TestDefinedFqn_Class(t *testing.T) {
	tree := astnode.NewTree()
	class := tree.NewNode(astnode.ClassDeclaration, "Foo", 0, 1)
	tree.SetResolvedName(class, `App\Foo`)

	got, ok := DefinedFqn(class)
	if !ok || got != `App\Foo` {
		t.Fatalf("expected App\\Foo, got %q ok=%v", got, ok)
	}
}

func TestDefinedFqn_StaticMethod(t *testing.T) {
	tree := astnode.NewTree()
	_, method := classWithMethod(tree, `App\Foo`, "bar", true)

	got, ok := DefinedFqn(method)
	if !ok || got != `App\Foo::bar()` {
		t.Fatalf("expected App\\Foo::bar(), got %q ok=%v", got, ok)
	}
}

func TestDefinedFqn_InstanceMethod(t *testing.T) {
	tree := astnode.NewTree()
	_, method := classWithMethod(tree, `App\Foo`, "bar", false)

	got, ok := DefinedFqn(method)
	if !ok || got != `App\Foo->bar()` {
		t.Fatalf("expected App\\Foo->bar(), got %q ok=%v", got, ok)
	}
}

func TestDefinedFqn_StaticProperty(t *testing.T) {
	tree := astnode.NewTree()
	class := tree.NewNode(astnode.ClassDeclaration, "Foo", 0, 1)
	tree.SetResolvedName(class, `App\Foo`)
	prop := tree.NewNode(astnode.PropertyDeclaration, "x", 1, 2)
	tree.AddChild(class, prop)
	marker := tree.NewNode(astnode.Unknown, "static", 1, 2)
	tree.SetField(prop, astnode.FieldIsStatic, marker)

	got, ok := DefinedFqn(prop)
	if !ok || got != `App\Foo::$x` {
		t.Fatalf("expected App\\Foo::$x, got %q ok=%v", got, ok)
	}
}

func TestDefinedFqn_InstanceProperty(t *testing.T) {
	tree := astnode.NewTree()
	class := tree.NewNode(astnode.ClassDeclaration, "Foo", 0, 1)
	tree.SetResolvedName(class, `App\Foo`)
	prop := tree.NewNode(astnode.PropertyDeclaration, "x", 1, 2)
	tree.AddChild(class, prop)

	got, ok := DefinedFqn(prop)
	if !ok || got != `App\Foo->x` {
		t.Fatalf("expected App\\Foo->x, got %q ok=%v", got, ok)
	}
}

func TestDefinedFqn_Function(t *testing.T) {
	tree := astnode.NewTree()
	fn := tree.NewNode(astnode.FunctionDeclaration, "foo", 0, 1)
	tree.SetResolvedName(fn, `App\foo`)

	got, ok := DefinedFqn(fn)
	if !ok || got != `App\foo()` {
		t.Fatalf("expected App\\foo(), got %q ok=%v", got, ok)
	}
}

func TestDefinedFqn_ClassConstant(t *testing.T) {
	tree := astnode.NewTree()
	class := tree.NewNode(astnode.ClassDeclaration, "Foo", 0, 1)
	tree.SetResolvedName(class, `App\Foo`)
	constDecl := tree.NewNode(astnode.ClassConstDeclaration, "const BAR = 1;", 1, 2)
	tree.AddChild(class, constDecl)
	elem := tree.NewNode(astnode.ConstElement, "BAR", 2, 3)
	tree.AddChild(constDecl, elem)

	got, ok := DefinedFqn(elem)
	if !ok || got != `App\Foo::BAR` {
		t.Fatalf("expected App\\Foo::BAR, got %q ok=%v", got, ok)
	}
}

func TestDefinedFqn_TopLevelConstant(t *testing.T) {
	tree := astnode.NewTree()
	elem := tree.NewNode(astnode.ConstElement, "BAR", 0, 1)
	tree.SetResolvedName(elem, `App\BAR`)

	got, ok := DefinedFqn(elem)
	if !ok || got != `App\BAR` {
		t.Fatalf("expected App\\BAR, got %q ok=%v", got, ok)
	}
}

func TestDefinedFqn_UnaddressableKindIsNone(t *testing.T) {
	tree := astnode.NewTree()
	stmt := tree.NewNode(astnode.ExpressionStatement, "1 + 1;", 0, 1)
	if _, ok := DefinedFqn(stmt); ok {
		t.Fatalf("expected no FQN for a bare expression statement")
	}
}

func TestClassNameNodeToType_SelfAndStatic(t *testing.T) {
	tree := astnode.NewTree()
	class := tree.NewNode(astnode.ClassDeclaration, "Foo", 0, 1)
	tree.SetResolvedName(class, `App\Foo`)
	selfNode := tree.NewNode(astnode.QualifiedName, "self", 1, 2)
	tree.AddChild(class, selfNode)
	staticNode := tree.NewNode(astnode.QualifiedName, "static", 1, 2)
	tree.AddChild(class, staticNode)

	self := ClassNameNodeToType(selfNode, nil)
	if fqsen, ok := self.FQSEN(); !ok || fqsen != `App\Foo` {
		t.Fatalf("expected self to resolve to App\\Foo, got %s", self.String())
	}

	static := ClassNameNodeToType(staticNode, nil)
	if static.Kind() != symtype.Static {
		t.Fatalf("expected static keyword to produce a Static type, got %s", static.String())
	}
}

func TestClassNameNodeToType_Parent(t *testing.T) {
	tree := astnode.NewTree()
	class := tree.NewNode(astnode.ClassDeclaration, "Foo", 0, 1)
	tree.SetResolvedName(class, `App\Foo`)
	parentNode := tree.NewNode(astnode.QualifiedName, "parent", 1, 2)
	tree.AddChild(class, parentNode)

	got := ClassNameNodeToType(parentNode, func() (string, bool) { return `App\Base`, true })
	if fqsen, ok := got.FQSEN(); !ok || fqsen != `App\Base` {
		t.Fatalf("expected parent to resolve via the callback to App\\Base, got %s", got.String())
	}

	gotNoCallback := ClassNameNodeToType(parentNode, nil)
	if fqsen, ok := gotNoCallback.FQSEN(); ok || fqsen != "" {
		t.Fatalf("expected an anonymous object when no enclosingExtends callback is given")
	}
}

func TestClassNameNodeToType_NamedClass(t *testing.T) {
	tree := astnode.NewTree()
	named := newQualifiedName(tree, "Bar", `\App\Bar`)

	got := ClassNameNodeToType(named, nil)
	if fqsen, ok := got.FQSEN(); !ok || fqsen != `App\Bar` {
		t.Fatalf("expected App\\Bar, got %s", got.String())
	}
}

func TestClassNameNodeToType_DynamicExpressionIsMixed(t *testing.T) {
	tree := astnode.NewTree()
	dynamic := newVariable(tree, "$className")

	got := ClassNameNodeToType(dynamic, nil)
	if got.Kind() != symtype.Mixed {
		t.Fatalf("expected a dynamic class-name expression to be Mixed, got %s", got.String())
	}
}
