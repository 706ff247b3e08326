package resolve

import (
	"testing"

	"semls/pkg/astnode"
	"semls/pkg/symbol"
	"semls/pkg/symtype"
)

func TestTypeFromExpression_Literals(t *testing.T) {
	tree := astnode.NewTree()
	r := &Resolver{}

	str := tree.NewNode(astnode.StringLiteral, `"hi"`, 0, 4)
	if got := r.TypeFromExpression(str); got.Kind() != symtype.String {
		t.Fatalf("expected String, got %s", got.String())
	}

	intLit := tree.NewNode(astnode.NumericLiteral, "42", 0, 2)
	if got := r.TypeFromExpression(intLit); got.Kind() != symtype.Integer {
		t.Fatalf("expected Integer, got %s", got.String())
	}

	floatLit := tree.NewNode(astnode.NumericLiteral, "4.2", 0, 3)
	if got := r.TypeFromExpression(floatLit); got.Kind() != symtype.Float {
		t.Fatalf("expected Float, got %s", got.String())
	}

	trueLit := tree.NewNode(astnode.QualifiedName, "true", 0, 4)
	if got := r.TypeFromExpression(trueLit); got.Kind() != symtype.Boolean {
		t.Fatalf("expected Boolean for the true literal, got %s", got.String())
	}
}

func TestTypeFromExpression_BinaryOperators(t *testing.T) {
	tree := astnode.NewTree()
	r := &Resolver{}

	intA := tree.NewNode(astnode.NumericLiteral, "1", 0, 1)
	intB := tree.NewNode(astnode.NumericLiteral, "2", 0, 1)

	plus := binaryOf(tree, "+", intA, intB)
	if got := r.TypeFromExpression(plus); got.Kind() != symtype.Integer {
		t.Fatalf("expected int+int to be Integer, got %s", got.String())
	}

	floatB := tree.NewNode(astnode.NumericLiteral, "2.5", 0, 3)
	plusFloat := binaryOf(tree, "+", intA, floatB)
	if got := r.TypeFromExpression(plusFloat); got.Kind() != symtype.Float {
		t.Fatalf("expected int+float to widen to Float, got %s", got.String())
	}

	concat := binaryOf(tree, ".", intA, intB)
	if got := r.TypeFromExpression(concat); got.Kind() != symtype.String {
		t.Fatalf("expected concatenation to be String, got %s", got.String())
	}

	cmp := binaryOf(tree, "===", intA, intB)
	if got := r.TypeFromExpression(cmp); got.Kind() != symtype.Boolean {
		t.Fatalf("expected a comparison to be Boolean, got %s", got.String())
	}

	strRight := tree.NewNode(astnode.StringLiteral, `"fallback"`, 0, 10)
	coalesce := binaryOf(tree, "??", intA, strRight)
	got := r.TypeFromExpression(coalesce)
	if got.Kind() != symtype.Compound {
		t.Fatalf("expected ?? to produce a compound of both sides, got %s", got.String())
	}
}

func TestTypeFromExpression_TernaryAndCast(t *testing.T) {
	tree := astnode.NewTree()
	r := &Resolver{}

	cons := tree.NewNode(astnode.StringLiteral, `"a"`, 0, 3)
	alt := tree.NewNode(astnode.NumericLiteral, "1", 0, 1)
	ternary := tree.NewNode(astnode.TernaryExpression, "cond ? \"a\" : 1", 0, 10)
	tree.SetField(ternary, astnode.FieldConsequent, cons)
	tree.SetField(ternary, astnode.FieldAlternate, alt)

	got := r.TypeFromExpression(ternary)
	if got.Kind() != symtype.Compound || len(got.Components()) != 2 {
		t.Fatalf("expected a 2-member compound, got %s", got.String())
	}

	castType := tree.NewNode(astnode.Unknown, "int", 0, 3)
	cast := tree.NewNode(astnode.CastExpression, "(int) $x", 0, 8)
	tree.SetField(cast, astnode.FieldCastType, castType)
	if got := r.TypeFromExpression(cast); got.Kind() != symtype.Integer {
		t.Fatalf("expected (int) cast to be Integer, got %s", got.String())
	}
}

func TestTypeFromExpression_ArrayLiteralAndSubscript(t *testing.T) {
	tree := astnode.NewTree()
	r := &Resolver{}

	lit := tree.NewNode(astnode.ArrayLiteral, "[1, 2]", 0, 6)
	e1 := tree.NewNode(astnode.ArrayEntry, "1", 1, 2)
	v1 := tree.NewNode(astnode.NumericLiteral, "1", 1, 2)
	tree.SetField(e1, astnode.FieldValue, v1)
	e2 := tree.NewNode(astnode.ArrayEntry, "2", 4, 5)
	v2 := tree.NewNode(astnode.NumericLiteral, "2", 4, 5)
	tree.SetField(e2, astnode.FieldValue, v2)
	tree.SetFieldList(lit, astnode.FieldEntries, []astnode.Handle{e1, e2})

	arrType := r.TypeFromExpression(lit)
	if arrType.Kind() != symtype.Array {
		t.Fatalf("expected Array, got %s", arrType.String())
	}
	elem, ok := arrType.ElementType()
	if !ok || elem.Kind() != symtype.Integer {
		t.Fatalf("expected an Integer element type, got %s ok=%v", elem.String(), ok)
	}

	sub := tree.NewNode(astnode.SubscriptExpression, "[1, 2][0]", 0, 9)
	tree.SetField(sub, astnode.FieldArray, lit)
	if got := r.TypeFromExpression(sub); got.Kind() != symtype.Integer {
		t.Fatalf("expected subscripting the array literal to yield Integer, got %s", got.String())
	}
}

func TestTypeFromExpression_MemberAccessViaIndex(t *testing.T) {
	tree := astnode.NewTree()
	idx := symbol.NewProjectIndex()
	idx.SetDefinition(`App\Foo->name`, symbol.Definition{FQN: `App\Foo->name`, Type: symtype.StringType})

	class, method := classWithMethod(tree, `App\Foo`, "caller", false)
	_ = class
	this := newVariable(tree, "$this")
	member := newQualifiedName(tree, "name", "")
	access := tree.NewNode(astnode.MemberAccessExpression, "$this->name", 0, 11)
	tree.SetField(access, astnode.FieldObject, this)
	tree.SetField(access, astnode.FieldMember, member)
	tree.AddChild(method, access)

	r := &Resolver{Index: idx}
	got := r.TypeFromExpression(access)
	if got.Kind() != symtype.String {
		t.Fatalf("expected App\\Foo->name's declared type String, got %s", got.String())
	}
}

func TestTypeFromNode_FunctionIgnoresBody(t *testing.T) {
	tree := astnode.NewTree()
	fn := tree.NewNode(astnode.FunctionDeclaration, "f", 0, 1)
	// A body that, if inspected, would suggest a String return — typeFromNode
	// must never look at it: a function's type is its hint or doc-comment
	// only, defaulting to Mixed.
	body := tree.NewNode(astnode.StringLiteral, `"not the answer"`, 1, 2)
	tree.AddChild(fn, body)

	r := &Resolver{}
	got, ok := r.TypeFromNode(fn)
	if !ok || got.Kind() != symtype.Mixed {
		t.Fatalf("expected a hint-less, doc-less function to infer Mixed, got %s ok=%v", got.String(), ok)
	}
}

func TestTypeFromNode_FunctionReturnHint(t *testing.T) {
	tree := astnode.NewTree()
	fn := tree.NewNode(astnode.FunctionDeclaration, "f", 0, 1)
	hint := tree.NewNode(astnode.Unknown, "string", 0, 6)
	tree.SetField(fn, astnode.FieldTypeHint, hint)

	r := &Resolver{}
	got, ok := r.TypeFromNode(fn)
	if !ok || got.Kind() != symtype.String {
		t.Fatalf("expected the return type hint to win, got %s ok=%v", got.String(), ok)
	}
}

func TestTypeFromNode_ParameterDocCommentWins(t *testing.T) {
	tree := astnode.NewTree()
	fn := tree.NewNode(astnode.FunctionDeclaration, "f", 0, 1)
	param := tree.NewNode(astnode.Parameter, "$x", 1, 3)
	tree.AddChild(fn, param)
	tree.SetDocComment(param, "/** @param int $x */")
	hint := tree.NewNode(astnode.Unknown, "string", 0, 6)
	tree.SetField(param, astnode.FieldTypeHint, hint)

	r := &Resolver{}
	got, ok := r.TypeFromNode(param)
	if !ok || got.Kind() != symtype.Integer {
		t.Fatalf("expected the @param doc-comment to override the syntactic hint, got %s ok=%v", got.String(), ok)
	}
}

func TestTypeFromNode_ParameterDefaultOnly(t *testing.T) {
	tree := astnode.NewTree()
	param := tree.NewNode(astnode.Parameter, "$x", 0, 2)
	def := tree.NewNode(astnode.NumericLiteral, "3", 0, 1)
	tree.SetField(param, astnode.FieldDefault, def)

	r := &Resolver{}
	got, ok := r.TypeFromNode(param)
	if !ok || got.Kind() != symtype.Integer {
		t.Fatalf("expected a hint-less parameter to fall back to its default's type, got %s ok=%v", got.String(), ok)
	}
}

func binaryOf(tree *astnode.Tree, op string, left, right astnode.Handle) astnode.Handle {
	expr := tree.NewNode(astnode.BinaryExpression, "expr", 0, 1)
	opNode := tree.NewNode(astnode.Unknown, op, 0, len(op))
	tree.SetField(expr, astnode.FieldOperator, opNode)
	tree.SetField(expr, astnode.FieldLeft, left)
	tree.SetField(expr, astnode.FieldRight, right)
	return expr
}
