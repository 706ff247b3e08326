package resolve

import "semls/pkg/astnode"

// Shared test-tree builders. Kept minimal: every helper wires just enough
// fields for the resolver code under test to read, mirroring how a real
// parser adapter would populate the same Node contract.

func newQualifiedName(tree *astnode.Tree, text, resolved string) astnode.Handle {
	h := tree.NewNode(astnode.QualifiedName, text, 0, len(text))
	if resolved != "" {
		tree.SetResolvedName(h, resolved)
	}
	return h
}

func newVariable(tree *astnode.Tree, text string) astnode.Handle {
	return tree.NewNode(astnode.Variable, text, 0, len(text))
}

// classWithMethod builds:
//
//	ClassDeclaration (resolvedFqn)
//	  MethodDeclaration methodName [static marker if isStatic]
func classWithMethod(tree *astnode.Tree, resolvedFqn, methodName string, isStatic bool) (class, method astnode.Handle) {
	class = tree.NewNode(astnode.ClassDeclaration, lastSegment(resolvedFqn), 0, 1)
	tree.SetResolvedName(class, resolvedFqn)
	method = tree.NewNode(astnode.MethodDeclaration, methodName, 1, 2)
	tree.AddChild(class, method)
	if isStatic {
		marker := tree.NewNode(astnode.Unknown, "static", 1, 2)
		tree.SetField(method, astnode.FieldIsStatic, marker)
	}
	return class, method
}

func lastSegment(fqn string) string {
	idx := -1
	for i := len(fqn) - 1; i >= 0; i-- {
		if fqn[i] == '\\' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fqn
	}
	return fqn[idx+1:]
}

// assignStmt builds an ExpressionStatement wrapping `$name = <rhs>` as a
// sibling node ready for AddChild under some function-like parent.
func assignStmt(tree *astnode.Tree, name string, rhs astnode.Handle) astnode.Handle {
	stmt := tree.NewNode(astnode.ExpressionStatement, "$"+name+" = ...;", 0, 1)
	expr := tree.NewNode(astnode.AssignmentExpression, "$"+name+" = ...", 0, 1)
	left := newVariable(tree, "$"+name)
	tree.SetField(expr, astnode.FieldLeft, left)
	tree.SetField(expr, astnode.FieldRight, rhs)
	tree.SetField(stmt, astnode.FieldExpression, expr)
	return stmt
}
