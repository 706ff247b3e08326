package resolve

import "semls/pkg/astnode"

// ResolveVariable implements the Variable Scope Resolver (C10, §4.6): given
// a variable reference node and its bare name (no "$"), walks upward for
// the parameter, plain assignment, or closure capture that introduces it.
// Returns the introducing node — a Parameter, an AssignmentExpression, or a
// UseVariableName — never a pointer into the index.
func ResolveVariable(ref astnode.Node, name string) (astnode.Node, bool) {
	if ref == nil || name == "" {
		return nil, false
	}
	cur := ref
	for cur != nil {
		for _, sib := range astnode.PrecedingSiblings(cur) {
			if def, ok := matchAssignment(sib, name); ok {
				return def, true
			}
		}
		parent := cur.Parent()
		if parent == nil {
			return nil, false
		}
		if isFunctionLike(parent) {
			return scanParamsAndCaptures(parent, name)
		}
		cur = parent
	}
	return nil, false
}

func isFunctionLike(n astnode.Node) bool {
	switch n.Kind() {
	case astnode.FunctionDeclaration, astnode.MethodDeclaration, astnode.AnonymousFunctionCreationExpression:
		return true
	default:
		return false
	}
}

// matchAssignment checks whether sib is `x = rhs` (plain `=` only, never a
// compound-assign variant) for the given variable name, and if so returns
// the AssignmentExpression as the introducing node.
func matchAssignment(sib astnode.Node, name string) (astnode.Node, bool) {
	if sib.Kind() != astnode.ExpressionStatement {
		return nil, false
	}
	expr, ok := sib.Field(astnode.FieldExpression)
	if !ok || expr.Kind() != astnode.AssignmentExpression {
		return nil, false
	}
	if op, ok := expr.Field(astnode.FieldOperator); ok && op.Text() != "=" {
		return nil, false
	}
	left, ok := expr.Field(astnode.FieldLeft)
	if !ok || left.Kind() != astnode.Variable {
		return nil, false
	}
	if stripSigil(left.Text()) != name {
		return nil, false
	}
	return expr, true
}

func scanParamsAndCaptures(fn astnode.Node, name string) (astnode.Node, bool) {
	for _, p := range fn.FieldList(astnode.FieldParameters) {
		if parameterName(p) == name {
			return p, true
		}
	}
	if fn.Kind() == astnode.AnonymousFunctionCreationExpression {
		for _, u := range fn.FieldList(astnode.FieldUses) {
			if stripSigil(u.Text()) == name {
				return u, true
			}
		}
	}
	return nil, false
}

func parameterName(p astnode.Node) string {
	if nameNode, ok := p.Field(astnode.FieldName); ok {
		return stripSigil(nameNode.Text())
	}
	return stripSigil(p.Text())
}

// stripSigil removes a leading "&" (by-reference) and "$" (variable
// sigil), leaving the bare identifier.
func stripSigil(s string) string {
	i := 0
	for i < len(s) && (s[i] == '&' || s[i] == '$') {
		i++
	}
	return s[i:]
}
