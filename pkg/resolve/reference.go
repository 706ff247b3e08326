package resolve

import (
	"strings"

	"semls/pkg/astnode"
	"semls/pkg/symtype"
)

// ReferenceToFqn implements the Reference Resolver (C7, §4.3):
// given a reference node, computes the FQN it targets. Dispatch tries each
// case in the fixed order spec.md lists; the first applicable case's
// result is returned, never falling through to a later case once a case
// applies (even if that case's own logic yields None).
func (r *Resolver) ReferenceToFqn(n astnode.Node) (string, bool) {
	if n == nil {
		return "", false
	}

	switch {
	case n.Kind() == astnode.Variable:
		return r.variableReferenceFqn(n)

	case isQualifiedNameRef(n):
		if n.Kind() == astnode.QualifiedName && isConstantFetchPosition(n) {
			return constantFetchFqn(n)
		}
		return resolveQualifiedName(n)

	case isMemberAccessRef(n):
		return r.memberAccessFqn(n)

	case isScopedAccessRef(n):
		return r.scopedAccessFqn(n)

	default:
		return "", false
	}
}

// variableReferenceFqn is case 1. $this resolves to the enclosing class's
// FQN; every other variable is not globally indexed, so C7's public result
// is None (callers needing a local variable's defining node use C10
// directly, as spec.md §4.3 notes).
func (r *Resolver) variableReferenceFqn(n astnode.Node) (string, bool) {
	if stripSigil(n.Text()) == "this" {
		return EnclosingClassFQN(n)
	}
	return "", false
}

// resolveQualifiedName is case 2. It handles both a bare QualifiedName
// node and a CallExpression whose callee is a QualifiedName (the call
// form scenario 6 exercises): the parser's resolved name is taken as-is,
// augmented by an explicit use-clause link if the node carries one, and
// suffixed with "()" whenever the reference denotes a callable being
// invoked.
func resolveQualifiedName(n astnode.Node) (string, bool) {
	nameNode := n
	isCall := false
	if n.Kind() == astnode.CallExpression {
		callee, ok := n.Field(astnode.FieldCallee)
		if !ok || callee.Kind() != astnode.QualifiedName {
			return "", false
		}
		nameNode = callee
		isCall = true
	}

	base, ok := nameNode.ResolvedName()
	if !ok || base == "" {
		base = nameNode.Text()
	}
	base = symtype.FQNFromFQSEN(base)
	if base == "" {
		return "", false
	}

	if useNode, ok := nameNode.Field(astnode.FieldUseClause); ok {
		if prefix, ok := useNode.Field(astnode.FieldGroupPrefix); ok {
			base = prefix.Text() + base
		}
		if _, isFn := useNode.Field(astnode.FieldIsFunction); isFn {
			isCall = true
		}
	}

	if isCall {
		base += "()"
	}
	return base, true
}

// constantFetchFqn is case 4: a bare qualified name in constant position
// resolves to its namespaced name, with no call suffix and no use-clause
// augmentation (a constant fetch is never a callable).
func constantFetchFqn(n astnode.Node) (string, bool) {
	base, ok := n.ResolvedName()
	if !ok || base == "" {
		base = n.Text()
	}
	base = symtype.FQNFromFQSEN(base)
	if base == "" {
		return "", false
	}
	return base, true
}

// isConstantFetchPosition is §4.3 case 4's applicability predicate: it
// reports false when the parent is a member access, call, object-creation,
// scoped access, anonymous-function creation, or instanceof operand, and
// true otherwise, including for a node with no parent. It does not check
// that the parent is an expression statement or expression.
func isConstantFetchPosition(n astnode.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return true
	}
	switch parent.Kind() {
	case astnode.MemberAccessExpression, astnode.CallExpression, astnode.ObjectCreationExpression,
		astnode.ScopedPropertyAccessExpression, astnode.AnonymousFunctionCreationExpression:
		return false
	case astnode.BinaryExpression:
		if op, ok := parent.Field(astnode.FieldOperator); ok && strings.EqualFold(strings.TrimSpace(op.Text()), "instanceof") {
			return false
		}
	}
	return true
}

// memberAccessFqn is case 3: `a->m` or call `a->m(...)`.
func (r *Resolver) memberAccessFqn(n astnode.Node) (string, bool) {
	accessNode := n
	isCall := false
	if n.Kind() == astnode.CallExpression {
		callee, ok := n.Field(astnode.FieldCallee)
		if !ok || callee.Kind() != astnode.MemberAccessExpression {
			return "", false
		}
		accessNode = callee
		isCall = true
	}

	objNode, ok := accessNode.Field(astnode.FieldObject)
	if !ok {
		return "", false
	}
	memberNode, ok := accessNode.Field(astnode.FieldMember)
	if !ok {
		return "", false
	}
	memberName := stripSigil(memberNode.Text())

	objType := r.TypeFromExpression(objNode)
	classFqn, ok := r.firstClassComponent(objType, n)
	if !ok {
		return "", false
	}

	suffix := ""
	if isCall {
		suffix = "()"
	}
	initialCandidate := classFqn + "->" + memberName + suffix

	cur := classFqn
	seen := map[string]bool{}
	for {
		candidate := cur + "->" + memberName + suffix
		if _, ok := r.getDefinition(candidate, false); ok {
			return candidate, true
		}
		def, ok := r.getDefinition(cur, false)
		if !ok || len(def.Extends) == 0 {
			break
		}
		next := def.Extends[0]
		if seen[next] {
			break
		}
		seen[next] = true
		cur = next
	}
	return initialCandidate, true
}

// firstClassComponent picks the first component of t that is
// This|Object|Static|Self (widening a non-compound type into its single
// component first) and resolves it to a class FQN, per §4.3 case 3's
// exact "first qualifying component decides, success or failure" rule.
func (r *Resolver) firstClassComponent(t symtype.Type, ctx astnode.Node) (string, bool) {
	for _, c := range t.Components() {
		switch c.Kind() {
		case symtype.This, symtype.Static, symtype.Self:
			return EnclosingClassFQN(ctx)
		case symtype.Object:
			return c.FQSEN()
		}
	}
	return "", false
}

// scopedAccessFqn is case 5: `C::m`, `C::$p`, `C::CONST`, and call form.
func (r *Resolver) scopedAccessFqn(n astnode.Node) (string, bool) {
	accessNode := n
	isCall := false
	if n.Kind() == astnode.CallExpression {
		callee, ok := n.Field(astnode.FieldCallee)
		if !ok || callee.Kind() != astnode.ScopedPropertyAccessExpression {
			return "", false
		}
		accessNode = callee
		isCall = true
	}

	qualifierNode, ok := accessNode.Field(astnode.FieldQualifier)
	if !ok {
		return "", false
	}
	memberNode, ok := accessNode.Field(astnode.FieldMember)
	if !ok {
		return "", false
	}

	var classFqn string
	switch strings.ToLower(strings.TrimSpace(qualifierNode.Text())) {
	case "self", "static":
		classFqn, ok = EnclosingClassFQN(n)
		if !ok {
			return "", false
		}
	case "parent":
		classFqn, ok = r.enclosingParentFqn(n)
		if !ok {
			return "", false
		}
	default:
		if resolved, ok := qualifierNode.ResolvedName(); ok && resolved != "" {
			classFqn = symtype.FQNFromFQSEN(resolved)
		} else {
			classFqn = qualifierNode.Text()
		}
	}

	isVar := memberNode.Kind() == astnode.Variable
	name := stripSigil(memberNode.Text())

	result := classFqn + "::"
	if isVar {
		result += "$"
	}
	result += name
	if isCall {
		result += "()"
	}
	return result, true
}

func isQualifiedNameRef(n astnode.Node) bool {
	if n.Kind() == astnode.QualifiedName {
		return true
	}
	if n.Kind() == astnode.CallExpression {
		callee, ok := n.Field(astnode.FieldCallee)
		return ok && callee.Kind() == astnode.QualifiedName
	}
	return false
}

func isMemberAccessRef(n astnode.Node) bool {
	if n.Kind() == astnode.MemberAccessExpression {
		return true
	}
	if n.Kind() == astnode.CallExpression {
		callee, ok := n.Field(astnode.FieldCallee)
		return ok && callee.Kind() == astnode.MemberAccessExpression
	}
	return false
}

func isScopedAccessRef(n astnode.Node) bool {
	if n.Kind() == astnode.ScopedPropertyAccessExpression {
		return true
	}
	if n.Kind() == astnode.CallExpression {
		callee, ok := n.Field(astnode.FieldCallee)
		return ok && callee.Kind() == astnode.ScopedPropertyAccessExpression
	}
	return false
}
