package resolve

import (
	"strings"

	"semls/pkg/astnode"
	"semls/pkg/docblock"
	"semls/pkg/symtype"
)

// TypeFromExpression implements C8's typeFromExpression(e): recursively
// computes e's symbolic type, returning Mixed whenever nothing stronger
// can be proven. This is the sole recursion boundary spec.md §5 requires a
// cancellation check and depth bound at.
func (r *Resolver) TypeFromExpression(n astnode.Node) symtype.Type {
	return r.typeFromExpression(n, 0)
}

func (r *Resolver) typeFromExpression(n astnode.Node, depth int) symtype.Type {
	if n == nil {
		return symtype.MixedType
	}
	if r.Cancelled != nil && r.Cancelled() {
		return symtype.MixedType
	}
	if depth > r.maxDepth() {
		return symtype.MixedType
	}
	next := depth + 1

	switch n.Kind() {
	case astnode.Variable:
		return r.typeOfVariable(n, next)

	case astnode.CallExpression:
		callee, ok := n.Field(astnode.FieldCallee)
		if !ok {
			return symtype.MixedType
		}
		switch callee.Kind() {
		case astnode.QualifiedName:
			return r.typeOfQualifiedCall(n)
		case astnode.MemberAccessExpression:
			return r.typeOfMemberAccess(n, next)
		case astnode.ScopedPropertyAccessExpression:
			return r.typeOfScopedAccess(n, next)
		default:
			return symtype.MixedType
		}

	case astnode.QualifiedName:
		switch strings.ToLower(strings.TrimSpace(n.Text())) {
		case "true", "false":
			return symtype.BooleanType
		}
		return r.typeOfConstant(n)

	case astnode.MemberAccessExpression:
		return r.typeOfMemberAccess(n, next)

	case astnode.ScopedPropertyAccessExpression:
		return r.typeOfScopedAccess(n, next)

	case astnode.ObjectCreationExpression:
		classNode, ok := n.Field(astnode.FieldClass)
		if !ok {
			return symtype.MixedType
		}
		return ClassNameNodeToType(classNode, r.enclosingExtendsFn(n))

	case astnode.CloneExpression:
		operand, ok := n.Field(astnode.FieldOperand)
		if !ok {
			return symtype.MixedType
		}
		return r.typeFromExpression(operand, next)

	case astnode.AssignmentExpression:
		rhs, ok := n.Field(astnode.FieldRight)
		if !ok {
			return symtype.MixedType
		}
		return r.typeFromExpression(rhs, next)

	case astnode.TernaryExpression:
		return r.typeOfTernary(n, next)

	case astnode.BinaryExpression:
		return r.typeOfBinary(n, next)

	case astnode.UnaryOpExpression:
		return r.typeOfUnary(n)

	case astnode.CastExpression:
		return r.typeOfCast(n)

	case astnode.IssetIntrinsicExpression, astnode.EmptyIntrinsicExpression:
		return symtype.BooleanType

	case astnode.StringLiteral:
		return symtype.StringType

	case astnode.NumericLiteral:
		if looksLikeFloat(n.Text()) {
			return symtype.FloatType
		}
		return symtype.IntegerType

	case astnode.SubscriptExpression:
		return r.typeOfSubscript(n, next)

	case astnode.ArrayLiteral:
		return r.typeOfArrayLiteral(n, next)

	default:
		return symtype.MixedType
	}
}

func (r *Resolver) typeOfVariable(n astnode.Node, depth int) symtype.Type {
	name := stripSigil(n.Text())
	if name == "this" {
		return symtype.ThisType
	}
	def, ok := ResolveVariable(n, name)
	if !ok {
		return symtype.MixedType
	}
	t, ok := r.typeFromNode(def, depth)
	if !ok {
		return symtype.MixedType
	}
	return t
}

// typeOfQualifiedCall handles `f(...)` with a qualified-name callee.
func (r *Resolver) typeOfQualifiedCall(callNode astnode.Node) symtype.Type {
	fqn, ok := resolveQualifiedName(callNode)
	if !ok {
		return symtype.MixedType
	}
	def, ok := r.getDefinition(fqn, true)
	if !ok {
		return symtype.MixedType
	}
	return def.Type
}

func (r *Resolver) typeOfConstant(n astnode.Node) symtype.Type {
	fqn, ok := constantFetchFqn(n)
	if !ok {
		return symtype.MixedType
	}
	def, ok := r.getDefinition(fqn, true)
	if !ok {
		return symtype.MixedType
	}
	return def.Type
}

// typeOfMemberAccess accepts either a MemberAccessExpression directly or a
// CallExpression wrapping one.
func (r *Resolver) typeOfMemberAccess(n astnode.Node, depth int) symtype.Type {
	accessNode := n
	isCall := false
	if n.Kind() == astnode.CallExpression {
		callee, ok := n.Field(astnode.FieldCallee)
		if !ok {
			return symtype.MixedType
		}
		accessNode = callee
		isCall = true
	}
	objNode, ok := accessNode.Field(astnode.FieldObject)
	if !ok {
		return symtype.MixedType
	}
	memberNode, ok := accessNode.Field(astnode.FieldMember)
	if !ok {
		return symtype.MixedType
	}
	memberName := stripSigil(memberNode.Text())
	suffix := ""
	if isCall {
		suffix = "()"
	}

	objType := r.typeFromExpression(objNode, depth)
	for _, c := range objType.Components() {
		classFqn, ok := componentClassFqn(c, n)
		if !ok {
			continue
		}
		candidate := classFqn + "->" + memberName + suffix
		if def, ok := r.getDefinition(candidate, false); ok {
			return def.Type
		}
	}
	return symtype.MixedType
}

func (r *Resolver) typeOfScopedAccess(n astnode.Node, depth int) symtype.Type {
	accessNode := n
	isCall := false
	if n.Kind() == astnode.CallExpression {
		callee, ok := n.Field(astnode.FieldCallee)
		if !ok {
			return symtype.MixedType
		}
		accessNode = callee
		isCall = true
	}
	qualifierNode, ok := accessNode.Field(astnode.FieldQualifier)
	if !ok {
		return symtype.MixedType
	}
	memberNode, ok := accessNode.Field(astnode.FieldMember)
	if !ok {
		return symtype.MixedType
	}

	classType := ClassNameNodeToType(qualifierNode, r.enclosingExtendsFn(n))
	var fqsen string
	switch classType.Kind() {
	case symtype.Mixed:
		return symtype.MixedType
	case symtype.Static:
		fqn, ok := EnclosingClassFQN(n)
		if !ok {
			return symtype.MixedType
		}
		fqsen = fqn
	case symtype.Object:
		fqn, ok := classType.FQSEN()
		if !ok {
			return symtype.MixedType
		}
		fqsen = fqn
	default:
		return symtype.MixedType
	}

	suffix := ""
	if isCall {
		suffix = "()"
	}
	isVar := memberNode.Kind() == astnode.Variable
	name := stripSigil(memberNode.Text())
	candidate := fqsen + "::"
	if isVar {
		candidate += "$"
	}
	candidate += name + suffix

	def, ok := r.getDefinition(candidate, false)
	if !ok {
		return symtype.MixedType
	}
	return def.Type
}

func (r *Resolver) typeOfTernary(n astnode.Node, depth int) symtype.Type {
	cons, hasCons := n.Field(astnode.FieldConsequent)
	alt, hasAlt := n.Field(astnode.FieldAlternate)
	if hasCons && hasAlt {
		return symtype.NewCompound(r.typeFromExpression(cons, depth), r.typeFromExpression(alt, depth))
	}
	cond, hasCond := n.Field(astnode.FieldCondition)
	if hasCond && hasAlt {
		return symtype.NewCompound(r.typeFromExpression(cond, depth), r.typeFromExpression(alt, depth))
	}
	return symtype.MixedType
}

var comparisonOps = map[string]bool{
	"==": true, "===": true, "!=": true, "!==": true, "<>": true,
	"<": true, ">": true, "<=": true, ">=": true,
}

var arithmeticOps = map[string]bool{
	"+": true, "-": true, "*": true, "**": true,
	"+=": true, "-=": true, "*=": true, "**=": true,
}

func (r *Resolver) typeOfBinary(n astnode.Node, depth int) symtype.Type {
	op := ""
	if opNode, ok := n.Field(astnode.FieldOperator); ok {
		op = strings.TrimSpace(opNode.Text())
	}
	lower := strings.ToLower(op)
	left, hasLeft := n.Field(astnode.FieldLeft)
	right, hasRight := n.Field(astnode.FieldRight)

	switch {
	case op == "??":
		if !hasLeft || !hasRight {
			return symtype.MixedType
		}
		return symtype.NewCompound(r.typeFromExpression(left, depth), r.typeFromExpression(right, depth))

	case lower == "&&" || lower == "||" || lower == "and" || lower == "or" || lower == "instanceof" || comparisonOps[op]:
		return symtype.BooleanType

	case op == "." || op == ".=":
		return symtype.StringType

	case arithmeticOps[op]:
		if hasLeft && hasRight {
			lt := r.typeFromExpression(left, depth)
			rt := r.typeFromExpression(right, depth)
			if lt.Kind() == symtype.Integer && rt.Kind() == symtype.Integer {
				return symtype.IntegerType
			}
		}
		return symtype.FloatType

	case op == "&" || op == "|" || op == "^" || op == "<=>":
		return symtype.IntegerType

	default:
		return symtype.MixedType
	}
}

func (r *Resolver) typeOfUnary(n astnode.Node) symtype.Type {
	if opNode, ok := n.Field(astnode.FieldOperator); ok && strings.TrimSpace(opNode.Text()) == "!" {
		return symtype.BooleanType
	}
	return symtype.MixedType
}

func (r *Resolver) typeOfCast(n astnode.Node) symtype.Type {
	castType := ""
	if node, ok := n.Field(astnode.FieldCastType); ok {
		castType = strings.ToLower(strings.TrimSpace(node.Text()))
	}
	switch castType {
	case "bool", "boolean":
		return symtype.BooleanType
	case "string":
		return symtype.StringType
	case "double", "float":
		return symtype.FloatType
	case "int", "integer":
		return symtype.IntegerType
	case "array":
		return symtype.NewArray(nil, nil)
	default:
		return symtype.MixedType
	}
}

func (r *Resolver) typeOfSubscript(n astnode.Node, depth int) symtype.Type {
	arrNode, ok := n.Field(astnode.FieldArray)
	if !ok {
		return symtype.MixedType
	}
	arrType := r.typeFromExpression(arrNode, depth)
	if arrType.Kind() != symtype.Array {
		return symtype.MixedType
	}
	if v, ok := arrType.ElementType(); ok {
		return v
	}
	return symtype.MixedType
}

func (r *Resolver) typeOfArrayLiteral(n astnode.Node, depth int) symtype.Type {
	entries := n.FieldList(astnode.FieldEntries)
	if len(entries) == 0 {
		return symtype.NewArray(nil, nil)
	}
	var valueTypes, keyTypes []symtype.Type
	for _, e := range entries {
		if valNode, ok := e.Field(astnode.FieldValue); ok {
			valueTypes = append(valueTypes, r.typeFromExpression(valNode, depth))
		}
		if keyNode, ok := e.Field(astnode.FieldKey); ok {
			keyTypes = append(keyTypes, r.typeFromExpression(keyNode, depth))
		} else {
			keyTypes = append(keyTypes, symtype.IntegerType)
		}
	}
	valueUnion := symtype.NewCompound(valueTypes...)
	keyUnion := symtype.NewCompound(keyTypes...)
	return symtype.NewArray(&valueUnion, &keyUnion)
}

func componentClassFqn(c symtype.Type, ctx astnode.Node) (string, bool) {
	switch c.Kind() {
	case symtype.This, symtype.Static, symtype.Self:
		return EnclosingClassFQN(ctx)
	case symtype.Object:
		return c.FQSEN()
	}
	return "", false
}

func (r *Resolver) enclosingExtendsFn(n astnode.Node) func() (string, bool) {
	return func() (string, bool) {
		return r.enclosingParentFqn(n)
	}
}

func looksLikeFloat(text string) bool {
	return strings.ContainsAny(text, ".eE") && !strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), "0x")
}

// TypeFromNode implements typeFromNode(node) — declarations rather than
// expressions, per §4.4.
func (r *Resolver) TypeFromNode(n astnode.Node) (symtype.Type, bool) {
	return r.typeFromNode(n, 0)
}

func (r *Resolver) typeFromNode(n astnode.Node, depth int) (symtype.Type, bool) {
	if n == nil {
		return symtype.Type{}, false
	}
	var block docblock.Block
	hasDoc := false
	if doc, ok := n.DocComment(); ok && doc != "" {
		block = docblock.Parse(doc)
		hasDoc = true
	}

	switch n.Kind() {
	case astnode.Parameter:
		return r.typeFromParameter(n, block, hasDoc, depth), true

	case astnode.FunctionDeclaration, astnode.MethodDeclaration:
		if hasDoc {
			if tag, ok := block.Return(); ok && tag.Type != "" {
				return r.docTypeToType(tag.Type, n), true
			}
		}
		if hint, ok := n.Field(astnode.FieldTypeHint); ok {
			return r.typeHintToType(hint, n), true
		}
		return symtype.MixedType, true

	case astnode.PropertyDeclaration, astnode.ConstElement, astnode.Variable, astnode.AssignmentExpression:
		if hasDoc {
			varName := ""
			if n.Kind() == astnode.PropertyDeclaration {
				varName = simpleName(n)
			} else if n.Kind() == astnode.Variable {
				varName = stripSigil(n.Text())
			}
			if tag, ok := block.Var(varName); ok && tag.Type != "" {
				return r.docTypeToType(tag.Type, n), true
			}
		}
		if rhs, ok := rhsOf(n); ok {
			return r.typeFromExpression(rhs, depth), true
		}
		return symtype.MixedType, true

	default:
		return symtype.Type{}, false
	}
}

func (r *Resolver) typeFromParameter(n astnode.Node, block docblock.Block, hasDoc bool, depth int) symtype.Type {
	if hasDoc {
		if tag, ok := block.Param(parameterName(n)); ok && tag.Type != "" {
			return r.docTypeToType(tag.Type, n)
		}
	}
	hint, hasHint := n.Field(astnode.FieldTypeHint)
	def, hasDefault := n.Field(astnode.FieldDefault)
	if hasHint {
		hintType := r.typeHintToType(hint, n)
		if hasDefault {
			defType := r.typeFromExpression(def, depth)
			if differentClass(hintType, defType) {
				return symtype.NewCompound(hintType, defType)
			}
		}
		return hintType
	}
	if hasDefault {
		return r.typeFromExpression(def, depth)
	}
	return symtype.MixedType
}

func differentClass(hint, def symtype.Type) bool {
	if def.Kind() == symtype.Mixed {
		return false
	}
	return !hint.Equal(def)
}

func rhsOf(n astnode.Node) (astnode.Node, bool) {
	switch n.Kind() {
	case astnode.AssignmentExpression:
		return n.Field(astnode.FieldRight)
	case astnode.PropertyDeclaration:
		return n.Field(astnode.FieldDefault)
	case astnode.ConstElement:
		if v, ok := n.Field(astnode.FieldValue); ok {
			return v, true
		}
		return n.Field(astnode.FieldDefault)
	}
	return nil, false
}

func (r *Resolver) typeHintToType(hint astnode.Node, ctx astnode.Node) symtype.Type {
	text := strings.ToLower(strings.TrimSpace(hint.Text()))
	switch text {
	case "int", "integer":
		return symtype.IntegerType
	case "float", "double":
		return symtype.FloatType
	case "string":
		return symtype.StringType
	case "bool", "boolean":
		return symtype.BooleanType
	case "array":
		return symtype.NewArray(nil, nil)
	case "mixed", "":
		return symtype.MixedType
	default:
		return ClassNameNodeToType(hint, r.enclosingExtendsFn(ctx))
	}
}

func (r *Resolver) docTypeToType(typeStr string, ctx astnode.Node) symtype.Type {
	text := strings.ToLower(strings.TrimSpace(typeStr))
	switch text {
	case "int", "integer":
		return symtype.IntegerType
	case "float", "double":
		return symtype.FloatType
	case "string":
		return symtype.StringType
	case "bool", "boolean":
		return symtype.BooleanType
	case "array":
		return symtype.NewArray(nil, nil)
	case "mixed", "":
		return symtype.MixedType
	case "static":
		return symtype.StaticType
	case "this", "$this":
		return symtype.ThisType
	case "self":
		if fqn, ok := EnclosingClassFQN(ctx); ok {
			return symtype.NewObject(fqn)
		}
		return symtype.NewObject("")
	default:
		return symtype.NewObject(strings.TrimPrefix(typeStr, `\`))
	}
}
