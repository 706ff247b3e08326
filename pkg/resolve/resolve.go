// Package resolve implements the mutually-recursive core of the semantic
// resolution engine: the FQN name builder (C6), the reference resolver
// (C7), symbolic type inference (C8), the definition builder (C9), and the
// variable scope resolver (C10). It is deliberately dependency-free and
// total: every exported function returns a value, never an error, per
// spec.md §7. Grounded on the teacher's pkg/scope/resolve.go (parent-chain
// walk, innermost-wins lookup) and pkg/scope/build.go (per-kind dispatch).
package resolve

import (
	"strings"

	"semls/pkg/astnode"
	"semls/pkg/symtype"
)

// DefaultMaxDepth is the recursion bound spec.md §5 requires for type
// inference, to prevent stack blow-up on pathological sources.
const DefaultMaxDepth = 64

// EnclosingClassFQN walks ancestors for the nearest class/interface/trait
// declaration and returns its namespaced name (C 4.5). Returns false if
// anonymous or absent.
func EnclosingClassFQN(n astnode.Node) (string, bool) {
	class, ok := astnode.EnclosingClass(n)
	if !ok {
		return "", false
	}
	return definedFqnForClass(class)
}

func definedFqnForClass(class astnode.Node) (string, bool) {
	if resolved, ok := class.ResolvedName(); ok && resolved != "" {
		return resolved, true
	}
	nameNode, ok := class.Field(astnode.FieldName)
	if !ok {
		return "", false
	}
	text := strings.TrimSpace(nameNode.Text())
	if text == "" {
		return "", false
	}
	return text, true
}

// EnclosingExtends returns the first FQN in the enclosing class's Extends
// list (used to resolve the `parent` keyword), if any.
func EnclosingExtends(n astnode.Node, extends func(classFqn string) []string) (string, bool) {
	classFqn, ok := EnclosingClassFQN(n)
	if !ok {
		return "", false
	}
	list := extends(classFqn)
	if len(list) == 0 {
		return "", false
	}
	return list[0], true
}

// DefinedFqn computes the FQN a declaration node introduces (C6, §4.9).
// Returns false ("none") for nodes that introduce nothing addressable, or
// whose enclosing class is anonymous.
func DefinedFqn(n astnode.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind() {
	case astnode.ClassDeclaration, astnode.InterfaceDeclaration, astnode.TraitDeclaration:
		return namespacedName(n)

	case astnode.NamespaceDefinition:
		return namespacedName(n)

	case astnode.FunctionDeclaration:
		name, ok := namespacedName(n)
		if !ok {
			return "", false
		}
		return name + "()", true

	case astnode.MethodDeclaration:
		classFqn, ok := EnclosingClassFQN(n)
		if !ok {
			return "", false
		}
		name := simpleName(n)
		if name == "" {
			return "", false
		}
		if isStaticMember(n) {
			return classFqn + "::" + name + "()", true
		}
		return classFqn + "->" + name + "()", true

	case astnode.PropertyDeclaration:
		classFqn, ok := EnclosingClassFQN(n)
		if !ok {
			return "", false
		}
		name := simpleName(n)
		if name == "" {
			return "", false
		}
		if isStaticMember(n) {
			return classFqn + "::$" + name, true
		}
		return classFqn + "->" + name, true

	case astnode.ConstElement:
		if _, ok := astnode.Ancestor(n, astnode.ClassConstDeclaration); ok {
			classFqn, ok := EnclosingClassFQN(n)
			if !ok {
				return "", false
			}
			name := simpleName(n)
			if name == "" {
				return "", false
			}
			return classFqn + "::" + name, true
		}
		// Top-level const element.
		return namespacedName(n)

	default:
		return "", false
	}
}

// namespacedName reads the resolved (namespace-qualified) name from n,
// falling back to its own Field(FieldName) text, then to n.Text().
func namespacedName(n astnode.Node) (string, bool) {
	if resolved, ok := n.ResolvedName(); ok && resolved != "" {
		return resolved, true
	}
	name := simpleName(n)
	if name == "" {
		return "", false
	}
	return name, true
}

func simpleName(n astnode.Node) string {
	if nameNode, ok := n.Field(astnode.FieldName); ok {
		return strings.TrimSpace(nameNode.Text())
	}
	return strings.TrimSpace(n.Text())
}

func isStaticMember(n astnode.Node) bool {
	_, ok := n.Field(astnode.FieldIsStatic)
	return ok
}

// ClassNameNodeToType resolves a class-name node (keyword or identifier)
// to a Type, per spec.md §4.7. enclosingExtends supplies the enclosing
// class's first Extends entry for the `parent` keyword, since that
// requires an index lookup this package's dependency-free core does not
// own.
func ClassNameNodeToType(n astnode.Node, enclosingExtends func() (string, bool)) symtype.Type {
	if n == nil {
		return symtype.MixedType
	}
	text := strings.TrimSpace(n.Text())
	switch strings.ToLower(text) {
	case "static":
		return symtype.StaticType
	case "self":
		if classFqn, ok := EnclosingClassFQN(n); ok {
			return symtype.NewObject(classFqn)
		}
		return symtype.NewObject("")
	case "parent":
		if enclosingExtends != nil {
			if parentFqn, ok := enclosingExtends(); ok {
				return symtype.NewObject(parentFqn)
			}
		}
		return symtype.NewObject("")
	}
	if isAnonymousClassToken(n) {
		return symtype.NewObject("")
	}
	if isDynamicExpression(n) {
		return symtype.MixedType
	}
	if resolved, ok := n.ResolvedName(); ok && resolved != "" {
		return symtype.NewObject(symtype.FQNFromFQSEN(resolved))
	}
	if text == "" {
		return symtype.MixedType
	}
	return symtype.NewObject(symtype.FQNFromFQSEN(text))
}

// isDynamicExpression reports whether n is not a plain qualified-name node
// (e.g. `new $className(...)`), in which case the class cannot be
// statically resolved.
func isDynamicExpression(n astnode.Node) bool {
	return n.Kind() != astnode.QualifiedName && n.Kind() != astnode.Unknown
}

func isAnonymousClassToken(n astnode.Node) bool {
	return n.Kind() == astnode.ClassDeclaration && n.Text() == ""
}
