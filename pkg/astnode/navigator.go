package astnode

// Ancestor walks parent pointers starting at n (exclusive) and returns the
// first ancestor whose Kind is in kinds.
func Ancestor(n Node, kinds ...Kind) (Node, bool) {
	if n == nil {
		return nil, false
	}
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		for _, k := range kinds {
			if cur.Kind() == k {
				return cur, true
			}
		}
	}
	return nil, false
}

// EnclosingClass returns the nearest ancestor class/interface/trait
// declaration of n.
func EnclosingClass(n Node) (Node, bool) {
	return Ancestor(n, ClassDeclaration, InterfaceDeclaration, TraitDeclaration)
}

// EnclosingFunction returns the nearest ancestor function-like node
// (function, method, or anonymous function) — the scope boundary C10 stops
// at.
func EnclosingFunction(n Node) (Node, bool) {
	return Ancestor(n, FunctionDeclaration, MethodDeclaration, AnonymousFunctionCreationExpression)
}

// PrevSibling returns the node immediately preceding n among its parent's
// children, if any.
func PrevSibling(n Node) (Node, bool) {
	if n == nil {
		return nil, false
	}
	parent := n.Parent()
	if parent == nil {
		return nil, false
	}
	idx := n.Index()
	if idx <= 0 {
		return nil, false
	}
	siblings := parent.Children()
	if idx-1 >= len(siblings) {
		return nil, false
	}
	return siblings[idx-1], true
}

// PrecedingSiblings returns every sibling before n, nearest first — the
// order C10's upward scan needs.
func PrecedingSiblings(n Node) []Node {
	if n == nil {
		return nil
	}
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	idx := n.Index()
	if idx <= 0 {
		return nil
	}
	siblings := parent.Children()
	if idx > len(siblings) {
		idx = len(siblings)
	}
	out := make([]Node, 0, idx)
	for i := idx - 1; i >= 0; i-- {
		out = append(out, siblings[i])
	}
	return out
}

// StatementAncestor walks up from n to the nearest ExpressionStatement
// ancestor, however many levels up it is; n itself is not considered.
func StatementAncestor(n Node) (Node, bool) {
	return Ancestor(n, ExpressionStatement)
}

// allFieldNames lists every well-known field name a node may carry, so a
// full-tree walk can follow field edges without knowing in advance which
// ones a given node's kind actually sets.
var allFieldNames = []string{
	FieldObject, FieldMember, FieldQualifier, FieldCallee, FieldArguments,
	FieldClass, FieldLeft, FieldRight, FieldCondition, FieldConsequent,
	FieldAlternate, FieldOperator, FieldOperand, FieldCastType, FieldName,
	FieldTypeHint, FieldDefault, FieldValue, FieldArray, FieldSubscript,
	FieldKey, FieldExpression, FieldIsStatic, FieldUseClause,
	FieldGroupPrefix, FieldIsFunction, FieldParameters, FieldUses,
	FieldElements, FieldEntries, FieldExtends,
}

// descendantKey identifies a node by its kind and span rather than by
// interface identity: Node implementations are not guaranteed comparable
// (the contract's own Equal method exists for exactly that reason), so
// Descendants tracks visited nodes by a value key instead of relying on
// map[Node] or ==.
type descendantKey struct {
	kind       Kind
	start, end int
}

// Descendants returns every node reachable from n (n included), following
// both Children() edges and every well-known Field()/FieldList() edge,
// depth-first, each node once. A parser adapter may wire a field child
// (e.g. an assignment's right-hand side) without also adding it to
// Children() — see Tree.SetField — so pkg/indexer's document-level pass
// needs a walk that follows both kinds of edge to reach every declaration
// and reference node in the tree.
func Descendants(n Node) []Node {
	if n == nil {
		return nil
	}
	var out []Node
	seen := make(map[descendantKey]bool)
	var visit func(Node)
	visit = func(cur Node) {
		if cur == nil {
			return
		}
		key := descendantKey{cur.Kind(), cur.StartOffset(), cur.EndOffset()}
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, cur)
		for _, c := range cur.Children() {
			visit(c)
		}
		for _, name := range allFieldNames {
			if f, ok := cur.Field(name); ok {
				visit(f)
			}
			for _, f := range cur.FieldList(name) {
				visit(f)
			}
		}
	}
	visit(n)
	return out
}
