// Package astnode defines the AST contract the resolver consumes (C4) and a
// set of read-only navigation helpers over it. The concrete parser is an
// external collaborator per spec: this package only pins the shape it must
// present, never a concrete grammar.
package astnode

// Kind tags a node's syntactic position. This is the closed set the
// resolver dispatches on; a parser adapter must map its own grammar onto
// these tags.
type Kind int

const (
	Unknown Kind = iota
	ClassDeclaration
	InterfaceDeclaration
	TraitDeclaration
	NamespaceDefinition
	FunctionDeclaration
	MethodDeclaration
	PropertyDeclaration
	// PropertyGroupDeclaration groups the PropertyDeclaration children of a
	// single `public $a, $b, $c;`-style statement, mirroring
	// ConstDeclaration/ConstElement's two-tier shape. A PropertyDeclaration
	// with no PropertyGroupDeclaration parent is itself a single-variable
	// declaration (the common case).
	PropertyGroupDeclaration
	ConstDeclaration
	ClassConstDeclaration
	ConstElement
	Parameter
	Variable
	UseVariableName
	QualifiedName
	NamespaceUseDeclaration
	NamespaceUseGroupClause
	AnonymousFunctionCreationExpression
	CallExpression
	MemberAccessExpression
	ScopedPropertyAccessExpression
	ObjectCreationExpression
	SubscriptExpression
	AssignmentExpression
	BinaryExpression
	TernaryExpression
	UnaryOpExpression
	CastExpression
	CloneExpression
	ScriptInclusionExpression
	IssetIntrinsicExpression
	EmptyIntrinsicExpression
	StringLiteral
	NumericLiteral
	ExpressionStatement

	// ArrayLiteral is not part of the closed reference-dispatch set §6
	// pins (an array literal is never an FQN-reference target, so C6/C7
	// never switch on it) but C8's type-inference table does need a kind
	// tag for it; this repo adds one rather than leaving array literals
	// unreachable by type inference.
	ArrayLiteral
	// ArrayEntry is one key=>value (or bare value) element of an
	// ArrayLiteral's FieldEntries list.
	ArrayEntry
)

var kindNames = map[Kind]string{
	ClassDeclaration:                    "ClassDeclaration",
	InterfaceDeclaration:                "InterfaceDeclaration",
	TraitDeclaration:                    "TraitDeclaration",
	NamespaceDefinition:                 "NamespaceDefinition",
	FunctionDeclaration:                 "FunctionDeclaration",
	MethodDeclaration:                   "MethodDeclaration",
	PropertyDeclaration:                 "PropertyDeclaration",
	PropertyGroupDeclaration:            "PropertyGroupDeclaration",
	ConstDeclaration:                    "ConstDeclaration",
	ClassConstDeclaration:               "ClassConstDeclaration",
	ConstElement:                        "ConstElement",
	Parameter:                           "Parameter",
	Variable:                            "Variable",
	UseVariableName:                     "UseVariableName",
	QualifiedName:                       "QualifiedName",
	NamespaceUseDeclaration:             "NamespaceUseDeclaration",
	NamespaceUseGroupClause:             "NamespaceUseGroupClause",
	AnonymousFunctionCreationExpression: "AnonymousFunctionCreationExpression",
	CallExpression:                      "CallExpression",
	MemberAccessExpression:              "MemberAccessExpression",
	ScopedPropertyAccessExpression:      "ScopedPropertyAccessExpression",
	ObjectCreationExpression:            "ObjectCreationExpression",
	SubscriptExpression:                 "SubscriptExpression",
	AssignmentExpression:                "AssignmentExpression",
	BinaryExpression:                    "BinaryExpression",
	TernaryExpression:                   "TernaryExpression",
	UnaryOpExpression:                   "UnaryOpExpression",
	CastExpression:                      "CastExpression",
	CloneExpression:                     "CloneExpression",
	ScriptInclusionExpression:           "ScriptInclusionExpression",
	IssetIntrinsicExpression:            "IssetIntrinsicExpression",
	EmptyIntrinsicExpression:            "EmptyIntrinsicExpression",
	StringLiteral:                      "StringLiteral",
	NumericLiteral:                     "NumericLiteral",
	ExpressionStatement:                "ExpressionStatement",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Node is the opaque AST value the resolver operates on. A concrete parser
// adapter implements this; the resolver never depends on a concrete
// grammar, only on this contract.
type Node interface {
	Kind() Kind
	Text() string
	StartOffset() int
	EndOffset() int
	Parent() Node
	Children() []Node
	// Index is this node's position among its parent's children, or -1 for
	// a root node.
	Index() int
	// Field returns a named, well-known child (e.g. "object", "member",
	// "callee", "left", "right"); ok is false if the field is absent or
	// inapplicable to this node's kind.
	Field(name string) (Node, bool)
	// FieldList returns a named, well-known repeated child list (e.g.
	// "parameters", "elements", "uses").
	FieldList(name string) []Node
	// DocComment returns the raw attached doc-comment text, if any.
	DocComment() (string, bool)
	// ResolvedName returns the parser-computed fully-qualified form of this
	// node's name, honoring enclosing namespace and use-clauses.
	ResolvedName() (string, bool)
	// Equal reports whether n and o are the same node. Implementations
	// backed by a value type (like Handle) must not rely on == across
	// arbitrary Node values from interface comparison rules; Equal is the
	// safe check the navigator and resolver use instead.
	Equal(o Node) bool
}

// Well-known field names. Not exhaustive of every parser's grammar, only of
// what the resolver reads.
const (
	FieldObject      = "object"      // MemberAccessExpression, ScopedPropertyAccessExpression
	FieldMember      = "member"      // MemberAccessExpression, ScopedPropertyAccessExpression
	FieldQualifier   = "qualifier"   // ScopedPropertyAccessExpression
	FieldCallee      = "callee"      // CallExpression
	FieldArguments   = "arguments"   // CallExpression
	FieldClass       = "class"       // ObjectCreationExpression, MethodDeclaration, PropertyDeclaration, ClassConstDeclaration
	FieldLeft        = "left"        // BinaryExpression, AssignmentExpression
	FieldRight        = "right"       // BinaryExpression, AssignmentExpression
	FieldCondition   = "condition"   // TernaryExpression
	FieldConsequent  = "consequent"  // TernaryExpression
	FieldAlternate   = "alternate"   // TernaryExpression
	FieldOperator    = "operator"    // BinaryExpression, AssignmentExpression, UnaryOpExpression
	FieldOperand     = "operand"     // UnaryOpExpression, CloneExpression, CastExpression
	FieldCastType    = "castType"    // CastExpression
	FieldName        = "name"        // declarations, Variable, QualifiedName
	FieldTypeHint    = "typeHint"    // Parameter, FunctionDeclaration, MethodDeclaration
	FieldDefault     = "default"     // Parameter, PropertyDeclaration
	FieldValue       = "value"       // ConstElement, ArrayEntry
	FieldArray       = "array"       // SubscriptExpression
	FieldSubscript   = "subscript"   // SubscriptExpression
	FieldKey         = "key"         // ArrayEntry
	FieldExpression  = "expression"  // ExpressionStatement
	FieldIsStatic    = "isStatic"    // MethodDeclaration, PropertyDeclaration (presence-only marker node)
	FieldUseClause   = "useClause"   // NamespaceUseDeclaration / group clause linkage
	FieldGroupPrefix = "groupPrefix" // NamespaceUseGroupClause
	FieldIsFunction  = "isFunction"  // NamespaceUseDeclaration (presence-only marker node)

	FieldParameters = "parameters" // FunctionDeclaration, MethodDeclaration, AnonymousFunctionCreationExpression
	FieldUses       = "uses"       // AnonymousFunctionCreationExpression use(...) capture list
	FieldElements   = "elements"   // ConstDeclaration, ClassConstDeclaration, PropertyGroupDeclaration
	FieldEntries    = "entries"    // array literal key=>value entries (each entry node exposes FieldKey/FieldValue)
	FieldExtends    = "extends"    // ClassDeclaration, InterfaceDeclaration base-type list
)

// Text returns n.Text(), or "" for a nil node. Convenience for call sites
// that may hold an absent node.
func Text(n Node) string {
	if n == nil {
		return ""
	}
	return n.Text()
}
