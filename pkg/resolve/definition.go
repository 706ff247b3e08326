package resolve

import (
	"semls/pkg/astnode"
	"semls/pkg/symbol"
	"semls/pkg/symtype"
)

// CreateDefinition implements the Definition Builder (C9): given a
// declaration node, produces the symbol.Definition the index stores for it,
// combining the name builder (C6), type inference over declarations (C8),
// and doc-comment extraction (C5). idx is consulted for the Extends-chain
// resolution TypeFromNode's object-hint path may need; it is never written
// to.
//
// Position information (line/column) is deliberately absent from the
// produced SymbolInformation.Location beyond the file name: the Node
// contract this package depends on exposes only byte offsets, and
// offset-to-line/column conversion is a property of the concrete source
// text, not of the AST contract. Callers that need it (e.g. pkg/indexer)
// convert StartOffset/EndOffset against the document buffer themselves and
// fill in the remaining Location fields after CreateDefinition returns.
func CreateDefinition(n astnode.Node, idx symbol.ReadableIndex, file string) (symbol.Definition, bool) {
	if n == nil {
		return symbol.Definition{}, false
	}
	fqn, ok := DefinedFqn(n)
	if !ok {
		return symbol.Definition{}, false
	}

	def := symbol.Definition{FQN: fqn}

	switch n.Kind() {
	case astnode.ClassDeclaration:
		def.IsClass = true
		def.Extends = extendsList(n)
		def.SymbolInfo.Kind = symbol.KindClass
	case astnode.InterfaceDeclaration:
		def.IsClass = true
		def.Extends = extendsList(n)
		def.SymbolInfo.Kind = symbol.KindInterface
	case astnode.TraitDeclaration:
		def.IsClass = true
		def.SymbolInfo.Kind = symbol.KindTrait
	case astnode.MethodDeclaration:
		def.IsStatic = isStaticMember(n)
		def.SymbolInfo.Kind = symbol.KindMethod
	case astnode.PropertyDeclaration:
		def.IsStatic = isStaticMember(n)
		def.SymbolInfo.Kind = symbol.KindProperty
	case astnode.FunctionDeclaration:
		def.IsGlobal = true
		def.SymbolInfo.Kind = symbol.KindFunction
	case astnode.ConstElement:
		if _, ok := astnode.Ancestor(n, astnode.ClassConstDeclaration); ok {
			def.SymbolInfo.Kind = symbol.KindClassConstant
		} else {
			def.IsGlobal = true
			def.SymbolInfo.Kind = symbol.KindConstant
		}
	case astnode.NamespaceDefinition:
		def.SymbolInfo.Kind = symbol.KindNamespace
	}

	r := &Resolver{Index: idx}
	if t, ok := r.typeFromNode(n, 0); ok {
		def.Type = t
	} else {
		def.Type = symtype.MixedType
	}

	if doc, ok := n.DocComment(); ok && doc != "" {
		def.Documentation = doc
		def.HasDocs = true
	}

	def.SymbolInfo.Name = simpleName(n)
	def.SymbolInfo.Location = &symbol.Location{File: file}
	def.DeclarationLine = declarationLineFor(n)

	return def, true
}

// declarationLineFor applies §4.8: a ConstElement splices itself into its
// enclosing ConstDeclaration/ClassConstDeclaration's text, and a
// PropertyDeclaration splices itself into an enclosing
// PropertyGroupDeclaration's text, both dropping every sibling element
// (including ones before the target, not just after it); every other
// declaration kind — including a PropertyDeclaration with no
// PropertyGroupDeclaration parent, i.e. an already-single-variable property —
// just truncates its own text at the first newline.
func declarationLineFor(n astnode.Node) string {
	switch n.Kind() {
	case astnode.ConstElement:
		if parent := n.Parent(); parent != nil {
			if start, ok := firstElementOffset(parent, astnode.ConstElement); ok {
				return symbol.DeclarationLine(parent.Text(), n.Text(), start)
			}
		}
	case astnode.PropertyDeclaration:
		if parent := n.Parent(); parent != nil && parent.Kind() == astnode.PropertyGroupDeclaration {
			if start, ok := firstElementOffset(parent, astnode.PropertyDeclaration); ok {
				return symbol.DeclarationLine(parent.Text(), n.Text(), start)
			}
		}
	}
	return symbol.DeclarationLine(n.Text(), "", -1)
}

// firstElementOffset returns the offset, relative to parent's own text, of
// parent's first child of kind elementKind — the start of the element list
// declarationLineFor splices a single element back into.
func firstElementOffset(parent astnode.Node, elementKind astnode.Kind) (int, bool) {
	for _, child := range parent.Children() {
		if child.Kind() == elementKind {
			return child.StartOffset() - parent.StartOffset(), true
		}
	}
	return 0, false
}

func extendsList(n astnode.Node) []symbol.FQN {
	var out []symbol.FQN
	for _, base := range n.FieldList(astnode.FieldExtends) {
		fqn := ClassNameNodeToType(base, nil)
		if classFqn, ok := fqn.FQSEN(); ok && classFqn != "" {
			out = append(out, classFqn)
		}
	}
	return out
}
