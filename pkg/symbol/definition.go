// Package symbol implements the Definition Record (C2) and the two-tier
// Index (C3) it is stored in. Grounded on the teacher's pkg/scope/graph.go
// (Definition/Ref/Scope: plain exported structs, explicit New*/Add*
// constructors, map-keyed lookup) and pkg/model/model.go (Index with
// nil-safe accessor methods).
package symbol

import (
	"strings"

	"semls/pkg/symtype"
)

// FQN is a fully-qualified name string in the grammar spec.md §6 pins.
type FQN = string

// Location pins a span inside a document.
type Location struct {
	File      string
	StartLine int
	EndLine   int
	StartCol  int
	EndCol    int
}

// SymbolKind classifies a Definition for presentation (LSP SymbolKind and
// similar).
type SymbolKind int

const (
	KindUnknown SymbolKind = iota
	KindClass
	KindInterface
	KindTrait
	KindNamespace
	KindFunction
	KindMethod
	KindProperty
	KindConstant
	KindClassConstant
	KindVariable
)

// SymbolInformation is the presentation payload a Definition carries for
// feature handlers (go-to-definition, hover, workspace/symbol).
type SymbolInformation struct {
	Name          string
	Kind          SymbolKind
	ContainerName string
	Location      *Location
}

// Definition describes one defined symbol. Definitions reference other
// Definitions only by FQN string, never by pointer — the index stays
// acyclic and safely snapshottable.
type Definition struct {
	FQN             FQN
	IsClass         bool
	IsGlobal        bool
	IsStatic        bool
	Extends         []FQN // empty for non-classes; at most one for classes
	Type            symtype.Type
	DeclarationLine string
	Documentation   string
	HasDocs         bool
	SymbolInfo      SymbolInformation
}

// CanBeInstantiated is derived from IsClass at read time, per spec.md §3.
func (d Definition) CanBeInstantiated() bool { return d.IsClass }

// URI returns the document this Definition was produced from, derived from
// its symbol-information location (Definitions carry no separate URI
// field, per spec.md's explicit field list).
func (d Definition) URI() (string, bool) {
	if d.SymbolInfo.Location == nil {
		return "", false
	}
	return d.SymbolInfo.Location.File, true
}

// DeclarationLine reconstructs the source line for display per spec.md
// §4.8: for one element of a multi-element declaration (a const among
// `const A = 1, B = 2;`, or a property among `public $a, $b, $c;`), the
// enclosing declaration's own prefix with only the target element spliced
// in; for everything else, the node's own text, truncated at the first
// newline. elementsStartInFull is the offset, within fullText, where the
// declaration's element list begins — i.e. the first element's own offset,
// not the target element's — so every other element, whether before or
// after the target, is dropped along with it.
func DeclarationLine(fullText, elementText string, elementsStartInFull int) string {
	text := fullText
	if elementsStartInFull >= 0 && elementText != "" {
		text = spliceElement(fullText, elementText, elementsStartInFull)
	}
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return text
}

func spliceElement(fullText, elementText string, prefixEnd int) string {
	// Keep only the declaration's own prefix (modifiers, keyword, leading
	// whitespace) up to where its element list starts, then splice in the
	// target element by itself — per §4.8's "only the target element
	// spliced in", not the target plus whichever siblings precede it.
	if prefixEnd < 0 || prefixEnd > len(fullText) {
		return elementText
	}
	return fullText[:prefixEnd] + elementText + ";"
}
