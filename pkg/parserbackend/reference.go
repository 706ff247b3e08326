package parserbackend

import "semls/pkg/astnode"

// referenceBackend is a minimal, deliberately non-grammatical Backend: it
// wraps a whole document in a single root node and produces no
// declarations of its own. It exists so pkg/indexer and cmd/semls have a
// Backend to wire against without a concrete grammar linked in. A real grammar belongs behind the "external" backend, per
// spec.md §1's framing of the parser as an out-of-scope collaborator.
type referenceBackend struct{}

// NewReferenceBackend returns the "reference" backend.
func NewReferenceBackend() Backend { return referenceBackend{} }

func (referenceBackend) Name() string { return "reference" }

func (referenceBackend) Parse(path string, src []byte) (astnode.Node, error) {
	tree := astnode.NewTree()
	root := tree.NewNode(astnode.NamespaceDefinition, "", 0, len(src))
	return root, nil
}
