package parserbackend

import "semls/pkg/astnode"

// externalBackend is the adapter shape a binary links a real grammar
// behind. spec.md §1 treats the concrete parser as an external
// collaborator; this repo does not ship one, matching the dropped
// gotreesitter dependency (see DESIGN.md) — a caller that needs real
// parsing registers its own Backend under this name instead of using
// this placeholder.
type externalBackend struct{}

// NewExternalBackend returns the "external" backend placeholder.
func NewExternalBackend() Backend { return externalBackend{} }

func (externalBackend) Name() string { return "external" }

func (b externalBackend) Parse(path string, src []byte) (astnode.Node, error) {
	return nil, unimplementedError{backend: b.Name()}
}
