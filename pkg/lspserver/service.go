package lspserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"semls/internal/config"
	"semls/pkg/ignore"
	"semls/pkg/indexer"
	"semls/pkg/parserbackend"
	"semls/pkg/symbol"
)

// Service holds workspace state and answers LSP requests against a
// pkg/indexer.Builder, matching the teacher's pkg/lsp.Service shape
// (a thin struct wrapping one workspace index, registered onto a Server
// in one Register call) but reading from symbol.ProjectIndex/pkg/xref
// instead of the teacher's generic model.Index.
type Service struct {
	mu       sync.RWMutex
	rootURI  string
	rootPath string

	registry *parserbackend.Registry
	cfg      *config.Config
	logger   *slog.Logger
	builder  *indexer.Builder
}

// NewService constructs a Service. cfg and logger may be nil, in which
// case config.DefaultConfig() and slog.Default() are used.
func NewService(registry *parserbackend.Registry, cfg *config.Config, logger *slog.Logger) *Service {
	if registry == nil {
		registry = parserbackend.NewDefaultRegistry()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{registry: registry, cfg: cfg, logger: logger}
}

// Register wires every LSP handler this service implements onto srv.
func (s *Service) Register(srv *Server) {
	srv.Handle("initialize", s.handleInitialize)
	srv.Handle("shutdown", s.handleShutdown)
	srv.Handle("textDocument/documentSymbol", s.handleDocumentSymbol)
	srv.Handle("workspace/symbol", s.handleWorkspaceSymbol)
	srv.Handle("textDocument/definition", s.handleDefinition)
	srv.Handle("textDocument/references", s.handleReferences)
	srv.Handle("textDocument/hover", s.handleHover)
	srv.Handle("textDocument/rename", s.handleRename)

	srv.OnNotify("initialized", func(params json.RawMessage) {
		s.buildIndex()
	})
	srv.OnNotify("textDocument/didOpen", s.handleDidOpen)
	srv.OnNotify("textDocument/didSave", s.handleDidSave)
	srv.OnNotify("exit", func(params json.RawMessage) {})
}

// Builder exposes the underlying pkg/indexer.Builder once initialize has
// run, for internal/watch to drive BuildFiles on filesystem events.
func (s *Service) Builder() *indexer.Builder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.builder
}

// RootPath returns the workspace root initialize established.
func (s *Service) RootPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootPath
}

func (s *Service) handleInitialize(params json.RawMessage) (any, error) {
	var p InitializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.rootURI = p.RootURI
	s.rootPath = uriToPath(p.RootURI)
	if s.rootPath == "" {
		s.rootPath = p.RootPath
	}
	s.builder = s.newBuilder()
	s.mu.Unlock()

	return InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:        syncFull,
			DocumentSymbolProvider:  true,
			WorkspaceSymbolProvider: true,
			DefinitionProvider:      true,
			ReferencesProvider:      true,
			HoverProvider:           true,
			RenameProvider:          true,
		},
		ServerInfo: &ServerInfo{Name: "semls", Version: "0.1.0"},
	}, nil
}

func (s *Service) newBuilder() *indexer.Builder {
	backend, ok := s.registry.Get(s.cfg.Index.Backend)
	if !ok {
		s.logger.Warn("configured backend not registered, falling back to reference",
			slog.String("backend", s.cfg.Index.Backend))
		backend, _ = s.registry.Get("reference")
	}

	opts := []indexer.Option{
		indexer.WithLogger(s.logger),
		indexer.WithWorkers(s.cfg.Index.Workers),
	}
	if s.rootPath != "" && s.cfg.Workspace.IgnoreFile != "" {
		ignorePath := filepath.Join(s.rootPath, s.cfg.Workspace.IgnoreFile)
		m, err := ignore.Load(ignorePath)
		switch {
		case err == nil:
			opts = append(opts, indexer.WithIgnore(m))
		case !os.IsNotExist(err):
			s.logger.Warn("failed to load ignore file", slog.String("path", ignorePath), slog.String("error", err.Error()))
		}
	}
	return indexer.NewBuilder(backend, opts...)
}

func (s *Service) handleShutdown(params json.RawMessage) (any, error) {
	return nil, nil
}

func (s *Service) buildIndex() {
	s.mu.RLock()
	root, builder := s.rootPath, s.builder
	s.mu.RUnlock()
	if root == "" || builder == nil {
		return
	}
	if _, err := builder.BuildPath(root); err != nil {
		s.logger.Warn("initial index build failed", slog.String("error", err.Error()))
	}
}

func (s *Service) handleDocumentSymbol(params json.RawMessage) (any, error) {
	var p struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}
	path := uriToPath(p.TextDocument.URI)

	builder := s.Builder()
	if builder == nil {
		return []DocumentSymbol{}, nil
	}

	var out []DocumentSymbol
	for _, def := range builder.Index().AllProjectDefinitions() {
		if def.SymbolInfo.Location == nil || def.SymbolInfo.Location.File != path {
			continue
		}
		out = append(out, DocumentSymbol{
			Name:           def.SymbolInfo.Name,
			Kind:           lspKind(def.SymbolInfo.Kind),
			Range:          locationToRange(def.SymbolInfo.Location),
			SelectionRange: locationToRange(def.SymbolInfo.Location),
		})
	}
	return out, nil
}

func (s *Service) handleWorkspaceSymbol(params json.RawMessage) (any, error) {
	var p struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	builder := s.Builder()
	if builder == nil {
		return []SymbolInformation{}, nil
	}

	query := strings.ToLower(p.Query)
	var out []SymbolInformation
	for _, def := range builder.Index().AllProjectDefinitions() {
		if query != "" && !strings.Contains(strings.ToLower(def.SymbolInfo.Name), query) {
			continue
		}
		if def.SymbolInfo.Location == nil {
			continue
		}
		out = append(out, SymbolInformation{
			Name: def.SymbolInfo.Name,
			Kind: lspKind(def.SymbolInfo.Kind),
			Location: LSPLocation{
				URI:   pathToURI(def.SymbolInfo.Location.File),
				Range: locationToRange(def.SymbolInfo.Location),
			},
		})
	}
	return out, nil
}

func (s *Service) handleDidOpen(params json.RawMessage) {
	var p struct {
		TextDocument TextDocumentItem `json:"textDocument"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	s.reindex(uriToPath(p.TextDocument.URI))
}

func (s *Service) handleDidSave(params json.RawMessage) {
	var p struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return
	}
	s.reindex(uriToPath(p.TextDocument.URI))
}

func (s *Service) reindex(path string) {
	builder := s.Builder()
	if builder == nil || path == "" {
		return
	}
	if _, err := builder.BuildFiles([]string{path}); err != nil {
		s.logger.Warn("incremental re-index failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

func (s *Service) handleDefinition(params json.RawMessage) (any, error) {
	var p struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
		Position     Position               `json:"position"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	builder := s.Builder()
	if builder == nil {
		return nil, nil
	}
	path := uriToPath(p.TextDocument.URI)
	fqn, ok := builder.SymbolAt(path, p.Position.Line+1, p.Position.Character)
	if !ok {
		return nil, nil
	}
	def, ok := builder.Index().GetDefinition(fqn, true)
	if !ok || def.SymbolInfo.Location == nil {
		return nil, nil
	}
	return LSPLocation{
		URI:   pathToURI(def.SymbolInfo.Location.File),
		Range: locationToRange(def.SymbolInfo.Location),
	}, nil
}

func (s *Service) handleReferences(params json.RawMessage) (any, error) {
	var p struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
		Position     Position               `json:"position"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	builder := s.Builder()
	if builder == nil {
		return []LSPLocation{}, nil
	}
	path := uriToPath(p.TextDocument.URI)
	fqn, ok := builder.SymbolAt(path, p.Position.Line+1, p.Position.Character)
	if !ok {
		return []LSPLocation{}, nil
	}

	var out []LSPLocation
	for _, loc := range builder.Index().References(fqn) {
		out = append(out, LSPLocation{URI: pathToURI(loc.File), Range: locationToRange(&loc)})
	}
	return out, nil
}

func (s *Service) handleHover(params json.RawMessage) (any, error) {
	var p struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
		Position     Position               `json:"position"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	builder := s.Builder()
	if builder == nil {
		return nil, nil
	}
	path := uriToPath(p.TextDocument.URI)
	fqn, ok := builder.SymbolAt(path, p.Position.Line+1, p.Position.Character)
	if !ok {
		return nil, nil
	}
	def, ok := builder.Index().GetDefinition(fqn, true)
	if !ok {
		return nil, nil
	}

	content := fmt.Sprintf("```\n%s\n```", def.DeclarationLine)
	if def.HasDocs {
		content = def.Documentation + "\n\n" + content
	}
	return Hover{Contents: MarkupContent{Kind: "markdown", Value: content}}, nil
}

func (s *Service) handleRename(params json.RawMessage) (any, error) {
	var p RenameParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	builder := s.Builder()
	if builder == nil {
		return nil, fmt.Errorf("workspace not indexed")
	}
	path := uriToPath(p.TextDocument.URI)
	fqn, ok := builder.SymbolAt(path, p.Position.Line+1, p.Position.Character)
	if !ok {
		return nil, fmt.Errorf("no symbol at position")
	}

	newName := p.NewName
	changes := make(map[string][]TextEdit)
	if def, ok := builder.Index().GetDefinition(fqn, false); ok && def.SymbolInfo.Location != nil {
		uri := pathToURI(def.SymbolInfo.Location.File)
		changes[uri] = append(changes[uri], TextEdit{
			Range:   nameRange(def.SymbolInfo.Location, def.SymbolInfo.Name),
			NewText: newName,
		})
	}
	for _, loc := range builder.Index().References(fqn) {
		uri := pathToURI(loc.File)
		changes[uri] = append(changes[uri], TextEdit{
			Range:   locationToRange(&loc),
			NewText: newName,
		})
	}
	return WorkspaceEdit{Changes: changes}, nil
}

// nameRange approximates the span of just a definition's own name token,
// since symbol.Location only carries the declaration's full span: the
// first len(name) columns of the start line. Good enough for a
// best-effort rename; spec.md's Non-goals exclude exact token-span
// tracking (see SPEC_FULL.md's "best-effort rename" supplement).
func nameRange(loc *symbol.Location, name string) Range {
	return Range{
		Start: Position{Line: loc.StartLine - 1, Character: loc.StartCol},
		End:   Position{Line: loc.StartLine - 1, Character: loc.StartCol + len(name)},
	}
}

func locationToRange(loc *symbol.Location) Range {
	return Range{
		Start: Position{Line: loc.StartLine - 1, Character: loc.StartCol},
		End:   Position{Line: loc.EndLine - 1, Character: loc.EndCol},
	}
}

func lspKind(k symbol.SymbolKind) int {
	switch k {
	case symbol.KindClass, symbol.KindTrait:
		return skClass
	case symbol.KindInterface:
		return skInterface
	case symbol.KindNamespace:
		return skNamespace
	case symbol.KindFunction:
		return skFunction
	case symbol.KindMethod:
		return skMethod
	case symbol.KindProperty:
		return skProperty
	case symbol.KindConstant, symbol.KindClassConstant:
		return skConstant
	case symbol.KindVariable:
		return skVariable
	default:
		return skFile
	}
}

func uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

func pathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}
