// Package indexer implements the document indexing pipeline SPEC_FULL.md
// §2.3 describes: a document-level pass that walks every node of a parsed
// document, calling resolve.DefinedFqn/CreateDefinition on declaration
// nodes to populate a symbol.Index, and resolve.ReferenceToFqn on
// reference nodes to populate Index.References and pkg/xref's call graph.
//
// Grounded on the teacher's pkg/index/builder.go: a bounded worker pool
// sized by GOMAXPROCS (overridable by an environment variable, matching
// indexWorkerCount), and incremental reuse of a previous pass's results
// when a file's content hash is unchanged — replacing the teacher's
// size/mtime reuse check, since spec.md's lifecycle model invalidates by
// source-location-into-document rather than by file stat.
package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"semls/pkg/astnode"
	"semls/pkg/ignore"
	"semls/pkg/parserbackend"
	"semls/pkg/resolve"
	"semls/pkg/symbol"
	"semls/pkg/xref"
)

var (
	documentsIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "semls_indexer_documents_indexed_total",
		Help: "Total number of documents that went through a full resolve pass.",
	})
	documentsReused = promauto.NewCounter(prometheus.CounterOpts{
		Name: "semls_indexer_documents_reused_total",
		Help: "Total number of documents whose previous pass's results were reused because the content hash was unchanged.",
	})
	definitionsProduced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "semls_indexer_definitions_produced_total",
		Help: "Total number of Definitions produced across all passes.",
	})
	resolveSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "semls_indexer_resolve_seconds",
		Help:    "Wall time spent walking and resolving a single document.",
		Buckets: prometheus.DefBuckets,
	})
)

// ParseError records a file the configured backend could not parse at all.
type ParseError struct {
	Path  string
	Error string
}

// BuildStats summarizes one BuildPath/BuildFiles pass.
type BuildStats struct {
	CandidateFiles  int
	ParsedFiles     int
	ReusedFiles     int
	RemovedFiles    int
	DefinitionCount int
	ReferenceCount  int
	Errors          []ParseError
}

// Result is the outcome of one indexing pass: the revision stamp a racing
// query can compare against (spec.md §5's "a racing query can tell which
// snapshot it read"), and the pass's stats.
type Result struct {
	Revision string
	Stats    BuildStats
}

// cachedFile is what the builder retains per path across passes, to decide
// whether a file needs to be re-walked and to invalidate its previous
// contribution to the index and xref graph when it does.
type cachedFile struct {
	hash    string
	callers []symbol.FQN // caller FQNs this file produced edges for
}

// Builder runs the document indexing pipeline against a configured parser
// backend, an index, and a cross-reference graph it owns and mutates in
// place. The zero value is not usable; use NewBuilder.
type Builder struct {
	backend parserbackend.Backend
	matcher *ignore.Matcher
	logger  *slog.Logger
	workers int // 0 means auto (env override, then GOMAXPROCS)

	index *symbol.ProjectIndex
	graph *xref.Graph

	mu    sync.Mutex
	cache map[string]cachedFile // path -> last-seen hash + produced callers

	spanMu    sync.RWMutex
	declSpans map[string][]positionedFqn // path -> declaration spans
	refSpans  map[string][]positionedFqn // path -> reference spans
}

// positionedFqn pairs an FQN with the document span it was found at, so a
// position (as an LSP request supplies) can be mapped back to the FQN it
// names — the reverse of symbol.ProjectIndex's FQN-to-locations direction.
type positionedFqn struct {
	fqn symbol.FQN
	loc symbol.Location
}

// Option configures a Builder at construction time.
type Option func(*Builder)

// WithIgnore sets the matcher used to skip paths during a directory walk.
func WithIgnore(m *ignore.Matcher) Option {
	return func(b *Builder) { b.matcher = m }
}

// WithLogger sets the logger passed to Debug/Warn calls; nil defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// WithWorkers bounds the indexing worker pool. 0 (the default) means
// GOMAXPROCS, further overridable by SEMLS_INDEX_WORKERS.
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// NewBuilder constructs a Builder over backend, which produces astnode.Node
// trees the resolver core consumes.
func NewBuilder(backend parserbackend.Backend, opts ...Option) *Builder {
	b := &Builder{
		backend: backend,
		logger:  slog.Default(),
		index:     symbol.NewProjectIndex(),
		graph:     xref.NewGraph(),
		cache:     make(map[string]cachedFile),
		declSpans: make(map[string][]positionedFqn),
		refSpans:  make(map[string][]positionedFqn),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Index returns the symbol.Index this Builder populates. Safe to read
// concurrently with further passes.
func (b *Builder) Index() *symbol.ProjectIndex { return b.index }

// Xref returns the cross-reference graph this Builder populates.
func (b *Builder) Xref() *xref.Graph { return b.graph }

// DeclarationAt returns the FQN of the declaration whose span contains the
// given 1-based line and 0-based column in file, the lookup
// textDocument/definition needs when the cursor sits on a declaration's
// own name rather than on a reference to something else.
func (b *Builder) DeclarationAt(file string, line, col int) (symbol.FQN, bool) {
	return b.spanAt(b.declSpans, file, line, col)
}

// ReferenceAt returns the FQN a reference occupying the given position
// resolved to, the lookup textDocument/definition and textDocument/hover
// need to go from a cursor position to a symbol.
func (b *Builder) ReferenceAt(file string, line, col int) (symbol.FQN, bool) {
	return b.spanAt(b.refSpans, file, line, col)
}

// SymbolAt tries DeclarationAt first, then ReferenceAt: a position may sit
// on either a symbol's own declaration or a use of it, and callers (e.g.
// textDocument/references) want the FQN either way.
func (b *Builder) SymbolAt(file string, line, col int) (symbol.FQN, bool) {
	if fqn, ok := b.DeclarationAt(file, line, col); ok {
		return fqn, true
	}
	return b.ReferenceAt(file, line, col)
}

func (b *Builder) spanAt(spans map[string][]positionedFqn, file string, line, col int) (symbol.FQN, bool) {
	b.spanMu.RLock()
	defer b.spanMu.RUnlock()
	for _, p := range spans[file] {
		if spanContains(p.loc, line, col) {
			return p.fqn, true
		}
	}
	return "", false
}

// spanContains reports whether (line, col) falls within loc, treating line
// as 1-based and col as 0-based to match symbol.Location's convention
// (set by positionAt in this package).
func spanContains(loc symbol.Location, line, col int) bool {
	if line < loc.StartLine || line > loc.EndLine {
		return false
	}
	if line == loc.StartLine && col < loc.StartCol {
		return false
	}
	if line == loc.EndLine && col > loc.EndCol {
		return false
	}
	return true
}

// BuildPath walks root (a file or directory), (re)indexing every candidate
// file whose content hash has changed since the last pass and skipping
// every file whose content is unchanged, and removes cache entries (and
// their contribution to the index/graph) for files that disappeared.
func (b *Builder) BuildPath(root string) (Result, error) {
	target, err := filepath.Abs(root)
	if err != nil {
		return Result{}, err
	}
	target = filepath.Clean(target)

	info, err := os.Stat(target)
	if err != nil {
		return Result{}, err
	}

	var candidates []string
	if info.IsDir() {
		candidates, err = b.collectCandidates(target)
		if err != nil {
			return Result{}, err
		}
	} else {
		candidates = []string{target}
	}

	stats, err := b.indexFiles(candidates)
	if err != nil {
		return Result{}, err
	}
	stats.RemovedFiles = b.pruneMissing(candidates, info.IsDir())

	return Result{Revision: uuid.New().String(), Stats: stats}, nil
}

// BuildFiles re-indexes exactly the given paths, leaving every other
// cached file untouched. This is the entry point internal/watch and the
// LSP service's didSave handler use: the indexer does not need to re-walk
// the whole workspace to react to a handful of changed documents.
func (b *Builder) BuildFiles(paths []string) (Result, error) {
	stats, err := b.indexFiles(paths)
	if err != nil {
		return Result{}, err
	}
	return Result{Revision: uuid.New().String(), Stats: stats}, nil
}

// pruneMissing drops cache entries (and their index/graph contributions)
// for files the current candidate set no longer contains. Only applies
// when root was a directory walk, so a single-file BuildPath never prunes
// the rest of the project.
func (b *Builder) pruneMissing(candidates []string, isDirWalk bool) int {
	if !isDirWalk {
		return 0
	}
	present := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		present[c] = true
	}

	b.mu.Lock()
	var stale []string
	for path := range b.cache {
		if !present[path] {
			stale = append(stale, path)
		}
	}
	b.mu.Unlock()

	for _, path := range stale {
		b.invalidate(path)
	}
	return len(stale)
}

func (b *Builder) invalidate(path string) {
	b.mu.Lock()
	cached, ok := b.cache[path]
	delete(b.cache, path)
	b.mu.Unlock()
	if !ok {
		return
	}
	b.index.RemoveDefinitionsForURI(path)
	b.index.RemoveReferencesForURI(path)
	for _, caller := range cached.callers {
		b.graph.RemoveEdgesFromCaller(caller)
	}
	b.spanMu.Lock()
	delete(b.declSpans, path)
	delete(b.refSpans, path)
	b.spanMu.Unlock()
}

type parseOutcome struct {
	path    string
	src     []byte
	root    astnode.Node
	hash    string
	reused  bool
	err     error
}

// indexFiles is the shared core of BuildPath and BuildFiles: read, parse,
// and walk every path whose content changed; skip every path whose
// content is unchanged.
func (b *Builder) indexFiles(paths []string) (BuildStats, error) {
	stats := BuildStats{CandidateFiles: len(paths)}
	if len(paths) == 0 {
		return stats, nil
	}

	outcomes := b.parseChanged(paths)

	changed := make([]parseOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			stats.Errors = append(stats.Errors, ParseError{Path: o.path, Error: o.err.Error()})
			continue
		}
		if o.reused {
			stats.ReusedFiles++
			documentsReused.Inc()
			continue
		}
		changed = append(changed, o)
		stats.ParsedFiles++
	}

	// Invalidate every changed file's previous contribution before the new
	// pass's declarations go in, per spec.md's document-lifecycle
	// invalidate-then-replace rule.
	for _, o := range changed {
		b.invalidateIfCached(o.path)
	}

	// Phase 1: declarations across every changed document. Cross-file
	// resolution (e.g. `extends` chains spanning two files) depends on
	// declarations already being in the index before phase 2 runs, even
	// for files this pass did not touch — those are already present from
	// earlier passes, since the index accumulates across calls.
	var defCount int64
	runParallel(b.workerCount(len(changed)), changed, func(o parseOutcome) {
		n := b.walkDeclarations(o.root, o.path, o.src)
		atomicAdd(&defCount, int64(n))
	})
	stats.DefinitionCount = int(defCount)
	definitionsProduced.Add(float64(defCount))

	// Phase 2: references, now that every declaration (from this pass and
	// all prior ones) is visible to the resolver.
	var refCount int64
	callersByPath := make(map[string][]symbol.FQN, len(changed))
	var callersMu sync.Mutex
	runParallel(b.workerCount(len(changed)), changed, func(o parseOutcome) {
		start := time.Now()
		n, callers := b.walkReferences(o.root, o.path, o.src)
		resolveSeconds.Observe(time.Since(start).Seconds())
		atomicAdd(&refCount, int64(n))
		callersMu.Lock()
		callersByPath[o.path] = callers
		callersMu.Unlock()
		documentsIndexed.Inc()
	})
	stats.ReferenceCount = int(refCount)

	b.mu.Lock()
	for _, o := range changed {
		b.cache[o.path] = cachedFile{hash: o.hash, callers: callersByPath[o.path]}
	}
	b.mu.Unlock()

	return stats, nil
}

func (b *Builder) invalidateIfCached(path string) {
	b.mu.Lock()
	cached, ok := b.cache[path]
	b.mu.Unlock()
	if !ok {
		return
	}
	b.index.RemoveDefinitionsForURI(path)
	b.index.RemoveReferencesForURI(path)
	for _, caller := range cached.callers {
		b.graph.RemoveEdgesFromCaller(caller)
	}
	b.spanMu.Lock()
	delete(b.declSpans, path)
	delete(b.refSpans, path)
	b.spanMu.Unlock()
}

// parseChanged reads and parses every path whose content hash differs
// from the cached hash, concurrently; paths whose hash is unchanged are
// reported as reused without being read a second time... they are read
// once to compute the hash, which is unavoidable without a file-stat
// shortcut spec.md's lifecycle model deliberately does not rely on.
func (b *Builder) parseChanged(paths []string) []parseOutcome {
	out := make([]parseOutcome, len(paths))
	runParallelIndexed(b.workerCount(len(paths)), paths, func(i int, path string) {
		src, err := os.ReadFile(path)
		if err != nil {
			out[i] = parseOutcome{path: path, err: err}
			return
		}
		hash := contentHash(src)

		b.mu.Lock()
		cached, ok := b.cache[path]
		b.mu.Unlock()
		if ok && cached.hash == hash {
			out[i] = parseOutcome{path: path, hash: hash, reused: true}
			return
		}

		root, err := b.backend.Parse(path, src)
		if err != nil {
			b.logger.Debug("parse failed", slog.String("path", path), slog.String("error", err.Error()))
			out[i] = parseOutcome{path: path, err: err}
			return
		}
		out[i] = parseOutcome{path: path, src: src, root: root, hash: hash}
	})
	return out
}

// walkDeclarations runs C6+C9 over every declaration node reachable from
// root, storing each produced Definition into the index with its
// offset-derived Location filled in. Returns the number of definitions
// produced.
func (b *Builder) walkDeclarations(root astnode.Node, path string, src []byte) int {
	if root == nil {
		return 0
	}
	count := 0
	var spans []positionedFqn
	for _, n := range astnode.Descendants(root) {
		if _, ok := resolve.DefinedFqn(n); !ok {
			continue
		}
		def, ok := resolve.CreateDefinition(n, b.index, path)
		if !ok {
			continue
		}
		loc := locationFor(path, src, n)
		def.SymbolInfo.Location = loc
		b.index.SetDefinition(def.FQN, def)
		spans = append(spans, positionedFqn{fqn: def.FQN, loc: *loc})
		count++
	}
	b.spanMu.Lock()
	b.declSpans[path] = spans
	b.spanMu.Unlock()
	return count
}

// walkReferences runs C7 over every reference-shaped node reachable from
// root, recording each resolved FQN into the index's reference map and,
// when the reference occurs inside a declaration C6 can name, into the
// xref graph as an edge from that enclosing declaration to the resolved
// FQN. Returns the number of references recorded and the set of caller
// FQNs this document contributed (so a future pass can invalidate exactly
// those edges).
//
// A CallExpression's callee field (a QualifiedName, MemberAccessExpression,
// or ScopedPropertyAccessExpression) is skipped when visited on its own:
// ReferenceToFqn dispatches on the node's own kind, so asking it about the
// bare callee node directly would resolve the non-call form (no "()"
// suffix) and double up with the call-form resolution already produced by
// visiting the enclosing CallExpression. This repo resolves call targets
// through the CallExpression node only, matching how a real go-to-definition
// request on a call's name would be served.
func (b *Builder) walkReferences(root astnode.Node, path string, src []byte) (int, []symbol.FQN) {
	if root == nil {
		return 0, nil
	}
	descendants := astnode.Descendants(root)
	skip := calleeSkipSet(descendants)

	r := &resolve.Resolver{Index: b.index}
	count := 0
	var spans []positionedFqn
	callerSet := map[symbol.FQN]bool{}
	for _, n := range descendants {
		if skip[nodeKey(n)] {
			continue
		}
		fqn, ok := r.ReferenceToFqn(n)
		if !ok || fqn == "" {
			continue
		}
		loc := locationFor(path, src, n)
		b.index.AddReference(fqn, *loc)
		spans = append(spans, positionedFqn{fqn: fqn, loc: *loc})
		count++

		if caller, ok := enclosingCallableFqn(n); ok {
			b.graph.AddEdge(caller, fqn, *loc)
			callerSet[caller] = true
		}
	}
	b.spanMu.Lock()
	b.refSpans[path] = spans
	b.spanMu.Unlock()

	callers := make([]symbol.FQN, 0, len(callerSet))
	for c := range callerSet {
		callers = append(callers, c)
	}
	sort.Strings(callers)
	return count, callers
}

// enclosingCallableFqn walks up from n to the nearest function/method
// declaration and returns the FQN C6 assigns it, the "caller" side of an
// xref edge.
func enclosingCallableFqn(n astnode.Node) (symbol.FQN, bool) {
	fn, ok := astnode.EnclosingFunction(n)
	if !ok {
		return "", false
	}
	if fn.Kind() == astnode.AnonymousFunctionCreationExpression {
		// Anonymous functions have no FQN of their own (DefinedFqn has no
		// case for them); attribute the edge to the nearest named
		// enclosing function/method instead, if any.
		return enclosingCallableFqn(fn)
	}
	return resolve.DefinedFqn(fn)
}

type nodeID struct {
	kind       astnode.Kind
	start, end int
}

func nodeKey(n astnode.Node) nodeID {
	return nodeID{n.Kind(), n.StartOffset(), n.EndOffset()}
}

func calleeSkipSet(nodes []astnode.Node) map[nodeID]bool {
	skip := make(map[nodeID]bool)
	for _, n := range nodes {
		if n.Kind() != astnode.CallExpression {
			continue
		}
		callee, ok := n.Field(astnode.FieldCallee)
		if !ok {
			continue
		}
		switch callee.Kind() {
		case astnode.QualifiedName, astnode.MemberAccessExpression, astnode.ScopedPropertyAccessExpression:
			skip[nodeKey(callee)] = true
		}
	}
	return skip
}

// locationFor converts n's byte offsets into a symbol.Location with
// line/column filled in against src, the conversion resolve.CreateDefinition
// deliberately leaves to its caller (see definition.go's doc comment).
// Grounded on the teacher's pointAtOffset (pkg/lang/treesitter/parser.go):
// a single rune scan from the start of the buffer, since byte offsets
// alone cannot be interpreted without knowing how many newlines precede
// them.
func locationFor(path string, src []byte, n astnode.Node) *symbol.Location {
	startLine, startCol := positionAt(src, n.StartOffset())
	endLine, endCol := positionAt(src, n.EndOffset())
	return &symbol.Location{
		File:      path,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   endLine,
		EndCol:    endCol,
	}
}

func positionAt(src []byte, offset int) (line, col int) {
	line = 1
	if offset > len(src) {
		offset = len(src)
	}
	for i := 0; i < offset; {
		r, size := utf8.DecodeRune(src[i:])
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
		if size <= 0 {
			size = 1
		}
		i += size
	}
	return line, col
}

func contentHash(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

func (b *Builder) workerCount(taskCount int) int {
	if taskCount <= 0 {
		return 0
	}
	configured := b.workers
	if configured <= 0 {
		if raw := strings.TrimSpace(os.Getenv("SEMLS_INDEX_WORKERS")); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				configured = parsed
			}
		}
	}
	if configured <= 0 {
		configured = runtime.GOMAXPROCS(0)
	}
	if configured < 1 {
		configured = 1
	}
	if configured > taskCount {
		configured = taskCount
	}
	return configured
}

func (b *Builder) collectCandidates(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			name := entry.Name()
			if name == ".git" || name == ".hg" || name == ".svn" || name == "node_modules" || name == "vendor" {
				if path != root {
					return filepath.SkipDir
				}
			}
			if strings.HasPrefix(name, ".") && path != root {
				return filepath.SkipDir
			}
			if path != root && b.matcher != nil {
				if rel, relErr := filepath.Rel(root, path); relErr == nil && b.matcher.Match(filepath.ToSlash(rel), true) {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if b.matcher != nil {
			if rel, relErr := filepath.Rel(root, path); relErr == nil && b.matcher.Match(filepath.ToSlash(rel), false) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
