package astnode

// Tree is an arena owning every node of one parsed document. Nodes are
// handed out as lightweight handles (index into the arena); parent pointers
// are handle-valued, never owning, per the arena-and-indices design.
type Tree struct {
	nodes []arenaNode
}

type arenaNode struct {
	kind       Kind
	text       string
	start, end int
	parent     int // -1 for root
	index      int // position among parent's children, -1 for root
	children   []int
	fields     map[string]int
	fieldLists map[string][]int
	doc        string
	hasDoc     bool
	resolved   string
	hasResolved bool
}

// NewTree creates an empty arena.
func NewTree() *Tree {
	return &Tree{}
}

// Handle is a lightweight reference to a node inside a Tree. It implements
// Node.
type Handle struct {
	tree *Tree
	idx  int
}

// NewNode allocates a new node with no parent. Attach children with
// AddChild/SetField/SetFieldList before handing the tree to a resolver.
func (t *Tree) NewNode(kind Kind, text string, start, end int) Handle {
	t.nodes = append(t.nodes, arenaNode{
		kind:   kind,
		text:   text,
		start:  start,
		end:    end,
		parent: -1,
		index:  -1,
	})
	return Handle{tree: t, idx: len(t.nodes) - 1}
}

// AddChild appends child to parent's ordered children and sets child's
// parent pointer and sibling index.
func (t *Tree) AddChild(parent, child Handle) {
	if parent.tree != t || child.tree != t {
		panic("astnode: cross-tree handle")
	}
	pn := &t.nodes[parent.idx]
	cn := &t.nodes[child.idx]
	cn.parent = parent.idx
	cn.index = len(pn.children)
	pn.children = append(pn.children, child.idx)
}

// SetField attaches a named well-known child to n (see FieldXxx constants).
// This does not add it to n's ordered Children(); call AddChild separately
// if the field child should also appear there.
func (t *Tree) SetField(n Handle, name string, value Handle) {
	nn := &t.nodes[n.idx]
	if nn.fields == nil {
		nn.fields = make(map[string]int)
	}
	nn.fields[name] = value.idx
}

// SetFieldList attaches a named well-known child list to n.
func (t *Tree) SetFieldList(n Handle, name string, values []Handle) {
	nn := &t.nodes[n.idx]
	if nn.fieldLists == nil {
		nn.fieldLists = make(map[string][]int)
	}
	idxs := make([]int, len(values))
	for i, v := range values {
		idxs[i] = v.idx
	}
	nn.fieldLists[name] = idxs
}

// SetDocComment attaches doc-comment text to n.
func (t *Tree) SetDocComment(n Handle, doc string) {
	nn := &t.nodes[n.idx]
	nn.doc = doc
	nn.hasDoc = true
}

// SetResolvedName attaches the parser-computed resolved name to n.
func (t *Tree) SetResolvedName(n Handle, name string) {
	nn := &t.nodes[n.idx]
	nn.resolved = name
	nn.hasResolved = true
}

func (h Handle) node() *arenaNode { return &h.tree.nodes[h.idx] }

func (h Handle) Kind() Kind { return h.node().kind }
func (h Handle) Text() string { return h.node().text }
func (h Handle) StartOffset() int { return h.node().start }
func (h Handle) EndOffset() int { return h.node().end }

func (h Handle) Parent() Node {
	p := h.node().parent
	if p < 0 {
		return nil
	}
	return Handle{tree: h.tree, idx: p}
}

func (h Handle) Children() []Node {
	cs := h.node().children
	out := make([]Node, len(cs))
	for i, c := range cs {
		out[i] = Handle{tree: h.tree, idx: c}
	}
	return out
}

func (h Handle) Index() int { return h.node().index }

func (h Handle) Field(name string) (Node, bool) {
	idx, ok := h.node().fields[name]
	if !ok {
		return nil, false
	}
	return Handle{tree: h.tree, idx: idx}, true
}

func (h Handle) FieldList(name string) []Node {
	idxs := h.node().fieldLists[name]
	if idxs == nil {
		return nil
	}
	out := make([]Node, len(idxs))
	for i, idx := range idxs {
		out[i] = Handle{tree: h.tree, idx: idx}
	}
	return out
}

func (h Handle) DocComment() (string, bool) {
	n := h.node()
	return n.doc, n.hasDoc
}

func (h Handle) ResolvedName() (string, bool) {
	n := h.node()
	return n.resolved, n.hasResolved
}

func (h Handle) Equal(o Node) bool {
	oh, ok := o.(Handle)
	if !ok || o == nil {
		return false
	}
	return oh.tree == h.tree && oh.idx == h.idx
}

var _ Node = Handle{}
