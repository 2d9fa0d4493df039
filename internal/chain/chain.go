package chain

import (
	"fmt"

	"github.com/stagehand-run/stagehand/internal/stage"
)

type nodeKind uint8

const (
	nodeStart nodeKind = iota
	nodeEnd
	nodeLink
)

// node addresses one position in the chain: the start sentinel, the end
// sentinel, or the link carrying a stage id.
type node struct {
	kind nodeKind
	id   stage.ID
}

func link(id stage.ID) node { return node{kind: nodeLink, id: id} }

func (n node) String() string {
	switch n.kind {
	case nodeStart:
		return "start"
	case nodeEnd:
		return "end"
	default:
		return fmt.Sprintf("link(%d)", n.id)
	}
}

// Chain is a map-backed doubly-linked ordering over stage ids with sentinel
// start/end markers. All structural edits are O(1); only iteration is O(n).
type Chain struct {
	fwd map[node]node
	bwd map[node]node
}

func New() *Chain {
	c := &Chain{
		fwd: make(map[node]node),
		bwd: make(map[node]node),
	}
	c.fwd[node{kind: nodeStart}] = node{kind: nodeEnd}
	c.bwd[node{kind: nodeEnd}] = node{kind: nodeStart}
	return c
}

// Len reports the number of linked stage ids.
func (c *Chain) Len() int {
	return len(c.fwd) - 1
}

// Contains reports whether id is linked.
func (c *Chain) Contains(id stage.ID) bool {
	_, ok := c.fwd[link(id)]
	return ok
}

// InsertFirst links id immediately after the start sentinel.
func (c *Chain) InsertFirst(id stage.ID) {
	c.splice(link(id), node{kind: nodeStart})
}

// InsertLast links id immediately before the end sentinel.
func (c *Chain) InsertLast(id stage.ID) {
	c.splice(link(id), c.bwd[node{kind: nodeEnd}])
}

// InsertAfter links id immediately after anchor.
func (c *Chain) InsertAfter(id, anchor stage.ID) {
	c.mustLinked(anchor, "insert after")
	c.splice(link(id), link(anchor))
}

// InsertBefore links id immediately before anchor.
func (c *Chain) InsertBefore(id, anchor stage.ID) {
	c.mustLinked(anchor, "insert before")
	c.splice(link(id), c.bwd[link(anchor)])
}

// Remove unlinks id, joining its neighbors.
func (c *Chain) Remove(id stage.ID) {
	c.mustLinked(id, "remove")
	n := link(id)
	next := c.fwd[n]
	prev := c.bwd[n]

	c.fwd[prev] = next
	c.bwd[next] = prev

	delete(c.fwd, n)
	delete(c.bwd, n)
}

// splice links n between prev and its current successor.
func (c *Chain) splice(n, prev node) {
	if _, ok := c.fwd[n]; ok {
		panic(fmt.Sprintf("chain: %s already linked", n))
	}
	next := c.fwd[prev]

	c.fwd[prev] = n
	c.fwd[n] = next

	c.bwd[next] = n
	c.bwd[n] = prev
}

func (c *Chain) mustLinked(id stage.ID, op string) {
	if !c.Contains(id) {
		panic(fmt.Sprintf("chain: %s of unlinked stage %d", op, id))
	}
}

// Walker yields stage ids one at a time. A walker is a single finite pass;
// request a fresh one per traversal.
type Walker struct {
	c       *Chain
	at      node
	forward bool
}

// Forward returns a walker yielding ids from start to end.
func (c *Chain) Forward() *Walker {
	return &Walker{c: c, at: node{kind: nodeStart}, forward: true}
}

// Backward returns a walker yielding ids from end to start.
func (c *Chain) Backward() *Walker {
	return &Walker{c: c, at: node{kind: nodeEnd}, forward: false}
}

// Next yields the next linked stage id, reporting false once the walk has
// reached the far sentinel.
func (w *Walker) Next() (stage.ID, bool) {
	if w.forward {
		w.at = w.c.fwd[w.at]
	} else {
		w.at = w.c.bwd[w.at]
	}
	if w.at.kind != nodeLink {
		return 0, false
	}
	return w.at.id, true
}
