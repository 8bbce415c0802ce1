// Ad hoc entity queries over a World's archetypes — an enrichment beyond
// spec.md's minimum (registered systems are the hard core's only
// dispatch mechanism), kept in the teacher's own idiom for callers that
// want a one-off scan outside of Progress.
package husk

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
)

// Query is a composable filter over archetypes by component membership.
type Query interface {
	QueryNode
	And(items ...interface{}) QueryNode
	Or(items ...interface{}) QueryNode
	Not(items ...interface{}) QueryNode
}

// QueryNode is one node in a query tree.
type QueryNode interface {
	Evaluate(archetype *Archetype, w *World) bool
}

// QueryOperation is the logical operation a composite node applies.
type QueryOperation int

const (
	OpAnd QueryOperation = iota
	OpOr
	OpNot
)

type compositeNode struct {
	op         QueryOperation
	children   []QueryNode
	components []Component
}

type leafNode struct {
	components []Component
}

type query struct {
	root QueryNode
}

// NewQuery creates a new empty query.
func NewQuery() Query {
	return &query{}
}

func newCompositeNode(op QueryOperation, components []Component) *compositeNode {
	return &compositeNode{op: op, components: components}
}

func maskOf(w *World, components []Component) mask.Mask {
	var m mask.Mask
	for _, c := range components {
		m.Mark(w.schema.RowIndexFor(c))
	}
	return m
}

func (n *compositeNode) Evaluate(archetype *Archetype, w *World) bool {
	nodeMask := maskOf(w, n.components)
	archMask := archetype.mask

	switch n.op {
	case OpAnd:
		if !archMask.ContainsAll(nodeMask) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(archetype, w) {
				return false
			}
		}
		return true
	case OpOr:
		if archMask.ContainsAny(nodeMask) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(archetype, w) {
				return true
			}
		}
		return false
	case OpNot:
		if len(n.children) == 0 {
			return archMask.ContainsNone(nodeMask)
		}
		if len(n.components) > 0 && !archMask.ContainsNone(nodeMask) {
			return false
		}
		for _, child := range n.children {
			if child.Evaluate(archetype, w) {
				return false
			}
		}
		return true
	}
	return false
}

func (n *leafNode) Evaluate(archetype *Archetype, w *World) bool {
	return archetype.mask.ContainsAll(maskOf(w, n.components))
}

func (q *query) And(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpAnd, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Or(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpOr, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Not(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpNot, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) validateQueryItems(items ...interface{}) error {
	for _, item := range items {
		switch item.(type) {
		case Component, []Component, QueryNode, Query:
			continue
		default:
			return fmt.Errorf("invalid query item type: %T. Only Component, []Component, or QueryNode are allowed", item)
		}
	}
	return nil
}

func (q *query) processItems(items ...interface{}) ([]Component, []QueryNode) {
	if err := q.validateQueryItems(items...); err != nil {
		panic(bark.AddTrace(err))
	}
	components := make([]Component, 0)
	children := make([]QueryNode, 0)
	for _, item := range items {
		switch v := item.(type) {
		case Component:
			components = append(components, v)
		case []Component:
			components = append(components, v...)
		case QueryNode:
			children = append(children, v)
		}
	}
	return components, children
}

func (q *query) Evaluate(archetype *Archetype, w *World) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(archetype, w)
}

// QueryCursor iterates every row of every archetype matching a QueryNode,
// rescanning the world's archetype list on Initialize the same way the
// teacher's Cursor does.
type QueryCursor struct {
	query   QueryNode
	world   *World
	matched []*Archetype

	current     *Archetype
	archIndex   int
	entityIndex int
	remaining   int
	initialized bool
}

// NewCursor creates a cursor over w's archetypes matching query.
func NewCursor(query QueryNode, w *World) *QueryCursor {
	return &QueryCursor{query: query, world: w}
}

// Initialize resolves the set of archetypes the query currently matches.
func (c *QueryCursor) Initialize() {
	if c.initialized {
		return
	}
	for _, arch := range c.world.archetypes {
		if c.query.Evaluate(arch, c.world) {
			c.matched = append(c.matched, arch)
		}
	}
	if len(c.matched) > 0 {
		c.current = c.matched[0]
		c.remaining = c.current.Len()
	}
	c.initialized = true
}

// Next advances to the next matching row, returning false once exhausted.
func (c *QueryCursor) Next() bool {
	if !c.initialized {
		c.Initialize()
	}
	if c.entityIndex < c.remaining {
		c.entityIndex++
		return true
	}
	for c.archIndex < len(c.matched) {
		c.current = c.matched[c.archIndex]
		c.remaining = c.current.Len()
		if c.entityIndex < c.remaining {
			c.entityIndex++
			return true
		}
		c.archIndex++
		c.entityIndex = 0
	}
	return false
}

// Entity returns the entity at the cursor's current row.
func (c *QueryCursor) Entity() (Entity, error) {
	entry, err := c.current.tbl.Entry(c.entityIndex - 1)
	if err != nil {
		return 0, NotAnEntityError{}
	}
	return Entity(entry.ID()), nil
}

// TotalMatched reports how many rows across every matched archetype the
// query selects.
func (c *QueryCursor) TotalMatched() int {
	c.Initialize()
	total := 0
	for _, arch := range c.matched {
		total += arch.Len()
	}
	return total
}
