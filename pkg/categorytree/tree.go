// Package categorytree holds the lazily loaded category tree and breadcrumb of one
// browsing view. Nodes live in an arena keyed by category id; a node's children are
// fetched on first expansion and an unloaded node with children reports a single
// placeholder child until then.
package categorytree

import (
	"context"
	"fmt"

	"schwarzesbrett/domain"

	"go.uber.org/zap"
)

// PlaceholderID identifies the sentinel child of an unloaded node.
const PlaceholderID int64 = -1

// Repository fetches category levels.
type Repository interface {
	RootCategories(ctx context.Context) ([]domain.Category, error)
	SubCategories(ctx context.Context, parentID int64) ([]domain.Category, error)
}

// NodeState is the expansion state of a node.
type NodeState int

const (
	// CollapsedUnknown nodes have children that were not fetched yet.
	CollapsedUnknown NodeState = iota
	// CollapsedKnown nodes have no children.
	CollapsedKnown
	Expanded
)

func (s NodeState) String() string {
	switch s {
	case CollapsedKnown:
		return "collapsed-known"
	case Expanded:
		return "expanded"
	default:
		return "collapsed-unknown"
	}
}

type Node struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ParentID    int64   `json:"parentId"`
	ChildCount  int     `json:"childCount"`
	Loaded      bool    `json:"loaded"`
	ChildIDs    []int64 `json:"childIds,omitempty"`
	Placeholder bool    `json:"placeholder,omitempty"`
}

// State derives the node's expansion state.
func (n *Node) State() NodeState {
	switch {
	case n.Loaded:
		return Expanded
	case n.ChildCount > 0:
		return CollapsedUnknown
	default:
		return CollapsedKnown
	}
}

// IsRoot reports whether n is the synthetic root.
func (n *Node) IsRoot() bool {
	return n.ID == domain.RootCategoryID
}

func newNode(c domain.Category) *Node {
	return &Node{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		ChildCount:  c.ChildCount,
	}
}

func placeholderFor(parent *Node) Node {
	return Node{ID: PlaceholderID, ParentID: parent.ID, Placeholder: true}
}

// Tree is the category tree state of a single view. It is not safe for concurrent use.
type Tree struct {
	repo       Repository
	logger     *zap.Logger
	nodes      map[int64]*Node
	selected   int64
	breadcrumb []int64
}

// New returns an empty tree; call Init before use.
func New(repo Repository, logger *zap.Logger) *Tree {
	if logger == nil {
		logger = zap.L()
	}
	return &Tree{
		repo:   repo,
		logger: logger,
		nodes:  make(map[int64]*Node),
	}
}

// Init creates the root and loads its direct children.
func (t *Tree) Init(ctx context.Context) error {
	categories, err := t.repo.RootCategories(ctx)
	if err != nil {
		return fmt.Errorf("load root categories: %w", err)
	}

	root := &Node{ID: domain.RootCategoryID, Name: "root", ParentID: domain.RootCategoryID}
	t.nodes = map[int64]*Node{root.ID: root}
	t.attach(root, categories)

	t.selected = root.ID
	t.breadcrumb = []int64{root.ID}
	return nil
}

// Expand loads the children of a collapsed node, replacing its placeholder.
// Unknown ids and already expanded nodes are left alone.
func (t *Tree) Expand(ctx context.Context, id int64) error {
	node, ok := t.nodes[id]
	if !ok {
		t.logger.Debug("Expand on unknown category ignored", zap.Int64("categoryId", id))
		return nil
	}

	switch node.State() {
	case Expanded:
		return nil
	case CollapsedKnown:
		node.Loaded = true
		return nil
	}

	children, err := t.repo.SubCategories(ctx, id)
	if err != nil {
		return fmt.Errorf("load sub categories of %d: %w", id, err)
	}

	t.attach(node, children)
	return nil
}

func (t *Tree) attach(parent *Node, categories []domain.Category) {
	for _, childID := range parent.ChildIDs {
		t.drop(childID)
	}

	parent.ChildIDs = make([]int64, 0, len(categories))
	for _, c := range categories {
		if c.ID == domain.RootCategoryID || c.ID == parent.ID {
			continue
		}
		child := newNode(c)
		child.ParentID = parent.ID
		t.nodes[child.ID] = child
		parent.ChildIDs = append(parent.ChildIDs, child.ID)
	}
	parent.ChildCount = len(parent.ChildIDs)
	parent.Loaded = true
}

func (t *Tree) drop(id int64) {
	node, ok := t.nodes[id]
	if !ok {
		return
	}
	for _, childID := range node.ChildIDs {
		t.drop(childID)
	}
	delete(t.nodes, id)
}

// Select makes id the selected node and rebuilds the breadcrumb from scratch.
// It returns false and leaves the breadcrumb untouched when id, or any of its
// ancestors, is not in the tree.
func (t *Tree) Select(id int64) bool {
	path, ok := t.pathTo(id)
	if !ok {
		t.logger.Debug("Select on unknown category ignored", zap.Int64("categoryId", id))
		return false
	}
	t.selected = id
	t.breadcrumb = path
	return true
}

func (t *Tree) pathTo(id int64) ([]int64, bool) {
	var reversed []int64
	seen := make(map[int64]bool)
	current := id
	for {
		node, ok := t.nodes[current]
		if !ok || seen[current] {
			return nil, false
		}
		seen[current] = true
		reversed = append(reversed, current)
		if node.IsRoot() {
			break
		}
		current = node.ParentID
	}

	path := make([]int64, len(reversed))
	for i, nodeID := range reversed {
		path[len(reversed)-1-i] = nodeID
	}
	return path, true
}

// Node returns a copy of the node with the given id.
func (t *Tree) Node(id int64) (Node, bool) {
	node, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *node, true
}

// Children lists the children of id. An unexpanded node with children yields
// exactly one placeholder.
func (t *Tree) Children(id int64) []Node {
	node, ok := t.nodes[id]
	if !ok {
		return []Node{}
	}
	if node.State() == CollapsedUnknown {
		return []Node{placeholderFor(node)}
	}

	children := make([]Node, 0, len(node.ChildIDs))
	for _, childID := range node.ChildIDs {
		if child, ok := t.nodes[childID]; ok {
			children = append(children, *child)
		}
	}
	return children
}

// Breadcrumb returns the root-first path to the selected node.
func (t *Tree) Breadcrumb() []Node {
	path := make([]Node, 0, len(t.breadcrumb))
	for _, id := range t.breadcrumb {
		if node, ok := t.nodes[id]; ok {
			path = append(path, *node)
		}
	}
	return path
}

// Selected returns the id of the selected node.
func (t *Tree) Selected() int64 {
	return t.selected
}

// Len returns the number of loaded nodes including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}
