package categorytree

import (
	"errors"

	"schwarzesbrett/domain"

	"go.uber.org/zap"
)

var errNoRoot = errors.New("category tree snapshot has no root")

// Snapshot is the serialisable state of a Tree.
type Snapshot struct {
	Nodes      []Node  `json:"nodes"`
	Selected   int64   `json:"selected"`
	Breadcrumb []int64 `json:"breadcrumb"`
}

func (t *Tree) Snapshot() Snapshot {
	nodes := make([]Node, 0, len(t.nodes))
	for _, n := range t.nodes {
		copied := *n
		copied.ChildIDs = append([]int64(nil), n.ChildIDs...)
		nodes = append(nodes, copied)
	}
	return Snapshot{
		Nodes:      nodes,
		Selected:   t.selected,
		Breadcrumb: append([]int64(nil), t.breadcrumb...),
	}
}

// Restore rebuilds a tree from a snapshot.
func Restore(repo Repository, snapshot Snapshot, logger *zap.Logger) (*Tree, error) {
	t := New(repo, logger)
	for i := range snapshot.Nodes {
		n := snapshot.Nodes[i]
		t.nodes[n.ID] = &n
	}
	if _, ok := t.nodes[domain.RootCategoryID]; !ok {
		return nil, errNoRoot
	}

	t.selected = domain.RootCategoryID
	t.breadcrumb = []int64{domain.RootCategoryID}
	if len(snapshot.Breadcrumb) > 0 {
		t.Select(snapshot.Selected)
	}
	return t, nil
}
