// Package selection maintains a tri-state selection model over a scanned
// directory tree. Nodes live in a flat arena addressed by NodeID; parents are
// stored as identifiers, keeping ownership strictly root-to-leaves.
package selection

import (
	"sort"
	"strings"

	"github.com/temirov/ctxstudio/internal/types"
)

// NodeID addresses a node inside a Tree's arena.
type NodeID int

// InvalidNodeID marks the absence of a node, such as the root's parent.
const InvalidNodeID NodeID = -1

// Node is one entry of the selection tree.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Name     string
	Path     string
	Kind     types.NodeKind
	Children []NodeID
	State    types.CheckState
}

// Tree holds the full selection state for one scan result. It is rebuilt from
// scratch on every load; check states live only for the process lifetime.
// Tree is not safe for concurrent use: the toggle algorithm is the only
// writer, and callers must serialize toggles.
type Tree struct {
	nodes     []Node
	idsByPath map[string]NodeID
	onChange  func()
}

// NewTree builds a selection tree from a scan result. Every child list is
// ordered directories-first then case-insensitive by name, and all states
// start unchecked.
func NewTree(scanRoot *types.TreeNode) *Tree {
	selectionTree := &Tree{idsByPath: make(map[string]NodeID)}
	if scanRoot != nil {
		selectionTree.addSubtree(scanRoot, InvalidNodeID)
	}
	return selectionTree
}

// addSubtree appends source and its descendants to the arena and returns the
// new node's identifier.
func (selectionTree *Tree) addSubtree(source *types.TreeNode, parentID NodeID) NodeID {
	nodeID := NodeID(len(selectionTree.nodes))
	selectionTree.nodes = append(selectionTree.nodes, Node{
		ID:     nodeID,
		Parent: parentID,
		Name:   source.Name,
		Path:   source.Path,
		Kind:   source.Kind,
		State:  types.CheckStateUnchecked,
	})
	selectionTree.idsByPath[source.Path] = nodeID

	orderedChildren := sortChildren(source.Children)
	childIDs := make([]NodeID, 0, len(orderedChildren))
	for _, childSource := range orderedChildren {
		childIDs = append(childIDs, selectionTree.addSubtree(childSource, nodeID))
	}
	selectionTree.nodes[nodeID].Children = childIDs
	return nodeID
}

// sortChildren returns a copy of children ordered directories before files,
// then case-insensitive alphabetical.
func sortChildren(children []*types.TreeNode) []*types.TreeNode {
	ordered := make([]*types.TreeNode, len(children))
	copy(ordered, children)
	sort.SliceStable(ordered, func(leftIndex, rightIndex int) bool {
		left, right := ordered[leftIndex], ordered[rightIndex]
		leftIsDirectory := left.Kind == types.NodeKindDirectory
		rightIsDirectory := right.Kind == types.NodeKindDirectory
		if leftIsDirectory != rightIsDirectory {
			return leftIsDirectory
		}
		return strings.ToLower(left.Name) < strings.ToLower(right.Name)
	})
	return ordered
}

// Len returns the number of nodes in the tree.
func (selectionTree *Tree) Len() int {
	return len(selectionTree.nodes)
}

// Root returns the root node identifier, or InvalidNodeID for an empty tree.
func (selectionTree *Tree) Root() NodeID {
	if len(selectionTree.nodes) == 0 {
		return InvalidNodeID
	}
	return 0
}

// NodeByPath looks up a node by its absolute path.
func (selectionTree *Tree) NodeByPath(absolutePath string) (NodeID, bool) {
	nodeID, found := selectionTree.idsByPath[absolutePath]
	return nodeID, found
}

// Node returns a copy of the addressed node. The second return value is false
// for identifiers outside the arena.
func (selectionTree *Tree) Node(nodeID NodeID) (Node, bool) {
	if !selectionTree.validID(nodeID) {
		return Node{}, false
	}
	return selectionTree.nodes[nodeID], true
}

// State returns the check state of the addressed node, unchecked for
// identifiers outside the arena.
func (selectionTree *Tree) State(nodeID NodeID) types.CheckState {
	if !selectionTree.validID(nodeID) {
		return types.CheckStateUnchecked
	}
	return selectionTree.nodes[nodeID].State
}

// SetOnChange registers a callback fired once after each toggle settles.
// The callback observes only the final tree, never intermediate states.
func (selectionTree *Tree) SetOnChange(onChange func()) {
	selectionTree.onChange = onChange
}

// Toggle sets the addressed node to the requested state, forces the whole
// subtree to that state, then recomputes every ancestor from its direct
// children, stopping early once a recomputed state matches the current one.
// The change notification fires exactly once, after all propagation settles;
// the propagation routine is the only writer and never re-enters itself.
func (selectionTree *Tree) Toggle(nodeID NodeID, requestedState types.CheckState) {
	if !selectionTree.validID(nodeID) {
		return
	}
	selectionTree.forceSubtreeState(nodeID, requestedState)
	selectionTree.recomputeAncestors(selectionTree.nodes[nodeID].Parent)
	if selectionTree.onChange != nil {
		selectionTree.onChange()
	}
}

// forceSubtreeState sets the node and all of its descendants to state using
// an explicit stack; toggles always collapse a subtree to one state.
func (selectionTree *Tree) forceSubtreeState(nodeID NodeID, state types.CheckState) {
	pending := []NodeID{nodeID}
	for len(pending) > 0 {
		currentID := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		selectionTree.nodes[currentID].State = state
		pending = append(pending, selectionTree.nodes[currentID].Children...)
	}
}

// recomputeAncestors walks from startID toward the root, recomputing each
// ancestor's state from its direct children. Recomputation is idempotent, so
// the walk stops as soon as an ancestor's state is already correct.
func (selectionTree *Tree) recomputeAncestors(startID NodeID) {
	for currentID := startID; currentID != InvalidNodeID; {
		recomputedState := selectionTree.stateFromChildren(selectionTree.nodes[currentID].Children)
		if recomputedState == selectionTree.nodes[currentID].State {
			return
		}
		selectionTree.nodes[currentID].State = recomputedState
		currentID = selectionTree.nodes[currentID].Parent
	}
}

// stateFromChildren derives a directory's state from its direct children:
// checked when all children are checked, unchecked when all are unchecked,
// partial otherwise. A childless directory never derives checked.
func (selectionTree *Tree) stateFromChildren(childIDs []NodeID) types.CheckState {
	checkedCount := 0
	uncheckedCount := 0
	for _, childID := range childIDs {
		switch selectionTree.nodes[childID].State {
		case types.CheckStateChecked:
			checkedCount++
		case types.CheckStateUnchecked:
			uncheckedCount++
		}
	}
	if len(childIDs) > 0 && checkedCount == len(childIDs) {
		return types.CheckStateChecked
	}
	if uncheckedCount == len(childIDs) {
		return types.CheckStateUnchecked
	}
	return types.CheckStatePartial
}

// CheckedFiles returns the absolute paths of every checked file node in the
// documented sort order. The traversal is iterative so arbitrarily deep trees
// cannot overflow the stack, and the output is stable across calls absent
// mutation.
func (selectionTree *Tree) CheckedFiles() []string {
	var checkedPaths []string
	if len(selectionTree.nodes) == 0 {
		return checkedPaths
	}
	pending := []NodeID{0}
	for len(pending) > 0 {
		currentID := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		currentNode := &selectionTree.nodes[currentID]
		if currentNode.Kind == types.NodeKindFile {
			if currentNode.State == types.CheckStateChecked {
				checkedPaths = append(checkedPaths, currentNode.Path)
			}
			continue
		}
		for childIndex := len(currentNode.Children) - 1; childIndex >= 0; childIndex-- {
			pending = append(pending, currentNode.Children[childIndex])
		}
	}
	return checkedPaths
}

func (selectionTree *Tree) validID(nodeID NodeID) bool {
	return nodeID >= 0 && int(nodeID) < len(selectionTree.nodes)
}
