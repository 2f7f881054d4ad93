// Package types defines every cross-package data structure used by ctxstudio.
package types

// NodeKind classifies a filesystem entry in a scan result.
type NodeKind string

const (
	// NodeKindDirectory marks a directory node.
	NodeKindDirectory NodeKind = "directory"
	// NodeKindFile marks a regular file node.
	NodeKindFile NodeKind = "file"
)

// CheckState is the tri-state selection value attached to a tree node.
type CheckState int

const (
	// CheckStateUnchecked means no descendant leaf is selected.
	CheckStateUnchecked CheckState = iota
	// CheckStateChecked means every descendant leaf is selected.
	CheckStateChecked
	// CheckStatePartial means some but not all descendant leaves are selected.
	CheckStatePartial
)

// String returns the lower-case name of the check state.
func (state CheckState) String() string {
	switch state {
	case CheckStateChecked:
		return "checked"
	case CheckStatePartial:
		return "partial"
	default:
		return "unchecked"
	}
}

// Output format identifiers shared by the CLI and renderers.
const (
	FormatRaw  = "raw"
	FormatJSON = "json"
)

// TreeNode is one filesystem entry produced by the scanner. The tree owns its
// nodes strictly top-down; a node carries no reference to its parent.
type TreeNode struct {
	Name     string
	Path     string
	Kind     NodeKind
	Children []*TreeNode
}

// ContextDocument is the result of assembling selected files into one document.
type ContextDocument struct {
	// Text is the full assembled Markdown document.
	Text string
	// EstimatedTokens is a rough size estimate (about four characters per
	// token); it is a heuristic, not the output of a real tokenizer.
	EstimatedTokens int
	// SelectedFileCount is the number of file paths the caller selected,
	// including files that contributed nothing to the document.
	SelectedFileCount int
}

// DefaultExcludedDirectoryNames returns the directory names skipped by a scan
// when the caller supplies no explicit exclusion list.
func DefaultExcludedDirectoryNames() []string {
	return []string{".git", "__pycache__", "venv", "node_modules", ".idea", ".vscode"}
}
