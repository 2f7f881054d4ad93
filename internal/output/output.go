// Package output renders scan trees and build results for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/temirov/ctxstudio/internal/selection"
	"github.com/temirov/ctxstudio/internal/types"
)

const (
	treeHeadingFormat = "--- Directory Tree: %s ---\n"

	middleConnector = "├── "
	lastConnector   = "└── "
	middlePrefix    = "│   "
	lastPrefix      = "    "
)

// treeJSONNode mirrors one selection node for JSON rendering.
type treeJSONNode struct {
	Name     string          `json:"name"`
	Path     string          `json:"path"`
	Type     types.NodeKind  `json:"type"`
	Children []*treeJSONNode `json:"children,omitempty"`
}

// buildJSONResult is the JSON shape of an assembled document.
type buildJSONResult struct {
	Document        string `json:"document"`
	EstimatedTokens int    `json:"estimatedTokens"`
	SelectedFiles   int    `json:"selectedFiles"`
}

// RenderTreeRaw renders the selection tree as an indented box-drawing listing.
func RenderTreeRaw(selectionTree *selection.Tree) string {
	rootID := selectionTree.Root()
	rootNode, rootFound := selectionTree.Node(rootID)
	if !rootFound {
		return ""
	}
	var textBuilder strings.Builder
	textBuilder.WriteString(fmt.Sprintf(treeHeadingFormat, rootNode.Path))
	renderChildrenRaw(&textBuilder, selectionTree, rootNode, "")
	return textBuilder.String()
}

func renderChildrenRaw(textBuilder *strings.Builder, selectionTree *selection.Tree, parentNode selection.Node, prefix string) {
	childCount := len(parentNode.Children)
	for childIndex, childID := range parentNode.Children {
		childNode, childFound := selectionTree.Node(childID)
		if !childFound {
			continue
		}
		connector := middleConnector
		childPrefix := prefix + middlePrefix
		if childIndex == childCount-1 {
			connector = lastConnector
			childPrefix = prefix + lastPrefix
		}
		displayName := childNode.Name
		if childNode.Kind == types.NodeKindDirectory {
			displayName += "/"
		}
		textBuilder.WriteString(prefix + connector + displayName + "\n")
		if childNode.Kind == types.NodeKindDirectory {
			renderChildrenRaw(textBuilder, selectionTree, childNode, childPrefix)
		}
	}
}

// RenderTreeJSON renders the selection tree as indented JSON.
func RenderTreeJSON(selectionTree *selection.Tree) (string, error) {
	rootID := selectionTree.Root()
	rootNode, rootFound := selectionTree.Node(rootID)
	if !rootFound {
		return "{}", nil
	}
	jsonRoot := buildTreeJSONNode(selectionTree, rootNode)
	jsonData, marshalError := json.MarshalIndent(jsonRoot, "", "  ")
	if marshalError != nil {
		return "", fmt.Errorf("marshal tree to JSON: %w", marshalError)
	}
	return string(jsonData), nil
}

func buildTreeJSONNode(selectionTree *selection.Tree, sourceNode selection.Node) *treeJSONNode {
	jsonNode := &treeJSONNode{
		Name: sourceNode.Name,
		Path: sourceNode.Path,
		Type: sourceNode.Kind,
	}
	for _, childID := range sourceNode.Children {
		childNode, childFound := selectionTree.Node(childID)
		if !childFound {
			continue
		}
		jsonNode.Children = append(jsonNode.Children, buildTreeJSONNode(selectionTree, childNode))
	}
	return jsonNode
}

// RenderBuildJSON renders an assembled document with its metrics as indented JSON.
func RenderBuildJSON(document types.ContextDocument) (string, error) {
	jsonData, marshalError := json.MarshalIndent(buildJSONResult{
		Document:        document.Text,
		EstimatedTokens: document.EstimatedTokens,
		SelectedFiles:   document.SelectedFileCount,
	}, "", "  ")
	if marshalError != nil {
		return "", fmt.Errorf("marshal build result to JSON: %w", marshalError)
	}
	return string(jsonData), nil
}
