// File: pkg/techspec/tree.go
package techspec

import (
	"fmt"
	"sort"
	"strings"
)

type treeNode struct {
	name     string
	children map[string]*treeNode
	file     bool
}

// RenderTree draws the selected paths as a directory tree rooted at RootLabel.
// Entries are listed directories first, then files, case-insensitively.
// Paths for which marked returns true are suffixed with tag.
func RenderTree(paths []string, marked func(string) bool, tag string) string {
	root := &treeNode{children: map[string]*treeNode{}}
	for _, p := range paths {
		node := root
		parts := strings.Split(p, "/")
		for i, part := range parts {
			child, ok := node.children[part]
			if !ok {
				child = &treeNode{name: part, children: map[string]*treeNode{}}
				node.children[part] = child
			}
			if i == len(parts)-1 {
				child.file = true
				if marked != nil && marked(p) {
					child.name = part + " " + tag
				}
			}
			node = child
		}
	}

	var b strings.Builder
	b.WriteString(RootLabel + "/\n")
	renderChildren(&b, root, "")
	return b.String()
}

func renderChildren(b *strings.Builder, node *treeNode, prefix string) {
	entries := make([]*treeNode, 0, len(node.children))
	for _, child := range node.children {
		entries = append(entries, child)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].file != entries[j].file {
			return !entries[i].file
		}
		return strings.ToLower(entries[i].name) < strings.ToLower(entries[j].name)
	})

	for i, entry := range entries {
		connector := "├── "
		extension := "│   "
		if i == len(entries)-1 {
			connector = "└── "
			extension = "    "
		}
		if entry.file {
			fmt.Fprintf(b, "%s%s%s\n", prefix, connector, entry.name)
			continue
		}
		fmt.Fprintf(b, "%s%s%s/\n", prefix, connector, entry.name)
		renderChildren(b, entry, prefix+extension)
	}
}
