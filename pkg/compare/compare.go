// Package compare scores how alike two page snapshots are, structurally and visually.
package compare

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/root4loot/domsnap/pkg/extractor"
)

// MaxDepth bounds the tree walk; levels below it contribute nothing.
const MaxDepth = 50

// TreeDistance counts differing tags and child-count mismatches between two
// trees, comparing children pairwise in document order.
func TreeDistance(a, b extractor.DomNode) int {
	return treeDistance(a, b, 0)
}

func treeDistance(a, b extractor.DomNode, depth int) int {
	if depth > MaxDepth {
		return 0
	}

	cost := 0
	if !strings.EqualFold(a.Tag, b.Tag) {
		cost = 1
	}

	total := len(a.Children) - len(b.Children)
	if total < 0 {
		total = -total
	}

	n := len(a.Children)
	if len(b.Children) < n {
		n = len(b.Children)
	}
	for i := 0; i < n; i++ {
		total += treeDistance(a.Children[i], b.Children[i], depth+1)
	}

	return cost + total
}

// DOMScore maps the tree distance onto (0, 1]; identical trees score 1.
func DOMScore(a, b extractor.DomNode) float64 {
	return math.Exp(-float64(TreeDistance(a, b)) / 100)
}

// LoadSummary reads a snapshot written by the extractor. A file holding a bare
// DomNode is accepted too and yields an empty title.
func LoadSummary(path string) (*extractor.PageSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Title    string              `json:"title"`
		DOM      *extractor.DomNode  `json:"dom"`
		Tag      string              `json:"tag"`
		Children []extractor.DomNode `json:"children"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	switch {
	case doc.DOM != nil:
		return &extractor.PageSummary{Title: doc.Title, DOM: *doc.DOM}, nil
	case doc.Tag != "":
		return &extractor.PageSummary{DOM: extractor.DomNode{Tag: doc.Tag, Children: doc.Children}}, nil
	default:
		return nil, fmt.Errorf("parse %s: no dom tree", path)
	}
}
