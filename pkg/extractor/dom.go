package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DomNode is a tag-only mirror of one element and its element children.
type DomNode struct {
	Tag      string    `json:"tag"`
	Children []DomNode `json:"children"`
}

// PageSummary pairs a page's title with the DomNode tree rooted at document.body.
type PageSummary struct {
	Title string  `json:"title"`
	DOM   DomNode `json:"dom"`
}

// traverseJS walks document.body depth-first, pre-order, keeping only tag names
// and element children. The result is stringified so every engine reads it back
// the same way.
const traverseJS = `() => {
	function traverse(node) {
		return {
			tag: node.tagName,
			children: [...node.children].map(traverse),
		};
	}
	return JSON.stringify({
		title: document.title,
		dom: traverse(document.body),
	});
}`

// Count returns the number of nodes beneath n, excluding n itself.
func (n DomNode) Count() int {
	total := 0
	for _, c := range n.Children {
		total += 1 + c.Count()
	}
	return total
}

// Depth returns how many element levels sit beneath n. A childless node has depth 0.
func (n DomNode) Depth() int {
	max := 0
	for _, c := range n.Children {
		if d := c.Depth() + 1; d > max {
			max = d
		}
	}
	return max
}

// normalize replaces nil child slices with empty ones so they encode as [].
func (n *DomNode) normalize() {
	if n.Children == nil {
		n.Children = []DomNode{}
	}
	for i := range n.Children {
		n.Children[i].normalize()
	}
}

// DecodeSummary parses the string produced by the in-page traversal.
func DecodeSummary(raw string) (*PageSummary, error) {
	var s PageSummary
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode page summary: %w", err)
	}
	if s.DOM.Tag == "" {
		return nil, fmt.Errorf("decode page summary: document has no body")
	}
	s.DOM.normalize()
	return &s, nil
}

// MarshalIndent encodes the summary as 2-space indented JSON.
func (s *PageSummary) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	// Encoder appends a newline; the file carries the document only.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
