package compare

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/root4loot/domsnap/pkg/extractor"
)

func node(tag string, children ...extractor.DomNode) extractor.DomNode {
	return extractor.DomNode{Tag: tag, Children: children}
}

func chain(depth int) extractor.DomNode {
	n := node("DIV")
	for i := 0; i < depth; i++ {
		n = node("DIV", n)
	}
	return n
}

func TestTreeDistance(t *testing.T) {
	page := node("BODY", node("DIV", node("P")), node("FOOTER"))

	tests := []struct {
		name string
		a, b extractor.DomNode
		want int
	}{
		{name: "identical", a: page, b: page, want: 0},
		{name: "case insensitive", a: node("body"), b: node("BODY"), want: 0},
		{name: "root tag", a: node("BODY"), b: node("FRAMESET"), want: 1},
		{name: "missing child", a: page, b: node("BODY", node("DIV", node("P"))), want: 1},
		{name: "changed leaf", a: page, b: node("BODY", node("DIV", node("SPAN")), node("FOOTER")), want: 1},
		{name: "extra children", a: node("BODY"), b: node("BODY", node("A"), node("B"), node("C")), want: 3},
		{name: "depth capped", a: chain(60), b: func() extractor.DomNode {
			n := node("SPAN")
			for i := 0; i < 60; i++ {
				n = node("DIV", n)
			}
			return n
		}(), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TreeDistance(tt.a, tt.b); got != tt.want {
				t.Errorf("TreeDistance() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDOMScore(t *testing.T) {
	a := node("BODY", node("DIV"))
	if got := DOMScore(a, a); got != 1 {
		t.Errorf("Expected score 1 for identical trees, got %f", got)
	}

	b := node("BODY", node("DIV"), node("DIV"))
	if got, want := DOMScore(a, b), math.Exp(-0.01); math.Abs(got-want) > 1e-12 {
		t.Errorf("DOMScore() = %f, want %f", got, want)
	}
}

func TestLoadSummary(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "full.json")
	bare := filepath.Join(dir, "bare.json")
	empty := filepath.Join(dir, "empty.json")

	os.WriteFile(full, []byte(`{"title":"T","dom":{"tag":"BODY","children":[{"tag":"DIV","children":[]}]}}`), 0o644)
	os.WriteFile(bare, []byte(`{"tag":"BODY","children":[]}`), 0o644)
	os.WriteFile(empty, []byte(`{}`), 0o644)

	s, err := LoadSummary(full)
	if err != nil {
		t.Fatalf("Failed to load %s: %v", full, err)
	}
	if s.Title != "T" || s.DOM.Count() != 1 {
		t.Errorf("Unexpected summary %+v", s)
	}

	s, err = LoadSummary(bare)
	if err != nil {
		t.Fatalf("Failed to load %s: %v", bare, err)
	}
	if s.DOM.Tag != "BODY" || s.Title != "" {
		t.Errorf("Unexpected summary %+v", s)
	}

	if _, err := LoadSummary(empty); err == nil {
		t.Errorf("Expected error for file without tree")
	}
	if _, err := LoadSummary(filepath.Join(dir, "missing.json")); err == nil {
		t.Errorf("Expected error for missing file")
	}
}
