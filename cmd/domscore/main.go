package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/root4loot/domsnap/pkg/compare"
	"github.com/root4loot/domsnap/pkg/extractor"
	"github.com/root4loot/goutils/log"
)

const usage = `USAGE:
  domscore [options] <a.json> <b.json>

  Compares two domsnap outputs. Screenshots are read from the sibling .png
  files when both exist.

OPTIONS:
  -nv,  --no-visual              skip screenshot comparison                              (Default: false)
        --debug                  enable debug mode
`

type report struct {
	Distance    int
	DOMScore    float64
	VisualScore float64
	FuzzyScore  int
	HasVisual   bool
	HasFuzzy    bool
}

func init() {
	log.Init("domscore")
}

func main() {
	var noVisual, debug bool

	flag.BoolVar(&noVisual, "no-visual", false, "")
	flag.BoolVar(&noVisual, "nv", false, "")
	flag.BoolVar(&debug, "debug", false, "")
	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if debug {
		log.SetLevel(log.DebugLevel)
	}

	if flag.NArg() != 2 {
		log.Error("Expected two snapshot files")
		fmt.Print(usage)
		os.Exit(1)
	}

	r, err := score(flag.Arg(0), flag.Arg(1), !noVisual)
	if err != nil {
		log.Fatalf("Could not compare snapshots: %v", err)
	}

	r.print(os.Stdout)
}

func score(pathA, pathB string, visual bool) (*report, error) {
	a, err := compare.LoadSummary(pathA)
	if err != nil {
		return nil, err
	}
	b, err := compare.LoadSummary(pathB)
	if err != nil {
		return nil, err
	}

	r := &report{
		Distance: compare.TreeDistance(a.DOM, b.DOM),
		DOMScore: compare.DOMScore(a.DOM, b.DOM),
	}

	if !visual {
		return r, nil
	}

	imgA, imgB := extractor.ScreenshotPath(pathA), extractor.ScreenshotPath(pathB)
	rawA, errA := os.ReadFile(imgA)
	rawB, errB := os.ReadFile(imgB)
	if errA != nil || errB != nil {
		log.Warnf("Screenshots missing, skipping visual comparison: %s, %s", imgA, imgB)
		return r, nil
	}

	if r.VisualScore, err = compare.VisualScoreFiles(imgA, imgB); err != nil {
		log.Warnf("Visual comparison failed: %v", err)
		return r, nil
	}
	r.HasVisual = true

	if r.FuzzyScore, err = compare.FuzzyScore(rawA, rawB); err != nil {
		log.Debugf("Fuzzy hash comparison failed: %v", err)
	} else {
		r.HasFuzzy = true
	}

	return r, nil
}

func (r *report) print(w io.Writer) {
	fmt.Fprintf(w, "dom_distance: %d\n", r.Distance)
	fmt.Fprintf(w, "dom_score:    %.4f\n", r.DOMScore)
	if r.HasVisual {
		fmt.Fprintf(w, "visual_score: %.4f\n", r.VisualScore)
	}
	if r.HasFuzzy {
		fmt.Fprintf(w, "fuzzy_score:  %d\n", r.FuzzyScore)
	} else if r.HasVisual {
		fmt.Fprintln(w, "fuzzy_score:  n/a")
	}
}
