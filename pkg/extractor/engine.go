package extractor

import (
	"context"
	"fmt"
)

const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// Engine launches browser sessions.
type Engine interface {
	Launch(ctx context.Context) (Session, error)
}

// Session is one browser process with a single open page. Close must be called
// exactly once.
type Session interface {
	// Navigate loads url and returns once the document has been parsed.
	Navigate(ctx context.Context, url string) error
	// Evaluate runs a JS arrow function in the page and returns the string it yields.
	Evaluate(ctx context.Context, fn string) (string, error)
	// Screenshot captures the full page as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// launchFlags is the fixed browser configuration shared by every engine.
var launchFlags = []string{"no-sandbox", "disable-setuid-sandbox"}

// NewEngine returns the engine registered under name.
func NewEngine(name string, opts Options) (Engine, error) {
	switch name {
	case "", EngineRod:
		return &rodEngine{bin: opts.Bin, userAgent: opts.UserAgent}, nil
	case EngineChromedp:
		return &chromedpEngine{bin: opts.Bin, userAgent: opts.UserAgent}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want %s or %s)", name, EngineRod, EngineChromedp)
	}
}
