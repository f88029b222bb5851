// Package extractor snapshots a page's element structure and a full-page
// screenshot through a headless browser.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/root4loot/goutils/log"
)

// Console prefixes for the start, success and error lines of a run.
const (
	StartPrefix   = "PUPPETEER START:"
	SuccessPrefix = "PUPPETEER SUCCESS:"
	ErrorPrefix   = "PUPPETEER ERROR:"
)

// Options contains the options for a run.
type Options struct {
	Engine    string // Browser engine (rod, chromedp)
	Timeout   int    // Navigation timeout (seconds)
	Imprint   bool   // Stamp the page origin under the screenshot
	Bin       string // Browser binary, empty to look it up
	UserAgent string // User agent, empty for the browser default
}

// Extractor runs snapshots against a browser engine.
type Extractor struct {
	Options Options
	engine  Engine
}

// Result describes the outcome of a run. Err holds the failure that was
// logged and suppressed, if any.
type Result struct {
	URL            string
	OutputPath     string
	ScreenshotPath string
	Summary        *PageSummary
	Err            error
}

func init() {
	log.Init("domsnap")
}

// NewOptions returns an Options struct initialized with default values.
func NewOptions() Options {
	return Options{
		Engine:  EngineRod,
		Timeout: 60,
	}
}

// NewExtractor creates an Extractor with default options.
func NewExtractor() *Extractor {
	return &Extractor{Options: NewOptions()}
}

// NewExtractorWithOptions creates an Extractor with the provided options.
// The engine is resolved on first use.
func NewExtractorWithOptions(options Options) *Extractor {
	return &Extractor{Options: options}
}

// NewExtractorWithEngine creates an Extractor that drives the given engine.
func NewExtractorWithEngine(options Options, engine Engine) *Extractor {
	return &Extractor{Options: options, engine: engine}
}

// Run launches a browser, snapshots url and writes the summary to outputPath and
// the screenshot next to it. The returned error is non-nil only when the browser
// could not be launched; every later failure is logged and reported in Result.Err.
func (e *Extractor) Run(url, outputPath string) (*Result, error) {
	log.Infof("%s %s", StartPrefix, url)

	engine, err := e.resolveEngine()
	if err != nil {
		return nil, err
	}

	session, err := engine.Launch(context.Background())
	if err != nil {
		return nil, err
	}

	result := &Result{
		URL:            url,
		OutputPath:     outputPath,
		ScreenshotPath: ScreenshotPath(outputPath),
	}

	defer func() {
		if err := session.Close(); err != nil {
			log.Warnf("Could not close browser: %v", err)
		}
	}()

	result.Summary, result.Err = e.capture(session, result)
	if result.Err != nil {
		log.Errorf("%s %v", ErrorPrefix, result.Err)
		return result, nil
	}

	log.Resultf("%s %s", SuccessPrefix, outputPath)
	return result, nil
}

func (e *Extractor) resolveEngine() (Engine, error) {
	if e.engine != nil {
		return e.engine, nil
	}
	engine, err := NewEngine(e.Options.Engine, e.Options)
	if err != nil {
		return nil, err
	}
	e.engine = engine
	return engine, nil
}

// capture performs the navigate, evaluate, screenshot and write steps. A panic
// from the session is turned into an error.
func (e *Extractor) capture(session Session, result *Result) (summary *PageSummary, err error) {
	defer func() {
		if r := recover(); r != nil {
			summary, err = nil, fmt.Errorf("%v", r)
		}
	}()

	timeout := time.Duration(e.Options.Timeout) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(NewOptions().Timeout) * time.Second
	}

	if err := navigate(session, result.URL, timeout); err != nil {
		return nil, err
	}

	// Evaluation and screenshot get their own budget of the same length.
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	raw, err := session.Evaluate(ctx, traverseJS)
	if err != nil {
		return nil, err
	}

	summary, err = DecodeSummary(raw)
	if err != nil {
		return nil, err
	}
	log.Debugf("Captured %d elements (depth %d) from %s", summary.DOM.Count(), summary.DOM.Depth(), result.URL)

	img, err := session.Screenshot(ctx)
	if err != nil {
		return nil, err
	}

	if e.Options.Imprint {
		img, err = Imprint(img, result.URL)
		if err != nil {
			return nil, err
		}
	}

	if err := os.WriteFile(result.ScreenshotPath, img, 0o644); err != nil {
		return nil, fmt.Errorf("write screenshot: %w", err)
	}
	log.Debugf("Screenshot saved to %s", result.ScreenshotPath)

	data, err := summary.MarshalIndent()
	if err != nil {
		return nil, fmt.Errorf("encode page summary: %w", err)
	}

	if err := os.WriteFile(result.OutputPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write page summary: %w", err)
	}

	return summary, nil
}

func navigate(session Session, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Debugf("Navigating to %s", url)
	err := session.Navigate(ctx, url)
	if err != nil && (errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out after %v: %w", url, timeout, err)
	}
	return err
}

// ScreenshotPath derives the screenshot path from the summary path: a trailing
// .json becomes .png, any other extension is replaced, and .png is appended
// when there is none or when the summary path already ends in .png.
func ScreenshotPath(outputPath string) string {
	if strings.HasSuffix(outputPath, ".json") {
		return strings.TrimSuffix(outputPath, ".json") + ".png"
	}
	ext := filepath.Ext(outputPath)
	if ext == ".png" {
		return outputPath + ".png"
	}
	return strings.TrimSuffix(outputPath, ext) + ".png"
}
