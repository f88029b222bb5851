package extractor

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/root4loot/goutils/log"
)

type chromedpEngine struct {
	bin       string
	userAgent string
}

type chromedpSession struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// GetFlags returns the allocator options for the fixed launch configuration.
func (e *chromedpEngine) GetFlags() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", true))

	for _, f := range launchFlags {
		opts = append(opts, chromedp.Flag(f, true))
	}

	if e.bin != "" {
		opts = append(opts, chromedp.ExecPath(e.bin))
	}

	if e.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(e.userAgent))
	}

	return opts
}

func (e *chromedpEngine) Launch(ctx context.Context) (Session, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, e.GetFlags()...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// Running with no actions starts the browser and opens the first tab.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("chromedp: launch browser: %w", err)
	}
	log.Debugf("chromedp: browser started")

	return &chromedpSession{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc}, nil
}

// bound derives a context from the tab context carrying ctx's deadline.
func (s *chromedpSession) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if dl, ok := ctx.Deadline(); ok {
		return context.WithDeadline(s.ctx, dl)
	}
	return context.WithCancel(s.ctx)
}

// Navigate issues Page.navigate and returns at the main frame's
// DOMContentLoaded, without waiting for sub-resources.
func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	tctx, cancel := s.bound(ctx)
	defer cancel()

	parsed := make(chan struct{})
	var once sync.Once
	chromedp.ListenTarget(tctx, func(ev interface{}) {
		if _, ok := ev.(*page.EventDomContentEventFired); ok {
			once.Do(func() { close(parsed) })
		}
	})

	err := chromedp.Run(tctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, errorText, _, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		if errorText != "" {
			return fmt.Errorf("page load error %s", errorText)
		}
		return nil
	}))
	if err != nil {
		return fmt.Errorf("chromedp: navigate %s: %w", url, err)
	}

	select {
	case <-parsed:
		return nil
	case <-tctx.Done():
		return fmt.Errorf("chromedp: wait for %s: %w", url, tctx.Err())
	}
}

func (s *chromedpSession) Evaluate(ctx context.Context, fn string) (string, error) {
	tctx, cancel := s.bound(ctx)
	defer cancel()

	var out string
	if err := chromedp.Run(tctx, chromedp.Evaluate("("+fn+")()", &out)); err != nil {
		return "", fmt.Errorf("chromedp: evaluate: %w", err)
	}
	return out, nil
}

func (s *chromedpSession) Screenshot(ctx context.Context) ([]byte, error) {
	tctx, cancel := s.bound(ctx)
	defer cancel()

	var img []byte
	// Quality 100 selects PNG.
	if err := chromedp.Run(tctx, chromedp.FullScreenshot(&img, 100)); err != nil {
		return nil, fmt.Errorf("chromedp: screenshot: %w", err)
	}
	return img, nil
}

func (s *chromedpSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancelTab()
	s.cancelAlloc()
	if err != nil {
		return fmt.Errorf("chromedp: close browser: %w", err)
	}
	return nil
}
