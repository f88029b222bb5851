package extractor

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/root4loot/goutils/log"
)

type rodEngine struct {
	bin       string
	userAgent string
}

type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

func (e *rodEngine) Launch(ctx context.Context) (Session, error) {
	path := e.bin
	if path == "" {
		path, _ = launcher.LookPath()
	}

	l := launcher.New().
		Context(ctx).
		Headless(true).
		Bin(path).
		NoSandbox(true)

	for _, f := range launchFlags {
		l.Set(flags.Flag(f))
	}

	if e.userAgent != "" {
		l.Set("user-agent", e.userAgent)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("rod: launch browser: %w", err)
	}
	log.Debugf("rod: browser listening on %s", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("rod: connect: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		browser.Close()
		l.Cleanup()
		return nil, fmt.Errorf("rod: open page: %w", err)
	}

	return &rodSession{launcher: l, browser: browser, page: page}, nil
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx)

	// Page.domContentEventFired is only emitted for the main frame; lifecycle
	// events would also match subframes.
	wait := page.WaitEvent(&proto.PageDomContentEventFired{})
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("rod: navigate %s: %w", url, err)
	}
	wait()

	// wait returns silently when the context expires.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("rod: wait for %s: %w", url, err)
	}
	return nil
}

func (s *rodSession) Evaluate(ctx context.Context, fn string) (string, error) {
	res, err := s.page.Context(ctx).Eval(fn)
	if err != nil {
		return "", fmt.Errorf("rod: evaluate: %w", err)
	}
	return res.Value.Str(), nil
}

func (s *rodSession) Screenshot(ctx context.Context) ([]byte, error) {
	img, err := s.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("rod: screenshot: %w", err)
	}
	return img, nil
}

func (s *rodSession) Close() error {
	err := s.browser.Close()
	s.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("rod: close browser: %w", err)
	}
	return nil
}
