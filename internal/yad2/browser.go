package yad2

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/nadavh/aptwatch/internal/common"
)

// BrowserConfig controls the headless Chrome session.
type BrowserConfig struct {
	ChromePath  string
	UserAgent   string
	Headless    bool
	NavTimeout  time.Duration
	StepTimeout time.Duration
}

// DefaultBrowserConfig returns the standard browser settings.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:    true,
		NavTimeout:  60 * time.Second,
		StepTimeout: 30 * time.Second,
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// Browser wraps one chromedp session. All page operations run in the single
// tab it owns; the session dies with Close.
type Browser struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cfg         BrowserConfig
}

// NewBrowser starts a headless Chrome session.
func NewBrowser(cfg BrowserConfig) (*Browser, error) {
	chromeBin := cfg.ChromePath
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// Force the browser process up front so a missing binary fails fast.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Browser{
		allocCtx:    allocCtx,
		cancelAlloc: cancelAlloc,
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
		cfg:         cfg,
	}, nil
}

// Navigate loads url and waits for waitSelector to appear.
func (b *Browser) Navigate(ctx context.Context, url, waitSelector string) error {
	if b.tabCtx == nil {
		return common.ErrBrowserClosed
	}

	runCtx, cancel := b.runContext(ctx, b.cfg.NavTimeout)
	defer cancel()

	actions := []chromedp.Action{chromedp.Navigate(url)}
	if waitSelector != "" {
		actions = append(actions, chromedp.WaitReady(waitSelector, chromedp.ByQuery))
	}

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// HTML snapshots the full page markup for parsing.
func (b *Browser) HTML(ctx context.Context) (string, error) {
	if b.tabCtx == nil {
		return "", common.ErrBrowserClosed
	}

	runCtx, cancel := b.runContext(ctx, b.cfg.StepTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to snapshot page: %w", err)
	}
	return html, nil
}

// Click clicks the first element matching selector.
func (b *Browser) Click(ctx context.Context, selector string) error {
	if b.tabCtx == nil {
		return common.ErrBrowserClosed
	}

	runCtx, cancel := b.runContext(ctx, b.cfg.StepTimeout)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// Evaluate runs js in the page and unmarshals the result into res.
func (b *Browser) Evaluate(ctx context.Context, js string, res interface{}) error {
	if b.tabCtx == nil {
		return common.ErrBrowserClosed
	}

	runCtx, cancel := b.runContext(ctx, b.cfg.StepTimeout)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Evaluate(js, res)); err != nil {
		return fmt.Errorf("failed to evaluate script: %w", err)
	}
	return nil
}

// SendKeys types value into the element matching selector.
func (b *Browser) SendKeys(ctx context.Context, selector, value string) error {
	if b.tabCtx == nil {
		return common.ErrBrowserClosed
	}

	runCtx, cancel := b.runContext(ctx, b.cfg.StepTimeout)
	defer cancel()

	if err := chromedp.Run(runCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to type into %s: %w", selector, err)
	}
	return nil
}

// CurrentURL returns the tab's current location.
func (b *Browser) CurrentURL(ctx context.Context) (string, error) {
	if b.tabCtx == nil {
		return "", common.ErrBrowserClosed
	}

	runCtx, cancel := b.runContext(ctx, b.cfg.StepTimeout)
	defer cancel()

	var url string
	if err := chromedp.Run(runCtx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return url, nil
}

// HasCaptcha reports whether the current page carries a captcha challenge.
func (b *Browser) HasCaptcha(ctx context.Context) bool {
	html, err := b.HTML(ctx)
	if err != nil {
		return false
	}
	return strings.Contains(html, "g-recaptcha")
}

// RandomDelay sleeps a random duration in [min, max) to pace page actions.
func (b *Browser) RandomDelay(ctx context.Context, min, max time.Duration) {
	delay := min + time.Duration(rand.Int63n(int64(max-min)))
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

// Close shuts the browser session down. Safe to call more than once.
func (b *Browser) Close() {
	if b.cancelTab != nil {
		b.cancelTab()
		b.cancelTab = nil
		b.tabCtx = nil
	}
	if b.cancelAlloc != nil {
		b.cancelAlloc()
		b.cancelAlloc = nil
	}
}

// runContext binds a page operation to both the caller's context and the
// tab's lifetime.
func (b *Browser) runContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancelTimeout := context.WithTimeout(b.tabCtx, timeout)

	stop := context.AfterFunc(ctx, cancelTimeout)
	return runCtx, func() {
		stop()
		cancelTimeout()
	}
}

// findChromeBinary locates a Chrome or Chromium binary on the host.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
