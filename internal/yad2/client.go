package yad2

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nadavh/aptwatch/internal/common"
	"github.com/nadavh/aptwatch/internal/model"
)

// Site URLs.
const (
	BaseURL       = "https://www.yad2.co.il"
	RealEstateURL = BaseURL + "/realestate/forsale"
	LoginURL      = BaseURL + "/auth/login"
	FavoritesURL  = BaseURL + "/favorites"
)

// Config holds client credentials and crawl limits.
type Config struct {
	Email    string
	Password string
	MaxPages int
	Browser  BrowserConfig
}

// DefaultConfig returns the standard client settings.
func DefaultConfig() Config {
	return Config{
		MaxPages: maxPages,
		Browser:  DefaultBrowserConfig(),
	}
}

// Client drives the site through a headless browser and implements the
// scraper contract: feed fetching, saving, and detail-page enrichment.
type Client struct {
	browser *Browser
	config  Config
}

// NewClient starts a browser session and logs in.
func NewClient(ctx context.Context, config Config) (*Client, error) {
	if config.Email == "" || config.Password == "" {
		return nil, fmt.Errorf("%w: yad2 email and password are required", common.ErrMissingConfig)
	}
	if config.MaxPages <= 0 || config.MaxPages > maxPages {
		config.MaxPages = maxPages
	}

	browser, err := NewBrowser(config.Browser)
	if err != nil {
		return nil, err
	}

	client := &Client{browser: browser, config: config}
	if err := client.login(ctx); err != nil {
		browser.Close()
		return nil, err
	}

	return client, nil
}

// login authenticates the session. Listing saves and contact reveals only
// work while logged in.
func (c *Client) login(ctx context.Context) error {
	slog.Info("Logging in to yad2")

	if err := c.browser.Navigate(ctx, LoginURL, "#email"); err != nil {
		return err
	}

	c.browser.RandomDelay(ctx, time.Second, 2*time.Second)
	if err := c.browser.SendKeys(ctx, "#email", c.config.Email); err != nil {
		return err
	}

	c.browser.RandomDelay(ctx, time.Second, 2*time.Second)
	if err := c.browser.SendKeys(ctx, "#password", c.config.Password); err != nil {
		return err
	}

	c.browser.RandomDelay(ctx, time.Second, 2*time.Second)
	if err := c.browser.Click(ctx, `[data-testid="submit"]`); err != nil {
		return err
	}

	// The redirect after submit takes a while.
	c.browser.RandomDelay(ctx, 8*time.Second, 12*time.Second)

	currentURL, err := c.browser.CurrentURL(ctx)
	if err != nil {
		return err
	}
	if strings.Contains(currentURL, "/auth/login") {
		return fmt.Errorf("login failed, still on login page")
	}

	slog.Info("Logged in to yad2")
	return nil
}

// NavigateTo loads a results page and waits for the feed to render.
func (c *Client) NavigateTo(ctx context.Context, url string) error {
	return c.browser.Navigate(ctx, url, selFeedContainer)
}

// FetchFeed collects listings from the current results page and walks
// pagination up to the configured limit. A captcha stops the walk; the
// entries collected so far are returned alongside the sentinel error.
func (c *Client) FetchFeed(ctx context.Context) ([]model.FeedEntry, error) {
	firstPageURL, err := c.browser.CurrentURL(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := c.currentDocument(ctx)
	if err != nil {
		return nil, err
	}

	entries := ParseFeed(doc)
	totalPages := TotalPages(doc)
	if totalPages > c.config.MaxPages {
		slog.Warn("Limiting pagination", "found", totalPages, "limit", c.config.MaxPages)
		totalPages = c.config.MaxPages
	}
	slog.Info("Fetched feed page", "page", 1, "total_pages", totalPages, "items", len(entries))

	for page := 2; page <= totalPages; page++ {
		if err := ctx.Err(); err != nil {
			return entries, err
		}

		pageURL, err := PageURL(firstPageURL, page)
		if err != nil {
			return entries, fmt.Errorf("failed to build page %d url: %w", page, err)
		}

		c.browser.RandomDelay(ctx, 3*time.Second, 5*time.Second)

		if err := c.NavigateTo(ctx, pageURL); err != nil {
			slog.Warn("Failed to load page, stopping pagination", "page", page, "error", err)
			break
		}

		if c.browser.HasCaptcha(ctx) {
			slog.Warn("Captcha detected, stopping pagination", "page", page)
			return entries, common.ErrCaptchaDetected
		}

		doc, err := c.currentDocument(ctx)
		if err != nil {
			return entries, err
		}

		pageEntries := ParseFeed(doc)
		entries = append(entries, pageEntries...)
		slog.Info("Fetched feed page", "page", page, "total_pages", totalPages, "items", len(pageEntries))
	}

	return entries, nil
}

// FetchSaved collects the remote saved-items references.
func (c *Client) FetchSaved(ctx context.Context) ([]model.FeedEntry, error) {
	if err := c.browser.Navigate(ctx, FavoritesURL, "body"); err != nil {
		return nil, err
	}

	if c.browser.HasCaptcha(ctx) {
		return nil, common.ErrCaptchaDetected
	}

	doc, err := c.currentDocument(ctx)
	if err != nil {
		return nil, err
	}

	return ParseSavedFeed(doc), nil
}

// Save toggles the remote saved flag on. Already-saved listings are left
// alone so the toggle cannot flip them back off.
func (c *Client) Save(ctx context.Context, listing *model.Listing) error {
	if listing.IsSavedRemote {
		return nil
	}

	clicked, err := c.clickCardLikeButton(ctx, listing.ItemID)
	if err != nil {
		return err
	}

	if !clicked {
		// The card is not on the current page; use the detail page's button.
		if err := c.browser.Navigate(ctx, listing.URL, selLikeButton); err != nil {
			return err
		}
		if err := c.browser.Click(ctx, selLikeButton); err != nil {
			return err
		}
	}

	c.browser.RandomDelay(ctx, 500*time.Millisecond, time.Second)
	listing.IsSavedRemote = true
	slog.Debug("Saved listing on remote", "item_id", listing.ItemID)
	return nil
}

// clickCardLikeButton clicks the like button on the feed card that links to
// the item, when that card is present on the current page.
func (c *Client) clickCardLikeButton(ctx context.Context, itemID string) (bool, error) {
	js := fmt.Sprintf(`
		(function() {
			var links = document.querySelectorAll('a[href*="/item/%s"]');
			for (var i = 0; i < links.length; i++) {
				var card = links[i].closest('[data-nagish="feed-item-list-box"]');
				if (!card) continue;
				var btn = card.querySelector('[data-testid="like-button"]');
				if (btn) { btn.click(); return true; }
			}
			return false;
		})()
	`, itemID)

	var clicked bool
	if err := c.browser.Evaluate(ctx, js, &clicked); err != nil {
		return false, err
	}
	return clicked, nil
}

// Enrich opens the listing's detail page and fills in floor, features, and
// contact. For private listings the contact block must be revealed first.
func (c *Client) Enrich(ctx context.Context, listing *model.Listing) error {
	if err := c.browser.Navigate(ctx, listing.URL, "body"); err != nil {
		return err
	}

	if c.browser.HasCaptcha(ctx) {
		return common.ErrCaptchaDetected
	}

	if !listing.IsAgency {
		if err := c.browser.Click(ctx, selContactButton); err != nil {
			slog.Warn("Could not reveal contact details", "url", listing.URL, "error", err)
		} else {
			c.browser.RandomDelay(ctx, 500*time.Millisecond, time.Second)
		}
	}

	doc, err := c.currentDocument(ctx)
	if err != nil {
		return err
	}

	ParseDetails(doc, listing)
	return nil
}

// Close shuts down the browser session.
func (c *Client) Close() {
	c.browser.Close()
}

func (c *Client) currentDocument(ctx context.Context) (*goquery.Document, error) {
	html, err := c.browser.HTML(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}
