package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/nadavh/aptwatch/internal/address"
	"github.com/nadavh/aptwatch/internal/common"
	"github.com/nadavh/aptwatch/internal/config"
	"github.com/nadavh/aptwatch/internal/mail"
	"github.com/nadavh/aptwatch/internal/model"
	"github.com/nadavh/aptwatch/internal/storage"
	"github.com/nadavh/aptwatch/internal/yad2"
)

// initLedger opens the ledger database and runs pending migrations.
func initLedger(ctx context.Context) (*storage.SQLiteLedger, error) {
	dbPath := config.ExpandPath(viper.GetString("database.path"))

	ledger, err := storage.NewSQLiteLedger(dbPath)
	if err != nil {
		return nil, err
	}

	if err := ledger.Migrate(ctx); err != nil {
		_ = ledger.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return ledger, nil
}

// initMatcher loads the street catalog. A missing or malformed catalog is
// fatal; without it every listing would land in the unsupported bucket.
func initMatcher() (*address.Matcher, error) {
	catalogPath := config.ExpandPath(viper.GetString("catalog.path"))

	matcher, err := address.NewMatcherFromFile(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("street catalog %s: %w", catalogPath, err)
	}
	return matcher, nil
}

// initClient starts the browser session and logs in to the site.
func initClient(ctx context.Context) (*yad2.Client, error) {
	cfg := yad2.DefaultConfig()
	cfg.Email = os.Getenv("YAD2_EMAIL")
	cfg.Password = os.Getenv("YAD2_PASSWORD")
	cfg.MaxPages = viper.GetInt("yad2.max_pages")
	cfg.Browser.Headless = viper.GetBool("yad2.headless")

	return yad2.NewClient(ctx, cfg)
}

// initNotifier builds the Gmail sender from config and environment.
func initNotifier(ctx context.Context) (*mail.Sender, error) {
	cfg := mail.Config{
		ClientID:     viper.GetString("mail.client_id"),
		ClientSecret: viper.GetString("mail.client_secret"),
		TokenFile:    config.ExpandPath(viper.GetString("mail.token_file")),
		Recipients:   mail.SplitRecipients(os.Getenv("EMAIL_RECIPIENTS")),
		CC:           mail.SplitRecipients(os.Getenv("EMAIL_CC_RECIPIENTS")),
	}

	return mail.NewSender(ctx, cfg)
}

// searchURL resolves the results page to scan.
func searchURL() string {
	if url := viper.GetString("yad2.search_url"); url != "" {
		return url
	}
	return yad2.RealEstateURL
}

// fetchListings navigates to the search results and collects all feed
// listings. A captcha mid-walk degrades to the pages fetched so far.
func fetchListings(ctx context.Context, client *yad2.Client) ([]*model.Listing, error) {
	if err := client.NavigateTo(ctx, searchURL()); err != nil {
		return nil, err
	}

	entries, err := client.FetchFeed(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrCaptchaDetected) {
			return nil, err
		}
		slog.Warn("Captcha interrupted the feed walk, continuing with partial results",
			"items", len(entries))
	}

	return listingsFromEntries(entries), nil
}

// listingsFromEntries unwraps listing entries, dropping saved-item
// references that have no place in a results feed.
func listingsFromEntries(entries []model.FeedEntry) []*model.Listing {
	listings := make([]*model.Listing, 0, len(entries))
	for _, entry := range entries {
		switch entry.Kind {
		case model.KindListing:
			listings = append(listings, entry.Listing)
		case model.KindSavedRef:
			slog.Debug("Ignoring saved-item reference in results feed",
				"item_id", entry.SavedRef.ItemID)
		}
	}
	return listings
}
