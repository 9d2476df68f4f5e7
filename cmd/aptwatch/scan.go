package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadavh/aptwatch/internal/cli"
	"github.com/nadavh/aptwatch/internal/engine"
	"github.com/nadavh/aptwatch/internal/model"
)

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Fetch the feed and report how listings categorize",
		Long: `Scan fetches the current search results, matches every listing against
the street allow-list, and reports the bucket counts without processing
anything. Use it to sanity-check the catalog before a real run.`,
		RunE: runScan,
	}
}

func runScan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	matcher, err := initMatcher()
	if err != nil {
		return err
	}

	client, err := initClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	slog.Info(cli.FormatTitle("Scanning listings..."))

	listings, err := fetchListings(ctx, client)
	if err != nil {
		return err
	}

	feed := engine.Categorize(listings, matcher)
	stats := feed.Stats()

	content := fmt.Sprintf("Total listings: %d\n", stats.Total) +
		fmt.Sprintf("  Already saved: %d\n", stats.Saved) +
		fmt.Sprintf("  Supported streets: %d\n", stats.Supported) +
		fmt.Sprintf("  Unsupported streets: %d", stats.Unsupported)

	fmt.Println(cli.RenderBox("Scan Results", content))

	if len(feed.Supported) > 0 {
		fmt.Println(cli.FormatInfo("Supported listings:"))
		for _, listing := range feed.Supported {
			fmt.Printf("  • %s\n", scanLine(listing))
		}
	}

	return nil
}

func scanLine(listing *model.Listing) string {
	parts := []string{listing.Location.Street, listing.Location.City}
	if listing.Price > 0 {
		parts = append(parts, fmt.Sprintf("%d", listing.Price))
	}
	return strings.Join(parts, ", ") + "  " + cli.SubtleStyle.Render(listing.URL)
}
