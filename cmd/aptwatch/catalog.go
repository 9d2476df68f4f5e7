package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nadavh/aptwatch/internal/address"
	"github.com/nadavh/aptwatch/internal/cli"
	"github.com/nadavh/aptwatch/internal/config"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the street allow-list catalog",
	}

	cmd.AddCommand(catalogCheckCmd())

	return cmd
}

func catalogCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the catalog and self-match every street",
		Long: `Check loads the street catalog and runs every entry through the matcher
under its own city. An entry that fails to match itself points at a
normalization problem worth fixing before a real run.`,
		RunE: runCatalogCheck,
	}
}

func runCatalogCheck(_ *cobra.Command, _ []string) error {
	catalogPath := config.ExpandPath(viper.GetString("catalog.path"))

	catalog, err := address.LoadCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("street catalog %s: %w", catalogPath, err)
	}

	matcher := address.NewMatcher(catalog)

	streets := 0
	var failures []string
	for _, city := range catalog {
		for _, hood := range city.Neighborhoods {
			for _, street := range hood.Streets {
				streets++
				match := matcher.Match(street.Name, city.City)
				if !match.IsAllowed {
					failures = append(failures, fmt.Sprintf("%s / %s", city.City, street.Name))
				}
			}
		}
	}

	fmt.Println(cli.FormatInfo(fmt.Sprintf("Catalog: %d cities, %d streets", len(catalog), streets)))

	if len(failures) > 0 {
		for _, failure := range failures {
			fmt.Println(cli.FormatError("self-match failed: " + failure))
		}
		return fmt.Errorf("%d catalog entries failed to match themselves", len(failures))
	}

	fmt.Println(cli.FormatSuccess("Every catalog entry matches itself"))
	return nil
}
