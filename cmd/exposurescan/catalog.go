package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/exposurescan/internal/catalog"
	"github.com/spf13/cobra"
)

// NewCatalogCmd creates the catalog command with its subcommands.
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the threat catalog",
		Long: `Catalog manages the threat categories and ingredients exposures are scored
against.

The embedded default catalog covers identity theft, account takeover,
financial fraud, doxxing, phishing and impersonation. A custom catalog can be
seeded from a YAML file with the same layout (see 'catalog export').`,
	}

	cmd.AddCommand(newCatalogSeedCmd())
	cmd.AddCommand(newCatalogListCmd())
	cmd.AddCommand(newCatalogExportCmd())

	return cmd
}

// newCatalogSeedCmd creates the "catalog seed" command.
func newCatalogSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the catalog into the database",
		Long: `Seed upserts the catalog into the database. Existing categories and
ingredients keep their IDs, so stored exposures stay valid.

Examples:
  # Seed the embedded default catalog
  exposurescan catalog seed

  # Seed a custom catalog
  exposurescan catalog seed --catalog my-catalog.yaml`,
		Args: cobra.NoArgs,
		RunE: runCatalogSeedCmd,
	}

	cmd.Flags().String("catalog", "",
		"Catalog seed file (default: the embedded catalog)")
	addConfigFlags(cmd)

	return cmd
}

// runCatalogSeedCmd executes the catalog seed command.
func runCatalogSeedCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	seed, err := loadSeed(cfg.CatalogFile)
	if err != nil {
		return fmt.Errorf("failed to load catalog seed: %w", err)
	}

	db, err := openDB(cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := db.SeedCatalog(context.Background(), seed.Categories, seed.Ingredients)
	if err != nil {
		return err
	}

	source := cfg.CatalogFile
	if source == "" {
		source = "embedded default catalog"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories and %d ingredients from %s into %s\n",
		result.Categories, result.Ingredients, source, db.Path())

	return nil
}

// newCatalogListCmd creates the "catalog list" command.
func newCatalogListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the catalog stored in the database",
		Args:  cobra.NoArgs,
		RunE:  runCatalogListCmd,
	}

	addConfigFlags(cmd)

	return cmd
}

// runCatalogListCmd executes the catalog list command.
func runCatalogListCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	db, err := openDB(cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	cat, err := db.LoadCatalog(context.Background())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cat.Size() == 0 {
		fmt.Fprintln(out, "The catalog is empty.")
		fmt.Fprintln(out, "\nUse 'exposurescan catalog seed' to seed the default catalog.")
		return nil
	}

	categories := cat.Categories()
	fmt.Fprintf(out, "Threat catalog (%d categories, %d ingredients):\n", len(categories), cat.Size())

	for _, c := range categories {
		keys := cat.CategoryIngredients(c.Key)
		fmt.Fprintf(out, "\n%s  %s (%d)\n", c.Key, c.Name, len(keys))
		for _, key := range keys {
			ing, ok := cat.Ingredient(key)
			if !ok {
				continue
			}
			sources := make([]string, len(ing.DetectionSources))
			for i, s := range ing.DetectionSources {
				sources[i] = s.String()
			}
			fmt.Fprintf(out, "  %-28s %s\n", ing.Key, strings.Join(sources, ", "))
		}
	}

	return nil
}

// newCatalogExportCmd creates the "catalog export" command.
func newCatalogExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the embedded default catalog as YAML",
		Long: `Export writes the embedded default catalog. Use it as a starting point for
a custom catalog.

Examples:
  exposurescan catalog export > catalog.yaml
  exposurescan catalog export -o catalog.yaml`,
		Args: cobra.NoArgs,
		RunE: runCatalogExportCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Write the catalog to this file instead of stdout")

	return cmd
}

// runCatalogExportCmd executes the catalog export command.
func runCatalogExportCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	data := catalog.DefaultYAML()
	if outputPath == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(outputPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default catalog to %s\n", outputPath)
	return nil
}
