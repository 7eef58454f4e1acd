package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/frameweavers/showreel/internal/app"
	"github.com/frameweavers/showreel/internal/config"
	"github.com/frameweavers/showreel/internal/logger"
	"github.com/frameweavers/showreel/internal/service"
	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
)

// openCatalog wires the database-backed catalog regardless of CATALOG_SOURCE.
// The returned func closes the app and flushes pending Sentry events.
func openCatalog() (*app.App, func(), error) {
	cfg := config.Load()
	logger.Init(logger.OptionsFrom(cfg))

	cfg.CatalogSource = config.CatalogSourceDatabase
	a, err := app.New(cfg)
	if err != nil {
		sentry.Flush(2 * time.Second)
		return nil, nil, err
	}
	return a, func() {
		_ = a.Close()
		sentry.Flush(2 * time.Second)
	}, nil
}

func SeedCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import the static portfolio files into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeCatalog, err := openCatalog()
			if err != nil {
				return err
			}
			defer closeCatalog()

			ctx := cmd.Context()
			count, err := a.CatalogService.Count(ctx)
			if err != nil {
				return err
			}
			if count > 0 && !force {
				fmt.Printf("Catalog already has %d entries, skipping (use --force to import anyway)\n", count)
				return nil
			}

			entries, err := a.StaticCatalog.List(ctx)
			if err != nil {
				return err
			}

			// Creates in file order get increasing order keys
			for _, e := range entries {
				created, err := a.CatalogService.Create(ctx, service.CreateInput{
					Title:       e.Title,
					Category:    e.Category,
					Description: e.Description,
					ImageURL:    e.ImageURL,
					VideoURL:    e.VideoURL,
				})
				if err != nil {
					return fmt.Errorf("failed to import %s: %w", e.ID, err)
				}
				fmt.Printf("Imported %s as %s\n", e.Title, created.ID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "import even when the catalog is not empty")
	return cmd
}

func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the catalog in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeCatalog, err := openCatalog()
			if err != nil {
				return err
			}
			defer closeCatalog()

			entries, err := a.CatalogService.List(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tID\tORDER\tCATEGORY\tTITLE")
			for i, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", i, e.ID, e.Order, e.Category, e.Title)
			}
			return tw.Flush()
		},
	}
}

func ReorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <index> <up|down>",
		Short: "Move an entry one position up or down",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("index must be a number: %w", err)
			}
			direction, err := service.ParseDirection(args[1])
			if err != nil {
				return err
			}

			a, closeCatalog, err := openCatalog()
			if err != nil {
				return err
			}
			defer closeCatalog()

			moved, err := a.CatalogService.Reorder(cmd.Context(), index, direction)
			if err != nil {
				return err
			}
			if !moved {
				fmt.Println("Already at the edge, nothing moved")
				return nil
			}
			fmt.Printf("Moved entry %d %s\n", index, direction)
			return nil
		},
	}
}

func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|index>",
		Short: "Delete an entry and release its uploaded media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeCatalog, err := openCatalog()
			if err != nil {
				return err
			}
			defer closeCatalog()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			report, err := a.CatalogService.Delete(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %s (%s)\n", report.Entry.Title, report.Entry.ID)
			for _, handle := range report.Failed {
				fmt.Printf("  warning: media not released: %s\n", handle)
			}
			return nil
		},
	}
}
