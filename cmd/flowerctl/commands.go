package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"flowershop/internal/config"
	"flowershop/internal/database"
	"flowershop/internal/importer"
	"flowershop/internal/services"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flowerctl",
		Short:         "Manage the flower catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newImportCmd(), newListCmd())
	return root
}

// withService opens the configured backend for the duration of fn.
func withService(ctx context.Context, fn func(*services.ProductService) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	backend, err := database.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(ctx); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()
	return fn(services.NewProductService(backend.Products, nil))
}

func newImportCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <catalog.xlsx>",
		Short: "Create flowers from the first sheet of an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := importer.ParseFile(args[0])
			if err != nil {
				return err
			}
			return withService(cmd.Context(), func(svc *services.ProductService) error {
				return importRows(cmd.Context(), cmd.OutOrStdout(), svc, rows, dryRun)
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate rows without storing them")
	return cmd
}

func importRows(ctx context.Context, out io.Writer, svc *services.ProductService, rows []importer.Row, dryRun bool) error {
	var created, failed int
	for _, row := range rows {
		if row.Err != nil {
			fmt.Fprintln(out, row.Err)
			failed++
			continue
		}
		if dryRun {
			created++
			continue
		}
		product, err := svc.CreateProduct(ctx, row.Product)
		if err != nil {
			fmt.Fprintf(out, "row %d: %v\n", row.Line, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "row %d: created %s (%s)\n", row.Line, product.Title, product.ID)
		created++
	}

	fmt.Fprintf(out, "%d imported, %d failed\n", created, failed)
	if failed > 0 {
		return fmt.Errorf("%d rows could not be imported", failed)
	}
	return nil
}

func newListCmd() *cobra.Command {
	var limit, skip int
	cmd := &cobra.Command{
		Use:   "list [query]",
		Short: "Print flowers matching an optional search query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return withService(cmd.Context(), func(svc *services.ProductService) error {
				return listFlowers(cmd.Context(), cmd.OutOrStdout(), svc, query, limit, skip)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", services.DefaultSearchLimit, "maximum number of flowers, 0 for all")
	cmd.Flags().IntVar(&skip, "skip", 0, "number of matching flowers to skip")
	return cmd
}

func listFlowers(ctx context.Context, out io.Writer, svc *services.ProductService, query string, limit, skip int) error {
	flowers, err := svc.SearchProducts(ctx, query, limit, skip)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"ID", "Title", "Price", "Cover"})
	for _, f := range flowers {
		t.AppendRow(table.Row{f.ID, f.Title, fmt.Sprintf("%.2f", f.Price), f.Cover})
	}
	t.AppendFooter(table.Row{"", "Total", len(flowers), ""})
	t.Render()
	return nil
}
