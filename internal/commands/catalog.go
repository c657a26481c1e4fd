package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gosuri/uitable"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"diary-service/internal/catalog"
	"diary-service/internal/domain"
	"diary-service/internal/service"
	"diary-service/internal/store"
)

func addCatalog(topLevel *cobra.Command, opts *globalOptions) {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the movie catalog",
	}
	addCatalogImport(catalogCmd, opts)
	addCatalogList(catalogCmd, opts)
	topLevel.AddCommand(catalogCmd)
}

func addCatalogImport(parent *cobra.Command, opts *globalOptions) {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Upsert movies from a JSON or CSV catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := cmd.Context()
			if opts.cfg.Database.Driver == store.DriverMemory {
				opts.logger.WarnContext(ctx, "Importing into the memory driver, the catalog is discarded on exit")
			}

			a, err := openApp(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			movieCatalog := service.NewCatalog(a.movies, a.cache, opts.cfg.Cache.TTL, opts.logger)
			importer := catalog.NewImporter(afero.NewOsFs(), a.movies, validator.New(), movieCatalog, opts.logger)
			report, err := importer.Import(ctx, args[0])
			if report != nil {
				renderImportReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}
	parent.AddCommand(cmd)
}

func renderImportReport(w io.Writer, report *catalog.Report) {
	fmt.Fprintf(w, "format: %s, imported: %d, rejected: %d\n", report.Format, report.Imported, len(report.Rejected))
	if len(report.Rejected) == 0 {
		return
	}
	tbl := uitable.New()
	tbl.MaxColWidth = 80
	tbl.Wrap = true
	tbl.AddRow("ROW", "TITLE", "REASON")
	for _, r := range report.Rejected {
		tbl.AddRow(r.Row, r.Title, r.Reason)
	}
	fmt.Fprintln(w, tbl)
}

func addCatalogList(parent *cobra.Command, opts *globalOptions) {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the catalog sorted by title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			ctx := cmd.Context()
			a, err := openApp(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			movies, err := service.NewCatalog(a.movies, a.cache, opts.cfg.Cache.TTL, opts.logger).ListAll(ctx)
			if err != nil {
				return err
			}
			opts.logger.DebugContext(ctx, "Catalog loaded", slog.Int("count", len(movies)))
			renderMovies(cmd.OutOrStdout(), movies)
			return nil
		},
	}
	parent.AddCommand(cmd)
}

func renderMovies(w io.Writer, movies []domain.Movie) {
	tbl := uitable.New()
	tbl.MaxColWidth = 50
	tbl.AddRow("ID", "TITLE", "YEAR", "GENRE", "DIRECTOR")
	for _, m := range movies {
		tbl.AddRow(m.ID, m.Title, m.Year, m.Genre, m.Director)
	}
	fmt.Fprintln(w, tbl)
}
