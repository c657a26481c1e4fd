package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diary-service/internal/catalog"
	"diary-service/internal/store"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func newImporter(t *testing.T, files map[string]string) (*catalog.Importer, *store.MemoryMovieStore, *countingInvalidator) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	movies := store.NewMemoryMovieStore()
	inv := &countingInvalidator{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return catalog.NewImporter(fs, movies, validator.New(), inv, logger), movies, inv
}

func TestImportJSON(t *testing.T) {
	importer, movies, inv := newImporter(t, map[string]string{
		"/data/movies.json": `[
			{"title": "Alien", "year": 1979, "genre": "Sci-Fi", "director": "Ridley Scott"},
			{"title": "Heat", "year": 1995, "genre": "Crime", "director": "Michael Mann", "description": "LA heist"},
			{"title": "", "year": 2000}
		]`,
	})
	ctx := context.Background()

	report, err := importer.Import(ctx, "/data/movies.json")
	require.NoError(t, err)
	assert.Equal(t, catalog.FormatJSON, report.Format)
	assert.Equal(t, 2, report.Imported)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, 3, report.Rejected[0].Row)
	assert.Equal(t, 1, inv.calls)

	list, err := movies.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "LA heist", list[1].Description)
}

func TestImportCSVUpsertsByTitleAndYear(t *testing.T) {
	importer, movies, _ := newImporter(t, map[string]string{
		"/movies.csv": "title,year,genre,director,description\n" +
			"Alien,1979,Sci-Fi,Ridley Scott,\n" +
			"Vertigo,1958,Thriller,Alfred Hitchcock,obsession\n" +
			"Broken,notayear,Drama,Nobody,\n",
		"/update.csv": "year,title,genre\n" +
			"1979,Alien,Horror\n",
	})
	ctx := context.Background()

	report, err := importer.Import(ctx, "/movies.csv")
	require.NoError(t, err)
	assert.Equal(t, catalog.FormatCSV, report.Format)
	assert.Equal(t, 2, report.Imported)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, "Broken", report.Rejected[0].Title)

	_, err = importer.Import(ctx, "/update.csv")
	require.NoError(t, err)

	list, err := movies.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alien", list[0].Title)
	assert.Equal(t, "Horror", list[0].Genre)
}

func TestImportRejectsUnknownFormat(t *testing.T) {
	importer, _, inv := newImporter(t, map[string]string{
		"/movies.bin": "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR",
	})
	_, err := importer.Import(context.Background(), "/movies.bin")
	assert.ErrorIs(t, err, catalog.ErrUnsupportedFormat)
	assert.Zero(t, inv.calls)
}

func TestImportMissingFile(t *testing.T) {
	importer, _, _ := newImporter(t, nil)
	_, err := importer.Import(context.Background(), "/nope.json")
	assert.Error(t, err)
}

func TestDetectFormatFallsBackToExtension(t *testing.T) {
	format, err := catalog.DetectFormat("movies.CSV", []byte("title\n"))
	require.NoError(t, err)
	assert.Equal(t, catalog.FormatCSV, format)
}
