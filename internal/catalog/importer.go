// Package catalog loads movie catalog files into the movie store.
package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"

	"diary-service/internal/domain"
	"diary-service/internal/store"
)

// Supported catalog formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// Invalidator drops cached catalog data after an import.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// RowError describes a rejected catalog row. Row is 1-based and excludes the
// CSV header.
type RowError struct {
	Row    int
	Title  string
	Reason string
}

// Report summarizes one import run.
type Report struct {
	Format   string
	Imported int
	Rejected []RowError
}

// Importer reads catalog files and upserts their movies.
type Importer struct {
	fs          afero.Fs
	movies      store.MovieStore
	validate    *validator.Validate
	invalidator Invalidator
	logger      *slog.Logger
}

// NewImporter creates an Importer. invalidator may be nil.
func NewImporter(fs afero.Fs, movies store.MovieStore, v *validator.Validate, invalidator Invalidator, logger *slog.Logger) *Importer {
	return &Importer{fs: fs, movies: movies, validate: v, invalidator: invalidator, logger: logger}
}

// Import loads the file at path. Invalid rows are skipped and reported; a
// store failure aborts the run.
func (i *Importer) Import(ctx context.Context, path string) (*Report, error) {
	data, err := afero.ReadFile(i.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	format, err := DetectFormat(path, data)
	if err != nil {
		return nil, err
	}
	i.logger.InfoContext(ctx, "Importing catalog", slog.String("path", path), slog.String("format", format))

	var movies []domain.Movie
	switch format {
	case FormatJSON:
		movies, err = parseJSON(data)
	case FormatCSV:
		movies, err = parseCSV(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s catalog %s: %w", format, path, err)
	}

	report := &Report{Format: format}
	for idx := range movies {
		movie := movies[idx]
		movie.ID = 0
		movie.Title = strings.TrimSpace(movie.Title)
		if err := i.validate.StructCtx(ctx, movie); err != nil {
			i.logger.WarnContext(ctx, "Skipping invalid catalog row", slog.Int("row", idx+1), slog.String("error", err.Error()))
			report.Rejected = append(report.Rejected, RowError{Row: idx + 1, Title: movie.Title, Reason: err.Error()})
			continue
		}
		if err := i.movies.Upsert(ctx, &movie); err != nil {
			return report, fmt.Errorf("failed to store catalog row %d (%s): %w", idx+1, movie.Title, err)
		}
		report.Imported++
	}

	if report.Imported > 0 && i.invalidator != nil {
		if err := i.invalidator.Invalidate(ctx); err != nil {
			i.logger.WarnContext(ctx, "Catalog imported but cache invalidation failed", slog.String("error", err.Error()))
		}
	}
	i.logger.InfoContext(ctx, "Catalog import finished",
		slog.Int("imported", report.Imported), slog.Int("rejected", len(report.Rejected)))
	return report, nil
}

// DetectFormat sniffs the content type and falls back to the file extension.
func DetectFormat(path string, data []byte) (string, error) {
	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is("application/json"):
		return FormatJSON, nil
	case mtype.Is("text/csv"):
		return FormatCSV, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, path, mtype.String())
}

func parseJSON(data []byte) ([]domain.Movie, error) {
	var movies []domain.Movie
	if err := json.Unmarshal(data, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

var csvColumns = []string{"title", "year", "genre", "director", "description"}

// parseCSV reads a file whose header names the columns. title and year are
// required, the rest optional and in any order.
func parseCSV(data []byte) ([]domain.Movie, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("missing header: %w", err)
	}
	index := make(map[string]int, len(header))
	for pos, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = pos
	}
	for _, required := range csvColumns[:2] {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("header is missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		pos, ok := index[name]
		if !ok || pos >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[pos])
	}

	var movies []domain.Movie
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		// Unparsable years become 0 and are rejected by validation.
		year, _ := strconv.Atoi(field(record, "year"))
		movies = append(movies, domain.Movie{
			Title:       field(record, "title"),
			Year:        year,
			Genre:       field(record, "genre"),
			Director:    field(record, "director"),
			Description: field(record, "description"),
		})
	}
	return movies, nil
}
