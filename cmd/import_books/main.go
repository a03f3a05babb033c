// Command import_books bulk-loads books from a CSV file with the columns
//
//	title,author,isbn,publisher,year,category,copies
//
// A header row with those names is optional. Each row is validated like a
// book registered at the console; invalid rows are reported and skipped.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"library-console/config"
	"library-console/library"
	"library-console/library/sqlstore"
	"library-console/logger"
)

const columns = 7

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: import_books <catalog.csv>")
		os.Exit(2)
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	store, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, sqlstore.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening catalog: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	fmt.Printf("Importing books from %s...\n", os.Args[1])
	res, err := importCatalog(ctx, f, store, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books (%d copies)\n", res.imported, res.copies)
	fmt.Printf("Errors: %d\n", res.failed)
	if res.failed > 0 {
		os.Exit(1)
	}
}

type importResult struct {
	imported int
	copies   int
	failed   int
}

// importCatalog inserts every valid row of r into cat and writes one status
// line per row to out. Only a read failure returns an error.
func importCatalog(ctx context.Context, r io.Reader, cat library.Catalog, out io.Writer) (importResult, error) {
	var res importResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				fmt.Fprintf(out, "row %d: ERROR - %v\n", row, perr.Err)
				res.failed++
				continue
			}
			return res, err
		}
		if row == 1 && isHeader(rec) {
			continue
		}
		if len(rec) != columns {
			fmt.Fprintf(out, "row %d: ERROR - want %d columns, got %d\n", row, columns, len(rec))
			res.failed++
			continue
		}

		book, err := library.ParseBookInput(library.BookInput{
			Title:     rec[0],
			Author:    rec[1],
			ISBN:      rec[2],
			Publisher: rec[3],
			Year:      rec[4],
			Category:  rec[5],
			Copies:    rec[6],
		})
		if err != nil {
			fmt.Fprintf(out, "row %d: ERROR - %v\n", row, err)
			res.failed++
			continue
		}

		id, err := cat.InsertBook(ctx, book)
		if err != nil {
			fmt.Fprintf(out, "row %d: ERROR - %v\n", row, err)
			res.failed++
			continue
		}
		fmt.Fprintf(out, "row %d: %s by %s... SUCCESS (ID: %d)\n", row, truncateString(book.Title, 50), truncateString(book.Author, 30), id)
		res.imported++
		res.copies += book.AvailableCount
	}
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "title")
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
