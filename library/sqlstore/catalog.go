package sqlstore

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"library-console/library"
)

// bookColumns tolerates NULL in the optional metadata columns.
var bookColumns = []interface{}{
	"id", "title", "author",
	goqu.COALESCE(goqu.C("isbn"), "").As("isbn"),
	goqu.COALESCE(goqu.C("publisher"), "").As("publisher"),
	goqu.COALESCE(goqu.C("year"), 0).As("year"),
	goqu.COALESCE(goqu.C("category"), "").As("category"),
	"available_count",
}

func (s *Store) InsertBook(ctx context.Context, b *library.Book) (int64, error) {
	ds := s.insert("books").Rows(goqu.Record{
		"title":           b.Title,
		"author":          b.Author,
		"isbn":            b.ISBN,
		"publisher":       b.Publisher,
		"year":            b.Year,
		"category":        b.Category,
		"available_count": b.AvailableCount,
	})
	id, err := s.insertReturningID(ctx, s.db, ds)
	if err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}
	b.ID = id
	return id, nil
}

func (s *Store) ListBooks(ctx context.Context) ([]*library.Book, error) {
	return s.listBooks(ctx)
}

func (s *Store) ListAvailableBooks(ctx context.Context) ([]*library.Book, error) {
	return s.listBooks(ctx, goqu.C("available_count").Gt(0))
}

func (s *Store) listBooks(ctx context.Context, where ...exp.Expression) ([]*library.Book, error) {
	ds := s.from("books").
		Select(bookColumns...).
		Order(goqu.C("title").Asc(), goqu.C("id").Asc())
	if len(where) > 0 {
		ds = ds.Where(where...)
	}

	var books []*library.Book
	if err := s.selectAll(ctx, s.db, &books, ds); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}
