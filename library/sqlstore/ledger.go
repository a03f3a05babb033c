package sqlstore

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"library-console/library"
)

func loanColumns(alias string) []interface{} {
	col := func(name string) exp.IdentifierExpression { return goqu.T(alias).Col(name) }
	return []interface{}{
		col("id").As("id"),
		col("book_id").As("book_id"),
		col("member_id").As("member_id"),
		col("loan_date").As("loan_date"),
		col("return_date").As("return_date"),
		col("state").As("state"),
	}
}

// ListLoans returns every loan, newest first, with book title and member name.
func (s *Store) ListLoans(ctx context.Context) ([]*library.LoanRecord, error) {
	cols := append(loanColumns("l"),
		goqu.T("b").Col("title").As("book_title"),
		goqu.T("m").Col("name").As("member_name"),
	)
	ds := s.from(goqu.T("loans").As("l")).
		InnerJoin(goqu.T("books").As("b"), goqu.On(goqu.T("b").Col("id").Eq(goqu.T("l").Col("book_id")))).
		InnerJoin(goqu.T("members").As("m"), goqu.On(goqu.T("m").Col("id").Eq(goqu.T("l").Col("member_id")))).
		Select(cols...).
		Order(goqu.T("l").Col("loan_date").Desc(), goqu.T("l").Col("id").Desc())

	var loans []*library.LoanRecord
	if err := s.selectAll(ctx, s.db, &loans, ds); err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return loans, nil
}

// ListActiveLoans returns memberID's outstanding loans, newest first.
func (s *Store) ListActiveLoans(ctx context.Context, memberID int64) ([]*library.LoanRecord, error) {
	cols := append(loanColumns("l"),
		goqu.T("b").Col("title").As("book_title"),
		goqu.T("b").Col("author").As("book_author"),
	)
	ds := s.from(goqu.T("loans").As("l")).
		InnerJoin(goqu.T("books").As("b"), goqu.On(goqu.T("b").Col("id").Eq(goqu.T("l").Col("book_id")))).
		Select(cols...).
		Where(
			goqu.T("l").Col("member_id").Eq(memberID),
			goqu.T("l").Col("state").Eq(string(library.LoanActive)),
		).
		Order(goqu.T("l").Col("loan_date").Desc(), goqu.T("l").Col("id").Desc())

	var loans []*library.LoanRecord
	if err := s.selectAll(ctx, s.db, &loans, ds); err != nil {
		return nil, fmt.Errorf("list active loans: %w", err)
	}
	return loans, nil
}
