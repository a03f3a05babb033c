package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"library-console/library"
)

// InTx runs fn inside one database transaction and commits only if fn
// returns nil. On SQLite the transaction starts with BEGIN IMMEDIATE, so
// concurrent units of work queue on the busy timeout instead of racing.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx library.LoanTx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &loanTx{s: s, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type loanTx struct {
	s  *Store
	tx *sqlx.Tx
}

func (t *loanTx) lock(ds *goqu.SelectDataset) *goqu.SelectDataset {
	if t.s.lockRows {
		return ds.ForUpdate(exp.Wait)
	}
	return ds
}

func (t *loanTx) LockBook(ctx context.Context, bookID int64) (*library.Book, error) {
	ds := t.lock(t.s.from("books").Select(bookColumns...).Where(goqu.C("id").Eq(bookID)))

	var b library.Book
	if err := t.s.get(ctx, t.tx, &b, ds); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read book %d: %w", bookID, err)
	}
	return &b, nil
}

// DecrementAvailability only matches a row whose counter is still positive.
func (t *loanTx) DecrementAvailability(ctx context.Context, bookID int64) error {
	ds := t.s.update("books").
		Set(goqu.Record{"available_count": goqu.L("available_count - 1")}).
		Where(goqu.C("id").Eq(bookID), goqu.C("available_count").Gt(0))
	n, err := t.affected(ctx, ds)
	if err != nil {
		return fmt.Errorf("take copy of book %d: %w", bookID, err)
	}
	if n == 0 {
		return library.ErrUnavailable
	}
	return nil
}

func (t *loanTx) IncrementAvailability(ctx context.Context, bookID int64) error {
	ds := t.s.update("books").
		Set(goqu.Record{"available_count": goqu.L("available_count + 1")}).
		Where(goqu.C("id").Eq(bookID))
	n, err := t.affected(ctx, ds)
	if err != nil {
		return fmt.Errorf("restore copy of book %d: %w", bookID, err)
	}
	if n == 0 {
		return library.ErrNotFound
	}
	return nil
}

func (t *loanTx) CreateLoan(ctx context.Context, bookID, memberID int64, loanDate time.Time) (int64, error) {
	ds := t.s.insert("loans").Rows(goqu.Record{
		"book_id":   bookID,
		"member_id": memberID,
		"loan_date": loanDate,
		"state":     string(library.LoanActive),
	})
	id, err := t.s.insertReturningID(ctx, t.tx, ds)
	if err != nil {
		return 0, fmt.Errorf("insert loan: %w", err)
	}
	return id, nil
}

func (t *loanTx) LockActiveLoan(ctx context.Context, loanID, memberID int64) (*library.Loan, error) {
	ds := t.lock(t.s.from("loans").
		Select("id", "book_id", "member_id", "loan_date", "return_date", "state").
		Where(
			goqu.C("id").Eq(loanID),
			goqu.C("member_id").Eq(memberID),
			goqu.C("state").Eq(string(library.LoanActive)),
		))

	var l library.Loan
	if err := t.s.get(ctx, t.tx, &l, ds); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read loan %d: %w", loanID, err)
	}
	return &l, nil
}

// CloseLoan is a no-op match, reported as ErrNotFound, if the loan is no
// longer active.
func (t *loanTx) CloseLoan(ctx context.Context, loanID int64, returnDate time.Time) error {
	ds := t.s.update("loans").
		Set(goqu.Record{
			"state":       string(library.LoanReturned),
			"return_date": returnDate,
		}).
		Where(goqu.C("id").Eq(loanID), goqu.C("state").Eq(string(library.LoanActive)))
	n, err := t.affected(ctx, ds)
	if err != nil {
		return fmt.Errorf("close loan %d: %w", loanID, err)
	}
	if n == 0 {
		return library.ErrNotFound
	}
	return nil
}

func (t *loanTx) affected(ctx context.Context, ds *goqu.UpdateDataset) (int64, error) {
	res, err := t.s.exec(ctx, t.tx, ds)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
