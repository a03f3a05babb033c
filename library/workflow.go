package library

import (
	"context"
	"time"
)

// LoanWorkflow moves loans through none → active → returned while keeping
// each book's available count in step. Every operation is one unit of work.
type LoanWorkflow struct {
	tx     Transactor
	period time.Duration
	now    func() time.Time
}

// WorkflowOption configures a LoanWorkflow.
type WorkflowOption func(*LoanWorkflow)

// WithLoanPeriod overrides DefaultLoanPeriod.
func WithLoanPeriod(d time.Duration) WorkflowOption {
	return func(w *LoanWorkflow) {
		if d > 0 {
			w.period = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) WorkflowOption {
	return func(w *LoanWorkflow) { w.now = now }
}

func NewLoanWorkflow(tx Transactor, opts ...WorkflowOption) *LoanWorkflow {
	w := &LoanWorkflow{tx: tx, period: DefaultLoanPeriod, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// LoanPeriod is the interval added to a loan date to derive its due date.
func (w *LoanWorkflow) LoanPeriod() time.Duration { return w.period }

// today is the calendar date on the operator's clock, in its own location,
// stored as midnight UTC to match the DATE columns loans live in.
func (w *LoanWorkflow) today() time.Time {
	t := w.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Borrow lends one copy of bookID to memberID. It fails with ErrUnavailable,
// writing nothing, if the book does not exist or has no copies left.
func (w *LoanWorkflow) Borrow(ctx context.Context, memberID, bookID int64) (*LoanReceipt, error) {
	var receipt *LoanReceipt
	err := w.tx.InTx(ctx, func(ctx context.Context, tx LoanTx) error {
		book, err := tx.LockBook(ctx, bookID)
		if err != nil {
			return err
		}
		if book == nil || book.AvailableCount <= 0 {
			return ErrUnavailable
		}

		loanDate := w.today()
		loanID, err := tx.CreateLoan(ctx, bookID, memberID, loanDate)
		if err != nil {
			return err
		}
		if err := tx.DecrementAvailability(ctx, bookID); err != nil {
			return err
		}

		receipt = &LoanReceipt{
			LoanID:    loanID,
			BookID:    bookID,
			BookTitle: book.Title,
			LoanDate:  loanDate,
			DueDate:   loanDate.Add(w.period),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// ReturnBook closes loanID on behalf of memberID. Unknown ids, loans already
// returned and loans owned by someone else all fail with the same ErrNotFound.
func (w *LoanWorkflow) ReturnBook(ctx context.Context, memberID, loanID int64) (*ReturnReceipt, error) {
	var receipt *ReturnReceipt
	err := w.tx.InTx(ctx, func(ctx context.Context, tx LoanTx) error {
		loan, err := tx.LockActiveLoan(ctx, loanID, memberID)
		if err != nil {
			return err
		}
		if loan == nil {
			return ErrNotFound
		}

		book, err := tx.LockBook(ctx, loan.BookID)
		if err != nil {
			return err
		}
		if book == nil {
			// only reachable if the foreign key was bypassed
			return ErrNotFound
		}

		returnDate := w.today()
		if err := tx.CloseLoan(ctx, loan.ID, returnDate); err != nil {
			return err
		}
		if err := tx.IncrementAvailability(ctx, loan.BookID); err != nil {
			return err
		}

		receipt = &ReturnReceipt{
			LoanID:     loan.ID,
			BookID:     loan.BookID,
			BookTitle:  book.Title,
			ReturnDate: returnDate,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}
