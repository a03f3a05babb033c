package library

import (
	"context"
	"time"
)

// CredentialStore persists administrator and member identity records.
type CredentialStore interface {
	// FindByIdentity looks up an administrator by username or a member by
	// email. It returns nil, nil when no row matches.
	FindByIdentity(ctx context.Context, role Role, identity string) (*Credential, error)
	// InsertAdministrator fails with ErrDuplicateIdentity if the username is taken.
	InsertAdministrator(ctx context.Context, a *Administrator) (int64, error)
	// InsertMember fails with ErrDuplicateIdentity if the email is taken.
	InsertMember(ctx context.Context, m *Member) (int64, error)
	// ListMembers returns all members ordered by name.
	ListMembers(ctx context.Context) ([]*Member, error)
}

// Catalog persists books. The available-copy counter is only changed through
// a LoanTx.
type Catalog interface {
	InsertBook(ctx context.Context, b *Book) (int64, error)
	// ListBooks returns every book ordered by title.
	ListBooks(ctx context.Context) ([]*Book, error)
	// ListAvailableBooks returns books with at least one copy, ordered by title.
	ListAvailableBooks(ctx context.Context) ([]*Book, error)
}

// LoanLedger reads loan records. Loans are written only through a LoanTx.
type LoanLedger interface {
	// ListLoans returns every loan with book title and member name, newest first.
	ListLoans(ctx context.Context) ([]*LoanRecord, error)
	// ListActiveLoans returns a member's outstanding loans with title and
	// author, newest first.
	ListActiveLoans(ctx context.Context, memberID int64) ([]*LoanRecord, error)
}

// LoanTx is the set of writes the Loan Workflow performs inside one unit of
// work. Implementations must serialize LockBook/DecrementAvailability against
// concurrent units of work touching the same book.
type LoanTx interface {
	// LockBook reads a book and holds it until the unit of work ends.
	// It returns nil, nil when the book does not exist.
	LockBook(ctx context.Context, bookID int64) (*Book, error)
	// DecrementAvailability takes one copy. It fails with ErrUnavailable
	// instead of letting the counter go below zero.
	DecrementAvailability(ctx context.Context, bookID int64) error
	IncrementAvailability(ctx context.Context, bookID int64) error

	// CreateLoan inserts an active loan with no return date.
	CreateLoan(ctx context.Context, bookID, memberID int64, loanDate time.Time) (int64, error)
	// LockActiveLoan finds loanID only if it is active and owned by memberID.
	// It returns nil, nil otherwise.
	LockActiveLoan(ctx context.Context, loanID, memberID int64) (*Loan, error)
	// CloseLoan marks a loan returned on returnDate.
	CloseLoan(ctx context.Context, loanID int64, returnDate time.Time) error
}

// Transactor runs fn as a single unit of work. Nothing fn wrote persists
// unless it returns nil.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx LoanTx) error) error
}

// Store is everything the manager needs from persistence.
type Store interface {
	CredentialStore
	Catalog
	LoanLedger
	Transactor
}
