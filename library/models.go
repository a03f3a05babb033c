package library

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies which identity space a session was authenticated against.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleMember        Role = "member"
)

// LoanState is the lifecycle state of a loan: active until returned, then terminal.
type LoanState string

const (
	LoanActive   LoanState = "active"
	LoanReturned LoanState = "returned"
)

// DefaultLoanPeriod is how long a member may keep a book before it is due.
const DefaultLoanPeriod = 15 * 24 * time.Hour

// Administrator is a staff account, identified by username.
type Administrator struct {
	ID           int64  `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email,omitempty"`
	PasswordHash string `db:"password_hash" json:"-"`
}

// Member represents a registered library member, identified by email.
type Member struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Phone        string `db:"phone" json:"phone,omitempty"`
	Address      string `db:"address" json:"address,omitempty"`
}

// Credential is the part of an identity record the Authentication Service
// needs, regardless of which table it came from.
type Credential struct {
	ID           int64
	Role         Role
	Identity     string
	Name         string
	PasswordHash string
}

// Book represents catalog metadata and the number of copies currently lendable.
type Book struct {
	ID             int64  `db:"id" json:"id"`
	Title          string `db:"title" json:"title" validate:"required"`
	Author         string `db:"author" json:"author" validate:"required"`
	ISBN           string `db:"isbn" json:"isbn"`
	Publisher      string `db:"publisher" json:"publisher"`
	Year           int    `db:"year" json:"year"`
	Category       string `db:"category" json:"category"`
	AvailableCount int    `db:"available_count" json:"available_count" validate:"gte=0"`
}

// Loan links one copy of a book to one member. ReturnDate is nil while the
// loan is active.
type Loan struct {
	ID         int64      `db:"id" json:"id"`
	BookID     int64      `db:"book_id" json:"book_id"`
	MemberID   int64      `db:"member_id" json:"member_id"`
	LoanDate   time.Time  `db:"loan_date" json:"loan_date"`
	ReturnDate *time.Time `db:"return_date" json:"return_date,omitempty"`
	State      LoanState  `db:"state" json:"state"`
}

// DueDate is derived from the loan date; it is never stored.
func (l *Loan) DueDate(period time.Duration) time.Time {
	return l.LoanDate.Add(period)
}

// LoanRecord is a loan joined with the titles and names needed for listings.
type LoanRecord struct {
	Loan
	BookTitle  string `db:"book_title" json:"book_title"`
	BookAuthor string `db:"book_author" json:"book_author,omitempty"`
	MemberName string `db:"member_name" json:"member_name,omitempty"`
}

// Session is the authenticated identity a console run acts as. It is passed
// explicitly to every manager call.
type Session struct {
	ID       uuid.UUID
	Role     Role
	UserID   int64
	Name     string
	LoggedIn time.Time
}

// IsAdministrator reports whether the session may use staff operations.
func (s *Session) IsAdministrator() bool { return s != nil && s.Role == RoleAdministrator }

// IsMember reports whether the session may borrow and return books.
func (s *Session) IsMember() bool { return s != nil && s.Role == RoleMember }

// LoanReceipt describes a successful borrow.
type LoanReceipt struct {
	LoanID    int64
	BookID    int64
	BookTitle string
	LoanDate  time.Time
	DueDate   time.Time
}

// ReturnReceipt describes a successful return.
type ReturnReceipt struct {
	LoanID     int64
	BookID     int64
	BookTitle  string
	ReturnDate time.Time
}
