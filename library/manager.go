package library

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LibraryManager is a thin façade over the store, the Authentication Service
// and the Loan Workflow, keeping console code simple. Every call after Login
// takes the Session it acts for.
type LibraryManager struct {
	store    Store
	auth     *Authenticator
	workflow *LoanWorkflow
	hasher   PasswordHasher
	log      zerolog.Logger
}

// Option configures a LibraryManager.
type Option func(*LibraryManager)

func WithLogger(l zerolog.Logger) Option {
	return func(lm *LibraryManager) { lm.log = l }
}

func WithPasswordHasher(h PasswordHasher) Option {
	return func(lm *LibraryManager) { lm.hasher = h }
}

// WithWorkflowOptions passes options through to the Loan Workflow.
func WithWorkflowOptions(opts ...WorkflowOption) Option {
	return func(lm *LibraryManager) {
		lm.workflow = NewLoanWorkflow(lm.store, opts...)
	}
}

func NewLibraryManager(store Store, opts ...Option) *LibraryManager {
	lm := &LibraryManager{
		store:  store,
		auth:   NewAuthenticator(store),
		hasher: PasswordHasher{Scheme: SchemeSHA256},
		log:    zerolog.Nop(),
	}
	lm.workflow = NewLoanWorkflow(store)
	for _, opt := range opts {
		opt(lm)
	}
	return lm
}

// LoanPeriod is used to derive due dates for display.
func (lm *LibraryManager) LoanPeriod() time.Duration { return lm.workflow.LoanPeriod() }

// ------------------ Sessions ------------------

// Login authenticates identity (a username or an email) and opens a session.
func (lm *LibraryManager) Login(ctx context.Context, identity, secret string) (*Session, error) {
	cred, err := lm.auth.Authenticate(ctx, identity, secret)
	if err != nil {
		if errors.Is(err, ErrAuthFailure) {
			lm.log.Warn().Str("identity", identity).Msg("authentication failed")
		} else {
			lm.log.Error().Err(err).Msg("authentication lookup failed")
		}
		return nil, err
	}

	sess := &Session{
		ID:       uuid.New(),
		Role:     cred.Role,
		UserID:   cred.ID,
		Name:     cred.Name,
		LoggedIn: time.Now(),
	}
	lm.sessionLog(sess).Info().Msg("logged in")
	return sess, nil
}

// Logout only records the event; sessions hold no server-side state.
func (lm *LibraryManager) Logout(sess *Session) {
	if sess != nil {
		lm.sessionLog(sess).Info().Dur("duration", time.Since(sess.LoggedIn)).Msg("logged out")
	}
}

func (lm *LibraryManager) sessionLog(sess *Session) *zerolog.Logger {
	l := lm.log.With().
		Str("session_id", sess.ID.String()).
		Str("role", string(sess.Role)).
		Int64("user_id", sess.UserID).
		Logger()
	return &l
}

func requireAdministrator(sess *Session) error {
	if !sess.IsAdministrator() {
		return ErrForbidden
	}
	return nil
}

func requireMember(sess *Session) error {
	if !sess.IsMember() {
		return ErrForbidden
	}
	return nil
}

// ------------------ Registration ------------------

// RegisterBook validates in and adds the book to the catalog.
func (lm *LibraryManager) RegisterBook(ctx context.Context, sess *Session, in BookInput) (int64, error) {
	if err := requireAdministrator(sess); err != nil {
		return 0, err
	}
	book, err := ParseBookInput(in)
	if err != nil {
		return 0, err
	}
	id, err := lm.store.InsertBook(ctx, book)
	if err != nil {
		lm.sessionLog(sess).Error().Err(err).Str("title", book.Title).Msg("register book failed")
		return 0, err
	}
	lm.sessionLog(sess).Info().Int64("book_id", id).Str("title", book.Title).Int("copies", book.AvailableCount).Msg("book registered")
	return id, nil
}

// RegisterMember validates in, hashes the secret and stores the member.
func (lm *LibraryManager) RegisterMember(ctx context.Context, sess *Session, in MemberInput) (int64, error) {
	if err := requireAdministrator(sess); err != nil {
		return 0, err
	}
	in.normalize()
	if err := validateInput(in); err != nil {
		return 0, err
	}
	hash, err := lm.hasher.Hash(in.Password)
	if err != nil {
		return 0, err
	}
	id, err := lm.store.InsertMember(ctx, &Member{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Address:      in.Address,
	})
	if err != nil {
		lm.logRegistrationFailure(sess, err, "member")
		return 0, err
	}
	lm.sessionLog(sess).Info().Int64("member_id", id).Msg("member registered")
	return id, nil
}

// RegisterAdministrator adds another staff account.
func (lm *LibraryManager) RegisterAdministrator(ctx context.Context, sess *Session, in AdministratorInput) (int64, error) {
	if err := requireAdministrator(sess); err != nil {
		return 0, err
	}
	id, err := lm.insertAdministrator(ctx, in)
	if err != nil {
		lm.logRegistrationFailure(sess, err, "administrator")
		return 0, err
	}
	lm.sessionLog(sess).Info().Int64("administrator_id", id).Msg("administrator registered")
	return id, nil
}

// BootstrapAdministrator creates the first staff account without a session.
// It is only reachable from the init command.
func (lm *LibraryManager) BootstrapAdministrator(ctx context.Context, in AdministratorInput) (int64, error) {
	id, err := lm.insertAdministrator(ctx, in)
	if err != nil {
		return 0, err
	}
	lm.log.Info().Int64("administrator_id", id).Str("username", in.Username).Msg("bootstrap administrator registered")
	return id, nil
}

func (lm *LibraryManager) insertAdministrator(ctx context.Context, in AdministratorInput) (int64, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return 0, err
	}
	hash, err := lm.hasher.Hash(in.Password)
	if err != nil {
		return 0, err
	}
	return lm.store.InsertAdministrator(ctx, &Administrator{
		Username:     in.Username,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})
}

func (lm *LibraryManager) logRegistrationFailure(sess *Session, err error, kind string) {
	ev := lm.sessionLog(sess).Error()
	if errors.Is(err, ErrDuplicateIdentity) || errors.Is(err, ErrValidation) {
		ev = lm.sessionLog(sess).Warn()
	}
	ev.Err(err).Str("kind", kind).Msg("registration rejected")
}

// ------------------ Listings ------------------

func (lm *LibraryManager) ListBooks(ctx context.Context, sess *Session) ([]*Book, error) {
	if err := requireAdministrator(sess); err != nil {
		return nil, err
	}
	return lm.store.ListBooks(ctx)
}

func (lm *LibraryManager) ListMembers(ctx context.Context, sess *Session) ([]*Member, error) {
	if err := requireAdministrator(sess); err != nil {
		return nil, err
	}
	return lm.store.ListMembers(ctx)
}

func (lm *LibraryManager) ListLoans(ctx context.Context, sess *Session) ([]*LoanRecord, error) {
	if err := requireAdministrator(sess); err != nil {
		return nil, err
	}
	return lm.store.ListLoans(ctx)
}

func (lm *LibraryManager) ListAvailableBooks(ctx context.Context, sess *Session) ([]*Book, error) {
	if sess == nil {
		return nil, ErrForbidden
	}
	return lm.store.ListAvailableBooks(ctx)
}

// MyActiveLoans lists the session member's outstanding loans.
func (lm *LibraryManager) MyActiveLoans(ctx context.Context, sess *Session) ([]*LoanRecord, error) {
	if err := requireMember(sess); err != nil {
		return nil, err
	}
	return lm.store.ListActiveLoans(ctx, sess.UserID)
}

// ------------------ Circulation ------------------

// Borrow lends bookID to the session member.
func (lm *LibraryManager) Borrow(ctx context.Context, sess *Session, bookID int64) (*LoanReceipt, error) {
	if err := requireMember(sess); err != nil {
		return nil, err
	}
	receipt, err := lm.workflow.Borrow(ctx, sess.UserID, bookID)
	if err != nil {
		lm.logWorkflowFailure(sess, err, "borrow", bookID)
		return nil, err
	}
	lm.sessionLog(sess).Info().
		Int64("loan_id", receipt.LoanID).
		Int64("book_id", bookID).
		Time("due", receipt.DueDate).
		Msg("book borrowed")
	return receipt, nil
}

// ReturnBook closes one of the session member's active loans.
func (lm *LibraryManager) ReturnBook(ctx context.Context, sess *Session, loanID int64) (*ReturnReceipt, error) {
	if err := requireMember(sess); err != nil {
		return nil, err
	}
	receipt, err := lm.workflow.ReturnBook(ctx, sess.UserID, loanID)
	if err != nil {
		lm.logWorkflowFailure(sess, err, "return", loanID)
		return nil, err
	}
	lm.sessionLog(sess).Info().
		Int64("loan_id", loanID).
		Int64("book_id", receipt.BookID).
		Msg("book returned")
	return receipt, nil
}

func (lm *LibraryManager) logWorkflowFailure(sess *Session, err error, op string, id int64) {
	l := lm.sessionLog(sess)
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrNotFound) {
		l.Warn().Str("op", op).Int64("id", id).Msg(err.Error())
		return
	}
	l.Error().Err(err).Str("op", op).Int64("id", id).Msgf("%s failed", op)
}
