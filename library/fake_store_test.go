package library

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// memStore is an in-memory Store. InTx holds the mutex for the whole unit of
// work and restores a snapshot when fn fails.
type memStore struct {
	mu      sync.Mutex
	admins  []*Administrator
	members []*Member
	books   map[int64]*Book
	loans   map[int64]*Loan
	nextID  int64

	// failNext, when set, is returned by the next InTx before fn runs.
	failNext error
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{books: map[int64]*Book{}, loans: map[int64]*Loan{}}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) FindByIdentity(_ context.Context, role Role, identity string) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch role {
	case RoleAdministrator:
		for _, a := range s.admins {
			if a.Username == identity {
				return &Credential{ID: a.ID, Role: role, Identity: a.Username, Name: a.Name, PasswordHash: a.PasswordHash}, nil
			}
		}
	case RoleMember:
		for _, m := range s.members {
			if m.Email == identity {
				return &Credential{ID: m.ID, Role: role, Identity: m.Email, Name: m.Name, PasswordHash: m.PasswordHash}, nil
			}
		}
	}
	return nil, nil
}

func (s *memStore) InsertAdministrator(_ context.Context, a *Administrator) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.admins {
		if x.Username == a.Username {
			return 0, ErrDuplicateIdentity
		}
	}
	cp := *a
	cp.ID = s.id()
	s.admins = append(s.admins, &cp)
	return cp.ID, nil
}

func (s *memStore) InsertMember(_ context.Context, m *Member) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, x := range s.members {
		if x.Email == m.Email {
			return 0, ErrDuplicateIdentity
		}
	}
	cp := *m
	cp.ID = s.id()
	s.members = append(s.members, &cp)
	return cp.ID, nil
}

func (s *memStore) ListMembers(context.Context) ([]*Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Member, 0, len(s.members))
	for _, m := range s.members {
		cp := *m
		cp.PasswordHash = ""
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) InsertBook(_ context.Context, b *Book) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	cp.ID = s.id()
	s.books[cp.ID] = &cp
	return cp.ID, nil
}

func (s *memStore) ListBooks(context.Context) ([]*Book, error) {
	return s.listBooks(func(*Book) bool { return true }), nil
}

func (s *memStore) ListAvailableBooks(context.Context) ([]*Book, error) {
	return s.listBooks(func(b *Book) bool { return b.AvailableCount > 0 }), nil
}

func (s *memStore) listBooks(keep func(*Book) bool) []*Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Book
	for _, b := range s.books {
		if keep(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *memStore) ListLoans(context.Context) ([]*LoanRecord, error) {
	return s.listLoans(func(*Loan) bool { return true }), nil
}

func (s *memStore) ListActiveLoans(_ context.Context, memberID int64) ([]*LoanRecord, error) {
	return s.listLoans(func(l *Loan) bool { return l.MemberID == memberID && l.State == LoanActive }), nil
}

func (s *memStore) listLoans(keep func(*Loan) bool) []*LoanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*LoanRecord
	for _, l := range s.loans {
		if !keep(l) {
			continue
		}
		rec := &LoanRecord{Loan: *l}
		if b := s.books[l.BookID]; b != nil {
			rec.BookTitle, rec.BookAuthor = b.Title, b.Author
		}
		for _, m := range s.members {
			if m.ID == l.MemberID {
				rec.MemberName = m.Name
			}
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LoanDate.Equal(out[j].LoanDate) {
			return out[i].LoanDate.After(out[j].LoanDate)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *memStore) InTx(ctx context.Context, fn func(ctx context.Context, tx LoanTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}

	books := make(map[int64]Book, len(s.books))
	for id, b := range s.books {
		books[id] = *b
	}
	loans := make(map[int64]Loan, len(s.loans))
	for id, l := range s.loans {
		loans[id] = *l
	}
	nextID := s.nextID

	if err := fn(ctx, memTx{s}); err != nil {
		s.books = map[int64]*Book{}
		for id, b := range books {
			b := b
			s.books[id] = &b
		}
		s.loans = map[int64]*Loan{}
		for id, l := range loans {
			l := l
			s.loans[id] = &l
		}
		s.nextID = nextID
		return err
	}
	return nil
}

// memTx runs with memStore.mu already held.
type memTx struct{ s *memStore }

func (t memTx) LockBook(_ context.Context, bookID int64) (*Book, error) {
	b, ok := t.s.books[bookID]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (t memTx) DecrementAvailability(_ context.Context, bookID int64) error {
	b, ok := t.s.books[bookID]
	if !ok || b.AvailableCount <= 0 {
		return ErrUnavailable
	}
	b.AvailableCount--
	return nil
}

func (t memTx) IncrementAvailability(_ context.Context, bookID int64) error {
	b, ok := t.s.books[bookID]
	if !ok {
		return ErrNotFound
	}
	b.AvailableCount++
	return nil
}

func (t memTx) CreateLoan(_ context.Context, bookID, memberID int64, loanDate time.Time) (int64, error) {
	id := t.s.id()
	t.s.loans[id] = &Loan{ID: id, BookID: bookID, MemberID: memberID, LoanDate: loanDate, State: LoanActive}
	return id, nil
}

func (t memTx) LockActiveLoan(_ context.Context, loanID, memberID int64) (*Loan, error) {
	l, ok := t.s.loans[loanID]
	if !ok || l.MemberID != memberID || l.State != LoanActive {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (t memTx) CloseLoan(_ context.Context, loanID int64, returnDate time.Time) error {
	l, ok := t.s.loans[loanID]
	if !ok || l.State != LoanActive {
		return ErrNotFound
	}
	rd := returnDate
	l.State, l.ReturnDate = LoanReturned, &rd
	return nil
}

// available returns a book's counter, or -1 if it does not exist.
func (s *memStore) available(bookID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.books[bookID]; ok {
		return b.AvailableCount
	}
	return -1
}

func (s *memStore) loanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loans)
}

func (s *memStore) seedBook(title string, copies int) int64 {
	id, _ := s.InsertBook(context.Background(), &Book{Title: title, Author: "A. " + strings.Fields(title)[0], AvailableCount: copies})
	return id
}

func (s *memStore) seedMember(name, email, secret string) int64 {
	id, _ := s.InsertMember(context.Background(), &Member{Name: name, Email: email, PasswordHash: sha256Hex(secret)})
	return id
}

func (s *memStore) seedAdmin(username, secret string) int64 {
	id, _ := s.InsertAdministrator(context.Background(), &Administrator{Username: username, Name: "Admin " + username, PasswordHash: sha256Hex(secret)})
	return id
}
