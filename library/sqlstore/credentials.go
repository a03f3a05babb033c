package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"library-console/library"
)

type credentialRow struct {
	ID           int64  `db:"id"`
	Identity     string `db:"identity"`
	Name         string `db:"name"`
	PasswordHash string `db:"password_hash"`
}

// FindByIdentity looks up an administrator by username or a member by email.
func (s *Store) FindByIdentity(ctx context.Context, role library.Role, identity string) (*library.Credential, error) {
	var ds *goqu.SelectDataset
	switch role {
	case library.RoleAdministrator:
		ds = s.from("administrators").
			Select("id", goqu.C("username").As("identity"), "name", "password_hash").
			Where(goqu.C("username").Eq(identity))
	case library.RoleMember:
		ds = s.from("members").
			Select("id", goqu.C("email").As("identity"), "name", "password_hash").
			Where(goqu.C("email").Eq(identity))
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}

	var row credentialRow
	if err := s.get(ctx, s.db, &row, ds); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &library.Credential{
		ID:           row.ID,
		Role:         role,
		Identity:     row.Identity,
		Name:         row.Name,
		PasswordHash: row.PasswordHash,
	}, nil
}

func (s *Store) InsertAdministrator(ctx context.Context, a *library.Administrator) (int64, error) {
	ds := s.insert("administrators").Rows(goqu.Record{
		"username":      a.Username,
		"name":          a.Name,
		"email":         a.Email,
		"password_hash": a.PasswordHash,
	})
	id, err := s.insertReturningID(ctx, s.db, ds)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("username %q: %w", a.Username, library.ErrDuplicateIdentity)
		}
		return 0, fmt.Errorf("insert administrator: %w", err)
	}
	a.ID = id
	return id, nil
}

func (s *Store) InsertMember(ctx context.Context, m *library.Member) (int64, error) {
	ds := s.insert("members").Rows(goqu.Record{
		"name":          m.Name,
		"email":         m.Email,
		"password_hash": m.PasswordHash,
		"phone":         m.Phone,
		"address":       m.Address,
	})
	id, err := s.insertReturningID(ctx, s.db, ds)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("email %q: %w", m.Email, library.ErrDuplicateIdentity)
		}
		return 0, fmt.Errorf("insert member: %w", err)
	}
	m.ID = id
	return id, nil
}

// ListMembers returns all members ordered by name. Password hashes are not read.
func (s *Store) ListMembers(ctx context.Context) ([]*library.Member, error) {
	ds := s.from("members").
		Select(
			"id", "name", "email",
			goqu.COALESCE(goqu.C("phone"), "").As("phone"),
			goqu.COALESCE(goqu.C("address"), "").As("address"),
		).
		Order(goqu.C("name").Asc(), goqu.C("id").Asc())

	var members []*library.Member
	if err := s.selectAll(ctx, s.db, &members, ds); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}
