package library

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHA256Format(t *testing.T) {
	h, err := PasswordHasher{Scheme: SchemeSHA256}.Hash("password")
	require.NoError(t, err)
	assert.Equal(t, "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8", h)

	assert.True(t, VerifyPassword("password", h))
	assert.True(t, VerifyPassword("password", strings.ToUpper(h)), "digest comparison ignores case")
	assert.False(t, VerifyPassword("Password", h))
	assert.False(t, VerifyPassword("password", h[:10]))
}

func TestBcryptFormat(t *testing.T) {
	h, err := PasswordHasher{Scheme: SchemeBcrypt, Cost: 4}.Hash("s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "$2"))
	assert.True(t, VerifyPassword("s3cret", h))
	assert.False(t, VerifyPassword("s3cre", h))
}

func TestUnknownScheme(t *testing.T) {
	_, err := PasswordHasher{Scheme: "md5"}.Hash("x")
	assert.Error(t, err)
}

type failingCreds struct{ CredentialStore }

func (failingCreds) FindByIdentity(context.Context, Role, string) (*Credential, error) {
	return nil, errors.New("disk on fire")
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	adminID := store.seedAdmin("admin", "adminpw")
	memberID := store.seedMember("Alice", "alice@example.com", "alicepw")
	// A member whose email collides with an admin username: admins win.
	store.seedMember("Shadow", "admin", "shadowpw")

	auth := NewAuthenticator(store)

	tests := []struct {
		name     string
		identity string
		secret   string
		wantRole Role
		wantID   int64
		wantErr  error
	}{
		{"administrator", "admin", "adminpw", RoleAdministrator, adminID, nil},
		{"member", "alice@example.com", "alicepw", RoleMember, memberID, nil},
		{"identity is trimmed", "  alice@example.com ", "alicepw", RoleMember, memberID, nil},
		{"wrong secret", "alice@example.com", "nope", "", 0, ErrAuthFailure},
		{"unknown identity", "ghost@example.com", "alicepw", "", 0, ErrAuthFailure},
		{"empty identity", "", "alicepw", "", 0, ErrAuthFailure},
		{"empty secret", "admin", "", "", 0, ErrAuthFailure},
		{"member fallback after admin mismatch", "admin", "shadowpw", RoleMember, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred, err := auth.Authenticate(ctx, tt.identity, tt.secret)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, cred)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, cred.Role)
			if tt.wantID != 0 {
				assert.Equal(t, tt.wantID, cred.ID)
			}
		})
	}
}

func TestAuthenticateStoreError(t *testing.T) {
	auth := NewAuthenticator(failingCreds{})
	_, err := auth.Authenticate(context.Background(), "admin", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthFailure)
	assert.Contains(t, err.Error(), "disk on fire")
}
