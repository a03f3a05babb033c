package library

import (
	"context"
	"fmt"
	"strings"
)

// Authenticator verifies an identity and secret against the credential store.
// It holds no session state; callers keep the returned Credential.
type Authenticator struct {
	creds CredentialStore
}

func NewAuthenticator(creds CredentialStore) *Authenticator {
	return &Authenticator{creds: creds}
}

// Authenticate tries the administrator identity space first and the member
// space second. Any combination of unknown identity and wrong secret yields
// ErrAuthFailure, so callers cannot tell which stage rejected them.
func (a *Authenticator) Authenticate(ctx context.Context, identity, secret string) (*Credential, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" || secret == "" {
		return nil, ErrAuthFailure
	}

	for _, role := range []Role{RoleAdministrator, RoleMember} {
		cred, err := a.creds.FindByIdentity(ctx, role, identity)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", role, err)
		}
		if cred != nil && VerifyPassword(secret, cred.PasswordHash) {
			return cred, nil
		}
	}
	return nil, ErrAuthFailure
}
