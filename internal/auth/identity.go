// Package auth verifies HTTP Basic credentials and hands the verified identity
// name to downstream handlers. Handlers never see passwords or roles.
package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const OwnerRole = "CARD-OWNER"

var ErrInvalidCredentials = errors.New("invalid credentials")

type Identity struct {
	Name  string
	Roles []string
}

func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

type IdentityProvider interface {
	Authenticate(ctx context.Context, username, password string) (Identity, error)
}

// UserSpec is a user as configured, with a plaintext password.
type UserSpec struct {
	Name     string
	Password string
	Roles    []string
}

// DefaultUsers are the accounts available when none are configured.
func DefaultUsers() []UserSpec {
	return []UserSpec{
		{Name: "LeudiX1", Password: "leo123", Roles: []string{OwnerRole}},
		{Name: "Sarah", Password: "sara123", Roles: []string{OwnerRole}},
		{Name: "Lucy2", Password: "lucy123", Roles: []string{"NON-OWNER"}},
	}
}

// ParseUsers reads "name:password:ROLE[|ROLE],name2:..." entries.
func ParseUsers(raw string) ([]UserSpec, error) {
	var specs []UserSpec
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("malformed user entry %q: want name:password:ROLE[|ROLE]", entry)
		}
		var roles []string
		for _, role := range strings.Split(parts[2], "|") {
			if role = strings.TrimSpace(role); role != "" {
				roles = append(roles, role)
			}
		}
		specs = append(specs, UserSpec{Name: parts[0], Password: parts[1], Roles: roles})
	}
	if len(specs) == 0 {
		return nil, errors.New("no users configured")
	}
	return specs, nil
}

type storedUser struct {
	hash  []byte
	roles []string
}

// InMemoryIdentityProvider checks passwords against bcrypt hashes held in memory.
type InMemoryIdentityProvider struct {
	users map[string]storedUser
	// compared against when the user is unknown, so both failures cost the same
	decoy []byte
}

func NewInMemoryIdentityProvider(specs []UserSpec, cost int) (*InMemoryIdentityProvider, error) {
	p := &InMemoryIdentityProvider{users: make(map[string]storedUser, len(specs))}
	for _, spec := range specs {
		if _, dup := p.users[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate user %q", spec.Name)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(spec.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %q: %w", spec.Name, err)
		}
		p.users[spec.Name] = storedUser{hash: hash, roles: slices.Clone(spec.Roles)}
	}
	decoy, err := bcrypt.GenerateFromPassword([]byte("decoy"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash decoy password: %w", err)
	}
	p.decoy = decoy
	return p, nil
}

func (p *InMemoryIdentityProvider) Authenticate(_ context.Context, username, password string) (Identity, error) {
	user, ok := p.users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(p.decoy, []byte(password))
		return Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.hash, []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{Name: username, Roles: slices.Clone(user.roles)}, nil
}
