package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"nexus-hvac-client/internal/user/model"
	appErrors "nexus-hvac-client/pkg/errors"
	"nexus-hvac-client/pkg/utils"
)

// Seed is a plaintext credential fixture. Secrets are hashed when the table
// is built and never kept in clear.
type Seed struct {
	Identifier string
	Secret     string
	Role       model.Role
	CompanyID  string
	Name       string
}

func DefaultSeeds() []Seed {
	return []Seed{
		{Identifier: "admin", Secret: "supersecret", Role: model.RoleAdmin, Name: "Administrator"},
		{Identifier: "HVAC_A", Secret: "manager", Role: model.RoleTechnician, CompanyID: "HVAC_A", Name: "HVAC_A Manager"},
		{Identifier: "HVAC_B", Secret: "manager", Role: model.RoleTechnician, CompanyID: "HVAC_B", Name: "HVAC_B Manager"},
	}
}

// ParseStaticCredentials reads entries of the form
// id:secret:role[:company] separated by ';'.
func ParseStaticCredentials(s string) ([]Seed, error) {
	var seeds []Seed
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 3 || len(parts) > 4 {
			return nil, fmt.Errorf("static credential %q: want id:secret:role[:company]", entry)
		}
		seed := Seed{
			Identifier: strings.TrimSpace(parts[0]),
			Secret:     parts[1],
			Role:       model.Role(strings.TrimSpace(parts[2])),
		}
		if len(parts) == 4 {
			seed.CompanyID = strings.TrimSpace(parts[3])
		}
		if seed.Identifier == "" || seed.Secret == "" {
			return nil, fmt.Errorf("static credential %q: empty identifier or secret", entry)
		}
		if !seed.Role.Valid() {
			return nil, fmt.Errorf("static credential %q: %w", entry, appErrors.ErrUnknownRole)
		}
		if !seed.Role.Unscoped() && seed.CompanyID == "" {
			seed.CompanyID = seed.Identifier
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

type staticEntry struct {
	identifier string
	secretHash string
	user       model.User
}

// StaticTableProvider matches identifiers case-insensitively and secrets
// exactly.
type StaticTableProvider struct {
	entries []staticEntry
}

func NewStaticTableProvider(seeds []Seed) (*StaticTableProvider, error) {
	return newStaticTableProvider(seeds, bcrypt.DefaultCost)
}

func newStaticTableProvider(seeds []Seed, cost int) (*StaticTableProvider, error) {
	p := &StaticTableProvider{entries: make([]staticEntry, 0, len(seeds))}
	for _, s := range seeds {
		hash, err := utils.HashSecretCost(s.Secret, cost)
		if err != nil {
			return nil, fmt.Errorf("hash secret for %q: %w", s.Identifier, err)
		}
		name := s.Name
		if name == "" {
			name = s.Identifier
		}
		p.entries = append(p.entries, staticEntry{
			identifier: s.Identifier,
			secretHash: hash,
			user: model.User{
				ID:        s.Identifier,
				Name:      name,
				Role:      s.Role,
				CompanyID: s.CompanyID,
			},
		})
	}
	return p, nil
}

func (p *StaticTableProvider) Authenticate(ctx context.Context, identifier, secret string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	for _, e := range p.entries {
		if !strings.EqualFold(e.identifier, identifier) {
			continue
		}
		if !utils.CheckSecret(e.secretHash, secret) {
			return nil, appErrors.ErrInvalidCredentials
		}
		user := e.user
		return &user, nil
	}
	return nil, appErrors.ErrInvalidCredentials
}
