// Package auth resolves login credentials to a user. Email-shaped
// identifiers are checked by the backend; everything else is checked
// against a local credential table.
package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"nexus-hvac-client/internal/logger"
	"nexus-hvac-client/internal/user/model"
	appErrors "nexus-hvac-client/pkg/errors"
	"nexus-hvac-client/pkg/utils"
	"nexus-hvac-client/pkg/validate"
)

// CredentialDirectory answers whether a credential pair is valid and, if so,
// who it belongs to. Any rejection is ErrInvalidCredentials.
type CredentialDirectory interface {
	Authenticate(ctx context.Context, identifier, secret string) (*model.User, error)
}

type route struct {
	name  string
	match func(identifier string) bool
	dir   CredentialDirectory
}

// Resolver picks the first directory whose predicate matches the
// identifier. It never falls through to a later directory after a match.
type Resolver struct {
	routes []route
	log    *zap.Logger
}

func NewResolver(remote, static CredentialDirectory) *Resolver {
	r := &Resolver{log: logger.Named("auth")}
	if remote != nil {
		r.routes = append(r.routes, route{name: "remote", match: utils.IsEmailShaped, dir: remote})
	}
	if static != nil {
		r.routes = append(r.routes, route{name: "static", match: func(string) bool { return true }, dir: static})
	}
	return r
}

func (r *Resolver) Authenticate(ctx context.Context, identifier, secret string) (*model.User, error) {
	req := model.LoginRequest{
		Identifier: utils.SanitizeIdentifier(identifier),
		Secret:     secret,
	}
	if err := validate.Struct(&req); err != nil || strings.TrimSpace(req.Secret) == "" {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Please fill in all fields", appErrors.ErrInvalidInput)
	}

	for _, rt := range r.routes {
		if !rt.match(req.Identifier) {
			continue
		}
		user, err := rt.dir.Authenticate(ctx, req.Identifier, req.Secret)
		if err != nil {
			r.log.Debug("Login rejected", zap.String("directory", rt.name), zap.Error(err))
			return nil, err
		}
		return user, nil
	}
	return nil, appErrors.ErrInvalidCredentials
}
