package auth

import (
	"context"

	"go.uber.org/zap"

	"nexus-hvac-client/internal/logger"
	"nexus-hvac-client/internal/user/model"
	appErrors "nexus-hvac-client/pkg/errors"
	"nexus-hvac-client/pkg/validate"
)

// CustomerLoginAPI is the backend call behind RemoteProvider.
// user/repository.UserRepository implements it.
type CustomerLoginAPI interface {
	CustomerLogin(ctx context.Context, email, password string) (*model.CustomerLoginResponse, error)
}

// RemoteProvider checks customer credentials against the backend and
// returns its user record unchanged. A record the session store could not
// reload (no id, unknown role) is rejected.
type RemoteProvider struct {
	api CustomerLoginAPI
	log *zap.Logger
}

func NewRemoteProvider(api CustomerLoginAPI) *RemoteProvider {
	return &RemoteProvider{api: api, log: logger.Named("auth.remote")}
}

func (p *RemoteProvider) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	resp, err := p.api.CustomerLogin(ctx, email, password)
	if err != nil {
		p.log.Warn("Customer login failed", zap.Error(err))
		return nil, appErrors.ErrInvalidCredentials
	}
	if !resp.Success || resp.User == nil {
		p.log.Info("Customer login rejected", zap.String("message", resp.Message))
		return nil, appErrors.ErrInvalidCredentials
	}
	if err := validate.Struct(resp.User); err != nil {
		p.log.Warn("Customer login returned an incomplete user", zap.Error(err))
		return nil, appErrors.ErrInvalidCredentials
	}
	return resp.User, nil
}
