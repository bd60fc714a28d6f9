package repository

import (
	"context"

	"nexus-hvac-client/internal/apiclient"
	"nexus-hvac-client/internal/user/model"
)

// UserRepository talks to the customer account endpoints.
type UserRepository struct {
	client *apiclient.Client
}

func NewUserRepository(client *apiclient.Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) CustomerLogin(ctx context.Context, email, password string) (*model.CustomerLoginResponse, error) {
	var resp model.CustomerLoginResponse
	err := r.client.Post(ctx, "/api/customer/login", &model.CustomerLoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
