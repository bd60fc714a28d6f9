package service

import (
	"context"

	"go.uber.org/zap"

	"nexus-hvac-client/internal/logger"
	"nexus-hvac-client/internal/user/model"
	appErrors "nexus-hvac-client/pkg/errors"
	"nexus-hvac-client/pkg/utils"
	"nexus-hvac-client/pkg/validate"
)

// Profile is what the profile screen shows.
type Profile struct {
	Name        string
	Initial     string
	Role        string
	Scope       string
	Email       string
	Building    string
	DeviceOwned string
}

// AccountService backs the profile screen. The backend has no account
// endpoints, so password changes are validated locally only.
type AccountService struct {
	log *zap.Logger
}

func NewAccountService() *AccountService {
	return &AccountService{log: logger.Named("account")}
}

func (s *AccountService) Profile(user *model.User) (*Profile, error) {
	if user == nil {
		return nil, appErrors.ErrNoSession
	}
	return &Profile{
		Name:        user.Name,
		Initial:     user.Initial(),
		Role:        user.DisplayRole(),
		Scope:       user.ScopeLabel(),
		Email:       user.Email,
		Building:    user.BuildingName,
		DeviceOwned: user.AssignedDevice,
	}, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, user *model.User, request *model.ChangePasswordRequest) error {
	if user == nil {
		return appErrors.ErrNoSession
	}
	if request.CurrentPassword == "" || request.NewPassword == "" || request.ConfirmPassword == "" {
		return appErrors.NewAppError("VALIDATION_ERROR", "Please fill all fields", appErrors.ErrInvalidInput)
	}
	if err := validate.Struct(request); err != nil {
		return appErrors.NewAppError("VALIDATION_ERROR", "New passwords do not match", err)
	}
	if err := utils.ValidatePassword(request.NewPassword); err != nil {
		return appErrors.NewAppError("WEAK_PASSWORD", err.Error(), nil)
	}

	s.log.Info("Password change accepted locally", zap.String("user_id", user.ID))
	return nil
}
