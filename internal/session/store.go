package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"nexus-hvac-client/internal/kv"
	"nexus-hvac-client/internal/logger"
	"nexus-hvac-client/internal/user/model"
	appErrors "nexus-hvac-client/pkg/errors"
	"nexus-hvac-client/pkg/validate"
)

const DefaultKey = "nexus_user"

// Store persists the single logged-in user under one key. There is no
// expiry: a saved session lives until Clear.
type Store struct {
	kv  kv.Store
	key string
	log *zap.Logger
}

func NewStore(backend kv.Store, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: backend, key: key, log: logger.Named("session")}
}

// Load returns the persisted user, or nil when there is none. A record
// that cannot be decoded is treated as absent.
func (s *Store) Load(ctx context.Context) (*model.User, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	user, err := decode(raw)
	if err != nil {
		s.log.Warn("Ignoring stored session", zap.String("key", s.key), zap.Error(err))
		return nil, nil
	}
	return user, nil
}

func (s *Store) Save(ctx context.Context, user *model.User) error {
	if user == nil {
		return appErrors.ErrInvalidInput
	}
	// Load would discard anything that fails validation.
	if err := validate.Struct(user); err != nil {
		return fmt.Errorf("save session: %w: %v", appErrors.ErrInvalidInput, err)
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func decode(raw string) (*model.User, error) {
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrMalformedSession, err)
	}
	if err := validate.Struct(&user); err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrMalformedSession, err)
	}
	return &user, nil
}
