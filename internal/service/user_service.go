package service

import (
	"context"
	"strings"

	"github.com/shopfloor/api/internal/ledger"
	"github.com/shopfloor/api/internal/model"
)

// UserService manages shop-floor users.
type UserService struct {
	core
}

// NewUserService creates a new user service
func NewUserService(store *ledger.Store, opts ...Option) *UserService {
	return &UserService{core: newCore(store, opts)}
}

// CreateUser adds a user. An id is generated when none is supplied.
func (s *UserService) CreateUser(ctx context.Context, req *model.CreateUserRequest) (model.User, error) {
	const op = "CreateUser"
	if strings.TrimSpace(req.Name) == "" {
		return model.User{}, invalidArgument(op, "name is required")
	}
	if !req.Role.Valid() {
		return model.User{}, invalidArgument(op, "unknown role %q", req.Role)
	}

	u := model.User{
		ID:     strings.TrimSpace(req.ID),
		Name:   strings.TrimSpace(req.Name),
		Role:   req.Role,
		Avatar: req.Avatar,
	}
	if u.ID == "" {
		u.ID = newID("USR")
	}
	if err := s.store.InsertUser(u); err != nil {
		return model.User{}, fromLedger(op, err)
	}
	return u, nil
}

// GetUser returns one user.
func (s *UserService) GetUser(ctx context.Context, userID string) (model.User, error) {
	u, ok := s.store.GetUser(userID)
	if !ok {
		return model.User{}, notFound("GetUser", "user %s not found", userID)
	}
	return u, nil
}

// ListUsers returns all users.
func (s *UserService) ListUsers(ctx context.Context) []model.User {
	return s.store.ListUsers()
}
