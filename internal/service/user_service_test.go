package service

import (
	"context"
	"testing"

	"github.com/shopfloor/api/internal/model"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.CreateUser(ctx, &model.CreateUserRequest{Name: " Quinn ", Role: model.RoleQuality})
	require.NoError(t, err)
	require.Regexp(t, `^USR-[0-9A-F]{16}$`, u.ID)
	require.Equal(t, "Quinn", u.Name)

	got, err := f.users.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u, got)
	require.Len(t, f.users.ListUsers(ctx), 4)

	_, err = f.users.CreateUser(ctx, &model.CreateUserRequest{ID: "OP-1", Name: "Dup", Role: model.RoleOperator})
	require.ErrorIs(t, err, ErrConflict)
	_, err = f.users.CreateUser(ctx, &model.CreateUserRequest{Name: "X", Role: "JANITOR"})
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = f.users.GetUser(ctx, "nobody")
	require.ErrorIs(t, err, ErrNotFound)
}
