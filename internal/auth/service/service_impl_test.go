package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/smallbiznis/taskora/internal/auth/domain"
	authrepo "github.com/smallbiznis/taskora/internal/auth/repository"
	authservice "github.com/smallbiznis/taskora/internal/auth/service"
	cartdomain "github.com/smallbiznis/taskora/internal/cart/domain"
	cartrepo "github.com/smallbiznis/taskora/internal/cart/repository"
	"github.com/smallbiznis/taskora/internal/config"
	userdomain "github.com/smallbiznis/taskora/internal/user/domain"
	userrepo "github.com/smallbiznis/taskora/internal/user/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (authdomain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&authdomain.Session{},
		&cartdomain.Cart{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := authservice.NewService(authservice.Params{
		Config:   config.Config{SessionTTLHours: 24},
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     authrepo.Provide(),
		UserRepo: userrepo.Provide(),
		CartRepo: cartrepo.Provide(),
	})
	return svc, db
}

func register(t *testing.T, svc authdomain.Service, email string, role userdomain.Role) *userdomain.User {
	t.Helper()

	user, err := svc.Register(context.Background(), authdomain.RegisterRequest{
		Email:       email,
		Password:    "password123",
		DisplayName: "Someone",
		Role:        role,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterLoginResolve(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	user := register(t, svc, "Client@Example.com", userdomain.RoleClient)
	require.Equal(t, "client@example.com", user.Email)
	require.NotEqual(t, "password123", user.PasswordHash)

	result, err := svc.Login(ctx, authdomain.LoginRequest{
		Email:    "client@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.SessionID)
	require.True(t, result.ExpiresAt.After(time.Now()))

	principal, err := svc.Resolve(ctx, result.SessionID)
	require.NoError(t, err)
	require.Equal(t, user.ID, principal.UserID)
	require.Equal(t, userdomain.RoleClient, principal.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	register(t, svc, "client@example.com", userdomain.RoleClient)

	_, err := svc.Register(ctx, authdomain.RegisterRequest{
		Email:       "CLIENT@example.com",
		Password:    "password123",
		DisplayName: "Again",
		Role:        userdomain.RoleContractor,
	})
	require.ErrorIs(t, err, authdomain.ErrUserExists)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	_, err := svc.Register(ctx, authdomain.RegisterRequest{
		Email:       "admin@example.com",
		Password:    "password123",
		DisplayName: "Admin",
		Role:        "admin",
	})
	require.ErrorIs(t, err, authdomain.ErrInvalidRequest)
}

func TestLoginWrongCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	register(t, svc, "client@example.com", userdomain.RoleClient)

	_, err := svc.Login(ctx, authdomain.LoginRequest{
		Email:    "client@example.com",
		Password: "wrong-password",
	})
	require.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, authdomain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	require.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
}

func TestLogoutDeletesSessionAndCart(t *testing.T) {
	ctx := context.Background()
	svc, db := setup(t)

	user := register(t, svc, "client@example.com", userdomain.RoleClient)

	result, err := svc.Login(ctx, authdomain.LoginRequest{
		Email:    "client@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	require.NoError(t, db.Create(&cartdomain.Cart{
		ID:            user.ID,
		SessionCartID: "cart-cookie",
	}).Error)

	require.NoError(t, svc.Logout(ctx, result.SessionID, "cart-cookie"))

	_, err = svc.Resolve(ctx, result.SessionID)
	require.ErrorIs(t, err, authdomain.ErrInvalidSession)

	var carts int64
	require.NoError(t, db.Model(&cartdomain.Cart{}).Count(&carts).Error)
	require.Zero(t, carts)
}

func TestResolveExpiredSession(t *testing.T) {
	ctx := context.Background()
	svc, db := setup(t)

	user := register(t, svc, "client@example.com", userdomain.RoleClient)

	session := &authdomain.Session{
		ID:        "expired-session",
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, db.Create(session).Error)

	_, err := svc.Resolve(ctx, "expired-session")
	require.ErrorIs(t, err, authdomain.ErrSessionExpired)

	// The stale row is cleaned up on the way out.
	var sessions int64
	require.NoError(t, db.Model(&authdomain.Session{}).Count(&sessions).Error)
	require.Zero(t, sessions)
}

func TestResolveUnknownSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	_, err := svc.Resolve(ctx, "")
	require.ErrorIs(t, err, authdomain.ErrInvalidSession)

	_, err = svc.Resolve(ctx, "never-issued")
	require.ErrorIs(t, err, authdomain.ErrInvalidSession)
}
