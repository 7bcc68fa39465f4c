package auth

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/callsys/callboard/internal/repository/board"
	boardredis "github.com/callsys/callboard/internal/repository/board/redis"
)

type auditRecorder struct {
	mu      sync.Mutex
	entries []string
}

func (a *auditRecorder) RecordAdminLog(_ context.Context, actor, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.entries = append(a.entries, "("+actor+") "+message)
}

func newTestService(t *testing.T) (*service, *auditRecorder) {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo, err := boardredis.NewRepo(context.Background(), rc, logger, nil)
	require.NoError(t, err)

	audit := &auditRecorder{}
	s := NewService(repo, audit, logger, &Config{
		Secret:     "test-secret",
		BcryptCost: bcrypt.MinCost,
	})

	require.NoError(t, s.BootstrapSuperAdmin(context.Background(), " Root ", "rootpassword"))

	return s, audit
}

func TestBootstrapAndAuthenticate(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	identity, err := s.Authenticate(ctx, Credentials{Username: "ROOT", Password: "rootpassword"})
	require.NoError(t, err)
	assert.Equal(t, Identity{Username: "root", Role: board.RoleSuperAdmin}, identity)

	_, err = s.Authenticate(ctx, Credentials{Username: "root", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, Credentials{Username: "nobody", Password: "rootpassword"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestBootstrapKeepsExistingPassword(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.BootstrapSuperAdmin(ctx, "root", "anotherpassword"))

	_, err := s.Authenticate(ctx, Credentials{Username: "root", Password: "rootpassword"})
	assert.NoError(t, err)
}

func TestBootstrapRepairsMissingHash(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.repo.SetUser(ctx, board.User{Username: "root", Role: board.RoleAdmin}))
	require.NoError(t, s.BootstrapSuperAdmin(ctx, "root", "rootpassword"))

	identity, err := s.Authenticate(ctx, Credentials{Username: "root", Password: "rootpassword"})
	require.NoError(t, err)
	assert.Equal(t, board.RoleSuperAdmin, identity.Role)
}

func TestAuthorize(t *testing.T) {
	s, _ := newTestService(t)

	admin := Identity{Username: "a", Role: board.RoleAdmin}
	super := Identity{Username: "s", Role: board.RoleSuperAdmin}
	anonymous := Identity{}

	assert.True(t, s.Authorize(admin, ActionOperateBoard))
	assert.False(t, s.Authorize(admin, ActionManageUsers))
	assert.False(t, s.Authorize(admin, ActionManageLayout))
	assert.True(t, s.Authorize(super, ActionManageUsers))
	assert.True(t, s.Authorize(super, ActionOperateBoard))
	assert.False(t, s.Authorize(anonymous, ActionOperateBoard))
}

func TestTokenRoundTrip(t *testing.T) {
	s, _ := newTestService(t)

	token, expiresAt, err := s.IssueToken(Identity{Username: "root", Role: board.RoleSuperAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultSessionTTL), expiresAt, time.Minute)

	identity, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{Username: "root", Role: board.RoleSuperAdmin}, identity)
}

func TestParseTokenRejectsForgedAndExpired(t *testing.T) {
	s, _ := newTestService(t)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		usernameKey: "root",
		roleKey:     "superadmin",
		"exp":       jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = s.ParseToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		usernameKey: "root",
		roleKey:     "superadmin",
		"exp":       jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = s.ParseToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.ParseToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserManagement(t *testing.T) {
	s, audit := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, &CreateUserParams{Username: "alice", Password: "short", Role: board.RoleAdmin, Actor: "root"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.CreateUser(ctx, &CreateUserParams{Username: "alice", Password: "longenough", Role: "owner", Actor: "root"})
	assert.ErrorIs(t, err, ErrValidation)

	created, err := s.CreateUser(ctx, &CreateUserParams{Username: " Alice ", Password: "longenough", Role: board.RoleAdmin, Actor: "root"})
	require.NoError(t, err)
	assert.Equal(t, Identity{Username: "alice", Role: board.RoleAdmin}, created)

	_, err = s.CreateUser(ctx, &CreateUserParams{Username: "alice", Password: "longenough", Role: board.RoleAdmin, Actor: "root"})
	assert.ErrorIs(t, err, board.ErrUserExists)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Identity{
		{Username: "alice", Role: board.RoleAdmin},
		{Username: "root", Role: board.RoleSuperAdmin},
	}, users)

	require.NoError(t, s.UpdatePassword(ctx, &UpdatePasswordParams{Username: "alice", NewPassword: "newpassword", Actor: "root"}))
	_, err = s.Authenticate(ctx, Credentials{Username: "alice", Password: "newpassword"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateRole(ctx, &UpdateRoleParams{Username: "alice", NewRole: board.RoleSuperAdmin, Actor: "root"}))
	identity, err := s.Authenticate(ctx, Credentials{Username: "alice", Password: "newpassword"})
	require.NoError(t, err)
	assert.Equal(t, board.RoleSuperAdmin, identity.Role)

	err = s.UpdateRole(ctx, &UpdateRoleParams{Username: "root", NewRole: board.RoleAdmin, Actor: "root"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	err = s.DeleteUser(ctx, &DeleteUserParams{Username: "root", Actor: "root"})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, s.DeleteUser(ctx, &DeleteUserParams{Username: "alice", Actor: "root"}))
	err = s.DeleteUser(ctx, &DeleteUserParams{Username: "alice", Actor: "root"})
	assert.ErrorIs(t, err, board.ErrUserNotFound)

	err = s.UpdatePassword(ctx, &UpdatePasswordParams{Username: "ghost", NewPassword: "newpassword", Actor: "root"})
	assert.ErrorIs(t, err, board.ErrUserNotFound)

	assert.Equal(t, []string{
		"(root) user alice created (admin)",
		"(root) password of user alice reset",
		"(root) role of user alice changed to superadmin",
		"(root) user alice deleted",
	}, audit.entries)
}
