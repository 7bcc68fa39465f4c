package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/callsys/callboard/internal/repository/board"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidToken       = errors.New("invalid token")
	ErrValidation         = errors.New("validation error")
)

type Action string

const (
	ActionOperateBoard Action = "board:operate"
	ActionManageUsers  Action = "users:manage"
	ActionManageLayout Action = "layout:manage"
)

const DefaultSessionTTL = 8 * time.Hour

type Credentials struct {
	Username string
	Password string
}

type Identity struct {
	Username string     `json:"username"`
	Role     board.Role `json:"role"`
}

// Authenticator is the boundary the transport layer depends on.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (Identity, error)
	Authorize(identity Identity, action Action) bool
}

type iUserRepo interface {
	GetUser(ctx context.Context, username string) (board.User, error)
	CreateUser(ctx context.Context, user board.User) error
	SetUser(ctx context.Context, user board.User) error
	DeleteUser(ctx context.Context, username string) error
	ListUsers(ctx context.Context) ([]board.User, error)
}

type iAuditLog interface {
	RecordAdminLog(ctx context.Context, actor, message string)
}

type Config struct {
	Secret     string
	SessionTTL time.Duration
	BcryptCost int
}

type service struct {
	repo       iUserRepo
	audit      iAuditLog
	logger     *slog.Logger
	secret     []byte
	sessionTTL time.Duration
	bcryptCost int
}

func NewService(repo iUserRepo, audit iAuditLog, logger *slog.Logger, cfg *Config) *service {
	s := &service{
		repo:       repo,
		audit:      audit,
		logger:     logger,
		secret:     []byte(cfg.Secret),
		sessionTTL: DefaultSessionTTL,
		bcryptCost: bcrypt.DefaultCost,
	}
	if cfg.SessionTTL > 0 {
		s.sessionTTL = cfg.SessionTTL
	}
	if cfg.BcryptCost > 0 {
		s.bcryptCost = cfg.BcryptCost
	}

	return s
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Authenticate reports ErrInvalidCredentials for unknown users and wrong
// passwords alike.
func (s service) Authenticate(ctx context.Context, creds Credentials) (Identity, error) {
	username := normalizeUsername(creds.Username)
	if username == "" || creds.Password == "" {
		return Identity{}, ErrInvalidCredentials
	}

	user, err := s.repo.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, board.ErrUserNotFound) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, fmt.Errorf("failed to get user: %w", err)
	}

	if user.PasswordHash == "" {
		return Identity{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

func (s service) Authorize(identity Identity, action Action) bool {
	switch action {
	case ActionOperateBoard:
		return identity.Role == board.RoleAdmin || identity.Role == board.RoleSuperAdmin
	case ActionManageUsers, ActionManageLayout:
		return identity.Role == board.RoleSuperAdmin
	default:
		return false
	}
}

// BootstrapSuperAdmin creates the configured superadmin, or repairs it when the
// stored account has no password hash.
func (s service) BootstrapSuperAdmin(ctx context.Context, username, password string) error {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: superadmin username and password are required", ErrValidation)
	}

	user, err := s.repo.GetUser(ctx, username)
	switch {
	case errors.Is(err, board.ErrUserNotFound):
		s.logger.InfoContext(ctx, "creating superadmin", "username", username)
	case err != nil:
		return fmt.Errorf("failed to get superadmin: %w", err)
	case user.PasswordHash == "":
		s.logger.WarnContext(ctx, "repairing superadmin without password hash", "username", username)
	default:
		s.logger.InfoContext(ctx, "superadmin already exists", "username", username)
		return nil
	}

	hash, err := s.hash(password)
	if err != nil {
		return err
	}

	if err := s.repo.SetUser(ctx, board.User{
		Username:     username,
		PasswordHash: hash,
		Role:         board.RoleSuperAdmin,
	}); err != nil {
		return fmt.Errorf("failed to save superadmin: %w", err)
	}

	return nil
}

func (s service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}
