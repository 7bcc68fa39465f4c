package auth

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/callsys/callboard/internal/repository/board"
)

const MinPasswordLength = 8

var UsernameRule = []validation.Rule{
	validation.Required,
	validation.Length(1, 64),
}

var PasswordRule = []validation.Rule{
	validation.Required,
	validation.By(func(value any) error {
		s, _ := value.(string)
		if len(strings.TrimSpace(s)) < MinPasswordLength {
			return validation.NewError("validation_password_length", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
		}
		return nil
	}),
}

var RoleRule = []validation.Rule{
	validation.Required,
	validation.In(board.RoleAdmin, board.RoleSuperAdmin),
}

func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func (s service) ListUsers(ctx context.Context) ([]Identity, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	identities := make([]Identity, 0, len(users))
	for _, user := range users {
		identities = append(identities, Identity{
			Username: user.Username,
			Role:     user.Role,
		})
	}

	return identities, nil
}

type CreateUserParams struct {
	Username string
	Password string
	Role     board.Role
	Actor    string
}

func (s service) CreateUser(ctx context.Context, params *CreateUserParams) (Identity, error) {
	params.Username = normalizeUsername(params.Username)
	if err := validation.ValidateStruct(params,
		validation.Field(&params.Username, UsernameRule...),
		validation.Field(&params.Password, PasswordRule...),
		validation.Field(&params.Role, RoleRule...),
	); err != nil {
		return Identity{}, validationError(err)
	}

	hash, err := s.hash(params.Password)
	if err != nil {
		return Identity{}, err
	}

	if err := s.repo.CreateUser(ctx, board.User{
		Username:     params.Username,
		PasswordHash: hash,
		Role:         params.Role,
	}); err != nil {
		return Identity{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit.RecordAdminLog(ctx, params.Actor, fmt.Sprintf("user %s created (%s)", params.Username, params.Role))

	return Identity{
		Username: params.Username,
		Role:     params.Role,
	}, nil
}

type DeleteUserParams struct {
	Username string
	Actor    string
}

func (s service) DeleteUser(ctx context.Context, params *DeleteUserParams) error {
	username := normalizeUsername(params.Username)
	if username == "" {
		return validationError(fmt.Errorf("username: cannot be blank"))
	}

	if username == params.Actor {
		return validationError(fmt.Errorf("cannot delete your own account"))
	}

	if err := s.repo.DeleteUser(ctx, username); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.audit.RecordAdminLog(ctx, params.Actor, "user "+username+" deleted")
	return nil
}

type UpdatePasswordParams struct {
	Username    string
	NewPassword string
	Actor       string
}

func (s service) UpdatePassword(ctx context.Context, params *UpdatePasswordParams) error {
	params.Username = normalizeUsername(params.Username)
	if err := validation.ValidateStruct(params,
		validation.Field(&params.Username, UsernameRule...),
		validation.Field(&params.NewPassword, PasswordRule...),
	); err != nil {
		return validationError(err)
	}

	user, err := s.repo.GetUser(ctx, params.Username)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	user.PasswordHash, err = s.hash(params.NewPassword)
	if err != nil {
		return err
	}

	if err := s.repo.SetUser(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.audit.RecordAdminLog(ctx, params.Actor, "password of user "+params.Username+" reset")
	return nil
}

type UpdateRoleParams struct {
	Username string
	NewRole  board.Role
	Actor    string
}

func (s service) UpdateRole(ctx context.Context, params *UpdateRoleParams) error {
	params.Username = normalizeUsername(params.Username)
	if err := validation.ValidateStruct(params,
		validation.Field(&params.Username, UsernameRule...),
		validation.Field(&params.NewRole, RoleRule...),
	); err != nil {
		return validationError(err)
	}

	if params.Username == params.Actor {
		return fmt.Errorf("%w: cannot change your own role", ErrPermissionDenied)
	}

	user, err := s.repo.GetUser(ctx, params.Username)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	user.Role = params.NewRole
	if err := s.repo.SetUser(ctx, user); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	s.audit.RecordAdminLog(ctx, params.Actor, fmt.Sprintf("role of user %s changed to %s", params.Username, params.NewRole))
	return nil
}
