package controller

import (
	"encoding/json"
	"net/http"

	"github.com/callsys/callboard/internal/repository/board"
	"github.com/callsys/callboard/internal/service/auth"
	boardsvc "github.com/callsys/callboard/internal/service/board"
	"github.com/callsys/callboard/pkg/rest"
)

func (c controller) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.authService.ListUsers(r.Context())
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true, "users": users})
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8,max=256"`
	Role     string `json:"role" validate:"required,oneof=admin superadmin"`
}

func (c controller) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !c.decode(w, r, &req) {
		return
	}

	user, err := c.authService.CreateUser(r.Context(), &auth.CreateUserParams{
		Username: req.Username,
		Password: req.Password,
		Role:     board.Role(req.Role),
		Actor:    c.getIdentityFromCtx(r.Context()).Username,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"success": true, "user": user})
}

type deleteUserRequest struct {
	Username string `json:"username" validate:"required"`
}

func (c controller) deleteUser(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if !c.decode(w, r, &req) {
		return
	}

	if err := c.authService.DeleteUser(r.Context(), &auth.DeleteUserParams{
		Username: req.Username,
		Actor:    c.getIdentityFromCtx(r.Context()).Username,
	}); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true})
}

type updatePasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=256"`
}

func (c controller) updatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if !c.decode(w, r, &req) {
		return
	}

	if err := c.authService.UpdatePassword(r.Context(), &auth.UpdatePasswordParams{
		Username:    req.Username,
		NewPassword: req.NewPassword,
		Actor:       c.getIdentityFromCtx(r.Context()).Username,
	}); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true})
}

type updateRoleRequest struct {
	Username string `json:"username" validate:"required"`
	NewRole  string `json:"newRole" validate:"required,oneof=admin superadmin"`
}

func (c controller) updateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if !c.decode(w, r, &req) {
		return
	}

	if err := c.authService.UpdateRole(r.Context(), &auth.UpdateRoleParams{
		Username: req.Username,
		NewRole:  board.Role(req.NewRole),
		Actor:    c.getIdentityFromCtx(r.Context()).Username,
	}); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true})
}

func (c controller) loadLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := c.boardService.LoadLayout(r.Context())
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true, "layout": layout})
}

type saveLayoutRequest struct {
	Layout json.RawMessage `json:"layout" validate:"required"`
}

func (c controller) saveLayout(w http.ResponseWriter, r *http.Request) {
	var req saveLayoutRequest
	if !c.decode(w, r, &req) {
		return
	}

	if err := c.boardService.SaveLayout(r.Context(), &boardsvc.SaveLayoutParams{
		Layout: board.Layout(req.Layout),
		Actor:  c.getIdentityFromCtx(r.Context()).Username,
	}); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true})
}
