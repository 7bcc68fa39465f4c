package controller

import (
	"net/http"

	"github.com/callsys/callboard/internal/service/auth"
	"github.com/callsys/callboard/pkg/rest"
)

type loginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

func (c controller) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !c.decode(w, r, &req) {
		return
	}

	identity, err := c.authService.Authenticate(r.Context(), auth.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	token, expiresAt, err := c.authService.IssueToken(identity)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.setSessionCookie(w, token, expiresAt)
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true, "user": identity})
}

func (c controller) logout(w http.ResponseWriter, r *http.Request) {
	c.clearSessionCookie(w)
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true})
}
