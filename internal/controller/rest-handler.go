package controller

import (
	"net/http"

	"github.com/callsys/callboard/internal/repository/board"
	boardsvc "github.com/callsys/callboard/internal/service/board"
	"github.com/callsys/callboard/pkg/rest"
)

type changeNumberRequest struct {
	Direction string `json:"direction" validate:"required,oneof=next prev"`
}

func (c controller) changeNumber(w http.ResponseWriter, r *http.Request) {
	var req changeNumberRequest
	if !c.decode(w, r, &req) {
		return
	}

	actor := c.getIdentityFromCtx(r.Context()).Username

	var (
		n   int
		err error
	)
	if req.Direction == "next" {
		n, err = c.boardService.Next(r.Context(), actor)
	} else {
		n, err = c.boardService.Previous(r.Context(), actor)
	}
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true, "number": n})
}

type setNumberRequest struct {
	Number *int `json:"number" validate:"required,gte=0"`
}

func (c controller) setNumber(w http.ResponseWriter, r *http.Request) {
	var req setNumberRequest
	if !c.decode(w, r, &req) {
		return
	}

	n, err := c.boardService.SetExact(r.Context(), &boardsvc.SetExactParams{
		Number: *req.Number,
		Actor:  c.getIdentityFromCtx(r.Context()).Username,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true, "number": n})
}

type passedRequest struct {
	Number *int `json:"number" validate:"required"`
}

func (c controller) addPassed(w http.ResponseWriter, r *http.Request) {
	var req passedRequest
	if !c.decode(w, r, &req) {
		return
	}

	passed, err := c.boardService.AddPassed(r.Context(), &boardsvc.PassedParams{
		Number: *req.Number,
		Actor:  c.getIdentityFromCtx(r.Context()).Username,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true, "passedNumbers": passed})
}

func (c controller) removePassed(w http.ResponseWriter, r *http.Request) {
	var req passedRequest
	if !c.decode(w, r, &req) {
		return
	}

	passed, err := c.boardService.RemovePassed(r.Context(), &boardsvc.PassedParams{
		Number: *req.Number,
		Actor:  c.getIdentityFromCtx(r.Context()).Username,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true, "passedNumbers": passed})
}

func (c controller) clearPassed(w http.ResponseWriter, r *http.Request) {
	if err := c.boardService.ClearPassed(r.Context(), c.getIdentityFromCtx(r.Context()).Username); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true})
}

type addFeaturedRequest struct {
	LinkText string `json:"linkText" validate:"required,max=200"`
	LinkURL  string `json:"linkUrl" validate:"required,max=2048,httpurl"`
}

func (c controller) addFeatured(w http.ResponseWriter, r *http.Request) {
	var req addFeaturedRequest
	if !c.decode(w, r, &req) {
		return
	}

	featured, err := c.boardService.AddFeatured(r.Context(), &boardsvc.FeaturedParams{
		LinkText: req.LinkText,
		LinkURL:  req.LinkURL,
		Actor:    c.getIdentityFromCtx(r.Context()).Username,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true, "featuredContents": featured})
}

type removeFeaturedRequest struct {
	LinkText string `json:"linkText" validate:"required"`
	LinkURL  string `json:"linkUrl" validate:"required"`
}

func (c controller) removeFeatured(w http.ResponseWriter, r *http.Request) {
	var req removeFeaturedRequest
	if !c.decode(w, r, &req) {
		return
	}

	featured, err := c.boardService.RemoveFeatured(r.Context(), &boardsvc.FeaturedParams{
		LinkText: req.LinkText,
		LinkURL:  req.LinkURL,
		Actor:    c.getIdentityFromCtx(r.Context()).Username,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true, "featuredContents": featured})
}

type removeFeaturedByIndexRequest struct {
	Index *int `json:"index" validate:"required,gte=0"`
}

func (c controller) removeFeaturedByIndex(w http.ResponseWriter, r *http.Request) {
	var req removeFeaturedByIndexRequest
	if !c.decode(w, r, &req) {
		return
	}

	featured, err := c.boardService.RemoveFeaturedByIndex(r.Context(), &boardsvc.RemoveFeaturedByIndexParams{
		Index: *req.Index,
		Actor: c.getIdentityFromCtx(r.Context()).Username,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true, "featuredContents": featured})
}

func (c controller) clearFeatured(w http.ResponseWriter, r *http.Request) {
	if err := c.boardService.ClearFeatured(r.Context(), c.getIdentityFromCtx(r.Context()).Username); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true, "featuredContents": []board.FeaturedContent{}})
}

type setSoundRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (c controller) setSoundEnabled(w http.ResponseWriter, r *http.Request) {
	var req setSoundRequest
	if !c.decode(w, r, &req) {
		return
	}

	if err := c.boardService.SetSoundEnabled(r.Context(), &boardsvc.SetSoundEnabledParams{
		Enabled: *req.Enabled,
		Actor:   c.getIdentityFromCtx(r.Context()).Username,
	}); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true, "isEnabled": *req.Enabled})
}

type setPublicRequest struct {
	IsPublic *bool `json:"isPublic" validate:"required"`
}

func (c controller) setPublic(w http.ResponseWriter, r *http.Request) {
	var req setPublicRequest
	if !c.decode(w, r, &req) {
		return
	}

	if err := c.boardService.SetPublic(r.Context(), &boardsvc.SetPublicParams{
		IsPublic: *req.IsPublic,
		Actor:    c.getIdentityFromCtx(r.Context()).Username,
	}); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true, "isPublic": *req.IsPublic})
}

func (c controller) clearAdminLogs(w http.ResponseWriter, r *http.Request) {
	if err := c.boardService.ClearAdminLogs(r.Context(), c.getIdentityFromCtx(r.Context()).Username); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true})
}

func (c controller) resetAll(w http.ResponseWriter, r *http.Request) {
	if err := c.boardService.ResetAll(r.Context(), c.getIdentityFromCtx(r.Context()).Username); err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"success": true})
}
