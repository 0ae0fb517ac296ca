package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"nexus/internal/domain"
)

type submitRequest struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
	Equity *decimal.Decimal `json:"equity" validate:"required"`
}

type decisionRequest struct {
	// "accepted" is still sent by older clients.
	Status string `json:"status" validate:"required,oneof=approved rejected accepted"`
}

func (a *App) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if !a.decode(w, r, &req) {
		return
	}
	created, err := a.Offers.Submit(r.Context(), actor, chi.URLParam(r, "id"), *req.Amount, *req.Equity)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toRequestDTO(*created, "", locale(r)))
}

func (a *App) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	req, err := a.Offers.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toRequestDTO(*req, "", locale(r)))
}

func (a *App) DecideRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	var req decisionRequest
	if !a.decode(w, r, &req) {
		return
	}
	outcome, err := domain.ParseRequestStatus(req.Status)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	decided, err := a.Offers.Decide(r.Context(), actor, chi.URLParam(r, "id"), outcome)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toRequestDTO(*decided, "", locale(r)))
}
