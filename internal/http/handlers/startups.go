package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"nexus/internal/domain"
)

type createStartupRequest struct {
	Name             string           `json:"name" validate:"required,max=200"`
	Founder          string           `json:"founder" validate:"required,max=200"`
	CoFounder        string           `json:"cofounder" validate:"max=200"`
	Domain           string           `json:"domain" validate:"required,max=120"`
	Description      string           `json:"description" validate:"max=5000"`
	AskingInvestment *decimal.Decimal `json:"asking_investment" validate:"required"`
	Equity           *decimal.Decimal `json:"equity" validate:"required"`
	PitchVideoURL    string           `json:"pitch_video_link" validate:"omitempty,url"`
	WebsiteURL       string           `json:"website_link" validate:"omitempty,url"`
	FoundedYear      int              `json:"founded_year" validate:"omitempty,min=1900,max=2100"`
	TeamSize         int              `json:"team_size" validate:"min=0"`
	Location         string           `json:"location" validate:"max=200"`
}

type updateStartupRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=200"`
	Founder       *string `json:"founder" validate:"omitempty,max=200"`
	CoFounder     *string `json:"cofounder" validate:"omitempty,max=200"`
	Domain        *string `json:"domain" validate:"omitempty,max=120"`
	Description   *string `json:"description" validate:"omitempty,max=5000"`
	PitchVideoURL *string `json:"pitch_video_link" validate:"omitempty,url"`
	WebsiteURL    *string `json:"website_link" validate:"omitempty,url"`
	FoundedYear   *int    `json:"founded_year" validate:"omitempty,min=1900,max=2100"`
	TeamSize      *int    `json:"team_size" validate:"omitempty,min=0"`
	Location      *string `json:"location" validate:"omitempty,max=200"`
}

func (a *App) BrowseStartups(w http.ResponseWriter, r *http.Request) {
	list, err := a.Dashboard.Browse(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	loc := locale(r)
	out := make([]startupDTO, 0, len(list))
	for _, s := range list {
		out = append(out, toStartupDTO(s, loc))
	}
	a.json(w, http.StatusOK, map[string]any{"startups": out})
}

func (a *App) GetStartup(w http.ResponseWriter, r *http.Request) {
	d, err := a.Dashboard.ListingDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toListingDetailDTO(d, locale(r)))
}

func (a *App) CreateStartup(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.session(w, r)
	if !ok {
		return
	}
	var req createStartupRequest
	if !a.decode(w, r, &req) {
		return
	}
	s, err := a.Listings.Create(r.Context(), sess.Actor(), sess.Email, domain.NewStartup{
		Name:             req.Name,
		Founder:          req.Founder,
		CoFounder:        req.CoFounder,
		Domain:           req.Domain,
		Description:      req.Description,
		AskingInvestment: *req.AskingInvestment,
		Equity:           *req.Equity,
		PitchVideoURL:    req.PitchVideoURL,
		WebsiteURL:       req.WebsiteURL,
		FoundedYear:      req.FoundedYear,
		TeamSize:         req.TeamSize,
		Location:         req.Location,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toStartupDTO(*s, locale(r)))
}

func (a *App) UpdateStartup(w http.ResponseWriter, r *http.Request) {
	actor, ok := a.actor(w, r)
	if !ok {
		return
	}
	var req updateStartupRequest
	if !a.decode(w, r, &req) {
		return
	}
	s, err := a.Listings.Update(r.Context(), actor, chi.URLParam(r, "id"), domain.StartupPatch{
		Name:          req.Name,
		Founder:       req.Founder,
		CoFounder:     req.CoFounder,
		Domain:        req.Domain,
		Description:   req.Description,
		PitchVideoURL: req.PitchVideoURL,
		WebsiteURL:    req.WebsiteURL,
		FoundedYear:   req.FoundedYear,
		TeamSize:      req.TeamSize,
		Location:      req.Location,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toStartupDTO(*s, locale(r)))
}
