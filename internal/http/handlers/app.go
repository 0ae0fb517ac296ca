package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"nexus/internal/dashboard"
	"nexus/internal/domain"
	"nexus/internal/identity"
	"nexus/internal/listings"
	"nexus/internal/middleware"
	"nexus/internal/offers"
)

const maxBodyBytes = 1 << 20

type App struct {
	Identity  identity.Provider
	Users     domain.UserRepository
	Listings  *listings.Service
	Offers    *offers.Service
	Dashboard *dashboard.Assembler
	Logger    zerolog.Logger
	// Checks are run by Health, keyed by dependency name.
	Checks map[string]HealthCheck

	validate *validator.Validate
}

func NewApp(id identity.Provider, users domain.UserRepository, ls *listings.Service, os *offers.Service, dash *dashboard.Assembler, logger zerolog.Logger) *App {
	return &App{
		Identity:  id,
		Users:     users,
		Listings:  ls,
		Offers:    os,
		Dashboard: dash,
		Logger:    logger,
		validate:  newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorBody{Error: errorDetail{Code: errCode, Message: message}})
}

func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := hlog.FromRequest(r); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

// fail writes the response for a service error. A cancelled request gets no
// response and no log line.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		return
	case errors.Is(err, domain.ErrInvalidCredentials):
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrIllegalTransition):
		a.error(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, domain.ErrConflict):
		a.error(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrCorruptRecord):
		a.log(r).Warn().Err(err).Msg("malformed stored record")
		a.error(w, http.StatusInternalServerError, "corrupt_record", "stored record is malformed")
	case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		a.log(r).Error().Err(err).Msg("store unavailable")
		a.error(w, http.StatusServiceUnavailable, "unavailable", "service temporarily unavailable, please retry")
	default:
		a.log(r).Error().Err(err).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// decode reads a JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler may continue.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	if a.validate == nil {
		a.validate = newValidator()
	}
	if err := a.validate.Struct(dst); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid payload"
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// session returns the authenticated session. Routes using it sit behind
// middleware.Authenticate.
func (a *App) session(w http.ResponseWriter, r *http.Request) (*identity.Session, bool) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return nil, false
	}
	return sess, true
}

func (a *App) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	sess, ok := a.session(w, r)
	if !ok {
		return domain.Actor{}, false
	}
	return sess.Actor(), true
}

func locale(r *http.Request) string {
	return middleware.LocaleFromContext(r.Context())
}
