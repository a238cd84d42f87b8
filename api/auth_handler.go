package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pomnim/backend/database"
	"github.com/pomnim/backend/errs"
	"github.com/pomnim/backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	users     *database.UserRepo
	secret    []byte
	tokenTTL  time.Duration
}

func newAuthHandler(users *database.UserRepo, secret []byte, tokenTTL time.Duration) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		users:     users,
		secret:    secret,
		tokenTTL:  tokenTTL,
	}
}

// register creates a new account with the USER role and signs it in.
func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Name == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("name"))
			return
		}
		if req.Email == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("email"))
			return
		}
		if len(req.Password) < 8 {
			h.responder.WriteError(w, errs.NewInvalidFieldError("password", "must be at least 8 characters"))
			return
		}

		existing, err := h.users.FindByEmail(req.Email)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if existing != nil {
			h.responder.WriteError(w, errs.NewAlreadyExists("user"))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("hashing password", err))
			return
		}

		user := &models.User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
			Role:         models.RoleUser,
		}
		if err := h.users.Add(user); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "user", err))
			return
		}

		token, err := issueToken(h.secret, user, h.tokenTTL)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("issuing token", err))
			return
		}

		h.logger.Info().Str("userId", user.ID.String()).Msg("user registered")

		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, authResponse{Token: token, User: user})
	}
}

// login verifies credentials and issues a fresh token.
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		user, err := h.users.FindByEmail(req.Email)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		// Same response whether the account is missing or the password is
		// wrong, so login attempts can't probe which emails exist.
		if user == nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("invalid email or password"))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("invalid email or password"))
			return
		}

		token, err := issueToken(h.secret, user, h.tokenTTL)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("issuing token", err))
			return
		}

		h.responder.WriteJSON(w, authResponse{Token: token, User: user})
	}
}
