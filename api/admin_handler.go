package api

import (
	"encoding/json"
	"net/http"

	"github.com/pomnim/backend/errs"
	"github.com/pomnim/backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type adminHandler struct {
	responder Responder
	logger    zerolog.Logger
	stories   *services.StoryService
}

func newAdminHandler(stories *services.StoryService) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder: NewResponder(logger),
		logger:    logger,
		stories:   stories,
	}
}

// listByStatus is the moderation queue: one status at a time, defaulting to
// PENDING_REVIEW, newest submissions first.
func (h adminHandler) listByStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		page, limit := parsePagination(r)

		result, err := h.stories.ListByStatus(actorFromCtx(r.Context()), status, page, limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, newStoryListResponse(result))
	}
}

// moderate records an approve/reject decision on a story.
func (h adminHandler) moderate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storyID, err := storyIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req moderateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode moderation request body")
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		story, err := h.stories.Moderate(actorFromCtx(r.Context()), storyID, req.Approved, req.ModerationComment)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, moderateResponse{
			Success: true,
			Status:  story.Status,
		})
	}
}
