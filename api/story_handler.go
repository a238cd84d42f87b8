package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pomnim/backend/errs"
	"github.com/pomnim/backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type storyHandler struct {
	responder Responder
	logger    zerolog.Logger
	stories   *services.StoryService
}

func newStoryHandler(stories *services.StoryService) storyHandler {
	logger := log.With().Str("handlerName", "storyHandler").Logger()

	return storyHandler{
		responder: NewResponder(logger),
		logger:    logger,
		stories:   stories,
	}
}

// listPublic serves the public story feed with optional substring search.
func (h storyHandler) listPublic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		page, limit := parsePagination(r)

		result, err := h.stories.ListPublished(query, page, limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, newStoryListResponse(result))
	}
}

// myStories lists the authenticated author's own stories in every status.
func (h storyHandler) myStories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit := parsePagination(r)

		result, err := h.stories.ListByAuthor(actorFromCtx(r.Context()), page, limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, newStoryListResponse(result))
	}
}

func (h storyHandler) getStory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storyID, err := storyIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		story, err := h.stories.Get(actorFromCtx(r.Context()), storyID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, story)
	}
}

func (h storyHandler) createStory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input services.StoryInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode story request body")
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		story, err := h.stories.Create(actorFromCtx(r.Context()), input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		h.responder.WriteJSON(w, story)
	}
}

func (h storyHandler) updateStory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storyID, err := storyIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var input services.StoryInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.logger.Error().Err(err).Msg("Failed to decode story request body")
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		story, err := h.stories.Edit(actorFromCtx(r.Context()), storyID, input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, story)
	}
}

func (h storyHandler) deleteStory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storyID, err := storyIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.stories.Delete(actorFromCtx(r.Context()), storyID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"status":  "success",
			"message": "story deleted successfully",
		})
	}
}

// attachAudio stores a previously synthesized narration URL on the story.
func (h storyHandler) attachAudio() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storyID, err := storyIDParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req attachAudioRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		if err := h.stories.AttachAudio(actorFromCtx(r.Context()), storyID, req.AudioURL); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]any{
			"success":  true,
			"audioUrl": req.AudioURL,
		})
	}
}

func storyIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "storyID")
	if raw == "" {
		return uuid.Nil, errs.NewBadRequestError("missing storyID")
	}
	storyID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewInvalidFieldError("storyID", "must be a valid UUID")
	}
	return storyID, nil
}

// parsePagination reads page and limit query params; out-of-range values are
// clamped by the service layer.
func parsePagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}
