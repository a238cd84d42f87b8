package api

import (
	"encoding/json"
	"net/http"

	"github.com/pomnim/backend/errs"
	"github.com/pomnim/backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ttsHandler struct {
	responder Responder
	logger    zerolog.Logger
	speech    *services.SpeechService
}

func newTTSHandler(speech *services.SpeechService) ttsHandler {
	logger := log.With().Str("handlerName", "ttsHandler").Logger()

	return ttsHandler{
		responder: NewResponder(logger),
		logger:    logger,
		speech:    speech,
	}
}

// synthesize forwards story text to the speech provider and returns the
// audio URL it hosts.
func (h ttsHandler) synthesize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if actorFromCtx(r.Context()) == nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("sign in to synthesize audio"))
			return
		}

		if h.speech == nil {
			h.responder.WriteError(w, errs.NewServiceUnavailableError("speech synthesis not configured"))
			return
		}

		var req ttsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		audioURL, err := h.speech.Synthesize(r.Context(), req.Text, req.Language)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, ttsResponse{AudioURL: audioURL})
	}
}
