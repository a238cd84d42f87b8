package api

import (
	"net/http"

	"github.com/pomnim/backend/errs"
	"github.com/pomnim/backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var allowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

type uploadHandler struct {
	responder Responder
	logger    zerolog.Logger
	uploader  *services.Uploader
	maxSize   int64
}

func newUploadHandler(uploader *services.Uploader, maxSize int64) uploadHandler {
	logger := log.With().Str("handlerName", "uploadHandler").Logger()

	return uploadHandler{
		responder: NewResponder(logger),
		logger:    logger,
		uploader:  uploader,
		maxSize:   maxSize,
	}
}

// uploadImage validates and streams one image to the object store, returning
// the durable URL that story payloads reference. Uploads happen before any
// story record is written, so a failed upload never leaves a story pointing
// at a missing image.
func (h uploadHandler) uploadImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if actorFromCtx(r.Context()) == nil {
			h.responder.WriteError(w, errs.NewUnauthorizedError("sign in to upload images"))
			return
		}

		if h.uploader == nil {
			h.responder.WriteError(w, errs.NewServiceUnavailableError("object store not configured"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)
		if err := r.ParseMultipartForm(h.maxSize); err != nil {
			h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(h.maxSize))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("file"))
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !isAllowedImageType(contentType) {
			h.responder.WriteError(w, errs.NewUnsupportedMediaTypeError(contentType, allowedImageTypes))
			return
		}

		if header.Size > h.maxSize {
			h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(h.maxSize))
			return
		}

		url, key, err := h.uploader.Upload(r.Context(), file, contentType, header.Size, header.Filename)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, uploadResponse{URL: url, Key: key})
	}
}

func isAllowedImageType(contentType string) bool {
	for _, allowed := range allowedImageTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}
