package api

import (
	"time"

	"github.com/pomnim/backend/database"
	"github.com/pomnim/backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(
	db database.Database,
	uploader *services.Uploader,
	speech *services.SpeechService,
	jwtSecret []byte,
	tokenTTL time.Duration,
	maxUploadSize int64,
) *routeHandlers {
	storyService := services.NewStoryService(db.StoryRepo())

	return &routeHandlers{
		authHandler:   newAuthHandler(db.UserRepo(), jwtSecret, tokenTTL),
		storyHandler:  newStoryHandler(storyService),
		adminHandler:  newAdminHandler(storyService),
		uploadHandler: newUploadHandler(uploader, maxUploadSize),
		ttsHandler:    newTTSHandler(speech),
	}
}
