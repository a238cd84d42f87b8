package api

import (
	"github.com/pomnim/backend/database"
	"github.com/pomnim/backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler   authHandler
	storyHandler  storyHandler
	adminHandler  adminHandler
	uploadHandler uploadHandler
	ttsHandler    ttsHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
	Cause   string `json:"cause,omitempty"`
}

// paginationMeta is the envelope describing one page of a listing.
type paginationMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// storyListResponse is the wire shape for every paginated story listing.
type storyListResponse struct {
	Stories    []*models.Story `json:"stories"`
	Pagination paginationMeta  `json:"pagination"`
}

func newStoryListResponse(page *database.StoryPage) storyListResponse {
	stories := page.Stories
	if stories == nil {
		stories = []*models.Story{}
	}
	return storyListResponse{
		Stories: stories,
		Pagination: paginationMeta{
			Total:      page.Total,
			Page:       page.Page,
			Limit:      page.Limit,
			TotalPages: page.TotalPages,
		},
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type moderateRequest struct {
	Approved          bool    `json:"approved"`
	ModerationComment *string `json:"moderationComment,omitempty"`
}

type moderateResponse struct {
	Success bool               `json:"success"`
	Status  models.StoryStatus `json:"status"`
}

type attachAudioRequest struct {
	AudioURL string `json:"audioUrl"`
}

type ttsRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

type ttsResponse struct {
	AudioURL string `json:"audioUrl"`
}

type uploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}
