package services

import (
	"github.com/google/uuid"
	"github.com/pomnim/backend/database"
	"github.com/pomnim/backend/models"
)

// StoryStore is the persistence boundary the lifecycle engine works against.
// *database.StoryRepo is the production implementation.
type StoryStore interface {
	FindByID(id uuid.UUID) (*models.Story, error)
	Add(story *models.Story) error
	Update(story *models.Story) error
	ReplaceImages(storyID uuid.UUID, urls []string) error
	Delete(id uuid.UUID) error
	SetAudioURL(id uuid.UUID, audioURL string) error
	ListPublished(query string, page, limit int) (*database.StoryPage, error)
	ListByStatus(status models.StoryStatus, page, limit int) (*database.StoryPage, error)
	ListByAuthor(authorID uuid.UUID, page, limit int) (*database.StoryPage, error)
}
