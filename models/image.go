package models

import (
	"time"

	"github.com/google/uuid"
)

// Image is a reference to externally hosted binary content attached to a
// story. It has no lifecycle of its own: deleting the story deletes it.
type Image struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	URL       string    `json:"url" db:"url" gorm:"type:text;not null"`
	StoryID   uuid.UUID `json:"storyId" db:"story_id" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}
