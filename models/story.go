package models

import (
	"time"

	"github.com/google/uuid"
)

// StoryStatus is the closed set of lifecycle states a story moves through.
type StoryStatus string

const (
	StatusDraft         StoryStatus = "DRAFT"
	StatusPendingReview StoryStatus = "PENDING_REVIEW"
	StatusPublished     StoryStatus = "PUBLISHED"
	StatusRejected      StoryStatus = "REJECTED"
)

// ParseStoryStatus validates an incoming status string against the closed enum.
func ParseStoryStatus(s string) (StoryStatus, bool) {
	switch StoryStatus(s) {
	case StatusDraft, StatusPendingReview, StatusPublished, StatusRejected:
		return StoryStatus(s), true
	}
	return "", false
}

// Story is a user-submitted biographical narrative about a war veteran.
type Story struct {
	ID       uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Title    string    `json:"title" db:"title" gorm:"type:text;not null"`
	FullName string    `json:"fullName" db:"full_name" gorm:"type:text;not null"`
	Content  string    `json:"content" db:"content" gorm:"type:text;not null"`

	BirthDate    *time.Time `json:"birthDate,omitempty" db:"birth_date" gorm:"type:timestamp"`
	DeathDate    *time.Time `json:"deathDate,omitempty" db:"death_date" gorm:"type:timestamp"`
	Rank         *string    `json:"rank,omitempty" db:"rank" gorm:"type:text"`
	MilitaryUnit *string    `json:"militaryUnit,omitempty" db:"military_unit" gorm:"type:text"`
	Awards       *string    `json:"awards,omitempty" db:"awards" gorm:"type:text"`
	VideoURL     *string    `json:"videoUrl,omitempty" db:"video_url" gorm:"type:text"`
	AudioURL     *string    `json:"audioUrl,omitempty" db:"audio_url" gorm:"type:text"`

	Status    StoryStatus `json:"status" db:"status" gorm:"type:text;not null;default:'DRAFT';index"`
	Published bool        `json:"published" db:"published" gorm:"not null;default:false"`

	ModeratorID       *uuid.UUID `json:"moderatorId,omitempty" db:"moderator_id" gorm:"type:uuid"`
	ModerationComment *string    `json:"moderationComment,omitempty" db:"moderation_comment" gorm:"type:text"`
	ModeratedAt       *time.Time `json:"moderatedAt,omitempty" db:"moderated_at" gorm:"type:timestamp"`

	AuthorID uuid.UUID `json:"authorId" db:"author_id" gorm:"type:uuid;not null;index"`
	Author   *Author   `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:ID"`

	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;index"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`

	Images []Image `json:"images,omitempty" gorm:"foreignKey:StoryID;references:ID;constraint:OnDelete:CASCADE"`
}

// Visible reports whether the story is publicly readable. Visibility derives
// from the status alone; the persisted `published` flag is kept for
// compatibility but never consulted.
func (s *Story) Visible() bool {
	return s.Status == StatusPublished
}

// Cover returns the first attached image, the one shown in list previews.
func (s *Story) Cover() *Image {
	if len(s.Images) == 0 {
		return nil
	}
	return &s.Images[0]
}
