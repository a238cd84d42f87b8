package database

import (
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/pomnim/backend/models"
	"gorm.io/gorm"
)

// Case-insensitive substring match over every searchable story field.
const searchClause = "title ILIKE ? OR full_name ILIKE ? OR content ILIKE ? OR rank ILIKE ? OR military_unit ILIKE ? OR awards ILIKE ?"

// listOrder makes pagination deterministic when creation timestamps collide.
const listOrder = "created_at DESC, id DESC"

type StoryRepo struct {
	db *gorm.DB
}

func NewStoryRepo(db *gorm.DB) *StoryRepo {
	return &StoryRepo{db}
}

// StoryPage is one page of a story listing plus its pagination envelope.
type StoryPage struct {
	Stories    []*models.Story `json:"stories"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

func withImages(db *gorm.DB) *gorm.DB {
	return db.Order("images.created_at ASC, images.id ASC")
}

// FindByID returns a story with its images and author, or nil when no such
// story exists.
func (r *StoryRepo) FindByID(id uuid.UUID) (*models.Story, error) {
	var story models.Story
	err := r.db.Preload("Images", withImages).Preload("Author").First(&story, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &story, nil
}

// Add inserts a new story together with its images in one transaction.
func (r *StoryRepo) Add(story *models.Story) error {
	return r.db.Create(story).Error
}

// Update persists the story record itself; associations are managed
// separately through ReplaceImages.
func (r *StoryRepo) Update(story *models.Story) error {
	return r.db.Omit("Images", "Author").Save(story).Error
}

// ReplaceImages discards every image attached to the story and inserts the
// supplied set, as a single transaction. A failure mid-way leaves the prior
// set intact.
func (r *StoryRepo) ReplaceImages(storyID uuid.UUID, urls []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", storyID).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		if len(urls) == 0 {
			return nil
		}
		images := make([]models.Image, len(urls))
		for i, url := range urls {
			images[i] = models.Image{ID: uuid.New(), URL: url, StoryID: storyID}
		}
		return tx.Create(&images).Error
	})
}

// Delete removes a story and its images. The images are deleted in the same
// transaction rather than relying on the foreign key alone, so no orphan can
// survive even on a schema without the constraint.
func (r *StoryRepo) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("story_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Story{}, "id = ?", id).Error
	})
}

// SetAudioURL stores the synthesized-audio reference on the story record.
func (r *StoryRepo) SetAudioURL(id uuid.UUID, audioURL string) error {
	return r.db.Model(&models.Story{}).Where("id = ?", id).Update("audio_url", audioURL).Error
}

// ListPublished returns one page of published stories, optionally filtered by
// a case-insensitive substring query across title, full name, content, rank,
// military unit and awards.
func (r *StoryRepo) ListPublished(query string, page, limit int) (*StoryPage, error) {
	scope := r.db.Model(&models.Story{}).Where("status = ?", models.StatusPublished)
	if query != "" {
		like := "%" + escapeLikePattern(query) + "%"
		scope = scope.Where(searchClause, like, like, like, like, like, like)
	}
	return r.paginate(scope, page, limit)
}

// escapeLikePattern neutralizes the ILIKE metacharacters so a user query
// matches as a literal substring. A search for "100%" must not turn into a
// prefix wildcard.
func escapeLikePattern(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListByStatus returns one page of stories in the given status, newest first.
func (r *StoryRepo) ListByStatus(status models.StoryStatus, page, limit int) (*StoryPage, error) {
	scope := r.db.Model(&models.Story{}).Where("status = ?", status)
	return r.paginate(scope, page, limit)
}

// ListByAuthor returns one page of the author's stories regardless of status.
func (r *StoryRepo) ListByAuthor(authorID uuid.UUID, page, limit int) (*StoryPage, error) {
	scope := r.db.Model(&models.Story{}).Where("author_id = ?", authorID)
	return r.paginate(scope, page, limit)
}

func (r *StoryRepo) paginate(scope *gorm.DB, page, limit int) (*StoryPage, error) {
	var total int64
	if err := scope.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var stories []*models.Story
	err := scope.Session(&gorm.Session{}).
		Preload("Images", withImages).
		Preload("Author").
		Order(listOrder).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&stories).Error
	if err != nil {
		return nil, err
	}

	return &StoryPage{
		Stories:    stories,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}
