package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/pomnim/backend/database"
	"github.com/pomnim/backend/errs"
	"github.com/pomnim/backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultPageLimit = 10

// StoryInput is the full replacement payload for creating or editing a
// story. Publish carries the author's submit intent on create/edit and the
// literal `published` value when an admin edits. A nil ImageURLs leaves the
// attached images untouched; a non-empty slice replaces them wholesale.
type StoryInput struct {
	Title        string     `json:"title"`
	FullName     string     `json:"fullName"`
	Content      string     `json:"content"`
	BirthDate    *time.Time `json:"birthDate,omitempty"`
	DeathDate    *time.Time `json:"deathDate,omitempty"`
	Rank         *string    `json:"rank,omitempty"`
	MilitaryUnit *string    `json:"militaryUnit,omitempty"`
	Awards       *string    `json:"awards,omitempty"`
	VideoURL     *string    `json:"videoUrl,omitempty"`
	Publish      bool       `json:"published"`
	ImageURLs    []string   `json:"imageUrls,omitempty"`
}

// StoryService is the lifecycle engine: every status transition a story can
// make goes through here, gated by the authorization guard and persisted
// through the story store.
type StoryService struct {
	stories StoryStore
	logger  zerolog.Logger
}

func NewStoryService(stories StoryStore) *StoryService {
	return &StoryService{
		stories: stories,
		logger:  log.With().Str("serviceName", "storyService").Logger(),
	}
}

func (s *StoryService) validate(input StoryInput) error {
	if input.Title == "" {
		return errs.NewMissingRequiredFieldError("title")
	}
	if input.FullName == "" {
		return errs.NewMissingRequiredFieldError("fullName")
	}
	if input.Content == "" {
		return errs.NewMissingRequiredFieldError("content")
	}
	return nil
}

// Create persists a new story owned by the actor. Publish intent selects the
// initial status (PENDING_REVIEW vs DRAFT); the persisted `published` flag
// always starts false, a story is never publicly visible straight from
// creation.
func (s *StoryService) Create(actor *models.Actor, input StoryInput) (*models.Story, error) {
	if err := CanCreate(actor); err != nil {
		return nil, err
	}
	if err := s.validate(input); err != nil {
		return nil, err
	}

	status := models.StatusDraft
	if input.Publish {
		status = models.StatusPendingReview
	}

	story := &models.Story{
		ID:           uuid.New(),
		Title:        input.Title,
		FullName:     input.FullName,
		Content:      input.Content,
		BirthDate:    input.BirthDate,
		DeathDate:    input.DeathDate,
		Rank:         input.Rank,
		MilitaryUnit: input.MilitaryUnit,
		Awards:       input.Awards,
		VideoURL:     input.VideoURL,
		Status:       status,
		Published:    false,
		AuthorID:     actor.ID,
	}
	for _, url := range input.ImageURLs {
		story.Images = append(story.Images, models.Image{ID: uuid.New(), URL: url, StoryID: story.ID})
	}

	if err := s.stories.Add(story); err != nil {
		return nil, errs.NewDatabaseError("create", "story", err)
	}

	s.logger.Info().
		Str("storyId", story.ID.String()).
		Str("status", string(story.Status)).
		Msg("story created")

	return s.reload(story.ID)
}

// Edit replaces every mutable field of the story. The status only moves via
// the draft rule: publish intent on a DRAFT story takes it to PENDING_REVIEW,
// anything else leaves the status as it was, so published and rejected
// stories never re-enter the queue merely by being edited.
func (s *StoryService) Edit(actor *models.Actor, id uuid.UUID, input StoryInput) (*models.Story, error) {
	existing, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := CanModify(actor, existing); err != nil {
		return nil, err
	}

	// Both derivations read the pre-edit status.
	status := existing.Status
	if input.Publish && existing.Status == models.StatusDraft {
		status = models.StatusPendingReview
	}
	published := existing.Status == models.StatusPublished
	if CanSetPublished(actor) {
		published = input.Publish
	}

	existing.Title = input.Title
	existing.FullName = input.FullName
	existing.Content = input.Content
	existing.BirthDate = input.BirthDate
	existing.DeathDate = input.DeathDate
	existing.Rank = input.Rank
	existing.MilitaryUnit = input.MilitaryUnit
	existing.Awards = input.Awards
	existing.VideoURL = input.VideoURL
	existing.Status = status
	existing.Published = published
	existing.UpdatedAt = time.Now()

	if err := s.stories.Update(existing); err != nil {
		return nil, errs.NewDatabaseError("update", "story", err)
	}

	if len(input.ImageURLs) > 0 {
		if err := s.stories.ReplaceImages(id, input.ImageURLs); err != nil {
			return nil, errs.NewTransactionError("replace story images", err)
		}
	}

	s.logger.Info().
		Str("storyId", id.String()).
		Str("status", string(status)).
		Msg("story updated")

	return s.reload(id)
}

// Moderate records the admin's decision. Any current status is accepted:
// re-moderating an already published or rejected story simply overwrites the
// moderation metadata, which also lets an admin unpublish by re-rejecting.
func (s *StoryService) Moderate(actor *models.Actor, id uuid.UUID, approve bool, comment *string) (*models.Story, error) {
	if err := CanModerate(actor); err != nil {
		return nil, err
	}
	story, err := s.load(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if approve {
		story.Status = models.StatusPublished
	} else {
		story.Status = models.StatusRejected
	}
	story.Published = approve
	story.ModeratorID = &actor.ID
	story.ModerationComment = comment
	story.ModeratedAt = &now
	story.UpdatedAt = now

	if err := s.stories.Update(story); err != nil {
		return nil, errs.NewDatabaseError("moderate", "story", err)
	}

	s.logger.Info().
		Str("storyId", id.String()).
		Bool("approved", approve).
		Str("moderatorId", actor.ID.String()).
		Msg("story moderated")

	return s.reload(id)
}

// Delete hard-deletes the story and all its images, from any status.
func (s *StoryService) Delete(actor *models.Actor, id uuid.UUID) error {
	story, err := s.load(id)
	if err != nil {
		return err
	}
	if err := CanModify(actor, story); err != nil {
		return err
	}
	if err := s.stories.Delete(id); err != nil {
		return errs.NewDatabaseError("delete", "story", err)
	}

	s.logger.Info().Str("storyId", id.String()).Msg("story deleted")
	return nil
}

// Get returns the story when the actor is allowed to see it.
func (s *StoryService) Get(actor *models.Actor, id uuid.UUID) (*models.Story, error) {
	story, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := CanRead(actor, story); err != nil {
		return nil, err
	}
	return story, nil
}

// AttachAudio stores a synthesized-audio URL on the story. The URL is
// persisted as-is, never validated or regenerated.
func (s *StoryService) AttachAudio(actor *models.Actor, id uuid.UUID, audioURL string) error {
	if audioURL == "" {
		return errs.NewMissingRequiredFieldError("audioUrl")
	}
	story, err := s.load(id)
	if err != nil {
		return err
	}
	if err := CanModify(actor, story); err != nil {
		return err
	}
	if err := s.stories.SetAudioURL(id, audioURL); err != nil {
		return errs.NewDatabaseError("update", "story audio", err)
	}
	return nil
}

// ListPublished is the public listing: published stories only, optional
// substring search across the descriptive fields, newest first.
func (s *StoryService) ListPublished(query string, page, limit int) (*database.StoryPage, error) {
	page, limit = sanitizePage(page, limit)
	result, err := s.stories.ListPublished(query, page, limit)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "published stories", err)
	}
	return result, nil
}

// ListByStatus is the moderation queue: admin-only, one status at a time.
// DRAFT is deliberately absent from the accepted set; drafts belong to their
// authors, not to the queue.
func (s *StoryService) ListByStatus(actor *models.Actor, status string, page, limit int) (*database.StoryPage, error) {
	if err := CanModerate(actor); err != nil {
		return nil, err
	}

	parsed := models.StatusPendingReview
	if status != "" {
		var ok bool
		parsed, ok = models.ParseStoryStatus(status)
		if !ok || parsed == models.StatusDraft {
			return nil, errs.NewInvalidFieldError("status", "must be one of PENDING_REVIEW, PUBLISHED, REJECTED")
		}
	}

	page, limit = sanitizePage(page, limit)
	result, err := s.stories.ListByStatus(parsed, page, limit)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "stories by status", err)
	}
	return result, nil
}

// ListByAuthor returns the actor's own stories in every status.
func (s *StoryService) ListByAuthor(actor *models.Actor, page, limit int) (*database.StoryPage, error) {
	if actor == nil {
		return nil, errs.NewUnauthorizedError("sign in to list your stories")
	}
	page, limit = sanitizePage(page, limit)
	result, err := s.stories.ListByAuthor(actor.ID, page, limit)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "stories by author", err)
	}
	return result, nil
}

func (s *StoryService) load(id uuid.UUID) (*models.Story, error) {
	story, err := s.stories.FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "story", err)
	}
	if story == nil {
		return nil, errs.NewNotFound("story")
	}
	return story, nil
}

func (s *StoryService) reload(id uuid.UUID) (*models.Story, error) {
	story, err := s.stories.FindByID(id)
	if err != nil {
		return nil, errs.NewDatabaseError("reload", "story", err)
	}
	if story == nil {
		return nil, errs.NewNotFound("story")
	}
	return story, nil
}

func sanitizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
