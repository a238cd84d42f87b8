package services

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pomnim/backend/database"
	"github.com/pomnim/backend/errs"
	"github.com/pomnim/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStoryStore keeps stories in memory so the state machine can be
// exercised without postgres. Query semantics (filtering, ordering,
// pagination) are covered by the repository integration tests.
type fakeStoryStore struct {
	stories map[uuid.UUID]*models.Story
}

func newFakeStoryStore() *fakeStoryStore {
	return &fakeStoryStore{stories: make(map[uuid.UUID]*models.Story)}
}

func copyStory(s *models.Story) *models.Story {
	dup := *s
	dup.Images = append([]models.Image(nil), s.Images...)
	return &dup
}

func (f *fakeStoryStore) FindByID(id uuid.UUID) (*models.Story, error) {
	story, ok := f.stories[id]
	if !ok {
		return nil, nil
	}
	return copyStory(story), nil
}

func (f *fakeStoryStore) Add(story *models.Story) error {
	f.stories[story.ID] = copyStory(story)
	return nil
}

func (f *fakeStoryStore) Update(story *models.Story) error {
	existing, ok := f.stories[story.ID]
	if !ok {
		return fmt.Errorf("story %s does not exist", story.ID)
	}
	images := existing.Images
	f.stories[story.ID] = copyStory(story)
	f.stories[story.ID].Images = images
	return nil
}

func (f *fakeStoryStore) ReplaceImages(storyID uuid.UUID, urls []string) error {
	story, ok := f.stories[storyID]
	if !ok {
		return fmt.Errorf("story %s does not exist", storyID)
	}
	story.Images = nil
	for _, url := range urls {
		story.Images = append(story.Images, models.Image{ID: uuid.New(), URL: url, StoryID: storyID})
	}
	return nil
}

func (f *fakeStoryStore) Delete(id uuid.UUID) error {
	delete(f.stories, id)
	return nil
}

func (f *fakeStoryStore) SetAudioURL(id uuid.UUID, audioURL string) error {
	story, ok := f.stories[id]
	if !ok {
		return fmt.Errorf("story %s does not exist", id)
	}
	story.AudioURL = &audioURL
	return nil
}

func (f *fakeStoryStore) list(match func(*models.Story) bool, page, limit int) (*database.StoryPage, error) {
	var matched []*models.Story
	for _, story := range f.stories {
		if match(story) {
			matched = append(matched, copyStory(story))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})

	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &database.StoryPage{
		Stories:    matched[start:end],
		Total:      int64(total),
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (f *fakeStoryStore) ListPublished(query string, page, limit int) (*database.StoryPage, error) {
	return f.list(func(s *models.Story) bool { return s.Status == models.StatusPublished }, page, limit)
}

func (f *fakeStoryStore) ListByStatus(status models.StoryStatus, page, limit int) (*database.StoryPage, error) {
	return f.list(func(s *models.Story) bool { return s.Status == status }, page, limit)
}

func (f *fakeStoryStore) ListByAuthor(authorID uuid.UUID, page, limit int) (*database.StoryPage, error) {
	return f.list(func(s *models.Story) bool { return s.AuthorID == authorID }, page, limit)
}

func strPtr(s string) *string { return &s }

func testActors() (author, admin, other *models.Actor) {
	author = &models.Actor{ID: uuid.New(), Role: models.RoleUser}
	admin = &models.Actor{ID: uuid.New(), Role: models.RoleAdmin}
	other = &models.Actor{ID: uuid.New(), Role: models.RoleUser}
	return author, admin, other
}

func validInput() StoryInput {
	return StoryInput{
		Title:    "Мой дед",
		FullName: "Иванов И.И.",
		Content:  "Он прошёл всю войну.",
	}
}

func TestCreateDraft(t *testing.T) {
	author, _, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	story, err := svc.Create(author, validInput())
	require.NoError(t, err)

	assert.Equal(t, models.StatusDraft, story.Status)
	assert.False(t, story.Published)
	assert.Equal(t, author.ID, story.AuthorID)
	assert.Equal(t, "Мой дед", story.Title)
}

func TestCreateWithPublishIntentGoesToPendingReview(t *testing.T) {
	author, _, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	input := validInput()
	input.Publish = true

	story, err := svc.Create(author, input)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPendingReview, story.Status)
	// The persisted flag stays false until a moderator approves.
	assert.False(t, story.Published)
}

func TestCreateStoresImages(t *testing.T) {
	author, _, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	input := validInput()
	input.ImageURLs = []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}

	story, err := svc.Create(author, input)
	require.NoError(t, err)

	require.Len(t, story.Images, 2)
	assert.Equal(t, "https://cdn.example.com/a.jpg", story.Cover().URL)
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	author, _, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	for _, tc := range []struct {
		field  string
		mutate func(*StoryInput)
	}{
		{"title", func(in *StoryInput) { in.Title = "" }},
		{"fullName", func(in *StoryInput) { in.FullName = "" }},
		{"content", func(in *StoryInput) { in.Content = "" }},
	} {
		t.Run(tc.field, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)

			_, err := svc.Create(author, input)
			require.Error(t, err)
			assert.True(t, errs.IsMissingRequiredFieldError(err))
		})
	}
}

func TestCreateRequiresAuthentication(t *testing.T) {
	svc := NewStoryService(newFakeStoryStore())

	_, err := svc.Create(nil, validInput())
	require.Error(t, err)
	assert.True(t, errs.IsUnauthorized(err))
}

func TestEditDraftWithPublishIntent(t *testing.T) {
	author, _, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	story, err := svc.Create(author, validInput())
	require.NoError(t, err)

	input := validInput()
	input.Publish = true

	edited, err := svc.Edit(author, story.ID, input)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPendingReview, edited.Status)
	assert.False(t, edited.Published)
}

func TestEditPendingStoryKeepsStatus(t *testing.T) {
	author, _, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	input := validInput()
	input.Publish = true
	story, err := svc.Create(author, input)
	require.NoError(t, err)

	// Re-editing while pending must not reset the status.
	input.Content = "Дополненный рассказ."
	edited, err := svc.Edit(author, story.ID, input)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPendingReview, edited.Status)
	assert.Equal(t, "Дополненный рассказ.", edited.Content)
}

func TestEditPublishedStoryByAuthorStaysPublished(t *testing.T) {
	author, admin, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	input := validInput()
	input.Publish = true
	story, err := svc.Create(author, input)
	require.NoError(t, err)

	_, err = svc.Moderate(admin, story.ID, true, nil)
	require.NoError(t, err)

	// Author edits without publish intent; status and visibility survive.
	edited, err := svc.Edit(author, story.ID, validInput())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPublished, edited.Status)
	assert.True(t, edited.Published)
}

func TestEditRejectedStoryDoesNotReenterQueue(t *testing.T) {
	author, admin, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	input := validInput()
	input.Publish = true
	story, err := svc.Create(author, input)
	require.NoError(t, err)

	_, err = svc.Moderate(admin, story.ID, false, strPtr("нужны фото"))
	require.NoError(t, err)

	input.Publish = true
	edited, err := svc.Edit(author, story.ID, input)
	require.NoError(t, err)

	// Only explicit moderation moves a post-moderation story.
	assert.Equal(t, models.StatusRejected, edited.Status)
	assert.False(t, edited.Published)
}

func TestAdminCanSetPublishedDirectly(t *testing.T) {
	author, admin, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	input := validInput()
	input.Publish = true
	story, err := svc.Create(author, input)
	require.NoError(t, err)

	_, err = svc.Moderate(admin, story.ID, true, nil)
	require.NoError(t, err)

	// Admin edit with publish=false clears the flag; status is untouched.
	edited, err := svc.Edit(admin, story.ID, validInput())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPublished, edited.Status)
	assert.False(t, edited.Published)
}

func TestEditReplacesImagesWholesale(t *testing.T) {
	author, _, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	input := validInput()
	input.ImageURLs = []string{"https://cdn.example.com/old1.jpg", "https://cdn.example.com/old2.jpg"}
	story, err := svc.Create(author, input)
	require.NoError(t, err)

	input.ImageURLs = []string{"https://cdn.example.com/new.jpg"}
	edited, err := svc.Edit(author, story.ID, input)
	require.NoError(t, err)

	require.Len(t, edited.Images, 1)
	assert.Equal(t, "https://cdn.example.com/new.jpg", edited.Images[0].URL)
}

func TestEditWithoutImagesLeavesImagesUntouched(t *testing.T) {
	author, _, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	input := validInput()
	input.ImageURLs = []string{"https://cdn.example.com/keep.jpg"}
	story, err := svc.Create(author, input)
	require.NoError(t, err)

	input.ImageURLs = nil
	edited, err := svc.Edit(author, story.ID, input)
	require.NoError(t, err)

	require.Len(t, edited.Images, 1)
	assert.Equal(t, "https://cdn.example.com/keep.jpg", edited.Images[0].URL)
}

func TestEditIsIdempotent(t *testing.T) {
	author, _, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	story, err := svc.Create(author, validInput())
	require.NoError(t, err)

	input := validInput()
	input.Rank = strPtr("сержант")
	input.ImageURLs = []string{"https://cdn.example.com/a.jpg"}

	first, err := svc.Edit(author, story.ID, input)
	require.NoError(t, err)
	second, err := svc.Edit(author, story.ID, input)
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Published, second.Published)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Rank, second.Rank)
	require.Len(t, second.Images, 1)
	assert.Equal(t, first.Images[0].URL, second.Images[0].URL)
}

func TestEditByStrangerIsForbidden(t *testing.T) {
	author, _, other := testActors()
	svc := NewStoryService(newFakeStoryStore())

	story, err := svc.Create(author, validInput())
	require.NoError(t, err)

	_, err = svc.Edit(other, story.ID, validInput())
	require.Error(t, err)
	assert.True(t, errs.IsForbidden(err))
}

func TestEditMissingStoryIsNotFound(t *testing.T) {
	author, _, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	_, err := svc.Edit(author, uuid.New(), validInput())
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestModerateApprove(t *testing.T) {
	author, admin, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	input := validInput()
	input.Publish = true
	story, err := svc.Create(author, input)
	require.NoError(t, err)

	moderated, err := svc.Moderate(admin, story.ID, true, nil)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPublished, moderated.Status)
	assert.True(t, moderated.Published)
	require.NotNil(t, moderated.ModeratorID)
	assert.Equal(t, admin.ID, *moderated.ModeratorID)
	require.NotNil(t, moderated.ModeratedAt)
	assert.WithinDuration(t, time.Now(), *moderated.ModeratedAt, time.Minute)
}

func TestModerateReject(t *testing.T) {
	author, admin, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	input := validInput()
	input.Publish = true
	story, err := svc.Create(author, input)
	require.NoError(t, err)

	moderated, err := svc.Moderate(admin, story.ID, false, strPtr("нужны фото"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, moderated.Status)
	assert.False(t, moderated.Published)
	require.NotNil(t, moderated.ModerationComment)
	assert.Equal(t, "нужны фото", *moderated.ModerationComment)
}

func TestModerateIsAdminOnly(t *testing.T) {
	author, _, other := testActors()
	svc := NewStoryService(newFakeStoryStore())

	input := validInput()
	input.Publish = true
	story, err := svc.Create(author, input)
	require.NoError(t, err)

	// The author cannot approve their own story.
	_, err = svc.Moderate(author, story.ID, true, nil)
	require.Error(t, err)
	assert.True(t, errs.IsForbidden(err))

	_, err = svc.Moderate(other, story.ID, true, nil)
	require.Error(t, err)
	assert.True(t, errs.IsForbidden(err))

	_, err = svc.Moderate(nil, story.ID, true, nil)
	require.Error(t, err)
	assert.True(t, errs.IsUnauthorized(err))
}

func TestRemoderationOverwritesDecision(t *testing.T) {
	author, admin, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	input := validInput()
	input.Publish = true
	story, err := svc.Create(author, input)
	require.NoError(t, err)

	published, err := svc.Moderate(admin, story.ID, true, nil)
	require.NoError(t, err)
	require.Equal(t, models.StatusPublished, published.Status)

	// Re-rejecting an approved story takes it back off the public site.
	rejected, err := svc.Moderate(admin, story.ID, false, strPtr("снято по просьбе семьи"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, rejected.Status)
	assert.False(t, rejected.Published)
	assert.Equal(t, "снято по просьбе семьи", *rejected.ModerationComment)
}

func TestDeleteRemovesStoryAndImages(t *testing.T) {
	author, _, _ := testActors()
	store := newFakeStoryStore()
	svc := NewStoryService(store)

	input := validInput()
	input.ImageURLs = []string{"https://cdn.example.com/a.jpg"}
	story, err := svc.Create(author, input)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(author, story.ID))

	_, err = svc.Get(author, story.ID)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Empty(t, store.stories)
}

func TestDeleteByStrangerIsForbidden(t *testing.T) {
	author, _, other := testActors()
	svc := NewStoryService(newFakeStoryStore())

	story, err := svc.Create(author, validInput())
	require.NoError(t, err)

	err = svc.Delete(other, story.ID)
	require.Error(t, err)
	assert.True(t, errs.IsForbidden(err))
}

func TestAdminCanDeleteAnyStory(t *testing.T) {
	author, admin, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	story, err := svc.Create(author, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(admin, story.ID))
}

func TestGetVisibility(t *testing.T) {
	author, admin, other := testActors()
	svc := NewStoryService(newFakeStoryStore())

	draft, err := svc.Create(author, validInput())
	require.NoError(t, err)

	// Draft: author and admin only.
	_, err = svc.Get(nil, draft.ID)
	assert.True(t, errs.IsUnauthorized(err))

	_, err = svc.Get(other, draft.ID)
	assert.True(t, errs.IsForbidden(err))

	_, err = svc.Get(author, draft.ID)
	assert.NoError(t, err)

	_, err = svc.Get(admin, draft.ID)
	assert.NoError(t, err)

	// Published: everyone, including anonymous.
	input := validInput()
	input.Publish = true
	pending, err := svc.Create(author, input)
	require.NoError(t, err)
	_, err = svc.Moderate(admin, pending.ID, true, nil)
	require.NoError(t, err)

	_, err = svc.Get(nil, pending.ID)
	assert.NoError(t, err)
	_, err = svc.Get(other, pending.ID)
	assert.NoError(t, err)
}

func TestAttachAudio(t *testing.T) {
	author, _, other := testActors()
	svc := NewStoryService(newFakeStoryStore())

	story, err := svc.Create(author, validInput())
	require.NoError(t, err)

	err = svc.AttachAudio(author, story.ID, "")
	require.Error(t, err)
	assert.True(t, errs.IsMissingRequiredFieldError(err))

	err = svc.AttachAudio(other, story.ID, "https://storage.example.com/tts/1.mp3")
	require.Error(t, err)
	assert.True(t, errs.IsForbidden(err))

	require.NoError(t, svc.AttachAudio(author, story.ID, "https://storage.example.com/tts/1.mp3"))

	reloaded, err := svc.Get(author, story.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.AudioURL)
	assert.Equal(t, "https://storage.example.com/tts/1.mp3", *reloaded.AudioURL)
}

func TestListByStatusValidation(t *testing.T) {
	_, admin, other := testActors()
	svc := NewStoryService(newFakeStoryStore())

	_, err := svc.ListByStatus(other, "PENDING_REVIEW", 1, 10)
	require.Error(t, err)
	assert.True(t, errs.IsForbidden(err))

	_, err = svc.ListByStatus(admin, "SHADOWBANNED", 1, 10)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidFieldError(err))

	// Drafts belong to their authors, not the queue.
	_, err = svc.ListByStatus(admin, "DRAFT", 1, 10)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidFieldError(err))

	// Empty status defaults to the review queue.
	page, err := svc.ListByStatus(admin, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageLimit, page.Limit)
}

func TestListByAuthorRequiresAuthentication(t *testing.T) {
	svc := NewStoryService(newFakeStoryStore())

	_, err := svc.ListByAuthor(nil, 1, 10)
	require.Error(t, err)
	assert.True(t, errs.IsUnauthorized(err))
}

func TestListPublishedOnlyReturnsPublished(t *testing.T) {
	author, admin, _ := testActors()
	svc := NewStoryService(newFakeStoryStore())

	_, err := svc.Create(author, validInput())
	require.NoError(t, err)

	input := validInput()
	input.Publish = true
	pending, err := svc.Create(author, input)
	require.NoError(t, err)
	_, err = svc.Moderate(admin, pending.ID, true, nil)
	require.NoError(t, err)

	page, err := svc.ListPublished("", 1, 10)
	require.NoError(t, err)

	require.Len(t, page.Stories, 1)
	assert.Equal(t, pending.ID, page.Stories[0].ID)
	assert.Equal(t, int64(1), page.Total)
}
