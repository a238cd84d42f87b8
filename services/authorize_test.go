package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pomnim/backend/errs"
	"github.com/pomnim/backend/models"
	"github.com/stretchr/testify/assert"
)

func TestCanRead(t *testing.T) {
	authorID := uuid.New()
	author := &models.Actor{ID: authorID, Role: models.RoleUser}
	admin := &models.Actor{ID: uuid.New(), Role: models.RoleAdmin}
	stranger := &models.Actor{ID: uuid.New(), Role: models.RoleUser}

	tests := []struct {
		name      string
		actor     *models.Actor
		status    models.StoryStatus
		wantErr   bool
		errorKind func(error) bool
	}{
		{"anonymous reads published", nil, models.StatusPublished, false, nil},
		{"stranger reads published", stranger, models.StatusPublished, false, nil},
		{"anonymous reads draft", nil, models.StatusDraft, true, errs.IsUnauthorized},
		{"stranger reads draft", stranger, models.StatusDraft, true, errs.IsForbidden},
		{"stranger reads pending", stranger, models.StatusPendingReview, true, errs.IsForbidden},
		{"stranger reads rejected", stranger, models.StatusRejected, true, errs.IsForbidden},
		{"author reads own draft", author, models.StatusDraft, false, nil},
		{"author reads own rejected", author, models.StatusRejected, false, nil},
		{"admin reads any draft", admin, models.StatusDraft, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			story := &models.Story{AuthorID: authorID, Status: tt.status}
			err := CanRead(tt.actor, story)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, tt.errorKind(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCanModify(t *testing.T) {
	authorID := uuid.New()
	story := &models.Story{AuthorID: authorID, Status: models.StatusDraft}

	assert.NoError(t, CanModify(&models.Actor{ID: authorID, Role: models.RoleUser}, story))
	assert.NoError(t, CanModify(&models.Actor{ID: uuid.New(), Role: models.RoleAdmin}, story))

	err := CanModify(&models.Actor{ID: uuid.New(), Role: models.RoleUser}, story)
	assert.True(t, errs.IsForbidden(err))

	err = CanModify(nil, story)
	assert.True(t, errs.IsUnauthorized(err))
}

func TestCanModerate(t *testing.T) {
	assert.NoError(t, CanModerate(&models.Actor{ID: uuid.New(), Role: models.RoleAdmin}))

	err := CanModerate(&models.Actor{ID: uuid.New(), Role: models.RoleUser})
	assert.True(t, errs.IsForbidden(err))

	err = CanModerate(nil)
	assert.True(t, errs.IsUnauthorized(err))
}

func TestCanSetPublished(t *testing.T) {
	assert.True(t, CanSetPublished(&models.Actor{ID: uuid.New(), Role: models.RoleAdmin}))
	assert.False(t, CanSetPublished(&models.Actor{ID: uuid.New(), Role: models.RoleUser}))
	assert.False(t, CanSetPublished(nil))
}
