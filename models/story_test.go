package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryJSONExposesOnlyPublicAuthorFields(t *testing.T) {
	authorID := uuid.New()
	story := Story{
		ID:       uuid.New(),
		Title:    "Мой дед",
		FullName: "Иванов И.И.",
		Content:  "Прошёл всю войну.",
		Status:   StatusPublished,
		AuthorID: authorID,
		Author:   &Author{ID: authorID, Name: "Пётр Иванов"},
	}

	raw, err := json.Marshal(story)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))

	author, ok := payload["author"].(map[string]any)
	require.True(t, ok, "author must be embedded as an object")
	assert.Equal(t, authorID.String(), author["id"])
	assert.Equal(t, "Пётр Иванов", author["name"])
	assert.NotContains(t, author, "email")
	assert.NotContains(t, author, "role")
	assert.NotContains(t, author, "passwordHash")
}

func TestParseStoryStatusRejectsUnknownValues(t *testing.T) {
	for _, valid := range []string{"DRAFT", "PENDING_REVIEW", "PUBLISHED", "REJECTED"} {
		status, ok := ParseStoryStatus(valid)
		assert.True(t, ok)
		assert.Equal(t, StoryStatus(valid), status)
	}
	for _, invalid := range []string{"", "draft", "ARCHIVED"} {
		_, ok := ParseStoryStatus(invalid)
		assert.False(t, ok, invalid)
	}
}
