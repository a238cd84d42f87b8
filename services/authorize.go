package services

import (
	"github.com/pomnim/backend/errs"
	"github.com/pomnim/backend/models"
)

// Pure authorization decisions. Each function returns nil when the operation
// is permitted; the caller performs no mutation before the check passes.

// CanRead allows anyone, including anonymous visitors, to read a published
// story. Everything else is restricted to the author and admins.
func CanRead(actor *models.Actor, story *models.Story) error {
	if story.Visible() {
		return nil
	}
	if actor == nil {
		return errs.NewUnauthorizedError("sign in to view this story")
	}
	if actor.ID == story.AuthorID || actor.IsAdmin() {
		return nil
	}
	return errs.NewForbiddenError("story is not published")
}

// CanCreate requires an authenticated actor.
func CanCreate(actor *models.Actor) error {
	if actor == nil {
		return errs.NewUnauthorizedError("sign in to submit a story")
	}
	return nil
}

// CanModify covers edit and delete: the author or an admin.
func CanModify(actor *models.Actor, story *models.Story) error {
	if actor == nil {
		return errs.NewUnauthorizedError("sign in to modify this story")
	}
	if actor.ID == story.AuthorID || actor.IsAdmin() {
		return nil
	}
	return errs.NewForbiddenError("only the author or an administrator may modify this story")
}

// CanModerate is admin-only; the author moderating their own story is still
// forbidden.
func CanModerate(actor *models.Actor) error {
	if actor == nil {
		return errs.NewUnauthorizedError("sign in to moderate")
	}
	if !actor.IsAdmin() {
		return errs.NewForbiddenError("moderation requires the ADMIN role")
	}
	return nil
}

// CanSetPublished reports whether the actor may write the `published` flag
// directly during an edit. Non-admin authors get it derived from the
// pre-edit status instead.
func CanSetPublished(actor *models.Actor) bool {
	return actor.IsAdmin()
}
