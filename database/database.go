package database

import (
	"github.com/pomnim/backend/models"
	"gorm.io/gorm"
)

type Database struct {
	storyRepo *StoryRepo
	userRepo  *UserRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		storyRepo: NewStoryRepo(db),
		userRepo:  NewUserRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) StoryRepo() *StoryRepo {
	return d.storyRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

// Migrate creates or updates the schema for all entities. Image rows carry a
// cascading foreign key to their story, so a story delete removes them at the
// database level as well.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Story{}, &models.Image{})
}
