package models

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CoverImageURL string    `json:"cover_image_url"`
	CoverKey      string    `json:"-"`
	IsPublished   bool      `json:"is_published"`
	CreatedBy     uuid.UUID `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CourseUpdate carries the mutable course fields. Nil means "leave as is".
type CourseUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublished *bool   `json:"is_published,omitempty"`
}

// CourseSummary is the admin listing row: course plus its creator
// and how many modules it holds.
type CourseSummary struct {
	Course
	CreatorEmail    string `json:"creator_email"`
	CreatorUsername string `json:"creator_username"`
	ModuleCount     int    `json:"module_count"`
}

// CourseContent is a course with its modules and their lessons,
// both sorted ascending by order index.
type CourseContent struct {
	Course  Course              `json:"course"`
	Modules []ModuleWithLessons `json:"modules"`
}

type ModuleWithLessons struct {
	Module  Module   `json:"module"`
	Lessons []Lesson `json:"lessons"`
}
