package models

import (
	"time"

	"github.com/google/uuid"
)

// Progress is keyed by (UserID, LessonID) and only ever upserted.
type Progress struct {
	UserID       uuid.UUID  `json:"user_id"`
	LessonID     uuid.UUID  `json:"lesson_id"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	LastPosition *float64   `json:"last_position,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CourseProgress is the per-course progress report: the completion
// percentage plus the raw progress rows for the course's lessons.
type CourseProgress struct {
	Completion float64    `json:"completion"`
	Lessons    []Progress `json:"lessons"`
}
