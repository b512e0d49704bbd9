package models

import (
	"time"

	"github.com/google/uuid"
)

type Enrollment struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	CourseID   uuid.UUID `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// Enrollee is an enrollment joined with the enrolled user's profile,
// used by the admin course view.
type Enrollee struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	EnrolledAt   time.Time `json:"enrolled_at"`
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
}

// EnrolledCourse is a course the user is enrolled in together with
// their completion percentage.
type EnrolledCourse struct {
	Course     Course    `json:"course"`
	EnrolledAt time.Time `json:"enrolled_at"`
	Completion float64   `json:"completion"`
}
