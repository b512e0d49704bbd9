package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	LessonTypeText  = "text"
	LessonTypeVideo = "video"
)

type Lesson struct {
	ID        uuid.UUID `json:"id"`
	ModuleID  uuid.UUID `json:"module_id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Content   *string   `json:"content,omitempty"`
	VideoURL  *string   `json:"video_url,omitempty"`
	VideoKey  *string   `json:"-"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LessonUpdate struct {
	Title   *string `json:"title,omitempty"`
	Type    *string `json:"type,omitempty"`
	Content *string `json:"content,omitempty"`
}
