package model

import (
	"time"
)

// Quiz is created only by the generation pipeline, as one unit together with
// its questions and answers. Deleting a quiz removes the whole hierarchy.
type Quiz struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	UserID      uint       `json:"user_id" gorm:"not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description" gorm:"size:500"`
	YoutubeURL  string     `json:"video_url" gorm:"not null"`
	Transcript  string     `json:"-" gorm:"type:text"`
	Questions   []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
