package model

import (
	"time"
)

const QuestionTypeMultipleChoice = "multiple_choice"

type Question struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	QuizID       uint      `json:"quiz_id" gorm:"not null;index"`
	QuestionText string    `json:"question_text" gorm:"type:text;not null"`
	QuestionType string    `json:"question_type" gorm:"not null;default:'multiple_choice'"`
	Order        int       `json:"order" gorm:"column:order_index;not null"`
	Answers      []Answer  `json:"answers,omitempty" gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
