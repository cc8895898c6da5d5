package models

import (
	"time"

	usermodels "github.com/RigelNana/arktutor/services/user-service/models"

	"github.com/google/uuid"
)

type StudySession struct {
	Base
	Date           time.Time `gorm:"not null;index" json:"date"`
	StudentID      uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	LengthMinutes  int       `gorm:"not null" json:"length_minutes"`
	ReactionsTotal int       `gorm:"not null;default:0" json:"reactions_total"`

	Student *usermodels.StudentProfile `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (StudySession) TableName() string { return "sessions" }

// SessionWithStudent is a session row joined with its student's name.
type SessionWithStudent struct {
	StudySession
	StudentName string `json:"student_name"`
}

type SessionFilter struct {
	TeacherID   uuid.UUID
	StudentID   *uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
	MinDuration *int
	MaxDuration *int
}
