package models

import (
	"time"

	usermodels "github.com/RigelNana/arktutor/services/user-service/models"

	"github.com/google/uuid"
)

const (
	MinScore       = 0
	MaxScore       = 100
	MaxCommentsLen = 150
)

type Grade struct {
	Base
	Date      time.Time `gorm:"not null;index" json:"date"`
	Score     float64   `gorm:"not null" json:"score"`
	Comments  *string   `gorm:"size:150" json:"comments,omitempty"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	TeacherID uuid.UUID `gorm:"type:uuid;not null;index" json:"teacher_id"`

	Student *usermodels.StudentProfile `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Teacher *usermodels.TeacherProfile `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Grade) TableName() string { return "grades" }

// GradeFilter 查询条件，nil 字段表示不过滤
type GradeFilter struct {
	TeacherID uuid.UUID
	StudentID *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	MinScore  *float64
	MaxScore  *float64
}
