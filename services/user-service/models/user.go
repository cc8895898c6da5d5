package models

import (
	"strings"

	"github.com/google/uuid"
)

// Role 决定用户扩展记录所在的表，创建后不可变
type Role string

const (
	RoleUndefined Role = "UNDEFINED"
	RoleStudent   Role = "student"
	RoleTeacher   Role = "teacher"
)

// ParseRole accepts the wire spelling of a role. UNDEFINED is never a valid
// role for a new account.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleTeacher:
		return RoleTeacher, true
	default:
		return RoleUndefined, false
	}
}

type User struct {
	Base
	FirstName string `gorm:"size:50;not null" json:"first_name"`
	LastName  string `gorm:"size:50;not null" json:"last_name"`
	Role      Role   `gorm:"type:varchar(16);not null;index" json:"user_type"`

	// 扩展记录的主键即 users.id，删除用户时一并删除
	StudentProfile *StudentProfile `gorm:"foreignKey:ID;constraint:OnDelete:CASCADE" json:"-"`
	TeacherProfile *TeacherProfile `gorm:"foreignKey:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// StudentProfile 与 users 共用主键
type StudentProfile struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AssignedTeacherID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_teacher_id,omitempty"`

	AssignedTeacher *TeacherProfile `gorm:"foreignKey:AssignedTeacherID;constraint:OnDelete:SET NULL" json:"-"`
}

func (StudentProfile) TableName() string { return "students" }

// TeacherProfile 与 users 共用主键
type TeacherProfile struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
}

func (TeacherProfile) TableName() string { return "teachers" }
