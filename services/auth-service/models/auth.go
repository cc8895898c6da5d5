package models

import (
	"time"

	usermodels "github.com/RigelNana/arktutor/services/user-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Credential 仅存储登录凭据，用户资料在 user-service 的 users 表
type Credential struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Username     string    `gorm:"size:150;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	User *usermodels.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Credential) TableName() string { return "user_auth" }

func (c *Credential) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func All() []any {
	return []any{&Credential{}}
}
