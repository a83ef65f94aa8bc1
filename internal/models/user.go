package models

import (
	"time"
)

type User struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Username    string       `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email       string       `gorm:"uniqueIndex;not null" json:"email"`
	Password    string       `gorm:"not null" json:"-"` // bcrypt hash
	Role        string       `gorm:"size:20;default:'user';not null" json:"role"` // user, admin
	Banned      bool         `gorm:"default:false;not null" json:"banned"`
	AvatarColor string       `gorm:"size:60" json:"avatar_color"` // 渐变色头像 class
	AvatarURL   string       `json:"avatar_url,omitempty"`
	BannerURL   string       `json:"banner_url,omitempty"`
	Description string       `gorm:"size:500" json:"description,omitempty"`
	Settings    UserSettings `gorm:"type:jsonb" json:"settings"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	// No DeletedAt for hard delete
}
