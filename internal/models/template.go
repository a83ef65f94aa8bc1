package models

import (
	"time"
)

// Template 梗图底图模板，与帖子相互独立
type Template struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Tid        string    `gorm:"uniqueIndex;size:36;not null" json:"tid"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	URL        string    `gorm:"not null" json:"url"`
	UploaderID uint      `gorm:"not null;index" json:"uploader_id"`
	Uploader   User      `gorm:"foreignKey:UploaderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"uploader"`
	IsPublic   bool      `gorm:"default:false;not null" json:"is_public"`
	CreatedAt  time.Time `json:"created_at"`
}
