package models

import (
	"time"
)

// Report 帖子举报。(PostID, UserID) 唯一索引在存储层挡住重复举报，
// 应用层把唯一冲突翻译成 409，不做先查后插。
type Report struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_report_post_user" json:"post_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"post"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_report_post_user" json:"user_id"` // Reporter
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Reason    string    `gorm:"size:200;not null" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// UserReport 用户主页举报，约束同 Report
type UserReport struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TargetUserID uint      `gorm:"not null;index;uniqueIndex:idx_user_report_pair" json:"target_user_id"`
	TargetUser   User      `gorm:"foreignKey:TargetUserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"target_user"`
	ReporterID   uint      `gorm:"not null;index;uniqueIndex:idx_user_report_pair" json:"reporter_id"`
	Reporter     User      `gorm:"foreignKey:ReporterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reporter"`
	Reason       string    `gorm:"size:200;not null" json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}
