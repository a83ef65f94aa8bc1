package models

import (
	"time"
)

type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Pid         string    `gorm:"uniqueIndex;size:36;not null" json:"pid"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	URL         string    `gorm:"not null" json:"url"` // 图片地址
	Caption     string    `gorm:"not null" json:"caption"`
	Description string    `gorm:"type:text" json:"description"`
	// featured=false 表示待审核（只出现在 NOWE 队列），true 表示进入公共信息流。
	// 这是排序引擎唯一读取的可见性字段。
	Featured  bool      `gorm:"default:false;not null;index" json:"featured"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 非数据库字段，用于查询时填充
	LikeCount    int `gorm:"-" json:"like_count"`
	CommentCount int `gorm:"-" json:"comment_count"`
}
