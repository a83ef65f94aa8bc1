package handlers

import (
	"net/http"
	"strings"

	"memehub/internal/db"
	"memehub/internal/middleware"
	"memehub/internal/models"
	"memehub/internal/services"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct{}

func NewSearchHandler() *SearchHandler {
	return &SearchHandler{}
}

type searchUserView struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	AvatarColor string `json:"avatarColor"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Search GET /api/search?q= — 帖子、用户、标签的联合搜索。
// 关键词少于 2 个字符直接返回空结果，不打扰数据库。
func (h *SearchHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if len(q) < 2 {
		c.JSON(http.StatusOK, gin.H{
			"posts": []services.PostView{},
			"users": []searchUserView{},
			"tags":  []string{},
		})
		return
	}

	pattern := "%" + strings.ToLower(q) + "%"

	var posts []models.Post
	if err := db.DB.Preload("User").
		Where("posts.featured = ?", true).
		Where("(LOWER(posts.caption) LIKE ? OR EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id = posts.id AND t.name LIKE ?))",
			pattern, pattern).
		Limit(5).Find(&posts).Error; err != nil {
		ServerError(c, err)
		return
	}

	viewerID := uint(0)
	if viewer := middleware.CurrentUser(c); viewer != nil {
		viewerID = viewer.ID
	}
	postViews, err := services.BuildPostViews(posts, viewerID, false)
	if err != nil {
		ServerError(c, err)
		return
	}

	var users []models.User
	if err := db.DB.Where("LOWER(username) LIKE ?", pattern).
		Limit(5).Find(&users).Error; err != nil {
		ServerError(c, err)
		return
	}
	userViews := make([]searchUserView, len(users))
	for i, u := range users {
		userViews[i] = searchUserView{
			ID:          u.ID,
			Username:    u.Username,
			AvatarColor: u.AvatarColor,
			AvatarURL:   u.AvatarURL,
		}
	}

	var tags []string
	if err := db.DB.Model(&models.Tag{}).
		Where("name LIKE ?", pattern).
		Limit(8).Pluck("name", &tags).Error; err != nil {
		ServerError(c, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": postViews,
		"users": userViews,
		"tags":  tags,
	})
}
