package handlers

import (
	"net/http"

	"memehub/internal/db"
	"memehub/internal/middleware"
	"memehub/internal/models"
	"memehub/internal/services"
	"memehub/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// GetByID GET /api/users/id/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id := utils.StringToInt(c.Param("id"))

	var user models.User
	if err := db.DB.First(&user, id).Error; err != nil {
		JSONError(c, http.StatusNotFound, "user not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetByUsername GET /api/users/:username
func (h *UserHandler) GetByUsername(c *gin.Context) {
	var user models.User
	if err := db.DB.Where("username = ?", c.Param("username")).First(&user).Error; err != nil {
		JSONError(c, http.StatusNotFound, "user not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Stats GET /api/users/:username/stats — 发帖数和累计获赞
func (h *UserHandler) Stats(c *gin.Context) {
	var user models.User
	if err := db.DB.Where("username = ?", c.Param("username")).First(&user).Error; err != nil {
		JSONError(c, http.StatusNotFound, "user not found")
		return
	}

	var postCount int64
	if err := db.DB.Model(&models.Post{}).Where("user_id = ?", user.ID).
		Count(&postCount).Error; err != nil {
		ServerError(c, err)
		return
	}

	var totalLikes int64
	if err := db.DB.Model(&models.PostLike{}).
		Joins("JOIN posts ON posts.id = post_likes.post_id").
		Where("posts.user_id = ?", user.ID).
		Count(&totalLikes).Error; err != nil {
		ServerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"postCount": postCount, "totalLikes": totalLikes})
}

// Posts GET /api/users/:username/posts — 该作者的全部帖子，按时间倒序
func (h *UserHandler) Posts(c *gin.Context) {
	var user models.User
	if err := db.DB.Where("username = ?", c.Param("username")).First(&user).Error; err != nil {
		JSONError(c, http.StatusNotFound, "user not found")
		return
	}

	var posts []models.Post
	if err := db.DB.Preload("User").Where("user_id = ?", user.ID).
		Order("created_at DESC").Find(&posts).Error; err != nil {
		ServerError(c, err)
		return
	}

	viewerID := uint(0)
	if viewer := middleware.CurrentUser(c); viewer != nil {
		viewerID = viewer.ID
	}

	views, err := services.BuildPostViews(posts, viewerID, false)
	if err != nil {
		ServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

type updateUserRequest struct {
	Description *string              `json:"description"`
	AvatarURL   *string              `json:"avatarUrl"`
	BannerURL   *string              `json:"bannerUrl"`
	Settings    *models.UserSettings `json:"settings"`
}

// Update PUT /api/users/:id — 只能改自己的资料；设置是封闭枚举，非法值 400
func (h *UserHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id := utils.StringToInt(c.Param("id"))

	if uint(id) != user.ID {
		JSONError(c, http.StatusForbidden, "cannot edit another user's profile")
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	updates := map[string]interface{}{}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.BannerURL != nil {
		updates["banner_url"] = *req.BannerURL
	}
	if req.Settings != nil {
		if err := req.Settings.Validate(); err != nil {
			JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		updates["settings"] = *req.Settings
	}

	if len(updates) > 0 {
		if err := db.DB.Model(user).Updates(updates).Error; err != nil {
			ServerError(c, err)
			return
		}
	}

	var updated models.User
	if err := db.DB.First(&updated, user.ID).Error; err != nil {
		ServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
