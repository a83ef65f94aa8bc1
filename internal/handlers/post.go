package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"memehub/internal/db"
	"memehub/internal/middleware"
	"memehub/internal/models"
	"memehub/internal/services"
	"memehub/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// List GET /api/posts?sort=&tag=&q=&page=
// 排序、分区、分页全部交给排序引擎；匿名且无过滤的第一页走本地缓存
func (h *PostHandler) List(c *gin.Context) {
	sortMode := utils.NormalizeSort(c.DefaultQuery("sort", utils.SortHot))
	tag := c.Query("tag")
	query := c.Query("q")

	page := 1
	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}

	viewer := middleware.CurrentUser(c)
	viewerID := uint(0)
	if viewer != nil {
		viewerID = viewer.ID
	}

	cacheable := viewerID == 0 && tag == "" && query == "" && page == 1
	if cacheable {
		if cached := services.CachedFeedPage(sortMode, page); cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	result, err := services.ListPosts(services.FeedQuery{
		Sort:     sortMode,
		Tag:      tag,
		Query:    query,
		Page:     page,
		ViewerID: viewerID,
	})
	if err != nil {
		ServerError(c, err)
		return
	}

	if cacheable {
		services.CacheFeedPage(sortMode, page, result)
	}
	c.JSON(http.StatusOK, result)
}

// Detail GET /api/posts/:pid
func (h *PostHandler) Detail(c *gin.Context) {
	var post models.Post
	if err := db.DB.Preload("User").Where("pid = ?", c.Param("pid")).First(&post).Error; err != nil {
		JSONError(c, http.StatusNotFound, "post not found")
		return
	}

	viewerID := uint(0)
	if viewer := middleware.CurrentUser(c); viewer != nil {
		viewerID = viewer.ID
	}

	view, err := services.BuildPostView(post, viewerID, true)
	if err != nil {
		ServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type createPostRequest struct {
	URL         string   `json:"url"`
	Caption     string   `json:"caption"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Create POST /api/posts — 新帖一律进待审核队列（featured=false）
func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" || req.Caption == "" {
		JSONError(c, http.StatusBadRequest, "url and caption are required")
		return
	}

	post := models.Post{
		Pid:         uuid.NewString(),
		UserID:      user.ID,
		URL:         req.URL,
		Caption:     req.Caption,
		Description: req.Description,
		Featured:    false,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		tagIDs, err := services.UpsertTags(tx, req.Tags)
		if err != nil {
			return err
		}
		for _, tagID := range tagIDs {
			if err := tx.Create(&models.PostTag{PostID: post.ID, TagID: tagID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		ServerError(c, err)
		return
	}

	services.InvalidateFeedCache()

	post.User = *user
	view, err := services.BuildPostView(post, user.ID, false)
	if err != nil {
		ServerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

type updatePostRequest struct {
	Caption     *string `json:"caption"`
	Description *string `json:"description"`
}

// Update PUT /api/posts/:pid — 仅作者可改配文和描述
func (h *PostHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var post models.Post
	if err := db.DB.Where("pid = ?", c.Param("pid")).First(&post).Error; err != nil {
		JSONError(c, http.StatusNotFound, "post not found")
		return
	}
	if post.UserID != user.ID {
		JSONError(c, http.StatusForbidden, "not the author")
		return
	}

	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	updates := map[string]interface{}{}
	if req.Caption != nil {
		if *req.Caption == "" {
			JSONError(c, http.StatusBadRequest, "caption cannot be empty")
			return
		}
		updates["caption"] = *req.Caption
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) > 0 {
		if err := db.DB.Model(&post).Updates(updates).Error; err != nil {
			ServerError(c, err)
			return
		}
	}

	services.InvalidateFeedCache()

	view, err := services.BuildPostView(post, user.ID, false)
	if err != nil {
		ServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete DELETE /api/posts/:pid — 作者或管理员，连带清理从属记录
func (h *PostHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var post models.Post
	if err := db.DB.Where("pid = ?", c.Param("pid")).First(&post).Error; err != nil {
		JSONError(c, http.StatusNotFound, "post not found")
		return
	}
	if post.UserID != user.ID && user.Role != "admin" {
		JSONError(c, http.StatusForbidden, "not allowed to delete this post")
		return
	}

	if err := services.DeletePostCascade(post.ID); err != nil {
		ServerError(c, err)
		return
	}

	services.InvalidateFeedCache()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ToggleLike POST /api/posts/:pid/like — 有则删、无则建
func (h *PostHandler) ToggleLike(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var post models.Post
	if err := db.DB.Where("pid = ?", c.Param("pid")).First(&post).Error; err != nil {
		JSONError(c, http.StatusNotFound, "post not found")
		return
	}

	var existing models.PostLike
	err := db.DB.Where("user_id = ? AND post_id = ?", user.ID, post.ID).First(&existing).Error
	if err == nil {
		if err := db.DB.Delete(&existing).Error; err != nil {
			ServerError(c, err)
			return
		}
		services.InvalidateFeedCache()
		c.JSON(http.StatusOK, gin.H{"liked": false})
		return
	}

	like := models.PostLike{UserID: user.ID, PostID: post.ID}
	if err := db.DB.Create(&like).Error; err != nil {
		// 并发下撞上唯一索引说明已经点过了，当作已赞处理
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			ServerError(c, err)
			return
		}
	}
	services.InvalidateFeedCache()
	c.JSON(http.StatusOK, gin.H{"liked": true})
}
