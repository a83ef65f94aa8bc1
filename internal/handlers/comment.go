package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"memehub/internal/db"
	"memehub/internal/middleware"
	"memehub/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

// CommentView 返回给客户端的评论视图
type CommentView struct {
	ID            string    `json:"id"`
	PostID        string    `json:"postId"`
	Author        string    `json:"author"`
	AuthorID      uint      `json:"authorId"`
	AvatarColor   string    `json:"avatarColor"`
	AvatarURL     string    `json:"avatarUrl,omitempty"`
	Text          string    `json:"text"`
	Likes         int       `json:"likes"`
	LikedByViewer bool      `json:"likedByViewer"`
	ParentID      *string   `json:"parentId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	Timestamp     int64     `json:"timestamp"`
}

// List GET /api/posts/:pid/comments — 按时间正序
func (h *CommentHandler) List(c *gin.Context) {
	var post models.Post
	if err := db.DB.Where("pid = ?", c.Param("pid")).First(&post).Error; err != nil {
		JSONError(c, http.StatusNotFound, "post not found")
		return
	}

	var comments []models.Comment
	if err := db.DB.Preload("User").Where("post_id = ?", post.ID).
		Order("created_at ASC, id ASC").Find(&comments).Error; err != nil {
		ServerError(c, err)
		return
	}

	viewerID := uint(0)
	if viewer := middleware.CurrentUser(c); viewer != nil {
		viewerID = viewer.ID
	}

	views, err := h.buildViews(post, comments, viewerID)
	if err != nil {
		ServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *CommentHandler) buildViews(post models.Post, comments []models.Comment, viewerID uint) ([]CommentView, error) {
	views := make([]CommentView, 0, len(comments))
	if len(comments) == 0 {
		return views, nil
	}

	ids := make([]uint, len(comments))
	cidByID := make(map[uint]string, len(comments))
	for i, cm := range comments {
		ids[i] = cm.ID
		cidByID[cm.ID] = cm.Cid
	}

	// 批量统计评论赞数
	type countRow struct {
		CommentID uint
		Count     int
	}
	var rows []countRow
	if err := db.DB.Model(&models.CommentLike{}).
		Select("comment_id, COUNT(*) as count").
		Where("comment_id IN ?", ids).
		Group("comment_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	likeCounts := make(map[uint]int, len(rows))
	for _, r := range rows {
		likeCounts[r.CommentID] = r.Count
	}

	likedSet := make(map[uint]bool)
	if viewerID != 0 {
		var likedIDs []uint
		if err := db.DB.Model(&models.CommentLike{}).
			Where("user_id = ? AND comment_id IN ?", viewerID, ids).
			Pluck("comment_id", &likedIDs).Error; err != nil {
			return nil, err
		}
		for _, id := range likedIDs {
			likedSet[id] = true
		}
	}

	for _, cm := range comments {
		v := CommentView{
			ID:            cm.Cid,
			PostID:        post.Pid,
			Author:        cm.User.Username,
			AuthorID:      cm.UserID,
			AvatarColor:   cm.User.AvatarColor,
			AvatarURL:     cm.User.AvatarURL,
			Text:          cm.Text,
			Likes:         likeCounts[cm.ID],
			LikedByViewer: likedSet[cm.ID],
			CreatedAt:     cm.CreatedAt,
			Timestamp:     cm.CreatedAt.UnixMilli(),
		}
		if cm.ParentID != nil {
			if cid, ok := cidByID[*cm.ParentID]; ok {
				v.ParentID = &cid
			}
		}
		views = append(views, v)
	}
	return views, nil
}

type createCommentRequest struct {
	Text     string `json:"text"`
	ParentID string `json:"parentId"`
}

// Create POST /api/posts/:pid/comments
// 回复只嵌套一层：对回复的回复会被挂到它的根评论上
func (h *CommentHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var post models.Post
	if err := db.DB.Where("pid = ?", c.Param("pid")).First(&post).Error; err != nil {
		JSONError(c, http.StatusNotFound, "post not found")
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		JSONError(c, http.StatusBadRequest, "comment text is required")
		return
	}

	var parentID *uint
	if req.ParentID != "" {
		var parent models.Comment
		if err := db.DB.Where("cid = ? AND post_id = ?", req.ParentID, post.ID).
			First(&parent).Error; err != nil {
			JSONError(c, http.StatusNotFound, "parent comment not found")
			return
		}
		rootID := parent.ID
		if parent.ParentID != nil {
			rootID = *parent.ParentID
		}
		parentID = &rootID
	}

	comment := models.Comment{
		Cid:      uuid.NewString(),
		PostID:   post.ID,
		UserID:   user.ID,
		ParentID: parentID,
		Text:     text,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		ServerError(c, err)
		return
	}

	comment.User = *user
	views, err := h.buildViews(post, []models.Comment{comment}, user.ID)
	if err != nil {
		ServerError(c, err)
		return
	}
	view := views[0]
	if parentID != nil {
		var parent models.Comment
		if err := db.DB.First(&parent, *parentID).Error; err == nil {
			view.ParentID = &parent.Cid
		}
	}
	c.JSON(http.StatusCreated, view)
}

// ToggleLike POST /api/comments/:cid/like
func (h *CommentHandler) ToggleLike(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var comment models.Comment
	if err := db.DB.Where("cid = ?", c.Param("cid")).First(&comment).Error; err != nil {
		JSONError(c, http.StatusNotFound, "comment not found")
		return
	}

	var existing models.CommentLike
	err := db.DB.Where("user_id = ? AND comment_id = ?", user.ID, comment.ID).First(&existing).Error
	if err == nil {
		if err := db.DB.Delete(&existing).Error; err != nil {
			ServerError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"liked": false})
		return
	}

	like := models.CommentLike{UserID: user.ID, CommentID: comment.ID}
	if err := db.DB.Create(&like).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			ServerError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"liked": true})
}
