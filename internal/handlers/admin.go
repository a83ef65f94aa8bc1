package handlers

import (
	"errors"
	"net/http"
	"time"

	"memehub/internal/db"
	"memehub/internal/middleware"
	"memehub/internal/models"
	"memehub/internal/services"
	"memehub/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// ListPosts GET /api/admin/posts — 全部帖子（含队列中的）带举报数，按时间倒序
func (h *AdminHandler) ListPosts(c *gin.Context) {
	admin := middleware.CurrentUser(c)

	var posts []models.Post
	if err := db.DB.Preload("User").Order("created_at DESC").Find(&posts).Error; err != nil {
		ServerError(c, err)
		return
	}

	views, err := services.BuildPostViews(posts, admin.ID, false)
	if err != nil {
		ServerError(c, err)
		return
	}

	// 批量统计举报数
	type countRow struct {
		PostID uint
		Count  int
	}
	var rows []countRow
	if err := db.DB.Model(&models.Report{}).
		Select("post_id, COUNT(*) as count").
		Group("post_id").
		Scan(&rows).Error; err != nil {
		ServerError(c, err)
		return
	}
	reportCounts := make(map[uint]int, len(rows))
	for _, r := range rows {
		reportCounts[r.PostID] = r.Count
	}

	type adminPostView struct {
		services.PostView
		ReportCount int `json:"reportCount"`
	}
	out := make([]adminPostView, len(views))
	for i, v := range views {
		out[i] = adminPostView{PostView: v, ReportCount: reportCounts[posts[i].ID]}
	}
	c.JSON(http.StatusOK, out)
}

// FeaturePost POST /api/admin/posts/:pid/feature
// 精选开关是可逆的：再点一次就取消精选、帖子回到队列
func (h *AdminHandler) FeaturePost(c *gin.Context) {
	pid := c.Param("pid")

	var featured bool
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Where("pid = ?", pid).First(&post).Error; err != nil {
			return err
		}
		featured = !post.Featured
		return tx.Model(&post).Update("featured", featured).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			JSONError(c, http.StatusNotFound, "post not found")
			return
		}
		ServerError(c, err)
		return
	}

	services.InvalidateFeedCache()
	c.JSON(http.StatusOK, gin.H{"featured": featured})
}

// DeletePost DELETE /api/admin/posts/:pid
func (h *AdminHandler) DeletePost(c *gin.Context) {
	var post models.Post
	if err := db.DB.Where("pid = ?", c.Param("pid")).First(&post).Error; err != nil {
		JSONError(c, http.StatusNotFound, "post not found")
		return
	}

	if err := services.DeletePostCascade(post.ID); err != nil {
		ServerError(c, err)
		return
	}

	services.InvalidateFeedCache()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type createReportRequest struct {
	PostID string `json:"postId"`
	Reason string `json:"reason"`
}

// CreateReport POST /api/admin/reports — 任何登录用户都可以举报。
// 重复举报靠 (post_id, user_id) 唯一索引挡住，冲突即 409；
// 举报本身不影响帖子可见性，下架是管理员的独立动作。
func (h *AdminHandler) CreateReport(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PostID == "" || req.Reason == "" {
		JSONError(c, http.StatusBadRequest, "postId and reason are required")
		return
	}

	var post models.Post
	if err := db.DB.Where("pid = ?", req.PostID).First(&post).Error; err != nil {
		JSONError(c, http.StatusNotFound, "post not found")
		return
	}

	report := models.Report{
		PostID: post.ID,
		UserID: user.ID,
		Reason: req.Reason,
	}
	if err := db.DB.Create(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			JSONError(c, http.StatusConflict, "post already reported")
			return
		}
		ServerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// ListReports GET /api/admin/reports
func (h *AdminHandler) ListReports(c *gin.Context) {
	admin := middleware.CurrentUser(c)

	var reports []models.Report
	if err := db.DB.Preload("User").Preload("Post").Preload("Post.User").
		Order("created_at DESC").Find(&reports).Error; err != nil {
		ServerError(c, err)
		return
	}

	type reportView struct {
		ID        uint               `json:"id"`
		Reason    string             `json:"reason"`
		Reporter  string             `json:"reporter"`
		CreatedAt time.Time          `json:"createdAt"`
		Post      *services.PostView `json:"post"`
	}
	out := make([]reportView, 0, len(reports))
	for _, r := range reports {
		view, err := services.BuildPostView(r.Post, admin.ID, false)
		if err != nil {
			ServerError(c, err)
			return
		}
		out = append(out, reportView{
			ID:        r.ID,
			Reason:    r.Reason,
			Reporter:  r.User.Username,
			CreatedAt: r.CreatedAt,
			Post:      view,
		})
	}
	c.JSON(http.StatusOK, out)
}

// DismissReport DELETE /api/admin/reports/:id — 只删举报记录，不动帖子
func (h *AdminHandler) DismissReport(c *gin.Context) {
	id := utils.StringToInt(c.Param("id"))

	res := db.DB.Delete(&models.Report{}, id)
	if res.Error != nil {
		ServerError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		JSONError(c, http.StatusNotFound, "report not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListUsers GET /api/admin/users — 带发帖数
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := db.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		ServerError(c, err)
		return
	}

	type countRow struct {
		UserID uint
		Count  int
	}
	var rows []countRow
	if err := db.DB.Model(&models.Post{}).
		Select("user_id, COUNT(*) as count").
		Group("user_id").
		Scan(&rows).Error; err != nil {
		ServerError(c, err)
		return
	}
	postCounts := make(map[uint]int, len(rows))
	for _, r := range rows {
		postCounts[r.UserID] = r.Count
	}

	type adminUserView struct {
		models.User
		PostCount int `json:"postCount"`
	}
	out := make([]adminUserView, len(users))
	for i, u := range users {
		out[i] = adminUserView{User: u, PostCount: postCounts[u.ID]}
	}
	c.JSON(http.StatusOK, out)
}

// BanUser POST /api/admin/users/:id/ban — 封禁/解封开关。
// 管理员账号不可封禁。读和写在同一个事务里，避免并发开关互踩。
func (h *AdminHandler) BanUser(c *gin.Context) {
	id := utils.StringToInt(c.Param("id"))

	var banned bool
	var isAdmin bool
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.First(&target, id).Error; err != nil {
			return err
		}
		if target.Role == "admin" {
			isAdmin = true
			return nil
		}
		banned = !target.Banned
		return tx.Model(&target).Update("banned", banned).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			JSONError(c, http.StatusNotFound, "user not found")
			return
		}
		ServerError(c, err)
		return
	}
	if isAdmin {
		JSONError(c, http.StatusForbidden, "cannot ban an admin")
		return
	}
	c.JSON(http.StatusOK, gin.H{"banned": banned})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// SetRole POST /api/admin/users/:id/role
// 管理员不能把自己降级，防止唯一管理员把自己锁在门外
func (h *AdminHandler) SetRole(c *gin.Context) {
	admin := middleware.CurrentUser(c)
	id := utils.StringToInt(c.Param("id"))

	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role != "user" && req.Role != "admin" {
		JSONError(c, http.StatusBadRequest, "role must be user or admin")
		return
	}
	if uint(id) == admin.ID && req.Role != "admin" {
		JSONError(c, http.StatusForbidden, "cannot demote yourself")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.First(&target, id).Error; err != nil {
			return err
		}
		return tx.Model(&target).Update("role", req.Role).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			JSONError(c, http.StatusNotFound, "user not found")
			return
		}
		ServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": req.Role})
}

type createUserReportRequest struct {
	TargetUserID uint   `json:"targetUserId"`
	Reason       string `json:"reason"`
}

// CreateUserReport POST /api/admin/user-reports — 举报用户主页，约束同帖子举报
func (h *AdminHandler) CreateUserReport(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req createUserReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TargetUserID == 0 || req.Reason == "" {
		JSONError(c, http.StatusBadRequest, "targetUserId and reason are required")
		return
	}

	var target models.User
	if err := db.DB.First(&target, req.TargetUserID).Error; err != nil {
		JSONError(c, http.StatusNotFound, "user not found")
		return
	}

	report := models.UserReport{
		TargetUserID: target.ID,
		ReporterID:   user.ID,
		Reason:       req.Reason,
	}
	if err := db.DB.Create(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			JSONError(c, http.StatusConflict, "user already reported")
			return
		}
		ServerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// ListUserReports GET /api/admin/user-reports
func (h *AdminHandler) ListUserReports(c *gin.Context) {
	var reports []models.UserReport
	if err := db.DB.Preload("TargetUser").Preload("Reporter").
		Order("created_at DESC").Find(&reports).Error; err != nil {
		ServerError(c, err)
		return
	}

	type userReportView struct {
		ID         uint        `json:"id"`
		Reason     string      `json:"reason"`
		Reporter   string      `json:"reporter"`
		CreatedAt  time.Time   `json:"createdAt"`
		TargetUser models.User `json:"targetUser"`
	}
	out := make([]userReportView, 0, len(reports))
	for _, r := range reports {
		out = append(out, userReportView{
			ID:         r.ID,
			Reason:     r.Reason,
			Reporter:   r.Reporter.Username,
			CreatedAt:  r.CreatedAt,
			TargetUser: r.TargetUser,
		})
	}
	c.JSON(http.StatusOK, out)
}

// DismissUserReport DELETE /api/admin/user-reports/:id
func (h *AdminHandler) DismissUserReport(c *gin.Context) {
	id := utils.StringToInt(c.Param("id"))

	res := db.DB.Delete(&models.UserReport{}, id)
	if res.Error != nil {
		ServerError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		JSONError(c, http.StatusNotFound, "user report not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
