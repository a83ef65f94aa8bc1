package handlers

import (
	"net/http"
	"strings"

	"memehub/internal/db"
	"memehub/internal/middleware"
	"memehub/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TemplateHandler struct{}

func NewTemplateHandler() *TemplateHandler {
	return &TemplateHandler{}
}

// List GET /api/templates?scope=public|mine
func (h *TemplateHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	query := db.DB.Preload("Uploader").Order("created_at DESC")
	if c.Query("scope") == "mine" {
		query = query.Where("uploader_id = ?", user.ID)
	} else {
		query = query.Where("is_public = ?", true)
	}

	var templates []models.Template
	if err := query.Find(&templates).Error; err != nil {
		ServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

type createTemplateRequest struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	IsPublic bool   `json:"isPublic"`
}

// Create POST /api/templates
func (h *TemplateHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || req.URL == "" {
		JSONError(c, http.StatusBadRequest, "name and url are required")
		return
	}

	template := models.Template{
		Tid:        uuid.NewString(),
		Name:       name,
		URL:        req.URL,
		UploaderID: user.ID,
		IsPublic:   req.IsPublic,
	}
	if err := db.DB.Create(&template).Error; err != nil {
		ServerError(c, err)
		return
	}
	template.Uploader = *user
	c.JSON(http.StatusCreated, template)
}

// Delete DELETE /api/templates/:tid — 上传者或管理员
func (h *TemplateHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var template models.Template
	if err := db.DB.Where("tid = ?", c.Param("tid")).First(&template).Error; err != nil {
		JSONError(c, http.StatusNotFound, "template not found")
		return
	}
	if template.UploaderID != user.ID && user.Role != "admin" {
		JSONError(c, http.StatusForbidden, "not allowed to delete this template")
		return
	}

	if err := db.DB.Delete(&template).Error; err != nil {
		ServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// TogglePublish PATCH /api/templates/:tid/publish — 仅上传者
func (h *TemplateHandler) TogglePublish(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var template models.Template
	if err := db.DB.Where("tid = ?", c.Param("tid")).First(&template).Error; err != nil {
		JSONError(c, http.StatusNotFound, "template not found")
		return
	}
	if template.UploaderID != user.ID {
		JSONError(c, http.StatusForbidden, "not the uploader")
		return
	}

	isPublic := !template.IsPublic
	if err := db.DB.Model(&template).Update("is_public", isPublic).Error; err != nil {
		ServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isPublic": isPublic})
}
