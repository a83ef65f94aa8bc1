package router

import (
	"net/http"
	"time"

	"memehub/internal/handlers"
	"memehub/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	commentHandler := handlers.NewCommentHandler()
	userHandler := handlers.NewUserHandler()
	searchHandler := handlers.NewSearchHandler()
	templateHandler := handlers.NewTemplateHandler()
	adminHandler := handlers.NewAdminHandler()

	api := r.Group("/api")
	api.Use(middleware.LoadUser())

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC().Format(time.RFC3339)})
	})

	// 认证
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", middleware.AuthRequired(), authHandler.Me)

	// 公共读
	api.GET("/posts", postHandler.List)                    // 信息流（排序引擎）
	api.GET("/posts/:pid", postHandler.Detail)             // 帖子详情
	api.GET("/posts/:pid/comments", commentHandler.List)   // 评论列表
	api.GET("/search", searchHandler.Search)               // 联合搜索
	api.GET("/users/id/:id", userHandler.GetByID)          // 用户（按 ID）
	api.GET("/users/:username", userHandler.GetByUsername) // 用户（按用户名）
	api.GET("/users/:username/stats", userHandler.Stats)   // 用户统计
	api.GET("/users/:username/posts", userHandler.Posts)   // 用户发帖

	// 登录后
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/posts", postHandler.Create)
		authorized.PUT("/posts/:pid", postHandler.Update)
		authorized.DELETE("/posts/:pid", postHandler.Delete)
		authorized.POST("/posts/:pid/like", postHandler.ToggleLike)
		authorized.POST("/posts/:pid/comments", commentHandler.Create)
		authorized.POST("/comments/:cid/like", commentHandler.ToggleLike)
		authorized.PUT("/users/:id", userHandler.Update)

		authorized.GET("/templates", templateHandler.List)
		authorized.POST("/templates", templateHandler.Create)
		authorized.DELETE("/templates/:tid", templateHandler.Delete)
		authorized.PATCH("/templates/:tid/publish", templateHandler.TogglePublish)

		// 举报入口对所有登录用户开放
		authorized.POST("/admin/reports", adminHandler.CreateReport)
		authorized.POST("/admin/user-reports", adminHandler.CreateUserReport)
	}

	// 管理后台
	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("/posts", adminHandler.ListPosts)
		admin.POST("/posts/:pid/feature", adminHandler.FeaturePost)
		admin.DELETE("/posts/:pid", adminHandler.DeletePost)
		admin.GET("/reports", adminHandler.ListReports)
		admin.DELETE("/reports/:id", adminHandler.DismissReport)
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users/:id/ban", adminHandler.BanUser)
		admin.POST("/users/:id/role", adminHandler.SetRole)
		admin.GET("/user-reports", adminHandler.ListUserReports)
		admin.DELETE("/user-reports/:id", adminHandler.DismissUserReport)
	}
}
