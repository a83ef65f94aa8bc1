package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONError 统一的错误响应形状 {"error": "..."}
func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// ServerError 存储层或其他意外失败：记录内部错误，对外只给通用消息
func ServerError(c *gin.Context, err error) {
	log.Printf("[%s %s] internal error: %v", c.Request.Method, c.Request.URL.Path, err)
	JSONError(c, http.StatusInternalServerError, "server error")
}
