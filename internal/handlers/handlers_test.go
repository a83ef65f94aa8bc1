package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"memehub/internal/db"
	"memehub/internal/models"
	"memehub/internal/router"
	"memehub/internal/services"
	"memehub/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupServer 起一个完整的路由 + 独立内存库，走和生产一样的中间件链
func setupServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db.DB = gdb
	services.InvalidateFeedCache()

	r := gin.New()
	store := cookie.NewStore([]byte("test_secret"))
	r.Use(sessions.Sessions("memehub_session", store))
	router.RegisterRoutes(r)
	return r, gdb
}

// doJSON 发送一次 JSON 请求，body 为 nil 表示无请求体
func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// register 通过注册接口创建用户并返回会话 cookie
func register(t *testing.T, r http.Handler, username string) []*http.Cookie {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter2x",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", username, w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

// loginAdmin 直接落库一个管理员再走登录接口
func loginAdmin(t *testing.T, r http.Handler, gdb *gorm.DB) []*http.Cookie {
	t.Helper()
	hash, err := utils.HashPassword("hunter2x")
	if err != nil {
		t.Fatal(err)
	}
	admin := models.User{
		Username:    "admin",
		Email:       "admin@example.com",
		Password:    hash,
		Role:        "admin",
		AvatarColor: utils.RandomAvatarColor(),
		Settings:    models.DefaultSettings(),
	}
	if err := gdb.Create(&admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"username": "admin",
		"password": "hunter2x",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin login: status %d", w.Code)
	}
	return w.Result().Cookies()
}

// createPostVia 通过接口发帖，返回帖子视图
func createPostVia(t *testing.T, r http.Handler, cookies []*http.Cookie, caption string, tags ...string) services.PostView {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/posts", gin.H{
		"url":     "https://img.example.com/" + uuid.NewString() + ".png",
		"caption": caption,
		"tags":    tags,
	}, cookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: status %d, body %s", w.Code, w.Body.String())
	}
	var view services.PostView
	decode(t, w, &view)
	return view
}

// seedPost 直接落库一篇帖子，可控制精选状态和时间
func seedPost(t *testing.T, gdb *gorm.DB, userID uint, caption string, featured bool, createdAt time.Time) models.Post {
	t.Helper()
	post := models.Post{
		Pid:       uuid.NewString(),
		UserID:    userID,
		URL:       "https://img.example.com/" + caption + ".png",
		Caption:   caption,
		Featured:  featured,
		CreatedAt: createdAt,
	}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}

func userByName(t *testing.T, gdb *gorm.DB, username string) models.User {
	t.Helper()
	var user models.User
	if err := gdb.Where("username = ?", username).First(&user).Error; err != nil {
		t.Fatalf("load user %s: %v", username, err)
	}
	return user
}
