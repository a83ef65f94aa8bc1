package handlers_test

import (
	"net/http"
	"testing"

	"memehub/internal/models"

	"github.com/gin-gonic/gin"
)

func TestTemplateLifecycle(t *testing.T) {
	r, gdb := setupServer(t)
	uploader := register(t, r, "alice")
	other := register(t, r, "bob")
	admin := loginAdmin(t, r, gdb)

	// 上传一张私有底图
	w := doJSON(t, r, http.MethodPost, "/api/templates", gin.H{
		"name": "  Drake  ",
		"url":  "https://img.example.com/drake.png",
	}, uploader)
	if w.Code != http.StatusCreated {
		t.Fatalf("create template: status %d, body %s", w.Code, w.Body.String())
	}
	var tpl models.Template
	decode(t, w, &tpl)
	if tpl.Name != "Drake" {
		t.Fatalf("name = %q, want trimmed", tpl.Name)
	}
	if tpl.IsPublic {
		t.Fatal("template must default to private")
	}

	// 私有底图别人看不到，自己能看到
	var list []models.Template
	w = doJSON(t, r, http.MethodGet, "/api/templates", nil, other)
	decode(t, w, &list)
	if len(list) != 0 {
		t.Fatalf("public list = %d, want 0", len(list))
	}
	w = doJSON(t, r, http.MethodGet, "/api/templates?scope=mine", nil, uploader)
	decode(t, w, &list)
	if len(list) != 1 {
		t.Fatalf("mine list = %d, want 1", len(list))
	}

	// 只有上传者能切换公开状态
	if w := doJSON(t, r, http.MethodPatch, "/api/templates/"+tpl.Tid+"/publish", nil, other); w.Code != http.StatusForbidden {
		t.Fatalf("foreign publish: status %d, want 403", w.Code)
	}
	w = doJSON(t, r, http.MethodPatch, "/api/templates/"+tpl.Tid+"/publish", nil, uploader)
	if w.Code != http.StatusOK {
		t.Fatalf("publish: status %d", w.Code)
	}

	// 公开后出现在公共列表
	w = doJSON(t, r, http.MethodGet, "/api/templates", nil, other)
	decode(t, w, &list)
	if len(list) != 1 {
		t.Fatalf("public list after publish = %d, want 1", len(list))
	}

	// 路人删不掉，管理员可以
	if w := doJSON(t, r, http.MethodDelete, "/api/templates/"+tpl.Tid, nil, other); w.Code != http.StatusForbidden {
		t.Fatalf("foreign delete: status %d, want 403", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/api/templates/"+tpl.Tid, nil, admin); w.Code != http.StatusOK {
		t.Fatalf("admin delete: status %d", w.Code)
	}

	var count int64
	gdb.Model(&models.Template{}).Count(&count)
	if count != 0 {
		t.Fatalf("template rows = %d, want 0", count)
	}
}

func TestTemplateValidation(t *testing.T) {
	r, _ := setupServer(t)
	uploader := register(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/templates", gin.H{"name": "   "}, uploader)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank template: status %d, want 400", w.Code)
	}

	// 未登录不能用底图库
	if w := doJSON(t, r, http.MethodGet, "/api/templates", nil, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list: status %d, want 401", w.Code)
	}
}
