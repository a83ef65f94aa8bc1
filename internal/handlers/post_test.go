package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"memehub/internal/services"

	"github.com/gin-gonic/gin"
)

// feedContains 查询信息流某个排序下是否包含指定帖子
func feedContains(t *testing.T, r http.Handler, sortMode, pid string, cookies []*http.Cookie) bool {
	t.Helper()
	w := doJSON(t, r, http.MethodGet, "/api/posts?sort="+sortMode, nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("feed %s: status %d", sortMode, w.Code)
	}
	var page services.FeedPage
	decode(t, w, &page)
	for _, p := range page.Posts {
		if p.ID == pid {
			return true
		}
	}
	return false
}

func TestCreatePostEntersQueue(t *testing.T) {
	r, _ := setupServer(t)
	cookies := register(t, r, "alice")

	view := createPostVia(t, r, cookies, "first meme", "cats", "Fresh")
	if view.Featured {
		t.Fatal("new post must start unfeatured")
	}
	if len(view.Tags) != 2 || view.Tags[0] != "cats" || view.Tags[1] != "fresh" {
		t.Fatalf("tags = %v, want lowercased [cats fresh]", view.Tags)
	}

	// 新帖只出现在待审核队列，不进公共信息流
	if !feedContains(t, r, "NOWE", view.ID, cookies) {
		t.Fatal("new post missing from the queue")
	}
	for _, sortMode := range []string{"HOT", "FRESH", "TOP"} {
		if feedContains(t, r, sortMode, view.ID, cookies) {
			t.Fatalf("unfeatured post leaked into %s", sortMode)
		}
	}

	// 匿名也能看队列（透明公示）
	if !feedContains(t, r, "NOWE", view.ID, nil) {
		t.Fatal("queue must be publicly readable")
	}
}

func TestCreatePostValidation(t *testing.T) {
	r, _ := setupServer(t)
	cookies := register(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/posts", gin.H{"caption": "no url"}, cookies)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing url: status %d, want 400", w.Code)
	}

	// 未登录不能发帖
	w = doJSON(t, r, http.MethodPost, "/api/posts", gin.H{
		"url": "https://img.example.com/x.png", "caption": "anon",
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: status %d, want 401", w.Code)
	}
}

func TestToggleLike(t *testing.T) {
	r, _ := setupServer(t)
	author := register(t, r, "alice")
	fan := register(t, r, "bob")

	view := createPostVia(t, r, author, "likeable")

	// 点赞
	w := doJSON(t, r, http.MethodPost, "/api/posts/"+view.ID+"/like", nil, fan)
	if w.Code != http.StatusOK {
		t.Fatalf("like: status %d", w.Code)
	}
	var resp struct {
		Liked bool `json:"liked"`
	}
	decode(t, w, &resp)
	if !resp.Liked {
		t.Fatal("first toggle must like")
	}

	w = doJSON(t, r, http.MethodGet, "/api/posts/"+view.ID, nil, fan)
	var detail services.PostView
	decode(t, w, &detail)
	if detail.Likes != 1 || !detail.LikedByViewer {
		t.Fatalf("after like: likes = %d, likedByViewer = %v", detail.Likes, detail.LikedByViewer)
	}
	if len(detail.RecentLikers) != 1 || detail.RecentLikers[0] != "bob" {
		t.Fatalf("recentLikers = %v, want [bob]", detail.RecentLikers)
	}

	// 再点一次取消
	w = doJSON(t, r, http.MethodPost, "/api/posts/"+view.ID+"/like", nil, fan)
	decode(t, w, &resp)
	if resp.Liked {
		t.Fatal("second toggle must unlike")
	}

	w = doJSON(t, r, http.MethodGet, "/api/posts/"+view.ID, nil, fan)
	decode(t, w, &detail)
	if detail.Likes != 0 || detail.LikedByViewer {
		t.Fatalf("after unlike: likes = %d, likedByViewer = %v", detail.Likes, detail.LikedByViewer)
	}
}

func TestUpdatePostAuthorOnly(t *testing.T) {
	r, _ := setupServer(t)
	author := register(t, r, "alice")
	other := register(t, r, "bob")

	view := createPostVia(t, r, author, "original caption")

	w := doJSON(t, r, http.MethodPut, "/api/posts/"+view.ID, gin.H{"caption": "hijacked"}, other)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-author update: status %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/api/posts/"+view.ID, gin.H{"caption": ""}, author)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty caption: status %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodPut, "/api/posts/"+view.ID, gin.H{
		"caption":     "edited caption",
		"description": "now with *markdown*",
	}, author)
	if w.Code != http.StatusOK {
		t.Fatalf("author update: status %d", w.Code)
	}
	var updated services.PostView
	decode(t, w, &updated)
	if updated.Caption != "edited caption" || updated.Description != "now with *markdown*" {
		t.Fatalf("update not applied: %+v", updated)
	}
}

func TestDeletePost(t *testing.T) {
	r, gdb := setupServer(t)
	author := register(t, r, "alice")
	other := register(t, r, "bob")

	view := createPostVia(t, r, author, "doomed")

	w := doJSON(t, r, http.MethodDelete, "/api/posts/"+view.ID, nil, other)
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger delete: status %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/posts/"+view.ID, nil, author)
	if w.Code != http.StatusOK {
		t.Fatalf("author delete: status %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/posts/"+view.ID, nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("deleted post fetch: status %d, want 404", w.Code)
	}

	// 管理员可以删别人的帖子
	admin := loginAdmin(t, r, gdb)
	view2 := createPostVia(t, r, author, "doomed too")
	if w := doJSON(t, r, http.MethodDelete, "/api/posts/"+view2.ID, nil, admin); w.Code != http.StatusOK {
		t.Fatalf("admin delete: status %d", w.Code)
	}
}

func TestPostDetailRendersMarkdown(t *testing.T) {
	r, _ := setupServer(t)
	author := register(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/posts", gin.H{
		"url":         "https://img.example.com/md.png",
		"caption":     "markdown post",
		"description": "**bold** and <script>alert(1)</script>",
	}, author)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d", w.Code)
	}
	var view services.PostView
	decode(t, w, &view)

	w = doJSON(t, r, http.MethodGet, "/api/posts/"+view.ID, nil, nil)
	var detail services.PostView
	decode(t, w, &detail)

	if detail.DescriptionHTML == "" {
		t.Fatal("detail must render description to HTML")
	}
	if !strings.Contains(detail.DescriptionHTML, "<strong>bold</strong>") {
		t.Errorf("markdown not rendered: %q", detail.DescriptionHTML)
	}
	if strings.Contains(detail.DescriptionHTML, "<script>") {
		t.Errorf("script tag survived sanitization: %q", detail.DescriptionHTML)
	}
}
