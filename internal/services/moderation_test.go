package services

import (
	"testing"
	"time"

	"memehub/internal/models"
	"memehub/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestDeletePostCascade(t *testing.T) {
	gdb := setupTestDB(t)
	author := createUser(t, gdb, "alice")
	fan := createUser(t, gdb, "bob")
	post := createPost(t, gdb, author.ID, "doomed", true, time.Now())
	keeper := createPost(t, gdb, author.ID, "keeper", true, time.Now())

	// 挂满从属记录：标签、赞、评论、评论赞、举报
	tagPost(t, gdb, post.ID, "cats")
	tagPost(t, gdb, keeper.ID, "cats")
	likePost(t, gdb, fan.ID, post.ID)
	likePost(t, gdb, fan.ID, keeper.ID)

	comment := models.Comment{Cid: uuid.NewString(), PostID: post.ID, UserID: fan.ID, Text: "lol"}
	if err := gdb.Create(&comment).Error; err != nil {
		t.Fatal(err)
	}
	if err := gdb.Create(&models.CommentLike{UserID: author.ID, CommentID: comment.ID}).Error; err != nil {
		t.Fatal(err)
	}
	if err := gdb.Create(&models.Report{PostID: post.ID, UserID: fan.ID, Reason: "spam"}).Error; err != nil {
		t.Fatal(err)
	}

	if err := DeletePostCascade(post.ID); err != nil {
		t.Fatalf("cascade delete: %v", err)
	}

	// 帖子本体和所有从属记录都不能留下
	checks := []struct {
		what  string
		query *gorm.DB
	}{
		{"post", gdb.Model(&models.Post{}).Where("id = ?", post.ID)},
		{"comments", gdb.Model(&models.Comment{}).Where("post_id = ?", post.ID)},
		{"comment likes", gdb.Model(&models.CommentLike{}).Where("comment_id = ?", comment.ID)},
		{"post likes", gdb.Model(&models.PostLike{}).Where("post_id = ?", post.ID)},
		{"reports", gdb.Model(&models.Report{}).Where("post_id = ?", post.ID)},
		{"post tags", gdb.Model(&models.PostTag{}).Where("post_id = ?", post.ID)},
	}
	for _, chk := range checks {
		var n int64
		if err := chk.query.Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", chk.what, err)
		}
		if n != 0 {
			t.Errorf("%s left behind: %d rows", chk.what, n)
		}
	}

	// 旁观帖子毫发无损
	var keeperLikes int64
	gdb.Model(&models.PostLike{}).Where("post_id = ?", keeper.ID).Count(&keeperLikes)
	if keeperLikes != 1 {
		t.Errorf("keeper post lost its like")
	}
	// 标签本身保留，只删关联
	var tagCount int64
	gdb.Model(&models.Tag{}).Where("name = ?", "cats").Count(&tagCount)
	if tagCount != 1 {
		t.Errorf("tag row must survive post deletion")
	}
}

func TestUpsertTags(t *testing.T) {
	gdb := setupTestDB(t)

	// 大小写归一 + 去重 + 空白剔除
	ids, err := UpsertTags(gdb, []string{"Cats", "  cats ", "DOGS", "", "dogs"})
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("ids len = %d, want 2", len(ids))
	}

	var names []string
	if err := gdb.Model(&models.Tag{}).Order("name ASC").Pluck("name", &names).Error; err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "cats" || names[1] != "dogs" {
		t.Fatalf("tags = %v, want [cats dogs]", names)
	}

	// 再次 upsert 同名标签拿回同一批 ID，不新建行
	again, err := UpsertTags(gdb, []string{"CATS", "dogs"})
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 2 || again[0] != ids[0] || again[1] != ids[1] {
		t.Fatalf("re-upsert ids = %v, want %v", again, ids)
	}
}

func TestFeedCacheRoundTrip(t *testing.T) {
	setupTestDB(t)

	page := &FeedPage{Total: 3, Page: 1, TotalPages: 1}
	CacheFeedPage(utils.SortHot, 1, page)

	if got := CachedFeedPage(utils.SortHot, 1); got == nil || got.Total != 3 {
		t.Fatal("cached page should be returned as-is")
	}
	if got := CachedFeedPage(utils.SortFresh, 1); got != nil {
		t.Fatal("other sort keys must miss")
	}

	InvalidateFeedCache()
	if got := CachedFeedPage(utils.SortHot, 1); got != nil {
		t.Fatal("invalidation must clear page 1 of every sort")
	}
}
