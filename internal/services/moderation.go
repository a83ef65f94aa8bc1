package services

import (
	"fmt"
	"strings"
	"time"

	"memehub/internal/db"
	"memehub/internal/models"
	"memehub/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeletePostCascade 在一个事务里删除帖子及其全部从属记录：
// 评论的赞、评论、帖子的赞、举报、标签关联，最后是帖子本身。
// 不依赖数据库外键配置，任何后端上都不会留下孤儿行。
func DeletePostCascade(postID uint) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", postID).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).
				Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, postID).Error
	})
}

// UpsertTags 标签名小写归一后逐个 upsert，返回标签 ID 列表。
// ON CONFLICT DO NOTHING + 回查，并发首次使用同名标签也只会落一行。
func UpsertTags(tx *gorm.DB, names []string) ([]uint, error) {
	ids := make([]uint, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag := models.Tag{Name: name}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&tag).Error; err != nil {
			return nil, err
		}
		if tag.ID == 0 {
			// 冲突时没拿到 ID，按名字回查
			if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
				return nil, err
			}
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

// 信息流页缓存：只缓存匿名、无过滤的第一页，写操作后主动失效
const feedCacheTTL = time.Minute

func FeedCacheKey(sort string, page int) string {
	return fmt.Sprintf("feed:%s:page:%d", sort, page)
}

// InvalidateFeedCache 任何改变信息流内容的写入后调用
func InvalidateFeedCache() {
	for _, s := range []string{utils.SortHot, utils.SortFresh, utils.SortTop, utils.SortNowe} {
		utils.GetCache().Delete(FeedCacheKey(s, 1))
	}
}

// CacheFeedPage 写入页缓存
func CacheFeedPage(sort string, page int, data *FeedPage) {
	utils.GetCache().Set(FeedCacheKey(sort, page), data, feedCacheTTL)
}

// CachedFeedPage 读页缓存，未命中返回 nil
func CachedFeedPage(sort string, page int) *FeedPage {
	if v := utils.GetCache().Get(FeedCacheKey(sort, page)); v != nil {
		if page, ok := v.(*FeedPage); ok {
			return page
		}
	}
	return nil
}
