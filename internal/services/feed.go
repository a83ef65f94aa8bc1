package services

import (
	"math"
	"strings"
	"time"

	"memehub/internal/db"
	"memehub/internal/models"
	"memehub/internal/utils"

	"gorm.io/gorm"
)

// PageSize 信息流固定每页 15 条
const PageSize = 15

// recentLikersCap 点赞头像堆最多展示最近 3 个点赞者，绝不返回完整名单
const recentLikersCap = 3

// FeedQuery 一次信息流请求的过滤描述
type FeedQuery struct {
	Sort     string // HOT / FRESH / TOP / NOWE，未知值回退 HOT
	Tag      string // 可选，标签名精确匹配（不区分大小写）
	Query    string // 可选，匹配配文或标签名的子串（不区分大小写）
	Page     int    // 从 1 开始
	ViewerID uint   // 0 表示未登录
}

// PostView 返回给客户端的帖子视图
type PostView struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	Caption         string    `json:"caption"`
	Description     string    `json:"description,omitempty"`
	DescriptionHTML string    `json:"descriptionHtml,omitempty"`
	Featured        bool      `json:"featured"`
	Author          string    `json:"author"`
	AuthorID        uint      `json:"authorId"`
	AuthorRole      string    `json:"authorRole"`
	AvatarColor     string    `json:"avatarColor"`
	AvatarURL       string    `json:"avatarUrl,omitempty"`
	Likes           int       `json:"likes"`
	CommentsCount   int       `json:"commentsCount"`
	Tags            []string  `json:"tags"`
	LikedByViewer   bool      `json:"likedByViewer"`
	RecentLikers    []string  `json:"recentLikers"`
	CreatedAt       time.Time `json:"createdAt"`
	Timestamp       int64     `json:"timestamp"`
}

// FeedPage 信息流分页结果
type FeedPage struct {
	Posts      []PostView `json:"posts"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
}

// baseQuery 先划分可见性分区，再叠加过滤条件。
// 分区只看 featured 一个字段：NOWE 取待审核队列，其余取已发布帖。
// 过滤条件只在分区内生效，队列里的帖子无论怎么过滤都进不了公共信息流。
func baseQuery(q FeedQuery, sortMode string) *gorm.DB {
	dbq := db.DB.Model(&models.Post{}).
		Where("posts.featured = ?", sortMode != utils.SortNowe)

	if q.Tag != "" {
		dbq = dbq.Where(
			"EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id = posts.id AND t.name = ?)",
			strings.ToLower(q.Tag))
	}
	if q.Query != "" {
		pattern := "%" + strings.ToLower(q.Query) + "%"
		dbq = dbq.Where(
			"(LOWER(posts.caption) LIKE ? OR EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id = posts.id AND t.name LIKE ?))",
			pattern, pattern)
	}
	return dbq
}

// ListPosts 信息流查询：分区 → 过滤 → 内存稳定排序 → 切页窗口 → 视图填充。
// total 独立于页窗口统计，页码越界返回空列表而不是错误。
func ListPosts(q FeedQuery) (*FeedPage, error) {
	sortMode := utils.NormalizeSort(q.Sort)
	page := q.Page
	if page < 1 {
		page = 1
	}

	var total int64
	if err := baseQuery(q, sortMode).Count(&total).Error; err != nil {
		return nil, err
	}
	totalPages := int(math.Ceil(float64(total) / float64(PageSize)))

	result := &FeedPage{
		Posts:      []PostView{},
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}
	if total == 0 || page > totalPages {
		return result, nil
	}

	// 取整个过滤分区的轻量行（id、时间、赞数），按插入顺序取出，
	// 排序后再切窗口，保证分页在所有过滤组合下一致
	var ranked []utils.RankedPost
	if err := baseQuery(q, sortMode).
		Select("posts.id, posts.created_at, (SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) AS like_count").
		Order("posts.id ASC").
		Scan(&ranked).Error; err != nil {
		return nil, err
	}

	utils.SortRanked(ranked, sortMode)

	start := (page - 1) * PageSize
	if start >= len(ranked) {
		return result, nil
	}
	end := start + PageSize
	if end > len(ranked) {
		end = len(ranked)
	}
	window := ranked[start:end]

	ids := make([]uint, len(window))
	likeCounts := make(map[uint]int, len(window))
	for i, r := range window {
		ids[i] = r.ID
		likeCounts[r.ID] = r.LikeCount
	}

	var posts []models.Post
	if err := db.DB.Preload("User").Where("posts.id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}

	// 恢复排序后的顺序
	byID := make(map[uint]models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]models.Post, 0, len(window))
	for _, r := range window {
		if p, ok := byID[r.ID]; ok {
			p.LikeCount = likeCounts[r.ID]
			ordered = append(ordered, p)
		}
	}

	views, err := BuildPostViews(ordered, q.ViewerID, false)
	if err != nil {
		return nil, err
	}
	result.Posts = views
	return result, nil
}

// BuildPostViews 批量填充帖子视图：赞数、评论数、标签、当前用户是否已赞、
// 最近点赞者（最多 3 个，用于头像堆，不泄露完整点赞名单）。
// withHTML 控制是否渲染描述的 Markdown（列表页不渲染，省一次开销）。
func BuildPostViews(posts []models.Post, viewerID uint, withHTML bool) ([]PostView, error) {
	views := make([]PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	ids := make([]uint, len(posts))
	needLikes := false
	for i, p := range posts {
		ids[i] = p.ID
		if p.LikeCount == 0 {
			needLikes = true
		}
	}

	type countRow struct {
		PostID uint
		Count  int
	}

	// 批量统计赞数（信息流路径已在排序行里带出，跳过）
	likeCounts := make(map[uint]int, len(posts))
	if needLikes {
		var rows []countRow
		if err := db.DB.Model(&models.PostLike{}).
			Select("post_id, COUNT(*) as count").
			Where("post_id IN ?", ids).
			Group("post_id").
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			likeCounts[r.PostID] = r.Count
		}
	} else {
		for _, p := range posts {
			likeCounts[p.ID] = p.LikeCount
		}
	}

	// 批量统计评论数
	commentCounts := make(map[uint]int, len(posts))
	{
		var rows []countRow
		if err := db.DB.Model(&models.Comment{}).
			Select("post_id, COUNT(*) as count").
			Where("post_id IN ?", ids).
			Group("post_id").
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			commentCounts[r.PostID] = r.Count
		}
	}

	// 标签
	tagsByPost := make(map[uint][]string, len(posts))
	{
		var postTags []models.PostTag
		if err := db.DB.Preload("Tag").Where("post_id IN ?", ids).
			Order("id ASC").Find(&postTags).Error; err != nil {
			return nil, err
		}
		for _, pt := range postTags {
			tagsByPost[pt.PostID] = append(tagsByPost[pt.PostID], pt.Tag.Name)
		}
	}

	// 当前用户点过赞的帖子
	likedSet := make(map[uint]bool)
	if viewerID != 0 {
		var likedIDs []uint
		if err := db.DB.Model(&models.PostLike{}).
			Where("user_id = ? AND post_id IN ?", viewerID, ids).
			Pluck("post_id", &likedIDs).Error; err != nil {
			return nil, err
		}
		for _, id := range likedIDs {
			likedSet[id] = true
		}
	}

	// 最近点赞者采样
	recentLikers := make(map[uint][]string, len(posts))
	{
		type likerRow struct {
			PostID   uint
			Username string
		}
		var rows []likerRow
		if err := db.DB.Model(&models.PostLike{}).
			Select("post_likes.post_id, users.username").
			Joins("JOIN users ON users.id = post_likes.user_id").
			Where("post_likes.post_id IN ?", ids).
			Order("post_likes.id DESC").
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			if len(recentLikers[r.PostID]) < recentLikersCap {
				recentLikers[r.PostID] = append(recentLikers[r.PostID], r.Username)
			}
		}
	}

	for _, p := range posts {
		v := PostView{
			ID:            p.Pid,
			URL:           p.URL,
			Caption:       p.Caption,
			Description:   p.Description,
			Featured:      p.Featured,
			Author:        p.User.Username,
			AuthorID:      p.UserID,
			AuthorRole:    p.User.Role,
			AvatarColor:   p.User.AvatarColor,
			AvatarURL:     p.User.AvatarURL,
			Likes:         likeCounts[p.ID],
			CommentsCount: commentCounts[p.ID],
			Tags:          tagsByPost[p.ID],
			LikedByViewer: likedSet[p.ID],
			RecentLikers:  recentLikers[p.ID],
			CreatedAt:     p.CreatedAt,
			Timestamp:     p.CreatedAt.UnixMilli(),
		}
		if v.Tags == nil {
			v.Tags = []string{}
		}
		if v.RecentLikers == nil {
			v.RecentLikers = []string{}
		}
		if withHTML && p.Description != "" {
			v.DescriptionHTML = utils.RenderMarkdown(p.Description)
		}
		views = append(views, v)
	}
	return views, nil
}

// BuildPostView 单帖视图
func BuildPostView(post models.Post, viewerID uint, withHTML bool) (*PostView, error) {
	views, err := BuildPostViews([]models.Post{post}, viewerID, withHTML)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
