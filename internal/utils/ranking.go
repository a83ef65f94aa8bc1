package utils

import (
	"sort"
	"time"
)

// 信息流排序模式
const (
	SortHot   = "HOT"
	SortFresh = "FRESH"
	SortTop   = "TOP"
	SortNowe  = "NOWE" // 待审核队列（透明公示）
)

// NormalizeSort 未知的排序值一律回退到 HOT，不报错
func NormalizeSort(sort string) string {
	switch sort {
	case SortHot, SortFresh, SortTop, SortNowe:
		return sort
	default:
		return SortHot
	}
}

// RankedPost 排序阶段用的轻量行：排序只需要这三个字段，
// 整个过滤分区先取出来排好序，再按页窗口取完整数据
type RankedPost struct {
	ID        uint
	CreatedAt time.Time
	LikeCount int
}

// HotScore 热度分：每个赞折合 1000 秒的新鲜度，创建时间作平滑项。
// 没有时间衰减——这里的"热"是"历史总人气+新鲜度决胜"，老的高赞帖
// 会一直热下去，除非被总赞数超过。这是刻意保留的产品行为，不是 bug。
func HotScore(likes int, createdAt time.Time) int64 {
	return int64(likes)*1000 + createdAt.Unix()
}

// SortRanked 按排序模式就地稳定排序。
// FRESH/NOWE 按创建时间倒序，TOP 按赞数倒序，HOT 按 HotScore 倒序；
// 相等时保持取出顺序（即插入顺序）。
func SortRanked(posts []RankedPost, sortMode string) {
	switch NormalizeSort(sortMode) {
	case SortFresh, SortNowe:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	case SortTop:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].LikeCount > posts[j].LikeCount
		})
	default: // HOT
		sort.SliceStable(posts, func(i, j int) bool {
			return HotScore(posts[i].LikeCount, posts[i].CreatedAt) >
				HotScore(posts[j].LikeCount, posts[j].CreatedAt)
		})
	}
}
