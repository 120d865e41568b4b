package service

import (
	"time"

	"github.com/blogicum/internal/db"
	"gorm.io/gorm"
)

// queryOptions 控制文章基础查询的两个可选部分
type queryOptions struct {
	// FilterPublished 仅保留对外可见的文章：自身已发布、分类已发布、发布时间不晚于 now
	FilterPublished bool
	// CommentCount 附加 comment_count 统计并按发布时间倒序
	CommentCount bool
}

const commentCountSelect = "posts.*, (SELECT COUNT(*) FROM comments" +
	" WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comment_count"

// postQuery 在给定集合（全部文章、某分类或某作者的文章）上组合可见性过滤与评论统计。
// 返回的查询是惰性的，关联数据通过 withRelations 在取数时预加载。
func postQuery(base *gorm.DB, opts queryOptions, now time.Time) *gorm.DB {
	query := base.Model(&db.Post{})

	if opts.FilterPublished {
		query = query.
			Joins("JOIN categories ON categories.id = posts.category_id AND categories.deleted_at IS NULL").
			Where("posts.is_published = ?", true).
			Where("categories.is_published = ?", true).
			Where("posts.pub_date <= ?", now.UTC())
	}

	if opts.CommentCount {
		query = query.
			Select(commentCountSelect).
			Order("posts.pub_date desc").
			Order("posts.id desc")
	} else {
		// 与 categories 连接后只取文章列，避免同名列覆盖
		query = query.Select("posts.*")
	}

	return query
}

// withRelations 预加载列表与详情页需要展示的分类、地点与作者。
func withRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Category").Preload("Location").Preload("Author")
}
