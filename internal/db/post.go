package db

import (
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// Post 定义了文章模型
type Post struct {
	gorm.Model
	Title       string    `gorm:"size:256;not null"`
	Text        string    `gorm:"type:text;not null"`
	PubDate     time.Time `gorm:"index;not null"`
	AuthorID    uint      `gorm:"index;not null"`
	Author      User
	LocationID  *uint
	Location    *Location
	CategoryID  *uint `gorm:"index"`
	Category    *Category
	Image       string
	IsPublished bool `gorm:"not null"`
	Comments    []Comment

	// CommentCount 只在带评论统计的查询中填充
	CommentCount int64 `gorm:"->;-:migration"`
}

// Excerpt 截取正文前 limit 个字符用于列表展示。
func (p Post) Excerpt(limit int) string {
	plain := strings.Join(strings.Fields(p.Text), " ")
	if limit <= 0 || utf8.RuneCountInString(plain) <= limit {
		return plain
	}
	return string([]rune(plain)[:limit]) + "…"
}

// Comment 文章评论
type Comment struct {
	gorm.Model
	Text     string `gorm:"type:text;not null"`
	PostID   uint   `gorm:"index;not null"`
	Post     Post
	AuthorID uint `gorm:"index;not null"`
	Author   User
}
