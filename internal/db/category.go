package db

import "gorm.io/gorm"

// Category 文章分类，可整体下线
type Category struct {
	gorm.Model
	Title       string `gorm:"size:256;not null"`
	Description string `gorm:"type:text"`
	Slug        string `gorm:"size:64;uniqueIndex;not null"`
	IsPublished bool   `gorm:"not null"`
	Posts       []Post
}

// Location 文章关联的地点
type Location struct {
	gorm.Model
	Name        string `gorm:"size:256;not null"`
	IsPublished bool   `gorm:"not null"`
}
