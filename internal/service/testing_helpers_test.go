package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/blogicum/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open test database")
	require.NoError(t, gdb.AutoMigrate(db.Models()...), "migrate test database")

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

type fixtures struct {
	author    db.User
	reader    db.User
	published db.Category
	hidden    db.Category
	location  db.Location
}

func seedFixtures(t *testing.T, gdb *gorm.DB) fixtures {
	t.Helper()
	f := fixtures{
		author:    db.User{Username: "author", Password: "x"},
		reader:    db.User{Username: "reader", Password: "x"},
		published: db.Category{Title: "Travel", Slug: "travel", IsPublished: true},
		hidden:    db.Category{Title: "Secret", Slug: "secret", IsPublished: false},
		location:  db.Location{Name: "Moscow", IsPublished: true},
	}
	require.NoError(t, gdb.Create(&f.author).Error)
	require.NoError(t, gdb.Create(&f.reader).Error)
	require.NoError(t, gdb.Create(&f.published).Error)
	require.NoError(t, gdb.Create(&f.hidden).Error)
	require.NoError(t, gdb.Create(&f.location).Error)
	return f
}

func createPost(t *testing.T, gdb *gorm.DB, author db.User, category *db.Category, title string, pubDate time.Time, published bool) db.Post {
	t.Helper()
	post := db.Post{
		Title:       title,
		Text:        "text of " + title,
		PubDate:     pubDate.UTC(),
		AuthorID:    author.ID,
		IsPublished: published,
	}
	if category != nil {
		post.CategoryID = &category.ID
	}
	require.NoError(t, gdb.Create(&post).Error)
	return post
}

func uintPtr(v uint) *uint {
	return &v
}
