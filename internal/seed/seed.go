// Package seed 生成本地开发用的演示数据：分类、地点、用户、文章与评论。
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/blogicum/internal/db"
	"github.com/blogicum/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DemoPassword 是演示用户共用的密码。
const DemoPassword = "blogicum123"

// Summary 记录一次生成实际创建的数据量
type Summary struct {
	Categories int
	Locations  int
	Users      int
	Posts      int
	Comments   int
}

var demoCategories = []service.CategoryInput{
	{Title: "Travel", Slug: "travel", Description: "Trips, routes and places worth visiting.", IsPublished: true},
	{Title: "Food", Slug: "food", Description: "Recipes and restaurant notes.", IsPublished: true},
	{Title: "Development", Slug: "dev", Description: "Programming diaries.", IsPublished: true},
	{Title: "Drafts", Slug: "drafts", Description: "Hidden from readers.", IsPublished: false},
}

type demoLocation struct {
	Name        string
	IsPublished bool
}

var demoLocations = []demoLocation{
	{Name: "Moscow", IsPublished: true},
	{Name: "Saint Petersburg", IsPublished: true},
	{Name: "Kazan", IsPublished: false},
}

var demoUsers = []string{"alice", "bob"}

type demoPost struct {
	author    string
	category  string
	location  string
	title     string
	text      string
	offset    time.Duration
	published bool
	comments  []demoComment
}

type demoComment struct {
	author string
	text   string
}

var demoPosts = []demoPost{
	{
		author: "alice", category: "travel", location: "Saint Petersburg",
		title: "White nights", text: "The sun barely sets in June.\n\n**Bring a sleeping mask.**",
		offset: -72 * time.Hour, published: true,
		comments: []demoComment{{author: "bob", text: "Been there, loved it."}, {author: "alice", text: "Thanks!"}},
	},
	{
		author: "bob", category: "food", location: "Moscow",
		title: "Borscht, properly", text: "Beets first, then everything else.",
		offset: -48 * time.Hour, published: true,
		comments: []demoComment{{author: "alice", text: "Adding dill next time."}},
	},
	{
		author: "alice", category: "dev",
		title: "Why I like small functions", text: "They fit on the screen.",
		offset: -24 * time.Hour, published: true,
	},
	{
		author: "bob", category: "travel", location: "Kazan",
		title: "Unfinished trip report", text: "To be continued.",
		offset: -12 * time.Hour, published: false,
	},
	{
		author: "alice", category: "food",
		title: "Scheduled recipe", text: "Appears tomorrow.",
		offset: 24 * time.Hour, published: true,
	},
	{
		author: "bob", category: "drafts",
		title: "In a hidden category", text: "Readers never see this one.",
		offset: -6 * time.Hour, published: true,
	},
}

// Run 写入演示数据。已存在的分类、地点与用户按唯一键复用，因此可以重复执行；
// 文章只在库中尚无文章时生成。
func Run(ctx context.Context, gdb *gorm.DB, log *zap.Logger) (Summary, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var summary Summary
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories, created, err := seedCategories(ctx, service.NewCategoryService(tx))
		if err != nil {
			return err
		}
		summary.Categories = created

		locations, created, err := seedLocations(ctx, service.NewLocationService(tx))
		if err != nil {
			return err
		}
		summary.Locations = created

		users := make(map[string]uint, len(demoUsers))
		for _, username := range demoUsers {
			var before int64
			if err := tx.Model(&db.User{}).Where("username = ?", username).Count(&before).Error; err != nil {
				return fmt.Errorf("check user %s: %w", username, err)
			}
			if err := db.EnsureUser(tx, username, DemoPassword); err != nil {
				return fmt.Errorf("seed user %s: %w", username, err)
			}
			if before == 0 {
				summary.Users++
			}

			var user db.User
			if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
				return fmt.Errorf("load user %s: %w", username, err)
			}
			users[username] = user.ID
		}

		var existingPosts int64
		if err := tx.Model(&db.Post{}).Count(&existingPosts).Error; err != nil {
			return fmt.Errorf("count posts: %w", err)
		}
		if existingPosts > 0 {
			log.Info("posts already exist, skipping demo posts", zap.Int64("posts", existingPosts))
			return nil
		}

		now := time.Now().UTC()
		for _, item := range demoPosts {
			categoryID := categories[item.category]
			post := db.Post{
				Title:       item.title,
				Text:        item.text,
				PubDate:     now.Add(item.offset),
				AuthorID:    users[item.author],
				CategoryID:  &categoryID,
				IsPublished: item.published,
			}
			if id, ok := locations[item.location]; ok {
				post.LocationID = &id
			}
			if err := tx.Create(&post).Error; err != nil {
				return fmt.Errorf("seed post %q: %w", item.title, err)
			}
			summary.Posts++

			for _, comment := range item.comments {
				if err := tx.Create(&db.Comment{
					Text:     comment.text,
					PostID:   post.ID,
					AuthorID: users[comment.author],
				}).Error; err != nil {
					return fmt.Errorf("seed comment on %q: %w", item.title, err)
				}
				summary.Comments++
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	log.Info("demo data generated",
		zap.Int("categories", summary.Categories),
		zap.Int("locations", summary.Locations),
		zap.Int("users", summary.Users),
		zap.Int("posts", summary.Posts),
		zap.Int("comments", summary.Comments),
	)
	return summary, nil
}

// seedCategories 通过 CategoryService 创建缺失的演示分类，返回 slug 到 ID 的映射。
func seedCategories(ctx context.Context, svc *service.CategoryService) (map[string]uint, int, error) {
	existing, err := svc.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	ids := make(map[string]uint, len(existing)+len(demoCategories))
	for _, category := range existing {
		ids[category.Slug] = category.ID
	}

	created := 0
	for _, item := range demoCategories {
		if _, ok := ids[item.Slug]; ok {
			continue
		}
		category, err := svc.Create(ctx, item)
		if err != nil {
			return nil, 0, fmt.Errorf("seed category %s: %w", item.Slug, err)
		}
		ids[category.Slug] = category.ID
		created++
	}
	return ids, created, nil
}

func seedLocations(ctx context.Context, svc *service.LocationService) (map[string]uint, int, error) {
	existing, err := svc.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	ids := make(map[string]uint, len(existing)+len(demoLocations))
	for _, location := range existing {
		ids[location.Name] = location.ID
	}

	created := 0
	for _, item := range demoLocations {
		if _, ok := ids[item.Name]; ok {
			continue
		}
		location, err := svc.Create(ctx, item.Name, item.IsPublished)
		if err != nil {
			return nil, 0, fmt.Errorf("seed location %s: %w", item.Name, err)
		}
		ids[location.Name] = location.ID
		created++
	}
	return ids, created, nil
}
