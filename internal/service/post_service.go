package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blogicum/internal/db"
	"github.com/blogicum/internal/paginate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrPostInvalidInput = errors.New("invalid post input")
)

// PostService wraps post related database operations.
type PostService struct {
	db        *gorm.DB
	paginator paginate.Paginator
	now       func() time.Time
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Title       string
	Text        string
	PubDate     time.Time
	LocationID  *uint
	CategoryID  *uint
	Image       string
	ClearImage  bool
	IsPublished bool
}

// PostPage is one page of annotated posts.
type PostPage = paginate.Page[db.Post]

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB, paginator paginate.Paginator) *PostService {
	return &PostService{db: gdb, paginator: paginator, now: time.Now}
}

// ListPublished 返回首页使用的可见文章分页。
func (s *PostService) ListPublished(ctx context.Context, page string) (*PostPage, error) {
	query := postQuery(s.db.WithContext(ctx), queryOptions{FilterPublished: true, CommentCount: true}, s.now())
	return s.page(query, page)
}

// ListByCategory 返回某分类下的可见文章分页。
func (s *PostService) ListByCategory(ctx context.Context, categoryID uint, page string) (*PostPage, error) {
	base := s.db.WithContext(ctx).Where("posts.category_id = ?", categoryID)
	query := postQuery(base, queryOptions{FilterPublished: true, CommentCount: true}, s.now())
	return s.page(query, page)
}

// ListByAuthor 返回某作者的文章分页；includeHidden 为 true 时包含未发布与定时发布的文章。
func (s *PostService) ListByAuthor(ctx context.Context, authorID uint, includeHidden bool, page string) (*PostPage, error) {
	base := s.db.WithContext(ctx).Where("posts.author_id = ?", authorID)
	query := postQuery(base, queryOptions{FilterPublished: !includeHidden, CommentCount: true}, s.now())
	return s.page(query, page)
}

// Get fetches a post by id regardless of its visibility.
func (s *PostService) Get(ctx context.Context, id uint) (*db.Post, error) {
	return s.first(postQuery(s.db.WithContext(ctx), queryOptions{}, s.now()), id)
}

// GetPublished fetches a post by id only if it is visible to everyone.
func (s *PostService) GetPublished(ctx context.Context, id uint) (*db.Post, error) {
	return s.first(postQuery(s.db.WithContext(ctx), queryOptions{FilterPublished: true}, s.now()), id)
}

// Create persists a new post owned by authorID.
func (s *PostService) Create(ctx context.Context, authorID uint, input PostInput) (*db.Post, error) {
	if err := s.Validate(ctx, input); err != nil {
		return nil, err
	}

	post := db.Post{AuthorID: authorID}
	applyPostInput(&post, input)

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	return s.Get(ctx, post.ID)
}

// Update applies updates to an existing post. The author is never changed.
func (s *PostService) Update(ctx context.Context, id uint, input PostInput) (*db.Post, error) {
	var existing db.Post
	if err := s.db.WithContext(ctx).First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}

	if err := s.Validate(ctx, input); err != nil {
		return nil, err
	}

	applyPostInput(&existing, input)

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes a post together with its comments.
func (s *PostService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("post_id = ?", id).Delete(&db.Comment{}).Error; err != nil {
			return fmt.Errorf("delete post comments: %w", err)
		}

		result := tx.Unscoped().Delete(&db.Post{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete post: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

func (s *PostService) page(query *gorm.DB, page string) (*PostPage, error) {
	result, err := paginate.GetPage[db.Post](s.paginator, query, page, withRelations)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return result, nil
}

func (s *PostService) first(query *gorm.DB, id uint) (*db.Post, error) {
	var post db.Post
	if err := query.Scopes(withRelations).Where("posts.id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

// Validate 检查文章必填字段以及分类、地点是否存在，不写入数据库。
func (s *PostService) Validate(ctx context.Context, input PostInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrPostInvalidInput)
	}
	if strings.TrimSpace(input.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrPostInvalidInput)
	}
	if input.PubDate.IsZero() {
		return fmt.Errorf("%w: pub_date is required", ErrPostInvalidInput)
	}
	if input.CategoryID == nil {
		return ErrCategoryNotFound
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&db.Category{}).Where("id = ?", *input.CategoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if count == 0 {
		return ErrCategoryNotFound
	}

	if input.LocationID != nil {
		if err := s.db.WithContext(ctx).Model(&db.Location{}).Where("id = ?", *input.LocationID).Count(&count).Error; err != nil {
			return fmt.Errorf("check location: %w", err)
		}
		if count == 0 {
			return ErrLocationNotFound
		}
	}

	return nil
}

func applyPostInput(post *db.Post, input PostInput) {
	post.Title = strings.TrimSpace(input.Title)
	post.Text = input.Text
	post.PubDate = input.PubDate.UTC()
	post.LocationID = input.LocationID
	post.CategoryID = input.CategoryID
	post.IsPublished = input.IsPublished

	switch {
	case strings.TrimSpace(input.Image) != "":
		post.Image = strings.TrimSpace(input.Image)
	case input.ClearImage:
		post.Image = ""
	}
}
