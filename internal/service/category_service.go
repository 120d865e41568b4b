package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/blogicum/internal/db"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryExists       = errors.New("category slug already exists")
	ErrCategoryInvalidInput = errors.New("invalid category input")
	ErrLocationNotFound     = errors.New("location not found")
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// CategoryService wraps category related operations.
type CategoryService struct {
	db *gorm.DB
}

// CategoryInput 描述创建分类时可设置的字段
type CategoryInput struct {
	Title       string
	Description string
	Slug        string
	IsPublished bool
}

// NewCategoryService creates a CategoryService instance.
func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// GetPublishedBySlug 根据 slug 获取已发布的分类，未发布视为不存在。
func (s *CategoryService) GetPublishedBySlug(ctx context.Context, slug string) (*db.Category, error) {
	var category db.Category
	if err := s.db.WithContext(ctx).
		Where("slug = ? AND is_published = ?", slug, true).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &category, nil
}

// List returns all categories ordered by title, used by the post form.
func (s *CategoryService) List(ctx context.Context) ([]db.Category, error) {
	var categories []db.Category
	if err := s.db.WithContext(ctx).Order("title asc").Order("id asc").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Create inserts a category with a unique slug.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*db.Category, error) {
	title := strings.TrimSpace(input.Title)
	slug := strings.TrimSpace(input.Slug)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrCategoryInvalidInput)
	}
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: slug may contain only latin letters, digits, hyphens and underscores", ErrCategoryInvalidInput)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&db.Category{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check category slug: %w", err)
	}
	if count > 0 {
		return nil, ErrCategoryExists
	}

	category := db.Category{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Slug:        slug,
		IsPublished: input.IsPublished,
	}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

// LocationService wraps location related operations.
type LocationService struct {
	db *gorm.DB
}

// NewLocationService creates a LocationService instance.
func NewLocationService(gdb *gorm.DB) *LocationService {
	return &LocationService{db: gdb}
}

// List returns all locations ordered by name.
func (s *LocationService) List(ctx context.Context) ([]db.Location, error) {
	var locations []db.Location
	if err := s.db.WithContext(ctx).Order("name asc").Order("id asc").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}

// Create inserts a location.
func (s *LocationService) Create(ctx context.Context, name string, isPublished bool) (*db.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("location name is required")
	}

	location := db.Location{Name: name, IsPublished: isPublished}
	if err := s.db.WithContext(ctx).Create(&location).Error; err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return &location, nil
}
