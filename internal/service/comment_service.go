package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blogicum/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrCommentEmpty    = errors.New("comment text is required")
)

// CommentService wraps comment related operations.
type CommentService struct {
	db *gorm.DB
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// ListForPost 返回文章下的评论，按创建时间正序。
func (s *CommentService) ListForPost(ctx context.Context, postID uint) ([]db.Comment, error) {
	var comments []db.Comment
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at asc").
		Order("id asc").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Get 获取属于指定文章的评论，文章与评论不匹配时视为不存在。
func (s *CommentService) Get(ctx context.Context, postID, commentID uint) (*db.Comment, error) {
	var comment db.Comment
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

// Create 为文章添加评论，文章必须存在。
func (s *CommentService) Create(ctx context.Context, postID, authorID uint, text string) (*db.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrCommentEmpty
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&db.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check post: %w", err)
	}
	if count == 0 {
		return nil, ErrPostNotFound
	}

	comment := db.Comment{Text: text, PostID: postID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &comment, nil
}

// Update 仅修改评论正文，作者与所属文章保持不变。
func (s *CommentService) Update(ctx context.Context, id uint, text string) (*db.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrCommentEmpty
	}

	result := s.db.WithContext(ctx).Model(&db.Comment{}).Where("id = ?", id).Update("text", text)
	if result.Error != nil {
		return nil, fmt.Errorf("update comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrCommentNotFound
	}

	var comment db.Comment
	if err := s.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, fmt.Errorf("reload comment: %w", err)
	}
	return &comment, nil
}

// Delete removes a comment by id.
func (s *CommentService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Unscoped().Delete(&db.Comment{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}
