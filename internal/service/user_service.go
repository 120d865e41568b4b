package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/blogicum/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrUserNotFound 在指定用户不存在时返回
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken 用户名已被其他账号占用
	ErrUsernameTaken = errors.New("username already taken")
	// ErrUsernameInvalid 用户名为空、过长或包含不允许的字符
	ErrUsernameInvalid = errors.New("username is invalid")
	// ErrPasswordInvalid 密码为空或过短
	ErrPasswordInvalid = errors.New("password is invalid")
	// ErrInvalidCredentials 登录时用户名或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// MinPasswordLength 是注册时允许的最短密码长度。
const MinPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[\pL\pN@.+_-]+$`)

// UserService 负责账号、登录校验与个人资料维护
type UserService struct {
	db *gorm.DB
}

// ProfileInput 描述个人资料表单可修改的字段
type ProfileInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
}

// NewUserService 构造 UserService
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// GetByID 根据主键获取用户
func (s *UserService) GetByID(ctx context.Context, id uint) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户
func (s *UserService) GetByUsername(ctx context.Context, username string) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &user, nil
}

// Authenticate 校验用户名与密码，失败统一返回 ErrInvalidCredentials
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*db.User, error) {
	user, err := s.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Register 创建新用户，密码以 bcrypt 哈希保存
func (s *UserService) Register(ctx context.Context, username, password string) (*db.User, error) {
	username = strings.TrimSpace(username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, ErrPasswordInvalid
	}

	if err := s.ensureUsernameFree(ctx, username, 0); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := db.User{Username: username, Password: string(hashed)}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// UpdateProfile 更新用户名、姓名与邮箱，密码不受影响
func (s *UserService) UpdateProfile(ctx context.Context, id uint, input ProfileInput) (*db.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, username, id); err != nil {
		return nil, err
	}

	user.Username = username
	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.Email = strings.TrimSpace(input.Email)

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// ValidateUsername 检查用户名长度与字符集：字母、数字与 @.+-_
func ValidateUsername(username string) error {
	if username == "" || utf8.RuneCountInString(username) > 150 {
		return ErrUsernameInvalid
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernameInvalid
	}
	return nil
}

func (s *UserService) ensureUsernameFree(ctx context.Context, username string, exceptID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	return nil
}
