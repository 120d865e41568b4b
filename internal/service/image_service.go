package service

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

var (
	ErrInvalidImage  = errors.New("uploaded file is not a supported image")
	ErrImageTooLarge = errors.New("uploaded image is too large")
)

// MaxImageSize 限制单张文章配图的大小。
const MaxImageSize = 5 << 20

// ImageService 保存文章配图到本地目录，并返回可公开访问的 URL。
type ImageService struct {
	dir     string
	urlPath string
}

// StoredImage 描述已保存的图片
type StoredImage struct {
	URL string
}

// NewImageService creates an ImageService writing into dir and served under urlPath.
func NewImageService(dir, urlPath string) *ImageService {
	return &ImageService{dir: dir, urlPath: "/" + strings.Trim(urlPath, "/")}
}

// Save 校验上传文件确为 JPEG/PNG/GIF/WebP 图片后写入磁盘，文件名由日期与 UUID 组成。
func (s *ImageService) Save(file *multipart.FileHeader) (*StoredImage, error) {
	if file.Size > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	cfg, format, err := image.DecodeConfig(src)
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrInvalidImage
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	ext := "." + format
	if format == "jpeg" {
		ext = ".jpg"
	}
	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.NewString(), ext)

	target := filepath.Join(s.dir, name)
	dst, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("create image file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(target)
		return nil, fmt.Errorf("write image file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(target)
		return nil, fmt.Errorf("close image file: %w", err)
	}

	return &StoredImage{URL: path.Join(s.urlPath, name)}, nil
}

// Remove 删除 Save 写入的图片；不属于上传目录的 URL 会被忽略。
func (s *ImageService) Remove(url string) error {
	prefix := s.urlPath + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	name := path.Base(url)
	if name == "." || name == "/" || name == ".." {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}
