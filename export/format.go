package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
)

// ErrUnsupportedFormat 表示未知的导出格式。
var ErrUnsupportedFormat = errors.New("不支持的导出格式")

// Format 是导出文件格式。
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	PDF  Format = "pdf"
)

// DefaultJPEGQuality 是未指定时的 JPEG 质量。
const DefaultJPEGQuality = 92

// ParseFormat 解析格式名，大小写不敏感，接受 jpg 作为 jpeg 的别名。空串视为 png。
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	case "pdf":
		return PDF, nil
	default:
		return "", fmt.Errorf("%s: %w", s, ErrUnsupportedFormat)
	}
}

// Ext 返回不带点的文件扩展名。
func (f Format) Ext() string {
	if f == JPEG {
		return "jpg"
	}
	return string(f)
}

// MIME 返回格式对应的媒体类型。
func (f Format) MIME() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case PDF:
		return "application/pdf"
	default:
		return "image/png"
	}
}

// encodeImage 将一帧编码为 PNG 或 JPEG。
func encodeImage(img image.Image, format Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case PNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("编码 PNG 失败: %w", err)
		}
	case JPEG:
		if quality <= 0 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("编码 JPEG 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", format, ErrUnsupportedFormat)
	}
	return buf.Bytes(), nil
}
