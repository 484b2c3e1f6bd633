package renderer

import (
	"context"
	"errors"
	"image"

	"github.com/ByLCY/specimen/layout"
)

var (
	// ErrNoSurface 表示无法获取绘图面（例如等待期间 ctx 已结束）。
	ErrNoSurface = errors.New("绘图面不可用")
	// ErrNothingRendered 表示会话尚未绘制任何内容就被读回。
	ErrNothingRendered = errors.New("绘图面尚未绘制任何内容")
	// ErrFontNotRegistered 表示渲染引用了未注册的字体。
	ErrFontNotRegistered = errors.New("字体尚未注册")
)

// Renderer 管理共享绘图面与字体注册。
type Renderer interface {
	// Register 注册字体；必须在任何会话引用该字体之前完成。
	Register(ctx context.Context, font layout.FontHandle) error
	// Begin 独占获取绘图面。返回的会话在 Release 之前，其他 Begin 调用会阻塞。
	Begin(ctx context.Context) (Session, error)
}

// Session 是一次独占的 绘制 → 读回 → 释放 过程。style 均为已合并锁定字段的最终样式。
type Session interface {
	// RenderSingle 清空绘图面并绘制单个字体的样张。text 为空时只留下白色画布。
	RenderSingle(font layout.FontHandle, size layout.CanvasSize, style layout.Style, text string) (layout.Specimen, error)
	// RenderCollage 将多个字体按网格拼为一张图，size 为单元格尺寸。fonts 为空时不绘制。
	RenderCollage(fonts []layout.FontHandle, size layout.CanvasSize, style layout.Style, text string) (layout.CollagePlan, error)
	// Image 读回当前绘图面的像素。
	Image() (*image.RGBA, error)
	// Release 归还绘图面，可重复调用。
	Release()
}
