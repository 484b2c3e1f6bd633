package export

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/specimen/layout"
)

// frame 是一页 PDF 的栅格内容。
type frame struct {
	label string
	img   *image.RGBA
}

// encodePDF 将栅格帧按顺序写成多页 PDF。页面尺寸（pt）等于帧的像素尺寸，
// 帧铺满整页，不留边也不裁剪。
func encodePDF(frames []frame, meta layout.DocumentMeta) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("缺少可写入的页面")
	}

	var buf bytes.Buffer
	w0, h0 := pageSize(frames[0].img)
	writer := pdf.New(&buf, w0, h0, nil)
	applyMeta(writer, meta)
	for i, f := range frames {
		w, h := pageSize(f.img)
		if i > 0 {
			writer.NewPage(w, h)
		}
		c := canvas.New(w, h)
		ctx := canvas.NewContext(c)
		ctx.DrawImage(0, 0, f.img, canvas.DPMM(float64(f.img.Bounds().Dx())/w))
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// pageSize 返回帧对应的页面尺寸（mm）：1px 对应 1pt。
func pageSize(img *image.RGBA) (float64, float64) {
	b := img.Bounds()
	return float64(b.Dx()) * layout.MmPerPt, float64(b.Dy()) * layout.MmPerPt
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}
