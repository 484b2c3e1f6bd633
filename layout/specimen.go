package layout

// SpecimenMargin 是样张左右两侧保留的水平边距（px）。
const SpecimenMargin = 40.0

// CenterLines 返回 count 行文本在 [top, top+height] 内整体垂直居中时每行的中心 y。
// 块高 = count * pitch；首行中心 = top + (height - 块高)/2 + pitch/2，之后逐行加 pitch。
func CenterLines(count int, style Style, top, height float64) []float64 {
	if count <= 0 {
		return nil
	}
	pitch := style.LinePitch()
	block := float64(count) * pitch
	first := top + (height-block)/2 + pitch/2
	centers := make([]float64, count)
	for i := range centers {
		centers[i] = first + float64(i)*pitch
	}
	return centers
}

// UsableWidth 返回区域扣除两侧边距后的可用宽度。
func UsableWidth(region Rect) float64 {
	return region.W - 2*SpecimenMargin
}

// LayoutSpecimen 计算单个样张在 region 内的折行、对齐锚点与逐行垂直位置。
// 单样张渲染与拼图单元格共用此函数，保证两者的折行/居中/对齐逻辑一致。
func LayoutSpecimen(text string, region Rect, style Style, singleLine bool, m Measurer) Specimen {
	lines := Wrap(text, UsableWidth(region), m, style, singleLine)
	anchor := region.X + SpecimenMargin
	if style.RTL {
		anchor = region.X + region.W - SpecimenMargin
	}
	return Specimen{
		Lines:   lines,
		Centers: CenterLines(len(lines), style, region.Y, region.H),
		AnchorX: anchor,
		RTL:     style.RTL,
		Style:   style,
	}
}
