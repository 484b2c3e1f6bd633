package layout

import "math"

// Collage geometry constants (px).
const (
	MaxCollageDimension = 5000.0
	LabelSizeRatio      = 0.08
	MinLabelSize        = 14.0
	MaxLabelSize        = 48.0
	LabelPadding        = 8.0 // 标签带上下内边距，同时作为标签左侧缩进
	ClipInset           = 5.0
	CellBorderWidth     = 1.0
)

// Grid 是拼图的列数与行数。
type Grid struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

// GridFor 返回 n 个字体的网格：cols = ceil(sqrt(n))，rows = ceil(n/cols)。
func GridFor(n int) Grid {
	if n <= 0 {
		return Grid{}
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	return Grid{Columns: cols, Rows: rows}
}

// Cell 是拼图中的一个格子（行优先编号）。
type Cell struct {
	Index  int     `json:"index"`
	Column int     `json:"column"`
	Row    int     `json:"row"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// CellAt 将格子序号映射为行列与左上角坐标，纯函数。
func CellAt(index, columns int, cellWidth, cellHeight float64) Cell {
	if columns <= 0 {
		columns = 1
	}
	col := index % columns
	row := index / columns
	return Cell{
		Index:  index,
		Column: col,
		Row:    row,
		X:      float64(col) * cellWidth,
		Y:      float64(row) * cellHeight,
	}
}

// LabelFontSize 返回格子标签字号：cellHeight 的 8%，四舍五入后限制在 [14, 48]。
func LabelFontSize(cellHeight float64) float64 {
	size := math.Round(cellHeight * LabelSizeRatio)
	return math.Min(math.Max(size, MinLabelSize), MaxLabelSize)
}

// LabelBandHeight 返回格子顶部标签带的高度。
func LabelBandHeight(labelSize float64) float64 {
	return labelSize + 2*LabelPadding
}

// CollagePlan 是拼图的完整几何方案。Total* 为未缩放尺寸，Output* 为缩放后的像素尺寸。
type CollagePlan struct {
	Grid         Grid    `json:"grid"`
	CellWidth    float64 `json:"cellWidth"`
	CellHeight   float64 `json:"cellHeight"`
	TotalWidth   float64 `json:"totalWidth"`
	TotalHeight  float64 `json:"totalHeight"`
	Scale        float64 `json:"scale"`
	OutputWidth  int     `json:"outputWidth"`
	OutputHeight int     `json:"outputHeight"`
	LabelSize    float64 `json:"labelSize"`
	LabelBand    float64 `json:"labelBand"`
	Cells        []Cell  `json:"cells"`
}

// Empty 报告方案是否不含任何格子。
func (p CollagePlan) Empty() bool { return len(p.Cells) == 0 }

// CollageScale 返回统一缩放因子：两轴都不超过 maxTotal 时为 1，
// 否则为 min(maxTotal/totalWidth, maxTotal/totalHeight)。
func CollageScale(totalWidth, totalHeight, maxTotal float64) float64 {
	if totalWidth <= maxTotal && totalHeight <= maxTotal {
		return 1
	}
	return math.Min(maxTotal/totalWidth, maxTotal/totalHeight)
}

// PlanCollage 计算 n 个字体、单元格 cellWidth×cellHeight 的拼图方案。
func PlanCollage(n int, cellWidth, cellHeight, maxTotal float64) CollagePlan {
	grid := GridFor(n)
	if grid.Columns == 0 {
		return CollagePlan{Scale: 1}
	}
	totalW := float64(grid.Columns) * cellWidth
	totalH := float64(grid.Rows) * cellHeight
	scale := CollageScale(totalW, totalH, maxTotal)

	label := LabelFontSize(cellHeight)
	cells := make([]Cell, n)
	for i := range cells {
		cells[i] = CellAt(i, grid.Columns, cellWidth, cellHeight)
	}
	return CollagePlan{
		Grid:         grid,
		CellWidth:    cellWidth,
		CellHeight:   cellHeight,
		TotalWidth:   totalW,
		TotalHeight:  totalH,
		Scale:        scale,
		OutputWidth:  int(math.Round(totalW * scale)),
		OutputHeight: int(math.Round(totalH * scale)),
		LabelSize:    label,
		LabelBand:    LabelBandHeight(label),
		Cells:        cells,
	}
}

// SpecimenRegion 返回格子中标签带以下、用于样张垂直居中的区域。
func (p CollagePlan) SpecimenRegion(c Cell) Rect {
	return Rect{
		X: c.X,
		Y: c.Y + p.LabelBand,
		W: p.CellWidth,
		H: p.CellHeight - p.LabelBand,
	}
}

// ClipRect 返回格子内样张的裁剪区域：标签带以下并在四周内缩 ClipInset。
func (p CollagePlan) ClipRect(c Cell) Rect {
	r := p.SpecimenRegion(c)
	return Rect{
		X: r.X + ClipInset,
		Y: r.Y + ClipInset,
		W: math.Max(r.W-2*ClipInset, 0),
		H: math.Max(r.H-2*ClipInset, 0),
	}
}
