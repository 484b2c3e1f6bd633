package layout

// Measurer 以绑定的字体与字号测量文本宽度（px）。
// letterSpacing 作为显式参数参与测量，绘制阶段必须使用同一个 Measurer 与同一间距，
// 否则折行与绘制的宽度会不一致。
type Measurer interface {
	MeasureText(s string, letterSpacing float64) float64
}

// BuildOptions 配置任务构建阶段的可选输入。
type BuildOptions struct {
	Data  any  // 文本与文件名模板的绑定数据
	Debug bool // 为 true 时 Job.Debug 会被置位，调用方据此输出布局 JSON
}
