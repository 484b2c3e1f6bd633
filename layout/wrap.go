package layout

import (
	"strings"
)

// Wrap 将文本拆成可绘制的行。
//
// 单行模式下原样返回一行，不论宽度。否则按 '\n' 分段，每段独立折行且至少产生一行
// （空段落产生一个空行）。段内按字符贪心累积：追加一个字符后若测量宽度超过 maxWidth
// 且当前行非空，则提交当前行并以该字符开启新行。因此单个超宽字符会独占一行。
func Wrap(text string, maxWidth float64, m Measurer, style Style, singleLine bool) []TextLine {
	measure := func(s string) float64 { return m.MeasureText(s, style.LetterSpacing) }
	if singleLine {
		return []TextLine{{Content: text, Width: measure(text)}}
	}

	paragraphs := strings.Split(strings.ReplaceAll(text, "\r", ""), "\n")
	lines := make([]TextLine, 0, len(paragraphs))
	for _, para := range paragraphs {
		lines = append(lines, wrapParagraph(para, maxWidth, measure)...)
	}
	return lines
}

func wrapParagraph(para string, maxWidth float64, measure func(string) float64) []TextLine {
	if para == "" {
		return []TextLine{{}}
	}
	var (
		lines   []TextLine
		current []rune
		width   float64
	)
	// 每步测量完整候选行（字距、连字计入宽度），整段共 O(n²) 次测量。
	for _, r := range para {
		candidate := string(append(current, r))
		w := measure(candidate)
		if w > maxWidth && len(current) > 0 {
			lines = append(lines, TextLine{Content: string(current), Width: width})
			current = []rune{r}
			width = measure(string(r))
			continue
		}
		current = append(current, r)
		width = w
	}
	return append(lines, TextLine{Content: string(current), Width: width})
}
