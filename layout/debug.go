package layout

import (
	"encoding/json"
	"os"
)

// DebugReport 汇总一次任务的排版结果，便于调试或可视化。
type DebugReport struct {
	Job       string              `json:"job"`
	Size      CanvasSize          `json:"size"`
	Style     Style               `json:"style"`
	Locked    []string            `json:"locked,omitempty"` // 预设锁定、用户值被忽略的样式字段
	Collage   *CollagePlan        `json:"collage,omitempty"`
	Specimens map[string]Specimen `json:"specimens,omitempty"` // 按字体展示名索引
}

// WriteDebugJSON 将排版报告输出为 JSON。
func WriteDebugJSON(report *DebugReport, path string) error {
	if report == nil {
		return nil
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
