package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/ByLCY/specimen/dsl"
	"github.com/ByLCY/specimen/export"
	"github.com/ByLCY/specimen/fonts"
	"github.com/ByLCY/specimen/layout"
	"github.com/ByLCY/specimen/renderer"
	canvasrenderer "github.com/ByLCY/specimen/renderer/canvas"
)

func main() {
	input := flag.String("in", "examples/demo.specimen", "样张任务文件路径")
	output := flag.String("out", "output", "导出目录")
	debug := flag.String("debug", "", "排版调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到任务文本的 JSON 数据")
	delay := flag.Duration("delay", 0, "批量导出时两帧之间的额外等待")
	flag.Parse()

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var r renderer.Renderer = canvasrenderer.NewRenderer()
	written, err := run(ctx, *input, *output, *debug, inputData, *delay, r)
	if err != nil {
		log.Fatalf("导出样张失败: %v", err)
	}
	if len(written) == 0 {
		fmt.Println("没有可导出的内容")
		return
	}
	for _, path := range written {
		fmt.Printf("已生成：%s\n", path)
	}
}

// run 串联解析、字体加载、渲染与导出，返回写出的文件路径。
func run(ctx context.Context, inputPath, outputDir, debugPath string, data any, delay time.Duration, r renderer.Renderer) ([]string, error) {
	if r == nil {
		return nil, fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("无法打开任务文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("解析任务文件失败: %w", err)
	}
	job, err := layout.Build(doc, layout.BuildOptions{Data: data, Debug: debugPath != ""})
	if err != nil {
		return nil, fmt.Errorf("构建任务失败: %w", err)
	}
	format, err := export.ParseFormat(job.Export.Format)
	if err != nil {
		return nil, err
	}

	loader := fonts.NewLoader(filepath.Dir(inputPath), nil)
	handles := export.Select(loader.LoadAll(job.Fonts), job.Export.Select)

	pipeline := export.NewPipeline(r, export.Options{FrameDelay: delay})
	artifacts, err := pipeline.Export(ctx, export.Request{
		Fonts:       handles,
		Size:        job.Size,
		Style:       job.Style,
		Text:        job.Text,
		Format:      format,
		Collage:     job.Export.Collage,
		Preview:     job.Export.Preview,
		Filename:    job.Export.Filename,
		JPEGQuality: job.Export.JPEGQuality,
		Meta:        job.Meta,
	})
	if err != nil {
		return nil, fmt.Errorf("导出失败: %w", err)
	}

	if debugPath != "" {
		if err := writeDebug(job, artifacts, debugPath); err != nil {
			return nil, err
		}
	}
	if len(artifacts) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	written := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		path := filepath.Join(outputDir, a.Filename)
		if err := os.WriteFile(path, a.Data, 0o644); err != nil {
			return nil, fmt.Errorf("写入 %s 失败: %w", a.Filename, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeDebug(job *layout.Job, artifacts []export.Artifact, debugPath string) error {
	report := &layout.DebugReport{
		Job:       job.Name,
		Size:      job.Size,
		Style:     job.ResolvedStyle(),
		Locked:    job.Size.Locked.LockedFields(),
		Specimens: map[string]layout.Specimen{},
	}
	for _, a := range artifacts {
		if a.Collage != nil {
			report.Collage = a.Collage
		}
		for name, spec := range a.Specimens {
			report.Specimens[name] = spec
		}
	}
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(report, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
