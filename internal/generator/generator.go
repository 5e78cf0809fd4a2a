// ============================================================================
// taskgen 產生器 - 協調各階段
// ============================================================================
//
// Package: internal/generator
// 文件: generator.go
// 功能: 串接任務數量、執行時間、優先順序與檔案寫入
//
// 單次流程:
//   1. taskcount.Select   - 決定任務數量 N
//   2. exectime.Sample    - 產生 N 組 BCET/WCET
//   3. priority.Assign    - 產生 N 個唯一優先順序
//   4. archive.AppendRun  - 追加寫入檔案並寫入分隔符號
//
// 資源管理:
//   每次 Execute 只開啟檔案一次，所有結束路徑都會關閉檔案。
//
// ============================================================================

package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ChuLiYu/taskgen/internal/exectime"
	"github.com/ChuLiYu/taskgen/internal/metrics"
	"github.com/ChuLiYu/taskgen/internal/priority"
	"github.com/ChuLiYu/taskgen/internal/random"
	"github.com/ChuLiYu/taskgen/internal/storage/archive"
	"github.com/ChuLiYu/taskgen/internal/taskcount"
	"github.com/ChuLiYu/taskgen/pkg/types"
	"github.com/google/uuid"
)

// ErrInvalidConfig 配置不合法
var ErrInvalidConfig = errors.New("generator: invalid config")

// Config 產生器配置
type Config struct {
	ArchivePath string       // 任務檔案路徑（預設 tasks.txt）
	Runs        int          // 每次執行的流程數（預設 1）
	Logger      *slog.Logger // 日誌（預設 slog.Default()）
}

// Result 一次 Execute 的結果
type Result struct {
	Path  string
	Runs  []types.Run
	Tasks int // 所有流程的任務總數
}

// Generator 產生器
type Generator struct {
	src     random.Source
	metrics *metrics.Collector
	config  Config
	log     *slog.Logger
	now     func() time.Time
	open    func(path string) (*archive.Writer, error) // 測試時可替換
}

// New 建立產生器
//
// 參數：
//   - config: 產生器配置，零值欄位使用預設值
//   - src: 亂數來源，整個程序只建立一次
//   - collector: 指標收集器，可為 nil
func New(config Config, src random.Source, collector *metrics.Collector) (*Generator, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidConfig)
	}
	if config.ArchivePath == "" {
		config.ArchivePath = archive.DefaultPath
	}
	if config.Runs == 0 {
		config.Runs = 1
	}
	if config.Runs < 0 {
		return nil, fmt.Errorf("%w: runs must be at least 1, got %d", ErrInvalidConfig, config.Runs)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Generator{
		src:     src,
		metrics: collector,
		config:  config,
		log:     config.Logger,
		now:     time.Now,
		open:    archive.Open,
	}, nil
}

// Generate 產生一次流程的任務資料（不寫入檔案）
func (g *Generator) Generate() (types.Run, error) {
	n := taskcount.Select(g.src)
	times := exectime.Sample(g.src, n)

	ranks, err := priority.Assign(g.src, n)
	if err != nil {
		return types.Run{}, fmt.Errorf("failed to assign priorities: %w", err)
	}

	run := types.Run{
		ID:    uuid.New(),
		Tasks: make([]types.Task, n),
	}
	for i := 0; i < n; i++ {
		run.Tasks[i] = types.Task{
			Index:    i + 1,
			BCET:     times[i].BCET,
			WCET:     times[i].WCET,
			Priority: ranks[i],
		}
	}

	g.log.Debug("Run generated",
		"run_id", run.ID,
		"tasks", n)
	return run, nil
}

// Execute 開啟任務檔案並依配置寫入所有流程
//
// 任何檔案錯誤都是致命的，不重試；已寫入的流程保留在檔案中。
// 關閉失敗只在先前沒有錯誤時回傳，否則保留先前的錯誤。
func (g *Generator) Execute() (result Result, err error) {
	start := g.now()
	result.Path = g.config.ArchivePath

	w, err := g.open(g.config.ArchivePath)
	if err != nil {
		g.recordFailure()
		return result, err
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			g.recordFailure()
			err = closeErr
		}
	}()

	for i := 0; i < g.config.Runs; i++ {
		run, genErr := g.Generate()
		if genErr != nil {
			return result, genErr
		}

		if err := w.AppendRun(run); err != nil {
			g.recordFailure()
			g.log.Error("Failed to append run",
				"run_id", run.ID,
				"path", g.config.ArchivePath,
				"error", err)
			return result, err
		}

		if g.metrics != nil {
			g.metrics.RecordRun(run.Len(), g.now())
		}
		result.Runs = append(result.Runs, run)
		result.Tasks += run.Len()

		g.log.Info("Run appended",
			"run_id", run.ID,
			"tasks", run.Len(),
			"path", g.config.ArchivePath)
	}

	g.log.Info("Archive updated",
		"path", g.config.ArchivePath,
		"runs", len(result.Runs),
		"tasks", result.Tasks,
		"duration", g.now().Sub(start))
	return result, nil
}

func (g *Generator) recordFailure() {
	if g.metrics != nil {
		g.metrics.RecordWriteFailure()
	}
}
