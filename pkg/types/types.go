// Package types 定義了 taskgen 產生的核心領域模型
package types

import "github.com/google/uuid"

// Task 一個合成任務，由單次產生流程決定，寫入後不再變更
type Task struct {
	Index    int     `json:"index"`    // 任務編號（從 1 開始）
	BCET     float64 `json:"bcet"`     // 最佳執行時間（秒）
	WCET     float64 `json:"wcet"`     // 最差執行時間（秒），WCET >= BCET
	Priority int     `json:"priority"` // 優先順序，批次內唯一，範圍 1..N
}

// Run 單次產生流程的結果
//
// ID 僅用於日誌與監控關聯，不寫入檔案。
type Run struct {
	ID    uuid.UUID `json:"id"`
	Tasks []Task    `json:"tasks"` // 依原始任務順序排列
}

// Len 回傳此次產生的任務數量
func (r Run) Len() int {
	return len(r.Tasks)
}
