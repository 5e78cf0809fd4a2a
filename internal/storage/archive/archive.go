package archive

// ============================================================================
// 任務檔案寫入
// 職責：
// 1. 以追加模式開啟檔案（不存在則建立，永不截斷）
// 2. 每次產生流程寫入 N 行任務資料加上一行分隔符號
// 3. 寫入後同步到磁碟
// ============================================================================

import (
	"bufio"
	"io"
	"os"
	"sync"

	"github.com/ChuLiYu/taskgen/pkg/types"
)

// DefaultPath 預設的任務檔案路徑
const DefaultPath = "tasks.txt"

// File 定義寫入所需的檔案操作
// 這允許在測試中對檔案操作進行模擬
type File interface {
	io.Writer
	Sync() error
	Close() error
}

// Writer 任務檔案的追加寫入器
type Writer struct {
	mu     sync.Mutex
	file   File
	buf    *bufio.Writer
	path   string
	runs   int // 已寫入的流程數
	lines  int // 已寫入的任務行數
	closed bool
}

// Open 以 O_CREATE | O_APPEND | O_WRONLY 模式開啟任務檔案
func Open(path string) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	return NewWriter(file, path), nil
}

// NewWriter 以既有的檔案建立寫入器，path 僅用於錯誤訊息
func NewWriter(file File, path string) *Writer {
	return &Writer{
		file: file,
		buf:  bufio.NewWriter(file),
		path: path,
	}
}

// AppendRun 將一次產生流程寫入檔案
//
// 格式：
//
//	<index> <bcet> <wcet> <priority>
//	...
//	---
//
// 中途失敗時檔案可能留下不完整的流程，不做回復。
func (w *Writer) AppendRun(run types.Run) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrArchiveClosed
	}

	for _, task := range run.Tasks {
		if _, err := w.buf.WriteString(FormatTask(task) + "\n"); err != nil {
			return &IOError{Op: "write", Path: w.path, Err: err}
		}
	}
	if _, err := w.buf.WriteString(Separator + "\n"); err != nil {
		return &IOError{Op: "write", Path: w.path, Err: err}
	}

	if err := w.flushLocked(); err != nil {
		return err
	}

	w.runs++
	w.lines += len(run.Tasks)
	return nil
}

// Close 將緩衝資料寫出並關閉檔案，重複呼叫不會出錯
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	flushErr := w.flushLocked()
	if err := w.file.Close(); err != nil && flushErr == nil {
		return &IOError{Op: "close", Path: w.path, Err: err}
	}
	return flushErr
}

// Path 取得任務檔案路徑
func (w *Writer) Path() string {
	return w.path
}

// Stats 回傳此寫入器已寫入的流程數與任務行數
func (w *Writer) Stats() (runs, lines int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs, w.lines
}

// flushLocked 假設調用者已經持有 w.mu 鎖
func (w *Writer) flushLocked() error {
	if err := w.buf.Flush(); err != nil {
		return &IOError{Op: "write", Path: w.path, Err: err}
	}
	if err := w.file.Sync(); err != nil {
		return &IOError{Op: "sync", Path: w.path, Err: err}
	}
	return nil
}
