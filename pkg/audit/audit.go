package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// unsafeName 序列号中不允许出现在文件名里的字符
var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileWriter 按设备序列号追加写审计文件：<dir>/<SN>.log
// 未知设备同样记录，用于事后追溯
type FileWriter struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewFileWriter 创建审计写入器，目录不存在时自动创建
func NewFileWriter(dir string) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建审计目录失败: %w", err)
	}
	return &FileWriter{dir: dir, now: time.Now}, nil
}

// Append 追加一条推送记录
func (w *FileWriter) Append(serialNumber, table, body string) error {
	name := unsafeName.ReplaceAllString(strings.TrimSpace(serialNumber), "_")
	if name == "" {
		name = "_unknown"
	}

	entry := fmt.Sprintf("[%s] table=%s bytes=%d\n%s\n",
		w.now().Format(time.RFC3339), table, len(body), strings.TrimRight(body, "\r\n"))

	// 同一进程内串行化，避免多请求交错写入同一文件
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(w.dir, name+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(entry)
	return err
}

// Discard 不落盘的审计写入器（未配置 audit_dir 时使用）
type Discard struct{}

// Append 丢弃记录
func (Discard) Append(string, string, string) error { return nil }
