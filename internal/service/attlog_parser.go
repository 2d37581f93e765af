package service

import (
	"iter"
	"strings"
)

// ── ATTLOG 协议解析器 ──────────────────────────────────────
//
// 职责：将设备推送的 ATTLOG 文本正文解析为打卡元组。
//
// 格式约定：
//   - 每行一条记录，以 CR/LF 分隔
//   - 字段以任意空白分隔：工号 日期 时间 [状态] [工作码] [其余字段忽略]
//   - 字段不足 3 个的行直接丢弃，不视为错误
//   - 时间保持设备本地格式的字符串，不做日历解析
// ─────────────────────────────────────────────────────────────

const (
	attlogTable     = "attlog"
	defaultStatus   = "0"
	defaultWorkCode = "0"
)

// PunchTuple 单行解析结果
type PunchTuple struct {
	UserID   string
	LogTime  string
	Status   string
	WorkCode string
	RawLine  string
}

// IsAttlogTable 判断推送表名是否为 ATTLOG（不区分大小写）
func IsAttlogTable(table string) bool {
	return strings.EqualFold(strings.TrimSpace(table), attlogTable)
}

// ParseAttlog 惰性解析 ATTLOG 正文；畸形输入只会产生更少的元组，从不报错
func ParseAttlog(body string) iter.Seq[PunchTuple] {
	return func(yield func(PunchTuple) bool) {
		for _, line := range splitLines(body) {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			tuple, ok := parseAttlogLine(line)
			if !ok {
				continue
			}
			if !yield(tuple) {
				return
			}
		}
	}
}

func parseAttlogLine(line string) (PunchTuple, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return PunchTuple{}, false
	}

	tuple := PunchTuple{
		UserID:   fields[0],
		LogTime:  fields[1] + " " + fields[2],
		Status:   defaultStatus,
		WorkCode: defaultWorkCode,
		RawLine:  line,
	}
	if len(fields) > 3 {
		tuple.Status = fields[3]
	}
	if len(fields) > 4 {
		tuple.WorkCode = fields[4]
	}
	return tuple, true
}

// splitLines 按 \r\n、\n、\r 任一换行符切分
func splitLines(body string) []string {
	return strings.FieldsFunc(body, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
}
