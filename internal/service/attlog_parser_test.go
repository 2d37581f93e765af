package service

import (
	"slices"
	"testing"
)

func collect(body string) []PunchTuple {
	return slices.Collect(ParseAttlog(body))
}

func TestParseAttlog_FullLine(t *testing.T) {
	got := collect("1001\t2024-01-05 08:01:00\t1\t15\t0\t0\n")
	if len(got) != 1 {
		t.Fatalf("期望 1 条，实际 %d", len(got))
	}
	want := PunchTuple{
		UserID:   "1001",
		LogTime:  "2024-01-05 08:01:00",
		Status:   "1",
		WorkCode: "15",
		RawLine:  "1001\t2024-01-05 08:01:00\t1\t15\t0\t0",
	}
	if got[0] != want {
		t.Errorf("期望 %+v，实际 %+v", want, got[0])
	}
}

func TestParseAttlog_DefaultsStatusAndWorkCode(t *testing.T) {
	got := collect("7 2024-01-05 08:01:00")
	if len(got) != 1 {
		t.Fatalf("期望 1 条，实际 %d", len(got))
	}
	if got[0].UserID != "7" || got[0].LogTime != "2024-01-05 08:01:00" {
		t.Errorf("解析结果错误: %+v", got[0])
	}
	if got[0].Status != "0" || got[0].WorkCode != "0" {
		t.Errorf("缺省状态/工作码应为 0，实际 status=%s workCode=%s", got[0].Status, got[0].WorkCode)
	}
}

func TestParseAttlog_DropsShortLines(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"空正文", ""},
		{"仅空白", "  \r\n\t\n"},
		{"缺少时间", "7 2024-01-05"},
		// 字面量 \t 不是分隔符：整行只有两个空白分隔字段
		{"字面量转义制表符", `7\t2024-01-05 08:01:00` + "\n"},
		{"单字段", "OPLOG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := collect(tt.body); len(got) != 0 {
				t.Errorf("期望 0 条，实际 %d: %+v", len(got), got)
			}
		})
	}
}

func TestParseAttlog_MixedLineEndings(t *testing.T) {
	body := "1 2024-01-05 08:00:00 0\r\n\r\n2 2024-01-05 08:05:00\rbad\n3 2024-01-05 08:10:00 1 2\n"
	got := collect(body)
	if len(got) != 3 {
		t.Fatalf("期望 3 条，实际 %d", len(got))
	}
	for i, id := range []string{"1", "2", "3"} {
		if got[i].UserID != id {
			t.Errorf("第 %d 条期望工号 %s，实际 %s", i, id, got[i].UserID)
		}
	}
	if got[0].RawLine != "1 2024-01-05 08:00:00 0" {
		t.Errorf("原始行应去除首尾空白，实际 %q", got[0].RawLine)
	}
}

func TestParseAttlog_NeverExceedsNonEmptyLines(t *testing.T) {
	body := "a b c\n\nx\n  \nd e f g h i j\n"
	got := collect(body)
	if len(got) != 2 {
		t.Errorf("期望 2 条，实际 %d", len(got))
	}
}

func TestParseAttlog_StopsEarly(t *testing.T) {
	body := "1 d t\n2 d t\n3 d t\n"
	var seen []string
	for tuple := range ParseAttlog(body) {
		seen = append(seen, tuple.UserID)
		if len(seen) == 2 {
			break
		}
	}
	if !slices.Equal(seen, []string{"1", "2"}) {
		t.Errorf("期望提前终止于第 2 条，实际 %v", seen)
	}
}

func TestIsAttlogTable(t *testing.T) {
	tests := []struct {
		table string
		want  bool
	}{
		{"ATTLOG", true},
		{"attlog", true},
		{" AttLog ", true},
		{"OPERLOG", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsAttlogTable(tt.table); got != tt.want {
			t.Errorf("IsAttlogTable(%q) = %v，期望 %v", tt.table, got, tt.want)
		}
	}
}
