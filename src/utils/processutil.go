package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// TimeLayouts 数据文件中可能出现的时间格式
var TimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// MissingColumns 返回 df 中缺失的列名, 顺序与 required 一致
func MissingColumns(df dataframe.DataFrame, required []string) []string {
	var missing []string
	names := df.Names()
	for _, col := range required {
		if !Contains(names, col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// ParseTime 依次尝试 TimeLayouts 解析时间字符串
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	for _, layout := range TimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time value %q", s)
}

// Day 截断到当天零点
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
