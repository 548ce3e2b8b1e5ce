package service

import (
	"math"
	"strconv"
	"strings"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
	// maxPage 保证 (page-1)*pageSize 不会溢出 int。
	maxPage = math.MaxInt / maxPageSize
)

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	if page > maxPage {
		return maxPage
	}
	return page
}

func clampPageSize(size int) int {
	if size < 1 {
		return 1
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}

// leadingInt 读取开头的可选符号与数字，其后的内容忽略（"20.5" → 20，"5abc" → 5）。
// 没有数字时 ok 为 false；超出 int 范围时取边界值。
func leadingInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		if s[0] == '-' {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	return n, true
}

// parsePage 解析失败时返回 1。
func parsePage(raw string) int {
	page, ok := leadingInt(raw)
	if !ok {
		return 1
	}
	return normalizePage(page)
}

// parsePageSize 解析失败或缺省时返回 10，否则限制在 1..50。
func parsePageSize(raw string) int {
	size, ok := leadingInt(raw)
	if !ok {
		return defaultPageSize
	}
	return clampPageSize(size)
}

func hasMore(page, pageSize, returned int, total int64) bool {
	offset := int64(page-1) * int64(pageSize)
	return offset+int64(returned) < total
}
