package util

import (
	"strconv"
)

// ParsePositiveInt 解析正整数，失败或非正数时返回 fallback
func ParsePositiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
