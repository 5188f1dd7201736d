// Package viewcount 负责播放量的展示格式与解析。
//
// 存储层只保存整数播放量，"1.2K" 这类字符串仅出现在 API 边界。
// Parse 同时兼容历史数据里直接存成字符串的播放量。
package viewcount

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalid = errors.New("invalid view count")

type unit struct {
	suffix string
	value  int64
}

// 从大到小排列
var units = []unit{
	{"B", 1_000_000_000},
	{"M", 1_000_000},
	{"K", 1_000},
}

// Format 把整数播放量格式化为展示字符串。
// 小于 1000 原样输出；否则保留一位小数（截断，不进位）并追加 K/M/B。
func Format(n int64) string {
	if n < 0 {
		n = 0
	}
	for _, u := range units {
		if n >= u.value {
			tenths := n / (u.value / 10)
			return fmt.Sprintf("%d.%d%s", tenths/10, tenths%10, u.suffix)
		}
	}
	return strconv.FormatInt(n, 10)
}

// Parse 解析展示字符串或纯数字，大小写不敏感，空串视为 0
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	multiplier := int64(1)
	last := s[len(s)-1]
	switch last {
	case 'k', 'K':
		multiplier = 1_000
	case 'm', 'M':
		multiplier = 1_000_000
	case 'b', 'B':
		multiplier = 1_000_000_000
	}
	num := s
	if multiplier > 1 {
		num = strings.TrimSpace(s[:len(s)-1])
	}
	if num == "" || !isDecimal(num) {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	if !strings.Contains(num, ".") {
		n, err := strconv.ParseInt(num, 10, 64)
		if err != nil || n > math.MaxInt64/multiplier {
			return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		return n * multiplier, nil
	}

	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	v := math.Round(f * float64(multiplier))
	if v >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return int64(v), nil
}

// MustParse 解析失败时返回 0，用于兼容脏数据
func MustParse(s string) int64 {
	n, err := Parse(s)
	if err != nil {
		return 0
	}
	return n
}

// Normalize 把任意合法表示规整为标准展示形式
func Normalize(s string) (string, error) {
	n, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Format(n), nil
}

// isDecimal 只允许 "123" 或 "1.5" 形式，不接受符号和指数
func isDecimal(s string) bool {
	dot := false
	digits := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0 && s[0] != '.' && s[len(s)-1] != '.'
}
