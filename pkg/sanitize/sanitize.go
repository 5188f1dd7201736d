// Package sanitize 清洗用户输入的纯文本（评论、标题等）。
package sanitize

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxCommentLength 评论最大长度（按字符计，清洗之后）
const MaxCommentLength = 2000

// strict 去掉所有标签，并转义 & < > " ' 等字符
var strict = bluemonday.StrictPolicy()

// Text 去除 HTML 标签、转义特殊字符并去掉首尾空白
func Text(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(strict.Sanitize(raw))
}

// Length 返回字符数（非字节数）
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

var (
	ErrEmpty   = errors.New("评论内容不能为空")
	ErrTooLong = errors.New("评论内容不能超过 2000 个字符")
)

// CommentText 清洗评论内容并校验长度，返回清洗后的文本
func CommentText(raw string) (string, error) {
	text := Text(raw)
	if text == "" {
		return "", ErrEmpty
	}
	if Length(text) > MaxCommentLength {
		return "", ErrTooLong
	}
	return text, nil
}
