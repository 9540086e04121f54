package idgen

import (
	"crypto/rand"
	"fmt"
)

// ============================================================================
// 安全随机数字串生成器
// ============================================================================
//
// 账号、会话令牌这类对外标识必须不可预测，只能取自加密安全的熵源（crypto/rand），
// 任何情况下都不允许退化为 math/rand。熵源不可用时直接返回错误，由调用方按致命错误处理。
//
// 唯一性不在这里保证：调用方拿到候选值后自行对存储查重，冲突则重新生成。
// ============================================================================

const (
	AccountNumberWidth = 10 // 账号宽度
	SessionTokenWidth  = 32 // 会话令牌宽度
)

// SecureDigits 生成固定宽度的十进制数字串
// 逐字节拒绝采样（丢弃 >= 250 的字节）保证每一位在 0-9 上均匀分布
func SecureDigits(width int) (string, error) {
	if width <= 0 {
		return "", fmt.Errorf("数字串宽度不合法: %d", width)
	}

	digits := make([]byte, 0, width)
	buf := make([]byte, width*2)

	for len(digits) < width {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("读取安全熵源失败: %w", err)
		}
		for _, b := range buf {
			// 250-255 会让取模结果偏向 0-5，丢弃后重采样
			if b >= 250 {
				continue
			}
			digits = append(digits, '0'+b%10)
			if len(digits) == width {
				break
			}
		}
	}

	return string(digits), nil
}

// GenerateAccountNumber 生成 10 位账号候选值
func GenerateAccountNumber() (string, error) {
	return SecureDigits(AccountNumberWidth)
}

// GenerateSessionToken 生成 32 位会话令牌
func GenerateSessionToken() (string, error) {
	return SecureDigits(SessionTokenWidth)
}
