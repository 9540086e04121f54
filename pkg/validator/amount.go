package validator

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrAmountEmpty       = errors.New("金额不能为空")
	ErrAmountMalformed   = errors.New("金额格式不正确")
	ErrAmountPrecision   = errors.New("金额最多两位小数")
	ErrAmountNotPositive = errors.New("金额必须大于0")
	ErrAmountTooLarge    = errors.New("金额超出可处理范围")
)

// 只接受无符号十进制数：负号、指数、NaN、多个小数点全部视为格式错误
var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ValidateAmount 校验并规范化金额字符串，返回规范化结果与对应的分值
//
// 规范化规则：
//   - 去掉多余前导零："000100.00" -> "100.00"
//   - 小数点前保留一个零："0.50" 保持 "0.50"
//   - 小数部分原样保留（最多两位）
//
// 拒绝：空串、非十进制格式、超过两位小数、数值不大于零、整数位超长
func ValidateAmount(input string) (string, int64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", 0, ErrAmountEmpty
	}

	if !amountPattern.MatchString(s) {
		return "", 0, ErrAmountMalformed
	}

	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart = s[:idx]
		fracPart = s[idx+1:]
	}

	if len(fracPart) > 2 {
		return "", 0, ErrAmountPrecision
	}

	// 去前导零，全零时保留一个
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}

	// 15 位整数已远超业务上限，同时保证转换不会溢出 int64
	if len(intPart) > 15 {
		return "", 0, ErrAmountTooLarge
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return "", 0, ErrAmountMalformed
	}

	cents := whole * 100
	if fracPart != "" {
		frac, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return "", 0, ErrAmountMalformed
		}
		if len(fracPart) == 1 {
			frac *= 10
		}
		cents += frac
	}

	if cents <= 0 {
		return "", 0, ErrAmountNotPositive
	}

	normalized := intPart
	if fracPart != "" {
		normalized += "." + fracPart
	}

	return normalized, cents, nil
}
