package model

import (
	"fmt"
)

// 金额统一以 int64 最小货币单位（分）参与计算，仅在对外展示时格式化为两位小数字符串。
// 例如 15000 -> "150.00"，50 -> "0.50"。

// FormatCents 将分转换为两位小数的十进制字符串
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
