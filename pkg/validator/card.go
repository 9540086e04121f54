package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrCardEmpty    = errors.New("卡号不能为空")
	ErrCardLength   = errors.New("卡号必须为13-19位数字")
	ErrCardNetwork  = errors.New("不支持的卡组织")
	ErrCardChecksum = errors.New("卡号校验和不通过")
)

var cardDigitsPattern = regexp.MustCompile(`^[0-9]{13,19}$`)

// 可识别的卡组织前缀
var cardNetworkPrefixes = []*regexp.Regexp{
	regexp.MustCompile(`^4`),        // Visa
	regexp.MustCompile(`^5[1-5]`),   // Mastercard
	regexp.MustCompile(`^3[47]`),    // Amex
	regexp.MustCompile(`^6(011|5)`), // Discover
	// Mastercard 2 系列（2221-2720）
	regexp.MustCompile(`^2(2[2-9][0-9]|[3-6][0-9]{2}|7[01][0-9]|720)`),
}

// ValidateCardNumber 校验银行卡号
// 流程：去掉空格和连字符 -> 13-19位纯数字 -> 可识别卡组织前缀 -> Luhn 模10校验
func ValidateCardNumber(number string) error {
	cleanNum := strings.ReplaceAll(number, " ", "")
	cleanNum = strings.ReplaceAll(cleanNum, "-", "")

	if cleanNum == "" {
		return ErrCardEmpty
	}

	if !cardDigitsPattern.MatchString(cleanNum) {
		return ErrCardLength
	}

	recognized := false
	for _, p := range cardNetworkPrefixes {
		if p.MatchString(cleanNum) {
			recognized = true
			break
		}
	}
	if !recognized {
		return ErrCardNetwork
	}

	if !passesLuhn(cleanNum) {
		return ErrCardChecksum
	}

	return nil
}

// passesLuhn 标准模10校验：从最右一位起每隔一位翻倍，超过9则减9，总和模10为0则通过
func passesLuhn(number string) bool {
	sum := 0
	alternate := false
	for i := len(number) - 1; i >= 0; i-- {
		n := int(number[i] - '0')
		if alternate {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alternate = !alternate
	}
	return sum%10 == 0
}
