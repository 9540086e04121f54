package validator

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"
)

var (
	ErrPhoneMalformed     = errors.New("手机号格式不正确，需符合 E.164")
	ErrPasswordTooShort   = errors.New("密码至少8位")
	ErrPasswordTooWeak    = errors.New("密码必须同时包含大写字母、小写字母和数字")
	ErrBirthDateMalformed = errors.New("出生日期格式不正确，需为 YYYY-MM-DD")
	ErrBirthDateInFuture  = errors.New("出生日期不能晚于今天")
	ErrUnderage           = errors.New("年龄必须满18岁")
	ErrStateCodeInvalid   = errors.New("州代码不合法")
)

// E.164：可选 + 前缀，首位非零，总长 8-15 位
var phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{7,14}$`)

// ValidatePhone 校验手机号（E.164）
// 允许输入中带空格、连字符、括号，先剥离再校验
func ValidatePhone(phone string) error {
	clean := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	if !phonePattern.MatchString(clean) {
		return ErrPhoneMalformed
	}
	return nil
}

// ValidatePassword 校验密码强度：至少8位，含大写、小写、数字
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return ErrPasswordTooWeak
	}
	return nil
}

// ValidateDateOfBirth 校验出生日期：YYYY-MM-DD、不晚于今天、年满18岁
func ValidateDateOfBirth(dob string) error {
	birth, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return ErrBirthDateMalformed
	}

	now := time.Now()
	if birth.After(now) {
		return ErrBirthDateInFuture
	}

	adult := birth.AddDate(18, 0, 0)
	if adult.After(now) {
		return ErrUnderage
	}
	return nil
}

// 美国 50 州 + 哥伦比亚特区
var stateCodes = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {},
	"DE": {}, "DC": {}, "FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {},
	"IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {},
	"NV": {}, "NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {},
	"OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {}, "SD": {},
	"TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {},
	"WI": {}, "WY": {},
}

// ValidateStateCode 校验美国州代码（两位大写字母）
func ValidateStateCode(state string) error {
	if _, ok := stateCodes[strings.ToUpper(strings.TrimSpace(state))]; !ok {
		return ErrStateCodeInvalid
	}
	return nil
}
