package service

import (
	"errors"
)

var (
	ErrInvalidAccountType   = errors.New("账户类型不合法")
	ErrDuplicateAccountType = errors.New("该类型账户已存在")
	ErrAccountInactive      = errors.New("账户状态不可用")
	ErrAmountExceedsCeiling = errors.New("金额超过单笔存款上限")
	ErrUsernameInvalid      = errors.New("用户名长度需在3-64个字符之间")
	ErrUsernameTaken        = errors.New("用户名已被占用")
	ErrInvalidCredentials   = errors.New("用户名或密码错误")
	ErrSessionInvalid       = errors.New("会话无效或已过期")

	// ErrStateInconsistent 写后读空或删后读到：存储状态与刚执行的写操作矛盾。
	// 一律按致命错误原样上报，绝不用凭空构造的对象替代失败的读取。
	ErrStateInconsistent = errors.New("存储状态不一致")
)
