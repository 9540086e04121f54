package model

import (
	"time"
)

// ============================================================================
// 账户类型与状态常量
// ============================================================================

const (
	AccountTypeChecking = "checking" // 活期账户
	AccountTypeSavings  = "savings"  // 储蓄账户
)

const (
	AccountStatusActive = "active" // 正常
	AccountStatusFrozen = "frozen" // 冻结（禁止存款）
	AccountStatusClosed = "closed" // 已销户
)

// ValidAccountType 判断账户类型是否合法
func ValidAccountType(accountType string) bool {
	return accountType == AccountTypeChecking || accountType == AccountTypeSavings
}

// Account 账户表
// 每个用户每种账户类型最多一个，由 (owner_id, account_type) 唯一索引保证。
// 余额以 int64 最小货币单位（分）存储，避免浮点误差；
// 余额恒等于该账户全部已完成流水之和，只允许通过存储侧的原子增量更新修改。
type Account struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID       int64     `gorm:"not null;uniqueIndex:uk_owner_type,priority:1" json:"owner_id"`
	AccountNumber string    `gorm:"type:varchar(16);uniqueIndex;not null" json:"account_number"` // 10 位随机账号，对外不可预测
	AccountType   string    `gorm:"type:varchar(16);not null;uniqueIndex:uk_owner_type,priority:2" json:"account_type"`
	Balance       int64     `gorm:"not null;default:0" json:"balance"` // 余额（分），非负
	Status        string    `gorm:"type:varchar(16);not null;default:active" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "account"
}
