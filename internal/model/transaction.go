package model

import (
	"time"
)

// ============================================================================
// 交易流水实体
// ============================================================================

const (
	TransactionTypeDeposit = "DEPOSIT" // 存款
)

const (
	TransactionStatusCompleted = "COMPLETED" // 已完成
)

// Transaction 交易流水表
// 记录账户的每一笔资金变动，是对账的核心依据
//
// 【重要】流水表设计原则：
// 1. 只追加，不修改，不删除 —— 保证审计可追溯
// 2. 自增主键 ID 是唯一的先后顺序依据 —— 并发写入下时间戳可能重复或偏斜，不可用于排序
// 3. request_no 全局唯一 —— 同一请求重复提交只会落一条流水
type Transaction struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"` // 流水号（对外展示用）
	RequestNo     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"request_no"`     // 幂等号，客户端生成
	AccountID     int64     `gorm:"index;not null" json:"account_id"`
	Type          string    `gorm:"type:varchar(20);not null" json:"type"`
	Amount        int64     `gorm:"not null" json:"amount"` // 金额（分），存款恒为正
	Description   string    `gorm:"type:varchar(256)" json:"description"`
	Status        string    `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Transaction) TableName() string {
	return "account_transaction"
}
