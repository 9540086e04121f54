package model

import (
	"time"
)

// Session 会话表
// 每个用户同一时刻至多一条有效会话：签发新会话前先删除该用户全部旧会话。
// token 是 32 位随机数字串，不可预测；过期判断带安全缓冲，不在此结构体内实现。
type Session struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID   int64     `gorm:"index;not null" json:"owner_id"`
	Token     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Session) TableName() string {
	return "session"
}
