package model

import (
	"time"
)

// User 用户表
// 密码只存 bcrypt 哈希，明文不落库
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(128);not null" json:"-"`
	Phone        string    `gorm:"type:varchar(20);not null" json:"phone"`
	DateOfBirth  string    `gorm:"type:varchar(10);not null" json:"date_of_birth"` // YYYY-MM-DD
	State        string    `gorm:"type:varchar(2);not null" json:"state"`          // 美国州代码
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
