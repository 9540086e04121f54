package mysql

import (
	"context"
	"errors"
	"time"

	"bankdemo/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Replace 先删后插，在同一个数据库事务内完成
// 同一用户任何时刻至多一条会话记录，外部观察不到两个同时有效的令牌
func (r *SessionRepository) Replace(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", session.OwnerID).
			Delete(&model.Session{}).Error; err != nil {
			return err
		}
		return tx.Create(session).Error
	})
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.Session{}).Error
}

// DeleteExpired 批量删除已过期会话，供后台清理任务调用
func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time, limit int) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Limit(limit).
		Delete(&model.Session{})
	return result.RowsAffected, result.Error
}
