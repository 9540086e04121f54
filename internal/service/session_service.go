package service

import (
	"context"
	"fmt"
	"time"

	"bankdemo/internal/config"
	"bankdemo/internal/model"
	"bankdemo/internal/repository"
	"bankdemo/pkg/idgen"
)

// SessionService 会话管理
//
// 单活跃会话：签发新会话时先删除该用户全部旧会话再插入，旧令牌立即失效。
// 过期判断带安全缓冲：剩余有效期不大于缓冲值即视为已过期（边界不含），
// 容忍时钟偏斜，也避免会话在一次请求处理到一半时过期。
type SessionService struct {
	sessionRepo repository.SessionRepository
	lifetime    time.Duration
	buffer      time.Duration
}

func NewSessionService(sessionRepo repository.SessionRepository, cfg *config.Config) *SessionService {
	lifetime := time.Duration(cfg.Business.SessionLifetimeMinutes) * time.Minute
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	buffer := time.Duration(cfg.Business.SessionExpiryBufferMinutes) * time.Minute
	if buffer <= 0 {
		buffer = 5 * time.Minute
	}
	return &SessionService{
		sessionRepo: sessionRepo,
		lifetime:    lifetime,
		buffer:      buffer,
	}
}

// Lifetime 会话有效期，供凭证下发（cookie MaxAge）使用
func (s *SessionService) Lifetime() time.Duration {
	return s.lifetime
}

// Issue 签发会话：删旧插新是一个逻辑失效步骤
func (s *SessionService) Issue(ctx context.Context, ownerID int64) (*model.Session, error) {
	token, err := idgen.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("生成会话令牌失败: %w", err)
	}

	session := &model.Session{
		OwnerID:   ownerID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.lifetime),
	}
	if err := s.sessionRepo.Replace(ctx, session); err != nil {
		return nil, fmt.Errorf("写入会话失败: %w", err)
	}

	return session, nil
}

// Validate 校验令牌
// 有效条件是 expiresAt - now 严格大于安全缓冲；恰好等于缓冲已经算过期
func (s *SessionService) Validate(ctx context.Context, token string, now time.Time) (*model.Session, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("查询会话失败: %w", err)
	}
	if session == nil {
		return nil, ErrSessionInvalid
	}

	if session.ExpiresAt.Sub(now) <= s.buffer {
		return nil, ErrSessionInvalid
	}

	return session, nil
}

// Terminate 终止会话：删除后回读确认
// 只有确认记录已不存在才报告成功；删后仍能读到属于致命的状态不一致。
// 令牌为空或会话本就不存在视为已登出，直接成功。
func (s *SessionService) Terminate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("查询会话失败: %w", err)
	}
	if session == nil {
		return nil
	}

	if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("删除会话失败: %w", err)
	}

	remained, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("会话删除后回读失败: %w", err)
	}
	if remained != nil {
		return fmt.Errorf("会话删除后仍然存在: %w", ErrStateInconsistent)
	}

	return nil
}
