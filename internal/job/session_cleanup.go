package job

import (
	"context"
	"log"
	"time"

	"bankdemo/internal/repository"
)

// SessionCleanupJob 过期会话清理任务
// 会话有效性已经由校验时的安全缓冲保证，这里只是定期回收死行，
// 避免 session 表被废弃记录撑大
type SessionCleanupJob struct {
	sessionRepo repository.SessionRepository
	stopCh      chan struct{}
	interval    time.Duration
	batchSize   int
}

func NewSessionCleanupJob(sessionRepo repository.SessionRepository) *SessionCleanupJob {
	return &SessionCleanupJob{
		sessionRepo: sessionRepo,
		stopCh:      make(chan struct{}),
		interval:    time.Minute,
		batchSize:   100,
	}
}

func (j *SessionCleanupJob) Start(ctx context.Context) {
	log.Println("[SessionCleanup] 会话清理任务启动")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[SessionCleanup] 收到停止信号，任务退出")
			return
		case <-j.stopCh:
			log.Println("[SessionCleanup] 任务停止")
			return
		case <-ticker.C:
			j.deleteExpiredSessions(ctx)
		}
	}
}

func (j *SessionCleanupJob) Stop() {
	close(j.stopCh)
}

func (j *SessionCleanupJob) deleteExpiredSessions(ctx context.Context) {
	deleted, err := j.sessionRepo.DeleteExpired(ctx, time.Now(), j.batchSize)
	if err != nil {
		log.Printf("[SessionCleanup] 清理过期会话失败: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[SessionCleanup] 已清理 %d 条过期会话", deleted)
	}
}
