package job

import (
	"context"
	"testing"
	"time"

	"bankdemo/internal/model"
)

// fakeSessionRepo 只为清理任务服务的最小会话仓储
type fakeSessionRepo struct {
	sessions []*model.Session
}

func (r *fakeSessionRepo) Replace(ctx context.Context, session *model.Session) error {
	r.sessions = append(r.sessions, session)
	return nil
}

func (r *fakeSessionRepo) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	for _, s := range r.sessions {
		if s.Token == token {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) DeleteByToken(ctx context.Context, token string) error {
	kept := r.sessions[:0]
	for _, s := range r.sessions {
		if s.Token != token {
			kept = append(kept, s)
		}
	}
	r.sessions = kept
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(ctx context.Context, before time.Time, limit int) (int64, error) {
	var deleted int64
	kept := r.sessions[:0]
	for _, s := range r.sessions {
		if int(deleted) < limit && s.ExpiresAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	r.sessions = kept
	return deleted, nil
}

func TestDeleteExpiredSessionsKeepsLiveOnes(t *testing.T) {
	repo := &fakeSessionRepo{}
	now := time.Now()
	repo.sessions = []*model.Session{
		{Token: "expired-1", OwnerID: 1, ExpiresAt: now.Add(-time.Hour)},
		{Token: "expired-2", OwnerID: 2, ExpiresAt: now.Add(-time.Minute)},
		{Token: "live", OwnerID: 3, ExpiresAt: now.Add(time.Hour)},
	}

	j := NewSessionCleanupJob(repo)
	j.deleteExpiredSessions(context.Background())

	if len(repo.sessions) != 1 || repo.sessions[0].Token != "live" {
		t.Errorf("清理后应只剩未过期会话，实际 %+v", repo.sessions)
	}
}

func TestDeleteExpiredSessionsRespectsBatchSize(t *testing.T) {
	repo := &fakeSessionRepo{}
	now := time.Now()
	for i := 0; i < 150; i++ {
		repo.sessions = append(repo.sessions, &model.Session{
			OwnerID:   int64(i),
			ExpiresAt: now.Add(-time.Hour),
		})
	}

	j := NewSessionCleanupJob(repo)
	j.deleteExpiredSessions(context.Background())

	// 单轮最多清理 batchSize 条，剩余留给下一轮
	if len(repo.sessions) != 150-j.batchSize {
		t.Errorf("单轮应清理 %d 条，实际剩余 %d", j.batchSize, len(repo.sessions))
	}

	j.deleteExpiredSessions(context.Background())
	if len(repo.sessions) != 0 {
		t.Errorf("第二轮后应清空，实际剩余 %d", len(repo.sessions))
	}
}
