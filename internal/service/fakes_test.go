package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"bankdemo/internal/config"
	"bankdemo/internal/model"
	"bankdemo/internal/repository"
)

// 内存仓储实现，仅测试用。行为对齐 repository/mysql：
// 查不到返回 (nil, nil)；自增 ID；request_no 唯一；返回值都是拷贝。

func testConfig() *config.Config {
	return &config.Config{
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{DepositCompleted: "test.deposit.completed"},
		},
		Business: config.BusinessConfig{
			DepositCeilingCents:        1000000,
			SessionLifetimeMinutes:     60,
			SessionExpiryBufferMinutes: 5,
			MaxRetryCount:              3,
			AccountNumberMaxAttempts:   10,
		},
	}
}

// ---------------------------------------------------------------------------

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int64]*model.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

// ---------------------------------------------------------------------------

type memAccountRepo struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*model.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[int64]*model.Account)}
}

func (r *memAccountRepo) Create(_ context.Context, account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	account.ID = r.nextID
	cp := *account
	r.accounts[account.ID] = &cp
	return nil
}

func (r *memAccountRepo) GetByID(_ context.Context, id int64) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *account
	return &cp, nil
}

func (r *memAccountRepo) GetByIDAndOwner(_ context.Context, id, ownerID int64) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok || account.OwnerID != ownerID {
		return nil, nil
	}
	cp := *account
	return &cp, nil
}

func (r *memAccountRepo) GetByOwnerAndType(_ context.Context, ownerID int64, accountType string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.OwnerID == ownerID && account.AccountType == accountType {
			cp := *account
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAccountRepo) ListByOwner(_ context.Context, ownerID int64) ([]*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Account
	for _, account := range r.accounts {
		if account.OwnerID == ownerID {
			cp := *account
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memAccountRepo) ExistsByNumber(_ context.Context, accountNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.AccountNumber == accountNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAccountRepo) AddBalance(_ context.Context, accountID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[accountID]
	if !ok {
		return repository.ErrAccountNotFound
	}
	account.Balance += delta
	return nil
}

// ---------------------------------------------------------------------------

type memTransactionRepo struct {
	mu     sync.Mutex
	nextID int64
	txns   []*model.Transaction
	outbox []*model.OutboxMessage
}

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{}
}

func (r *memTransactionRepo) AppendWithOutbox(_ context.Context, txn *model.Transaction, msg *model.OutboxMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.txns {
		if existing.RequestNo == txn.RequestNo {
			return repository.ErrDuplicateKey
		}
	}
	r.nextID++
	txn.ID = r.nextID
	txn.CreatedAt = time.Now()
	cp := *txn
	r.txns = append(r.txns, &cp)
	if msg != nil {
		mcp := *msg
		mcp.ID = int64(len(r.outbox) + 1)
		r.outbox = append(r.outbox, &mcp)
	}
	return nil
}

func (r *memTransactionRepo) GetByRequestNo(_ context.Context, requestNo string) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, txn := range r.txns {
		if txn.RequestNo == requestNo {
			cp := *txn
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memTransactionRepo) GetLatestByAccountID(_ context.Context, accountID int64) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.Transaction
	for _, txn := range r.txns {
		if txn.AccountID == accountID && (latest == nil || txn.ID > latest.ID) {
			latest = txn
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *memTransactionRepo) ListByAccountID(_ context.Context, accountID int64) ([]*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Transaction
	for _, txn := range r.txns {
		if txn.AccountID == accountID {
			cp := *txn
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memTransactionRepo) outboxCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outbox)
}

// ---------------------------------------------------------------------------

type memSessionRepo struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[string]*model.Session // token -> session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*model.Session)}
}

func (r *memSessionRepo) Replace(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, existing := range r.sessions {
		if existing.OwnerID == session.OwnerID {
			delete(r.sessions, token)
		}
	}
	r.nextID++
	session.ID = r.nextID
	cp := *session
	r.sessions[session.Token] = &cp
	return nil
}

func (r *memSessionRepo) GetByToken(_ context.Context, token string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok {
		return nil, nil
	}
	cp := *session
	return &cp, nil
}

func (r *memSessionRepo) DeleteByToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context, before time.Time, limit int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for token, session := range r.sessions {
		if int(deleted) >= limit {
			break
		}
		if session.ExpiresAt.Before(before) {
			delete(r.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

// ---------------------------------------------------------------------------
// 故障注入变体

// vanishingAccountRepo 创建成功但写后回读为空，用于验证状态不一致上报
type vanishingAccountRepo struct {
	*memAccountRepo
}

func (r *vanishingAccountRepo) GetByID(_ context.Context, _ int64) (*model.Account, error) {
	return nil, nil
}

// brokenBalanceRepo 余额更新总是失败，用于验证"流水已落库"后的致命错误路径
type brokenBalanceRepo struct {
	*memAccountRepo
}

func (r *brokenBalanceRepo) AddBalance(_ context.Context, _, _ int64) error {
	return repository.ErrAccountNotFound
}

// stickySessionRepo 删除不生效，用于验证删后回读仍存在的上报路径
type stickySessionRepo struct {
	*memSessionRepo
}

func (r *stickySessionRepo) DeleteByToken(_ context.Context, _ string) error {
	return nil
}
