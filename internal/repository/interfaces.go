package repository

import (
	"context"
	"errors"
	"time"

	"bankdemo/internal/model"
)

var (
	ErrUserNotFound    = errors.New("用户不存在")
	ErrAccountNotFound = errors.New("账户不存在")
	ErrDuplicateKey    = errors.New("唯一键冲突")
)

// 各仓储接口的 MySQL 实现见 repository/mysql；服务层只依赖接口，
// 测试时可用内存实现替换。查询不到记录时，Get 系列方法按 (nil, nil) 返回。

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id int64) (*model.Account, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*model.Account, error)
	GetByOwnerAndType(ctx context.Context, ownerID int64, accountType string) (*model.Account, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.Account, error)
	ExistsByNumber(ctx context.Context, accountNumber string) (bool, error)
	// AddBalance 以一条存储侧原子增量更新修改余额，绝不在应用侧做读-改-写，
	// 并发存款因加法可交换而不会互相丢失
	AddBalance(ctx context.Context, accountID, delta int64) error
}

type TransactionRepository interface {
	// AppendWithOutbox 在同一个存储事务内追加一条流水和对应的 outbox 事件，
	// 事务提交即为存款的持久化时点
	AppendWithOutbox(ctx context.Context, txn *model.Transaction, msg *model.OutboxMessage) error
	GetByRequestNo(ctx context.Context, requestNo string) (*model.Transaction, error)
	// GetLatestByAccountID 返回该账户 ID 最大的一条流水（ID 是唯一的先后顺序依据）
	GetLatestByAccountID(ctx context.Context, accountID int64) (*model.Transaction, error)
	// ListByAccountID 返回该账户全部流水，严格按 account_id 过滤，按 ID 降序
	ListByAccountID(ctx context.Context, accountID int64) ([]*model.Transaction, error)
}

type SessionRepository interface {
	// Replace 删除该用户全部旧会话后插入新会话，作为一个逻辑失效步骤执行，
	// 任何时刻外部都观察不到同一用户的两个有效令牌
	Replace(ctx context.Context, session *model.Session) error
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, before time.Time, limit int) (int64, error)
}

type OutboxRepository interface {
	GetPendingMessages(ctx context.Context, limit int) ([]*model.OutboxMessage, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	IncrementRetryCount(ctx context.Context, id int64) error
	MarkAsFailed(ctx context.Context, id int64) error
}
