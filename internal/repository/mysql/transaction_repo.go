package mysql

import (
	"context"
	"errors"

	"bankdemo/internal/model"
	"bankdemo/internal/repository"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// AppendWithOutbox 流水与 outbox 事件在同一个数据库事务内落库
// 事务提交即为存款的持久化时点；流水只追加，之后不会再被修改或删除。
// request_no 唯一索引冲突翻译为 ErrDuplicateKey，由服务层转为幂等重放
func (r *TransactionRepository) AppendWithOutbox(ctx context.Context, txn *model.Transaction, msg *model.OutboxMessage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		if msg != nil {
			if err := tx.Create(msg).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && isDuplicateKey(err) {
		return repository.ErrDuplicateKey
	}
	return err
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (r *TransactionRepository) GetByRequestNo(ctx context.Context, requestNo string) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.WithContext(ctx).Where("request_no = ?", requestNo).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetLatestByAccountID 取该账户 ID 最大的一条流水
// 并发写入下时间戳可能重复或偏斜，自增 ID 是唯一可信的先后顺序依据
func (r *TransactionRepository) GetLatestByAccountID(ctx context.Context, accountID int64) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("id DESC").
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListByAccountID 按账户过滤的全部流水，ID 降序
// account_id 过滤是强制的，跨账户泄露流水属于正确性错误
func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID int64) ([]*model.Transaction, error) {
	var transactions []*model.Transaction
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("id DESC").
		Find(&transactions).Error
	return transactions, err
}
