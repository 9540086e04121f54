package service

import (
	"context"
	"fmt"
	"time"

	"bankdemo/internal/model"
	"bankdemo/internal/repository"
)

type TransactionService struct {
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
}

func NewTransactionService(
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
) *TransactionService {
	return &TransactionService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

// EnrichedTransaction 附带账户元数据的流水视图
type EnrichedTransaction struct {
	ID            int64     `json:"id"`
	TransactionNo string    `json:"transaction_no"`
	AccountID     int64     `json:"account_id"`
	AccountNumber string    `json:"account_number"`
	AccountType   string    `json:"account_type"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// History 查询账户流水
// 归属校验和富化共用同一次账户读取：无论流水多少条，账户只查一次，
// 逐条富化是纯常数代价的变换，循环体内绝不查库。
// 结果严格按 account_id 过滤、按流水 ID 降序。
func (s *TransactionService) History(ctx context.Context, ownerID, accountID int64) ([]*EnrichedTransaction, error) {
	account, err := s.accountRepo.GetByIDAndOwner(ctx, accountID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("查询账户失败: %w", err)
	}
	if account == nil {
		return nil, repository.ErrAccountNotFound
	}

	transactions, err := s.transactionRepo.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("查询流水失败: %w", err)
	}

	enriched := make([]*EnrichedTransaction, 0, len(transactions))
	for _, txn := range transactions {
		enriched = append(enriched, enrichTransaction(txn, account))
	}
	return enriched, nil
}

func enrichTransaction(txn *model.Transaction, account *model.Account) *EnrichedTransaction {
	return &EnrichedTransaction{
		ID:            txn.ID,
		TransactionNo: txn.TransactionNo,
		AccountID:     txn.AccountID,
		AccountNumber: account.AccountNumber,
		AccountType:   account.AccountType,
		Type:          txn.Type,
		Amount:        model.FormatCents(txn.Amount),
		Description:   txn.Description,
		Status:        txn.Status,
		CreatedAt:     txn.CreatedAt,
	}
}
