package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bankdemo/internal/config"
	"bankdemo/internal/infrastructure/lock"
	"bankdemo/internal/model"
	"bankdemo/internal/repository"
	"bankdemo/pkg/idgen"
	"bankdemo/pkg/validator"

	"github.com/go-redis/redis/v8"
)

// DepositService 存款编排
//
// 一笔存款是严格顺序的状态机，不暴露任何部分成功的中间态：
//  1. 金额规范化与资金来源校验
//  2. 账户归属与状态校验
//  3. 流水 + outbox 事件落库（持久化时点）
//  4. 余额原子增量更新
//  5. 写后确认读，返回存储里的余额
//
// 流水一旦提交就认为存款已发生，后续步骤失败只能上报，不能回滚，
// 否则会留下一条没有对应余额变动的流水。
type DepositService struct {
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	redisClient     *redis.Client // 可为 nil：此时幂等仅依赖 request_no 唯一索引
	cfg             *config.Config
}

func NewDepositService(
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *DepositService {
	return &DepositService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		redisClient:     redisClient,
		cfg:             cfg,
	}
}

type DepositRequest struct {
	RequestNo   string // 幂等号，客户端生成
	OwnerID     int64  // 来自会话，不信任请求体
	AccountID   int64
	Amount      string // 十进制字符串，如 "100.00"
	CardNumber  string // 资金来源卡号
	Description string
}

type DepositResult struct {
	Transaction *model.Transaction
	NewBalance  int64 // 更新后回读到的余额（分）
	Replayed    bool  // 幂等重放命中
}

func (s *DepositService) Deposit(ctx context.Context, req *DepositRequest) (*DepositResult, error) {
	// 1. 金额规范化：校验器的拒绝原因原样向上传递
	_, cents, err := validator.ValidateAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if ceiling := s.cfg.Business.DepositCeilingCents; ceiling > 0 && cents > ceiling {
		return nil, ErrAmountExceedsCeiling
	}
	if err := validator.ValidateCardNumber(req.CardNumber); err != nil {
		return nil, err
	}

	// 2. 幂等检查：同一 request_no 只落一条流水，重复提交返回首次结果
	if result, err := s.replay(ctx, req); err != nil || result != nil {
		return result, err
	}

	// 分布式锁只拦截同一账户的并发重复提交；拿到锁后复查幂等。
	// 余额正确性与锁无关，由第 4 步的原子增量更新保证。
	if s.redisClient != nil {
		depositLock := lock.NewDepositLock(s.redisClient, req.AccountID, req.RequestNo)
		if err := depositLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
			return nil, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
		}
		defer depositLock.Unlock(ctx)

		if result, err := s.replay(ctx, req); err != nil || result != nil {
			return result, err
		}
	}

	// 3. 账户归属与状态校验
	account, err := s.accountRepo.GetByIDAndOwner(ctx, req.AccountID, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("查询账户失败: %w", err)
	}
	if account == nil {
		return nil, repository.ErrAccountNotFound
	}
	if account.Status != model.AccountStatusActive {
		return nil, ErrAccountInactive
	}

	// 4. 流水 + outbox 事件在同一个存储事务内落库，提交即持久化时点
	txn := &model.Transaction{
		TransactionNo: idgen.GenerateTransactionNo(),
		RequestNo:     req.RequestNo,
		AccountID:     account.ID,
		Type:          model.TransactionTypeDeposit,
		Amount:        cents,
		Description:   req.Description,
		Status:        model.TransactionStatusCompleted,
	}
	msg := s.buildOutboxMessage(txn)
	if err := s.transactionRepo.AppendWithOutbox(ctx, txn, msg); err != nil {
		// 并发的重复提交在唯一索引处分出胜负，落败方转为幂等重放
		if errors.Is(err, repository.ErrDuplicateKey) {
			if result, replayErr := s.replay(ctx, req); replayErr == nil && result != nil {
				return result, nil
			}
		}
		return nil, fmt.Errorf("写入流水失败: %w", err)
	}

	// 5. 余额更新：一条存储侧原子增量，加法可交换，并发存款谁先谁后都不丢
	if err := s.accountRepo.AddBalance(ctx, account.ID, cents); err != nil {
		// 流水已提交，这里失败不能回滚，只能按致命错误上报
		return nil, fmt.Errorf("流水已落库但余额更新失败(%v): %w", err, ErrStateInconsistent)
	}

	// 6. 写后确认读：返回的流水和余额都必须来自存储，而不是内存里算出来的值
	latest, err := s.transactionRepo.GetLatestByAccountID(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("流水回读失败: %w", err)
	}
	if latest == nil {
		return nil, fmt.Errorf("流水写入后读取不到: %w", ErrStateInconsistent)
	}

	updated, err := s.accountRepo.GetByID(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("账户回读失败: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("余额更新后账户读取不到: %w", ErrStateInconsistent)
	}

	return &DepositResult{
		Transaction: latest,
		NewBalance:  updated.Balance,
	}, nil
}

// replay 幂等重放：request_no 已有流水时返回首次结果与当前余额
func (s *DepositService) replay(ctx context.Context, req *DepositRequest) (*DepositResult, error) {
	existing, err := s.transactionRepo.GetByRequestNo(ctx, req.RequestNo)
	if err != nil {
		return nil, fmt.Errorf("幂等检查失败: %w", err)
	}
	if existing == nil {
		return nil, nil
	}

	account, err := s.accountRepo.GetByIDAndOwner(ctx, existing.AccountID, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("查询账户失败: %w", err)
	}
	if account == nil {
		return nil, repository.ErrAccountNotFound
	}

	return &DepositResult{
		Transaction: existing,
		NewBalance:  account.Balance,
		Replayed:    true,
	}, nil
}

func (s *DepositService) buildOutboxMessage(txn *model.Transaction) *model.OutboxMessage {
	payload := map[string]interface{}{
		"transaction_no": txn.TransactionNo,
		"request_no":     txn.RequestNo,
		"account_id":     txn.AccountID,
		"type":           txn.Type,
		"amount":         model.FormatCents(txn.Amount),
		"status":         txn.Status,
	}
	payloadBytes, _ := json.Marshal(payload)

	return &model.OutboxMessage{
		MessageKey: txn.TransactionNo,
		Topic:      s.cfg.Kafka.Topic.DepositCompleted,
		Payload:    string(payloadBytes),
		Status:     model.OutboxStatusPending,
	}
}
