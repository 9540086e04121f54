package service

import (
	"context"
	"fmt"

	"bankdemo/internal/config"
	"bankdemo/internal/model"
	"bankdemo/internal/repository"
	"bankdemo/pkg/idgen"
)

type AccountService struct {
	accountRepo repository.AccountRepository
	cfg         *config.Config
}

func NewAccountService(accountRepo repository.AccountRepository, cfg *config.Config) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		cfg:         cfg,
	}
}

// CreateAccount 创建账户
// 每个用户每种类型至多一个账户；新账户余额恒为 0、状态恒为 active。
// 账号在"生成候选 -> 查重"的有界循环里分配，连续碰撞达到上限说明熵源异常，按致命错误处理。
func (s *AccountService) CreateAccount(ctx context.Context, ownerID int64, accountType string) (*model.Account, error) {
	if !model.ValidAccountType(accountType) {
		return nil, ErrInvalidAccountType
	}

	existing, err := s.accountRepo.GetByOwnerAndType(ctx, ownerID, accountType)
	if err != nil {
		return nil, fmt.Errorf("查询账户失败: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateAccountType
	}

	maxAttempts := s.cfg.Business.AccountNumberMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 10
	}

	var accountNumber string
	for attempt := 0; ; attempt++ {
		if attempt >= maxAttempts {
			return nil, fmt.Errorf("账号生成连续碰撞%d次: %w", maxAttempts, ErrStateInconsistent)
		}
		candidate, err := idgen.GenerateAccountNumber()
		if err != nil {
			return nil, fmt.Errorf("生成账号失败: %w", err)
		}
		exists, err := s.accountRepo.ExistsByNumber(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("账号查重失败: %w", err)
		}
		if !exists {
			accountNumber = candidate
			break
		}
	}

	account := &model.Account{
		OwnerID:       ownerID,
		AccountNumber: accountNumber,
		AccountType:   accountType,
		Balance:       0,
		Status:        model.AccountStatusActive,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("创建账户失败: %w", err)
	}

	// 写后确认读：只有存储里的行才是权威状态，绝不用入参拼一个假对象返回
	created, err := s.accountRepo.GetByID(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("账户创建后回读失败: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("账户已创建但读取不到: %w", ErrStateInconsistent)
	}

	return created, nil
}

// GetAccounts 查询用户名下全部账户
func (s *AccountService) GetAccounts(ctx context.Context, ownerID int64) ([]*model.Account, error) {
	accounts, err := s.accountRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("查询账户列表失败: %w", err)
	}
	return accounts, nil
}
