package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"bankdemo/internal/model"
	"bankdemo/internal/repository"
	"bankdemo/pkg/validator"
)

const testCardNumber = "4242424242424242"

func newDepositFixture(t *testing.T) (*DepositService, *memAccountRepo, *memTransactionRepo, *model.Account) {
	t.Helper()
	accountRepo := newMemAccountRepo()
	transactionRepo := newMemTransactionRepo()
	svc := NewDepositService(accountRepo, transactionRepo, nil, testConfig())

	account := &model.Account{
		OwnerID:       1,
		AccountNumber: "1234567890",
		AccountType:   model.AccountTypeChecking,
		Balance:       0,
		Status:        model.AccountStatusActive,
	}
	if err := accountRepo.Create(context.Background(), account); err != nil {
		t.Fatal(err)
	}
	return svc, accountRepo, transactionRepo, account
}

func deposit(t *testing.T, svc *DepositService, account *model.Account, requestNo, amount string) *DepositResult {
	t.Helper()
	result, err := svc.Deposit(context.Background(), &DepositRequest{
		RequestNo:  requestNo,
		OwnerID:    account.OwnerID,
		AccountID:  account.ID,
		Amount:     amount,
		CardNumber: testCardNumber,
	})
	if err != nil {
		t.Fatalf("存款失败: %v", err)
	}
	return result
}

func TestDepositSequentialSum(t *testing.T) {
	svc, _, _, account := newDepositFixture(t)

	first := deposit(t, svc, account, "req-1", "100.00")
	if first.NewBalance != 10000 {
		t.Fatalf("首笔存款后余额应为 10000 分，实际 %d", first.NewBalance)
	}

	second := deposit(t, svc, account, "req-2", "50.00")
	if second.NewBalance != 15000 {
		t.Fatalf("两笔存款后余额应为 15000 分，实际 %d", second.NewBalance)
	}
	if model.FormatCents(second.NewBalance) != "150.00" {
		t.Errorf("余额格式化应为 150.00，实际 %s", model.FormatCents(second.NewBalance))
	}
	if second.Transaction.Status != model.TransactionStatusCompleted {
		t.Errorf("流水状态应为 COMPLETED，实际 %s", second.Transaction.Status)
	}
}

func TestDepositNormalizesLeadingZeros(t *testing.T) {
	svc, _, _, account := newDepositFixture(t)

	result := deposit(t, svc, account, "req-1", "000100.00")
	if result.Transaction.Amount != 10000 {
		t.Errorf("000100.00 应按 100.00 入账，实际 %d 分", result.Transaction.Amount)
	}
}

func TestDepositConcurrentSum(t *testing.T) {
	svc, _, transactionRepo, account := newDepositFixture(t)

	const n = 50
	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Deposit(context.Background(), &DepositRequest{
				RequestNo:  fmt.Sprintf("req-%d", i),
				OwnerID:    account.OwnerID,
				AccountID:  account.ID,
				Amount:     "1.00",
				CardNumber: testCardNumber,
			})
			errCh <- err
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("并发存款失败: %v", err)
		}
	}

	// 任意交错下，最终余额都必须等于各笔之和
	latest, err := svc.accountRepo.GetByID(context.Background(), account.ID)
	if err != nil || latest == nil {
		t.Fatalf("账户回读失败: %v", err)
	}
	if latest.Balance != n*100 {
		t.Errorf("最终余额应为 %d 分，实际 %d", n*100, latest.Balance)
	}

	// 流水恰好 n 条、全部属于该账户、按 ID 严格降序
	txns, err := transactionRepo.ListByAccountID(context.Background(), account.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != n {
		t.Fatalf("流水应有 %d 条，实际 %d", n, len(txns))
	}
	for i, txn := range txns {
		if txn.AccountID != account.ID {
			t.Errorf("流水 %d 不属于查询账户: %+v", i, txn)
		}
		if i > 0 && txns[i-1].ID <= txn.ID {
			t.Errorf("流水未按 ID 严格降序: %d <= %d", txns[i-1].ID, txn.ID)
		}
	}
}

func TestDepositRejectsBadAmounts(t *testing.T) {
	svc, _, _, account := newDepositFixture(t)

	cases := []struct {
		amount  string
		wantErr error
	}{
		{"", validator.ErrAmountEmpty},
		{"0", validator.ErrAmountNotPositive},
		{"0.00", validator.ErrAmountNotPositive},
		{"-5.00", validator.ErrAmountMalformed},
		{"abc", validator.ErrAmountMalformed},
		{"1.234", validator.ErrAmountPrecision},
		{"10000.01", ErrAmountExceedsCeiling},
	}
	for _, tc := range cases {
		_, err := svc.Deposit(context.Background(), &DepositRequest{
			RequestNo:  "req-" + tc.amount,
			OwnerID:    account.OwnerID,
			AccountID:  account.ID,
			Amount:     tc.amount,
			CardNumber: testCardNumber,
		})
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("金额 %q 应返回 %v，实际 %v", tc.amount, tc.wantErr, err)
		}
	}
}

func TestDepositRejectsBadCard(t *testing.T) {
	svc, _, _, account := newDepositFixture(t)

	_, err := svc.Deposit(context.Background(), &DepositRequest{
		RequestNo:  "req-1",
		OwnerID:    account.OwnerID,
		AccountID:  account.ID,
		Amount:     "10.00",
		CardNumber: "4242424242424241", // 校验和不通过
	})
	if !errors.Is(err, validator.ErrCardChecksum) {
		t.Errorf("坏卡号应返回 ErrCardChecksum，实际 %v", err)
	}
}

func TestDepositAccountOwnershipAndStatus(t *testing.T) {
	svc, accountRepo, _, account := newDepositFixture(t)
	ctx := context.Background()

	// 他人账户按不存在处理
	_, err := svc.Deposit(ctx, &DepositRequest{
		RequestNo:  "req-1",
		OwnerID:    99,
		AccountID:  account.ID,
		Amount:     "10.00",
		CardNumber: testCardNumber,
	})
	if !errors.Is(err, repository.ErrAccountNotFound) {
		t.Errorf("非本人账户应返回 ErrAccountNotFound，实际 %v", err)
	}

	// 非 active 账户拒绝存款
	frozen := &model.Account{
		OwnerID:       1,
		AccountNumber: "0987654321",
		AccountType:   model.AccountTypeSavings,
		Status:        model.AccountStatusFrozen,
	}
	if err := accountRepo.Create(ctx, frozen); err != nil {
		t.Fatal(err)
	}
	_, err = svc.Deposit(ctx, &DepositRequest{
		RequestNo:  "req-2",
		OwnerID:    1,
		AccountID:  frozen.ID,
		Amount:     "10.00",
		CardNumber: testCardNumber,
	})
	if !errors.Is(err, ErrAccountInactive) {
		t.Errorf("冻结账户应返回 ErrAccountInactive，实际 %v", err)
	}
}

func TestDepositIdempotentReplay(t *testing.T) {
	svc, _, transactionRepo, account := newDepositFixture(t)

	first := deposit(t, svc, account, "req-same", "100.00")
	second := deposit(t, svc, account, "req-same", "100.00")

	if !second.Replayed {
		t.Error("重复 request_no 应命中幂等重放")
	}
	if second.Transaction.ID != first.Transaction.ID {
		t.Errorf("重放应返回首次流水，实际 %d != %d", second.Transaction.ID, first.Transaction.ID)
	}
	if second.NewBalance != first.NewBalance {
		t.Errorf("重放不应改变余额: %d != %d", second.NewBalance, first.NewBalance)
	}

	txns, err := transactionRepo.ListByAccountID(context.Background(), account.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 1 {
		t.Fatalf("同一 request_no 只应落一条流水，实际 %d", len(txns))
	}
}

func TestDepositConcurrentSameRequestNo(t *testing.T) {
	svc, _, transactionRepo, account := newDepositFixture(t)

	// 同一 request_no 并发提交：唯一索引分出胜负，落败方重放首次结果
	const n = 8
	var wg sync.WaitGroup
	results := make([]*DepositResult, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Deposit(context.Background(), &DepositRequest{
				RequestNo:  "req-race",
				OwnerID:    account.OwnerID,
				AccountID:  account.ID,
				Amount:     "100.00",
				CardNumber: testCardNumber,
			})
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("第 %d 个并发请求失败: %v", i, errs[i])
		}
		if results[i].Transaction.ID != results[0].Transaction.ID {
			t.Errorf("所有请求应返回同一条流水: %d != %d", results[i].Transaction.ID, results[0].Transaction.ID)
		}
	}

	txns, err := transactionRepo.ListByAccountID(context.Background(), account.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 1 {
		t.Fatalf("同一 request_no 只应落一条流水，实际 %d", len(txns))
	}
	if txns[0].Amount != 10000 {
		t.Errorf("入账金额应为 10000 分，实际 %d", txns[0].Amount)
	}
}

func TestDepositWritesOutboxWithJournal(t *testing.T) {
	svc, _, transactionRepo, account := newDepositFixture(t)

	deposit(t, svc, account, "req-1", "10.00")
	deposit(t, svc, account, "req-2", "20.00")

	if got := transactionRepo.outboxCount(); got != 2 {
		t.Errorf("每笔存款应随流水落一条 outbox 事件，实际 %d", got)
	}
}

func TestDepositBalanceUpdateFailureIsFatal(t *testing.T) {
	accountRepo := newMemAccountRepo()
	transactionRepo := newMemTransactionRepo()
	ctx := context.Background()

	account := &model.Account{
		OwnerID:       1,
		AccountNumber: "1234567890",
		AccountType:   model.AccountTypeChecking,
		Status:        model.AccountStatusActive,
	}
	if err := accountRepo.Create(ctx, account); err != nil {
		t.Fatal(err)
	}

	svc := NewDepositService(&brokenBalanceRepo{accountRepo}, transactionRepo, nil, testConfig())
	_, err := svc.Deposit(ctx, &DepositRequest{
		RequestNo:  "req-1",
		OwnerID:    1,
		AccountID:  account.ID,
		Amount:     "10.00",
		CardNumber: testCardNumber,
	})
	if !errors.Is(err, ErrStateInconsistent) {
		t.Errorf("流水落库后余额更新失败应返回 ErrStateInconsistent，实际 %v", err)
	}
}
