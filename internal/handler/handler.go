package handler

import (
	"errors"
	"strconv"

	"bankdemo/internal/config"
	"bankdemo/internal/model"
	"bankdemo/internal/repository"
	mysqlrepo "bankdemo/internal/repository/mysql"
	"bankdemo/internal/service"
	"bankdemo/pkg/response"
	"bankdemo/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	authService        *service.AuthService
	accountService     *service.AccountService
	depositService     *service.DepositService
	transactionService *service.TransactionService
	sessionService     *service.SessionService
}

// NewHandler 创建处理器实例
func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	userRepo := mysqlrepo.NewUserRepository(db)
	accountRepo := mysqlrepo.NewAccountRepository(db)
	transactionRepo := mysqlrepo.NewTransactionRepository(db)
	sessionRepo := mysqlrepo.NewSessionRepository(db)

	accountService := service.NewAccountService(accountRepo, cfg)
	sessionService := service.NewSessionService(sessionRepo, cfg)

	return &Handler{
		authService:        service.NewAuthService(userRepo, accountService, sessionService),
		accountService:     accountService,
		depositService:     service.NewDepositService(accountRepo, transactionRepo, rdb, cfg),
		transactionService: service.NewTransactionService(accountRepo, transactionRepo),
		sessionService:     sessionService,
	}
}

// 校验器和编排层的格式类拒绝，统一按参数错误返回，携带校验器原话
var badRequestErrors = []error{
	validator.ErrAmountEmpty,
	validator.ErrAmountMalformed,
	validator.ErrAmountPrecision,
	validator.ErrAmountNotPositive,
	validator.ErrAmountTooLarge,
	validator.ErrCardEmpty,
	validator.ErrCardLength,
	validator.ErrCardNetwork,
	validator.ErrCardChecksum,
	validator.ErrPhoneMalformed,
	validator.ErrPasswordTooShort,
	validator.ErrPasswordTooWeak,
	validator.ErrBirthDateMalformed,
	validator.ErrBirthDateInFuture,
	validator.ErrUnderage,
	validator.ErrStateCodeInvalid,
	service.ErrUsernameInvalid,
	service.ErrInvalidAccountType,
}

// renderError 服务层错误到响应码的统一映射
func (h *Handler) renderError(c *gin.Context, err error) {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			response.ParamError(c, err.Error())
			return
		}
	}

	switch {
	case errors.Is(err, service.ErrAmountExceedsCeiling):
		response.BusinessError(c, response.CodeAmountInvalid, err.Error())
	case errors.Is(err, service.ErrDuplicateAccountType):
		response.BusinessError(c, response.CodeDuplicateAccountType, err.Error())
	case errors.Is(err, service.ErrAccountInactive):
		response.BusinessError(c, response.CodeAccountInactive, err.Error())
	case errors.Is(err, repository.ErrAccountNotFound):
		response.BusinessError(c, response.CodeAccountNotFound, err.Error())
	case errors.Is(err, repository.ErrDuplicateKey):
		response.BusinessError(c, response.CodeDuplicateRequest, "请求重复提交")
	case errors.Is(err, service.ErrUsernameTaken):
		response.BusinessError(c, response.CodeBusinessError, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrSessionInvalid):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrStateInconsistent):
		// 状态不一致必须原样上报，方便监控告警，绝不降级成普通错误
		response.BusinessError(c, response.CodeStateInconsistent, err.Error())
	default:
		response.ServerError(c, err.Error())
	}
}

// accountView 账户对外视图，余额格式化为两位小数字符串
type accountView struct {
	ID            int64  `json:"id"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	Balance       string `json:"balance"`
	Status        string `json:"status"`
}

func newAccountView(account *model.Account) accountView {
	return accountView{
		ID:            account.ID,
		AccountNumber: account.AccountNumber,
		AccountType:   account.AccountType,
		Balance:       model.FormatCents(account.Balance),
		Status:        account.Status,
	}
}

// ============================================================
// 认证相关接口
// ============================================================

// SignupRequest 注册请求
type SignupRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	DateOfBirth string `json:"date_of_birth" binding:"required"`
	State       string `json:"state" binding:"required"`
}

// Signup 注册
// POST /api/v1/auth/signup
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	user, session, err := h.authService.Signup(c.Request.Context(), &service.SignupRequest{
		Username:    req.Username,
		Password:    req.Password,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		State:       req.State,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.setSessionCookie(c, session.Token)
	response.Success(c, gin.H{
		"user_id":    user.ID,
		"username":   user.Username,
		"expires_at": session.ExpiresAt,
	})
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	user, session, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.setSessionCookie(c, session.Token)
	response.Success(c, gin.H{
		"user_id":    user.ID,
		"username":   user.Username,
		"expires_at": session.ExpiresAt,
	})
}

// Logout 登出
// POST /api/v1/auth/logout
//
// 客户端凭证无条件清除：不管服务端删除成败，cookie 都先作废；
// 服务端删除失败仍然按错误返回，供监控发现
func (h *Handler) Logout(c *gin.Context) {
	token := extractToken(c)

	h.clearSessionCookie(c)

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, gin.H{
		"message": "已登出",
	})
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(h.sessionService.Lifetime().Seconds())
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", false, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
}

// ============================================================
// 账户相关接口
// ============================================================

// CreateAccountRequest 开户请求
type CreateAccountRequest struct {
	AccountType string `json:"account_type" binding:"required"` // checking / savings
}

// CreateAccount 开户
// POST /api/v1/account/create
func (h *Handler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	ownerID := c.GetInt64(ctxKeyOwnerID)
	account, err := h.accountService.CreateAccount(c.Request.Context(), ownerID, req.AccountType)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, newAccountView(account))
}

// ListAccounts 查询名下账户
// GET /api/v1/account/list
func (h *Handler) ListAccounts(c *gin.Context) {
	ownerID := c.GetInt64(ctxKeyOwnerID)

	accounts, err := h.accountService.GetAccounts(c.Request.Context(), ownerID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	views := make([]accountView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, newAccountView(account))
	}

	response.Success(c, gin.H{
		"list":  views,
		"total": len(views),
	})
}

// ============================================================
// 存款相关接口
// ============================================================

// DepositRequest 存款请求
type DepositRequest struct {
	RequestNo   string `json:"request_no" binding:"required"` // 幂等号，客户端生成
	AccountID   int64  `json:"account_id" binding:"required"`
	Amount      string `json:"amount" binding:"required"`      // 十进制字符串，如 "100.00"
	CardNumber  string `json:"card_number" binding:"required"` // 资金来源卡号
	Description string `json:"description"`
}

// Deposit 存款
// POST /api/v1/deposit/execute
//
// 【关键点】存款是整个系统最核心的操作：
// 1. 幂等性：相同的 request_no 只会落一条流水
// 2. 一致性：余额恒等于流水之和，余额只通过存储侧原子增量修改
// 3. 返回值：流水和余额都来自写后确认读，不返回内存里算出来的值
func (h *Handler) Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.depositService.Deposit(c.Request.Context(), &service.DepositRequest{
		RequestNo:   req.RequestNo,
		OwnerID:     c.GetInt64(ctxKeyOwnerID),
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		CardNumber:  req.CardNumber,
		Description: req.Description,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, gin.H{
		"transaction_id": result.Transaction.ID,
		"transaction_no": result.Transaction.TransactionNo,
		"account_id":     result.Transaction.AccountID,
		"amount":         model.FormatCents(result.Transaction.Amount),
		"status":         result.Transaction.Status,
		"new_balance":    model.FormatCents(result.NewBalance),
		"replayed":       result.Replayed,
	})
}

// ============================================================
// 流水相关接口
// ============================================================

// History 查询账户流水（按流水 ID 降序）
// GET /api/v1/transaction/history?account_id=xxx
func (h *Handler) History(c *gin.Context) {
	accountIDStr := c.Query("account_id")
	accountID, err := strconv.ParseInt(accountIDStr, 10, 64)
	if err != nil {
		response.ParamError(c, "account_id 参数错误")
		return
	}

	ownerID := c.GetInt64(ctxKeyOwnerID)
	transactions, err := h.transactionService.History(c.Request.Context(), ownerID, accountID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":  transactions,
		"total": len(transactions),
	})
}
